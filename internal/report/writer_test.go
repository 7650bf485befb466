package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/eventscan/eventscan/internal/model"
)

// sampleReport builds a two-source report for writer tests.
func sampleReport() *model.RunReport {
	report := &model.RunReport{
		StartedAt: time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC),
		Duration:  90 * time.Second,
	}

	first := model.NewRunSummary("mirea")
	first.PagesCrawled = 40
	first.LinksFound = 12
	first.RecordsSaved = 5
	first.Duplicates = 3
	first.AddFiltered("stale/noise")
	first.AddFiltered("stale/noise")
	first.AddFiltered("low density")
	report.Add(first)

	second := model.NewRunSummary("misis")
	second.PagesCrawled = 25
	second.LinksFound = 4
	second.RecordsSaved = 2
	second.PageErrors = 1
	report.Add(second)

	return report
}

// TestSimpleWriter tests the human-readable text format.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("default output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(sampleReport())
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		out := buf.String()
		for _, want := range []string{
			"EVENTSCAN RUN REPORT",
			"Started:  2025-05-01 10:30:00 UTC",
			"Duration: 1m30s",
			"Sources:  2",
			"mirea",
			"misis",
			"Records saved:    5",
			"Filtered out:     3",
			"Page errors:      1",
			"TOTAL: 65 pages, 16 candidates, 7 saved, 3 filtered",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}

		// Reason breakdown only appears in verbose mode.
		if strings.Contains(out, "Filter reasons:") {
			t.Error("unexpected reason breakdown in default output")
		}
	})

	t.Run("verbose lists filter reasons", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "Filter reasons:") {
			t.Errorf("expected reason breakdown:\n%s", out)
		}
		if !strings.Contains(out, "stale/noise") || !strings.Contains(out, "low density") {
			t.Errorf("expected reason rows:\n%s", out)
		}
	})
}

// TestJSONWriter tests the machine-readable format.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithVersion("1.2.3"))

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		var envelope struct {
			Version string           `json:"version"`
			Report  *model.RunReport `json:"report"`
		}
		if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
			t.Fatalf("invalid JSON output: %v", err)
		}
		if envelope.Version != "1.2.3" {
			t.Errorf("unexpected version %q", envelope.Version)
		}
		if len(envelope.Report.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(envelope.Report.Sources))
		}
		if envelope.Report.Sources[0].Filtered["stale/noise"] != 2 {
			t.Errorf("unexpected filter counts %v", envelope.Report.Sources[0].Filtered)
		}
	})

	t.Run("version omitted when unset", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if strings.Contains(buf.String(), "version") {
			t.Errorf("expected version omitted:\n%s", buf.String())
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"report\"") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
		if !strings.HasSuffix(buf.String(), "\n") {
			t.Error("expected trailing newline")
		}
	})
}

// TestMarkdownWriter tests the shareable markdown format.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("tables and headings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(sampleReport()); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Eventscan Run Report",
			"## Sources",
			"## Filter Reasons",
			"mirea",
			"stale/noise",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty run carries a warning", func(t *testing.T) {
		t.Parallel()

		report := model.NewRunReport()
		report.Add(model.NewRunSummary("mirea"))

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(report); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "No new records were saved") {
			t.Errorf("expected warning:\n%s", buf.String())
		}
		// No rejections were recorded, so the breakdown is skipped.
		if strings.Contains(buf.String(), "## Filter Reasons") {
			t.Errorf("unexpected filter section:\n%s", buf.String())
		}
	})
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(
		NewSimpleWriter(&text),
		NewJSONWriter(&jsonBuf),
	)

	if _, err := mw.Write(sampleReport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("expected output on every writer")
	}
}
