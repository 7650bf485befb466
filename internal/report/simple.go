package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/eventscan/eventscan/internal/model"
)

// SimpleWriter outputs human-readable text run reports.
// This format is designed for terminal display after a crawl finishes.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-source filter reason breakdowns.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with filter reason breakdowns.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	for _, src := range report.Sources {
		w.writeSource(&sb, src)
	}
	w.writeTotals(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         EVENTSCAN RUN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Started:  %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration: %s\n", report.Duration.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Sources:  %d\n", len(report.Sources)))
	sb.WriteString("\n")
}

// writeSource writes one source's crawl summary.
func (w *SimpleWriter) writeSource(sb *strings.Builder, src *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(src.SourceName)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages crawled:    %d\n", src.PagesCrawled))
	sb.WriteString(fmt.Sprintf("  Candidate links:  %d\n", src.LinksFound))
	sb.WriteString(fmt.Sprintf("  Records saved:    %d\n", src.RecordsSaved))
	sb.WriteString(fmt.Sprintf("  Duplicates:       %d\n", src.Duplicates))
	sb.WriteString(fmt.Sprintf("  Filtered out:     %d\n", src.FilteredTotal()))
	if src.PageErrors > 0 {
		sb.WriteString(fmt.Sprintf("  Page errors:      %d\n", src.PageErrors))
	}
	if src.RecordErrors > 0 {
		sb.WriteString(fmt.Sprintf("  Record errors:    %d\n", src.RecordErrors))
	}

	if w.verbose && len(src.Filtered) > 0 {
		sb.WriteString("\n  Filter reasons:\n")
		for _, reason := range sortedReasons(src.Filtered) {
			sb.WriteString(fmt.Sprintf("    %-20s %d\n", reason, src.Filtered[reason]))
		}
	}

	sb.WriteString("\n")
}

// writeTotals writes the aggregate footer.
func (w *SimpleWriter) writeTotals(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("TOTAL: %d pages, %d candidates, %d saved, %d filtered\n",
		report.TotalPages(),
		report.TotalLinks(),
		report.TotalSaved(),
		report.TotalFiltered(),
	))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// sortedReasons returns filter reasons in stable order.
func sortedReasons(filtered map[string]int) []string {
	reasons := make([]string, 0, len(filtered))
	for reason := range filtered {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	return reasons
}
