package report

import (
	"io"
	"strconv"

	"github.com/eventscan/eventscan/internal/model"
	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing crawl results.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSources(md, report)
	w.writeFilterBreakdown(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Eventscan Run Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.String()},
			{"Sources", strconv.Itoa(len(report.Sources))},
			{"Records saved", strconv.Itoa(report.TotalSaved())},
		},
	})
	md.PlainText("")

	if report.TotalSaved() == 0 {
		md.Warning("No new records were saved in this run.")
		md.PlainText("")
	}
}

// writeSources writes the per-source summary table.
func (w *MarkdownWriter) writeSources(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Sources")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Sources))
	for _, src := range report.Sources {
		rows = append(rows, []string{
			src.SourceName,
			strconv.Itoa(src.PagesCrawled),
			strconv.Itoa(src.LinksFound),
			strconv.Itoa(src.RecordsSaved),
			strconv.Itoa(src.Duplicates),
			strconv.Itoa(src.FilteredTotal()),
			strconv.Itoa(src.PageErrors + src.RecordErrors),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Source", "Pages", "Candidates", "Saved", "Duplicates", "Filtered", "Errors"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFilterBreakdown writes filter reason counts across all sources.
func (w *MarkdownWriter) writeFilterBreakdown(md *markdown.Markdown, report *model.RunReport) {
	totals := make(map[string]int)
	for _, src := range report.Sources {
		for reason, count := range src.Filtered {
			totals[reason] += count
		}
	}
	if len(totals) == 0 {
		return
	}

	md.H2("Filter Reasons")
	md.PlainText("")

	rows := make([][]string, 0, len(totals))
	for _, reason := range sortedReasons(totals) {
		rows = append(rows, []string{reason, strconv.Itoa(totals[reason])})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Reason", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}
