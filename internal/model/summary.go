package model

import "time"

// RunSummary reports what happened while processing one source.
// A source-level run always completes and reports counts even when
// individual pages failed; a supervisor restarts or alerts based on this
// structured output rather than on process exit codes.
type RunSummary struct {
	// SourceName is the name of the processed source.
	SourceName string `json:"source"`

	// PagesCrawled is the number of pages fetched during BFS traversal.
	// Never exceeds the configured page budget.
	PagesCrawled int `json:"pages_crawled"`

	// LinksFound is the number of unique event-candidate links the
	// crawl discovered.
	LinksFound int `json:"links_found"`

	// RecordsSaved is the number of new records inserted.
	RecordsSaved int `json:"records_saved"`

	// Duplicates counts candidate pages whose link was already stored.
	// A duplicate is a normal outcome, not a failure.
	Duplicates int `json:"duplicates"`

	// Filtered counts heuristic-filter rejections by reason code.
	Filtered map[string]int `json:"filtered"`

	// PageErrors counts pages skipped for fetch or extraction failures.
	PageErrors int `json:"page_errors"`

	// RecordErrors counts records dropped for storage failures other
	// than duplicates.
	RecordErrors int `json:"record_errors"`

	// Duration is the wall-clock time spent on this source.
	Duration time.Duration `json:"duration"`
}

// NewRunSummary creates an empty summary for the named source.
func NewRunSummary(sourceName string) *RunSummary {
	return &RunSummary{
		SourceName: sourceName,
		Filtered:   make(map[string]int),
	}
}

// AddFiltered records one heuristic-filter rejection.
func (s *RunSummary) AddFiltered(reason string) {
	if s.Filtered == nil {
		s.Filtered = make(map[string]int)
	}
	s.Filtered[reason]++
}

// FilteredTotal returns the total number of filtered pages.
func (s *RunSummary) FilteredTotal() int {
	n := 0
	for _, c := range s.Filtered {
		n += c
	}
	return n
}

// RunReport aggregates the summaries of one whole pipeline run.
type RunReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Sources holds one summary per processed source, in completion order.
	Sources []*RunSummary `json:"sources"`
}

// NewRunReport creates a report stamped with the current time.
func NewRunReport() *RunReport {
	return &RunReport{StartedAt: time.Now()}
}

// Add appends a source summary to the report.
func (r *RunReport) Add(s *RunSummary) {
	r.Sources = append(r.Sources, s)
}

// TotalSaved returns the number of records inserted across all sources.
func (r *RunReport) TotalSaved() int {
	n := 0
	for _, s := range r.Sources {
		n += s.RecordsSaved
	}
	return n
}

// TotalPages returns the number of pages crawled across all sources.
func (r *RunReport) TotalPages() int {
	n := 0
	for _, s := range r.Sources {
		n += s.PagesCrawled
	}
	return n
}

// TotalLinks returns the number of candidate links found across all sources.
func (r *RunReport) TotalLinks() int {
	n := 0
	for _, s := range r.Sources {
		n += s.LinksFound
	}
	return n
}

// TotalFiltered returns the number of filtered pages across all sources.
func (r *RunReport) TotalFiltered() int {
	n := 0
	for _, s := range r.Sources {
		n += s.FilteredTotal()
	}
	return n
}
