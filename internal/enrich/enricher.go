package enrich

import (
	"context"
	"log/slog"
	"strings"

	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/model"
)

// Judge classifies one record's text. Implemented by Client; tests
// substitute a fake.
type Judge interface {
	Judge(ctx context.Context, title, sourceText string) (*Verdict, error)
}

// Summary reports the outcome of one enrichment pass.
type Summary struct {
	// Processed is the number of records sent to the model.
	Processed int

	// Cleaned is the number of records whose title or audience changed.
	Cleaned int

	// Discarded is the number of records the model judged irrelevant.
	Discarded int

	// Failed is the number of records skipped because the model call
	// or the verdict parse failed.
	Failed int
}

// Enricher runs the model-based second pass over stored records.
// Design decision: enrichment is best effort. A model failure on one
// record leaves that record exactly as the heuristic pass stored it,
// still flagged unenriched so a later run can retry. The crawl result
// is never held hostage by model availability.
type Enricher struct {
	// judge classifies record text.
	judge Judge

	// db is the record store being enriched.
	db *database.EventDB

	// logger is the structured logger.
	logger *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		e.logger = l
	}
}

// NewEnricher creates an enrichment pass runner.
func NewEnricher(judge Judge, db *database.EventDB, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		judge:  judge,
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run processes all unenriched records and returns a pass summary.
// It stops early only on context cancellation, returning the summary
// of work completed so far alongside the context error.
func (e *Enricher) Run(ctx context.Context) (*Summary, error) {
	records, err := e.db.ListUnenriched(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := e.enrichOne(ctx, rec, summary); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.Failed++
			e.logger.Warn("enrichment failed, keeping heuristic result",
				"id", rec.ID,
				"link", rec.Link,
				"error", err)
		}
	}

	return summary, nil
}

// enrichOne judges a single record and applies the verdict.
func (e *Enricher) enrichOne(ctx context.Context, rec *model.EventRecord, summary *Summary) error {
	verdict, err := e.judge.Judge(ctx, rec.Title, rec.SourceText)
	if err != nil {
		return err
	}
	summary.Processed++

	if !verdict.IsRelevant {
		if err := e.db.ApplyEnrichment(ctx, rec.ID, false, rec.Title, rec.Audience); err != nil {
			return err
		}
		summary.Discarded++
		e.logger.Info("record discarded by model",
			"id", rec.ID,
			"title", rec.Title)
		return nil
	}

	title := strings.TrimSpace(verdict.CleanedTitle)
	if title == "" {
		title = rec.Title
	}
	audience := mergeAudience(rec.Audience, verdict.Audience)

	changed := title != rec.Title || !sameSet(audience, rec.Audience)
	if !changed {
		if err := e.db.MarkEnriched(ctx, rec.ID); err != nil {
			return err
		}
		return nil
	}

	if err := e.db.ApplyEnrichment(ctx, rec.ID, true, title, audience); err != nil {
		return err
	}
	summary.Cleaned++
	e.logger.Info("record cleaned by model",
		"id", rec.ID,
		"title", title)
	return nil
}

// mergeAudience unions the heuristic and model audience sets, keeping
// the heuristic entries first. The model refines, it never erases what
// the page text literally said.
func mergeAudience(heuristic, fromModel []string) []string {
	seen := make(map[string]bool, len(heuristic)+len(fromModel))
	merged := make([]string, 0, len(heuristic)+len(fromModel))

	for _, tag := range heuristic {
		if tag = strings.TrimSpace(tag); tag != "" && !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	for _, tag := range fromModel {
		if tag = strings.TrimSpace(strings.ToLower(tag)); tag != "" && !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	return merged
}

// sameSet reports whether two audience slices hold the same tags,
// ignoring order.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, tag := range a {
		set[tag] = true
	}
	for _, tag := range b {
		if !set[tag] {
			return false
		}
	}
	return true
}
