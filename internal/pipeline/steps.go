package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/crawler"
	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/extract"
	"github.com/eventscan/eventscan/internal/fetch"
	"github.com/eventscan/eventscan/internal/filter"
)

// CrawlStep discovers event-candidate pages for one source.
// It runs the breadth-first crawl from the seed URL and, separately,
// harvests candidates from any configured listing pages.
//
// Design decision: Crawling is a separate step from extraction because:
// 1. It has different configuration (page budget, delay, link rules)
// 2. Its output is a plain URL list, easy to inspect and test
// 3. Extraction can be re-run over the same candidates without re-crawling
type CrawlStep struct {
	// fetcher retrieves pages.
	fetcher *fetch.Fetcher

	// classifier decides which anchors look like event links.
	classifier *crawler.LinkClassifier

	// maxPages limits total pages fetched by the breadth-first crawl.
	maxPages int

	// delay between requests for politeness.
	delay time.Duration

	// skipExtensions are file extensions excluded from the frontier.
	skipExtensions []string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxPages sets the maximum pages the crawl may fetch.
func WithCrawlMaxPages(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = n
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlSkipExtensions sets file extensions excluded from crawling.
func WithCrawlSkipExtensions(exts []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.skipExtensions = exts
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawl step.
func NewCrawlStep(fetcher *fetch.Fetcher, classifier *crawler.LinkClassifier, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:    fetcher,
		classifier: classifier,
		maxPages:   config.DefaultMaxPages,
		delay:      config.DefaultCrawlDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithLogger(s.logger),
	}
	if len(s.skipExtensions) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithSkipExtensions(s.skipExtensions))
	}

	spider := crawler.NewSpider(s.fetcher, s.classifier, spiderOpts...)

	outcome, err := spider.Crawl(ctx, run.Source.SeedURL, run.Source.SiteRoot)
	if outcome != nil {
		run.Summary.PagesCrawled += outcome.PagesCrawled
	}
	if err != nil {
		// Cancellation aborts the run; any other crawl error still
		// leaves partial candidates worth extracting.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		run.Summary.PageErrors++
		s.logger.Warn("crawl completed with error",
			"source", run.Source.Name,
			"error", err,
		)
	}

	seen := make(map[string]bool)
	if outcome != nil {
		for _, link := range outcome.EventLinks {
			if !seen[link] {
				seen[link] = true
				run.Candidates = append(run.Candidates, link)
			}
		}
	}

	// Listing pages are harvested directly: they are known to list
	// events, so they bypass the page budget of the main crawl.
	for _, docURL := range run.Source.DocURLs {
		links, err := spider.CollectCandidates(ctx, docURL, run.Source.SiteRoot)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			run.Summary.PageErrors++
			s.logger.Warn("listing page failed",
				"url", docURL,
				"error", err,
			)
			continue
		}
		run.Summary.PagesCrawled++
		for _, link := range links {
			if !seen[link] {
				seen[link] = true
				run.Candidates = append(run.Candidates, link)
			}
		}
	}

	run.Summary.LinksFound = len(run.Candidates)

	s.logger.Info("crawl completed",
		"source", run.Source.Name,
		"pages", run.Summary.PagesCrawled,
		"candidates", run.Summary.LinksFound,
	)

	return nil
}

// ExtractStep fetches each candidate page, extracts its text, applies
// the relevance filter, pulls structured fields, and stores the record.
//
// Design decision: Every candidate is processed inside its own error
// boundary. A malformed page, a failed fetch, or a rejected record is
// counted in the summary and never stops the remaining candidates.
type ExtractStep struct {
	// fetcher retrieves candidate pages.
	fetcher *fetch.Fetcher

	// pages extracts title and body text from HTML.
	pages *extract.PageExtractor

	// relevance is the heuristic filter applied before extraction.
	relevance *filter.HeuristicFilter

	// fields pulls structured event fields out of page text.
	fields *extract.FieldExtractor

	// db is the record sink.
	db *database.EventDB

	// delay between candidate fetches for politeness.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractDelay sets the delay between candidate fetches.
func WithExtractDelay(d time.Duration) ExtractStepOption {
	return func(s *ExtractStep) {
		s.delay = d
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extraction step.
func NewExtractStep(
	fetcher *fetch.Fetcher,
	pages *extract.PageExtractor,
	relevance *filter.HeuristicFilter,
	fields *extract.FieldExtractor,
	db *database.EventDB,
	opts ...ExtractStepOption,
) *ExtractStep {
	s := &ExtractStep{
		fetcher:   fetcher,
		pages:     pages,
		relevance: relevance,
		fields:    fields,
		db:        db,
		delay:     config.DefaultCrawlDelay,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step over all candidates from the crawl.
func (s *ExtractStep) Do(ctx context.Context, run *Run) error {
	for i, link := range run.Candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}

		s.processCandidate(ctx, run, link)
	}

	s.logger.Info("extraction completed",
		"source", run.Source.Name,
		"candidates", len(run.Candidates),
		"saved", run.Summary.RecordsSaved,
		"duplicates", run.Summary.Duplicates,
		"filtered", run.Summary.FilteredTotal(),
	)

	return nil
}

// processCandidate handles one candidate page end to end.
func (s *ExtractStep) processCandidate(ctx context.Context, run *Run, link string) {
	rawHTML, err := s.fetcher.Fetch(ctx, link)
	if err != nil {
		run.Summary.PageErrors++
		s.logger.Warn("candidate fetch failed", "url", link, "error", err)
		return
	}

	page, err := s.pages.Extract(rawHTML)
	if err != nil {
		if errors.Is(err, extract.ErrNoContent) {
			run.Summary.AddFiltered(string(filter.ReasonLowDensity))
		} else {
			run.Summary.RecordErrors++
			s.logger.Warn("page extraction failed", "url", link, "error", err)
		}
		return
	}

	if ok, reason := s.relevance.IsRelevant(page.Title, page.Body); !ok {
		run.Summary.AddFiltered(string(reason))
		s.logger.Debug("candidate rejected",
			"url", link,
			"reason", string(reason),
		)
		return
	}

	rec, err := s.fields.Extract(page, link, run.Source.DefaultOrganizer(), run.Source.City)
	if err != nil {
		run.Summary.RecordErrors++
		s.logger.Warn("field extraction failed", "url", link, "error", err)
		return
	}
	if rec == nil {
		// No title and no start date: not enough signal to store.
		run.Summary.AddFiltered("no anchor fields")
		return
	}

	inserted, err := s.db.InsertEvent(ctx, rec)
	if err != nil {
		run.Summary.RecordErrors++
		s.logger.Warn("record save failed", "url", link, "error", err)
		return
	}
	if !inserted {
		run.Summary.Duplicates++
		return
	}

	run.Summary.RecordsSaved++
	s.logger.Info("record saved",
		"id", rec.ID,
		"title", rec.Title,
		"type", rec.Type,
		"date_start", rec.DateStart,
	)
}
