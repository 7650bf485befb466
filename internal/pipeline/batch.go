package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent processing of multiple sources.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-source execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each source.
	// A factory ensures each source gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of sources processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed run summaries in source order.
	// Access is synchronized via mutex.
	results []*model.RunSummary
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent sources.
// Default is 1: sources share no state, but single-file politeness is
// the safer default for university sites.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each source to create a
// fresh pipeline instance, so pipeline state doesn't leak between
// sources.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
		results:         make([]*model.RunSummary, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple sources concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each source gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all run summaries collected, even for sources that failed.
// The error return indicates whether the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []config.Source) ([]*model.RunSummary, error) {
	bp.logger.Info("starting batch processing",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.RunSummary, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing source",
				"source", source.Name,
				"index", i+1,
				"total", len(sources),
			)

			run := NewRun(source)
			runStart := time.Now()

			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, run)

			run.Summary.Duration = time.Since(runStart)

			// Store result regardless of error; the summary carries
			// the error counters for the report.
			bp.mu.Lock()
			bp.results[i] = run.Summary
			bp.mu.Unlock()

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bp.logger.Warn("source failed",
					"source", source.Name,
					"error", err,
				)
				// Don't return the error to errgroup: other sources
				// should still run.
				return nil
			}

			bp.logger.Info("source completed",
				"source", source.Name,
				"saved", run.Summary.RecordsSaved,
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_sources", len(sources),
		"elapsed", elapsed,
	)

	return bp.results, err
}
