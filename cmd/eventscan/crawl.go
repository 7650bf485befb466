package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/crawler"
	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/extract"
	"github.com/eventscan/eventscan/internal/fetch"
	"github.com/eventscan/eventscan/internal/filter"
	"github.com/eventscan/eventscan/internal/log"
	"github.com/eventscan/eventscan/internal/model"
	"github.com/eventscan/eventscan/internal/pipeline"
	"github.com/eventscan/eventscan/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [source-name...]",
		Short: "Crawl configured sites and extract event records",
		Long: `Crawl walks each configured site starting from its seed URL, collects
links that look like event announcements, extracts structured records
from the linked pages, and stores them in the local database.

Already-stored links are skipped, so repeated runs only add new events.

Examples:
  # Crawl all sources from sources.yaml
  eventscan crawl

  # Crawl only the named sources
  eventscan crawl mirea misis

  # Use a specific sources file and a larger page budget
  eventscan crawl -s mysources.yaml -p 50

  # Crawl sources concurrently and write a Markdown summary
  eventscan crawl -b 4 -m -o run.md`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per source")
	cmd.Flags().DurationP("delay", "d", config.DefaultCrawlDelay,
		"Delay between successive requests")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sources crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("sources", "s", "",
		"Sources file path (default: sources.yaml in current or config directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	cfg.Verbose = verbose
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.SourcesFilePath, err = cmd.Flags().GetString("sources")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Load sources from the sources file.
	// An explicitly specified path must exist and parse; a missing or
	// malformed default-location file degrades to an empty source list
	// so the run completes with a zero-sources summary.
	explicitPath := cfg.SourcesFilePath != ""
	sourcesPath := config.FindSourcesFile(cfg.SourcesFilePath)
	if sourcesPath == "" {
		if explicitPath {
			return nil, fmt.Errorf("sources file not found: %s", cfg.SourcesFilePath)
		}
		fmt.Fprintln(os.Stderr, "Warning: no sources file found (run 'eventscan init' to create one)")
		return cfg, nil
	}

	sf, warnings, err := config.LoadSourcesFile(sourcesPath)
	if err != nil {
		if explicitPath {
			return nil, fmt.Errorf("failed to load sources file %s: %w", sourcesPath, err)
		}
		fmt.Fprintf(os.Stderr, "Warning: %v, continuing with no sources\n", err)
		return cfg, nil
	}
	for _, warning := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	cfg.Vocabulary = cfg.Vocabulary.Merge(sf.Defaults)
	cfg.Sources = sf.Sources

	// Positional arguments narrow the crawl to named sources.
	if len(args) > 0 {
		cfg.Sources = selectSources(sf.Sources, args)
		if len(cfg.Sources) == 0 {
			return nil, fmt.Errorf("no configured sources match %v", args)
		}
	}

	return cfg, nil
}

// selectSources returns the sources whose names appear in the argument list.
func selectSources(sources []config.Source, names []string) []config.Source {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []config.Source
	for _, src := range sources {
		if wanted[src.Name] {
			selected = append(selected, src)
		}
	}
	return selected
}

// runCrawl executes the crawl over all configured sources.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Sources) == 0 {
		logger.Warn("no sources configured, nothing to crawl")
		return outputReport(cfg, model.NewRunReport())
	}

	logger.Info("starting crawl",
		"sources", len(cfg.Sources),
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
	)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	fields, err := extract.NewFieldExtractor(cfg.Vocabulary)
	if err != nil {
		return fmt.Errorf("invalid vocabulary: %w", err)
	}

	factory := func() *pipeline.Pipeline {
		return createPipeline(cfg, fields, db, logger)
	}

	runReport := model.NewRunReport()
	startTime := time.Now()

	if len(cfg.Sources) > 1 && cfg.BatchSize > 1 {
		err = runBatchCrawl(ctx, cfg, factory, runReport, logger)
	} else {
		err = runSequentialCrawl(ctx, cfg, factory, runReport, logger)
	}

	runReport.Duration = time.Since(startTime)

	if reportErr := outputReport(cfg, runReport); reportErr != nil {
		logger.Error("report output failed", "error", reportErr)
	}

	return err
}

// runSequentialCrawl processes sources one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline, runReport *model.RunReport, logger *slog.Logger) error {
	for _, source := range cfg.Sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Crawling %s...\n", source.Name)
		run := pipeline.NewRun(source)
		startTime := time.Now()

		if err := factory().Execute(ctx, run); err != nil {
			if ctx.Err() != nil {
				runReport.Add(run.Summary)
				return ctx.Err()
			}
			logger.Error("crawl failed", "source", source.Name, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", source.Name, err)
		}

		run.Summary.Duration = time.Since(startTime)
		runReport.Add(run.Summary)

		fmt.Printf("  %d pages, %d candidates, %d saved (%s)\n\n",
			run.Summary.PagesCrawled,
			run.Summary.LinksFound,
			run.Summary.RecordsSaved,
			run.Summary.Duration.Round(time.Millisecond),
		)
	}

	return nil
}

// runBatchCrawl processes sources concurrently using BatchProcessor.
func runBatchCrawl(ctx context.Context, cfg *config.Config, factory func() *pipeline.Pipeline, runReport *model.RunReport, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sources (concurrency: %d)...\n\n",
		len(cfg.Sources), cfg.BatchSize)

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	summaries, err := bp.ProcessBatch(ctx, cfg.Sources)
	for _, summary := range summaries {
		if summary != nil {
			runReport.Add(summary)
		}
	}

	return err
}

// createPipeline builds the crawl-then-extract pipeline for one source.
func createPipeline(cfg *config.Config, fields *extract.FieldExtractor, db *database.EventDB, logger *slog.Logger) *pipeline.Pipeline {
	fetcher := fetch.NewFetcher(cfg.Timeout,
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	classifier := crawler.NewLinkClassifier(cfg.Vocabulary)
	pages := extract.NewPageExtractor(
		extract.WithMinBodyWords(cfg.Vocabulary.MinBodyWords),
		extract.WithMaxTextLength(config.DefaultMaxTextLength),
	)
	relevance := filter.NewHeuristicFilter(cfg.Vocabulary)

	p := pipeline.New(
		pipeline.WithLogger(logger),
	)
	p.AddSteps(
		pipeline.NewCrawlStep(fetcher, classifier,
			pipeline.WithCrawlMaxPages(cfg.MaxPages),
			pipeline.WithCrawlDelay(cfg.CrawlDelay),
			pipeline.WithCrawlSkipExtensions(cfg.Vocabulary.SkipExtensions),
			pipeline.WithCrawlLogger(logger),
		),
		pipeline.NewExtractStep(fetcher, pages, relevance, fields, db,
			pipeline.WithExtractDelay(cfg.CrawlDelay),
			pipeline.WithExtractLogger(logger),
		),
	)

	return p
}

// outputReport writes the run summary in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output,
			report.WithPrettyPrint(),
			report.WithVersion(getVersion()),
		)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output,
			report.WithVerbose(cfg.Verbose),
		)
	}

	_, err := writer.Write(runReport)
	return err
}
