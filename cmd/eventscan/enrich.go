package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/enrich"
	"github.com/spf13/cobra"
)

// NewEnrichCmd creates the enrich command.
func NewEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Clean up stored records with a locally hosted language model",
		Long: `Enrich sends each stored record that has not yet been processed to a
locally hosted Ollama-compatible model. The model re-judges whether the
page really announces an event, cleans the title, and refines the
audience tags.

Records judged irrelevant are hidden from listings but kept in the
database. If the model is unreachable or fails on a record, that record
keeps its original extraction and stays queued for the next run.

Examples:
  # Enrich with the default local endpoint and model
  eventscan enrich

  # Use a different model
  eventscan enrich --model llama3

  # Use a remote endpoint
  eventscan enrich --endpoint http://gpu-box:11434/api/generate`,
		Args: cobra.NoArgs,
		RunE: runEnrichCmd,
	}

	cmd.Flags().StringP("endpoint", "e", config.DefaultEnrichURL,
		"Ollama-compatible generate endpoint")
	cmd.Flags().StringP("model", "m", config.DefaultEnrichModel,
		"Model name to request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultEnrichTimeout,
		"Per-record timeout for model calls")

	return cmd
}

// runEnrichCmd executes the enrich command.
func runEnrichCmd(cmd *cobra.Command, _ []string) error {
	endpoint, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		return err
	}
	modelName, err := cmd.Flags().GetString("model")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
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

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client := enrich.NewClient(endpoint, modelName, timeout)
	enricher := enrich.NewEnricher(client, db,
		enrich.WithLogger(logger),
	)

	fmt.Printf("Enriching records with %s...\n", modelName)

	summary, err := enricher.Run(ctx)
	if summary != nil {
		fmt.Printf("\nProcessed: %d\nCleaned:   %d\nDiscarded: %d\nFailed:    %d\n",
			summary.Processed,
			summary.Cleaned,
			summary.Discarded,
			summary.Failed,
		)
	}

	return err
}
