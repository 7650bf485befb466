package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sources.yaml
var sourcesTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter sources file",
		Long: `Init creates a sources.yaml file in the current directory.

The generated file includes:
- A working example source
- Commented examples for listing pages and vocabulary overrides
- Documentation for all source fields

Examples:
  # Create sources.yaml in current directory
  eventscan init

  # Create the file at a specific path
  eventscan init -o config/sources.yaml

  # Force overwrite existing file
  eventscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultSourcesFile,
		"Output file path for the sources file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing sources file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("sources file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := sourcesTemplate.ReadFile("templates/sources.yaml")
	if err != nil {
		return fmt.Errorf("failed to read sources template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write sources file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created sources file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure the sites to crawl, then run:")
	fmt.Fprintln(cmd.OutOrStdout(), "  eventscan crawl")

	return nil
}
