package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored events",
		Long: `Search finds stored events whose title, type, organizer, or audience
contains the query string.

Examples:
  eventscan search хакатон
  eventscan search "олимпиада по математике"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	db, err := openEventDB()
	if err != nil {
		return err
	}
	defer db.Close()

	query := strings.Join(args, " ")
	events, err := db.SearchEvents(context.Background(), query)
	if err != nil {
		return err
	}

	writeEventList(cmd.OutOrStdout(), events)
	return nil
}
