package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// defaultPageSize is the number of events shown per page.
const defaultPageSize = 10

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events",
		Long: `List shows stored event records, newest start date first.

Examples:
  # First page of events
  eventscan list

  # Third page, 20 per page
  eventscan list --page 3 --limit 20

  # Events starting today
  eventscan list --today

  # Events starting in the next 7 days
  eventscan list --week`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().IntP("page", "p", 1, "Page number (1-based)")
	cmd.Flags().IntP("limit", "l", defaultPageSize, "Events per page")
	cmd.Flags().Bool("today", false, "Show only events starting today")
	cmd.Flags().Bool("week", false, "Show only events starting within 7 days")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	page, err := cmd.Flags().GetInt("page")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	today, err := cmd.Flags().GetBool("today")
	if err != nil {
		return err
	}
	week, err := cmd.Flags().GetBool("week")
	if err != nil {
		return err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	db, err := openEventDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	now := isoToday()

	switch {
	case today:
		events, err := db.EventsOn(ctx, now)
		if err != nil {
			return err
		}
		writeEventList(cmd.OutOrStdout(), events)
	case week:
		until := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
		events, err := db.EventsBetween(ctx, now, until)
		if err != nil {
			return err
		}
		writeEventList(cmd.OutOrStdout(), events)
	default:
		events, err := db.ListEvents(ctx, (page-1)*limit, limit)
		if err != nil {
			return err
		}
		writeEventList(cmd.OutOrStdout(), events)
	}

	return nil
}
