package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Stats prints record counts: total, upcoming, and per event type.`,
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	db, err := openEventDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.GetStats(context.Background(), isoToday())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Events:   %d\n", stats.Total)
	fmt.Fprintf(out, "Upcoming: %d\n", stats.Upcoming)

	if len(stats.PerType) > 0 {
		fmt.Fprintln(out, "\nBy type:")
		types := make([]string, 0, len(stats.PerType))
		for eventType := range stats.PerType {
			types = append(types, eventType)
		}
		// Largest groups first, ties alphabetical.
		sort.Slice(types, func(i, j int) bool {
			if stats.PerType[types[i]] != stats.PerType[types[j]] {
				return stats.PerType[types[i]] > stats.PerType[types[j]]
			}
			return types[i] < types[j]
		})
		for _, eventType := range types {
			fmt.Fprintf(out, "  %-20s %d\n", eventType, stats.PerType[eventType])
		}
	}

	return nil
}
