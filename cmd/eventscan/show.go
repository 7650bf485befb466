package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored event in full",
		Long: `Show prints all stored fields of one event record by its identifier,
as printed by 'eventscan list'.`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %q", args[0])
	}

	db, err := openEventDB()
	if err != nil {
		return err
	}
	defer db.Close()

	event, err := db.GetEventByID(context.Background(), id)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("no event with id %d", id)
	}

	writeEventDetail(cmd.OutOrStdout(), event)
	return nil
}
