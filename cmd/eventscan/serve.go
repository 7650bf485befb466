package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/model"
)

// openEventDB opens the database in the XDG data directory without
// creating it: serving commands are useless before the first crawl.
func openEventDB() (*database.EventDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		return nil, fmt.Errorf("no event database yet (run 'eventscan crawl' first): %w", err)
	}
	return db, nil
}

// isoToday returns today's date in the stored ISO format.
func isoToday() string {
	return time.Now().Format("2006-01-02")
}

// writeEventList prints a compact listing of event records.
func writeEventList(w io.Writer, events []*model.EventRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	for _, e := range events {
		writeEventLine(w, e)
	}
	fmt.Fprintf(w, "\n%d event(s)\n", len(events))
}

// writeEventLine prints a one-event summary line pair.
func writeEventLine(w io.Writer, e *model.EventRecord) {
	dates := e.DateStart
	if e.DateEnd != "" && e.DateEnd != e.DateStart {
		dates += " .. " + e.DateEnd
	}
	if dates == "" {
		dates = "date unknown"
	}

	title := e.Title
	if title == "" {
		title = "(untitled)"
	}

	fmt.Fprintf(w, "[%d] %s\n", e.ID, title)
	fmt.Fprintf(w, "     %s | %s | %s\n", e.Type, dates, e.Organizer)
}

// writeEventDetail prints the full stored record.
func writeEventDetail(w io.Writer, e *model.EventRecord) {
	fmt.Fprintf(w, "ID:           %d\n", e.ID)
	fmt.Fprintf(w, "Title:        %s\n", e.Title)
	fmt.Fprintf(w, "Type:         %s\n", e.Type)
	if e.City != "" {
		fmt.Fprintf(w, "City:         %s\n", e.City)
	}
	if e.DateStart != "" {
		fmt.Fprintf(w, "Starts:       %s\n", e.DateStart)
	}
	if e.DateEnd != "" && e.DateEnd != e.DateStart {
		fmt.Fprintf(w, "Ends:         %s\n", e.DateEnd)
	}
	if e.RegEnd != "" {
		fmt.Fprintf(w, "Register by:  %s\n", e.RegEnd)
	}
	if len(e.Audience) > 0 {
		fmt.Fprintf(w, "Audience:     %s\n", strings.Join(e.Audience, ", "))
	}
	if e.TeamRequired {
		fmt.Fprintln(w, "Teams:        team participation")
	}
	fmt.Fprintf(w, "Organizer:    %s\n", e.Organizer)
	fmt.Fprintf(w, "Link:         %s\n", e.Link)
	if e.Enriched {
		fmt.Fprintln(w, "Enriched:     yes")
	}
}
