// Package main provides the entry point for the eventscan CLI.
//
// Eventscan crawls university sites for announcements of student
// events (hackathons, olympiads, contests), extracts structured
// records, and serves them from a local SQLite database.
//
// Usage:
//
//	eventscan crawl
//	eventscan list --week
//	eventscan search хакатон
//
// See --help for all available options.
package main

// main is the entry point for eventscan.
func main() {
	Execute()
}
