// Package pipeline orchestrates the per-source crawl-and-extract flow
// as an ordered list of steps, plus concurrent batch processing over
// multiple sources.
package pipeline
