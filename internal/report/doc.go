// Package report provides output writers for crawl run summaries in
// text, JSON, and Markdown formats.
package report
