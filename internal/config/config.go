package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of the pipeline the tool grew out of:
// short clearnet timeouts, a small page budget per site, and a sub-second
// politeness delay between requests.
const (
	// DefaultTimeout is the connection timeout for each HTTP request.
	// University sites are ordinary clearnet hosts, so 12 seconds is
	// generous; anything slower is almost always a dead page.
	DefaultTimeout = 12 * time.Second

	// DefaultMaxPages is the page budget for one site's BFS crawl.
	// The cap is the primary runaway-prevention control: announcement
	// pages are usually reachable within one or two hops of a news
	// index, so a small budget finds most of them.
	DefaultMaxPages = 10

	// DefaultCrawlDelay is the pause between successive fetches.
	// This is a cooperative politeness setting, not backpressure.
	DefaultCrawlDelay = 100 * time.Millisecond

	// DefaultMaxRetries is the number of retries for transient HTTP
	// failures (500/502/503/504) before a URL is skipped for the run.
	DefaultMaxRetries = 3

	// DefaultBatchSize is the number of sources processed concurrently
	// when batch mode is enabled. Sources are independent, so the only
	// shared resource is the database, which enforces uniqueness itself.
	DefaultBatchSize = 1

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is far beyond any legitimate announcement page and prevents
	// memory exhaustion from unexpected responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMaxTextLength caps the extracted body text stored with a
	// record. Announcement pages carry their signal near the top.
	DefaultMaxTextLength = 8000

	// DefaultUserAgent identifies the crawler in HTTP requests.
	DefaultUserAgent = "eventscan/1.0 (+https://github.com/eventscan/eventscan)"

	// DefaultEnrichURL is the address of the local Ollama-compatible
	// endpoint used by the enrichment pass.
	DefaultEnrichURL = "http://localhost:11434/api/generate"

	// DefaultEnrichModel is the model name sent to the enrichment endpoint.
	DefaultEnrichModel = "mistral"

	// DefaultEnrichTimeout is the per-record timeout for enrichment calls.
	// Local models can be slow, so this is much larger than the fetch timeout.
	DefaultEnrichTimeout = 5 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "eventscan"

	// DefaultSourcesFile is the sources file looked up when no explicit
	// path is given.
	DefaultSourcesFile = "sources.yaml"
)

// Config holds all configuration for an eventscan run.
// It is populated from CLI flags and passed through the application by
// dependency injection rather than global state.
type Config struct {
	// SourcesFilePath is the path to the YAML sources file.
	// If empty, the tool looks for sources.yaml in the current directory
	// and then in the XDG config directory.
	SourcesFilePath string

	// Sources is the loaded source list. A missing or malformed sources
	// file yields an empty list and a warning, never a crash.
	Sources []Source

	// Vocabulary holds the keyword lists and thresholds used by the
	// link classifier, heuristic filter, and field extractor.
	Vocabulary Vocabulary

	// Timeout is the connection timeout for each HTTP request.
	Timeout time.Duration

	// MaxPages is the maximum number of pages to crawl per source.
	MaxPages int

	// CrawlDelay is the pause between successive fetches.
	CrawlDelay time.Duration

	// MaxRetries bounds retries for transient HTTP failures.
	MaxRetries int

	// BatchSize is the number of sources crawled concurrently.
	BatchSize int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport selects JSON run-summary output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown run-summary output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, receives the run summary instead of stdout.
	ReportFile string

	// EnrichURL is the enrichment endpoint address.
	EnrichURL string

	// EnrichModel is the model name for the enrichment endpoint.
	EnrichModel string

	// EnrichTimeout is the per-record timeout for enrichment calls.
	EnrichTimeout time.Duration
}

// NewConfig creates a Config with default values.
// Many defaults are non-zero, so relying on zero values would be wrong;
// the constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Vocabulary:    DefaultVocabulary(),
		Timeout:       DefaultTimeout,
		MaxPages:      DefaultMaxPages,
		CrawlDelay:    DefaultCrawlDelay,
		MaxRetries:    DefaultMaxRetries,
		BatchSize:     DefaultBatchSize,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		DBDir:         XDGDataDir(),
		EnrichURL:     DefaultEnrichURL,
		EnrichModel:   DefaultEnrichModel,
		EnrichTimeout: DefaultEnrichTimeout,
	}
}

// XDGDataDir returns the XDG data directory for eventscan.
// On Linux: ~/.local/share/eventscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for eventscan.
// On Linux: ~/.config/eventscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any crawling begins.
// The first error found is returned rather than collecting all errors,
// because fixing one often makes the others irrelevant.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
