// Package fetch provides the HTTP fetcher used by the crawl and extract
// stages. One fetcher is shared per run: it applies the connection
// timeout, a bounded retry policy for transient failures, and a response
// size limit, and decodes non-UTF-8 pages into UTF-8 text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// transientStatuses are HTTP status codes retried with backoff.
// Everything else fails immediately: 4xx responses and DNS errors do not
// improve on retry.
var transientStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Fetcher retrieves pages over HTTP.
//
// Design decision: all failure modes collapse to an error return. The
// pipeline treats a failed fetch as "page skipped" regardless of cause,
// so distinguishing them in the API would only complicate callers; the
// cause stays visible in the wrapped error message for logging.
type Fetcher struct {
	// client is the HTTP client carrying the connection timeout.
	client *http.Client

	// maxRetries bounds retries for transient failures.
	maxRetries int

	// retryDelay is the base delay; attempt n waits n*retryDelay.
	retryDelay time.Duration

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxRetries sets the retry budget for transient failures.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		f.maxRetries = n
	}
}

// WithRetryDelay sets the base backoff delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDelay = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithClient replaces the HTTP client. Tests use this to drop the
// timeout or route through a recording transport.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with the given connection timeout.
func NewFetcher(timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: timeout},
		maxRetries:  3,
		retryDelay:  time.Second,
		userAgent:   "eventscan/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves the page at the given URL and returns its body as
// UTF-8 text. Transient failures (network errors, 500/502/503/504) are
// retried with linear backoff up to the retry budget; anything else
// fails immediately.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * f.retryDelay):
			}
		}

		body, retryable, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", fmt.Errorf("fetch %s: retries exhausted: %w", pageURL, lastErr)
}

// fetchOnce performs a single request. The second return value reports
// whether the failure is worth retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		// Malformed URL: permanent.
		return "", false, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		// Network-level failures (timeouts, resets) are transient;
		// context cancellation is not.
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
		return "", transientStatuses[resp.StatusCode], err
	}

	// University sites still serve windows-1251 now and then; decode
	// whatever the Content-Type declares into UTF-8.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", false, fmt.Errorf("fetch %s: charset detection: %w", pageURL, err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", true, fmt.Errorf("fetch %s: read body: %w", pageURL, err)
	}

	return string(body), false, nil
}
