package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/eventscan/eventscan/internal/fetch"
)

// Spider performs a bounded breadth-first traversal of one site's
// internal link graph, accumulating event-candidate links.
//
// Design decision: BFS rather than DFS because announcement pages are
// usually reachable within one or two hops of a news index. Within a
// fixed page budget, breadth of coverage beats depth.
type Spider struct {
	// fetcher retrieves pages; it owns timeout and retry policy.
	fetcher *fetch.Fetcher

	// classifier judges harvested anchors for event candidacy.
	classifier *LinkClassifier

	// maxPages bounds the total pages fetched per crawl. The cap is
	// the primary runaway-prevention control: no depth limit exists.
	maxPages int

	// delay is the politeness pause between successive fetches.
	delay time.Duration

	// skipExtensions lists URL suffixes excluded from the frontier.
	skipExtensions []string

	// logger for structured logging.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxPages sets the page budget per crawl.
func WithMaxPages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = n
	}
}

// WithDelay sets the pause between fetches.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithSkipExtensions sets the URL suffixes excluded from the frontier.
func WithSkipExtensions(exts []string) SpiderOption {
	return func(s *Spider) {
		s.skipExtensions = exts
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider sharing the given fetcher and classifier.
func NewSpider(fetcher *fetch.Fetcher, classifier *LinkClassifier, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:    fetcher,
		classifier: classifier,
		maxPages:   10,
		delay:      100 * time.Millisecond,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Outcome is the result of one crawl: the unique event-candidate links
// found and how many pages were fetched finding them.
type Outcome struct {
	// EventLinks are the candidate links, sorted for stable downstream
	// processing.
	EventLinks []string

	// PagesCrawled is the number of pages fetched. Always at most the
	// configured page budget.
	PagesCrawled int
}

// Crawl traverses the site breadth-first from seedURL, never leaving
// the siteRoot host, and returns all discovered event-candidate links.
//
// Crawl state (frontier, visited set, candidate set) is local to the
// call; a Spider can run concurrent crawls of independent sites.
// Cancellation is checked at the top of the loop and before each fetch,
// so an external stop halts promptly with a partial result.
func (s *Spider) Crawl(ctx context.Context, seedURL, siteRoot string) (*Outcome, error) {
	root, err := url.Parse(siteRoot)
	if err != nil || root.Host == "" {
		return nil, fmt.Errorf("invalid site root %q", siteRoot)
	}
	host := strings.ToLower(root.Hostname())

	seed := normalizeURL(seedURL)
	if seed == "" {
		return nil, fmt.Errorf("invalid seed URL %q", seedURL)
	}

	frontier := []string{seed}
	visited := map[string]bool{seed: true}
	candidates := make(map[string]bool)
	outcome := &Outcome{}

	for len(frontier) > 0 && outcome.PagesCrawled < s.maxPages {
		select {
		case <-ctx.Done():
			outcome.EventLinks = sortedKeys(candidates)
			return outcome, ctx.Err()
		default:
		}

		current := frontier[0]
		frontier = frontier[1:]
		outcome.PagesCrawled++

		s.logger.Debug("crawling page",
			"url", current,
			"page", outcome.PagesCrawled,
			"budget", s.maxPages,
		)

		events, crawlable, err := s.harvestPage(ctx, current, host)
		if err != nil {
			if ctx.Err() != nil {
				outcome.EventLinks = sortedKeys(candidates)
				return outcome, ctx.Err()
			}
			// Some pages will fail; the crawl continues.
			s.logger.Debug("page skipped", "url", current, "error", err)
			continue
		}

		for _, link := range events {
			candidates[link] = true
		}

		// Mark visited at enqueue time so a URL reachable via multiple
		// paths is queued once.
		for _, link := range crawlable {
			if !visited[link] {
				visited[link] = true
				frontier = append(frontier, link)
			}
		}

		if s.delay > 0 && len(frontier) > 0 && outcome.PagesCrawled < s.maxPages {
			select {
			case <-ctx.Done():
				outcome.EventLinks = sortedKeys(candidates)
				return outcome, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	outcome.EventLinks = sortedKeys(candidates)
	return outcome, nil
}

// CollectCandidates classifies the anchors of a single page without
// traversal. Used for per-source document pages that list events
// directly.
func (s *Spider) CollectCandidates(ctx context.Context, pageURL, siteRoot string) ([]string, error) {
	root, err := url.Parse(siteRoot)
	if err != nil || root.Host == "" {
		return nil, fmt.Errorf("invalid site root %q", siteRoot)
	}

	events, _, err := s.harvestPage(ctx, normalizeURL(pageURL), strings.ToLower(root.Hostname()))
	if err != nil {
		return nil, err
	}

	sort.Strings(events)
	return events, nil
}

// harvestPage fetches one page and splits its anchors into event
// candidates and same-site crawl targets. Both lists contain normalized
// URLs on the site host only.
func (s *Spider) harvestPage(ctx context.Context, pageURL, host string) (events, crawlable []string, err error) {
	body, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}

	anchors, err := ParseLinks(pageURL, body)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	for _, a := range anchors {
		link := normalizeURL(a.URL)
		if link == "" || link == pageURL || seen[link] {
			continue
		}
		if !sameHost(link, host) || s.hasSkippedExtension(link) {
			continue
		}
		seen[link] = true

		if s.classifier.IsEventCandidate(a) {
			events = append(events, link)
		}
		crawlable = append(crawlable, link)
	}

	return events, crawlable, nil
}

// hasSkippedExtension reports whether the URL points at a non-HTML
// resource (documents, archives, images).
func (s *Spider) hasSkippedExtension(link string) bool {
	lower := strings.ToLower(link)
	for _, ext := range s.skipExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// normalizeURL canonicalizes a URL for set membership: fragment
// stripped, scheme and host lowercased, empty path normalized to "/".
// Returns an empty string for unparsable input.
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// sameHost reports whether the URL's host equals the crawl host.
func sameHost(link, host string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), host)
}

// sortedKeys returns a map's keys in sorted order, making candidate
// emission deterministic across runs.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
