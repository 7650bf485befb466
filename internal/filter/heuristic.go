// Package filter provides the second-stage heuristic relevance filter
// applied to fetched candidate pages.
//
// The link classifier is deliberately permissive, so this stage trades
// recall for precision. It is the main defense against past-tense news
// items masquerading as announcements.
package filter

import (
	"strings"

	"github.com/eventscan/eventscan/internal/config"
)

// Reason is the machine-readable outcome of a relevance check.
// Rejections are expected, logged outcomes used for observability and
// vocabulary tuning, never surfaced as failures.
type Reason string

// Relevance check outcomes.
const (
	// ReasonPassed means the page survived all checks.
	ReasonPassed Reason = "passed"

	// ReasonStaleNoise means a past-tense or news-noise marker was found.
	ReasonStaleNoise Reason = "stale/noise"

	// ReasonNonEventPage means the title names an administrative page.
	ReasonNonEventPage Reason = "non-event page"

	// ReasonLowDensity means event keywords are too sparse in the body.
	ReasonLowDensity Reason = "low density"
)

// HeuristicFilter rejects stale or irrelevant candidate pages by
// stop-phrase detection, title-pattern checks, and keyword-density
// thresholding.
type HeuristicFilter struct {
	staleMarkers     []string
	nonEventTerms    []string
	eventKeywords    []string
	densityThreshold float64
	densityMinWords  int
}

// NewHeuristicFilter creates a filter for the given vocabulary.
func NewHeuristicFilter(vocab config.Vocabulary) *HeuristicFilter {
	return &HeuristicFilter{
		staleMarkers:     vocab.StaleMarkers,
		nonEventTerms:    vocab.NonEventTerms,
		eventKeywords:    vocab.EventKeywords,
		densityThreshold: vocab.DensityThreshold,
		densityMinWords:  vocab.DensityMinWords,
	}
}

// IsRelevant runs the ordered checks against a candidate page's title
// and body text. The first failing check wins:
//
//  1. a stale/noise marker anywhere in the text rejects the page
//  2. an administrative term in the title rejects the page
//  3. event-keyword density below the threshold rejects the page,
//     checked only when the text is long enough to carry signal
func (f *HeuristicFilter) IsRelevant(title, body string) (bool, Reason) {
	text := strings.ToLower(title + " " + body)

	for _, marker := range f.staleMarkers {
		if strings.Contains(text, marker) {
			return false, ReasonStaleNoise
		}
	}

	lowerTitle := strings.ToLower(title)
	for _, term := range f.nonEventTerms {
		if strings.Contains(lowerTitle, term) {
			return false, ReasonNonEventPage
		}
	}

	totalWords := len(strings.Fields(text))
	if totalWords > f.densityMinWords {
		count := 0
		for _, kw := range f.eventKeywords {
			count += strings.Count(text, kw)
		}
		if float64(count)/float64(totalWords) < f.densityThreshold {
			return false, ReasonLowDensity
		}
	}

	return true, ReasonPassed
}
