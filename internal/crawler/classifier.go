package crawler

import (
	"strings"

	"github.com/eventscan/eventscan/internal/config"
)

// LinkClassifier decides whether a link points to an event announcement.
//
// This is a cheap, high-recall prefilter: a keyword match minus a
// noise-phrase veto. False positives are expected and corrected by the
// heuristic filter on the fetched page; false negatives are
// irrecoverable because a page never queued is never seen, so the
// keyword list errs toward inclusion.
type LinkClassifier struct {
	keywords       []string
	noisePhrases   []string
	minAnchorWords int
}

// NewLinkClassifier creates a classifier for the given vocabulary.
func NewLinkClassifier(vocab config.Vocabulary) *LinkClassifier {
	return &LinkClassifier{
		keywords:       vocab.EventKeywords,
		noisePhrases:   vocab.LinkNoisePhrases,
		minAnchorWords: vocab.MinAnchorWords,
	}
}

// IsEventCandidate classifies one harvested anchor.
// The anchor's own text is judged when it is substantial; otherwise the
// surrounding block context stands in for it.
func (c *LinkClassifier) IsEventCandidate(anchor Anchor) bool {
	context := anchor.Text
	if len(strings.Fields(context)) < c.minAnchorWords {
		context = anchor.Context
	}

	lower := strings.ToLower(context)

	hasKeyword := false
	for _, kw := range c.keywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	for _, phrase := range c.noisePhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	return true
}
