package extract

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eventscan/eventscan/internal/config"
	"github.com/eventscan/eventscan/internal/model"
)

// regDeadlineRe anchors on the registration phrase and captures the
// following numeric date: "регистрация до 10.05.2025", "заявки по 01.02.25".
var regDeadlineRe = regexp.MustCompile(`(?i)(?:регистрация|заявки)\s+(?:до|по)\s+(\d{1,2}\.\d{1,2}\.\d{2,4})`)

// sentenceSplitRe splits body text into sentences for the title fallback.
var sentenceSplitRe = regexp.MustCompile(`[.!?]`)

// FieldExtractor turns a page's title and body text into an EventRecord
// using regex and dictionary heuristics. All matching is case-insensitive
// and every field is extracted independently, so extraction order does
// not affect the output.
type FieldExtractor struct {
	vocab       config.Vocabulary
	teamPattern *regexp.Regexp
	titleCaser  cases.Caser
}

// NewFieldExtractor creates a FieldExtractor for the given vocabulary.
func NewFieldExtractor(vocab config.Vocabulary) (*FieldExtractor, error) {
	team, err := regexp.Compile(`(?i)` + vocab.TeamPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid team pattern %q: %w", vocab.TeamPattern, err)
	}

	return &FieldExtractor{
		vocab:       vocab,
		teamPattern: team,
		titleCaser:  cases.Title(language.Russian),
	}, nil
}

// Extract builds an EventRecord from extracted page text.
// Returns (nil, nil) when neither a usable title nor a start date was
// recovered: a record needs at least one anchor of identifying
// information, and its absence is an expected outcome, not an error.
func (x *FieldExtractor) Extract(page *PageText, link, defaultOrganizer, defaultCity string) (*model.EventRecord, error) {
	searchText := page.Joined()
	lower := strings.ToLower(searchText)

	rec := &model.EventRecord{
		Title:      strings.TrimSpace(page.Title),
		City:       defaultCity,
		Type:       x.vocab.DefaultEventType,
		Organizer:  defaultOrganizer,
		Link:       link,
		SourceText: searchText,
		Relevant:   true,
	}

	// Title fallback: first sentence of the body when it is substantial.
	if rec.Title == "" {
		first := sentenceSplitRe.Split(page.Body, 2)[0]
		if len(strings.Fields(first)) > 3 {
			rec.Title = strings.TrimSpace(first)
		}
	}

	// First matching stem wins; rule order encodes priority among
	// overlapping stems.
	for _, rule := range x.vocab.EventTypes {
		if strings.Contains(lower, rule.Stem) {
			rec.Type = rule.Label
			break
		}
	}

	rec.DateStart, rec.DateEnd = DateRange(searchText)

	if m := regDeadlineRe.FindStringSubmatch(searchText); m != nil {
		if iso, ok := parseNumericDate(m[1]); ok {
			rec.RegEnd = iso
		}
	}

	for _, marker := range x.vocab.CityMarkers {
		if strings.Contains(lower, marker.Match) {
			rec.City = x.markerValue(marker)
			break
		}
	}

	for _, marker := range x.vocab.OrganizerMarkers {
		if strings.Contains(lower, marker.Match) {
			rec.Organizer = x.markerValue(marker)
			break
		}
	}

	// Audience is a set: all matching rules contribute, deduplicated.
	seen := make(map[string]bool)
	for _, rule := range x.vocab.AudienceRules {
		if strings.Contains(lower, rule.Stem) && !seen[rule.Tag] {
			seen[rule.Tag] = true
			rec.Audience = append(rec.Audience, rule.Tag)
		}
	}

	rec.TeamRequired = x.teamPattern.MatchString(searchText)

	if !rec.HasAnchor() {
		return nil, nil
	}

	return rec, nil
}

// markerValue resolves a marker's promoted value, title-casing the
// matched substring when no explicit value is configured.
func (x *FieldExtractor) markerValue(m config.Marker) string {
	if m.Value != "" {
		return m.Value
	}
	return x.titleCaser.String(m.Match)
}
