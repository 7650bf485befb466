package model

// EventRecord is the durable unit produced by the extraction pipeline:
// one structured event announcement keyed by its canonical link.
//
// Dates are ISO "YYYY-MM-DD" strings; the empty string means "unknown".
// There is deliberately no null-vs-empty distinction. When both DateStart
// and DateEnd are present, DateStart <= DateEnd holds because both derive
// from one sorted date set.
type EventRecord struct {
	// ID is the database identifier, zero before the record is stored.
	ID int64 `json:"id"`

	// Title is the announcement title, possibly rewritten by enrichment.
	Title string `json:"title"`

	// City is where the event takes place.
	City string `json:"city"`

	// Type is the classified event type (conference, hackathon, ...).
	Type string `json:"type"`

	// DateStart is the earliest date found in the page text.
	DateStart string `json:"date_start"`

	// DateEnd is the latest date found; equals DateStart when only one
	// date was found, empty when none were.
	DateEnd string `json:"date_end"`

	// RegStart is the registration opening date. The extractor never
	// fills it today; the column exists for additive schema evolution.
	RegStart string `json:"reg_start"`

	// RegEnd is the registration deadline.
	RegEnd string `json:"reg_end"`

	// TeamRequired reports whether the text mentions team participation.
	TeamRequired bool `json:"team_required"`

	// Audience is a tag set drawn from a controlled vocabulary
	// (студент, преподаватель, школьник, научный сотрудник), never
	// free text.
	Audience []string `json:"audience"`

	// Organizer is the organizing institution.
	Organizer string `json:"organizer"`

	// Link is the canonical absolute URL of the announcement with any
	// fragment stripped. It is the record's natural key: at most one
	// record per link ever exists in the store.
	Link string `json:"link"`

	// SourceText is the extracted page text the fields came from, kept
	// for inspection and for the enrichment pass.
	SourceText string `json:"text"`

	// Relevant is the enrichment verdict. Records start relevant; the
	// enrichment pass may clear the flag instead of deleting the row.
	Relevant bool `json:"relevant"`

	// Enriched reports whether the enrichment pass has processed the record.
	Enriched bool `json:"enriched"`
}

// HasAnchor reports whether the record carries at least one piece of
// identifying information. A record without a usable title and without a
// start date is not worth storing.
func (e *EventRecord) HasAnchor() bool {
	return e.Title != "" || e.DateStart != ""
}

// HasAudience reports whether the given tag is in the audience set.
func (e *EventRecord) HasAudience(tag string) bool {
	for _, a := range e.Audience {
		if a == tag {
			return true
		}
	}
	return false
}
