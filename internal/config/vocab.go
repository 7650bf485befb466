package config

// TypeRule maps a keyword stem to an event type label.
// Rules are ordered: the first stem found in the page text wins, so the
// order encodes priority among overlapping stems.
type TypeRule struct {
	// Stem is the lowercased keyword stem searched for in page text.
	Stem string `yaml:"stem"`

	// Label is the event type recorded when the stem matches.
	Label string `yaml:"label"`
}

// AudienceRule maps a keyword stem to an audience tag from the controlled
// vocabulary. All matching rules contribute; the result is a tag set.
type AudienceRule struct {
	// Stem is the lowercased keyword stem searched for in page text.
	Stem string `yaml:"stem"`

	// Tag is the audience tag added when the stem matches.
	Tag string `yaml:"tag"`
}

// Marker promotes a default field value to a specific known value when a
// substring is found in the page text. This is a closed, deterministic
// override list, not general named-entity recognition.
type Marker struct {
	// Match is the lowercased substring searched for in page text.
	Match string `yaml:"match"`

	// Value is the promoted value. When empty, the matched substring is
	// title-cased and used directly.
	Value string `yaml:"value"`
}

// Vocabulary holds the keyword lists and thresholds that drive link
// classification, heuristic filtering, and field extraction.
//
// The vocabulary is an immutable value injected into each classifier and
// filter at construction rather than a set of module-level constants, so
// tests can substitute alternate word lists without touching global state.
// Lists err toward inclusion: the link classifier is a high-recall
// prefilter whose false positives are corrected later, while a link it
// misses is never seen again.
type Vocabulary struct {
	// EventKeywords are event-type nouns (plus the announcement phrase
	// "пройдет") that mark a link context or page as event-related.
	EventKeywords []string `yaml:"eventKeywords"`

	// LinkNoisePhrases veto a link even when an event keyword matched.
	// They cover procurement, HR, and congratulatory news contexts.
	LinkNoisePhrases []string `yaml:"linkNoisePhrases"`

	// StaleMarkers are phrases indicating a past event or news noise
	// ("took place", "results announced", staff/award language).
	StaleMarkers []string `yaml:"staleMarkers"`

	// NonEventTerms are administrative title words (institute, faculty,
	// "about us") that mark structural pages rather than announcements.
	NonEventTerms []string `yaml:"nonEventTerms"`

	// DensityThreshold is the minimum event-keyword density for a page
	// to pass the heuristic filter. Tunable, not load-bearing.
	DensityThreshold float64 `yaml:"densityThreshold"`

	// DensityMinWords is the body word count below which the density
	// check is skipped for lack of signal.
	DensityMinWords int `yaml:"densityMinWords"`

	// MinBodyWords is the word floor below which an extracted page is
	// rejected as a parser mis-fire.
	MinBodyWords int `yaml:"minBodyWords"`

	// EventTypes classifies a page into an event type, first match wins.
	EventTypes []TypeRule `yaml:"eventTypes"`

	// DefaultEventType is recorded when no type rule matches.
	DefaultEventType string `yaml:"defaultEventType"`

	// AudienceRules map keyword stems to audience tags.
	AudienceRules []AudienceRule `yaml:"audienceRules"`

	// TeamPattern is a regular expression whose presence in body text
	// sets the team-required flag.
	TeamPattern string `yaml:"teamPattern"`

	// CityMarkers promote the source's default city to a known city.
	CityMarkers []Marker `yaml:"cityMarkers"`

	// OrganizerMarkers promote the default organizer to a known
	// institution when its name or abbreviation is mentioned.
	OrganizerMarkers []Marker `yaml:"organizerMarkers"`

	// SkipExtensions lists URL suffixes excluded from the crawl frontier
	// (documents, archives, images).
	SkipExtensions []string `yaml:"skipExtensions"`

	// MinAnchorWords is the anchor word count below which the link
	// classifier widens the context to the enclosing block element.
	MinAnchorWords int `yaml:"minAnchorWords"`
}

// DefaultVocabulary returns the built-in Russian/English vocabulary.
// The word lists come from what university news feeds actually publish;
// a sources file can override any of them.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		EventKeywords: []string{
			"конференция", "семинар", "хакатон", "конкурс", "форум",
			"соревнование", "олимпиада", "выставка", "лекция", "вебинар",
			"мастер-класс", "пройдет", "пройдёт",
			"hackathon", "conference", "olympiad", "workshop",
		},
		LinkNoisePhrases: []string{
			"реквизиты", "вакансии", "работодатель", "приказ", "поздравляем",
		},
		StaleMarkers: []string{
			"состоялась", "состоялся", "прошел", "прошёл", "подвели итоги",
			"итоги конкурса", "завершилась", "завершился", "победитель",
			"лауреат", "призеров", "призёров", "награждение", "поздравляем",
			"вошел в топ", "вошёл в топ", "сотрудник", "профессор", "должность",
		},
		NonEventTerms: []string{
			"институт", "факультет", "о нас", "новости вуза", "структура",
		},
		DensityThreshold: 0.005,
		DensityMinWords:  100,
		MinBodyWords:     5,
		EventTypes: []TypeRule{
			{Stem: "конференц", Label: "Конференция"},
			{Stem: "семинар", Label: "Семинар"},
			{Stem: "хакатон", Label: "Хакатон"},
			{Stem: "hackathon", Label: "Хакатон"},
			{Stem: "конкурс", Label: "Конкурс/Соревнование"},
			{Stem: "соревнован", Label: "Конкурс/Соревнование"},
			{Stem: "олимпиад", Label: "Олимпиада"},
			{Stem: "выставк", Label: "Выставка"},
			{Stem: "форум", Label: "Форум"},
		},
		DefaultEventType: "Мероприятие",
		AudienceRules: []AudienceRule{
			{Stem: "студент", Tag: "студент"},
			{Stem: "аспирант", Tag: "студент"},
			{Stem: "преподаватель", Tag: "преподаватель"},
			{Stem: "школьник", Tag: "школьник"},
			{Stem: "научный", Tag: "научный сотрудник"},
		},
		TeamPattern: `команд[аыу]`,
		CityMarkers: []Marker{
			{Match: "москв", Value: "Москва"},
			{Match: "санкт-петербург", Value: "Санкт-Петербург"},
			{Match: "оренбург", Value: "Оренбург"},
		},
		OrganizerMarkers: nil,
		SkipExtensions: []string{
			".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
			".zip", ".rar", ".jpg", ".jpeg", ".png", ".gif", ".svg",
			".mp4", ".mp3",
		},
		MinAnchorWords: 3,
	}
}

// Merge overlays non-zero fields of other onto v and returns the result.
// Used to apply per-file vocabulary overrides from the sources file.
func (v Vocabulary) Merge(other Vocabulary) Vocabulary {
	out := v
	if len(other.EventKeywords) > 0 {
		out.EventKeywords = other.EventKeywords
	}
	if len(other.LinkNoisePhrases) > 0 {
		out.LinkNoisePhrases = other.LinkNoisePhrases
	}
	if len(other.StaleMarkers) > 0 {
		out.StaleMarkers = other.StaleMarkers
	}
	if len(other.NonEventTerms) > 0 {
		out.NonEventTerms = other.NonEventTerms
	}
	if other.DensityThreshold > 0 {
		out.DensityThreshold = other.DensityThreshold
	}
	if other.DensityMinWords > 0 {
		out.DensityMinWords = other.DensityMinWords
	}
	if other.MinBodyWords > 0 {
		out.MinBodyWords = other.MinBodyWords
	}
	if len(other.EventTypes) > 0 {
		out.EventTypes = other.EventTypes
	}
	if other.DefaultEventType != "" {
		out.DefaultEventType = other.DefaultEventType
	}
	if len(other.AudienceRules) > 0 {
		out.AudienceRules = other.AudienceRules
	}
	if other.TeamPattern != "" {
		out.TeamPattern = other.TeamPattern
	}
	if len(other.CityMarkers) > 0 {
		out.CityMarkers = other.CityMarkers
	}
	if len(other.OrganizerMarkers) > 0 {
		out.OrganizerMarkers = other.OrganizerMarkers
	}
	if len(other.SkipExtensions) > 0 {
		out.SkipExtensions = other.SkipExtensions
	}
	if other.MinAnchorWords > 0 {
		out.MinAnchorWords = other.MinAnchorWords
	}
	return out
}
