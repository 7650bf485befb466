package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Two independent passes find dates in free text: explicit numeric
// D.M.Y dates and verbal "D <month-name> Y" dates. Every candidate is
// validated by real calendar construction so that strings like
// "31.02.2025" contribute nothing.

// numericDateRe matches explicit dates like 15.03.2025 or 1.9.25.
var numericDateRe = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`)

// verbalDateRe matches dates like "10 апреля 2025" or "5 мар. 25".
// The month is identified by its three-letter stem; the trailing letters
// of the full month name are consumed without being interpreted.
var verbalDateRe = regexp.MustCompile(`(?i)(\d{1,2})[.\s](янв|фев|мар|апр|май|июн|июл|авг|сен|окт|ноя|дек)[а-яё]*[.\s]?\s*(\d{2,4})`)

// monthStems maps Russian three-letter month stems to month numbers.
var monthStems = map[string]time.Month{
	"янв": time.January, "фев": time.February, "мар": time.March,
	"апр": time.April, "май": time.May, "июн": time.June,
	"июл": time.July, "авг": time.August, "сен": time.September,
	"окт": time.October, "ноя": time.November, "дек": time.December,
}

// isoDate is the storage format for all dates.
const isoDate = "2006-01-02"

// makeDate validates a calendar date and returns it in ISO form.
// Two-digit years are assumed to be 20xx.
func makeDate(year, month, day int) (string, bool) {
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2), so a
	// round-trip mismatch means the date never existed.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}

	return t.Format(isoDate), true
}

// parseNumericDate converts one D.M.Y string to ISO form.
func parseNumericDate(s string) (string, bool) {
	m := numericDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	return makeDate(year, month, day)
}

// ExtractDates finds all valid dates in text, deduplicated and sorted
// ascending. ISO strings sort chronologically, so plain string sort is
// enough.
func ExtractDates(text string) []string {
	seen := make(map[string]bool)
	var dates []string

	add := func(iso string) {
		if !seen[iso] {
			seen[iso] = true
			dates = append(dates, iso)
		}
	}

	for _, m := range numericDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if iso, ok := makeDate(year, month, day); ok {
			add(iso)
		}
	}

	for _, m := range verbalDateRe.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthStems[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		year, _ := strconv.Atoi(m[3])
		if iso, ok := makeDate(year, int(month), day); ok {
			add(iso)
		}
	}

	sort.Strings(dates)
	return dates
}

// DateRange returns the earliest and latest date found in text.
// With a single date both bounds are equal; with none both are empty.
func DateRange(text string) (start, end string) {
	dates := ExtractDates(text)
	if len(dates) == 0 {
		return "", ""
	}
	return dates[0], dates[len(dates)-1]
}
