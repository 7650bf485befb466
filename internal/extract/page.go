package extract

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned when a page yields too little residual text
// after boilerplate removal. Near-empty and JavaScript-only pages land
// here; the pipeline treats them the same as pages that never fetched.
var ErrNoContent = errors.New("page has no usable content")

// noiseTags are structural elements removed wholesale before text
// extraction. They never carry announcement content.
var noiseTags = []string{
	"header", "footer", "nav", "aside", "script", "style",
	"img", "form", "button", "iframe", "noscript",
}

// noiseSelectors remove boilerplate by common class and id names:
// navigation, widgets, ads, cookie banners.
var noiseSelectors = []string{
	".sidebar", ".nav", ".menu", "#nav", "#menu", ".advertisement",
	".footer", ".widget", ".vacancies", "#footer", "#header", "#sidebar",
	".cookie-notice", "#cookie-banner", ".gdpr-container", "#privacy-policy",
}

// contentClassPattern matches class attributes that typically wrap the
// main article body on news pages.
var contentClassPattern = regexp.MustCompile(`(?i)(content|main-content|article-content|post|entry|text-block)`)

var whitespaceRun = regexp.MustCompile(`\s+`)

// PageText is the output of fetch+extract for one URL: a title and the
// cleaned main-content text. Ephemeral, consumed by the next stage.
type PageText struct {
	// Title is the first heading or the document title, may be empty.
	Title string

	// Body is the whitespace-collapsed main-content text with the title
	// prefix stripped.
	Body string
}

// Joined returns title and body as one search string, the form the
// classifier and field extractor operate on.
func (p *PageText) Joined() string {
	if p.Title == "" {
		return p.Body
	}
	return p.Title + " " + p.Body
}

// contentStrategy locates the main-content region of a document.
// Strategies are tried in order and the first that finds anything wins,
// keeping the fallback chain inspectable and testable per strategy.
type contentStrategy struct {
	name string
	find func(doc *goquery.Document) (*goquery.Selection, bool)
}

var contentStrategies = []contentStrategy{
	{
		name: "article",
		find: func(doc *goquery.Document) (*goquery.Selection, bool) {
			sel := doc.Find("article").First()
			return sel, sel.Length() > 0
		},
	},
	{
		name: "main",
		find: func(doc *goquery.Document) (*goquery.Selection, bool) {
			sel := doc.Find("main").First()
			return sel, sel.Length() > 0
		},
	},
	{
		name: "content-class",
		find: func(doc *goquery.Document) (*goquery.Selection, bool) {
			sel := doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
				class, ok := s.Attr("class")
				return ok && contentClassPattern.MatchString(class)
			}).First()
			return sel, sel.Length() > 0
		},
	},
}

// PageExtractor isolates a title and main-content text from raw HTML.
// It is deterministic: the same HTML always yields the same PageText.
type PageExtractor struct {
	// minBodyWords is the residual word floor below which the page is
	// rejected as a parser mis-fire.
	minBodyWords int

	// maxTextLength caps the returned body text.
	maxTextLength int
}

// PageOption configures a PageExtractor.
type PageOption func(*PageExtractor)

// WithMinBodyWords sets the residual word floor.
func WithMinBodyWords(n int) PageOption {
	return func(e *PageExtractor) {
		e.minBodyWords = n
	}
}

// WithMaxTextLength caps the extracted body text length in bytes.
func WithMaxTextLength(n int) PageOption {
	return func(e *PageExtractor) {
		e.maxTextLength = n
	}
}

// NewPageExtractor creates a PageExtractor with sensible defaults.
func NewPageExtractor(opts ...PageOption) *PageExtractor {
	e := &PageExtractor{
		minBodyWords:  5,
		maxTextLength: 8000,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract strips boilerplate from raw HTML and returns the page title
// and main-content text. Returns ErrNoContent when the residual body is
// below the word floor.
func (e *PageExtractor) Extract(rawHTML string) (*PageText, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	for _, tag := range noiseTags {
		doc.Find(tag).Remove()
	}
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	title = whitespaceRun.ReplaceAllString(title, " ")

	var text string
	for _, strategy := range contentStrategies {
		if sel, ok := strategy.find(doc); ok {
			text = sel.Text()
			break
		}
	}
	if text == "" {
		text = doc.Text()
	}

	body := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))

	// The h1 usually repeats at the top of the content region; drop it
	// so the body is pure content.
	if title != "" && strings.HasPrefix(body, title) {
		body = strings.TrimSpace(strings.TrimPrefix(body, title))
	}

	if len(strings.Fields(body)) < e.minBodyWords {
		return nil, ErrNoContent
	}

	if len(body) > e.maxTextLength {
		body = truncateUTF8(body, e.maxTextLength)
	}

	return &PageText{Title: title, Body: body}, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
