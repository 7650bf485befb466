package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Anchor is one hyperlink harvested from a page, together with the
// textual context the classifier judges it by.
type Anchor struct {
	// URL is the absolute link target, resolved against the page URL.
	URL string

	// Text is the anchor's own text.
	Text string

	// Context is the text of the nearest enclosing list-item,
	// paragraph, table-cell, or div. Falls back to Text when no such
	// ancestor exists.
	Context string
}

// contextTags are the block elements an anchor's context widens to.
var contextTags = map[string]bool{
	"li": true, "p": true, "td": true, "div": true,
}

var anchorWhitespaceRun = regexp.MustCompile(`\s+`)

// ParseLinks extracts all anchors from an HTML document, resolving
// relative targets against baseURL. Non-navigational schemes
// (javascript, mailto, tel, data) and bare fragments are dropped.
func ParseLinks(baseURL, rawHTML string) ([]Anchor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var anchors []Anchor

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if resolved := resolveHref(base, href); resolved != "" {
					text := nodeText(n)
					anchors = append(anchors, Anchor{
						URL:     resolved,
						Text:    text,
						Context: anchorContext(n, text),
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return anchors, nil
}

// anchorContext returns the text of the nearest enclosing block element,
// or the anchor's own text when none is found before the document root.
func anchorContext(n *html.Node, fallback string) string {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			if p.Data == "body" || p.Data == "html" {
				break
			}
			if contextTags[p.Data] {
				return nodeText(p)
			}
		}
	}
	return fallback
}

// nodeText collects the concatenated text content of a node, with
// whitespace collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.TrimSpace(anchorWhitespaceRun.ReplaceAllString(b.String(), " "))
}

// resolveHref resolves a relative href against the page URL.
// Returns an empty string for non-navigational targets.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return base.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
