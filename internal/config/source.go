package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Source describes one organization to crawl.
// Sources are immutable once loaded from the sources file.
type Source struct {
	// Name is the human-readable organization name. It doubles as the
	// default organizer for records extracted from this source.
	Name string `yaml:"name"`

	// SeedURL is the starting point for the BFS crawl, typically the
	// organization's news index.
	SeedURL string `yaml:"seedURL"`

	// SiteRoot is the scheme+host boundary of the crawl. Links outside
	// this host are never followed. When empty, it is derived from
	// SeedURL during validation.
	SiteRoot string `yaml:"siteRoot"`

	// City is the default city for records extracted from this source.
	City string `yaml:"city"`

	// Organizer overrides Name as the default organizer when set.
	Organizer string `yaml:"organizer"`

	// DocURLs are extra single pages whose anchors are classified for
	// event candidacy directly, without BFS traversal.
	DocURLs []string `yaml:"docURLs"`
}

// DefaultOrganizer returns the organizer recorded for this source's
// records when the page text does not promote a known institution.
func (s Source) DefaultOrganizer() string {
	if s.Organizer != "" {
		return s.Organizer
	}
	return s.Name
}

// Host returns the hostname of the source's site root.
func (s Source) Host() string {
	u, err := url.Parse(s.SiteRoot)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// normalize validates the source and fills derivable fields.
func (s *Source) normalize() error {
	if s.Name == "" {
		return fmt.Errorf("source has no name")
	}
	if s.SeedURL == "" {
		return fmt.Errorf("source %q has no seedURL", s.Name)
	}
	seed, err := url.Parse(s.SeedURL)
	if err != nil || seed.Scheme == "" || seed.Host == "" {
		return fmt.Errorf("source %q has invalid seedURL %q", s.Name, s.SeedURL)
	}
	if s.SiteRoot == "" {
		s.SiteRoot = seed.Scheme + "://" + seed.Host
	}
	root, err := url.Parse(s.SiteRoot)
	if err != nil || root.Scheme == "" || root.Host == "" {
		return fmt.Errorf("source %q has invalid siteRoot %q", s.Name, s.SiteRoot)
	}
	return nil
}
