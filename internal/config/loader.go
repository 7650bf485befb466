package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrSourcesNotFound is returned when the sources file does not exist.
// Callers decide whether that is fatal: an explicitly specified path that
// is missing is an error, while the absence of a default-location file
// simply yields an empty source list.
var ErrSourcesNotFound = errors.New("sources file not found")

// SourcesFile is the on-disk structure of the sources file.
// YAML is a superset of JSON, so a JSON sources array wrapped in the same
// structure loads unchanged.
type SourcesFile struct {
	// Defaults are vocabulary overrides applied on top of the built-in
	// vocabulary for the whole run.
	Defaults Vocabulary `yaml:"defaults,omitempty"`

	// Sources lists the organizations to crawl, in processing order.
	// No consumer may rely on that order.
	Sources []Source `yaml:"sources"`
}

// LoadSourcesFile reads and validates a sources file.
// Individual malformed sources are dropped with an error describing them
// collected into the returned warnings; only an unreadable or unparsable
// file is an error.
func LoadSourcesFile(path string) (*SourcesFile, []string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided sources path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrSourcesNotFound
		}
		return nil, nil, err
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("malformed sources file %s: %w", path, err)
	}

	var warnings []string
	valid := sf.Sources[:0]
	for i := range sf.Sources {
		s := sf.Sources[i]
		if err := s.normalize(); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		valid = append(valid, s)
	}
	sf.Sources = valid

	return &sf, warnings, nil
}

// FindSourcesFile locates the sources file:
//  1. an explicitly given path is used as-is
//  2. sources.yaml in the current directory
//  3. sources.yaml in the XDG config directory
//
// Returns an empty string when nothing is found.
func FindSourcesFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultSourcesFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(XDGConfigDir(), DefaultSourcesFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}

	return ""
}
