package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eventscan/eventscan/internal/config"
)

// writeSourcesFile writes a two-source file into a temp dir.
func writeSourcesFile(t *testing.T) string {
	t.Helper()

	content := `defaults:
  minAnchorWords: 2
sources:
  - name: mirea
    seedURL: https://www.mirea.ru/news/
    city: Москва
  - name: misis
    seedURL: https://misis.ru/news/
`
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write sources file: %v", err)
	}
	return path
}

// TestBuildConfig tests flag and sources file handling.
func TestBuildConfig(t *testing.T) {
	t.Run("flags and sources applied", func(t *testing.T) {
		t.Parallel()

		path := writeSourcesFile(t)
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{
			"-s", path,
			"-p", "50",
			"-t", "5s",
			"-b", "4",
			"-j",
		}); err != nil {
			t.Fatalf("flag parsing failed: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildConfig failed: %v", err)
		}

		if cfg.MaxPages != 50 {
			t.Errorf("unexpected max pages %d", cfg.MaxPages)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("unexpected timeout %v", cfg.Timeout)
		}
		if cfg.BatchSize != 4 {
			t.Errorf("unexpected batch size %d", cfg.BatchSize)
		}
		if !cfg.JSONReport {
			t.Error("expected JSON report enabled")
		}
		if len(cfg.Sources) != 2 {
			t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
		}
		// Vocabulary overrides from the defaults section are merged
		// over the built-in word lists.
		if cfg.Vocabulary.MinAnchorWords != 2 {
			t.Errorf("expected merged anchor threshold, got %d", cfg.Vocabulary.MinAnchorWords)
		}
		if len(cfg.Vocabulary.EventKeywords) == 0 {
			t.Error("expected built-in keywords preserved")
		}

		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid configuration, got %v", err)
		}
	})

	t.Run("positional arguments narrow sources", func(t *testing.T) {
		t.Parallel()

		path := writeSourcesFile(t)
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-s", path}); err != nil {
			t.Fatalf("flag parsing failed: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"misis"})
		if err != nil {
			t.Fatalf("buildConfig failed: %v", err)
		}
		if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "misis" {
			t.Errorf("unexpected sources %v", cfg.Sources)
		}
	})

	t.Run("unknown source name fails", func(t *testing.T) {
		t.Parallel()

		path := writeSourcesFile(t)
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-s", path}); err != nil {
			t.Fatalf("flag parsing failed: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"unknown"}); err == nil {
			t.Error("expected error for unknown source name")
		}
	})

	// Not parallel: changes the working directory for the default-location
	// lookup.
	t.Run("missing default file degrades to empty run", func(t *testing.T) {
		t.Chdir(t.TempDir())

		if config.FindSourcesFile("") != "" {
			t.Skip("a sources file exists in the config directory")
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("flag parsing failed: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("expected degraded config, got error %v", err)
		}
		if len(cfg.Sources) != 0 {
			t.Errorf("expected no sources, got %v", cfg.Sources)
		}
	})

	t.Run("explicit missing file fails", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-s", missing}); err != nil {
			t.Fatalf("flag parsing failed: %v", err)
		}

		_, err := buildConfig(cmd, nil)
		if err == nil {
			t.Fatal("expected error for missing sources file")
		}
		if !strings.Contains(err.Error(), "sources file not found") {
			t.Errorf("unexpected error %v", err)
		}
	})
}

// TestSelectSources tests source narrowing by name.
func TestSelectSources(t *testing.T) {
	t.Parallel()

	sources := []config.Source{
		{Name: "mirea"},
		{Name: "misis"},
		{Name: "hse"},
	}

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{name: "one match", names: []string{"misis"}, want: []string{"misis"}},
		{name: "several matches keep file order", names: []string{"hse", "mirea"}, want: []string{"mirea", "hse"}},
		{name: "no match", names: []string{"unknown"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := selectSources(sources, tt.names)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i].Name != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}
