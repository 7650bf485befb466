package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// jsonLine decodes the single JSON log line in buf.
func jsonLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid log output %q: %v", buf.String(), err)
	}
	return entry
}

// TestSecureHandlerKeys tests key-based masking.
func TestSecureHandlerKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		value  string
		masked bool
	}{
		{name: "password key", key: "password", value: "hunter2", masked: true},
		{name: "authorization header", key: "Authorization", value: "secret-value", masked: true},
		{name: "api key variants", key: "api_key", value: "abc123", masked: true},
		{name: "keyword inside key", key: "db_password_hash", value: "x", masked: true},
		{name: "cookie header", key: "Cookie", value: "sid=1", masked: true},
		{name: "plain url", key: "url", value: "https://www.example.ru/news", masked: false},
		{name: "plain count", key: "pages", value: "42", masked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewJSONHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			entry := jsonLine(t, &buf)
			got, ok := entry[tt.key].(string)
			if !ok {
				t.Fatalf("attribute %q missing in %v", tt.key, entry)
			}

			if tt.masked && got != MaskValue {
				t.Errorf("expected %q masked, got %q", tt.key, got)
			}
			if !tt.masked && got == MaskValue {
				t.Errorf("expected %q untouched", tt.key)
			}
		})
	}
}

// TestSecureHandlerValues tests pattern-based masking of values under
// harmless keys.
func TestSecureHandlerValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  string
		masked bool
	}{
		{name: "jwt", value: "eyJhbGciOi.eyJzdWIiOi.sig", masked: true},
		{name: "bearer", value: "Bearer abc.def", masked: true},
		{name: "basic", value: "Basic dXNlcjpwYXNz", masked: true},
		{name: "regular text", value: "crawl completed", masked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewSecureHandler(slog.NewJSONHandler(&buf, nil)))
			logger.Info("test", "header", tt.value)

			entry := jsonLine(t, &buf)
			got := entry["header"].(string)

			if tt.masked && got != MaskValue {
				t.Errorf("expected value masked, got %q", got)
			}
			if !tt.masked && got != tt.value {
				t.Errorf("expected value untouched, got %q", got)
			}
		})
	}
}

// TestSecureHandlerGroups tests masking inside attribute groups.
func TestSecureHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("test", slog.Group("request",
		slog.String("url", "https://vuz.ru"),
		slog.String("token", "abc"),
	))

	entry := jsonLine(t, &buf)
	group, ok := entry["request"].(map[string]any)
	if !ok {
		t.Fatalf("missing group in %v", entry)
	}
	if group["url"] != "https://vuz.ru" {
		t.Errorf("expected url untouched, got %v", group["url"])
	}
	if group["token"] != MaskValue {
		t.Errorf("expected token masked, got %v", group["token"])
	}
}

// TestSecureHandlerWithAttrs tests that pre-bound attributes are sanitized.
func TestSecureHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSecureHandler(slog.NewJSONHandler(&buf, nil)))

	bound := logger.With("secret", "value", "source", "mirea")
	bound.Info("test")

	entry := jsonLine(t, &buf)
	if entry["secret"] != MaskValue {
		t.Errorf("expected bound secret masked, got %v", entry["secret"])
	}
	if entry["source"] != "mirea" {
		t.Errorf("expected safe attribute untouched, got %v", entry["source"])
	}
}

// TestNewSecureLogger tests level selection.
func TestNewSecureLogger(t *testing.T) {
	t.Parallel()

	t.Run("default level hides info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, false)

		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("expected info suppressed, got %q", buf.String())
		}

		logger.Warn("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("expected warning logged, got %q", buf.String())
		}
	})

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewSecureLogger(&buf, true)

		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			t.Error("expected debug enabled in verbose mode")
		}
	})
}
