package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// TestFetch tests page retrieval and the retry policy.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body on success", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html><body>привет</body></html>")
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second, WithMaxRetries(0))
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if !strings.Contains(body, "привет") {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			fmt.Fprint(w, "ok")
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second, WithMaxRetries(0), WithUserAgent("testbot/1.0"))
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if gotUA != "testbot/1.0" {
			t.Errorf("expected custom user agent, got %q", gotUA)
		}
	})

	t.Run("retries transient status then succeeds", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "recovered")
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second,
			WithMaxRetries(3),
			WithRetryDelay(time.Millisecond),
		)
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if body != "recovered" {
			t.Errorf("unexpected body %q", body)
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 attempts, got %d", calls.Load())
		}
	})

	t.Run("gives up after retry budget", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second,
			WithMaxRetries(2),
			WithRetryDelay(time.Millisecond),
		)
		if _, err := f.Fetch(context.Background(), server.URL); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 3 {
			t.Errorf("expected 3 attempts (1 + 2 retries), got %d", calls.Load())
		}
	})

	t.Run("404 fails without retry", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second, WithMaxRetries(3), WithRetryDelay(time.Millisecond))
		if _, err := f.Fetch(context.Background(), server.URL); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("expected single attempt for 404, got %d", calls.Load())
		}
	})

	t.Run("decodes windows-1251 to UTF-8", func(t *testing.T) {
		t.Parallel()

		encoded, err := charmap.Windows1251.NewEncoder().String("Олимпиада для студентов")
		if err != nil {
			t.Fatalf("failed to encode fixture: %v", err)
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=windows-1251")
			fmt.Fprint(w, encoded)
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second, WithMaxRetries(0))
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if !strings.Contains(body, "Олимпиада для студентов") {
			t.Errorf("expected decoded UTF-8 text, got %q", body)
		}
	})

	t.Run("body larger than limit truncated", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, strings.Repeat("a", 1000))
		}))
		defer server.Close()

		f := NewFetcher(5*time.Second, WithMaxRetries(0), WithMaxBodySize(100))
		body, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(body) != 100 {
			t.Errorf("expected 100 bytes, got %d", len(body))
		}
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := NewFetcher(5*time.Second, WithMaxRetries(5), WithRetryDelay(time.Hour))
		_, err := f.Fetch(ctx, server.URL)
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("malformed URL fails immediately", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(time.Second, WithMaxRetries(3))
		if _, err := f.Fetch(context.Background(), "http://bad host/"); err == nil {
			t.Error("expected error for malformed URL")
		}
	})
}
