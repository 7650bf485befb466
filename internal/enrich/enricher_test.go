package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/eventscan/eventscan/internal/database"
	"github.com/eventscan/eventscan/internal/model"
)

// fakeJudge returns canned verdicts keyed by record title.
type fakeJudge struct {
	verdicts map[string]*Verdict
	err      error
}

func (f *fakeJudge) Judge(_ context.Context, title, _ string) (*Verdict, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.verdicts[title]
	if !ok {
		return nil, ErrEmptyResponse
	}
	return v, nil
}

// newEnrichDB creates a temporary record store.
func newEnrichDB(t *testing.T) *database.EventDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// insertRecord stores one relevant unenriched record.
func insertRecord(t *testing.T, db *database.EventDB, title, link string, audience []string) *model.EventRecord {
	t.Helper()

	rec := &model.EventRecord{
		Title:      title,
		Type:       "Хакатон",
		DateStart:  "2025-05-20",
		Audience:   audience,
		Organizer:  "ВУЗ",
		Link:       link,
		SourceText: "Хакатон пройдет 20.05.2025",
		Relevant:   true,
	}
	if _, err := db.InsertEvent(context.Background(), rec); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	return rec
}

// TestEnricherRun tests verdict application over the unenriched queue.
func TestEnricherRun(t *testing.T) {
	t.Parallel()

	t.Run("irrelevant record is discarded", func(t *testing.T) {
		t.Parallel()

		db := newEnrichDB(t)
		rec := insertRecord(t, db, "Итоги конкурса", "https://vuz.ru/old", nil)

		judge := &fakeJudge{verdicts: map[string]*Verdict{
			"Итоги конкурса": {IsRelevant: false},
		}}
		enricher := NewEnricher(judge, db)

		summary, err := enricher.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if summary.Processed != 1 || summary.Discarded != 1 {
			t.Errorf("unexpected summary %+v", summary)
		}

		// The record survives but no longer appears in listings.
		events, err := db.ListEvents(context.Background(), 0, 10)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("expected discarded record hidden, got %d", len(events))
		}
		got, err := db.GetEventByID(context.Background(), rec.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got == nil || got.Relevant {
			t.Errorf("expected stored irrelevant record, got %+v", got)
		}
	})

	t.Run("cleaned title and merged audience", func(t *testing.T) {
		t.Parallel()

		db := newEnrichDB(t)
		rec := insertRecord(t, db, "Хакатон пройдет 20.05.2025 в Москве", "https://vuz.ru/hack", []string{"студент"})

		judge := &fakeJudge{verdicts: map[string]*Verdict{
			rec.Title: {
				IsRelevant:   true,
				CleanedTitle: "Весенний хакатон",
				Audience:     []string{"Студент", "школьник"},
			},
		}}
		enricher := NewEnricher(judge, db)

		summary, err := enricher.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if summary.Cleaned != 1 {
			t.Errorf("unexpected summary %+v", summary)
		}

		got, err := db.GetEventByID(context.Background(), rec.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Title != "Весенний хакатон" {
			t.Errorf("unexpected title %q", got.Title)
		}
		// Model tags are lowercased and deduplicated against the
		// heuristic ones.
		want := []string{"студент", "школьник"}
		if len(got.Audience) != len(want) {
			t.Fatalf("unexpected audience %v", got.Audience)
		}
		for i, tag := range want {
			if got.Audience[i] != tag {
				t.Errorf("expected audience[%d] = %q, got %q", i, tag, got.Audience[i])
			}
		}
	})

	t.Run("unchanged record only marked enriched", func(t *testing.T) {
		t.Parallel()

		db := newEnrichDB(t)
		insertRecord(t, db, "Хакатон", "https://vuz.ru/same", []string{"студент"})

		judge := &fakeJudge{verdicts: map[string]*Verdict{
			"Хакатон": {
				IsRelevant:   true,
				CleanedTitle: "Хакатон",
				Audience:     []string{"студент"},
			},
		}}
		enricher := NewEnricher(judge, db)

		summary, err := enricher.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if summary.Processed != 1 || summary.Cleaned != 0 || summary.Discarded != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}

		pending, err := db.ListUnenriched(context.Background())
		if err != nil {
			t.Fatalf("list unenriched failed: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("expected record marked enriched, %d pending", len(pending))
		}
	})

	t.Run("model failure keeps record for retry", func(t *testing.T) {
		t.Parallel()

		db := newEnrichDB(t)
		insertRecord(t, db, "Хакатон", "https://vuz.ru/retry", nil)

		judge := &fakeJudge{err: errors.New("connection refused")}
		enricher := NewEnricher(judge, db)

		summary, err := enricher.Run(context.Background())
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		if summary.Failed != 1 || summary.Processed != 0 {
			t.Errorf("unexpected summary %+v", summary)
		}

		// The record stays queued for the next pass.
		pending, err := db.ListUnenriched(context.Background())
		if err != nil {
			t.Fatalf("list unenriched failed: %v", err)
		}
		if len(pending) != 1 {
			t.Errorf("expected 1 pending record, got %d", len(pending))
		}
	})

	t.Run("cancelled context returns partial summary", func(t *testing.T) {
		t.Parallel()

		db := newEnrichDB(t)
		insertRecord(t, db, "Хакатон", "https://vuz.ru/c1", nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		judge := &fakeJudge{verdicts: map[string]*Verdict{}}
		enricher := NewEnricher(judge, db)

		if _, err := enricher.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestMergeAudience tests heuristic and model audience merging.
func TestMergeAudience(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		heuristic []string
		fromModel []string
		want      []string
	}{
		{
			name:      "model adds new tag",
			heuristic: []string{"студент"},
			fromModel: []string{"школьник"},
			want:      []string{"студент", "школьник"},
		},
		{
			name:      "model duplicate dropped case-insensitively",
			heuristic: []string{"студент"},
			fromModel: []string{"Студент"},
			want:      []string{"студент"},
		},
		{
			name:      "blank entries skipped",
			heuristic: []string{"студент", ""},
			fromModel: []string{"  "},
			want:      []string{"студент"},
		},
		{
			name: "both empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mergeAudience(tt.heuristic, tt.fromModel)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}
