package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/eventscan/eventscan/internal/model"
)

// dbFileName is the SQLite file created inside the database directory.
const dbFileName = "eventscan.db"

// EventDB provides SQLite-backed storage for extracted event records.
// It is the only writer to the durable store: the pipeline inserts
// with insert-or-ignore and the enrichment pass updates title, audience,
// and the relevance flag, nothing else ever modifies a stored record.
type EventDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures EventDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging, recommended because the
	// crawl pipeline and the serving queries share the file.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an EventDB in the given directory.
func Open(dbDir string, opts Options) (*EventDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw prevents creating a missing file,
	// mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer; one shared connection keeps
	// constraint enforcement atomic without application-level locks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	edb := &EventDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := edb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return edb, nil
}

// Close closes the database connection.
func (edb *EventDB) Close() error {
	return edb.db.Close()
}

// createTables creates the schema if it doesn't exist.
// Schema changes must stay additive: new columns may be appended, but
// existing columns are never renamed or dropped in place.
func (edb *EventDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		date_start TEXT NOT NULL DEFAULT '',
		date_end TEXT NOT NULL DEFAULT '',
		reg_start TEXT NOT NULL DEFAULT '',
		reg_end TEXT NOT NULL DEFAULT '',
		team_required INTEGER NOT NULL DEFAULT 0,
		audience TEXT NOT NULL DEFAULT '[]',
		organizer TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL UNIQUE,
		source_text TEXT NOT NULL DEFAULT '',
		relevant INTEGER NOT NULL DEFAULT 1,
		enriched INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_events_date_start ON events(date_start);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	CREATE INDEX IF NOT EXISTS idx_events_relevant ON events(relevant);
	`

	_, err := edb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertEvent stores a record with insert-or-ignore semantics on the
// unique link key. The bool reports whether a new row was inserted:
// false means the link is already known, which the pipeline treats as a
// normal outcome, not a failure.
func (edb *EventDB) InsertEvent(ctx context.Context, rec *model.EventRecord) (bool, error) {
	audienceJSON, err := json.Marshal(audienceOrEmpty(rec.Audience))
	if err != nil {
		return false, fmt.Errorf("failed to serialize audience: %w", err)
	}

	query := `
	INSERT OR IGNORE INTO events (
		title, city, type, date_start, date_end, reg_start, reg_end,
		team_required, audience, organizer, link, source_text, relevant
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := edb.db.ExecContext(ctx, query,
		rec.Title,
		rec.City,
		rec.Type,
		rec.DateStart,
		rec.DateEnd,
		rec.RegStart,
		rec.RegEnd,
		boolToInt(rec.TeamRequired),
		string(audienceJSON),
		rec.Organizer,
		rec.Link,
		rec.SourceText,
		boolToInt(rec.Relevant),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		rec.ID = id
	}
	return true, nil
}

// eventColumns is the select list shared by all read queries.
const eventColumns = `
	id, title, city, type, date_start, date_end, reg_start, reg_end,
	team_required, audience, organizer, link, source_text, relevant, enriched
`

// scanEvent reads one row into an EventRecord.
func scanEvent(row interface{ Scan(...any) error }) (*model.EventRecord, error) {
	var rec model.EventRecord
	var teamRequired, relevant, enriched int
	var audienceJSON string

	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.City,
		&rec.Type,
		&rec.DateStart,
		&rec.DateEnd,
		&rec.RegStart,
		&rec.RegEnd,
		&teamRequired,
		&audienceJSON,
		&rec.Organizer,
		&rec.Link,
		&rec.SourceText,
		&relevant,
		&enriched,
	)
	if err != nil {
		return nil, err
	}

	rec.TeamRequired = teamRequired != 0
	rec.Relevant = relevant != 0
	rec.Enriched = enriched != 0

	if audienceJSON != "" {
		if err := json.Unmarshal([]byte(audienceJSON), &rec.Audience); err != nil {
			// Old rows may carry malformed audience; an empty set is
			// better than failing the whole query.
			rec.Audience = nil
		}
	}

	return &rec, nil
}

// queryEvents runs a query returning full event rows.
func (edb *EventDB) queryEvents(ctx context.Context, query string, args ...any) ([]*model.EventRecord, error) {
	rows, err := edb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*model.EventRecord
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, rec)
	}

	return events, rows.Err()
}

// ListEvents returns one page of relevant records ordered by start date
// descending.
func (edb *EventDB) ListEvents(ctx context.Context, offset, limit int) ([]*model.EventRecord, error) {
	query := `SELECT ` + eventColumns + `
	FROM events WHERE relevant = 1
	ORDER BY date_start DESC, id DESC
	LIMIT ? OFFSET ?`
	return edb.queryEvents(ctx, query, limit, offset)
}

// EventsOn returns relevant records starting on the given ISO date.
func (edb *EventDB) EventsOn(ctx context.Context, date string) ([]*model.EventRecord, error) {
	query := `SELECT ` + eventColumns + `
	FROM events WHERE relevant = 1 AND date_start = ?
	ORDER BY id`
	return edb.queryEvents(ctx, query, date)
}

// EventsBetween returns relevant records starting within [from, to],
// ordered by start date ascending.
func (edb *EventDB) EventsBetween(ctx context.Context, from, to string) ([]*model.EventRecord, error) {
	query := `SELECT ` + eventColumns + `
	FROM events WHERE relevant = 1 AND date_start >= ? AND date_start <= ?
	ORDER BY date_start, id`
	return edb.queryEvents(ctx, query, from, to)
}

// SearchEvents performs a substring search over title, type, organizer,
// and audience of relevant records.
func (edb *EventDB) SearchEvents(ctx context.Context, search string) ([]*model.EventRecord, error) {
	pattern := "%" + search + "%"
	query := `SELECT ` + eventColumns + `
	FROM events
	WHERE relevant = 1 AND (title LIKE ? OR type LIKE ? OR organizer LIKE ? OR audience LIKE ?)
	ORDER BY date_start DESC, id DESC`
	return edb.queryEvents(ctx, query, pattern, pattern, pattern, pattern)
}

// GetEventByID returns one record by identifier, or nil when absent.
func (edb *EventDB) GetEventByID(ctx context.Context, id int64) (*model.EventRecord, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	rec, err := scanEvent(edb.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return rec, nil
}

// ListUnenriched returns records the enrichment pass has not processed.
func (edb *EventDB) ListUnenriched(ctx context.Context) ([]*model.EventRecord, error) {
	query := `SELECT ` + eventColumns + `
	FROM events WHERE enriched = 0
	ORDER BY id`
	return edb.queryEvents(ctx, query)
}

// ApplyEnrichment records the enrichment verdict for one record: the
// cleaned title, the refined audience set, and the relevance flag.
// Irrelevant records are soft-hidden, never deleted, so the verdict can
// be audited and reversed by re-running enrichment.
func (edb *EventDB) ApplyEnrichment(ctx context.Context, id int64, relevant bool, title string, audience []string) error {
	audienceJSON, err := json.Marshal(audienceOrEmpty(audience))
	if err != nil {
		return fmt.Errorf("failed to serialize audience: %w", err)
	}

	query := `
	UPDATE events
	SET relevant = ?, title = ?, audience = ?, enriched = 1
	WHERE id = ?
	`

	_, err = edb.db.ExecContext(ctx, query, boolToInt(relevant), title, string(audienceJSON), id)
	if err != nil {
		return fmt.Errorf("failed to apply enrichment: %w", err)
	}
	return nil
}

// MarkEnriched flags a record as processed without changing its fields.
// Used when enrichment keeps the original extraction untouched.
func (edb *EventDB) MarkEnriched(ctx context.Context, id int64) error {
	_, err := edb.db.ExecContext(ctx, `UPDATE events SET enriched = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark enriched: %w", err)
	}
	return nil
}

// Stats summarizes the store for the serving layer.
type Stats struct {
	// Total is the number of relevant records.
	Total int

	// Upcoming is the number of relevant records starting today or later.
	Upcoming int

	// PerType maps event type to record count.
	PerType map[string]int
}

// GetStats returns aggregate counts over relevant records.
func (edb *EventDB) GetStats(ctx context.Context, today string) (*Stats, error) {
	stats := &Stats{PerType: make(map[string]int)}

	err := edb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE relevant = 1`).Scan(&stats.Total)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	err = edb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE relevant = 1 AND date_start >= ?`, today).Scan(&stats.Upcoming)
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming events: %w", err)
	}

	rows, err := edb.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM events WHERE relevant = 1 GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var count int
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		stats.PerType[eventType] = count
	}

	return stats, rows.Err()
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// audienceOrEmpty never serializes a nil slice: an empty audience is
// stored as "[]", keeping the no-null-vs-empty invariant in the store.
func audienceOrEmpty(audience []string) []string {
	if audience == nil {
		return []string{}
	}
	return audience
}
