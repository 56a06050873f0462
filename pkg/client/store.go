package client

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	metaLastPull = "last_pull"

	// DefaultCursor is the pull watermark used before any pull has succeeded.
	DefaultCursor = "1970-01-01T00:00:00Z"
)

// Store is the client-resident durable store: the outbox of events not yet
// confirmed delivered, plus a small key/value meta table for sync cursors.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the local database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS outbox (
		client_event_id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		item_id TEXT NOT NULL,
		delta_base_units REAL NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		ref_type TEXT NOT NULL DEFAULT '',
		ref_id TEXT NOT NULL DEFAULT '',
		queued_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append durably persists a pending event. The event is in the outbox and
// visible to ListAll the moment Append returns nil; any failure is reported,
// never swallowed.
func (s *Store) Append(evt *PendingEvent) error {
	if evt == nil || evt.ClientEventID == "" {
		return &ValidationError{Field: "client_event_id", Message: "is required"}
	}

	_, err := s.db.Exec(`
		INSERT INTO outbox (client_event_id, event_type, item_id, delta_base_units, notes, photo_url, ref_type, ref_id, queued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, evt.ClientEventID, string(evt.EventType), evt.ItemID, evt.DeltaBaseUnits,
		evt.Notes, evt.PhotoURL, evt.RefType, evt.RefID,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("append outbox event: %w", err)
	}
	return nil
}

// ListAll returns every durable pending event. No ordering is promised
// beyond "all currently durable events are included"; authoritative ordering
// is assigned server-side on receipt.
func (s *Store) ListAll() ([]PendingEvent, error) {
	rows, err := s.db.Query(`
		SELECT client_event_id, event_type, item_id, delta_base_units, notes, photo_url, ref_type, ref_id
		FROM outbox
	`)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []PendingEvent
	for rows.Next() {
		var evt PendingEvent
		var eventType string
		if err := rows.Scan(&evt.ClientEventID, &eventType, &evt.ItemID, &evt.DeltaBaseUnits,
			&evt.Notes, &evt.PhotoURL, &evt.RefType, &evt.RefID); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		evt.EventType = EventType(eventType)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return events, nil
}

// RemoveByIDs deletes exactly the entries whose id is in ids. Removing an id
// not present is a no-op, not an error. Only a confirmed push round may call
// this; no other code path deletes from the outbox.
func (s *Store) RemoveByIDs(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	_, err := s.db.Exec("DELETE FROM outbox WHERE client_event_id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("remove outbox events: %w", err)
	}
	return nil
}

// PendingCount returns the number of events awaiting delivery.
func (s *Store) PendingCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM outbox").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count outbox: %w", err)
	}
	return count, nil
}

// GetMeta returns the value for key, or "" when the key is absent.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta upserts a key/value pair.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %q: %w", key, err)
	}
	return nil
}

// LastPull returns the pull watermark, defaulting to the epoch when unset.
func (s *Store) LastPull() (string, error) {
	value, err := s.GetMeta(metaLastPull)
	if err != nil {
		return "", err
	}
	if value == "" {
		return DefaultCursor, nil
	}
	return value, nil
}
