package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/storeops/tally/internal/sync"
	"github.com/storeops/tally/internal/types"
)

// eventTimeLayout is a fixed-width UTC layout: padded fractional seconds
// keep lexical order identical to chronological order, which the pull
// watermark comparison relies on.
const eventTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore is the server-side inventory database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at dbPath, applies pragmas, and runs
// migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertEvents stores a push batch. Each event is inserted at most once,
// keyed on client_event_id; replays of already-stored ids are skipped.
// Returns the number of newly inserted events.
func (s *SQLiteStore) InsertEvents(ctx context.Context, deviceID string, events []sync.EventIn) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO inventory_events
			(id, event_type, item_id, delta_base_units, notes, photo_url, ref_type, ref_id, client_event_id, device_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_event_id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(eventTimeLayout)
	inserted := 0
	for i, e := range events {
		result, err := stmt.ExecContext(ctx,
			ulid.Make().String(),
			e.EventType,
			e.ItemID,
			e.DeltaBaseUnits,
			e.Notes,
			e.PhotoURL,
			e.RefType,
			e.RefID,
			e.ClientEventID,
			deviceID,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert event %d: %w", i, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}

// EventsSince returns events created strictly after the given watermark,
// ascending by creation time. Timestamps are fixed-width UTC strings, so
// the comparison is a plain string compare.
func (s *SQLiteStore) EventsSince(ctx context.Context, since string) ([]sync.EventOut, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, item_id, delta_base_units, notes, photo_url, ref_type, ref_id, client_event_id, device_id, created_at
		FROM inventory_events
		WHERE created_at > ?
		ORDER BY created_at ASC, id ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []sync.EventOut
	for rows.Next() {
		var e sync.EventOut
		if err := rows.Scan(&e.ID, &e.EventType, &e.ItemID, &e.DeltaBaseUnits,
			&e.Notes, &e.PhotoURL, &e.RefType, &e.RefID,
			&e.ClientEventID, &e.DeviceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}

// EventCount returns the total number of stored events.
func (s *SQLiteStore) EventCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM inventory_events").Scan(&count)
	return count, err
}

// OnHand returns the per-item sum of deltas in base units.
func (s *SQLiteStore) OnHand(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, COALESCE(SUM(delta_base_units), 0)
		FROM inventory_events
		GROUP BY item_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query on-hand: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var itemID string
		var total float64
		if err := rows.Scan(&itemID, &total); err != nil {
			return nil, fmt.Errorf("scan on-hand row: %w", err)
		}
		totals[itemID] = total
	}
	return totals, rows.Err()
}

// GetSettings returns the store settings row, or ErrNotFound when unseeded.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*types.Settings, error) {
	var settings types.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT store_number, store_label, intersection FROM app_settings WHERE id = 1
	`).Scan(&settings.StoreNumber, &settings.StoreLabel, &settings.Intersection)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &settings, nil
}

// ListUnits returns all units ordered by name.
func (s *SQLiteStore) ListUnits(ctx context.Context) ([]types.Unit, error) {
	return s.listNamed(ctx, "units")
}

// ListLocations returns all locations ordered by name.
func (s *SQLiteStore) ListLocations(ctx context.Context) ([]types.Location, error) {
	named, err := s.listNamed(ctx, "locations")
	if err != nil {
		return nil, err
	}
	locations := make([]types.Location, len(named))
	for i, n := range named {
		locations[i] = types.Location(n)
	}
	return locations, nil
}

func (s *SQLiteStore) listNamed(ctx context.Context, table string) ([]types.Unit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, active FROM "+table+" ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []types.Unit
	for rows.Next() {
		var u types.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Active); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListItems returns catalog items ordered by name. Inactive items are
// excluded unless includeInactive is set.
func (s *SQLiteStore) ListItems(ctx context.Context, includeInactive bool) ([]types.Item, error) {
	query := `
		SELECT id, name, base_unit_id, case_size, allow_partials, par_level, low_threshold, default_location_id, active
		FROM items`
	if !includeInactive {
		query += " WHERE active = 1"
	}
	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetItem returns a single item by id.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*types.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, base_unit_id, case_size, allow_partials, par_level, low_threshold, default_location_id, active
		FROM items WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItem(scanner interface{ Scan(...any) error }) (*types.Item, error) {
	var item types.Item
	var caseSize, parLevel, lowThreshold sql.NullFloat64
	var defaultLocationID sql.NullString

	err := scanner.Scan(&item.ID, &item.Name, &item.BaseUnitID, &caseSize,
		&item.AllowPartials, &parLevel, &lowThreshold, &defaultLocationID, &item.Active)
	if err != nil {
		return nil, err
	}

	if caseSize.Valid {
		item.CaseSize = &caseSize.Float64
	}
	if parLevel.Valid {
		item.ParLevel = &parLevel.Float64
	}
	if lowThreshold.Valid {
		item.LowThreshold = &lowThreshold.Float64
	}
	if defaultLocationID.Valid {
		item.DefaultLocationID = &defaultLocationID.String
	}
	return &item, nil
}

// CreateItem inserts a new catalog item and returns its id.
func (s *SQLiteStore) CreateItem(ctx context.Context, p types.ItemParams) (string, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, base_unit_id, case_size, allow_partials, par_level, low_threshold, default_location_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.BaseUnitID, nullableFloat(p.CaseSize), p.AllowPartials,
		nullableFloat(p.ParLevel), nullableFloat(p.LowThreshold), nullableString(p.DefaultLocationID), p.Active)
	if err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}
	return id, nil
}

// UpdateItem replaces an item's writable fields.
func (s *SQLiteStore) UpdateItem(ctx context.Context, id string, p types.ItemParams) error {
	now := time.Now().UTC().Format(eventTimeLayout)
	result, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, base_unit_id = ?, case_size = ?, allow_partials = ?, par_level = ?,
		    low_threshold = ?, default_location_id = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.BaseUnitID, nullableFloat(p.CaseSize), p.AllowPartials, nullableFloat(p.ParLevel),
		nullableFloat(p.LowThreshold), nullableString(p.DefaultLocationID), p.Active, now, id)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUnit inserts a unit of measure and returns its id.
func (s *SQLiteStore) CreateUnit(ctx context.Context, name string) (string, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, "INSERT INTO units (id, name, active) VALUES (?, ?, 1)", id, name)
	if err != nil {
		return "", fmt.Errorf("insert unit: %w", err)
	}
	return id, nil
}

// CreateLocation inserts a storage location and returns its id.
func (s *SQLiteStore) CreateLocation(ctx context.Context, name string) (string, error) {
	id := ulid.Make().String()
	_, err := s.db.ExecContext(ctx, "INSERT INTO locations (id, name, active) VALUES (?, ?, 1)", id, name)
	if err != nil {
		return "", fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

// GetAuthSecret returns the shared login's username and bcrypt hash.
func (s *SQLiteStore) GetAuthSecret(ctx context.Context) (username, passwordHash string, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT username, password_hash FROM auth_secrets WHERE id = 1").Scan(&username, &passwordHash)
	if err == sql.ErrNoRows {
		return "", "", ErrAuthNotInitialized
	}
	if err != nil {
		return "", "", fmt.Errorf("query auth secret: %w", err)
	}
	return username, passwordHash, nil
}

// InitAuthSecret creates the shared login row if it does not already exist.
func (s *SQLiteStore) InitAuthSecret(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_secrets (id, username, password_hash) VALUES (1, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("init auth secret: %w", err)
	}
	return nil
}

// SetAuthSecret replaces the shared login credential.
func (s *SQLiteStore) SetAuthSecret(ctx context.Context, username, passwordHash string) error {
	now := time.Now().UTC().Format(eventTimeLayout)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_secrets (id, username, password_hash, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET username = excluded.username,
			password_hash = excluded.password_hash, updated_at = excluded.updated_at
	`, username, passwordHash, now)
	if err != nil {
		return fmt.Errorf("set auth secret: %w", err)
	}
	return nil
}

// SeedSettings writes the single settings row if absent.
func (s *SQLiteStore) SeedSettings(ctx context.Context, settings types.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, store_number, store_label, intersection) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, settings.StoreNumber, settings.StoreLabel, settings.Intersection)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
