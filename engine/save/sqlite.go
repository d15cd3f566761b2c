package save

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS saves (
	slot     TEXT PRIMARY KEY,
	blob     BLOB NOT NULL,
	turn     INTEGER NOT NULL,
	saved_at TEXT NOT NULL
)`

// SQLiteStore keeps save slots in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("creating schema: %w", err)}
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a slot.
func (s *SQLiteStore) Put(ctx context.Context, slot string, blob []byte, meta Meta) error {
	if !ValidSlot(slot) {
		return &PersistenceError{Op: "save", Slot: slot, Err: fmt.Errorf("invalid slot name %q", slot)}
	}
	savedAt := meta.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves (slot, blob, turn, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET blob = excluded.blob, turn = excluded.turn, saved_at = excluded.saved_at`,
		slot, blob, meta.Turn, savedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return &PersistenceError{Op: "save", Slot: slot, Err: err}
	}
	return nil
}

// Get reads a slot.
func (s *SQLiteStore) Get(ctx context.Context, slot string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM saves WHERE slot = ?`, slot).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: ErrSlotNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Slot: slot, Err: err}
	}
	return blob, nil
}

// Slots lists saved slots, newest first.
func (s *SQLiteStore) Slots(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, turn, saved_at FROM saves`)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var (
			m       Meta
			savedAt string
		)
		if err := rows.Scan(&m.Slot, &m.Turn, &savedAt); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		m.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	sortMeta(out)
	return out, nil
}
