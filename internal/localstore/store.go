// Package localstore provides a small SQLite-backed key/value store for
// client-side persisted state: command history, the instrument cache, and
// Launchpad layouts. Values are JSON; missing or corrupt values read back
// as absent so callers fall back to defaults instead of failing.
package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Store is a key/value store backed by a SQLite database. Writes are
// synchronous: once Put returns, the state is durable.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the state database at dbPath.
func Open(dbPath string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads the JSON value for key into dest. It returns false when the
// key is absent or the stored value does not unmarshal; dest is left
// untouched in that case.
func (s *Store) Get(key string, dest any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logWarn("reading state key", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// Corrupt stored value — treat as absent.
		s.logWarn("corrupt state value", "key", key, "error", err)
		return false
	}
	return true
}

// Put stores v as JSON under key, replacing any previous value.
func (s *Store) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw),
	)
	return err
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.log != nil {
		s.log.Warn(msg, args...)
	}
}
