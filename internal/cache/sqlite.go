// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citegraph/pkg/types"
)

// SQLiteStore persists entries in a single-file SQLite database. Responses
// are stored as JSON with the key, error marker, and fetch time in their
// own columns, so the cache stays inspectable with the sqlite3 shell.
// Per prd003-cache R5.1.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates the cache database at path, creating parent
// directories and the schema when missing.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body TEXT NOT NULL DEFAULT '',
		err TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the entry for key, or ErrNotFound.
func (s *SQLiteStore) Get(key string) (*Entry, error) {
	var body, errStr, fetched string
	err := s.db.QueryRow(
		`SELECT body, err, fetched_at FROM responses WHERE key = ?`, key,
	).Scan(&body, &errStr, &fetched)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	e := &Entry{Key: key, Err: errStr}
	if t, perr := time.Parse(time.RFC3339Nano, fetched); perr == nil {
		e.FetchedAt = t
	}
	if body != "" {
		var refs types.PaperRefs
		if err := json.Unmarshal([]byte(body), &refs); err != nil {
			return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
		}
		e.Refs = &refs
	}
	return e, nil
}

// Put stores or replaces the entry under e.Key.
func (s *SQLiteStore) Put(e *Entry) error {
	body := ""
	if e.Refs != nil {
		data, err := json.Marshal(e.Refs)
		if err != nil {
			return fmt.Errorf("encoding cache entry: %w", err)
		}
		body = string(data)
	}

	_, err := s.db.Exec(
		`INSERT INTO responses (key, body, err, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			body=excluded.body, err=excluded.err, fetched_at=excluded.fetched_at`,
		e.Key, body, e.Err, e.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting cache entry: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM responses WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Keys lists all stored keys, sorted.
func (s *SQLiteStore) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM responses ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning cache key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Len returns the entry count.
func (s *SQLiteStore) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Clear removes all entries.
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM responses`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
