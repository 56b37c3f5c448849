package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// SQLiteStore is a persistent Store backed by a single SQLite file.
// An expires_at of 0 marks an entry that never expires.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// Every connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get returns the value for key unless it is missing or expired
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &UnavailableError{Op: "get", Err: err}
	}

	if expiresAt != 0 && s.now().UnixNano() >= expiresAt {
		return "", false, nil
	}

	return value, true, nil
}

// Put inserts or replaces the value for key
func (s *SQLiteStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)",
		key, value, expiresAt,
	)
	if err != nil {
		return &UnavailableError{Op: "put", Err: err}
	}
	return nil
}

// Forget deletes a single entry
func (s *SQLiteStore) Forget(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
		return &UnavailableError{Op: "forget", Err: err}
	}
	return nil
}

// Flush deletes every entry
func (s *SQLiteStore) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return &UnavailableError{Op: "flush", Err: err}
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at != 0 AND expires_at <= ?",
		s.now().UnixNano(),
	)
	if err != nil {
		return 0, &UnavailableError{Op: "purge", Err: err}
	}
	return res.RowsAffected()
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
