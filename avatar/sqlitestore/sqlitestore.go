// Package sqlitestore persists settled avatar lookups in a local SQLite
// database so repeated runs do not query the network again.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS avatars (
	cache_key   TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	resolved_at INTEGER NOT NULL
)`

// Entry is one stored lookup result.
type Entry struct {
	Key        string
	URL        string
	ResolvedAt time.Time
}

// Store wraps a SQLite database holding avatar lookups.
type Store struct {
	conn *sql.DB
	Path string
}

// Open opens (creating if needed) the database at path with WAL mode.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating avatars table: %w", err)
	}

	return &Store{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the stored URL for key. found is false when no row exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var url string
	err := s.conn.QueryRowContext(ctx, "SELECT url FROM avatars WHERE cache_key = ?", key).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading avatar %s: %w", key, err)
	}
	return url, true, nil
}

// Put stores url under key, replacing any previous row.
func (s *Store) Put(ctx context.Context, key, url string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO avatars (cache_key, url, resolved_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET url = excluded.url, resolved_at = excluded.resolved_at`,
		key, url, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing avatar %s: %w", key, err)
	}
	return nil
}

// Entries lists every stored lookup ordered by key.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT cache_key, url, resolved_at FROM avatars ORDER BY cache_key")
	if err != nil {
		return nil, fmt.Errorf("listing avatars: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var resolvedAt int64
		if err := rows.Scan(&e.Key, &e.URL, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scanning avatar row: %w", err)
		}
		e.ResolvedAt = time.Unix(resolvedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Purge deletes every stored lookup and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM avatars")
	if err != nil {
		return 0, fmt.Errorf("purging avatars: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged avatars: %w", err)
	}
	return int(n), nil
}
