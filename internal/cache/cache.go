// Package cache keeps the head of the feed in SQLite so a restart can paint
// the last known list before the first refresh finishes.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/feedsync/internal/feed"
)

const schema = `CREATE TABLE IF NOT EXISTS feed_items (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	saved_at   INTEGER NOT NULL
)`

// Store is a warm-start cache backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cache mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache open: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cache pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the cached list with items, keeping their order.
func (s *Store) Save(ctx context.Context, items []feed.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM feed_items"); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR REPLACE INTO feed_items (id, position, payload, saved_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("cache prepare: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().Unix()
	for i, it := range items {
		if it.ID == "" {
			continue
		}
		payload, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, it.ID, i, string(payload), now); err != nil {
			return fmt.Errorf("cache insert %s: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache commit: %w", err)
	}
	return nil
}

// Load returns the cached list in saved order. An empty cache yields nil.
func (s *Store) Load(ctx context.Context) ([]feed.Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM feed_items ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("cache query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []feed.Item
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("cache scan: %w", err)
		}
		var it feed.Item
		if err := json.Unmarshal([]byte(payload), &it); err != nil {
			return nil, fmt.Errorf("decode cached item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache rows: %w", err)
	}
	return items, nil
}
