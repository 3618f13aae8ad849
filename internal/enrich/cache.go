// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich attaches authoritative external metadata (DOIs, abstracts)
// to records that lack it, querying bibliographic APIs with a fallback chain
// and fixed-rate pacing.
package enrich

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is a run-scoped key-value store for lookup results, backed by
// SQLite. It is passed explicitly into each enrichment call rather than
// living in package state, so a run's cache can be inspected or discarded as
// a unit. Negative results are cached too: an empty stored value means the
// lookup already failed once this run.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS lookups (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached value for key and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM lookups WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache: %w", err)
	}
	return value, true, nil
}

// Put stores a value for key, replacing any previous one.
func (c *Cache) Put(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO lookups (key, value, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, fetched_at=excluded.fetched_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
