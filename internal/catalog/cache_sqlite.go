package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteCache persists entries in a local SQLite file so a restarted
// process still has a stale catalog to fall back on.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache expects db to have the catalog_cache table; see
// storage.OpenSQLite.
func NewSQLiteCache(db *sql.DB) *SQLiteCache {
	return &SQLiteCache{db: db, now: time.Now}
}

func (c *SQLiteCache) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return c.db.PingContext(ctx)
	})
}

func (c *SQLiteCache) Read(ctx context.Context, key string) (Entry, bool, error) {
	var payload string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return c.db.QueryRowContext(ctx,
			`SELECT payload FROM catalog_cache WHERE cache_key = ?`, key,
		).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	e, err := decodeEntry([]byte(payload))
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *SQLiteCache) Write(ctx context.Context, key string, products []Product) error {
	e := Entry{Products: products, FetchedAt: c.now()}
	payload, err := encodeEntry(e)
	if err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := c.db.ExecContext(ctx, `
INSERT INTO catalog_cache (cache_key, payload, fetched_at) VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
			key, string(payload), e.FetchedAt.UnixMilli())
		return err
	})
}
