package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresCache keeps entries in the catalog_cache table created by the
// storage migrations.
type PostgresCache struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresCache(db *sql.DB) *PostgresCache {
	return &PostgresCache{db: db, now: time.Now}
}

func (c *PostgresCache) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return c.db.PingContext(ctx)
	})
}

func (c *PostgresCache) Read(ctx context.Context, key string) (Entry, bool, error) {
	var payload []byte
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return c.db.QueryRowContext(ctx, `
			SELECT payload
			FROM catalog_cache
			WHERE cache_key = $1
		`, key).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	e, err := decodeEntry(payload)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *PostgresCache) Write(ctx context.Context, key string, products []Product) error {
	e := Entry{Products: products, FetchedAt: c.now()}
	payload, err := encodeEntry(e)
	if err != nil {
		return err
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := c.db.ExecContext(ctx, `
			INSERT INTO catalog_cache (cache_key, payload, fetched_at)
			VALUES ($1, $2::jsonb, $3)
			ON CONFLICT (cache_key)
			DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
		`, key, string(payload), e.FetchedAt.UTC())
		return err
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
