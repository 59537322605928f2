package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores each entry as a JSON envelope under its key, without
// expiry.
type RedisCache struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, now: time.Now}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Read(ctx context.Context, key string) (Entry, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}

	e, err := decodeEntry(b)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (c *RedisCache) Write(ctx context.Context, key string, products []Product) error {
	payload, err := encodeEntry(Entry{Products: products, FetchedAt: c.now()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, 0).Err()
}
