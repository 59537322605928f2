package catalog

import (
	"context"
	"sync"
	"time"
)

// MemCache keeps entries in process memory. Reads and writes copy the
// product slice so callers never share backing arrays with the cache.
type MemCache struct {
	mu  sync.RWMutex
	m   map[string]Entry
	now func() time.Time
}

func NewMemCache() *MemCache {
	return &MemCache{m: map[string]Entry{}, now: time.Now}
}

func (c *MemCache) Ping(ctx context.Context) error { return nil }

func (c *MemCache) Read(ctx context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.m[key]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{Products: cloneProducts(e.Products), FetchedAt: e.FetchedAt}, true, nil
}

func (c *MemCache) Write(ctx context.Context, key string, products []Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m[key] = Entry{Products: cloneProducts(products), FetchedAt: c.now()}
	return nil
}
