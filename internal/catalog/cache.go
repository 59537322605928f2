package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"
)

// FreshnessWindow is how long a cached catalog is preferred over a live fetch.
const FreshnessWindow = time.Hour

const keyPrefix = "catalog:v1:products_"

// Entry is the last successfully parsed catalog for one source.
type Entry struct {
	Products  []Product
	FetchedAt time.Time
}

// IsFresh reports whether e is younger than FreshnessWindow at now. A stale
// entry is still usable as a fallback.
func (e Entry) IsFresh(now time.Time) bool {
	return now.Sub(e.FetchedAt) < FreshnessWindow
}

// Cache stores one Entry per source key. Write always overwrites and stamps
// FetchedAt; entries are never evicted.
type Cache interface {
	Read(ctx context.Context, key string) (Entry, bool, error)
	Write(ctx context.Context, key string, products []Product) error
	Ping(ctx context.Context) error
}

// Key derives the cache key for a sheet and view. Components are escaped so
// distinct sources never share a key.
func Key(sheetID, gid string) string {
	return keyPrefix + url.QueryEscape(sheetID) + ":" + url.QueryEscape(gid)
}

var errCorruptEntry = errors.New("corrupt cache entry")

// envelope is the persisted value layout shared by the non-memory backends.
type envelope struct {
	Data      []Product `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(envelope{Data: e.Products, Timestamp: e.FetchedAt.UnixMilli()})
}

func decodeEntry(b []byte) (Entry, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Entry{}, errors.Join(errCorruptEntry, err)
	}
	if env.Data == nil {
		return Entry{}, errCorruptEntry
	}
	return Entry{Products: env.Data, FetchedAt: time.UnixMilli(env.Timestamp)}, nil
}
