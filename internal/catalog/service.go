package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"SheetStore/pkg/kit"
)

// Source names where a Result came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceLive     Source = "live"
	SourceStale    Source = "stale"
	SourceFallback Source = "fallback"
)

const (
	WarningStale    = "Using cached data: the live catalog is temporarily unavailable."
	WarningFallback = "We're having trouble loading our products. Showing demo content instead."
)

// Format selects the parser for the upstream payload.
type Format string

const (
	FormatGviz Format = "gviz"
	FormatXLSX Format = "xlsx"
)

// SourceConfig identifies the upstream sheet.
type SourceConfig struct {
	SheetID      string
	GID          string
	URL          string
	Format       Format
	DropUntitled bool
}

// Result is always non-empty. Warning is set exactly when Degraded is true.
type Result struct {
	Products  []Product
	Source    Source
	Warning   string
	FetchedAt time.Time
}

func (r Result) Degraded() bool {
	return r.Source == SourceStale || r.Source == SourceFallback
}

type Service struct {
	src     SourceConfig
	key     string
	fetcher *Fetcher
	cache   Cache
	log     *zap.Logger
	metrics *Metrics
	now     func() time.Time
	group   singleflight.Group
}

func NewService(src SourceConfig, fetcher *Fetcher, cache Cache, log *zap.Logger, metrics *Metrics) *Service {
	if src.Format == "" {
		src.Format = FormatGviz
	}
	if fetcher.Metrics == nil {
		fetcher.Metrics = metrics
	}
	return &Service{
		src:     src,
		key:     Key(src.SheetID, src.GID),
		fetcher: fetcher,
		cache:   cache,
		log:     kit.OrNop(log),
		metrics: metrics,
		now:     time.Now,
	}
}

// CacheKey is the key this service reads and writes.
func (s *Service) CacheKey() string { return s.key }

// Ping reports whether the cache backend is reachable.
func (s *Service) Ping(ctx context.Context) error { return s.cache.Ping(ctx) }

// GetCatalog returns the best catalog available right now: a fresh cache
// entry, then a live fetch, then a stale cache entry, then the fallback.
// It never fails.
func (s *Service) GetCatalog(ctx context.Context) Result {
	res := s.getCatalog(ctx)
	s.metrics.observeResult(res.Source)
	return res
}

func (s *Service) getCatalog(ctx context.Context) Result {
	cached, hasCached := s.readCache(ctx)
	if hasCached && cached.IsFresh(s.now()) {
		return Result{Products: cached.Products, Source: SourceCache, FetchedAt: cached.FetchedAt}
	}

	// The shared refresh outlives any one caller; the client timeout and
	// attempt cap bound it. A caller that goes away stops waiting only.
	ch := s.group.DoChan(s.key, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	var err error
	select {
	case r := <-ch:
		if r.Err == nil {
			live := r.Val.(Result)
			live.Products = cloneProducts(live.Products)
			return live
		}
		err = r.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.log.Warn("live catalog unavailable", zap.String("key", s.key), zap.Error(err))

	if hasCached {
		return Result{
			Products:  cached.Products,
			Source:    SourceStale,
			Warning:   WarningStale,
			FetchedAt: cached.FetchedAt,
		}
	}

	s.log.Warn("no cached catalog, serving fallback", zap.String("key", s.key))
	return Result{Products: Fallback(), Source: SourceFallback, Warning: WarningFallback}
}

// refresh fetches, parses and caches the live catalog.
func (s *Service) refresh(ctx context.Context) (Result, error) {
	raw, err := s.fetcher.Fetch(ctx, s.src.URL)
	if err != nil {
		return Result{}, err
	}

	products, err := s.parse(raw)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	if err := s.cache.Write(ctx, s.key, products); err != nil {
		s.log.Warn("catalog cache write failed", zap.String("key", s.key), zap.Error(err))
	}
	return Result{Products: products, Source: SourceLive, FetchedAt: now}, nil
}

func (s *Service) parse(raw []byte) ([]Product, error) {
	opts := ParseOptions{DropUntitled: s.src.DropUntitled}
	switch s.src.Format {
	case FormatGviz:
		return ParseGviz(string(raw), opts)
	case FormatXLSX:
		return ParseXLSX(raw, opts)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", s.src.Format)
	}
}

func (s *Service) readCache(ctx context.Context) (Entry, bool) {
	e, ok, err := s.cache.Read(ctx, s.key)
	if err != nil {
		s.log.Warn("catalog cache read failed", zap.String("key", s.key), zap.Error(err))
		return Entry{}, false
	}
	if ok && len(e.Products) == 0 {
		return Entry{}, false
	}
	return e, ok
}

// ErrProductNotFound is returned by Product when the id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// Product looks a product up by id in the current catalog. The Result is
// returned as well so callers can surface degraded mode.
func (s *Service) Product(ctx context.Context, id string) (Product, Result, error) {
	res := s.GetCatalog(ctx)
	for _, p := range res.Products {
		if p.ID == id {
			return p, res, nil
		}
	}
	return Product{}, res, ErrProductNotFound
}
