package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"SheetStore/internal/catalog"
	"SheetStore/internal/config"
	"SheetStore/internal/order"
	"SheetStore/internal/storage"
	"SheetStore/internal/storefront"
	"SheetStore/pkg/kit"
)

const (
	service     = "storefront"
	openTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg == nil {
		return
	}

	log := kit.NewLogger(service, cfg.Debug)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres connect failed", zap.Error(err))
		}
		defer db.Close()

		version, err := storage.Migrate(db)
		if err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
		log.Info("migrations applied", zap.Uint("version", version))
	}

	cache, closeCache, err := openCache(ctx, cfg, db)
	if err != nil {
		log.Fatal("catalog cache unavailable", zap.String("backend", cfg.CacheBackend), zap.Error(err))
	}
	defer func() { _ = closeCache.Close() }()

	var store order.Store = order.NewMemStore()
	if db != nil {
		store = order.NewPostgresStore(db)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	format := catalog.FormatGviz
	if cfg.Format == config.FormatXLSX {
		format = catalog.FormatXLSX
	}

	svc := catalog.NewService(
		catalog.SourceConfig{
			SheetID:      cfg.SheetID,
			GID:          cfg.GID,
			URL:          cfg.CatalogURL(),
			Format:       format,
			DropUntitled: !cfg.KeepUntitled,
		},
		catalog.NewFetcher(cfg.FetchTimeout, cfg.FetchAttempts, cfg.FetchBaseDelay, log),
		cache,
		log,
		catalog.NewMetrics(reg),
	)

	catalogSrv := &catalog.Server{Catalog: svc, Log: log, FeaturedCount: cfg.FeaturedCount}
	if r := catalog.NewSeededRand(cfg.FeaturedSeed); r != nil {
		catalogSrv.SetFeaturedRand(r)
	}

	orderSrv := &order.Server{
		Orders: order.NewService(
			order.NewSubmitter(cfg.OrderEndpoint, cfg.SubmitTimeout),
			store,
			log,
			order.NewMetrics(reg),
		),
		Log:     log,
		Limiter: kit.NewIPRateLimiter(cfg.CheckoutPerMin),
	}

	h := storefront.NewHandler(
		storefront.Deps{Catalog: catalogSrv, Orders: orderSrv},
		storefront.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsToken != "",
			MetricsToken:   cfg.MetricsToken,
			TrustProxy:     cfg.TrustProxy,
		},
	)

	log.Info("catalog source",
		zap.String("cache", cfg.CacheBackend),
		zap.String("format", cfg.Format),
		zap.String("key", svc.CacheKey()),
	)

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var noopCloser = closerFunc(func() error { return nil })

// openCache builds the configured catalog cache. The returned closer
// releases connections the cache owns; db is shared and closed by main.
func openCache(ctx context.Context, cfg *config.Config, db *sql.DB) (catalog.Cache, io.Closer, error) {
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		sdb, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewSQLiteCache(sdb), sdb, nil

	case config.CacheRedis:
		client, err := catalog.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewRedisCache(client), client, nil

	case config.CachePostgres:
		return catalog.NewPostgresCache(db), noopCloser, nil

	default:
		return catalog.NewMemCache(), noopCloser, nil
	}
}
