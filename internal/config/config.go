package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheSQLite   = "sqlite"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Catalog source formats.
const (
	FormatGviz = "gviz"
	FormatXLSX = "xlsx"
)

// Config is the storefront's runtime configuration. It is built once in
// main and handed to constructors.
type Config struct {
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP listen port"`
	Debug bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	SheetsBaseURL string `long:"sheets-base-url" env:"SHEETS_BASE_URL" default:"https://docs.google.com/spreadsheets/d" description:"Base URL of the spreadsheet host"`
	SheetID       string `long:"sheet-id" env:"SHEET_ID" default:"1bLwxVzaBspSCsc173yHfwhDgcL1wbcCeIkAqJYdzt9Y" description:"Spreadsheet identifier"`
	GID           string `long:"gid" env:"SHEET_GID" default:"2128414158" description:"Spreadsheet view (tab) identifier"`
	Format        string `long:"format" env:"CATALOG_FORMAT" default:"gviz" choice:"gviz" choice:"xlsx" description:"Catalog export format"`
	KeepUntitled  bool   `long:"keep-untitled" env:"KEEP_UNTITLED" description:"Keep rows whose title is blank"`

	FetchAttempts  int           `long:"fetch-attempts" env:"FETCH_ATTEMPTS" default:"3" description:"Maximum catalog fetch attempts"`
	FetchBaseDelay time.Duration `long:"fetch-base-delay" env:"FETCH_BASE_DELAY" default:"1s" description:"Linear backoff unit between fetch attempts"`
	FetchTimeout   time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10s" description:"Per-attempt HTTP timeout"`
	FeaturedCount  int           `long:"featured-count" env:"FEATURED_COUNT" default:"3" description:"Default size of the featured selection"`
	FeaturedSeed   uint64        `long:"featured-seed" env:"FEATURED_SEED" description:"Seed for featured sampling (0 means unseeded)"`

	CacheBackend string `long:"cache" env:"CACHE_BACKEND" default:"memory" choice:"memory" choice:"sqlite" choice:"redis" choice:"postgres" description:"Catalog cache backend"`
	SQLitePath   string `long:"sqlite-path" env:"SQLITE_PATH" default:"data/catalog.db" description:"SQLite cache file"`
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address"`
	DatabaseURL  string `long:"database-url" env:"DATABASE_URL" description:"Postgres DSN for the cache and order journal"`

	OrderEndpoint  string        `long:"order-endpoint" env:"ORDER_ENDPOINT" default:"https://script.google.com/macros/s/AKfycbz05uvsqZ2OKvzI1oDgFUcYeoXbmbmV2j5A6pHjggvsdsyXAaHkWVyflBjx2Dl6YNlj/exec" description:"Checkout submission endpoint"`
	SubmitTimeout  time.Duration `long:"submit-timeout" env:"SUBMIT_TIMEOUT" default:"15s" description:"Checkout submission timeout"`
	CheckoutPerMin int           `long:"checkout-per-min" env:"CHECKOUT_PER_MIN" default:"5" description:"Checkout submissions allowed per client per minute"`
	TrustProxy     bool          `long:"trust-proxy" env:"TRUST_PROXY" description:"Take the client address from X-Forwarded-For / X-Real-IP (only behind a trusted proxy)"`
	MetricsToken   string        `long:"metrics-token" env:"METRICS_TOKEN" description:"Bearer token for /metrics (empty disables it)"`
}

// Load reads an optional .env file, then flags and environment. It returns
// (nil, nil) when help was requested.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	var c Config
	parser := flags.NewParser(&c, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SheetID) == "" || strings.TrimSpace(c.GID) == "" {
		return errors.New("sheet id and gid are required")
	}
	if c.FetchAttempts < 1 {
		return errors.New("fetch attempts must be at least 1")
	}
	if c.FetchBaseDelay < 0 {
		return errors.New("fetch base delay must be non-negative")
	}
	if c.FeaturedCount < 0 {
		return errors.New("featured count must be non-negative")
	}
	if c.CacheBackend == CachePostgres && c.DatabaseURL == "" {
		return errors.New("postgres cache requires a database url")
	}
	if strings.TrimSpace(c.OrderEndpoint) == "" {
		return errors.New("order endpoint is required")
	}
	return nil
}

// CatalogURL is the export URL for the configured sheet and format.
func (c *Config) CatalogURL() string {
	base := strings.TrimRight(c.SheetsBaseURL, "/")
	if c.Format == FormatXLSX {
		return fmt.Sprintf("%s/%s/export?format=xlsx&gid=%s", base, c.SheetID, c.GID)
	}
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:json&gid=%s", base, c.SheetID, c.GID)
}
