package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"SheetStore/pkg/kit"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second

	maxPayloadBytes = 10 << 20
)

// ErrNetwork matches every FetchError.
var ErrNetwork = errors.New("catalog source unavailable")

var errBadStatus = errors.New("bad status")

// FetchError reports a fetch that gave up. Attempts counts the requests
// made; Cause is the last attempt's error or the context error.
type FetchError struct {
	URL      string
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: gave up after %d attempts: %v", e.URL, e.Attempts, e.Cause)
}

func (e *FetchError) Is(target error) bool { return target == ErrNetwork }

func (e *FetchError) Unwrap() error { return e.Cause }

// Fetcher performs GETs with bounded retries and linear backoff.
type Fetcher struct {
	Client      *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
	Log         *zap.Logger
	Metrics     *Metrics
}

func NewFetcher(timeout time.Duration, maxAttempts int, baseDelay time.Duration, log *zap.Logger) *Fetcher {
	return &Fetcher{
		Client:      &http.Client{Timeout: timeout},
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Log:         kit.OrNop(log),
	}
}

// Fetch returns the body of the first successful response. Between attempt i
// and i+1 it waits BaseDelay*i; the wait ends early if ctx is done.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	attempts := f.MaxAttempts
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}
	log := kit.OrNop(f.Log)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := f.once(ctx, url)
		if err == nil {
			f.Metrics.observeAttempt("ok")
			return body, nil
		}
		lastErr = err
		f.Metrics.observeAttempt("error")
		log.Debug("catalog fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}
		if err := sleepCtx(ctx, f.BaseDelay*time.Duration(attempt)); err != nil {
			return nil, &FetchError{URL: url, Attempts: attempt, Cause: err}
		}
	}

	return nil, &FetchError{URL: url, Attempts: attempts, Cause: lastErr}
}

func (f *Fetcher) once(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return nil, fmt.Errorf("%w: status=%d", errBadStatus, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
