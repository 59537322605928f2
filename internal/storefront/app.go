// Package storefront composes the catalog and checkout APIs behind one
// router with the shared middleware stack.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SheetStore/internal/catalog"
	"SheetStore/internal/order"
	"SheetStore/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// TrustProxy takes the client address from forwarding headers. Only
	// set it when a proxy in front overwrites them.
	TrustProxy bool
}

type Deps struct {
	Catalog *catalog.Server
	Orders  *order.Server
}

const readyTimeout = 2 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	deps.Catalog.Register(r)
	deps.Orders.Register(r)

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	if deps.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// readyz reports the storage behind the catalog cache and the order journal.
// The upstream sheet is not probed: catalog reads degrade instead of failing.
func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	log = kit.OrNop(log)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Catalog.Catalog.Ping(ctx); err != nil {
			log.Warn("readyz failed: catalog cache", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog cache not ready", nil)
			return
		}

		if err := deps.Orders.Orders.Ping(ctx); err != nil {
			log.Warn("readyz failed: order store", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "order store not ready", nil)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
