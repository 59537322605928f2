package catalog

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SheetStore/pkg/kit"
)

const maxFeatured = 24

type Server struct {
	Catalog       *Service
	Log           *zap.Logger
	FeaturedCount int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// SetFeaturedRand makes featured selection reproducible. r is guarded by the
// server, so it may be a plain seeded source.
func (s *Server) SetFeaturedRand(r *rand.Rand) {
	s.rngMu.Lock()
	s.rng = r
	s.rngMu.Unlock()
}

// Routes serves the catalog API on its own router. The storefront mounts it
// through Register instead, next to its health endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register mounts the catalog API on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/featured", s.featured)
	r.Get("/products/{id}", s.get)
	r.Get("/categories", s.categories)
}

type listResp struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
	Source     Source    `json:"source"`
	Degraded   bool      `json:"degraded"`
	Warning    string    `json:"warning,omitempty"`
}

type productResp struct {
	Product  Product `json:"product"`
	Source   Source  `json:"source"`
	Degraded bool    `json:"degraded"`
	Warning  string  `json:"warning,omitempty"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	res := s.Catalog.GetCatalog(r.Context())
	writeSourceHeaders(w, res)

	kit.WriteJSON(w, http.StatusOK, listResp{
		Products:   FilterByCategory(res.Products, r.URL.Query().Get("category")),
		Categories: Categories(res.Products),
		Source:     res.Source,
		Degraded:   res.Degraded(),
		Warning:    res.Warning,
	})
}

func (s *Server) featured(w http.ResponseWriter, r *http.Request) {
	n := s.FeaturedCount
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxFeatured {
			kit.WriteError(w, r, http.StatusBadRequest, "bad n", map[string]any{"min": 1, "max": maxFeatured})
			return
		}
		n = v
	}

	res := s.Catalog.GetCatalog(r.Context())
	writeSourceHeaders(w, res)

	s.rngMu.Lock()
	picked := Sample(res.Products, n, s.rng)
	s.rngMu.Unlock()

	kit.WriteJSON(w, http.StatusOK, listResp{
		Products:   picked,
		Categories: Categories(picked),
		Source:     res.Source,
		Degraded:   res.Degraded(),
		Warning:    res.Warning,
	})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, res, err := s.Catalog.Product(r.Context(), id)
	writeSourceHeaders(w, res)
	if errors.Is(err, ErrProductNotFound) {
		kit.OrNop(s.Log).Debug("product not found", zap.String("id", id), zap.String("source", string(res.Source)))
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	kit.WriteJSON(w, http.StatusOK, productResp{
		Product:  p,
		Source:   res.Source,
		Degraded: res.Degraded(),
		Warning:  res.Warning,
	})
}

func (s *Server) categories(w http.ResponseWriter, r *http.Request) {
	res := s.Catalog.GetCatalog(r.Context())
	writeSourceHeaders(w, res)
	kit.WriteJSON(w, http.StatusOK, Categories(res.Products))
}

func writeSourceHeaders(w http.ResponseWriter, res Result) {
	w.Header().Set(kit.HeaderCatalogSource, string(res.Source))
	if res.Degraded() {
		w.Header().Set("Warning", `110 - "`+res.Warning+`"`)
	}
}
