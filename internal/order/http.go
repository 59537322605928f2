package order

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"SheetStore/internal/catalog"
	"SheetStore/pkg/kit"
)

const (
	maxCheckoutBody = 64 << 10

	// ThankYouPath is where the presentation layer sends the buyer after a
	// successful checkout.
	ThankYouPath = "thank-you.html"

	msgSubmitFailed = "Failed to submit order. Please try again."
)

type Server struct {
	Orders  *Service
	Log     *zap.Logger
	Limiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register mounts the checkout API on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/checkout", s.summary)
	r.With(s.limit).Post("/checkout", s.submit)
	r.Get("/orders/{id}", s.get)
}

func (s *Server) limit(next http.Handler) http.Handler {
	if s.Limiter == nil {
		return next
	}
	return s.Limiter.Middleware(next)
}

type summaryResp struct {
	Product  string  `json:"product"`
	Price    float64 `json:"price"`
	Selected bool    `json:"selected"`
}

type checkoutReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type checkoutResp struct {
	Order    Order  `json:"order"`
	Redirect string `json:"redirect"`
}

// selection reads the product carried over from the detail page.
// Query values arrive already percent-decoded.
func selection(r *http.Request) (string, float64) {
	q := r.URL.Query()
	return q.Get("product"), catalog.ParsePrice(q.Get("price"))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	product, price := selection(r)
	kit.WriteJSON(w, http.StatusOK, summaryResp{
		Product:  product,
		Price:    price,
		Selected: product != "",
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckout(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad request body", nil)
		return
	}

	product, price := selection(r)
	o, err := s.Orders.Checkout(r.Context(), CheckoutForm{
		Product: product,
		Price:   price,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})

	var verr *ValidationError
	switch {
	case err == nil:
		kit.WriteJSON(w, http.StatusCreated, checkoutResp{Order: o, Redirect: ThankYouPath})
	case errors.As(err, &verr):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, "validation failed", map[string]any{"problems": verr.Problems})
	case errors.Is(err, ErrSubmission):
		kit.WriteError(w, r, http.StatusBadGateway, msgSubmitFailed, map[string]any{"retry": true})
	default:
		kit.OrNop(s.Log).Error("checkout failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func decodeCheckout(w http.ResponseWriter, r *http.Request) (checkoutReq, error) {
	var req checkoutReq

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		err := kit.DecodeJSON(w, r, maxCheckoutBody, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBody)
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostForm.Get("name")
	req.Email = r.PostForm.Get("email")
	req.Phone = r.PostForm.Get("phone")
	req.Address = r.PostForm.Get("address")
	return req, nil
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	o, ok, err := s.Orders.Get(ctx, id)
	if err != nil {
		kit.OrNop(s.Log).Error("get order", zap.String("order_id", id), zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, o.Receipt())
}
