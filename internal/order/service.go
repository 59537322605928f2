package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SheetStore/pkg/kit"
)

// Service runs a checkout: validate, submit once, keep a receipt.
type Service struct {
	Submitter *Submitter
	Store     Store
	Log       *zap.Logger
	Metrics   *Metrics

	now   func() time.Time
	newID func() string
}

func NewService(sub *Submitter, store Store, log *zap.Logger, m *Metrics) *Service {
	return &Service{
		Submitter: sub,
		Store:     store,
		Log:       kit.OrNop(log),
		Metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return "o_" + uuid.NewString() },
	}
}

// Checkout returns a *ValidationError before touching the network when the
// form is incomplete, and a *SubmissionError when the endpoint rejects it.
// A receipt that cannot be stored is logged; the order was already sent.
func (s *Service) Checkout(ctx context.Context, form CheckoutForm) (Order, error) {
	form = form.Normalize()
	log := kit.OrNop(s.Log)

	if err := Validate(form); err != nil {
		s.Metrics.observe("invalid")
		return Order{}, err
	}

	now := s.now()
	o := Order{
		ID:        s.newID(),
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Address:   form.Address,
		Product:   form.Product,
		Price:     form.Price,
		Status:    StatusSubmitted,
		CreatedAt: now,
	}

	err := s.Submitter.Submit(ctx, Submission{
		OrderID:   o.ID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		Address:   o.Address,
		Product:   o.Product,
		Price:     o.Price,
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		s.Metrics.observe("failed")
		log.Warn("order submission failed", zap.String("order_id", o.ID), zap.Error(err))
		return Order{}, err
	}
	s.Metrics.observe("submitted")

	if s.Store != nil {
		if err := s.Store.Create(ctx, o); err != nil {
			log.Error("store order receipt", zap.String("order_id", o.ID), zap.Error(err))
		}
	}

	log.Info("order submitted", zap.String("order_id", o.ID), zap.String("product", o.Product))
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (Order, bool, error) {
	if s.Store == nil {
		return Order{}, false, nil
	}
	return s.Store.Get(ctx, id)
}

func (s *Service) Ping(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Ping(ctx)
}
