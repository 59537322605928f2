package order

import (
	"context"
	"time"
)

const StatusSubmitted = "SUBMITTED"

// Order is the receipt kept after a successful submission.
type Order struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Product   string    `json:"product"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, bool, error)
	Ping(ctx context.Context) error
}

// Receipt is the public view of an Order. Anyone holding the id can read
// it, so it carries no buyer contact details.
type Receipt struct {
	ID        string    `json:"id"`
	Product   string    `json:"product"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (o Order) Receipt() Receipt {
	return Receipt{
		ID:        o.ID,
		Product:   o.Product,
		Price:     o.Price,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}
}
