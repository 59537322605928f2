package order

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const queryTimeout = 5 * time.Second

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, name, email, phone, address, product, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, o.ID, o.Name, o.Email, o.Phone, o.Address, o.Product, o.Price, o.Status, o.CreatedAt)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, product, price::float8, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Address, &o.Product, &o.Price, &o.Status, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}
