// Package catalog is a read-only view of the product catalog. The catalog
// itself is owned elsewhere; the engine only reads price and status.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/postgres"
)

var ErrProductNotFound = errors.New("product not found")

type Status string

const (
	StatusActive       Status = "active"
	StatusDraft        Status = "draft"
	StatusDiscontinued Status = "discontinued"
)

type Product struct {
	ID     string
	Price  decimal.Decimal
	Status Status
}

type Reader struct {
	DB *pgxpool.Pool
}

func (r *Reader) Product(ctx context.Context, id string) (Product, error) {
	var p Product
	err := postgres.Querier(ctx, r.DB).QueryRow(ctx,
		`SELECT id, price, status FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Price, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Reader) Products(ctx context.Context, ids []string) (map[string]Product, error) {
	rows, err := postgres.Querier(ctx, r.DB).Query(ctx,
		`SELECT id, price, status FROM products WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Price, &p.Status); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}
