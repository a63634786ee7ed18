package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/order-engine/internal/postgres"
)

type Repo struct {
	DB *pgxpool.Pool
}

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithTx(ctx, r.DB, fn)
}

const orderColumns = `
	id, order_number, owner_id, status,
	subtotal, tax_amount, shipping_amount, total_amount, po_number,
	ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country,
	submitted_at, confirmed_at, shipped_at, delivered_at, cancelled_at,
	created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.OwnerID, &o.Status,
		&o.Subtotal, &o.TaxAmount, &o.ShippingAmount, &o.TotalAmount, &o.PONumber,
		&o.ShippingAddress.Name, &o.ShippingAddress.Line1, &o.ShippingAddress.Line2,
		&o.ShippingAddress.City, &o.ShippingAddress.State, &o.ShippingAddress.PostalCode,
		&o.ShippingAddress.Country,
		&o.SubmittedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt, &o.CancelledAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// Insert writes the order and its items. An order-number collision comes back
// as ErrNumberTaken so the caller can regenerate; any other unique violation
// is ErrConflict.
func (r *Repo) Insert(ctx context.Context, o Order, items []Item) error {
	db := postgres.Querier(ctx, r.DB)

	_, err := db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		o.ID, o.OrderNumber, o.OwnerID, o.Status,
		o.Subtotal, o.TaxAmount, o.ShippingAmount, o.TotalAmount, o.PONumber,
		o.ShippingAddress.Name, o.ShippingAddress.Line1, o.ShippingAddress.Line2,
		o.ShippingAddress.City, o.ShippingAddress.State, o.ShippingAddress.PostalCode,
		o.ShippingAddress.Country,
		o.SubmittedAt, o.ConfirmedAt, o.ShippedAt, o.DeliveredAt, o.CancelledAt,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := postgres.IsUniqueViolation(err); ok {
			if constraint == "orders_order_number_key" {
				return ErrNumberTaken
			}
			return fmt.Errorf("%w: %s", ErrConflict, constraint)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range items {
		_, err := db.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price, backordered)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.Backordered,
		)
		if err != nil {
			if constraint, ok := postgres.IsUniqueViolation(err); ok {
				return fmt.Errorf("%w: %s", ErrConflict, constraint)
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(postgres.Querier(ctx, r.DB).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// GetForUpdate locks the order row for the duration of the enclosing
// transaction so concurrent transitions serialize.
func (r *Repo) GetForUpdate(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(postgres.Querier(ctx, r.DB).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return o, nil
}

func (r *Repo) ItemsOf(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := postgres.Querier(ctx, r.DB).Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, backordered
		FROM order_items WHERE order_id = $1 ORDER BY product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Backordered); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) History(ctx context.Context, orderID string) ([]HistoryEntry, error) {
	rows, err := postgres.Querier(ctx, r.DB).Query(ctx, `
		SELECT id, order_id, status, note, actor_id, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Note, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	rows, err := postgres.Querier(ctx, r.DB).Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// SetStatus updates the status and stamps the milestone column for the new
// status in the same statement.
func (r *Repo) SetStatus(ctx context.Context, orderID string, s Status, at time.Time) error {
	q := `UPDATE orders SET status = $2, updated_at = $3`
	if col := timestampColumn(s); col != "" {
		q += `, ` + col + ` = $3`
	}
	q += ` WHERE id = $1`

	ct, err := postgres.Querier(ctx, r.DB).Exec(ctx, q, orderID, s, at)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) SetItemBackordered(ctx context.Context, itemID string, units int) error {
	ct, err := postgres.Querier(ctx, r.DB).Exec(ctx,
		`UPDATE order_items SET backordered = $2 WHERE id = $1`, itemID, units)
	if err != nil {
		return fmt.Errorf("set backordered: %w", err)
	}
	if ct.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) AppendHistory(ctx context.Context, h HistoryEntry) error {
	_, err := postgres.Querier(ctx, r.DB).Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, note, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.ID, h.OrderID, h.Status, h.Note, h.ActorID, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
