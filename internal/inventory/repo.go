package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dealerdesk/order-engine/internal/postgres"
)

const (
	allocStatusReserved = "RESERVED"
	allocStatusReleased = "RELEASED"
)

// Repo executes allocations against postgres. Allocate and Release each run
// inside one transaction; when the caller already opened one (the order
// submit/cancel path), they join it so the order mutation and the inventory
// mutation commit or roll back together.
type Repo struct {
	DB *pgxpool.Pool
}

// Allocate locks the product's inventory rows, re-checks availability (the
// validator's earlier read is advisory only), bumps reserved per location and
// records one allocation row per (location, units) split. Any shortfall under
// PolicyReject aborts with no partial reservation left behind.
func (r *Repo) Allocate(ctx context.Context, orderItemID, productID string, qty int, policy Policy) ([]Allocation, int, error) {
	var (
		allocs      []Allocation
		backordered int
	)
	err := postgres.WithTx(ctx, r.DB, func(txCtx context.Context) error {
		db := postgres.Querier(txCtx, r.DB)

		rows, err := db.Query(txCtx, `
			SELECT product_id, location_id, quantity, reserved, low_stock_threshold
			FROM inventory_rows
			WHERE product_id = $1
			ORDER BY location_id
			FOR UPDATE`, productID)
		if err != nil {
			return fmt.Errorf("lock inventory rows: %w", err)
		}
		var stock []Row
		for rows.Next() {
			var row Row
			if err := rows.Scan(&row.ProductID, &row.LocationID, &row.Quantity, &row.Reserved, &row.LowStockThreshold); err != nil {
				rows.Close()
				return err
			}
			stock = append(stock, row)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		splits, rem, err := Plan(productID, stock, qty, policy)
		if err != nil {
			return err
		}
		backordered = rem

		for _, sp := range splits {
			ct, err := db.Exec(txCtx, `
				UPDATE inventory_rows
				SET reserved = reserved + $3
				WHERE product_id = $1 AND location_id = $2 AND reserved + $3 <= quantity`,
				productID, sp.LocationID, sp.Units)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			if ct.RowsAffected() != 1 {
				// rows are locked, so this means the plan disagrees with the data
				return fmt.Errorf("reserve %d units of %s at %s: row changed under lock", sp.Units, productID, sp.LocationID)
			}

			if _, err := db.Exec(txCtx, `
				INSERT INTO allocation_records (id, order_item_id, location_id, units_reserved, status)
				VALUES ($1, $2, $3, $4, $5)`,
				uuid.NewString(), orderItemID, sp.LocationID, sp.Units, allocStatusReserved); err != nil {
				return fmt.Errorf("record allocation: %w", err)
			}
			allocs = append(allocs, Allocation{
				OrderItemID:   orderItemID,
				LocationID:    sp.LocationID,
				UnitsReserved: sp.Units,
			})
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return allocs, backordered, nil
}

// Release reverses every outstanding allocation of the order: per recorded
// (location, units) pair, that location's reserved drops by exactly those
// units. Calling it again after a successful release finds no RESERVED rows
// and is a no-op.
func (r *Repo) Release(ctx context.Context, orderID string) error {
	return postgres.WithTx(ctx, r.DB, func(txCtx context.Context) error {
		db := postgres.Querier(txCtx, r.DB)

		rows, err := db.Query(txCtx, `
			SELECT a.id, oi.product_id, a.location_id, a.units_reserved
			FROM allocation_records a
			JOIN order_items oi ON oi.id = a.order_item_id
			WHERE oi.order_id = $1 AND a.status = $2
			FOR UPDATE OF a`, orderID, allocStatusReserved)
		if err != nil {
			return fmt.Errorf("load allocations: %w", err)
		}
		type rec struct {
			id         string
			productID  string
			locationID string
			units      int
		}
		var recs []rec
		for rows.Next() {
			var x rec
			if err := rows.Scan(&x.id, &x.productID, &x.locationID, &x.units); err != nil {
				rows.Close()
				return err
			}
			recs = append(recs, x)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(recs) == 0 {
			return nil // already released
		}

		ids := make([]string, 0, len(recs))
		for _, x := range recs {
			if _, err := db.Exec(txCtx, `
				UPDATE inventory_rows
				SET reserved = reserved - $3
				WHERE product_id = $1 AND location_id = $2`,
				x.productID, x.locationID, x.units); err != nil {
				return fmt.Errorf("release stock: %w", err)
			}
			ids = append(ids, x.id)
		}

		if _, err := db.Exec(txCtx, `
			UPDATE allocation_records SET status = $2 WHERE id = ANY($1)`,
			ids, allocStatusReleased); err != nil {
			return fmt.Errorf("mark released: %w", err)
		}
		return nil
	})
}

// AvailableByProduct sums quantity - reserved across locations. Products with
// no inventory rows come back as 0.
func (r *Repo) AvailableByProduct(ctx context.Context, productIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		out[id] = 0
	}

	rows, err := postgres.Querier(ctx, r.DB).Query(ctx, `
		SELECT product_id, COALESCE(SUM(quantity - reserved), 0)
		FROM inventory_rows
		WHERE product_id = ANY($1)
		GROUP BY product_id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("sum availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var avail int
		if err := rows.Scan(&id, &avail); err != nil {
			return nil, err
		}
		out[id] = avail
	}
	return out, rows.Err()
}

// LowStock lists rows whose availability has fallen to the row's threshold,
// for the portal's restock screen.
func (r *Repo) LowStock(ctx context.Context) ([]Row, error) {
	rows, err := postgres.Querier(ctx, r.DB).Query(ctx, `
		SELECT product_id, location_id, quantity, reserved, low_stock_threshold
		FROM inventory_rows
		WHERE quantity - reserved <= low_stock_threshold
		ORDER BY product_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ProductID, &row.LocationID, &row.Quantity, &row.Reserved, &row.LowStockThreshold); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
