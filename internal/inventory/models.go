// Package inventory owns per-product, per-location stock rows and the
// reservation engine over them. The quantity/reserved invariant
// (0 <= reserved <= quantity on every row) is enforced here and nowhere else:
// inventory rows are mutated exclusively through the allocator.
package inventory

import "fmt"

type Location struct {
	ID   string
	Name string
	Code string
	Type string
}

// Row is one (product, location) stock record. Quantity counts units
// physically present; Reserved counts units committed to open orders.
type Row struct {
	ProductID         string
	LocationID        string
	Quantity          int
	Reserved          int
	LowStockThreshold int
}

// Available is what the row can still promise.
func (r Row) Available() int { return r.Quantity - r.Reserved }

// Allocation records units reserved at one location for one order item.
// It is the only safe basis for reversal: releasing by product-level totals
// can mis-restore individual locations once several orders draw from the
// same product.
type Allocation struct {
	OrderItemID   string
	LocationID    string
	UnitsReserved int
}

// InsufficientStockError reports that a product could not cover the requested
// quantity at allocation time.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
