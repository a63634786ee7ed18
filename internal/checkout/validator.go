// Package checkout gates a cart snapshot against the current catalog and
// stock picture. The read here is advisory only: the allocator re-checks
// availability inside its own transaction, so a pass here is never trusted
// as a reservation.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/catalog"
)

type IssueKind string

const (
	IssueUnavailable       IssueKind = "unavailable"
	IssueOutOfStock        IssueKind = "out_of_stock"
	IssueInsufficientStock IssueKind = "insufficient_stock"
	IssuePriceDrift        IssueKind = "price_drift"
)

// priceDriftTolerance is the relative drift allowed between the cart-captured
// unit price and the catalog price (1%).
var priceDriftTolerance = decimal.NewFromFloat(0.01)

type Issue struct {
	ProductID string    `json:"product_id"`
	Kind      IssueKind `json:"kind"`
}

// ValidationError carries every blocking issue found in the cart. Checkout is
// all-or-nothing: one issue anywhere blocks the whole cart.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.ProductID, is.Kind))
	}
	return "checkout blocked: " + strings.Join(parts, ", ")
}

// Line is one cart line as captured at add time.
type Line struct {
	ProductID         string
	Quantity          int
	CapturedUnitPrice decimal.Decimal
}

type CatalogReader interface {
	Products(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

type AvailabilityReader interface {
	// AvailableByProduct returns sum(quantity - reserved) across locations.
	AvailableByProduct(ctx context.Context, productIDs []string) (map[string]int, error)
}

type Validator struct {
	Catalog CatalogReader
	Stock   AvailabilityReader
}

// Validate returns nil when the cart may proceed, a *ValidationError listing
// every blocking issue otherwise. Unknown products surface as
// catalog.ErrProductNotFound immediately.
func (v *Validator) Validate(ctx context.Context, lines []Line) error {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}

	products, err := v.Catalog.Products(ctx, ids)
	if err != nil {
		return err
	}
	available, err := v.Stock.AvailableByProduct(ctx, ids)
	if err != nil {
		return err
	}

	var issues []Issue
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, l.ProductID)
		}

		if p.Status != catalog.StatusActive {
			issues = append(issues, Issue{ProductID: l.ProductID, Kind: IssueUnavailable})
		}

		switch avail := available[l.ProductID]; {
		case avail <= 0:
			issues = append(issues, Issue{ProductID: l.ProductID, Kind: IssueOutOfStock})
		case avail < l.Quantity:
			issues = append(issues, Issue{ProductID: l.ProductID, Kind: IssueInsufficientStock})
		}

		if priceDrifted(l.CapturedUnitPrice, p.Price) {
			issues = append(issues, Issue{ProductID: l.ProductID, Kind: IssuePriceDrift})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func priceDrifted(captured, current decimal.Decimal) bool {
	if captured.IsZero() {
		return !current.IsZero()
	}
	drift := current.Sub(captured).Abs().Div(captured.Abs())
	return drift.GreaterThan(priceDriftTolerance)
}
