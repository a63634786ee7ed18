package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is a structured shipping destination, validated at the HTTP
// boundary rather than inside the business logic.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string
	OrderNumber     string // ORD-<year>-<8-char code>, globally unique
	OwnerID         string
	Status          Status
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	PONumber        string
	ShippingAddress Address

	SubmittedAt *time.Time
	ConfirmedAt *time.Time
	ShippedAt   *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	// UnitPrice is frozen at submission and immutable thereafter.
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal // Quantity x UnitPrice
	// Backordered is the remainder deferred to later fulfilment. Only ever
	// nonzero under the backorder allocation policy.
	Backordered int
}

// HistoryEntry is one row of the order's append-only status log. The latest
// entry's status always equals the order's current status.
type HistoryEntry struct {
	ID        string
	OrderID   string
	Status    Status
	Note      string
	ActorID   string
	CreatedAt time.Time
}
