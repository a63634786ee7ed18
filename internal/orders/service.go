package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/catalog"
	"github.com/dealerdesk/order-engine/internal/checkout"
	"github.com/dealerdesk/order-engine/internal/clock"
	"github.com/dealerdesk/order-engine/internal/inventory"
	"github.com/dealerdesk/order-engine/internal/pricing"
)

var ErrNoLines = errors.New("checkout requires at least one line")

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Insert(ctx context.Context, o Order, items []Item) error
	Get(ctx context.Context, id string) (Order, error)
	GetForUpdate(ctx context.Context, id string) (Order, error)
	ItemsOf(ctx context.Context, orderID string) ([]Item, error)
	History(ctx context.Context, orderID string) ([]HistoryEntry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	SetStatus(ctx context.Context, orderID string, s Status, at time.Time) error
	SetItemBackordered(ctx context.Context, itemID string, units int) error
	AppendHistory(ctx context.Context, h HistoryEntry) error
}

type Allocator interface {
	Allocate(ctx context.Context, orderItemID, productID string, qty int, policy inventory.Policy) ([]inventory.Allocation, int, error)
	Release(ctx context.Context, orderID string) error
}

type CartValidator interface {
	Validate(ctx context.Context, lines []checkout.Line) error
}

type CatalogReader interface {
	Products(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// Service drives orders through checkout and the status lifecycle.
type Service struct {
	Repo      Repository
	Allocator Allocator
	Validator CartValidator
	Catalog   CatalogReader
	Notifier  Notifier
	Clock     clock.Clock
	// Policy is the allocation policy for the standard checkout path.
	// Supply-order workflows pass their own policy explicitly.
	Policy inventory.Policy
}

type CheckoutInput struct {
	OwnerID         string
	ActorID         string
	PONumber        string
	ShippingAddress Address
	Lines           []checkout.Line
}

type Detail struct {
	Order   Order
	Items   []Item
	History []HistoryEntry
}

// Checkout turns a cart snapshot into a submitted order: advisory validation,
// then one transaction covering the order insert, per-line stock allocation
// and the first history row. The allocator re-checks availability under lock,
// so a validator pass can still end in InsufficientStockError.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (Detail, error) {
	if len(in.Lines) == 0 {
		return Detail{}, ErrNoLines
	}

	if err := s.Validator.Validate(ctx, in.Lines); err != nil {
		return Detail{}, err
	}

	ids := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.Catalog.Products(ctx, ids)
	if err != nil {
		return Detail{}, err
	}

	now := s.Clock.Now()
	orderID := uuid.NewString()

	items := make([]Item, 0, len(in.Lines))
	lines := make([]pricing.Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return Detail{}, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, l.ProductID)
		}
		// unit price freezes at submission, at the catalog price the
		// validator just cleared
		items = append(items, Item{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
		lines = append(lines, pricing.Line{Quantity: l.Quantity, UnitPrice: p.Price})
	}
	totals := pricing.Compute(lines)

	o := Order{
		ID:              orderID,
		OwnerID:         in.OwnerID,
		Status:          StatusSubmitted,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		TotalAmount:     totals.Total,
		PONumber:        in.PONumber,
		ShippingAddress: in.ShippingAddress,
		SubmittedAt:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	history := HistoryEntry{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Status:    StatusSubmitted,
		Note:      "order submitted",
		ActorID:   in.ActorID,
		CreatedAt: now,
	}

	// Bounded retry applies to the generated order number only; stock and
	// validation failures are never retried.
	for attempt := 0; ; attempt++ {
		o.OrderNumber = NewOrderNumber(now)

		err = s.Repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.Repo.Insert(txCtx, o, items); err != nil {
				return err
			}
			for i := range items {
				_, backordered, err := s.Allocator.Allocate(txCtx, items[i].ID, items[i].ProductID, items[i].Quantity, s.Policy)
				if err != nil {
					return err
				}
				if backordered > 0 {
					items[i].Backordered = backordered
					if err := s.Repo.SetItemBackordered(txCtx, items[i].ID, backordered); err != nil {
						return err
					}
				}
			}
			return s.Repo.AppendHistory(txCtx, history)
		})
		if errors.Is(err, ErrNumberTaken) && attempt+1 < maxNumberAttempts {
			continue
		}
		break
	}
	if err != nil {
		return Detail{}, err
	}

	s.Notifier.OrderStatusChanged(o.ID, StatusDraft, StatusSubmitted)
	return Detail{Order: o, Items: items, History: []HistoryEntry{history}}, nil
}

// Transition advances the order to the requested status. Status update,
// milestone timestamp, optional inventory release and history append commit
// as one unit; an illegal move returns StateError and mutates nothing.
func (s *Service) Transition(ctx context.Context, orderID string, to Status, actorID, note string) (Order, error) {
	now := s.Clock.Now()
	var (
		from    Status
		updated Order
	)

	err := s.Repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.Repo.GetForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		from = o.Status

		if !CanTransition(o.Status, to) {
			return &StateError{From: o.Status, To: to}
		}

		if to == StatusCancelled {
			if err := s.Allocator.Release(txCtx, orderID); err != nil {
				return err
			}
		}

		if err := s.Repo.SetStatus(txCtx, orderID, to, now); err != nil {
			return err
		}
		if err := s.Repo.AppendHistory(txCtx, HistoryEntry{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Status:    to,
			Note:      note,
			ActorID:   actorID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		updated = o
		updated.Status = to
		updated.UpdatedAt = now
		stamp(&updated, to, now)
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.Notifier.OrderStatusChanged(orderID, from, to)
	return updated, nil
}

// Cancel releases every reserved unit recorded for the order's items and
// moves it to cancelled. Only legal from draft, submitted or confirmed.
func (s *Service) Cancel(ctx context.Context, orderID, actorID, note string) (Order, error) {
	if note == "" {
		note = "order cancelled"
	}
	return s.Transition(ctx, orderID, StatusCancelled, actorID, note)
}

func (s *Service) Get(ctx context.Context, orderID string) (Detail, error) {
	o, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	items, err := s.Repo.ItemsOf(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	history, err := s.Repo.History(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: o, Items: items, History: history}, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Order, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

func stamp(o *Order, s Status, at time.Time) {
	switch s {
	case StatusSubmitted:
		o.SubmittedAt = &at
	case StatusConfirmed:
		o.ConfirmedAt = &at
	case StatusShipped:
		o.ShippedAt = &at
	case StatusDelivered:
		o.DeliveredAt = &at
	case StatusCancelled:
		o.CancelledAt = &at
	}
}
