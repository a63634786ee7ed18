package httpx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/orders"
)

type orderResponse struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	OwnerID         string          `json:"owner_id"`
	Status          orders.Status   `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ShippingAmount  decimal.Decimal `json:"shipping_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PONumber        string          `json:"po_number,omitempty"`
	ShippingAddress orders.Address  `json:"shipping_address"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type itemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Backordered int             `json:"backordered,omitempty"`
}

type historyResponse struct {
	Status    orders.Status `json:"status"`
	Note      string        `json:"note,omitempty"`
	ActorID   string        `json:"actor_id"`
	CreatedAt time.Time     `json:"created_at"`
}

type detailResponse struct {
	orderResponse
	Items   []itemResponse    `json:"items"`
	History []historyResponse `json:"history"`
}

func toOrderResponse(o orders.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		OwnerID:         o.OwnerID,
		Status:          o.Status,
		Subtotal:        o.Subtotal,
		TaxAmount:       o.TaxAmount,
		ShippingAmount:  o.ShippingAmount,
		TotalAmount:     o.TotalAmount,
		PONumber:        o.PONumber,
		ShippingAddress: o.ShippingAddress,
		SubmittedAt:     o.SubmittedAt,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CreatedAt:       o.CreatedAt,
	}
}

func toDetailResponse(d orders.Detail) detailResponse {
	out := detailResponse{orderResponse: toOrderResponse(d.Order)}
	for _, it := range d.Items {
		out.Items = append(out.Items, itemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Backordered: it.Backordered,
		})
	}
	for _, hr := range d.History {
		out.History = append(out.History, historyResponse{
			Status:    hr.Status,
			Note:      hr.Note,
			ActorID:   hr.ActorID,
			CreatedAt: hr.CreatedAt,
		})
	}
	return out
}
