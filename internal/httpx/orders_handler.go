package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/catalog"
	"github.com/dealerdesk/order-engine/internal/checkout"
	"github.com/dealerdesk/order-engine/internal/inventory"
	"github.com/dealerdesk/order-engine/internal/orders"
	"github.com/dealerdesk/order-engine/internal/redisx"
)

type OrdersHandler struct {
	Service   *orders.Service
	Inventory *inventory.Repo
	Redis     *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getOrderStatus)
	r.Post("/orders/{id}/transitions", h.transition)
	r.Post("/orders/{id}/cancel", h.cancel)
	r.Get("/inventory/low-stock", h.lowStock)
}

type checkoutLineReq struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"` // price captured in the cart
}

type checkoutReq struct {
	OwnerID         string            `json:"owner_id"`
	ActorID         string            `json:"actor_id"`
	PONumber        string            `json:"po_number,omitempty"`
	ShippingAddress orders.Address    `json:"shipping_address"`
	Items           []checkoutLineReq `json:"items"`
}

func validateAddress(a orders.Address) error {
	switch {
	case a.Name == "":
		return errors.New("shipping_address.name required")
	case a.Line1 == "":
		return errors.New("shipping_address.line1 required")
	case a.City == "":
		return errors.New("shipping_address.city required")
	case a.PostalCode == "":
		return errors.New("shipping_address.postal_code required")
	case a.Country == "":
		return errors.New("shipping_address.country required")
	}
	return nil
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OwnerID == "" || len(req.Items) == 0 {
		writeErr(w, http.StatusBadRequest, "owner_id and items required")
		return
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ActorID == "" {
		req.ActorID = req.OwnerID
	}

	lines := make([]checkout.Line, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			writeErr(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity for product %s", it.ProductID))
			return
		}
		lines = append(lines, checkout.Line{
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			CapturedUnitPrice: it.UnitPrice,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Service.Checkout(ctx, orders.CheckoutInput{
		OwnerID:         req.OwnerID,
		ActorID:         req.ActorID,
		PONumber:        req.PONumber,
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
	})
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	h.cacheStatus(ctx, detail.Order.ID, detail.Order.Status)
	writeJSON(w, http.StatusCreated, toDetailResponse(detail))
}

func (h *OrdersHandler) writeCheckoutError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	var serr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "checkout blocked",
			"issues": verr.Issues,
		})
	case errors.As(err, &serr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      err.Error(),
			"product_id": serr.ProductID,
			"requested":  serr.Requested,
			"available":  serr.Available,
		})
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrNoLines):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrNumberTaken), errors.Is(err, orders.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	detail, err := h.Service.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

// getOrderStatus serves the cached status when present; display reads
// tolerate the cache TTL.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	detail, err := h.Service.Get(ctx, orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.cacheStatus(ctx, orderID, detail.Order.Status)
	writeJSON(w, http.StatusOK, map[string]any{"status": detail.Order.Status})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, s orders.Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": s})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		writeErr(w, http.StatusBadRequest, "owner_id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Service.ListByOwner(ctx, ownerID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

type transitionReq struct {
	Status  orders.Status `json:"status"`
	ActorID string        `json:"actor_id"`
	Note    string        `json:"note,omitempty"`
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request) {
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status == "" || req.ActorID == "" {
		writeErr(w, http.StatusBadRequest, "status and actor_id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Transition(ctx, chi.URLParam(r, "id"), req.Status, req.ActorID, req.Note)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type cancelReq struct {
	ActorID string `json:"actor_id"`
	Note    string `json:"note,omitempty"`
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ActorID == "" {
		writeErr(w, http.StatusBadRequest, "actor_id required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Cancel(ctx, chi.URLParam(r, "id"), req.ActorID, req.Note)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	h.cacheStatus(ctx, o.ID, o.Status)
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrdersHandler) writeTransitionError(w http.ResponseWriter, err error) {
	var serr *orders.StateError
	switch {
	case errors.As(err, &serr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": err.Error(),
			"from":  serr.From,
			"to":    serr.To,
		})
	case errors.Is(err, orders.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *OrdersHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Inventory.LowStock(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	type rowResp struct {
		ProductID         string `json:"product_id"`
		LocationID        string `json:"location_id"`
		Quantity          int    `json:"quantity"`
		Reserved          int    `json:"reserved"`
		Available         int    `json:"available"`
		LowStockThreshold int    `json:"low_stock_threshold"`
	}
	out := make([]rowResp, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowResp{
			ProductID:         row.ProductID,
			LocationID:        row.LocationID,
			Quantity:          row.Quantity,
			Reserved:          row.Reserved,
			Available:         row.Available(),
			LowStockThreshold: row.LowStockThreshold,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
