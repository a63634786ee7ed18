package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealerdesk/order-engine/internal/cart"
	"github.com/dealerdesk/order-engine/internal/catalog"
)

type CartHandler struct {
	Store   *cart.Store
	Catalog *catalog.Reader
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Route("/carts/{ownerID}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{productID}", h.updateItem)
		r.Delete("/items/{productID}", h.removeItem)
		r.Post("/merge", h.mergeCart)
		r.Post("/save", h.saveCart)
		r.Get("/saved/{cartID}", h.getSaved)
		r.Post("/saved/{cartID}/restore", h.restoreSaved)
		r.Delete("/saved/{cartID}", h.deleteSaved)
	})
}

type cartResponse struct {
	cart.Cart
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func respondCart(w http.ResponseWriter, code int, c cart.Cart) {
	writeJSON(w, code, cartResponse{Cart: c, ItemCount: c.ItemCount(), Subtotal: c.Subtotal()})
}

func (h *CartHandler) load(ctx context.Context, r *http.Request) (cart.Cart, error) {
	return h.Store.Get(ctx, chi.URLParam(r, "ownerID"))
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, c)
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// MaxQuantity is the per-line cap from the product snapshot the portal
	// showed the dealer; optional.
	MaxQuantity int `json:"max_quantity,omitempty"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "product_id and positive quantity required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Catalog.Product(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeErr(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	// price is captured at add time; checkout re-validates drift later
	c.AddItem(cart.Item{
		ProductID:   p.ID,
		UnitPrice:   p.Price,
		MaxQuantity: req.MaxQuantity,
	}, req.Quantity)

	if err := h.Store.Put(ctx, c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, c)
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	c.UpdateQuantity(chi.URLParam(r, "productID"), req.Quantity)

	if err := h.Store.Put(ctx, c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, c)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	c.RemoveItem(chi.URLParam(r, "productID"))

	if err := h.Store.Put(ctx, c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, c)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	c.Clear()

	if err := h.Store.Put(ctx, c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, c)
}

type mergeReq struct {
	Strategy string    `json:"strategy,omitempty"` // larger (default) | sum | theirs
	Cart     cart.Cart `json:"cart"`
}

// mergeCart folds a client-held cart (e.g. from another device) into the
// stored one.
func (h *CartHandler) mergeCart(w http.ResponseWriter, r *http.Request) {
	var req mergeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	strategy := cart.LargerWins
	switch req.Strategy {
	case "", "larger":
	case "sum":
		strategy = cart.Sum
	case "theirs":
		strategy = cart.TheirsWins
	default:
		writeErr(w, http.StatusBadRequest, "unknown merge strategy")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	local, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	merged := cart.Merge(local, req.Cart, strategy)

	if err := h.Store.Put(ctx, merged); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, merged)
}

type saveCartReq struct {
	Name string `json:"name"`
}

// saveCart snapshots the working cart under a name so it survives checkout.
func (h *CartHandler) saveCart(w http.ResponseWriter, r *http.Request) {
	var req saveCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.load(ctx, r)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}

	saved := c
	saved.ID = uuid.NewString()
	saved.Saved = true
	saved.Name = req.Name

	if err := h.Store.Put(ctx, saved); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusCreated, saved)
}

func (h *CartHandler) loadSaved(w http.ResponseWriter, r *http.Request) (cart.Cart, bool) {
	c, err := h.Store.GetSaved(r.Context(), chi.URLParam(r, "ownerID"), chi.URLParam(r, "cartID"))
	if errors.Is(err, cart.ErrNotFound) {
		writeErr(w, http.StatusNotFound, err.Error())
		return cart.Cart{}, false
	}
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return cart.Cart{}, false
	}
	return c, true
}

func (h *CartHandler) getSaved(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadSaved(w, r)
	if !ok {
		return
	}
	respondCart(w, http.StatusOK, c)
}

// restoreSaved replaces the working cart with the saved snapshot. The saved
// cart itself stays put.
func (h *CartHandler) restoreSaved(w http.ResponseWriter, r *http.Request) {
	saved, ok := h.loadSaved(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	working := cart.Cart{OwnerID: saved.OwnerID, Items: saved.Items}
	if err := h.Store.Put(ctx, working); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondCart(w, http.StatusOK, working)
}

func (h *CartHandler) deleteSaved(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadSaved(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), c); err != nil {
		writeErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
