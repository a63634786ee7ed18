// Package cart holds the dealer's mutable line-item collection. All mutations
// are pure in-memory edits; nothing is persisted until checkout (the Store is
// a convenience for saved carts, not a correctness mechanism).
package cart

import (
	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"` // captured from the catalog at add time
	// MaxQuantity caps the line when > 0; carried from the product snapshot.
	MaxQuantity int `json:"max_quantity,omitempty"`
}

type Cart struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Saved   bool   `json:"saved"`
	Name    string `json:"name,omitempty"`
	Items   []Item `json:"items"`
}

func (c *Cart) find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges into an existing line by summing quantities, clamped to the
// line's MaxQuantity when set.
func (c *Cart) AddItem(it Item, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.find(it.ProductID); i >= 0 {
		c.Items[i].Quantity = clamp(c.Items[i].Quantity+qty, c.Items[i].MaxQuantity)
		return
	}
	it.Quantity = clamp(qty, it.MaxQuantity)
	c.Items = append(c.Items, it)
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line.
func (c *Cart) UpdateQuantity(productID string, qty int) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
	c.Items[i].Quantity = clamp(qty, c.Items[i].MaxQuantity)
}

func (c *Cart) RemoveItem(productID string) {
	c.UpdateQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.Items = nil
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price x quantity over all lines, at captured prices.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func clamp(qty, max int) int {
	if max > 0 && qty > max {
		return max
	}
	return qty
}
