// Package pricing computes order totals from line items.
package pricing

import "github.com/shopspring/decimal"

var (
	taxRate          = decimal.NewFromFloat(0.08) // flat rate, jurisdiction lookup is out of scope
	freeShippingOver = decimal.NewFromInt(500)
	flatShipping     = decimal.NewFromInt(25)
)

type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives subtotal/tax/shipping/total for the given lines.
// Per-line products stay unrounded; only the three outputs are rounded
// (2 places, half up) so rounding error never compounds across lines.
func Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	tax := subtotal.Mul(taxRate)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	t := Totals{
		Subtotal: subtotal.Round(2),
		Tax:      tax.Round(2),
		Shipping: shipping.Round(2),
	}
	t.Total = t.Subtotal.Add(t.Tax).Add(t.Shipping)
	return t
}
