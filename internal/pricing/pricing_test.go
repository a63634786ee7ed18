package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute(t *testing.T) {
	t.Parallel()

	t.Run("flat shipping below threshold", func(t *testing.T) {
		// 2 x $100 + 3 x $50
		totals := Compute([]Line{
			{Quantity: 2, UnitPrice: d("100")},
			{Quantity: 3, UnitPrice: d("50")},
		})

		assertDecimal(t, "350.00", totals.Subtotal)
		assertDecimal(t, "28.00", totals.Tax)
		assertDecimal(t, "25.00", totals.Shipping)
		assertDecimal(t, "403.00", totals.Total)
	})

	t.Run("free shipping above threshold", func(t *testing.T) {
		totals := Compute([]Line{
			{Quantity: 4, UnitPrice: d("150")},
		})

		assertDecimal(t, "600.00", totals.Subtotal)
		assertDecimal(t, "48.00", totals.Tax)
		assertDecimal(t, "0.00", totals.Shipping)
		assertDecimal(t, "648.00", totals.Total)
	})

	t.Run("shipping still charged at exactly 500", func(t *testing.T) {
		totals := Compute([]Line{{Quantity: 1, UnitPrice: d("500")}})
		assertDecimal(t, "25.00", totals.Shipping)
	})

	t.Run("rounding applies to outputs only", func(t *testing.T) {
		// three lines of 33.333 stay unrounded per line: 99.999 -> 100.00,
		// not 3 x 33.33 = 99.99
		totals := Compute([]Line{
			{Quantity: 1, UnitPrice: d("33.333")},
			{Quantity: 1, UnitPrice: d("33.333")},
			{Quantity: 1, UnitPrice: d("33.333")},
		})
		assertDecimal(t, "100.00", totals.Subtotal)
	})

	t.Run("half rounds up", func(t *testing.T) {
		// subtotal 10.30 -> tax 0.824 -> 0.82; 10.45 -> 0.836 -> 0.84;
		// 10.3125 subtotal rounds to 10.31
		totals := Compute([]Line{{Quantity: 1, UnitPrice: d("10.3125")}})
		assertDecimal(t, "10.31", totals.Subtotal)
		// tax = 10.3125 * 0.08 = 0.825 -> 0.83
		assertDecimal(t, "0.83", totals.Tax)
	})

	t.Run("total equals sum of rounded components", func(t *testing.T) {
		lines := []Line{
			{Quantity: 7, UnitPrice: d("13.37")},
			{Quantity: 2, UnitPrice: d("0.99")},
			{Quantity: 1, UnitPrice: d("249.95")},
		}
		totals := Compute(lines)
		want := totals.Subtotal.Add(totals.Tax).Add(totals.Shipping).Round(2)
		assert.True(t, totals.Total.Equal(want), "total %s != %s", totals.Total, want)
	})

	t.Run("empty order", func(t *testing.T) {
		totals := Compute(nil)
		assertDecimal(t, "0.00", totals.Subtotal)
		assertDecimal(t, "25.00", totals.Shipping)
	})
}
