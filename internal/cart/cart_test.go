package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCart_AddItem(t *testing.T) {
	t.Parallel()

	t.Run("new line", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 2)

		assert.Len(t, c.Items, 1)
		assert.Equal(t, 2, c.Items[0].Quantity)
	})

	t.Run("merges by summing quantities", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 2)
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 3)

		assert.Len(t, c.Items, 1)
		assert.Equal(t, 5, c.Items[0].Quantity)
	})

	t.Run("clamps to max quantity", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10"), MaxQuantity: 4}, 3)
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10"), MaxQuantity: 4}, 3)

		assert.Equal(t, 4, c.Items[0].Quantity)
	})

	t.Run("ignores non-positive quantity", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1"}, 0)
		assert.Empty(t, c.Items)
	})
}

func TestCart_UpdateQuantity(t *testing.T) {
	t.Parallel()

	t.Run("sets quantity", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 2)
		c.UpdateQuantity("p1", 7)

		assert.Equal(t, 7, c.Items[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 2)
		c.UpdateQuantity("p1", 0)

		assert.Empty(t, c.Items)
	})

	t.Run("clamps to max", func(t *testing.T) {
		var c Cart
		c.AddItem(Item{ProductID: "p1", MaxQuantity: 5}, 1)
		c.UpdateQuantity("p1", 99)

		assert.Equal(t, 5, c.Items[0].Quantity)
	})

	t.Run("unknown product is a no-op", func(t *testing.T) {
		var c Cart
		c.UpdateQuantity("missing", 3)
		assert.Empty(t, c.Items)
	})
}

func TestCart_RemoveAndClear(t *testing.T) {
	t.Parallel()

	var c Cart
	c.AddItem(Item{ProductID: "p1", UnitPrice: d("10")}, 1)
	c.AddItem(Item{ProductID: "p2", UnitPrice: d("20")}, 1)

	c.RemoveItem("p1")
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)

	c.Clear()
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.ItemCount())
}

func TestCart_Totals(t *testing.T) {
	t.Parallel()

	var c Cart
	c.AddItem(Item{ProductID: "p1", UnitPrice: d("100")}, 2)
	c.AddItem(Item{ProductID: "p2", UnitPrice: d("50")}, 3)

	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, c.Subtotal().Equal(d("350")), "subtotal %s", c.Subtotal())
}

func TestMerge(t *testing.T) {
	t.Parallel()

	local := Cart{OwnerID: "dealer-1", Items: []Item{
		{ProductID: "p1", Quantity: 5, UnitPrice: d("10")},
		{ProductID: "p2", Quantity: 1, UnitPrice: d("20")},
	}}
	remote := Cart{OwnerID: "dealer-1", Items: []Item{
		{ProductID: "p1", Quantity: 3, UnitPrice: d("10")},
		{ProductID: "p3", Quantity: 2, UnitPrice: d("30")},
	}}

	t.Run("larger wins is not additive", func(t *testing.T) {
		out := Merge(local, remote, LargerWins)

		byID := map[string]int{}
		for _, it := range out.Items {
			byID[it.ProductID] = it.Quantity
		}
		assert.Equal(t, map[string]int{"p1": 5, "p2": 1, "p3": 2}, byID)
	})

	t.Run("sum", func(t *testing.T) {
		out := Merge(local, remote, Sum)
		assert.Equal(t, 8, out.Items[0].Quantity)
	})

	t.Run("theirs wins", func(t *testing.T) {
		out := Merge(local, remote, TheirsWins)
		assert.Equal(t, 3, out.Items[0].Quantity)
	})

	t.Run("merged quantity respects cap", func(t *testing.T) {
		capped := Cart{Items: []Item{{ProductID: "p1", Quantity: 4, MaxQuantity: 6}}}
		other := Cart{Items: []Item{{ProductID: "p1", Quantity: 5}}}
		out := Merge(capped, other, Sum)

		assert.Equal(t, 6, out.Items[0].Quantity)
	})
}
