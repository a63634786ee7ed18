package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	t.Parallel()

	t.Run("spreads across locations, most available first", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 5, Reserved: 0},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 10, Reserved: 0},
		}

		splits, backordered, err := Plan("p1", rows, 12, PolicyReject)
		require.NoError(t, err)
		assert.Zero(t, backordered)
		assert.Equal(t, []Split{
			{LocationID: "loc-b", Units: 10},
			{LocationID: "loc-a", Units: 2},
		}, splits)
	})

	t.Run("ties break by location id for determinism", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-z", Quantity: 4, Reserved: 0},
			{ProductID: "p1", LocationID: "loc-a", Quantity: 4, Reserved: 0},
		}

		splits, _, err := Plan("p1", rows, 6, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, []Split{
			{LocationID: "loc-a", Units: 4},
			{LocationID: "loc-z", Units: 2},
		}, splits)
	})

	t.Run("reserved counts against availability", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 10, Reserved: 7},
		}

		splits, _, err := Plan("p1", rows, 3, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, []Split{{LocationID: "loc-a", Units: 3}}, splits)
	})

	t.Run("single location covers the whole request", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 3, Reserved: 0},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 20, Reserved: 0},
		}

		splits, _, err := Plan("p1", rows, 5, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, []Split{{LocationID: "loc-b", Units: 5}}, splits)
	})

	t.Run("fully reserved locations are skipped", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 5, Reserved: 5},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 5, Reserved: 0},
		}

		splits, _, err := Plan("p1", rows, 5, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, []Split{{LocationID: "loc-b", Units: 5}}, splits)
	})

	t.Run("shortfall fails atomically under reject policy", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 5, Reserved: 2},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 4, Reserved: 0},
		}

		splits, _, err := Plan("p1", rows, 10, PolicyReject)
		assert.Nil(t, splits)

		var ise *InsufficientStockError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, "p1", ise.ProductID)
		assert.Equal(t, 10, ise.Requested)
		assert.Equal(t, 7, ise.Available)
	})

	t.Run("no rows at all", func(t *testing.T) {
		_, _, err := Plan("p1", nil, 1, PolicyReject)

		var ise *InsufficientStockError
		require.ErrorAs(t, err, &ise)
		assert.Equal(t, 0, ise.Available)
	})

	t.Run("backorder policy takes what exists", func(t *testing.T) {
		rows := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 5, Reserved: 2},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 4, Reserved: 0},
		}

		splits, backordered, err := Plan("p1", rows, 10, PolicyBackorder)
		require.NoError(t, err)
		assert.Equal(t, 3, backordered)
		assert.Equal(t, []Split{
			{LocationID: "loc-b", Units: 4},
			{LocationID: "loc-a", Units: 3},
		}, splits)
	})

	t.Run("backorder with no stock reserves nothing", func(t *testing.T) {
		splits, backordered, err := Plan("p1", nil, 4, PolicyBackorder)
		require.NoError(t, err)
		assert.Nil(t, splits)
		assert.Equal(t, 4, backordered)
	})

	t.Run("input order does not matter", func(t *testing.T) {
		a := []Row{
			{ProductID: "p1", LocationID: "loc-a", Quantity: 2},
			{ProductID: "p1", LocationID: "loc-b", Quantity: 9},
			{ProductID: "p1", LocationID: "loc-c", Quantity: 6},
		}
		b := []Row{a[2], a[0], a[1]}

		sa, _, err := Plan("p1", a, 12, PolicyReject)
		require.NoError(t, err)
		sb, _, err := Plan("p1", b, 12, PolicyReject)
		require.NoError(t, err)
		assert.Equal(t, sa, sb)
	})
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PolicyReject, ParsePolicy("reject"))
	assert.Equal(t, PolicyReject, ParsePolicy(""))
	assert.Equal(t, PolicyBackorder, ParsePolicy("backorder"))
	assert.Equal(t, PolicyBackorder, ParsePolicy(string(PolicyBackorder)))
}
