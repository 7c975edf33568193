package inventory_test

import (
	"testing"

	"github.com/dukapilot/biashara360/internal/apperr"
	"github.com/dukapilot/biashara360/internal/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSnapshots(t *testing.T) {
	p := inventory.Product{ID: "p1", BusinessID: "b1", QuantityBought: 4, QuantitySold: 1, QuantityRemaining: 3}

	m, err := inventory.Purchase(&p, 5, "restock")
	require.NoError(t, err)

	assert.Equal(t, 9, p.QuantityBought)
	assert.Equal(t, 8, p.QuantityRemaining)
	assert.Equal(t, inventory.MovementPurchase, m.Type)
	assert.Equal(t, 5, m.Quantity)
	assert.Equal(t, 3, m.PreviousStock)
	assert.Equal(t, 8, m.NewStock)
	assert.Equal(t, "restock", m.Notes)
	assert.Equal(t, "b1", m.BusinessID)
	assert.NotEmpty(t, m.ID)
}

func TestPurchaseRejectsNonPositive(t *testing.T) {
	p := inventory.Product{ID: "p1"}
	_, err := inventory.Purchase(&p, 0, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Zero(t, p.QuantityBought)
}

func TestSaleUsesLockedSnapshot(t *testing.T) {
	p := inventory.Product{ID: "p1", QuantityBought: 5, QuantityRemaining: 5}

	m, err := inventory.Sale(&p, 3, "")
	require.NoError(t, err)

	assert.Equal(t, 3, p.QuantitySold)
	assert.Equal(t, 2, p.QuantityRemaining)
	assert.Equal(t, inventory.MovementSale, m.Type)
	assert.Equal(t, 5, m.PreviousStock)
	assert.Equal(t, 2, m.NewStock)
	assert.Equal(t, "Manual sale", m.Notes)
}

func TestSaleValidation(t *testing.T) {
	p := inventory.Product{ID: "p1", QuantityBought: 2, QuantityRemaining: 2}

	_, err := inventory.Sale(&p, -1, "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = inventory.Sale(&p, 3, "")
	require.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.StockShortage{ProductID: "p1", Required: 3, Available: 2}, e.Details)
	assert.Equal(t, 2, p.QuantityRemaining, "failed sale must not mutate")
}

func TestSaleTwiceOnlyFirstSucceeds(t *testing.T) {
	p := inventory.Product{ID: "p1", QuantityBought: 4, QuantityRemaining: 4}

	_, err := inventory.Sale(&p, 4, "")
	require.NoError(t, err)
	_, err = inventory.Sale(&p, 4, "")
	assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Equal(t, 0, p.QuantityRemaining)
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name      string
		newBought int
		wantOK    bool
		wantRem   int
		wantQty   int
		wantNote  string
	}{
		{name: "increase", newBought: 15, wantOK: true, wantRem: 12, wantQty: 5, wantNote: "Stock adjustment: added 5 units"},
		{name: "decrease", newBought: 8, wantOK: true, wantRem: 5, wantQty: 2, wantNote: "Stock adjustment: removed 2 units"},
		{name: "unchanged", newBought: 10, wantOK: false, wantRem: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := inventory.Product{ID: "p1", QuantityBought: 10, QuantitySold: 3, QuantityRemaining: 7}
			m, ok, err := inventory.Adjust(&p, tt.newBought)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantRem, p.QuantityRemaining)
			assert.Equal(t, p.QuantityBought-p.QuantitySold, p.QuantityRemaining)
			if ok {
				assert.Equal(t, inventory.MovementAdjustment, m.Type)
				assert.Equal(t, tt.wantQty, m.Quantity)
				assert.Equal(t, 7, m.PreviousStock)
				assert.Equal(t, tt.wantNote, m.Notes)
			}
		})
	}
}

func TestAdjustBelowSold(t *testing.T) {
	p := inventory.Product{ID: "p1", QuantityBought: 10, QuantitySold: 8, QuantityRemaining: 2}
	_, _, err := inventory.Adjust(&p, 5)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, _, err = inventory.Adjust(&p, -1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 10, p.QuantityBought)
}

// Any sequence of ledger operations keeps remaining = bought - sold, and
// each movement's signed delta equals the change in remaining.
func TestLedgerInvariantOverSequence(t *testing.T) {
	p := inventory.Product{ID: "p1"}
	ops := []func() (inventory.Movement, bool, error){
		func() (inventory.Movement, bool, error) { m, err := inventory.Purchase(&p, 10, ""); return m, err == nil, err },
		func() (inventory.Movement, bool, error) { m, err := inventory.Sale(&p, 4, ""); return m, err == nil, err },
		func() (inventory.Movement, bool, error) { return inventory.Adjust(&p, 7) },
		func() (inventory.Movement, bool, error) { m, err := inventory.Sale(&p, 3, ""); return m, err == nil, err },
		func() (inventory.Movement, bool, error) { m, err := inventory.Purchase(&p, 2, ""); return m, err == nil, err },
		func() (inventory.Movement, bool, error) { return inventory.Adjust(&p, 20) },
	}
	for i, op := range ops {
		before := p.QuantityRemaining
		m, ok, err := op()
		require.NoError(t, err, "op %d", i)
		require.True(t, ok, "op %d", i)
		assert.Equal(t, p.QuantityBought-p.QuantitySold, p.QuantityRemaining, "op %d", i)
		assert.Equal(t, p.QuantityRemaining-before, m.Delta(), "op %d", i)
		assert.Positive(t, m.Quantity, "op %d", i)
	}
	assert.Equal(t, 13, p.QuantityRemaining)
}
