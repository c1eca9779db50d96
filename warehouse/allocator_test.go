package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/warehouse-engine/warehouse"
)

// =============================================================================
// PRICING TESTS
// =============================================================================

func TestAllocation_WorkedScenario_SumsProfitsMargins(t *testing.T) {
	// GIVEN: Supplies A(10 @ 100) and B(20 @ 200)
	// WHEN: Selling A(5 @ 150) and B(10 @ 250)
	// THEN: A: sum=750 profit=250 margin=33.33; B: sum=2500 profit=500 margin=20

	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 10, 100),
		item("B", "2021-01-01", 20, 200),
	)
	mustAddSales(t, e,
		item("A", "2021-01-02", 5, 150),
		item("B", "2021-01-02", 10, 250),
	)

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-03")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "A", groups[0].SKU)
	assert.Equal(t, "750", groups[0].Sum.String())
	assert.Equal(t, "250", groups[0].Profit.String())
	assert.Equal(t, "33.33", groups[0].Margin.String())

	assert.Equal(t, "B", groups[1].SKU)
	assert.Equal(t, "2500", groups[1].Sum.String())
	assert.Equal(t, "500", groups[1].Profit.String())
	assert.Equal(t, "20", groups[1].Margin.String())
}

func TestAllocation_SpansLots_AccumulatesCostPerLot(t *testing.T) {
	// GIVEN: Two lots of A at different unit costs (3 @ 10, then 5 @ 20)
	// WHEN: Selling 6 units
	// THEN: Cost = 3*10 + 3*20 = 90; first lot removed, second reduced to 2

	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 3, 10),
		item("A", "2021-01-02", 5, 20),
	)
	mustAddSales(t, e, item("A", "2021-01-03", 6, 50))

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-04")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	// sum = 6*50 = 300, cost = 90, profit = 210, margin = 70
	assert.Equal(t, "300", groups[0].Sum.String())
	assert.Equal(t, "210", groups[0].Profit.String())
	assert.Equal(t, "70", groups[0].Margin.String())

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-04", "A")
	require.NoError(t, err)
	require.Len(t, lots, 1, "depleted lot must be removed")
	assert.Equal(t, "2", lots[0].Qty.String())
	assert.Equal(t, "20", lots[0].UnitCost.String())
}

// =============================================================================
// ATOMICITY TESTS
// =============================================================================

func TestAllocation_InsufficientStock_LeavesLedgerUntouched(t *testing.T) {
	// GIVEN: 3 + 2 units of A across two lots
	// WHEN: Selling 6 units (one more than exists)
	// THEN: No lot is mutated, no sale is recorded

	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 3, 10),
		item("A", "2021-01-02", 2, 20),
	)

	result, err := e.AddSales(context.Background(), []warehouse.Item{
		item("A", "2021-01-03", 6, 50),
	})
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, []string{"A is out of stock"}, result.Errors)

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-04", "A")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, "3", lots[0].Qty.String())
	assert.Equal(t, "2", lots[1].Qty.String())

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-04")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestAllocation_RemovedQuantityEqualsSaleQuantity(t *testing.T) {
	// GIVEN: 10 units of A in one lot
	// WHEN: Selling 4
	// THEN: Exactly 4 units left the ledger

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-01", 10, 100))
	mustAddSales(t, e, item("A", "2021-01-02", 4, 150))

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-04", "A")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "6", lots[0].Qty.String())
}

// =============================================================================
// ELIGIBILITY TESTS
// =============================================================================

func TestAllocation_LotReceivedAfterSale_NotEligible(t *testing.T) {
	// GIVEN: Stock that arrives only after the sale date
	// WHEN: Selling before the stock arrives
	// THEN: Out of stock

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-05", 10, 100))

	result, err := e.AddSales(context.Background(), []warehouse.Item{
		item("A", "2021-01-02", 1, 150),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A is out of stock"}, result.Errors)
}

func TestAllocation_LotReceivedAtSaleInstant_IsEligible(t *testing.T) {
	// GIVEN: A lot received at exactly the sale's timestamp
	// WHEN: Selling at that instant
	// THEN: The lot is consumed (eligibility is inclusive)

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-02T10:00:00", 10, 100))
	mustAddSales(t, e, item("A", "2021-01-02T10:00:00", 1, 150))
}

func TestAllocation_ConsumesInInsertionOrder(t *testing.T) {
	// GIVEN: A newer-dated lot inserted before an older-dated one
	// WHEN: Selling one unit
	// THEN: The first-inserted lot is consumed, not the chronologically older

	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-03", 5, 30), // inserted first, received later
		item("A", "2021-01-01", 5, 10), // inserted second, received earlier
	)
	mustAddSales(t, e, item("A", "2021-01-10", 1, 100))

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-02-01", "A")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, "4", lots[0].Qty.String(), "first-inserted lot consumed")
	assert.Equal(t, "5", lots[1].Qty.String())
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestAllocation_ZeroQuantitySale_ZeroMarginWithoutMutation(t *testing.T) {
	// GIVEN: Stock for A
	// WHEN: Selling zero units
	// THEN: Sale lands with sum 0 and margin 0; stock is untouched

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-01", 10, 100))
	mustAddSales(t, e, item("A", "2021-01-02", 0, 150))

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-03")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Sum.IsZero())
	assert.True(t, groups[0].Margin.IsZero())

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-03", "A")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "10", lots[0].Qty.String())
}

func TestComputeMargin_RoundsHalfAwayFromZero(t *testing.T) {
	m := warehouse.ComputeMargin(dec(1), dec(8)) // 12.5%
	assert.Equal(t, "12.5", m.String())

	m = warehouse.ComputeMargin(dec(10005), dec(100000)) // 10.005 -> 10.01
	assert.Equal(t, "10.01", m.String())

	m = warehouse.ComputeMargin(dec(-10005), dec(100000)) // -10.005 -> -10.01
	assert.Equal(t, "-10.01", m.String())

	assert.True(t, warehouse.ComputeMargin(dec(5), dec(0)).IsZero(), "zero revenue reports zero margin")
}
