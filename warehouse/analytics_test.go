package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/warehouse-engine/warehouse"
)

// =============================================================================
// PROFIT GROUPING TESTS
// =============================================================================

func TestProfit_GroupsBySKUInFirstSeenOrder(t *testing.T) {
	// GIVEN: Interleaved sales of A and B
	// WHEN: Asking for profit by sku
	// THEN: One group per sku, ordered by first appearance, totals accumulated

	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 100, 10),
		item("B", "2021-01-01", 100, 10),
	)
	mustAddSales(t, e,
		item("A", "2021-01-02", 2, 20),
		item("B", "2021-01-02", 3, 20),
		item("A", "2021-01-03", 4, 20),
	)

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-04")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// A: qty 6, sum 120, cost 60, profit 60, margin 50
	assert.Equal(t, "A", groups[0].SKU)
	assert.Equal(t, "6", groups[0].Qty.String())
	assert.Equal(t, "120", groups[0].Sum.String())
	assert.Equal(t, "60", groups[0].Profit.String())
	assert.Equal(t, "50", groups[0].Margin.String())

	// B: qty 3, sum 60, cost 30, profit 30, margin 50
	assert.Equal(t, "B", groups[1].SKU)
	assert.Equal(t, "3", groups[1].Qty.String())
}

func TestProfit_MarginRecomputedOverGroupTotals(t *testing.T) {
	// GIVEN: Two sales of the same sku at different margins
	// WHEN: Grouping
	// THEN: The group margin reflects accumulated profit/sum, not either sale's

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-01", 100, 10))
	mustAddSales(t, e,
		item("A", "2021-01-02", 1, 20), // profit 10, margin 50
		item("A", "2021-01-03", 1, 40), // profit 30, margin 75
	)

	groups, err := e.Profit(context.Background(), "2021-01-01", "2021-01-04")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	// sum 60, profit 40 -> 66.67
	assert.Equal(t, "66.67", groups[0].Margin.String())
}

func TestProfit_RangeIsHalfOpen(t *testing.T) {
	// GIVEN: Sales on Jan 2 and Jan 4
	// WHEN: Querying [Jan 2, Jan 4)
	// THEN: Only the Jan 2 sale is included; the upper bound is exclusive

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-01", 100, 10))
	mustAddSales(t, e,
		item("A", "2021-01-02", 1, 20),
		item("A", "2021-01-04", 1, 20),
	)

	groups, err := e.Profit(context.Background(), "2021-01-02", "2021-01-04")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "1", groups[0].Qty.String())
}

func TestProfit_InvalidRange_Fails(t *testing.T) {
	e := newEngine()

	_, err := e.Profit(context.Background(), "not-a-date", "2021-01-04")
	assert.ErrorIs(t, err, warehouse.ErrInvalidDateRange)

	_, err = e.Profit(context.Background(), "2021-01-04", "")
	assert.ErrorIs(t, err, warehouse.ErrInvalidDateRange)

	// End before start is a malformed interval, not a parse failure.
	_, err = e.Profit(context.Background(), "2021-01-04", "2021-01-01")
	assert.ErrorIs(t, err, warehouse.ErrInvalidDateRange)
}

// =============================================================================
// TOP SALES TESTS
// =============================================================================

func topFixture(t *testing.T) *warehouse.Engine {
	t.Helper()
	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 100, 10),
		item("B", "2021-01-01", 100, 5),
		item("C", "2021-01-01", 100, 1),
	)
	mustAddSales(t, e,
		item("A", "2021-01-02", 2, 20),  // profit 20, sum 40,  margin 50
		item("B", "2021-01-02", 10, 10), // profit 50, sum 100, margin 50
		item("C", "2021-01-02", 1, 2),   // profit 1,  sum 2,   margin 50
	)
	return e
}

func TestTopSales_ByProfit_DescendingAndTruncated(t *testing.T) {
	e := topFixture(t)

	top, err := e.TopSales(context.Background(), "2021-01-01", "2021-01-03", 2, warehouse.SortByProfit)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].SKU)
	assert.Equal(t, "A", top[1].SKU)
}

func TestTopSales_BySum_IndividualRecordsNotGroups(t *testing.T) {
	e := topFixture(t)
	mustAddSales(t, e, item("A", "2021-01-02", 1, 20)) // second A record

	top, err := e.TopSales(context.Background(), "2021-01-01", "2021-01-03", 10, warehouse.SortBySum)
	require.NoError(t, err)
	require.Len(t, top, 4, "records are not grouped by sku")
	assert.Equal(t, "B", top[0].SKU)
	assert.Equal(t, "100", top[0].Sum.String())
}

func TestTopSales_TiesKeepLedgerOrder(t *testing.T) {
	// GIVEN: Three sales with identical margins
	// WHEN: Ranking by margin
	// THEN: Relative ledger order is preserved (stable sort)

	e := topFixture(t)
	top, err := e.TopSales(context.Background(), "2021-01-01", "2021-01-03", 10, warehouse.SortByMargin)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "A", top[0].SKU)
	assert.Equal(t, "B", top[1].SKU)
	assert.Equal(t, "C", top[2].SKU)
}

func TestTopSales_InvalidArguments(t *testing.T) {
	e := topFixture(t)

	_, err := e.TopSales(context.Background(), "2021-01-01", "2021-01-03", 0, warehouse.SortByProfit)
	assert.ErrorIs(t, err, warehouse.ErrInvalidLimit)

	_, err = e.TopSales(context.Background(), "2021-01-01", "2021-01-03", 5, warehouse.SortBy("price"))
	assert.ErrorIs(t, err, warehouse.ErrInvalidSortKey)
}

func TestParseSortBy(t *testing.T) {
	for _, valid := range []string{"profit", "margin", "qty", "sum"} {
		by, err := warehouse.ParseSortBy(valid)
		require.NoError(t, err)
		assert.Equal(t, warehouse.SortBy(valid), by)
	}
	_, err := warehouse.ParseSortBy("cost")
	assert.ErrorIs(t, err, warehouse.ErrInvalidSortKey)
}

// =============================================================================
// AVAILABLE SUPPLIES TESTS
// =============================================================================

func TestAvailableSupplies_FiltersBySKUAndRange(t *testing.T) {
	e := newEngine()
	mustAddSupplies(t, e,
		item("A", "2021-01-01", 10, 100),
		item("B", "2021-01-02", 20, 200),
		item("A", "2021-01-05", 5, 110),
	)

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-03", "A")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, "A", lots[0].SKU)
	assert.Equal(t, "10", lots[0].Qty.String())

	av := lots[0].Available()
	assert.Equal(t, "100", av.Cost.String())
}

func TestAvailableSupplies_ToBeforeAnyLot_Empty(t *testing.T) {
	// GIVEN: Lots received from Jan 5 onward
	// WHEN: Querying with an upper bound before any receipt
	// THEN: Empty result, no error

	e := newEngine()
	mustAddSupplies(t, e, item("A", "2021-01-05", 10, 100))

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-02", "")
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestAvailableSupplies_DefaultFromIsEpochFloor(t *testing.T) {
	e := newEngine()
	mustAddSupplies(t, e, item("A", "1999-06-01", 10, 100))

	lots, err := e.AvailableSupplies(context.Background(), "", "2021-01-01", "")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}

// =============================================================================
// ISSUE QUERY TESTS
// =============================================================================

func TestIssues_BoundedQuery_FiltersByTimestamp(t *testing.T) {
	// GIVEN: Issues recorded for items dated Jan 1 and Jan 10
	// WHEN: Querying [Jan 1, Jan 5)
	// THEN: Only the Jan 1 issue matches; the unparsable one never does

	e := newEngine()
	e.AddSales(context.Background(), []warehouse.Item{
		item("X", "2021-01-01", 1, 10),               // out of stock
		item("Y", "2021-01-10", 1, 10),               // out of stock
		{When: "garbage", SKU: "Z", Qty: 1.0, Price: 10.0}, // Date is required
	})

	all, err := e.Issues(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3, "unfiltered query returns the whole log")

	bounded, err := e.Issues(context.Background(), "2021-01-01", "2021-01-05")
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, "X", bounded[0].SKU)
}

func TestIssues_InvalidBounds_Fail(t *testing.T) {
	e := newEngine()
	_, err := e.Issues(context.Background(), "nope", "2021-01-05")
	assert.ErrorIs(t, err, warehouse.ErrInvalidDateRange)
}
