/*
analytics.go - Read operations over the three ledgers

PURPOSE:
  Interval-bounded reads and the derived analytics: profit grouped by SKU,
  top-N sales ranked on a chosen field, available supply lots, and the
  issue log. All range filtering follows the [from, to) contract in
  interval.go.

SEE ALSO:
  - interval.go: Range parsing and containment
  - types.go: SaleGroup, AvailableSupply projections
*/
package warehouse

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROFIT BY SKU
// =============================================================================

// Profit groups sales sold in [from, to) by SKU, preserving first-seen
// order, accumulating qty/sum/profit and recomputing margin after each
// accumulation.
func (e *Engine) Profit(ctx context.Context, from, to string) ([]SaleGroup, error) {
	sales, err := e.salesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]SaleGroup, 0, len(sales))
	for _, sale := range sales {
		i, ok := index[sale.SKU]
		if !ok {
			index[sale.SKU] = len(groups)
			groups = append(groups, SaleGroup{
				SKU:    sale.SKU,
				Qty:    sale.Qty,
				Sum:    sale.Sum,
				Profit: sale.Profit,
				Margin: sale.Margin,
			})
			continue
		}
		g := &groups[i]
		g.Qty = g.Qty.Add(sale.Qty)
		g.Sum = g.Sum.Add(sale.Sum)
		g.Profit = g.Profit.Add(sale.Profit)
		g.Margin = ComputeMargin(g.Profit, g.Sum)
	}
	return groups, nil
}

// =============================================================================
// TOP SALES
// =============================================================================

// TopSales returns up to limit individual sales sold in [from, to), ranked
// descending on the chosen field. The sort is stable: equal keys keep
// their ledger order.
func (e *Engine) TopSales(ctx context.Context, from, to string, limit int, by SortBy) ([]SaleGroup, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	key, err := sortKey(by)
	if err != nil {
		return nil, err
	}
	sales, err := e.salesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return key(sales[i]).GreaterThan(key(sales[j]))
	})
	if len(sales) > limit {
		sales = sales[:limit]
	}

	top := make([]SaleGroup, len(sales))
	for i, sale := range sales {
		top[i] = SaleGroup{
			SKU:    sale.SKU,
			Qty:    sale.Qty,
			Sum:    sale.Sum,
			Profit: sale.Profit,
			Margin: sale.Margin,
		}
	}
	return top, nil
}

func sortKey(by SortBy) (func(SaleRecord) decimal.Decimal, error) {
	switch by {
	case SortByProfit:
		return func(s SaleRecord) decimal.Decimal { return s.Profit }, nil
	case SortByMargin:
		return func(s SaleRecord) decimal.Decimal { return s.Margin }, nil
	case SortByQty:
		return func(s SaleRecord) decimal.Decimal { return s.Qty }, nil
	case SortBySum:
		return func(s SaleRecord) decimal.Decimal { return s.Sum }, nil
	default:
		return nil, ErrInvalidSortKey
	}
}

// =============================================================================
// AVAILABLE SUPPLIES
// =============================================================================

// AvailableSupplies returns lots received in [from, to), optionally
// restricted to one SKU, in ledger order. An empty from defaults to the
// epoch floor. Callers pick the full record or the compact
// SupplyLot.Available() projection.
func (e *Engine) AvailableSupplies(ctx context.Context, from, to, sku string) ([]SupplyLot, error) {
	iv, err := parseInterval(from, to)
	if err != nil {
		return nil, err
	}
	lots, err := e.store.Lots(ctx)
	if err != nil {
		return nil, err
	}

	var selected []SupplyLot
	for _, lot := range lots {
		if sku != "" && lot.SKU != sku {
			continue
		}
		if iv.contains(lot.ReceivedAt) {
			selected = append(selected, lot)
		}
	}
	return selected, nil
}

// =============================================================================
// ISSUES
// =============================================================================

// Issues returns recorded ingest failures. With both bounds absent the
// whole log is returned unfiltered; otherwise entries are kept iff their
// original timestamp parses and falls in [from, to).
func (e *Engine) Issues(ctx context.Context, from, to string) ([]Issue, error) {
	all, err := e.store.Issues(ctx)
	if err != nil {
		return nil, err
	}
	if from == "" && to == "" {
		return all, nil
	}
	iv, err := parseInterval(from, to)
	if err != nil {
		return nil, err
	}

	var selected []Issue
	for _, issue := range all {
		when, ok := issue.When.(string)
		if !ok {
			continue
		}
		at, err := parseTime(when)
		if err != nil {
			// An unparsable timestamp is often why the item failed;
			// such issues never match a bounded query.
			continue
		}
		if iv.contains(at) {
			selected = append(selected, issue)
		}
	}
	return selected, nil
}

func (e *Engine) salesInRange(ctx context.Context, from, to string) ([]SaleRecord, error) {
	iv, err := parseInterval(from, to)
	if err != nil {
		return nil, err
	}
	sales, err := e.store.Sales(ctx)
	if err != nil {
		return nil, err
	}

	var selected []SaleRecord
	for _, sale := range sales {
		if iv.contains(sale.SoldAt) {
			selected = append(selected, sale)
		}
	}
	return selected, nil
}
