/*
allocator.go - FIFO cost-of-goods allocation

PURPOSE:
  Satisfies a sale's quantity by consuming supply lots in ledger insertion
  order, accumulating the cost of the consumed quantities. The walk is
  speculative: mutations are buffered as pending updates/removals and
  committed in one step only when the full quantity is covered. An
  insufficient ledger leaves every lot exactly as it was.

ELIGIBILITY:
  A lot is eligible when it carries the sale's SKU and was received at or
  before the sale's timestamp.

SEE ALSO:
  - ledger.go: Store.ApplyAllocation, the atomic commit
*/
package warehouse

import (
	"context"

	"github.com/shopspring/decimal"
)

// addSale validates the item, plans the allocation, and commits it together
// with the priced sale record.
func (e *Engine) addSale(ctx context.Context, item Item) error {
	v, err := validateItem(item)
	if err != nil {
		return err
	}
	sale, updates, removals, err := e.planAllocation(ctx, v)
	if err != nil {
		return err
	}
	return e.store.ApplyAllocation(ctx, sale, updates, removals)
}

// planAllocation walks eligible lots in insertion order and computes the
// mutations the sale would cause, without touching the ledger.
func (e *Engine) planAllocation(ctx context.Context, sale validItem) (SaleRecord, []LotUpdate, []string, error) {
	lots, err := e.store.Lots(ctx)
	if err != nil {
		return SaleRecord{}, nil, nil, err
	}

	need := sale.Qty
	cost := decimal.Zero
	eligible := false
	var updates []LotUpdate
	var removals []string

	for _, lot := range lots {
		if lot.SKU != sale.SKU || lot.ReceivedAt.After(sale.At) {
			continue
		}
		eligible = true
		if !need.IsPositive() {
			break
		}

		consumed := decimal.Min(need, lot.Qty)
		cost = cost.Add(consumed.Mul(lot.UnitCost))
		need = need.Sub(consumed)

		if remaining := lot.Qty.Sub(consumed); remaining.IsZero() {
			removals = append(removals, lot.ID)
		} else {
			updates = append(updates, LotUpdate{ID: lot.ID, Qty: remaining})
		}
	}

	if !eligible || need.IsPositive() {
		return SaleRecord{}, nil, nil, &OutOfStockError{SKU: sale.SKU}
	}

	sum := sale.Qty.Mul(sale.Price)
	profit := sum.Sub(cost)
	return SaleRecord{
		ID:          sale.ID,
		SKU:         sale.SKU,
		When:        sale.When,
		SoldAt:      sale.At,
		Qty:         sale.Qty,
		UnitPrice:   sale.Price,
		Sum:         sum,
		CostOfGoods: cost,
		Profit:      profit,
		Margin:      ComputeMargin(profit, sum),
	}, updates, removals, nil
}
