/*
Package warehouse provides the in-memory inventory ledger and allocation
engine.

PURPOSE:
  This package contains the core types and algorithms for tracking warehouse
  inventory: supply lots received at a unit cost, sales priced against those
  lots using FIFO consumption, and the analytics derived from both.

KEY CONCEPTS IN THIS FILE (types.go):
  - Item: A raw ingested record, fields untyped until validated
  - SupplyLot: A batch of inventory received at a fixed unit cost
  - SaleRecord: A completed sale with its computed cost/profit/margin
  - Issue: A recorded per-item ingest failure
  - BatchResult: The outcome of one batch ingest (two wire shapes)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Immutability: Sales and issues are append-only; lots mutate only
     through allocation
  3. Atomicity: Allocation mutations are computed speculatively and
     committed in one step (see allocator.go)

SEE ALSO:
  - validate.go: Item validation
  - allocator.go: FIFO lot consumption
  - analytics.go: Grouping and top-N reporting
*/
package warehouse

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ITEM - Raw ingest record
// =============================================================================

// Item is a single record as it arrives on the wire.
//
// Fields are deliberately untyped: a malformed value (string quantity,
// numeric sku) must fail that item's validation with a precise message,
// not abort decoding of the whole batch.
type Item struct {
	When  any `json:"when"`
	SKU   any `json:"sku"`
	Qty   any `json:"qty"`
	Price any `json:"price"`
}

// validItem is an Item that passed validation, with parsed fields and a
// freshly assigned id.
type validItem struct {
	ID    string
	SKU   string
	When  string
	At    time.Time // UTC
	Qty   decimal.Decimal
	Price decimal.Decimal
}

// =============================================================================
// SUPPLY LOT - Inventory received at a point in time
// =============================================================================

// SupplyLot is a discrete batch of inventory received at a fixed unit cost.
//
// INVARIANTS:
//   - Qty is never negative and never increases after creation
//   - UnitCost never changes
//   - A lot is removed from the ledger once Qty reaches exactly zero
type SupplyLot struct {
	ID         string
	SKU        string
	When       string    // original wire value, echoed by full-format reads
	ReceivedAt time.Time // UTC
	Qty        decimal.Decimal
	UnitCost   decimal.Decimal
}

// AvailableSupply is the compact read projection of a lot.
type AvailableSupply struct {
	SKU  string
	Qty  decimal.Decimal
	Cost decimal.Decimal
}

// Available returns the compact projection of the lot.
func (l SupplyLot) Available() AvailableSupply {
	return AvailableSupply{SKU: l.SKU, Qty: l.Qty, Cost: l.UnitCost}
}

// =============================================================================
// SALE RECORD - Completed, priced sale
// =============================================================================

// SaleRecord is a sale whose full quantity was satisfied from supply lots.
// Immutable once appended; appended only when allocation succeeds.
type SaleRecord struct {
	ID          string
	SKU         string
	When        string
	SoldAt      time.Time // UTC
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Sum         decimal.Decimal // Qty * UnitPrice
	CostOfGoods decimal.Decimal // sum of consumed-lot costs
	Profit      decimal.Decimal // Sum - CostOfGoods
	Margin      decimal.Decimal // ComputeMargin(Profit, Sum)
}

// SaleGroup is the projection shared by profit grouping and top-N reports.
type SaleGroup struct {
	SKU    string
	Qty    decimal.Decimal
	Sum    decimal.Decimal
	Profit decimal.Decimal
	Margin decimal.Decimal
}

// =============================================================================
// ISSUE - Recorded per-item ingest failure
// =============================================================================

// Issue records one rejected item with its original, possibly-invalid
// input values. Append-only, in processing order.
type Issue struct {
	When    any    `json:"when"`
	SKU     any    `json:"sku"`
	Qty     any    `json:"qty"`
	Price   any    `json:"price"`
	Message string `json:"message"`
}

func newIssue(item Item, err error) Issue {
	return Issue{
		When:    item.When,
		SKU:     item.SKU,
		Qty:     item.Qty,
		Price:   item.Price,
		Message: err.Error(),
	}
}

// =============================================================================
// BATCH RESULT - Outcome of one batch ingest
// =============================================================================

// BatchResult reports one batch ingest. It marshals to exactly one of two
// wire shapes: {success, issues?} when at least one item landed, or
// {errors} when none did.
type BatchResult struct {
	Success int
	Issues  int
	Errors  []string // failure messages in processing order; set only when Success == 0
}

// Failed reports whether the batch produced zero successful items.
func (r BatchResult) Failed() bool { return len(r.Errors) > 0 }

func (r BatchResult) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(struct {
			Errors []string `json:"errors"`
		}{Errors: r.Errors})
	}
	return json.Marshal(struct {
		Success int `json:"success"`
		Issues  int `json:"issues,omitempty"`
	}{Success: r.Success, Issues: r.Issues})
}

// =============================================================================
// SORT KEYS
// =============================================================================

// SortBy selects the field top-N reports rank on.
type SortBy string

const (
	SortByProfit SortBy = "profit"
	SortByMargin SortBy = "margin"
	SortByQty    SortBy = "qty"
	SortBySum    SortBy = "sum"
)

// ParseSortBy converts a wire value into a SortBy key.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case SortByProfit, SortByMargin, SortByQty, SortBySum:
		return SortBy(s), nil
	default:
		return "", ErrInvalidSortKey
	}
}

// =============================================================================
// MARGIN
// =============================================================================

var hundred = decimal.NewFromInt(100)

// ComputeMargin returns profit as a percentage of revenue, rounded to two
// decimal places (half away from zero). A zero-revenue sale has no defined
// margin; it reports zero.
func ComputeMargin(profit, sum decimal.Decimal) decimal.Decimal {
	if sum.IsZero() {
		return decimal.Zero
	}
	return profit.Div(sum).Mul(hundred).Round(2)
}
