/*
ledger.go - The warehouse engine and its storage contract

PURPOSE:
  Engine is the state container holding the three ledgers behind a Store:
  supply lots (mutated only by allocation), sales (append-only), and
  issues (append-only). Batch ingestion processes items independently and
  in input order; a failing item never aborts the rest of its batch.

STORAGE CONTRACT:
  The Store keeps lots in insertion order - the allocator consumes them in
  that order, never re-sorted by receipt time. The only mutating operations
  are AppendLot, AppendIssues, ApplyAllocation (atomic), and Clear.

CONCURRENCY:
  The engine assumes one logical caller executing operations serially.
  Store implementations guard their own data structures, but read-plan-commit
  sequences are not serialized here; the boundary is responsible for that.

SEE ALSO:
  - allocator.go: FIFO consumption behind AddSales
  - analytics.go: Read operations
  - store/memory.go: Default in-memory Store
  - store/sqlite: SQLite-backed Store for the server binary
*/
package warehouse

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// STORE - Ledger persistence contract
// =============================================================================

// LotUpdate is a pending quantity reduction for a single lot.
type LotUpdate struct {
	ID  string
	Qty decimal.Decimal
}

// Store holds the three ledgers.
//
// Lots are kept and returned in insertion order. Sales and issues are
// append-only. ApplyAllocation is the only operation that mutates lots.
type Store interface {
	// AppendLot adds a new supply lot at the end of the ledger.
	AppendLot(ctx context.Context, lot SupplyLot) error

	// Lots returns all supply lots in insertion order.
	Lots(ctx context.Context) ([]SupplyLot, error)

	// Sales returns all sale records in insertion order.
	Sales(ctx context.Context) ([]SaleRecord, error)

	// AppendIssues adds issues in processing order.
	AppendIssues(ctx context.Context, issues []Issue) error

	// Issues returns the whole issue log in insertion order.
	Issues(ctx context.Context) ([]Issue, error)

	// ApplyAllocation commits one sale atomically: reduced lot quantities,
	// depleted lot removals, and the sale append all land or none do.
	ApplyAllocation(ctx context.Context, sale SaleRecord, updates []LotUpdate, removals []string) error

	// Clear empties all three ledgers and returns sales + lots removed
	// (issues are wiped but not counted).
	Clear(ctx context.Context) (int, error)
}

// =============================================================================
// ENGINE - State container over a Store
// =============================================================================

// Engine exposes the ledger operations consumed by the transport boundary.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// New creates an engine over the given store. A nil logger disables logging.
func New(store Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// =============================================================================
// BATCH INGESTION
// =============================================================================

// AddSupplies validates and appends supply lots. Failures are recorded as
// issues; ErrEmptyBatch is returned for zero input items.
func (e *Engine) AddSupplies(ctx context.Context, items []Item) (BatchResult, error) {
	return e.ingest(ctx, items, e.addSupply)
}

// AddSales validates, allocates, and appends sales. Failures are recorded
// as issues; ErrEmptyBatch is returned for zero input items.
func (e *Engine) AddSales(ctx context.Context, items []Item) (BatchResult, error) {
	return e.ingest(ctx, items, e.addSale)
}

func (e *Engine) ingest(ctx context.Context, items []Item, add func(context.Context, Item) error) (BatchResult, error) {
	if len(items) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}

	var result BatchResult
	var issues []Issue
	for _, item := range items {
		if err := add(ctx, item); err != nil {
			if !IsItemError(err) {
				return BatchResult{}, err
			}
			e.logger.Warn("item rejected",
				zap.Any("sku", item.SKU),
				zap.String("reason", err.Error()))
			issues = append(issues, newIssue(item, err))
			result.Issues++
			continue
		}
		result.Success++
	}

	// Issues land in the log in processing order, after the loop.
	if err := e.store.AppendIssues(ctx, issues); err != nil {
		return BatchResult{}, err
	}

	if result.Success == 0 {
		e.logger.Warn("no items were added", zap.Int("items", len(items)))
		errs := make([]string, len(issues))
		for i, issue := range issues {
			errs[i] = issue.Message
		}
		return BatchResult{Errors: errs}, nil
	}
	return result, nil
}

// addSupply validates the item and appends a new lot. No allocation logic.
func (e *Engine) addSupply(ctx context.Context, item Item) error {
	v, err := validateItem(item)
	if err != nil {
		return err
	}
	return e.store.AppendLot(ctx, SupplyLot{
		ID:         v.ID,
		SKU:        v.SKU,
		When:       v.When,
		ReceivedAt: v.At,
		Qty:        v.Qty,
		UnitCost:   v.Price,
	})
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear empties all three ledgers atomically and reports the number of
// sales plus remaining lots removed. Issues are not counted.
func (e *Engine) Clear(ctx context.Context) (int, error) {
	return e.store.Clear(ctx)
}
