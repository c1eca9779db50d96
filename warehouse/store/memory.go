// Package store provides the in-memory Store implementation - the default
// backing for the warehouse engine and the fixture used across tests.
package store

import (
	"context"
	"sync"

	"github.com/warp/warehouse-engine/warehouse"
)

// =============================================================================
// MEMORY STORE - Default in-memory implementation
// =============================================================================

// Memory keeps the three ledgers as slices in insertion order. The mutex
// guards data-structure integrity when the HTTP boundary serves requests
// concurrently; the engine itself assumes one logical writer.
type Memory struct {
	mu     sync.RWMutex
	lots   []warehouse.SupplyLot
	sales  []warehouse.SaleRecord
	issues []warehouse.Issue
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) AppendLot(_ context.Context, lot warehouse.SupplyLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lots = append(m.lots, lot)
	return nil
}

func (m *Memory) Lots(_ context.Context) ([]warehouse.SupplyLot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]warehouse.SupplyLot, len(m.lots))
	copy(result, m.lots)
	return result, nil
}

func (m *Memory) Sales(_ context.Context) ([]warehouse.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]warehouse.SaleRecord, len(m.sales))
	copy(result, m.sales)
	return result, nil
}

func (m *Memory) AppendIssues(_ context.Context, issues []warehouse.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues = append(m.issues, issues...)
	return nil
}

func (m *Memory) Issues(_ context.Context) ([]warehouse.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]warehouse.Issue, len(m.issues))
	copy(result, m.issues)
	return result, nil
}

// ApplyAllocation commits one sale in a single step: quantity reductions,
// depleted-lot removals, and the sale append.
func (m *Memory) ApplyAllocation(_ context.Context, sale warehouse.SaleRecord, updates []warehouse.LotUpdate, removals []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reduced := make(map[string]warehouse.LotUpdate, len(updates))
	for _, u := range updates {
		reduced[u.ID] = u
	}
	removed := make(map[string]bool, len(removals))
	for _, id := range removals {
		removed[id] = true
	}

	kept := m.lots[:0]
	for _, lot := range m.lots {
		if removed[lot.ID] {
			continue
		}
		if u, ok := reduced[lot.ID]; ok {
			lot.Qty = u.Qty
		}
		kept = append(kept, lot)
	}
	m.lots = kept
	m.sales = append(m.sales, sale)
	return nil
}

// Clear empties all three ledgers, returning sales + lots removed.
func (m *Memory) Clear(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := len(m.sales) + len(m.lots)
	m.lots = nil
	m.sales = nil
	m.issues = nil
	return removed, nil
}
