/*
Package sqlite provides a SQLite-backed implementation of the warehouse
Store.

PURPOSE:
  Backs the server binary when a database path is given (-db flag). The
  engine's contract is identical to the in-memory store: lots in insertion
  order, append-only sales and issues, atomic allocation commits. Use
  ":memory:" for a process-lifetime database.

KEY TABLES:
  supply_lots: Current inventory lots; seq preserves insertion order
  sales:       Append-only record of completed, priced sales
  issues:      Append-only log of rejected items (JSON payloads, since
               rejected values keep their original wire types)

ATOMICITY:
  ApplyAllocation runs quantity updates, depleted-lot deletes, and the
  sale insert inside one SQL transaction.

WAL MODE:
  Opened with WAL so readers don't block the single writer.

USAGE:
  st, err := sqlite.New("./data/warehouse.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
  engine := warehouse.New(st, logger)

SEE ALSO:
  - warehouse/ledger.go: Store interface definition
  - warehouse/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/warehouse-engine/warehouse"
)

// Store implements warehouse.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers, matching the engine's single-writer assumption.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Current inventory lots; seq preserves ledger insertion order
	CREATE TABLE IF NOT EXISTS supply_lots (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		sku         TEXT NOT NULL,
		received_at TEXT NOT NULL,
		when_raw    TEXT NOT NULL,
		qty         TEXT NOT NULL,
		unit_cost   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_supply_lots_sku ON supply_lots(sku, received_at);

	-- Completed sales (append-only)
	CREATE TABLE IF NOT EXISTS sales (
		seq           INTEGER PRIMARY KEY AUTOINCREMENT,
		id            TEXT NOT NULL UNIQUE,
		sku           TEXT NOT NULL,
		sold_at       TEXT NOT NULL,
		when_raw      TEXT NOT NULL,
		qty           TEXT NOT NULL,
		unit_price    TEXT NOT NULL,
		total         TEXT NOT NULL,
		cost_of_goods TEXT NOT NULL,
		profit        TEXT NOT NULL,
		margin        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sales_sold_at ON sales(sold_at);

	-- Rejected items (append-only); original wire values kept as JSON
	CREATE TABLE IF NOT EXISTS issues (
		seq     INTEGER PRIMARY KEY AUTOINCREMENT,
		payload TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOTS
// =============================================================================

func (s *Store) AppendLot(ctx context.Context, lot warehouse.SupplyLot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO supply_lots (id, sku, received_at, when_raw, qty, unit_cost)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lot.ID, lot.SKU, lot.ReceivedAt.UTC().Format(time.RFC3339Nano),
		lot.When, lot.Qty.String(), lot.UnitCost.String())
	return err
}

func (s *Store) Lots(ctx context.Context) ([]warehouse.SupplyLot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, received_at, when_raw, qty, unit_cost
		FROM supply_lots ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []warehouse.SupplyLot
	for rows.Next() {
		var lot warehouse.SupplyLot
		var receivedAt, qty, unitCost string
		if err := rows.Scan(&lot.ID, &lot.SKU, &receivedAt, &lot.When, &qty, &unitCost); err != nil {
			return nil, err
		}
		if lot.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt); err != nil {
			return nil, fmt.Errorf("corrupt received_at for lot %s: %w", lot.ID, err)
		}
		if lot.Qty, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("corrupt qty for lot %s: %w", lot.ID, err)
		}
		if lot.UnitCost, err = decimal.NewFromString(unitCost); err != nil {
			return nil, fmt.Errorf("corrupt unit_cost for lot %s: %w", lot.ID, err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

// =============================================================================
// SALES
// =============================================================================

func (s *Store) Sales(ctx context.Context) ([]warehouse.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, sold_at, when_raw, qty, unit_price, total, cost_of_goods, profit, margin
		FROM sales ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []warehouse.SaleRecord
	for rows.Next() {
		var rec warehouse.SaleRecord
		var soldAt string
		cols := [6]string{}
		if err := rows.Scan(&rec.ID, &rec.SKU, &soldAt, &rec.When,
			&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return nil, err
		}
		if rec.SoldAt, err = time.Parse(time.RFC3339Nano, soldAt); err != nil {
			return nil, fmt.Errorf("corrupt sold_at for sale %s: %w", rec.ID, err)
		}
		for i, dst := range []*decimal.Decimal{
			&rec.Qty, &rec.UnitPrice, &rec.Sum, &rec.CostOfGoods, &rec.Profit, &rec.Margin,
		} {
			if *dst, err = decimal.NewFromString(cols[i]); err != nil {
				return nil, fmt.Errorf("corrupt decimal for sale %s: %w", rec.ID, err)
			}
		}
		sales = append(sales, rec)
	}
	return sales, rows.Err()
}

// =============================================================================
// ISSUES
// =============================================================================

func (s *Store) AppendIssues(ctx context.Context, issues []warehouse.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, issue := range issues {
		payload, err := json.Marshal(issue)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO issues (payload) VALUES (?)`, string(payload)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Issues(ctx context.Context) ([]warehouse.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM issues ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []warehouse.Issue
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var issue warehouse.Issue
		if err := json.Unmarshal([]byte(payload), &issue); err != nil {
			return nil, fmt.Errorf("corrupt issue payload: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// =============================================================================
// ALLOCATION COMMIT
// =============================================================================

// ApplyAllocation commits one sale atomically inside a SQL transaction.
func (s *Store) ApplyAllocation(ctx context.Context, sale warehouse.SaleRecord, updates []warehouse.LotUpdate, removals []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE supply_lots SET qty = ? WHERE id = ?`, u.Qty.String(), u.ID); err != nil {
			return err
		}
	}
	for _, id := range removals {
		if _, err := tx.ExecContext(ctx, `DELETE FROM supply_lots WHERE id = ?`, id); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, sku, sold_at, when_raw, qty, unit_price, total, cost_of_goods, profit, margin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.SKU, sale.SoldAt.UTC().Format(time.RFC3339Nano), sale.When,
		sale.Qty.String(), sale.UnitPrice.String(), sale.Sum.String(),
		sale.CostOfGoods.String(), sale.Profit.String(), sale.Margin.String()); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear empties all three tables in one transaction, returning the number
// of sales plus lots removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var sales, lots int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&sales); err != nil {
		return 0, err
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM supply_lots`).Scan(&lots); err != nil {
		return 0, err
	}
	for _, table := range []string{"sales", "supply_lots", "issues"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return sales + lots, nil
}
