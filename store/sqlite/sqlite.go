/*
Package sqlite provides a SQLite-backed implementation of the ledger store.

PURPOSE:
  Persists the inventory ledger table in SQLite instead of a flat CSV
  file. The table keeps its spreadsheet shape (ordered columns, ordered
  rows, unknown columns preserved) so a ledger can round-trip between the
  CSV and database stores without loss.

ATOMICITY:
  Save replaces the full ledger inside one database transaction: either
  the transaction commits and the new content is visible, or it rolls
  back and the previous content is untouched. This matches the
  reconciliation engine's all-or-nothing contract.

SCHEMA:
  ledger_columns: ordered header names
  ledger_rows:    ordered rows; registry_id and period_end are lifted out
                  of the cell JSON for indexed queries

CONCURRENCY:
  Uses sync.Mutex for in-process single-writer discipline, plus WAL mode
  for crash recovery. Cross-process coordination is the database's job.

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - inventory/store.go: The LedgerStore contract
  - store/csvfile: Flat-file alternative
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/accu-engine/inventory"
)

// Store implements inventory.LedgerStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a SQLite ledger store at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_columns (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger_rows (
		position INTEGER PRIMARY KEY,
		registry_id TEXT,
		period_end TEXT,
		cells_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_rows_registry
		ON ledger_rows(registry_id);
	CREATE INDEX IF NOT EXISTS idx_ledger_rows_period_end
		ON ledger_rows(period_end);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the full ledger table. A fresh database yields an empty
// table carrying the required header set.
func (s *Store) Load(ctx context.Context) (*inventory.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	headers, err := s.loadHeaders(ctx)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		t := inventory.NewTable(nil)
		t.EnsureColumns(inventory.RequiredHeaders...)
		return t, nil
	}

	table := inventory.NewTable(headers)

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells_json FROM ledger_rows ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load ledger rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, err
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("decode ledger row: %w", err)
		}
		// Positional rebuild keeps duplicate-header columns intact.
		table.AppendCells(cells)
	}
	return table, rows.Err()
}

// Save replaces the full ledger content in one transaction.
func (s *Store) Save(ctx context.Context, table *inventory.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_columns`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows`); err != nil {
		return err
	}

	headers := table.Headers()
	for i, name := range headers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_columns (position, name) VALUES (?, ?)`, i, name); err != nil {
			return err
		}
	}

	registryCol := columnPosition(headers, inventory.ColRegistryID)
	periodEndCol := columnPosition(headers, inventory.ColPeriodEnd)

	for i, cells := range table.CellRows() {
		cellsJSON, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ledger_rows (position, registry_id, period_end, cells_json)
			 VALUES (?, ?, ?, ?)`,
			i, cellAt(cells, registryCol), cellAt(cells, periodEndCol), string(cellsJSON))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) loadHeaders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM ledger_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load ledger columns: %w", err)
	}
	defer rows.Close()

	var headers []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		headers = append(headers, name)
	}
	return headers, rows.Err()
}

func columnPosition(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, pos int) string {
	if pos < 0 || pos >= len(cells) {
		return ""
	}
	return cells[pos]
}
