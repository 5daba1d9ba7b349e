/*
Package inventory provides the project ledger and its reconciliation engine.

PURPOSE:
  The ledger is a flat table of forecast/realised credit rows across
  projects, keyed logically by (Registry ID, Reporting Period - End). This
  package models that table in memory, copies project metadata onto new
  rows, and reconciles a fresh forecast into the table by replacing stale
  forecast rows from a cutoff date forward.

KEY CONCEPTS IN THIS FILE (table.go):
  - Table: header row + cell rows, order-preserving
  - Header matching is normalized (trimmed, lowercased) but the original
    header text is preserved verbatim
  - Unknown columns already present are never reordered or dropped
  - Missing required columns are appended to the end of the header on
    first use, never inserted mid-table

SEE ALSO:
  - reconcile.go: The cutoff/replace algorithm over this table
  - metadata.go: Project metadata lookup for new rows
  - store/csvfile, store/sqlite: Persistence with atomic writes
*/
package inventory

import (
	"strings"
)

// =============================================================================
// CANONICAL COLUMNS
// =============================================================================

// Mandatory ledger columns. The reconciliation engine refuses to run
// against a table that cannot carry these.
const (
	ColRegistryID  = "Registry ID"
	ColPeriodStart = "Reporting Period - Start"
	ColPeriodEnd   = "Reporting Period - End"
	ColAmount      = "Total Amount (ACCUs)"
	ColStatus      = "Status"
)

// Derived and administrative columns stamped on appended rows.
const (
	ColRP             = "RP"
	ColSubmissionDate = "Forecasted Submission Date"
	ColAmountDueDate  = "Date - Total Amount"
	ColDataUpdateDate = "Data Update Date"
)

// StatusForecasted marks rows produced by a forecast run, as opposed to
// realised issuances.
const StatusForecasted = "Forecasted"

// RequiredHeaders is the full master-inventory column set. Columns missing
// from a loaded ledger are appended (at the end) on first use.
var RequiredHeaders = []string{
	"Name", "Subitems", "Registry ID", "Inventory ID", "Status", "Issuance Status",
	"Days Since (Status)", "Date - Total Amount", "Total Amount (ACCUs)",
	"Realised Amount (ACCUs to CCG)", "Date - Realised Amount", "Forecasted Submission Date",
	"Unit Type", "Application ID", "Reporting Period - Start", "Reporting Period - End",
	"RP", "Delay Flag", "Data Source", "Data Update Date", "Declared Projects Portfolio",
	"Project Number", "Entity", "Proponents", "Methodology", "Business Unit", "Project Stage",
	"Operational Model", "Fee Model", "Number", "Unit", "Item ID", "Key",
}

// normalize collapses a header or cell for matching: trimmed, lowercased.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// =============================================================================
// TABLE - Flat, order-preserving ledger table
// =============================================================================

// Table is an in-memory ledger table: an ordered header row plus cell rows.
// Cell values are strings; amount and date columns are parsed on demand.
type Table struct {
	headers []string
	index   map[string]int // normalized header -> column position
	rows    [][]string
}

// NewTable creates a table with the given header row. Duplicate headers
// keep their first occurrence in the index, matching external exports.
func NewTable(headers []string) *Table {
	t := &Table{
		headers: append([]string(nil), headers...),
		index:   make(map[string]int, len(headers)),
	}
	for i, h := range t.headers {
		key := normalize(h)
		if key == "" {
			continue
		}
		if _, ok := t.index[key]; !ok {
			t.index[key] = i
		}
	}
	return t
}

// Headers returns a copy of the header row in its original order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[normalize(name)]
	return ok
}

// EnsureColumns appends any missing columns to the end of the header row,
// never mid-table, and pads existing rows with empty cells.
func (t *Table) EnsureColumns(names ...string) {
	for _, name := range names {
		key := normalize(name)
		if key == "" {
			continue
		}
		if _, ok := t.index[key]; ok {
			continue
		}
		t.index[key] = len(t.headers)
		t.headers = append(t.headers, name)
	}
	for i := range t.rows {
		for len(t.rows[i]) < len(t.headers) {
			t.rows[i] = append(t.rows[i], "")
		}
	}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Get returns the trimmed cell value at the given row and column, or ""
// when the column does not exist.
func (t *Table) Get(row int, column string) string {
	col, ok := t.index[normalize(column)]
	if !ok || row < 0 || row >= len(t.rows) || col >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][col])
}

// AppendRow adds a row from a column-name-to-value map. Values for unknown
// columns are dropped; missing columns are left empty.
func (t *Table) AppendRow(values map[string]string) {
	row := make([]string, len(t.headers))
	for name, v := range values {
		if col, ok := t.index[normalize(name)]; ok {
			row[col] = v
		}
	}
	t.rows = append(t.rows, row)
}

// AppendCells adds a row positionally, padded or truncated to the header
// width. Stores loading persisted rows must use this rather than AppendRow:
// a table with duplicate headers keeps every cell in its own column only
// when rows are rebuilt by position.
func (t *Table) AppendCells(cells []string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// RowMap returns a snapshot of a row keyed by original header names.
func (t *Table) RowMap(row int) map[string]string {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	m := make(map[string]string, len(t.headers))
	for i, h := range t.headers {
		if i < len(t.rows[row]) {
			m[h] = t.rows[row][i]
		} else {
			m[h] = ""
		}
	}
	return m
}

// CellRows returns the raw cell rows, each padded to the header width.
// Intended for stores serializing the table.
func (t *Table) CellRows() [][]string {
	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		row := make([]string, len(t.headers))
		copy(row, r)
		out[i] = row
	}
	return out
}
