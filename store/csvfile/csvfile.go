/*
Package csvfile provides a CSV-file-backed implementation of the ledger store.

PURPOSE:
  The master inventory commonly lives as a flat CSV export from the
  tracking tool. This store loads it into an inventory.Table and persists
  it back with an atomic write-then-rename, so a crashed save never leaves
  a partially written ledger behind.

EXPORT CLEANUP:
  Tracking-tool exports sometimes carry blank banner rows above the real
  header. Load skips to the first row whose first cell is "Name" and
  treats that as the header row; if no such row exists the first record is
  the header. A file with no records at all is a SchemaError.

SINGLE-WRITER DISCIPLINE:
  A process-level mutex serializes the load-mutate-save cycle. Cross-
  process writers still need an external advisory lock; this store only
  guarantees in-process serialization and atomic replacement.

SEE ALSO:
  - inventory/store.go: The LedgerStore contract
  - store/sqlite: Database-backed alternative
*/
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/warp/accu-engine/forecast"
	"github.com/warp/accu-engine/inventory"
)

// Store is a CSV-file-backed ledger store.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store over the given CSV file path. The file does not
// need to exist yet; Load of a missing file returns an empty table with
// the required header set.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the ledger table from the CSV file.
func (s *Store) Load(ctx context.Context) (*inventory.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		t := inventory.NewTable(nil)
		t.EnsureColumns(inventory.RequiredHeaders...)
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if len(records) == 0 {
		return nil, &forecast.SchemaError{Table: filepath.Base(s.path), Column: "header row"}
	}

	// Skip banner rows above the real header.
	headerIdx := 0
	for i, rec := range records {
		if len(rec) > 0 && strings.TrimSpace(rec[0]) == "Name" {
			headerIdx = i
			break
		}
	}

	table := inventory.NewTable(records[headerIdx])
	for _, rec := range records[headerIdx+1:] {
		if isBlank(rec) {
			continue
		}
		// Positional: exports may carry duplicate headers, and every cell
		// must stay in its own column.
		table.AppendCells(rec)
	}
	return table, nil
}

// Save persists the table with a write-then-rename, so the file on disk is
// always either the previous or the full new content.
func (s *Store) Save(ctx context.Context, table *inventory.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Headers()); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range table.CellRows() {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
