package inventory

import "context"

// LedgerStore persists the ledger table.
//
// INVARIANTS:
//   - Save is atomic: the persisted ledger is either the previous content
//     or the full new content, never a partial write.
//   - Implementations serialize the load-mutate-save cycle themselves
//     (single-writer discipline); callers do not need extra locking for a
//     sequential pipeline.
type LedgerStore interface {
	// Load reads the full ledger table.
	Load(ctx context.Context) (*Table, error)

	// Save persists the full ledger table atomically.
	Save(ctx context.Context, table *Table) error
}
