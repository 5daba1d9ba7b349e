/*
reconcile.go - Ledger reconciliation engine

PURPOSE:
  Replaces previously-forecast ledger rows with a freshly computed
  forecast from a cutoff date forward, preserving historical rows, and
  reports the net change.

ALGORITHM:
  1. cutoff = min(period start) across the new forecast rows. An empty
     forecast set has no computable cutoff and fails.
  2. Partition the project's rows by value: kept (period end <= cutoff, or
     unparseable date - conservative retention) vs removed (> cutoff).
  3. Rebuild the table as (all rows minus removed) + newly built rows.
     Rows are never deleted while iterating by position; identity of
     untouched rows is preserved.
  4. New rows copy descriptive portfolio metadata by registry id, carry
     the period bounds and issued amount, derive the administrative dates
     (submission deadline, amount due date) from the period end, and are
     marked "Forecasted".

ALL-OR-NOTHING:
  Every fatal check (empty forecast, mixed registry ids, metadata lookup)
  runs before the table is touched, and new rows are fully built before
  the rebuild. A failing reconciliation leaves the table unchanged; the
  surrounding store then leaves the ledger file byte-for-byte untouched.

IDEMPOTENCY:
  Re-running with an unchanged forecast and cutoff removes exactly the
  rows it re-adds, so the final table content is unchanged and the second
  run's net amount delta is zero.

SEE ALSO:
  - table.go: The table this mutates
  - metadata.go: The portfolio lookup
*/
package inventory

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/accu-engine/forecast"
)

// =============================================================================
// FORECAST ROWS - Reconciliation input
// =============================================================================

// ForecastRow is one per-period row of a new forecast, the reconciliation
// engine's input.
type ForecastRow struct {
	RegistryID  forecast.RegistryID
	RPNumber    int
	PeriodStart forecast.TimePoint
	PeriodEnd   forecast.TimePoint
	Issued      forecast.Amount
}

// ForecastRows converts a calculator run into reconciliation input.
// Periods with no stock reading carry no amount and are skipped.
func ForecastRows(registryID forecast.RegistryID, result *forecast.RunResult) []ForecastRow {
	rows := make([]ForecastRow, 0, len(result.Records))
	for _, r := range result.Records {
		if r.Issued == nil {
			continue
		}
		rows = append(rows, ForecastRow{
			RegistryID:  registryID,
			RPNumber:    r.Period.Index,
			PeriodStart: r.Period.Start,
			PeriodEnd:   r.Period.End,
			Issued:      *r.Issued,
		})
	}
	return rows
}

// =============================================================================
// RECONCILER
// =============================================================================

const (
	// DefaultSubmissionOffsetDays is added to a period end to derive the
	// forecasted submission date.
	DefaultSubmissionOffsetDays = 2

	// DefaultAmountDueOffsetDays is added to a period end to derive the
	// expected amount-due date.
	DefaultAmountDueOffsetDays = 92
)

// ReconcilerConfig carries the administrative-date offsets and the run
// date stamped on appended rows. Nil offsets and a zero run date take the
// defaults; an explicit zero-day offset is honored.
type ReconcilerConfig struct {
	SubmissionOffsetDays *int
	AmountDueOffsetDays  *int
	RunDate              forecast.TimePoint
}

// Reconciler merges forecast rows into a ledger table.
type Reconciler struct {
	meta             MetadataProvider
	submissionOffset int
	amountDueOffset  int
	runDate          forecast.TimePoint
}

func NewReconciler(meta MetadataProvider, cfg ReconcilerConfig) *Reconciler {
	r := &Reconciler{
		meta:             meta,
		submissionOffset: DefaultSubmissionOffsetDays,
		amountDueOffset:  DefaultAmountDueOffsetDays,
		runDate:          cfg.RunDate,
	}
	if cfg.SubmissionOffsetDays != nil {
		r.submissionOffset = *cfg.SubmissionOffsetDays
	}
	if cfg.AmountDueOffsetDays != nil {
		r.amountDueOffset = *cfg.AmountDueOffsetDays
	}
	if r.runDate.IsZero() {
		r.runDate = forecast.Today()
	}
	return r
}

// Result is the transient delta report of one reconciliation run.
// It is not persisted state.
type Result struct {
	RunID      string
	RegistryID forecast.RegistryID
	CutoffDate forecast.TimePoint

	// MatchedRows snapshots every row of the target project before any
	// deletion, keyed by header name.
	MatchedRows []map[string]string

	// RemovedRows snapshots the rows replaced by this run.
	RemovedRows []map[string]string

	RemovedCount int
	KeptCount    int
	AddedCount   int

	// NetAmountDelta is sum(added issued) - sum(removed issued): the
	// lifetime issuance change introduced by the re-forecast.
	NetAmountDelta decimal.Decimal
}

// Reconcile merges the forecast rows into the table in place and returns
// the delta report. On error the table is left unchanged.
func (r *Reconciler) Reconcile(table *Table, rows []ForecastRow) (*Result, error) {
	if len(rows) == 0 {
		return nil, forecast.ErrReconciliationAmbiguity
	}

	registryID := rows[0].RegistryID
	cutoff := rows[0].PeriodStart
	for _, row := range rows {
		if row.RegistryID != registryID {
			return nil, &forecast.ConfigurationError{
				Field:  "forecast_rows",
				Reason: fmt.Sprintf("mixed registry ids %q and %q in one reconciliation", registryID, row.RegistryID),
			}
		}
		if row.PeriodStart.Before(cutoff) {
			cutoff = row.PeriodStart
		}
	}

	meta, err := r.meta.Lookup(registryID)
	if err != nil {
		return nil, err
	}

	// Build the new rows completely before mutating anything.
	added := make([]map[string]string, 0, len(rows))
	addedTotal := decimal.Zero
	for _, row := range rows {
		issued := row.Issued.Round(2)
		addedTotal = addedTotal.Add(issued.Value)

		cells := make(map[string]string, len(meta)+8)
		for col, v := range meta {
			cells[col] = v
		}
		cells[ColRegistryID] = string(registryID)
		cells[ColRP] = strconv.Itoa(row.RPNumber)
		cells[ColPeriodStart] = row.PeriodStart.String()
		cells[ColPeriodEnd] = row.PeriodEnd.String()
		cells[ColAmount] = issued.Value.StringFixed(2)
		cells[ColStatus] = StatusForecasted
		cells[ColSubmissionDate] = row.PeriodEnd.AddDays(r.submissionOffset).String()
		cells[ColAmountDueDate] = row.PeriodEnd.AddDays(r.amountDueOffset).String()
		cells[ColDataUpdateDate] = r.runDate.String()
		added = append(added, cells)
	}

	table.EnsureColumns(RequiredHeaders...)

	result := &Result{
		RunID:      uuid.NewString(),
		RegistryID: registryID,
		CutoffDate: cutoff,
	}

	// Partition by value first: decide kept vs removed for every matched
	// row, then rebuild. No positional deletion while iterating.
	target := normalize(string(registryID))
	removed := make(map[int]bool)
	removedTotal := decimal.Zero
	for i := 0; i < table.NumRows(); i++ {
		if normalize(table.Get(i, ColRegistryID)) != target {
			continue
		}
		result.MatchedRows = append(result.MatchedRows, table.RowMap(i))

		end, perr := forecast.ParseTimePoint(table.Get(i, ColPeriodEnd))
		if perr != nil {
			// Conservative retention: rows with an unparseable period end
			// are never deleted.
			result.KeptCount++
			continue
		}
		if end.After(cutoff) {
			removed[i] = true
			result.RemovedRows = append(result.RemovedRows, table.RowMap(i))
			if amt, aerr := decimal.NewFromString(table.Get(i, ColAmount)); aerr == nil {
				removedTotal = removedTotal.Add(amt)
			}
			continue
		}
		result.KeptCount++
	}

	rebuilt := make([][]string, 0, len(table.rows)-len(removed)+len(added))
	for i, row := range table.rows {
		if !removed[i] {
			rebuilt = append(rebuilt, row)
		}
	}
	table.rows = rebuilt

	for _, cells := range added {
		table.AppendRow(cells)
	}

	result.RemovedCount = len(removed)
	result.AddedCount = len(added)
	result.NetAmountDelta = addedTotal.Sub(removedTotal).Round(2)
	return result, nil
}
