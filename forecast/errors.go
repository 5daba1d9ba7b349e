/*
errors.go - Centralized error taxonomy for the forecast engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Downstream packages (inventory, store, api) wrap these with context.

ERROR CATEGORIES:
  1. Configuration errors - invalid schedule/model/policy input, fatal
  2. Missing-data errors  - a period's stock reading is unavailable,
     recoverable: the period is emitted with a null issuance marker
  3. Schema errors        - a ledger or forecast table is missing
     mandatory columns, fatal before any ledger mutation
  4. Reconciliation ambiguity - an empty forecast set has no computable
     cutoff, fatal

PROPAGATION:
  Forecast-stage configuration errors abort the entire run so no
  partially-computed, unit-inconsistent output is produced. Missing-data
  errors never abort a run. Reconciliation errors leave the ledger
  byte-for-byte untouched.

USAGE:
  if errors.Is(err, forecast.ErrConfiguration) { ... }

  var missing *forecast.MissingDataError
  if errors.As(err, &missing) {
      log.Printf("no reading for period ending %s", missing.PeriodEnd)
  }
*/
package forecast

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is the class of fatal pre-computation errors:
	// invalid dates, non-positive cadence, horizon before anchor,
	// missing required labels or columns.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrMissingData is the class of recoverable per-period errors:
	// a stock reading unavailable after bounded retries.
	ErrMissingData = errors.New("stock reading unavailable")

	// ErrSchema is the class of fatal table-shape errors: a ledger or
	// forecast table missing mandatory columns.
	ErrSchema = errors.New("table schema invalid")

	// ErrReconciliationAmbiguity is returned when a forecast set is empty
	// and no cutoff date can be computed.
	ErrReconciliationAmbiguity = errors.New("empty forecast set: no computable cutoff")
)

// =============================================================================
// STRUCTURED ERRORS - Carry the failing stage and offending input
// =============================================================================

// ConfigurationError reports an invalid input detected before any
// computation. Field names the offending parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// MissingDataError reports a period whose stock reading could not be
// obtained after bounded retries. The period is identified by its end
// date: the provider contract knows nothing about schedule indexes.
type MissingDataError struct {
	PeriodEnd TimePoint
	Attempts  int
	Last      error
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no stock reading for period ending %s after %d attempts",
		e.PeriodEnd, e.Attempts)
}

func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// SchemaError reports a missing mandatory column or label.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: table %q missing mandatory column %q", e.Table, e.Column)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsFatal returns true if the error must abort the run before (further)
// computation or ledger mutation.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrReconciliationAmbiguity)
}

// IsRecoverable returns true if the run may continue past the error with a
// null issuance marker for the affected period.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMissingData)
}
