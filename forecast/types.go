/*
Package forecast provides the core ACCU forecasting engine.

PURPOSE:
  This package contains the types and algorithms that turn a project
  configuration into a per-reporting-period issuance forecast: a period
  scheduler, the carbon-stock interpolation model, the stock provider
  contract, and the abatement/issuance calculator.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (tC or tCO2e)
  - ReportingPeriod: One crediting window in the project schedule
  - StockSample: A carbon-stock reading at a period end
  - AbatementRecord: The calculator's per-period output, immutable once emitted

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Immutability: AbatementRecords are never modified after emission
  3. Totality: The stock model never panics over valid calendar dates
  4. Explicitness: Issuance policies are caller-selected, never inferred

USAGE:
  schedule, _ := forecast.GenerateSchedule(scheduleCfg)
  model, _ := forecast.NewStockModel(modelCfg)
  calc := forecast.NewCalculator(calcCfg, forecast.NewModelProvider(model))
  result, err := calc.Run(ctx, schedule)

SEE ALSO:
  - schedule.go: Reporting-period generation
  - model.go: Equation-16 style stock interpolation
  - calculator.go: Abatement and issuance state machine
*/
package forecast

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with a unit (carbon mass for this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitTonnesC    Unit = "tC"    // elemental carbon mass
	UnitTonnesCO2e Unit = "tCO2e" // CO2-equivalent (ACCU basis)
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

// Round returns the amount rounded to the given number of decimal places.
func (a Amount) Round(places int32) Amount {
	return Amount{Value: a.Value.Round(places), Unit: a.Unit}
}

// ClampZero floors the amount at zero.
func (a Amount) ClampZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// co2PerC is the elemental-carbon to CO2-equivalent mass ratio (44/12).
var co2PerC = decimal.NewFromInt(44).Div(decimal.NewFromInt(12))

// cPerCO2 is the inverse ratio (12/44), used when deductions specified in
// CO2e must be applied to a trajectory running in elemental-carbon units.
var cPerCO2 = decimal.NewFromInt(12).Div(decimal.NewFromInt(44))

// ToCO2e converts an elemental-carbon amount to CO2-equivalent.
// CO2e amounts pass through unchanged.
func (a Amount) ToCO2e() Amount {
	if a.Unit == UnitTonnesCO2e {
		return a
	}
	return Amount{Value: a.Value.Mul(co2PerC), Unit: UnitTonnesCO2e}
}

// ToC converts a CO2-equivalent amount to elemental carbon.
// Elemental-carbon amounts pass through unchanged.
func (a Amount) ToC() Amount {
	if a.Unit == UnitTonnesC {
		return a
	}
	return Amount{Value: a.Value.Mul(cPerCO2), Unit: UnitTonnesC}
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// RegistryID identifies a project in the external registry (the "ERF" id
// used as the ledger's logical key).
type RegistryID string

// =============================================================================
// REPORTING PERIOD - One crediting window in the project schedule
// =============================================================================

// ReportingPeriod is a single window over which abatement is measured and
// credited. Periods are ordered by Index (1-based), never overlap, and are
// contiguous under the active boundary convention. The final period of a
// horizon may be shortened; Truncated marks it and Months records the actual
// completed-month length for downstream pro-rating.
type ReportingPeriod struct {
	Index     int
	Start     TimePoint
	End       TimePoint
	Months    int
	Truncated bool
}

func (p ReportingPeriod) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// Contains returns true if t falls within [Start, End].
func (p ReportingPeriod) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// =============================================================================
// STOCK SAMPLE - A stock reading at a period end
// =============================================================================

// StockSample is a carbon-stock reading taken at a period end.
// MonthsElapsed is the completed-month count from the model anchor, already
// capped to the configured ceiling.
type StockSample struct {
	PeriodEnd     TimePoint
	MonthsElapsed int
	Stock         Amount
}

// =============================================================================
// ABATEMENT RECORD - Per-period calculator output
// =============================================================================

// AbatementRecord is the calculator's output for one reporting period.
// It is produced and owned solely by the Calculator for the duration of one
// forecast run and is immutable once emitted.
//
// Stock, DeltaStock and Issued are nil when the period's stock reading was
// unavailable; CumulativeIssued is carried forward unchanged in that case.
type AbatementRecord struct {
	Period           ReportingPeriod
	MonthsElapsed    int
	Stock            *Amount
	DeltaStock       *Amount
	Deduction        Amount
	DiscountFactor   decimal.Decimal
	Issued           *Amount
	CumulativeIssued Amount
}

// HasReading reports whether the period's stock reading was available.
func (r AbatementRecord) HasReading() bool { return r.Stock != nil }
