/*
model.go - Carbon-stock interpolation model

PURPOSE:
  Computes the projected carbon stock (CP) at a date by linear
  interpolation between a baseline and a long-term target, scaled by the
  permanence discount:

    CP(t) = CBASE + (clamp(n, 0, cap) / cap) * (CLT - CBASE) * DPP

  where n is the count of whole completed calendar months from the model
  anchor to t. The formula is a given; it is not re-derived here.

UNITS:
  Baseline and target may be supplied in elemental-carbon mass (tC) or in
  CO2-equivalent (tCO2e). With ConvertToCO2e set, outputs are converted
  with the 44/12 mass ratio. An optional per-hectare area multiplier
  scales per-ha figures to project totals. Both scalings are linear, so
  they are applied to the inputs once at construction.

PERMANENCE:
  DPP equals the configured discount (0.75 by default) when the project's
  permanence term equals the threshold (25 years by default), else 1.0.

TOTALITY:
  StockAt never panics over any pair of valid calendar dates and any
  non-negative cap. A zero cap degenerates to the baseline.

SEE ALSO:
  - provider.go: ModelProvider adapts this model to the StockProvider contract
*/
package forecast

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MODEL CONFIG
// =============================================================================

const (
	// DefaultCapMonths is the interpolation ceiling: the stock trajectory
	// flattens once this many months have elapsed since the anchor.
	DefaultCapMonths = 180

	// DefaultPermanenceThresholdYears is the permanence term at which the
	// permanence discount applies.
	DefaultPermanenceThresholdYears = 25
)

// DefaultPermanenceDiscount is the DPP applied at the threshold term.
var DefaultPermanenceDiscount = decimal.NewFromFloat(0.75)

// ModelConfig parametrizes the stock interpolation model for one project.
type ModelConfig struct {
	Anchor   TimePoint       // CEA / project start date the month count runs from
	Baseline decimal.Decimal // CBASE
	Target   decimal.Decimal // CLT

	// CapMonths is the interpolation ceiling; 0 means DefaultCapMonths.
	CapMonths int

	// PermanenceYears is the project's permanence term.
	PermanenceYears int

	// PermanenceThresholdYears and PermanenceDiscount configure when and by
	// how much the trajectory is discounted; zero values take the defaults.
	PermanenceThresholdYears int
	PermanenceDiscount       decimal.Decimal

	// InputUnit is the unit Baseline and Target are expressed in.
	InputUnit Unit

	// ConvertToCO2e converts outputs from elemental carbon to CO2e (44/12).
	ConvertToCO2e bool

	// AreaHectares scales per-hectare inputs to project totals; zero means
	// the inputs are already totals.
	AreaHectares decimal.Decimal
}

// =============================================================================
// STOCK MODEL
// =============================================================================

// StockModel is the pure interpolation function bound to one project's
// parameters. Construct with NewStockModel.
type StockModel struct {
	anchor    TimePoint
	base      decimal.Decimal
	target    decimal.Decimal
	capMonths int
	dpp       decimal.Decimal
	unit      Unit
}

// NewStockModel validates the configuration and binds the model parameters.
func NewStockModel(cfg ModelConfig) (*StockModel, error) {
	if cfg.Anchor.IsZero() {
		return nil, &ConfigurationError{Field: "model.anchor", Reason: "anchor date is required"}
	}
	if cfg.CapMonths < 0 {
		return nil, &ConfigurationError{Field: "model.cap_months", Reason: "cap cannot be negative"}
	}

	capMonths := cfg.CapMonths
	if capMonths == 0 {
		capMonths = DefaultCapMonths
	}

	threshold := cfg.PermanenceThresholdYears
	if threshold == 0 {
		threshold = DefaultPermanenceThresholdYears
	}
	discount := cfg.PermanenceDiscount
	if discount.IsZero() {
		discount = DefaultPermanenceDiscount
	}
	dpp := decimal.NewFromInt(1)
	if cfg.PermanenceYears == threshold {
		dpp = discount
	}

	base, target := cfg.Baseline, cfg.Target
	if !cfg.AreaHectares.IsZero() {
		base = base.Mul(cfg.AreaHectares)
		target = target.Mul(cfg.AreaHectares)
	}

	unit := cfg.InputUnit
	if unit == "" {
		unit = UnitTonnesCO2e
	}
	if cfg.ConvertToCO2e && unit == UnitTonnesC {
		base = base.Mul(co2PerC)
		target = target.Mul(co2PerC)
		unit = UnitTonnesCO2e
	}

	return &StockModel{
		anchor:    cfg.Anchor,
		base:      base,
		target:    target,
		capMonths: capMonths,
		dpp:       dpp,
		unit:      unit,
	}, nil
}

// Anchor returns the date the month count runs from.
func (m *StockModel) Anchor() TimePoint { return m.anchor }

// CapMonths returns the interpolation ceiling.
func (m *StockModel) CapMonths() int { return m.capMonths }

// Unit returns the unit of the model's outputs.
func (m *StockModel) Unit() Unit { return m.unit }

// PermanenceFactor returns the DPP the trajectory is scaled by.
func (m *StockModel) PermanenceFactor() decimal.Decimal { return m.dpp }

// StockAt returns the projected stock at t. Total: it never panics for any
// valid calendar date.
func (m *StockModel) StockAt(t TimePoint) Amount {
	return m.StockAtMonths(MonthsCompleted(m.anchor, t))
}

// StockAtMonths returns the projected stock after n completed months.
func (m *StockModel) StockAtMonths(n int) Amount {
	if m.capMonths <= 0 {
		return Amount{Value: m.base, Unit: m.unit}
	}
	clamped := ClampMonths(n, m.capMonths)
	ratio := decimal.NewFromInt(int64(clamped)).Div(decimal.NewFromInt(int64(m.capMonths)))
	value := m.base.Add(ratio.Mul(m.target.Sub(m.base)).Mul(m.dpp))
	return Amount{Value: value, Unit: m.unit}
}

// Sample returns the stock reading for a period end together with the
// capped completed-month count.
func (m *StockModel) Sample(periodEnd TimePoint) StockSample {
	n := ClampMonths(MonthsCompleted(m.anchor, periodEnd), m.capMonths)
	return StockSample{
		PeriodEnd:     periodEnd,
		MonthsElapsed: n,
		Stock:         m.StockAtMonths(n),
	}
}
