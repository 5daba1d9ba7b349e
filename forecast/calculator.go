/*
calculator.go - Abatement and issuance state machine

PURPOSE:
  Walks the ordered period schedule, obtains a stock reading per period
  end, and turns incremental abatement into discounted issuance with a
  running cumulative total.

STATE MACHINE:
  state = {previousStock, cumulativeIssued}
  For each period, in order:
    1. Obtain stock for the period end from the StockProvider. A missing
       reading is a valid outcome: the record is emitted with a null
       issuance and the run continues unchanged.
    2. delta = stock (first reading) or stock - previousStock.
    3. Subtract the period's one-off deduction, if configured.
    4. Apply the selected issuance policy.
    5. cumulativeIssued += issued (never decreases).
    6. Emit the record; previousStock = stock.

ISSUANCE POLICIES (caller-selected, never inferred):
  Flat discount:
    issued = max(0, delta * discount)
  Ratcheted cap:
    issued = max(0, round2(delta * discount) - cumulativeIssued)
    Prevents cumulative issuance from exceeding the discounted cumulative
    stock trajectory even if an earlier period over-projected.

ROUNDING:
  Stock and delta values are rounded to 6 decimal places on the emitted
  record; issuance amounts to 2.

CHECKPOINTING:
  A hard failure on one period does not corrupt previously accumulated
  state: Run returns the records computed so far alongside the error, so
  the caller holds a valid resumable checkpoint.

SEE ALSO:
  - schedule.go: The period sequence this walks
  - provider.go: The stock source contract
  - export.go: CSV export of the emitted records
*/
package forecast

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ISSUANCE POLICY
// =============================================================================

type IssuancePolicy string

const (
	// PolicyFlatDiscount issues delta * discount, floored at zero.
	PolicyFlatDiscount IssuancePolicy = "flat_discount"

	// PolicyRatchetedCap issues up to the discounted cumulative trajectory,
	// net of everything already issued.
	PolicyRatchetedCap IssuancePolicy = "ratcheted_cap"
)

// =============================================================================
// CALCULATOR CONFIG
// =============================================================================

// CalculatorConfig parametrizes one forecast run.
type CalculatorConfig struct {
	// Policy selects the issuance policy. Required; never inferred.
	Policy IssuancePolicy

	// DiscountFactor is the issuance discount applied to incremental
	// abatement (risk/buffer pools). Required, positive.
	DiscountFactor decimal.Decimal

	// Deductions maps a period index (1-based) to a fixed one-off deduction
	// subtracted from that period's delta before discounting. Commonly
	// {1: firstYearDeduction}. Deductions in a different unit than the run
	// are converted with the 44/12 mass ratio.
	Deductions map[int]Amount

	// Anchor is the origin of the months-elapsed count on emitted records.
	Anchor TimePoint

	// CapMonths caps months-elapsed before use; 0 means DefaultCapMonths.
	CapMonths int

	// Unit is the unit issuance amounts are emitted in.
	Unit Unit
}

// Validate checks the configuration and returns a ConfigurationError on the
// first invalid field.
func (cc CalculatorConfig) Validate() error {
	switch cc.Policy {
	case PolicyFlatDiscount, PolicyRatchetedCap:
	case "":
		return &ConfigurationError{Field: "policy", Reason: "issuance policy must be selected explicitly"}
	default:
		return &ConfigurationError{Field: "policy", Reason: "unknown issuance policy"}
	}
	if !cc.DiscountFactor.IsPositive() {
		return &ConfigurationError{Field: "discount_factor", Reason: "discount factor must be positive"}
	}
	if cc.Anchor.IsZero() {
		return &ConfigurationError{Field: "anchor", Reason: "anchor date is required"}
	}
	if cc.CapMonths < 0 {
		return &ConfigurationError{Field: "cap_months", Reason: "cap cannot be negative"}
	}
	return nil
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator runs the abatement and issuance state machine over a schedule.
type Calculator struct {
	cfg      CalculatorConfig
	provider StockProvider
}

func NewCalculator(cfg CalculatorConfig, provider StockProvider) *Calculator {
	return &Calculator{cfg: cfg, provider: provider}
}

// RunResult is the output of one forecast run. Records are ordered by
// period index; CumulativeIssued is the final running total.
type RunResult struct {
	RunID            string
	Policy           IssuancePolicy
	Records          []AbatementRecord
	CumulativeIssued Amount
}

// Run walks the schedule in order and emits one AbatementRecord per period.
//
// On a fatal mid-run error the records accumulated so far are returned
// alongside the error; they constitute a valid resumable checkpoint.
func (c *Calculator) Run(ctx context.Context, schedule []ReportingPeriod) (*RunResult, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(schedule) == 0 {
		return nil, &ConfigurationError{Field: "schedule", Reason: "empty period schedule"}
	}

	capMonths := c.cfg.CapMonths
	if capMonths == 0 {
		capMonths = DefaultCapMonths
	}

	result := &RunResult{
		RunID:            uuid.NewString(),
		Policy:           c.cfg.Policy,
		CumulativeIssued: Amount{Value: decimal.Zero, Unit: c.cfg.Unit},
	}

	var previousStock *Amount

	for _, period := range schedule {
		months := ClampMonths(MonthsCompleted(c.cfg.Anchor, period.End), capMonths)

		record := AbatementRecord{
			Period:           period,
			MonthsElapsed:    months,
			DiscountFactor:   c.cfg.DiscountFactor,
			Deduction:        Amount{Value: decimal.Zero, Unit: c.cfg.Unit},
			CumulativeIssued: result.CumulativeIssued,
		}

		reading, err := c.provider.Stock(ctx, period.End)
		if err != nil {
			var missing *MissingDataError
			if errors.As(err, &missing) {
				// Recoverable: emit the null-issuance record and move on.
				result.Records = append(result.Records, record)
				continue
			}
			// Fatal: hand back the checkpoint accumulated so far.
			return result, err
		}
		if reading == nil {
			result.Records = append(result.Records, record)
			continue
		}

		stock := reading.Value.Round(6)
		delta := stock
		if previousStock != nil {
			delta = stock.Sub(*previousStock)
		}

		if d, ok := c.cfg.Deductions[period.Index]; ok {
			record.Deduction = c.toRunUnit(d)
			delta = delta.Sub(record.Deduction)
		}
		delta = delta.Round(6)

		issued := c.issue(delta, result.CumulativeIssued)
		result.CumulativeIssued = result.CumulativeIssued.Add(issued)

		record.Stock = &stock
		record.DeltaStock = &delta
		record.Issued = &issued
		record.CumulativeIssued = result.CumulativeIssued
		result.Records = append(result.Records, record)

		previousStock = &stock
	}

	return result, nil
}

// issue applies the selected policy. Issuance is never negative under
// either policy, so the cumulative total never decreases.
func (c *Calculator) issue(delta, cumulative Amount) Amount {
	discounted := delta.Mul(c.cfg.DiscountFactor)
	switch c.cfg.Policy {
	case PolicyRatchetedCap:
		return discounted.Round(2).Sub(cumulative).ClampZero().Round(2)
	default: // PolicyFlatDiscount
		return discounted.ClampZero().Round(2)
	}
}

// toRunUnit converts a configured amount into the run's unit.
func (c *Calculator) toRunUnit(a Amount) Amount {
	switch c.cfg.Unit {
	case UnitTonnesC:
		return a.ToC()
	case UnitTonnesCO2e:
		return a.ToCO2e()
	default:
		return a
	}
}
