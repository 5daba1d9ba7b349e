/*
Package factory provides JSON to Go project-configuration conversion.

PURPOSE:
  Converts JSON project definitions into the engine's immutable
  configuration records (schedule, model, calculator). This replaces the
  old practice of hard-coding per-project constants in near-duplicate
  scripts: a project is data, the engine is code.

JSON SCHEMA:
  {
    "registry_id": "ERF123456",
    "name": "Coalara Permanent Stand",
    "anchor_date": "2021-06-25",
    "first_period_start": "2025-10-31",
    "cadence_months": 12,
    "horizon_end": "2046-06-30",
    "permanence_years": 25,
    "boundary_convention": "anniversary",
    "baseline_stock": 728.8,
    "target_stock": 149697,
    "cap_months": 180,
    "input_units": "C",
    "convert_to_co2e": true,
    "area_hectares": 0,
    "issuance_policy": "flat_discount",
    "discount_factor": 0.75,
    "deductions": {"1": 12000}
  }

KEY FEATURES:
  - Validates structure and dates, fails fast with ConfigurationError
  - Sets engine defaults (180-month cap, 25-year permanence threshold)
  - Deductions are specified in CO2-e (ACCUs) and converted by the
    calculator when the run unit differs
  - Full-lifecycle horizons derive from anchor + permanence term when no
    explicit horizon or period count is given

USAGE:
  project, err := factory.ParseProject(jsonBytes)
  result, err := project.Forecast(ctx, nil) // nil = local model provider

SEE ALSO:
  - forecast/schedule.go, forecast/model.go, forecast/calculator.go
*/
package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/accu-engine/forecast"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProjectJSON is the JSON representation of a project configuration.
type ProjectJSON struct {
	RegistryID string `json:"registry_id"`
	Name       string `json:"name"`

	// Schedule
	AnchorDate       string `json:"anchor_date"`
	FirstPeriodStart string `json:"first_period_start,omitempty"` // defaults to anchor_date
	CadenceMonths    int    `json:"cadence_months"`
	PeriodCount      int    `json:"period_count,omitempty"`
	HorizonEnd       string `json:"horizon_end,omitempty"`
	Convention       string `json:"boundary_convention,omitempty"`

	// Model
	BaselineStock   float64 `json:"baseline_stock"`
	TargetStock     float64 `json:"target_stock"`
	CapMonths       int     `json:"cap_months,omitempty"`
	PermanenceYears int     `json:"permanence_years,omitempty"`
	InputUnits      string  `json:"input_units,omitempty"` // "C" or "CO2e"
	ConvertToCO2e   bool    `json:"convert_to_co2e,omitempty"`
	AreaHectares    float64 `json:"area_hectares,omitempty"`

	// Issuance
	IssuancePolicy string             `json:"issuance_policy"`
	DiscountFactor float64            `json:"discount_factor"`
	Deductions     map[string]float64 `json:"deductions,omitempty"` // period index -> CO2e amount
}

// =============================================================================
// PROJECT - Parsed immutable configuration
// =============================================================================

// Project bundles the per-project configuration records for one forecast.
type Project struct {
	RegistryID forecast.RegistryID
	Name       string
	Schedule   forecast.ScheduleConfig
	Model      forecast.ModelConfig
	Calculator forecast.CalculatorConfig
}

// ParseProject parses and validates a JSON project definition.
func ParseProject(data []byte) (*Project, error) {
	var pj ProjectJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return nil, &forecast.ConfigurationError{Field: "project", Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return pj.Build()
}

// Build converts the JSON form into validated configuration records.
func (pj ProjectJSON) Build() (*Project, error) {
	if pj.RegistryID == "" {
		return nil, &forecast.ConfigurationError{Field: "registry_id", Reason: "registry id is required"}
	}

	anchor, err := parseDate("anchor_date", pj.AnchorDate, true)
	if err != nil {
		return nil, err
	}

	scheduleAnchor := anchor
	if pj.FirstPeriodStart != "" {
		scheduleAnchor, err = parseDate("first_period_start", pj.FirstPeriodStart, true)
		if err != nil {
			return nil, err
		}
	}

	horizon, err := parseDate("horizon_end", pj.HorizonEnd, false)
	if err != nil {
		return nil, err
	}
	if horizon.IsZero() && pj.PeriodCount == 0 {
		if pj.PermanenceYears <= 0 {
			return nil, &forecast.ConfigurationError{
				Field:  "horizon",
				Reason: "need a period count, a horizon end, or a permanence term to derive the lifecycle",
			}
		}
		horizon = forecast.LifecycleHorizon(anchor, pj.PermanenceYears)
	}

	unit := forecast.UnitTonnesCO2e
	switch pj.InputUnits {
	case "", "CO2e", "CO2E", "co2e":
	case "C", "c":
		unit = forecast.UnitTonnesC
	default:
		return nil, &forecast.ConfigurationError{Field: "input_units", Reason: "use \"C\" or \"CO2e\""}
	}

	var policy forecast.IssuancePolicy
	switch pj.IssuancePolicy {
	case string(forecast.PolicyFlatDiscount):
		policy = forecast.PolicyFlatDiscount
	case string(forecast.PolicyRatchetedCap):
		policy = forecast.PolicyRatchetedCap
	case "":
		return nil, &forecast.ConfigurationError{Field: "issuance_policy", Reason: "issuance policy must be selected explicitly"}
	default:
		return nil, &forecast.ConfigurationError{Field: "issuance_policy", Reason: fmt.Sprintf("unknown policy %q", pj.IssuancePolicy)}
	}

	deductions := make(map[int]forecast.Amount, len(pj.Deductions))
	for key, v := range pj.Deductions {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 {
			return nil, &forecast.ConfigurationError{Field: "deductions", Reason: fmt.Sprintf("invalid period index %q", key)}
		}
		deductions[idx] = forecast.NewAmount(v, forecast.UnitTonnesCO2e)
	}

	modelCfg := forecast.ModelConfig{
		Anchor:          anchor,
		Baseline:        decimal.NewFromFloat(pj.BaselineStock),
		Target:          decimal.NewFromFloat(pj.TargetStock),
		CapMonths:       pj.CapMonths,
		PermanenceYears: pj.PermanenceYears,
		InputUnit:       unit,
		ConvertToCO2e:   pj.ConvertToCO2e,
	}
	if pj.AreaHectares > 0 {
		modelCfg.AreaHectares = decimal.NewFromFloat(pj.AreaHectares)
	}

	runUnit := unit
	if pj.ConvertToCO2e {
		runUnit = forecast.UnitTonnesCO2e
	}

	p := &Project{
		RegistryID: forecast.RegistryID(pj.RegistryID),
		Name:       pj.Name,
		Schedule: forecast.ScheduleConfig{
			Anchor:        scheduleAnchor,
			CadenceMonths: pj.CadenceMonths,
			PeriodCount:   pj.PeriodCount,
			HorizonEnd:    horizon,
			Convention:    forecast.BoundaryConvention(pj.Convention),
		},
		Model: modelCfg,
		Calculator: forecast.CalculatorConfig{
			Policy:         policy,
			DiscountFactor: decimal.NewFromFloat(pj.DiscountFactor),
			Deductions:     deductions,
			Anchor:         anchor,
			CapMonths:      pj.CapMonths,
			Unit:           runUnit,
		},
	}

	if err := p.Schedule.Validate(); err != nil {
		return nil, err
	}
	if err := p.Calculator.Validate(); err != nil {
		return nil, err
	}
	if _, err := forecast.NewStockModel(p.Model); err != nil {
		return nil, err
	}
	return p, nil
}

// Forecast runs the full pipeline for the project: schedule generation,
// stock sampling, issuance accumulation. A nil provider uses the local
// interpolation model.
func (p *Project) Forecast(ctx context.Context, provider forecast.StockProvider) (*forecast.RunResult, error) {
	schedule, err := forecast.GenerateSchedule(p.Schedule)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		model, err := forecast.NewStockModel(p.Model)
		if err != nil {
			return nil, err
		}
		provider = forecast.NewModelProvider(model)
	}
	calc := forecast.NewCalculator(p.Calculator, provider)
	return calc.Run(ctx, schedule)
}

func parseDate(field, value string, required bool) (forecast.TimePoint, error) {
	if value == "" {
		if required {
			return forecast.TimePoint{}, &forecast.ConfigurationError{Field: field, Reason: "date is required"}
		}
		return forecast.TimePoint{}, nil
	}
	tp, err := forecast.ParseTimePoint(value)
	if err != nil {
		return forecast.TimePoint{}, &forecast.ConfigurationError{Field: field, Reason: err.Error()}
	}
	return tp, nil
}
