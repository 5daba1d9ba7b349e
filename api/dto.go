/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Decimal
  amounts are serialized as fixed-point strings at the engine's rounding
  precision (6 places for stock values, 2 for issuance).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Complex response wrappers

The request body for both endpoints is factory.ProjectJSON.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/project.go: ProjectJSON request type
*/
package api

import (
	"github.com/warp/accu-engine/forecast"
	"github.com/warp/accu-engine/inventory"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RecordDTO is one reporting period's forecast in API responses.
// Stock, delta and issued are empty strings for periods with no reading.
type RecordDTO struct {
	RPNumber      int    `json:"rp_number"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	MonthsElapsed int    `json:"months_elapsed"`
	Truncated     bool   `json:"truncated,omitempty"`
	Stock         string `json:"stock,omitempty"`
	DeltaStock    string `json:"delta_stock,omitempty"`
	Deduction     string `json:"deduction,omitempty"`
	Issued        string `json:"issued,omitempty"`
	Cumulative    string `json:"cumulative"`
}

// ForecastResponse wraps one forecast run.
type ForecastResponse struct {
	RunID      string      `json:"run_id"`
	RegistryID string      `json:"registry_id"`
	Policy     string      `json:"policy"`
	Records    []RecordDTO `json:"records"`
	Cumulative string      `json:"cumulative_issued"`
}

// ReconcileResponse wraps one reconciliation run.
type ReconcileResponse struct {
	RunID          string `json:"run_id"`
	RegistryID     string `json:"registry_id"`
	CutoffDate     string `json:"cutoff_date"`
	RemovedCount   int    `json:"removed_rows"`
	KeptCount      int    `json:"kept_rows"`
	AddedCount     int    `json:"added_rows"`
	NetAmountDelta string `json:"net_amount_delta"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toForecastResponse(registryID forecast.RegistryID, result *forecast.RunResult) ForecastResponse {
	resp := ForecastResponse{
		RunID:      result.RunID,
		RegistryID: string(registryID),
		Policy:     string(result.Policy),
		Cumulative: result.CumulativeIssued.Round(2).Value.StringFixed(2),
		Records:    make([]RecordDTO, 0, len(result.Records)),
	}
	for _, r := range result.Records {
		dto := RecordDTO{
			RPNumber:      r.Period.Index,
			PeriodStart:   r.Period.Start.String(),
			PeriodEnd:     r.Period.End.String(),
			MonthsElapsed: r.MonthsElapsed,
			Truncated:     r.Period.Truncated,
			Cumulative:    r.CumulativeIssued.Round(2).Value.StringFixed(2),
		}
		if r.Stock != nil {
			dto.Stock = r.Stock.Round(6).Value.StringFixed(6)
		}
		if r.DeltaStock != nil {
			dto.DeltaStock = r.DeltaStock.Round(6).Value.StringFixed(6)
		}
		if !r.Deduction.IsZero() {
			dto.Deduction = r.Deduction.Round(2).Value.StringFixed(2)
		}
		if r.Issued != nil {
			dto.Issued = r.Issued.Round(2).Value.StringFixed(2)
		}
		resp.Records = append(resp.Records, dto)
	}
	return resp
}

func toReconcileResponse(result *inventory.Result) ReconcileResponse {
	return ReconcileResponse{
		RunID:          result.RunID,
		RegistryID:     string(result.RegistryID),
		CutoffDate:     result.CutoffDate.String(),
		RemovedCount:   result.RemovedCount,
		KeptCount:      result.KeptCount,
		AddedCount:     result.AddedCount,
		NetAmountDelta: result.NetAmountDelta.StringFixed(2),
	}
}
