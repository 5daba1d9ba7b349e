/*
export.go - Forecast CSV export

PURPOSE:
  Writes a forecast run as a flat CSV table, one row per reporting period.
  The header names match what the downstream inventory reconciliation
  consumes ("RP Number", "RP Start (EOM)", "RP End (EOM)", "ACCUs
  Realised"), so an exported forecast can feed reconciliation directly.

ROUNDING:
  Stock and abatement columns carry 6 decimal places; issuance columns 2.
  Periods with no stock reading export empty cells, not zeros.
*/
package forecast

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Forecast export column headers, in order.
const (
	ColRPNumber   = "RP Number"
	ColRPStart    = "RP Start (EOM)"
	ColRPEnd      = "RP End (EOM)"
	ColMonths     = "Months Elapsed"
	ColStock      = "Carbon Stock"
	ColDelta      = "Net Abatement"
	ColIssued     = "ACCUs Realised"
	ColCumulative = "Cumulative ACCUs"
)

// ExportHeaders is the forecast export header row.
var ExportHeaders = []string{
	ColRPNumber, ColRPStart, ColRPEnd, ColMonths,
	ColStock, ColDelta, ColIssued, ColCumulative,
}

// WriteCSV writes the run as a CSV table with a header row.
func WriteCSV(w io.Writer, result *RunResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeaders); err != nil {
		return err
	}

	for _, r := range result.Records {
		row := []string{
			strconv.Itoa(r.Period.Index),
			r.Period.Start.String(),
			r.Period.End.String(),
			strconv.Itoa(r.MonthsElapsed),
			formatOpt(r.Stock, 6),
			formatOpt(r.DeltaStock, 6),
			formatOpt(r.Issued, 2),
			r.CumulativeIssued.Round(2).Value.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOpt(a *Amount, places int32) string {
	if a == nil {
		return ""
	}
	return a.Round(places).Value.StringFixed(places)
}
