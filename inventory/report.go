package inventory

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteDeltaCSV writes the reconciliation delta report as a small CSV log:
// run date, registry id, row counts and the net issuance delta.
func (res *Result) WriteDeltaCSV(w io.Writer, runDate string) error {
	cw := csv.NewWriter(w)
	header := []string{"Run Date", "Registry ID", "Cutoff Date", "Rows Removed", "Rows Kept", "Rows Added", "Net Amount Delta"}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := []string{
		runDate,
		string(res.RegistryID),
		res.CutoffDate.String(),
		strconv.Itoa(res.RemovedCount),
		strconv.Itoa(res.KeptCount),
		strconv.Itoa(res.AddedCount),
		res.NetAmountDelta.StringFixed(2),
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
