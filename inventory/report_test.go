package inventory_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/accu-engine/inventory"
)

func TestWriteDeltaCSV(t *testing.T) {
	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "2026-06-30", "4500"))

	rows := []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), date(2026, time.June, 30), "5000"),
	}

	result, err := newTestReconciler().Reconcile(table, rows)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, result.WriteDeltaCSV(&buf, "2026-01-15"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "2026-01-15", row[0])
	assert.Equal(t, string(projectX), row[1])
	assert.Equal(t, "2025-10-31", row[2])
	assert.Equal(t, "1", row[3], "rows removed")
	assert.Equal(t, "1", row[5], "rows added")
	assert.Equal(t, "500.00", row[6])
}
