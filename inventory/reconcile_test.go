package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/accu-engine/forecast"
	"github.com/warp/accu-engine/inventory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const projectX = forecast.RegistryID("ERF-100001")

func date(year int, month time.Month, day int) forecast.TimePoint {
	return forecast.NewTimePoint(year, month, day)
}

func testMetadata() inventory.StaticMetadata {
	return inventory.StaticMetadata{
		projectX: inventory.ProjectMetadata{
			"Name":           "Willow Creek Regeneration",
			"Methodology":    "HIR",
			"Proponents":     "Willow Creek Pastoral Co",
			"Business Unit":  "Environmental Markets",
			"Project Number": "P-0042",
		},
	}
}

func newTestReconciler() *inventory.Reconciler {
	return inventory.NewReconciler(testMetadata(), inventory.ReconcilerConfig{
		RunDate: date(2026, time.January, 15),
	})
}

// ledgerRow builds a minimal existing ledger row for a project.
func ledgerRow(registryID forecast.RegistryID, periodEnd, amount string) map[string]string {
	return map[string]string{
		inventory.ColRegistryID: string(registryID),
		inventory.ColPeriodEnd:  periodEnd,
		inventory.ColAmount:     amount,
		inventory.ColStatus:     "Issued",
	}
}

func forecastRow(rp int, start, end forecast.TimePoint, amount string) inventory.ForecastRow {
	return inventory.ForecastRow{
		RegistryID:  projectX,
		RPNumber:    rp,
		PeriodStart: start,
		PeriodEnd:   end,
		Issued:      forecast.NewAmountFromDecimal(mustDec(amount), forecast.UnitTonnesCO2e),
	}
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// CUTOFF / REPLACE TESTS
// =============================================================================

func TestReconcile_ReplacesForecastRowsFromCutoff(t *testing.T) {
	// GIVEN: A ledger with a historical 2020 row (1000) and a stale
	//        forecast 2026 row (4500) for project X
	// WHEN: Reconciling one new forecast row (2025-10-31 .. 2026-06-30, 5000)
	// THEN: The 2020 row is kept, the 2026 row is removed, the 5000 row is
	//       appended, and the net amount delta is 500

	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "2020-06-30", "1000"))
	table.AppendRow(ledgerRow(projectX, "2026-06-30", "4500"))

	rows := []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), date(2026, time.June, 30), "5000"),
	}

	result, err := newTestReconciler().Reconcile(table, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, result.KeptCount)
	assert.Equal(t, 1, result.RemovedCount)
	assert.Equal(t, 1, result.AddedCount)
	assert.True(t, result.NetAmountDelta.Equal(mustDec("500")),
		"net delta %s, want 500", result.NetAmountDelta)
	assert.True(t, result.CutoffDate.Equal(date(2025, time.October, 31)))

	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, "2020-06-30", table.Get(0, inventory.ColPeriodEnd))
	assert.Equal(t, "5000.00", table.Get(1, inventory.ColAmount))
	assert.Equal(t, inventory.StatusForecasted, table.Get(1, inventory.ColStatus))
}

func TestReconcile_AppendedRowFields(t *testing.T) {
	// Administrative dates derive from the period end (+2 and +92 days by
	// default); descriptive fields copy from the portfolio; the run date is
	// stamped as the data update date.

	table := inventory.NewTable(inventory.RequiredHeaders)
	end := date(2026, time.June, 30)
	rows := []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), end, "5000"),
	}

	_, err := newTestReconciler().Reconcile(table, rows)
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	assert.Equal(t, "2026-07-02", table.Get(0, inventory.ColSubmissionDate))
	assert.Equal(t, "2026-09-30", table.Get(0, inventory.ColAmountDueDate))
	assert.Equal(t, "2026-01-15", table.Get(0, inventory.ColDataUpdateDate))
	assert.Equal(t, "6", table.Get(0, inventory.ColRP))
	assert.Equal(t, "Willow Creek Regeneration", table.Get(0, "Name"))
	assert.Equal(t, "P-0042", table.Get(0, "Project Number"))
	assert.Equal(t, string(projectX), table.Get(0, inventory.ColRegistryID))
}

func TestReconcile_ExplicitZeroOffsetsHonored(t *testing.T) {
	// Nil offsets take the +2/+92 defaults; an explicit zero-day offset is
	// a real configuration, not "unset".

	zero := 0
	rec := inventory.NewReconciler(testMetadata(), inventory.ReconcilerConfig{
		SubmissionOffsetDays: &zero,
		AmountDueOffsetDays:  &zero,
		RunDate:              date(2026, time.January, 15),
	})

	table := inventory.NewTable(inventory.RequiredHeaders)
	end := date(2026, time.June, 30)
	_, err := rec.Reconcile(table, []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), end, "5000"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, table.NumRows())

	assert.Equal(t, "2026-06-30", table.Get(0, inventory.ColSubmissionDate))
	assert.Equal(t, "2026-06-30", table.Get(0, inventory.ColAmountDueDate))
}

func TestReconcile_Idempotent_SecondRunNetDeltaZero(t *testing.T) {
	// GIVEN: A reconciliation already applied
	// WHEN: Re-running with the identical forecast
	// THEN: The table content is unchanged and the net delta is zero

	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "2020-06-30", "1000"))

	rows := []inventory.ForecastRow{
		forecastRow(5, date(2024, time.October, 31), date(2025, time.June, 30), "2500"),
		forecastRow(6, date(2025, time.October, 31), date(2026, time.June, 30), "5000"),
	}

	rec := newTestReconciler()
	first, err := rec.Reconcile(table, rows)
	require.NoError(t, err)
	require.Equal(t, 2, first.AddedCount)
	require.Equal(t, 3, table.NumRows())

	second, err := rec.Reconcile(table, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, second.RemovedCount, "second run removes exactly what it re-adds")
	assert.Equal(t, 2, second.AddedCount)
	assert.True(t, second.NetAmountDelta.IsZero(), "net delta %s, want 0", second.NetAmountDelta)
	assert.Equal(t, 3, table.NumRows())
}

func TestReconcile_UnparseableDate_ConservativelyRetained(t *testing.T) {
	// Rows whose period end cannot be parsed are never deleted.

	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "pending review", "4500"))
	table.AppendRow(ledgerRow(projectX, "2026-06-30", "4500"))

	rows := []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), date(2026, time.June, 30), "5000"),
	}

	result, err := newTestReconciler().Reconcile(table, rows)
	require.NoError(t, err)

	assert.Equal(t, 1, result.KeptCount)
	assert.Equal(t, 1, result.RemovedCount)
	assert.Equal(t, "pending review", table.Get(0, inventory.ColPeriodEnd))
}

func TestReconcile_OtherProjectsUntouched(t *testing.T) {
	table := inventory.NewTable(inventory.RequiredHeaders)
	other := forecast.RegistryID("ERF-200002")
	table.AppendRow(ledgerRow(other, "2026-06-30", "9999"))

	rows := []inventory.ForecastRow{
		forecastRow(6, date(2025, time.October, 31), date(2026, time.June, 30), "5000"),
	}

	result, err := newTestReconciler().Reconcile(table, rows)
	require.NoError(t, err)

	assert.Equal(t, 0, result.RemovedCount)
	assert.Equal(t, "9999", table.Get(0, inventory.ColAmount))
	assert.Equal(t, 2, table.NumRows())
}

// =============================================================================
// FATAL PRECONDITION TESTS - The table must be left unchanged
// =============================================================================

func TestReconcile_EmptyForecast_Fails(t *testing.T) {
	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "2026-06-30", "4500"))

	_, err := newTestReconciler().Reconcile(table, nil)
	assert.ErrorIs(t, err, forecast.ErrReconciliationAmbiguity)
	assert.Equal(t, 1, table.NumRows(), "failed reconciliation must not touch the table")
}

func TestReconcile_MixedRegistryIDs_Fails(t *testing.T) {
	table := inventory.NewTable(inventory.RequiredHeaders)

	mixed := []inventory.ForecastRow{
		forecastRow(1, date(2021, time.June, 25), date(2022, time.June, 24), "100"),
		{
			RegistryID:  "ERF-200002",
			RPNumber:    2,
			PeriodStart: date(2022, time.June, 25),
			PeriodEnd:   date(2023, time.June, 24),
			Issued:      forecast.NewAmountFromDecimal(mustDec("100"), forecast.UnitTonnesCO2e),
		},
	}

	_, err := newTestReconciler().Reconcile(table, mixed)
	assert.ErrorIs(t, err, forecast.ErrConfiguration)
}

func TestReconcile_UnknownProject_Fails(t *testing.T) {
	table := inventory.NewTable(inventory.RequiredHeaders)
	table.AppendRow(ledgerRow(projectX, "2026-06-30", "4500"))

	rows := []inventory.ForecastRow{
		{
			RegistryID:  "ERF-999999",
			RPNumber:    1,
			PeriodStart: date(2025, time.October, 31),
			PeriodEnd:   date(2026, time.June, 30),
			Issued:      forecast.NewAmountFromDecimal(mustDec("5000"), forecast.UnitTonnesCO2e),
		},
	}

	_, err := newTestReconciler().Reconcile(table, rows)
	assert.ErrorIs(t, err, inventory.ErrProjectNotFound)
	assert.Equal(t, 1, table.NumRows(), "failed reconciliation must not touch the table")
}

// =============================================================================
// FORECAST ROW CONVERSION TESTS
// =============================================================================

func TestForecastRows_SkipsNullIssuancePeriods(t *testing.T) {
	issued := forecast.NewAmountFromDecimal(mustDec("750"), forecast.UnitTonnesCO2e)
	result := &forecast.RunResult{
		Records: []forecast.AbatementRecord{
			{
				Period: forecast.ReportingPeriod{Index: 1,
					Start: date(2021, time.June, 25), End: date(2022, time.June, 24)},
				Issued: &issued,
			},
			{
				Period: forecast.ReportingPeriod{Index: 2,
					Start: date(2022, time.June, 25), End: date(2023, time.June, 24)},
				// no reading: Issued nil
			},
		},
	}

	rows := inventory.ForecastRows(projectX, result)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].RPNumber)
	assert.True(t, rows[0].Issued.Value.Equal(mustDec("750")))
}
