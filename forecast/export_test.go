package forecast_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/warp/accu-engine/forecast"
)

func TestWriteCSV_NullReadingExportsEmptyCells(t *testing.T) {
	// GIVEN: A run where the second period has no stock reading
	// WHEN: Exporting to CSV
	// THEN: The null period's stock/abatement/issued cells are empty, not
	//       zero, while the cumulative column is always populated

	schedule := threeYearSchedule(t)
	provider := forecast.NewStaticProvider()
	provider.Set(schedule[0].End, co2e("1000"))
	provider.Set(schedule[2].End, co2e("2000"))

	result, err := forecast.NewCalculator(calcConfig(forecast.PolicyFlatDiscount), provider).
		Run(context.Background(), schedule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := forecast.WriteCSV(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-reading export: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}

	header := records[0]
	if header[0] != forecast.ColRPNumber || header[6] != forecast.ColIssued {
		t.Errorf("unexpected header row: %v", header)
	}

	first := records[1]
	if first[4] != "1000.000000" {
		t.Errorf("stock cell = %q, want 1000.000000", first[4])
	}
	if first[6] != "750.00" {
		t.Errorf("issued cell = %q, want 750.00", first[6])
	}

	null := records[2]
	for _, col := range []int{4, 5, 6} {
		if null[col] != "" {
			t.Errorf("null period column %d = %q, want empty", col, null[col])
		}
	}
	if null[7] != "750.00" {
		t.Errorf("null period cumulative = %q, want 750.00", null[7])
	}
}

func TestWriteCSV_DatesAreISO(t *testing.T) {
	schedule, err := forecast.GenerateSchedule(forecast.ScheduleConfig{
		Anchor:        date(2021, time.June, 25),
		CadenceMonths: 12,
		PeriodCount:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := forecast.NewStaticProvider()
	provider.Set(schedule[0].End, co2e("100"))
	result, err := forecast.NewCalculator(calcConfig(forecast.PolicyFlatDiscount), provider).
		Run(context.Background(), schedule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := forecast.WriteCSV(&buf, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, _ := csv.NewReader(&buf).ReadAll()
	row := records[1]
	if row[1] != "2021-06-25" || row[2] != "2022-06-24" {
		t.Errorf("period bounds %q..%q, want ISO dates", row[1], row[2])
	}
}
