/*
schedule.go - Reporting-period generation

PURPOSE:
  Generates the ordered sequence of non-overlapping reporting periods that
  the calculator walks. A schedule is defined by an anchor date, a cadence
  in months, and either an explicit period count or a horizon end date.

BOUNDARY CONVENTIONS:
  Anniversary:
    Period k runs from anchor + (k-1)*cadence months to one day before
    anchor + k*cadence months. 2021-06-25 with a 12-month cadence gives
    [2021-06-25, 2022-06-24], [2022-06-25, 2023-06-24], ...

  Calendar month end:
    Periods are snapped to literal month boundaries: period starts are the
    first of the anchor's month stepped by the cadence, period ends land on
    month-end dates. 2021-06-25 gives [2021-06-01, 2022-05-31], ...
    This matches crediting schedules aligned to modelling tools that only
    understand end-of-month dates.

TRUNCATION:
  When a horizon end is given and does not divide evenly by the cadence,
  the final period is truncated to exactly meet the horizon. The truncated
  period keeps its actual completed-month length for downstream pro-rating.

PRECEDENCE:
  If both an explicit count and a horizon end are given, the count wins.

SEE ALSO:
  - types.go: ReportingPeriod
  - calculator.go: Consumes the generated schedule
*/
package forecast

// =============================================================================
// BOUNDARY CONVENTION
// =============================================================================

type BoundaryConvention string

const (
	// ConventionAnniversary ends period k at anchor + k*cadence - 1 day.
	ConventionAnniversary BoundaryConvention = "anniversary"

	// ConventionCalendarMonthEnd snaps periods to literal month-end dates.
	ConventionCalendarMonthEnd BoundaryConvention = "calendar_month_end"
)

// =============================================================================
// SCHEDULE CONFIG
// =============================================================================

// ScheduleConfig defines a reporting-period schedule.
// Exactly one of PeriodCount or HorizonEnd must be set; if both are set the
// explicit PeriodCount takes precedence for the number of periods, and
// HorizonEnd still truncates the final period when it falls short.
type ScheduleConfig struct {
	Anchor        TimePoint
	CadenceMonths int
	PeriodCount   int       // 0 = derive from HorizonEnd
	HorizonEnd    TimePoint // zero = use PeriodCount only
	Convention    BoundaryConvention
}

// Validate checks the configuration and returns a ConfigurationError on the
// first invalid field.
func (sc ScheduleConfig) Validate() error {
	if sc.Anchor.IsZero() {
		return &ConfigurationError{Field: "anchor", Reason: "anchor date is required"}
	}
	if sc.CadenceMonths <= 0 {
		return &ConfigurationError{Field: "cadence_months", Reason: "cadence must be positive"}
	}
	if sc.PeriodCount < 0 {
		return &ConfigurationError{Field: "period_count", Reason: "period count cannot be negative"}
	}
	if sc.PeriodCount == 0 && sc.HorizonEnd.IsZero() {
		return &ConfigurationError{Field: "horizon", Reason: "either a period count or a horizon end date is required"}
	}
	if !sc.HorizonEnd.IsZero() && sc.HorizonEnd.Before(sc.Anchor) {
		return &ConfigurationError{Field: "horizon_end", Reason: "horizon end precedes anchor"}
	}
	switch sc.Convention {
	case ConventionAnniversary, ConventionCalendarMonthEnd, "":
	default:
		return &ConfigurationError{Field: "convention", Reason: "unknown boundary convention"}
	}
	return nil
}

// convention returns the active convention, defaulting to anniversary.
func (sc ScheduleConfig) convention() BoundaryConvention {
	if sc.Convention == "" {
		return ConventionAnniversary
	}
	return sc.Convention
}

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// GenerateSchedule produces the ordered, contiguous, non-overlapping
// sequence of reporting periods defined by the configuration.
func GenerateSchedule(sc ScheduleConfig) ([]ReportingPeriod, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	base := sc.Anchor
	if sc.convention() == ConventionCalendarMonthEnd {
		base = sc.Anchor.FirstOfMonth()
	}

	count := sc.PeriodCount
	if count == 0 {
		// Derive from the horizon: number of whole cadences, plus a
		// partial final period when the horizon does not divide evenly.
		months := MonthsCompleted(base, sc.HorizonEnd)
		count = months / sc.CadenceMonths
		if months%sc.CadenceMonths != 0 || count == 0 {
			count++
		}
	}

	periods := make([]ReportingPeriod, 0, count)
	for k := 1; k <= count; k++ {
		start := base.AddMonths((k - 1) * sc.CadenceMonths)
		nextStart := base.AddMonths(k * sc.CadenceMonths)
		end := nextStart.AddDays(-1)

		p := ReportingPeriod{
			Index:  k,
			Start:  start,
			End:    end,
			Months: sc.CadenceMonths,
		}

		// Truncate the final period to exactly meet the horizon.
		if !sc.HorizonEnd.IsZero() && end.After(sc.HorizonEnd) {
			p.End = sc.HorizonEnd
			p.Months = MonthsCompleted(start, sc.HorizonEnd.AddDays(1))
			p.Truncated = true
			periods = append(periods, p)
			break
		}

		periods = append(periods, p)
	}

	return periods, nil
}

// LifecycleHorizon returns the horizon end for a full project lifecycle:
// the project start advanced by the permanence term.
func LifecycleHorizon(projectStart TimePoint, permanenceYears int) TimePoint {
	return projectStart.AddYears(permanenceYears)
}
