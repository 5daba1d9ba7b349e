package forecast

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Day-granularity date (schedules and ledgers key on days)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() TimePoint {
	now := time.Now()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// timePointFormats are the accepted wire formats, tried in order.
// ISO first, then day-first and month-first slash forms as exported by the
// inventory tracking tool.
var timePointFormats = []string{"2006-01-02", "02/01/2006", "01/02/2006"}

// ParseTimePoint parses a date string in any accepted format.
func ParseTimePoint(s string) (TimePoint, error) {
	for _, layout := range timePointFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return TimePoint{}, fmt.Errorf("unparseable date %q", s)
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, n, 0)} }
func (tp TimePoint) AddYears(n int) TimePoint  { return TimePoint{Time: tp.normalize().AddDate(n, 0, 0)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format("2006-01-02")
}

// FirstOfMonth returns the first day of the time point's month.
func (tp TimePoint) FirstOfMonth() TimePoint {
	return NewTimePoint(tp.Year(), tp.Month(), 1)
}

// EndOfMonth returns the last day of the time point's month.
func (tp TimePoint) EndOfMonth() TimePoint {
	return tp.FirstOfMonth().AddMonths(1).AddDays(-1)
}

// =============================================================================
// MONTH ARITHMETIC - Completed calendar months, not day-count / 30
// =============================================================================

// MonthsCompleted counts whole completed calendar months between a and b.
//
// INVARIANTS:
//   - Monotone non-decreasing in b for fixed a
//   - Antisymmetric: MonthsCompleted(a, b) == -MonthsCompleted(b, a)
//
// A month only counts once its day-of-month anniversary has been reached:
// 2021-06-25 -> 2021-07-24 is 0 completed months, -> 2021-07-25 is 1.
func MonthsCompleted(a, b TimePoint) int {
	if b.Before(a) {
		return -MonthsCompleted(b, a)
	}
	total := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		total--
	}
	return total
}

// ClampMonths clamps a completed-month count to [0, cap].
func ClampMonths(n, cap int) int {
	if n < 0 {
		return 0
	}
	if n > cap {
		return cap
	}
	return n
}

func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
