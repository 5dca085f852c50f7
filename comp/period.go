package comp

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Day-granularity time (order dates, assignment dates, cutoffs)
// =============================================================================

// Date is a calendar day in UTC. Commission data carries no meaningful
// intra-day time, so every comparison normalizes to midnight.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{Time: d.Time.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// MarshalJSON encodes as "2006-01-02"; the zero Date encodes as "".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == `""` || s == "null" {
		*d = Date{}
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WholeMonthsBetween returns the number of complete calendar months from
// `from` to `to`. A month is complete only once the day-of-month has been
// reached: Jan 15 to Mar 14 is 1 month, Jan 15 to Mar 15 is 2.
// Returns 0 when `to` precedes `from`.
func WholeMonthsBetween(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// =============================================================================
// PERIOD - Quarter and month windows that scope calculation runs
// =============================================================================

// Period is a closed date range [Start, End] with a canonical label:
// "Q3-2025" for quarters, "2025-07" for months. Every calculation run is
// scoped to exactly one period.
type Period struct {
	Label string
	Start Date
	End   Date
}

func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

func (p Period) String() string { return p.Label }

// ParseQuarter accepts "Q1-2025" through "Q4-2025".
func ParseQuarter(label string) (Period, error) {
	var q, year int
	if _, err := fmt.Sscanf(label, "Q%d-%d", &q, &year); err != nil || q < 1 || q > 4 || year < 1 {
		return Period{}, fmt.Errorf("invalid quarter %q: want Q1-2025 .. Q4-2025", label)
	}
	startMonth := time.Month((q-1)*3 + 1)
	start := NewDate(year, startMonth, 1)
	end := start.AddMonths(3).AddDays(-1)
	return Period{Label: fmt.Sprintf("Q%d-%d", q, year), Start: start, End: end}, nil
}

// ParseMonth accepts "2025-07".
func ParseMonth(label string) (Period, error) {
	t, err := time.Parse("2006-01", label)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q: want 2025-07", label)
	}
	start := NewDate(t.Year(), t.Month(), 1)
	end := start.AddMonths(1).AddDays(-1)
	return Period{Label: start.Time.Format("2006-01"), Start: start, End: end}, nil
}

// MonthLabel returns the canonical "2006-01" label for the month containing d.
func MonthLabel(d Date) string { return d.Time.Format("2006-01") }
