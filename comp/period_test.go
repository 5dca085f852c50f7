package comp

import (
	"testing"
	"time"
)

// =============================================================================
// WHOLE MONTH COUNTING
// =============================================================================

func TestWholeMonthsBetween(t *testing.T) {
	cases := []struct {
		name string
		from Date
		to   Date
		want int
	}{
		{"same day", NewDate(2025, time.January, 15), NewDate(2025, time.January, 15), 0},
		{"day before anniversary", NewDate(2025, time.January, 15), NewDate(2025, time.March, 14), 1},
		{"on anniversary", NewDate(2025, time.January, 15), NewDate(2025, time.March, 15), 2},
		{"across year", NewDate(2024, time.November, 1), NewDate(2025, time.February, 1), 3},
		{"to before from", NewDate(2025, time.June, 1), NewDate(2025, time.May, 1), 0},
		{"seven months", NewDate(2025, time.January, 10), NewDate(2025, time.August, 10), 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WholeMonthsBetween(tc.from, tc.to); got != tc.want {
				t.Errorf("WholeMonthsBetween(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

// =============================================================================
// PERIOD PARSING
// =============================================================================

func TestParseQuarter(t *testing.T) {
	// GIVEN: a quarter label
	// WHEN: parsing
	// THEN: the window covers the first to the last day of the quarter

	p, err := ParseQuarter("Q3-2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Start.Equal(NewDate(2025, time.July, 1)) {
		t.Errorf("start = %s, want 2025-07-01", p.Start)
	}
	if !p.End.Equal(NewDate(2025, time.September, 30)) {
		t.Errorf("end = %s, want 2025-09-30", p.End)
	}
	if p.Label != "Q3-2025" {
		t.Errorf("label = %q", p.Label)
	}
}

func TestParseQuarter_Invalid(t *testing.T) {
	for _, label := range []string{"Q5-2025", "Q0-2025", "2025-Q3", "third quarter", ""} {
		if _, err := ParseQuarter(label); err == nil {
			t.Errorf("expected error for %q", label)
		}
	}
}

func TestParseMonth(t *testing.T) {
	p, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Leap year February.
	if !p.End.Equal(NewDate(2024, time.February, 29)) {
		t.Errorf("end = %s, want 2024-02-29", p.End)
	}
	if !p.Contains(NewDate(2024, time.February, 29)) {
		t.Error("period should contain its last day")
	}
	if p.Contains(NewDate(2024, time.March, 1)) {
		t.Error("period should not contain the next month")
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, label := range []string{"2024-13", "07-2025", "July 2025", ""} {
		if _, err := ParseMonth(label); err == nil {
			t.Errorf("expected error for %q", label)
		}
	}
}

// =============================================================================
// DATE JSON ROUND-TRIP
// =============================================================================

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.July, 1)
	raw, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2025-07-01"` {
		t.Errorf("marshal = %s", raw)
	}

	var back Date
	if err := back.UnmarshalJSON(raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip mismatch: %s", back)
	}

	// Zero date encodes as the empty string and decodes back to zero.
	var zero Date
	raw, _ = zero.MarshalJSON()
	if string(raw) != `""` {
		t.Errorf("zero marshal = %s", raw)
	}
	var zback Date
	if err := zback.UnmarshalJSON([]byte(`""`)); err != nil {
		t.Fatalf("zero unmarshal: %v", err)
	}
	if !zback.IsZero() {
		t.Error("expected zero date back")
	}
}
