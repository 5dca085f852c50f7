package comp

import (
	"testing"
	"time"
)

func julySpiffs() []Spiff {
	return []Spiff{
		{
			ID:         "spiff-flat",
			Name:       "Widget push",
			ProductKey: "WIDGET",
			Type:       IncentiveFlat,
			Value:      d(16),
			StartDate:  NewDate(2025, time.July, 1),
			EndDate:    NewDate(2025, time.September, 30),
			Active:     true,
		},
		{
			ID:         "spiff-pct",
			Name:       "Gadget percent",
			ProductKey: "GADGET",
			Type:       IncentivePercentage,
			Value:      d(5),
			StartDate:  NewDate(2025, time.July, 1),
			Active:     true,
		},
	}
}

// =============================================================================
// SPIFF MATCHING AND PAYOUT
// =============================================================================

func TestSpiffs_StackOnTopOfCommission(t *testing.T) {
	// GIVEN: a $200 gadget line under a 5% spiff and one widget unit under a
	//        flat $16 spiff
	// THEN: 200*5% = 10.00 and 16*1 = 16.00, independent of the base commission

	ctx := wholesaleContext()
	ctx.Order.Lines = []OrderLine{
		{ProductKey: "GADGET", Quantity: d(2), Value: Dollars(200)},
		{ProductKey: "WIDGET", Quantity: d(1), Value: Dollars(350)},
	}

	entries := CalculateSpiffs("run-1", "2025-07", ctx, julySpiffs())
	if len(entries) != 2 {
		t.Fatalf("expected 2 spiff entries, got %d", len(entries))
	}

	byProduct := map[string]ComputedSpiffEntry{}
	for _, e := range entries {
		byProduct[e.ProductKey] = e
	}

	if got := byProduct["GADGET"].Earned.Value; !got.Equal(d(10)) {
		t.Errorf("gadget spiff = %v, want 10", got)
	}
	if got := byProduct["WIDGET"].Earned.Value; !got.Equal(d(16)) {
		t.Errorf("widget spiff = %v, want 16", got)
	}
}

func TestSpiffs_FlatScalesByQuantity(t *testing.T) {
	ctx := wholesaleContext()
	ctx.Order.Lines = []OrderLine{
		{ProductKey: "WIDGET", Quantity: d(5), Value: Dollars(1750)},
	}

	entries := CalculateSpiffs("run-1", "2025-07", ctx, julySpiffs())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Earned.Value.Equal(d(80)) {
		t.Errorf("earned = %v, want 16*5 = 80", entries[0].Earned.Value)
	}
}

func TestSpiffs_WindowIsInclusive(t *testing.T) {
	s := julySpiffs()[0]

	if !s.AppliesTo("WIDGET", NewDate(2025, time.July, 1)) {
		t.Error("start date should match")
	}
	if !s.AppliesTo("WIDGET", NewDate(2025, time.September, 30)) {
		t.Error("end date should match")
	}
	if s.AppliesTo("WIDGET", NewDate(2025, time.June, 30)) {
		t.Error("day before start must not match")
	}
	if s.AppliesTo("WIDGET", NewDate(2025, time.October, 1)) {
		t.Error("day after end must not match")
	}
}

func TestSpiffs_OpenEndedWindow(t *testing.T) {
	// Zero EndDate means no expiry.
	s := julySpiffs()[1]
	if !s.AppliesTo("GADGET", NewDate(2030, time.January, 1)) {
		t.Error("open-ended spiff should match far in the future")
	}
}

func TestSpiffs_InactiveNeverMatches(t *testing.T) {
	s := julySpiffs()[0]
	s.Active = false
	if s.AppliesTo("WIDGET", NewDate(2025, time.July, 15)) {
		t.Error("inactive spiff must not match")
	}
}

func TestSpiffs_SkipsCreditsAndZeroQuantity(t *testing.T) {
	// GIVEN: a returned widget line and a zero-quantity line
	// THEN: neither earns a spiff

	ctx := wholesaleContext()
	ctx.Order.Lines = []OrderLine{
		{ProductKey: "WIDGET", Quantity: d(1), Value: Dollars(-350)},
		{ProductKey: "WIDGET", Quantity: d(0), Value: Dollars(350)},
	}

	entries := CalculateSpiffs("run-1", "2025-07", ctx, julySpiffs())
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestSpiffs_DeterministicEntryID(t *testing.T) {
	ctx := wholesaleContext()
	ctx.Order.Lines = []OrderLine{
		{ProductKey: "WIDGET", Quantity: d(1), Value: Dollars(350)},
	}

	entries := CalculateSpiffs("run-1", "2025-07", ctx, julySpiffs())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "rep-1_2025-07_ord-1_spiff-flat_WIDGET" {
		t.Errorf("entry ID = %q", entries[0].ID)
	}
}
