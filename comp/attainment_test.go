package comp

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// =============================================================================
// ATTAINMENT - FLOOR AND CAP
// =============================================================================

func TestAttainment_BelowFloorIsCliff(t *testing.T) {
	// GIVEN: floor 0.75, cap 1.25
	// WHEN: actual is half the goal
	// THEN: attainment is zero, not 0.50

	got := Attainment(d(50), d(100), d(0.75), d(1.25))
	if !got.IsZero() {
		t.Errorf("expected 0 below the floor, got %v", got)
	}
}

func TestAttainment_WithinBandIsRaw(t *testing.T) {
	// GIVEN: floor 0.75, cap 1.25
	// WHEN: actual is 80 against goal 100
	// THEN: attainment is exactly 0.80

	got := Attainment(d(80), d(100), d(0.75), d(1.25))
	if !got.Equal(d(0.80)) {
		t.Errorf("expected 0.80, got %v", got)
	}
}

func TestAttainment_AboveCapIsCapped(t *testing.T) {
	// GIVEN: floor 0.75, cap 1.25
	// WHEN: actual is double the goal
	// THEN: attainment is capped at 1.25

	got := Attainment(d(200), d(100), d(0.75), d(1.25))
	if !got.Equal(d(1.25)) {
		t.Errorf("expected cap 1.25, got %v", got)
	}
}

func TestAttainment_ExactFloorPasses(t *testing.T) {
	// The floor is inclusive: raw == floor is in the band.
	got := Attainment(d(75), d(100), d(0.75), d(1.25))
	if !got.Equal(d(0.75)) {
		t.Errorf("expected 0.75 at the floor, got %v", got)
	}
}

func TestAttainment_ZeroGoalYieldsZero(t *testing.T) {
	// GIVEN: a goal of zero (unset)
	// WHEN: any actual
	// THEN: zero attainment, never a division blow-up

	if got := Attainment(d(500), decimal.Zero, d(0.75), d(1.25)); !got.IsZero() {
		t.Errorf("expected 0 for zero goal, got %v", got)
	}
	if got := Attainment(d(500), d(-100), d(0.75), d(1.25)); !got.IsZero() {
		t.Errorf("expected 0 for negative goal, got %v", got)
	}
}

func TestAttainment_ZeroActualIsZero(t *testing.T) {
	got := Attainment(decimal.Zero, d(100), d(0.75), d(1.25))
	if !got.IsZero() {
		t.Errorf("expected 0 for zero actual, got %v", got)
	}
}

// =============================================================================
// SUB-GOAL AGGREGATION
// =============================================================================

func TestAggregateSubGoals_WeightedSumOfRawRatios(t *testing.T) {
	// GIVEN: two sub-goals, one at 200% and one at 40%, equal weights
	// WHEN: aggregating
	// THEN: 2.0*0.5 + 0.4*0.5 = 1.20 (no per-row floor or cap)

	results := []SubGoalResult{
		{Key: "a", Raw: d(2.0), SubWeight: d(0.5)},
		{Key: "b", Raw: d(0.4), SubWeight: d(0.5)},
	}
	got := AggregateSubGoals(results)
	if !got.Equal(d(1.20)) {
		t.Errorf("expected 1.20, got %v", got)
	}
}

func TestAggregateSubGoals_StrongCarriesWeakOverFloor(t *testing.T) {
	// GIVEN: one sub-goal far over, one far under
	// WHEN: the aggregate is bounded at the bucket level
	// THEN: the weak sub-goal did not zero out the bucket

	results := []SubGoalResult{
		{Key: "hot", Raw: d(1.8), SubWeight: d(0.5)},
		{Key: "cold", Raw: d(0.1), SubWeight: d(0.5)},
	}
	agg := AggregateSubGoals(results) // 0.95
	got := BoundAttainment(agg, d(0.75), d(1.25))
	if !got.Equal(d(0.95)) {
		t.Errorf("expected 0.95, got %v", got)
	}
}

func TestAggregateSubGoals_Empty(t *testing.T) {
	if got := AggregateSubGoals(nil); !got.IsZero() {
		t.Errorf("expected 0 for no sub-goals, got %v", got)
	}
}
