package comp

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WEIGHT SUM VALIDATION
// =============================================================================

func TestValidateWeightsSum_Tolerance(t *testing.T) {
	cases := []struct {
		name    string
		weights []decimal.Decimal
		want    bool
	}{
		{"exact", []decimal.Decimal{d(0.5), d(0.3), d(0.2)}, true},
		{"just inside low", []decimal.Decimal{d(0.9995)}, true},
		{"just inside high", []decimal.Decimal{d(1.0005)}, true},
		{"tolerance boundary low", []decimal.Decimal{d(0.999)}, false},
		{"tolerance boundary high", []decimal.Decimal{d(1.001)}, false},
		{"way off", []decimal.Decimal{d(0.5), d(0.3)}, false},
		{"empty set fails", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateWeightsSum(tc.weights); got != tc.want {
				t.Errorf("ValidateWeightsSum(%v) = %v, want %v", tc.weights, got, tc.want)
			}
		})
	}
}

func TestValidateWeights_BucketGroup(t *testing.T) {
	// GIVEN: active bucket weights summing to 0.90
	// WHEN: validating the config
	// THEN: a WeightSumError for the "buckets" group

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "A", Weight: d(0.5), Active: true},
			{Code: "B", Weight: d(0.4), Active: true},
		},
	}

	err := cfg.ValidateWeights()
	if err == nil {
		t.Fatal("expected a weight error")
	}
	var we *WeightSumError
	if !errors.As(err, &we) {
		t.Fatalf("expected WeightSumError, got %T", err)
	}
	if we.Group != "buckets" {
		t.Errorf("expected group buckets, got %q", we.Group)
	}
	if !errors.Is(err, ErrWeightSumInvalid) {
		t.Error("expected errors.Is(err, ErrWeightSumInvalid)")
	}
}

func TestValidateWeights_InactiveBucketExcluded(t *testing.T) {
	// GIVEN: an inactive bucket carrying weight
	// WHEN: the remaining active buckets sum to 1.0
	// THEN: valid; the disabled bucket does not count

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "A", Weight: d(0.6), Active: true},
			{Code: "B", Weight: d(0.4), Active: true},
			{Code: "C", Weight: d(0.3), Active: false},
		},
	}
	if err := cfg.ValidateWeights(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateWeights_AllBucketsInactiveFails(t *testing.T) {
	// GIVEN: every bucket toggled off
	// WHEN: validating
	// THEN: the bucket group fails; a plan with nothing active cannot save

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "A", Weight: d(0.6), Active: false},
			{Code: "B", Weight: d(0.4), Active: false},
		},
	}

	err := cfg.ValidateWeights()
	var we *WeightSumError
	if !errors.As(err, &we) {
		t.Fatalf("expected WeightSumError, got %v", err)
	}
	if we.Group != "buckets" {
		t.Errorf("expected group buckets, got %q", we.Group)
	}
	if !we.Sum.IsZero() {
		t.Errorf("expected reported sum 0, got %v", we.Sum)
	}
}

func TestValidateWeights_SubGoalBucketNeedsActiveSubGoals(t *testing.T) {
	// GIVEN: a sub-goal bucket whose sub-goals are all inactive
	// WHEN: validating
	// THEN: the empty sub-goal group fails rather than silently passing

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "B", Weight: d(1.0), Active: true, HasSubGoals: true},
		},
		ProductSubGoals: map[string][]ProductSubGoal{
			"B": {{SKU: "SKU-1", TargetPercent: d(100), SubWeight: d(1.0), Active: false}},
		},
	}

	err := cfg.ValidateWeights()
	var we *WeightSumError
	if !errors.As(err, &we) {
		t.Fatalf("expected WeightSumError, got %v", err)
	}
	if we.Group != "subgoals:B" {
		t.Errorf("expected group subgoals:B, got %q", we.Group)
	}
}

func TestValidateWeights_SubGoalGroup(t *testing.T) {
	// GIVEN: buckets valid, but bucket B's active sub-goals sum to 0.7
	// WHEN: validating
	// THEN: the error names the failing group "subgoals:B"

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "A", Weight: d(0.6), Active: true},
			{Code: "B", Weight: d(0.4), Active: true, HasSubGoals: true},
		},
		ProductSubGoals: map[string][]ProductSubGoal{
			"B": {
				{SKU: "SKU-1", SubWeight: d(0.5), Active: true},
				{SKU: "SKU-2", SubWeight: d(0.3), Active: false},
			},
		},
		ActivitySubGoals: map[string][]ActivitySubGoal{
			"B": {
				{Activity: "demos", SubWeight: d(0.2), Active: true},
			},
		},
	}

	err := cfg.ValidateWeights()
	var we *WeightSumError
	if !errors.As(err, &we) {
		t.Fatalf("expected WeightSumError, got %v", err)
	}
	if we.Group != "subgoals:B" {
		t.Errorf("expected group subgoals:B, got %q", we.Group)
	}
	if !we.Sum.Equal(d(0.7)) {
		t.Errorf("expected reported sum 0.7, got %v", we.Sum)
	}
}

func TestValidateWeights_MixedSubGoalTypesShareOneGroup(t *testing.T) {
	// Product and activity sub-goals of one bucket validate together.
	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "B", Weight: d(1.0), Active: true, HasSubGoals: true},
		},
		ProductSubGoals: map[string][]ProductSubGoal{
			"B": {{SKU: "SKU-1", TargetPercent: d(100), SubWeight: d(0.6), Active: true}},
		},
		ActivitySubGoals: map[string][]ActivitySubGoal{
			"B": {{Activity: "demos", SubWeight: d(0.4), Active: true}},
		},
	}
	if err := cfg.ValidateWeights(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateWeights_TargetPercentGroup(t *testing.T) {
	// GIVEN: sub-weights summing to 1.0 but target percentages covering
	//        only half the bucket goal
	// WHEN: validating
	// THEN: the target-percent group fails on its own

	cfg := &BonusConfig{
		Buckets: []Bucket{
			{Code: "B", Weight: d(1.0), Active: true, HasSubGoals: true},
		},
		ProductSubGoals: map[string][]ProductSubGoal{
			"B": {
				{SKU: "SKU-1", TargetPercent: d(30), SubWeight: d(0.5), Active: true},
				{SKU: "SKU-2", TargetPercent: d(20), SubWeight: d(0.5), Active: true},
			},
		},
	}

	err := cfg.ValidateWeights()
	var we *WeightSumError
	if !errors.As(err, &we) {
		t.Fatalf("expected WeightSumError, got %v", err)
	}
	if we.Group != "targetpercent:B" {
		t.Errorf("expected group targetpercent:B, got %q", we.Group)
	}
	if !we.Sum.Equal(d(0.5)) {
		t.Errorf("expected reported sum 0.5, got %v", we.Sum)
	}

	// Covering the full goal passes, independently of the sub-weights.
	cfg.ProductSubGoals["B"][0].TargetPercent = d(60)
	cfg.ProductSubGoals["B"][1].TargetPercent = d(40)
	if err := cfg.ValidateWeights(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
