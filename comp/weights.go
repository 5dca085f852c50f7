package comp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// WEIGHT VALIDATION - Every weight group must sum to 1.0
// =============================================================================

// WeightTolerance absorbs representation noise in configured weights.
// The deviation from 1.0 must be strictly below it.
var WeightTolerance = decimal.NewFromFloat(0.001)

var (
	weightTarget = decimal.NewFromInt(1)
	percentScale = decimal.NewFromInt(100)
)

// ValidateWeightsSum checks that the weights sum to 1.0 within tolerance.
// An empty group fails: its sum is 0, so a group needs at least one
// active entry before it can validate. Deactivating every bucket or
// sub-goal is a config error, not a shortcut.
func ValidateWeightsSum(weights []decimal.Decimal) bool {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return sum.Sub(weightTarget).Abs().LessThan(WeightTolerance)
}

// ValidateWeights checks every weight group in the config: the active
// bucket weights, the active sub-goal weights within each bucket that
// has them, and the target percentages of the active product sub-goals
// (which split the bucket goal and must cover it independently of the
// sub-weights). Returns the first failing group as a WeightSumError.
//
// Inactive buckets and sub-goals are excluded before summing; toggling a
// bucket off without redistributing weight is a validation failure the
// user must resolve.
func (c *BonusConfig) ValidateWeights() error {
	var bucketWeights []decimal.Decimal
	for _, b := range c.Buckets {
		if !b.Active {
			continue
		}
		bucketWeights = append(bucketWeights, b.Weight)
	}
	if !ValidateWeightsSum(bucketWeights) {
		return &WeightSumError{Group: "buckets", Sum: sumOf(bucketWeights)}
	}

	for _, b := range c.Buckets {
		if !b.Active || !b.HasSubGoals {
			continue
		}
		var subWeights []decimal.Decimal
		for _, sg := range c.ProductSubGoals[b.Code] {
			if sg.Active {
				subWeights = append(subWeights, sg.SubWeight)
			}
		}
		for _, sg := range c.ActivitySubGoals[b.Code] {
			if sg.Active {
				subWeights = append(subWeights, sg.SubWeight)
			}
		}
		if !ValidateWeightsSum(subWeights) {
			return &WeightSumError{
				Group: fmt.Sprintf("subgoals:%s", b.Code),
				Sum:   sumOf(subWeights),
			}
		}

		// Target percentages are stored on the 0..100 scale.
		var targets []decimal.Decimal
		for _, sg := range c.ProductSubGoals[b.Code] {
			if sg.Active {
				targets = append(targets, sg.TargetPercent.Div(percentScale))
			}
		}
		if len(targets) > 0 && !ValidateWeightsSum(targets) {
			return &WeightSumError{
				Group: fmt.Sprintf("targetpercent:%s", b.Code),
				Sum:   sumOf(targets),
			}
		}
	}
	return nil
}

func sumOf(weights []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	return sum
}
