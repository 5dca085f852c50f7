/*
attainment.go - Goal attainment with performance floor and cap

PURPOSE:
  Attainment is the ratio of actual to goal, bounded by two policy knobs:

    raw = actual / goal
    raw <  minAttainment  -> 0        (the floor is a cliff, not a clamp)
    raw >  overPerfCap    -> cap
    otherwise             -> raw

  The cliff is deliberate: a rep below the minimum earns nothing for that
  bucket, not a scaled-down payout.

EXAMPLE (floor 0.75, cap 1.25):
  actual=50,  goal=100 -> raw 0.50 -> 0
  actual=80,  goal=100 -> raw 0.80 -> 0.80
  actual=200, goal=100 -> raw 2.00 -> 1.25

SEE ALSO:
  - bonus.go: Applies attainment per bucket, then weights and scales
*/
package comp

import "github.com/shopspring/decimal"

// Attainment computes floored-and-capped goal attainment.
// A goal of zero or less yields zero attainment: an unset goal never
// produces an unbounded or negative ratio.
func Attainment(actual, goal, minAttainment, overPerfCap decimal.Decimal) decimal.Decimal {
	raw := RawAttainment(actual, goal)
	return BoundAttainment(raw, minAttainment, overPerfCap)
}

// RawAttainment is actual/goal with the zero-goal guard and no bounds.
// Sub-goal aggregation needs the unbounded ratio.
func RawAttainment(actual, goal decimal.Decimal) decimal.Decimal {
	if goal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return actual.Div(goal)
}

// BoundAttainment applies the cliff floor and the cap to a raw ratio.
func BoundAttainment(raw, minAttainment, overPerfCap decimal.Decimal) decimal.Decimal {
	if raw.LessThan(minAttainment) {
		return decimal.Zero
	}
	if raw.GreaterThan(overPerfCap) {
		return overPerfCap
	}
	return raw
}

// SubGoalResult is one sub-goal's contribution to its bucket.
type SubGoalResult struct {
	Key       string
	Goal      Amount
	Actual    Amount
	Raw       decimal.Decimal // unbounded actual/goal
	SubWeight decimal.Decimal
}

// AggregateSubGoals combines sub-goal ratios into a single bucket-level
// raw attainment: sum of raw ratio times sub-weight. Floor and cap are NOT
// applied here. They apply once, to the aggregate, in the bonus calculator:
// one strong sub-goal may carry a weak one over the floor.
func AggregateSubGoals(results []SubGoalResult) decimal.Decimal {
	agg := decimal.Zero
	for _, r := range results {
		agg = agg.Add(r.Raw.Mul(r.SubWeight))
	}
	return agg
}
