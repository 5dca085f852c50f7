/*
bonus.go - Quarterly bonus configuration and calculator

PURPOSE:
  A quarter's bonus plan is a set of weighted goal buckets (revenue,
  product mix, activity counts). Each rep's attainment per bucket is
  floored and capped, combined by bucket weight, then scaled by the rep's
  role scale against the per-rep maximum bonus.

KEY CONCEPTS:
  - Bucket: A weighted goal category. Bucket weights sum to 1.0.
  - Sub-goal: Optional breakdown inside a bucket (specific SKUs, specific
    activities). Sub-weights sum to 1.0 within the bucket. Floor and cap
    apply to the aggregated bucket ratio, not per sub-goal.
  - Budget: Goals per title. A rep's goals come from their title's budget,
    overridable per rep.
  - RoleScale: Payout multiplier per title (a junior rep at full attainment
    earns a fraction of the senior maximum).

EXAMPLE:
  maxBonusPerRep=25000, AE scale=0.85, overall attainment 1.0
  -> bonus = 1.0 * 25000 * 0.85 = 21,250.00

CONFIGURATION GAPS:
  A missing role scale or budget for a title is a ConfigError and aborts
  the whole run. Paying at a guessed scale is worse than failing loudly.

SEE ALSO:
  - attainment.go: Floor/cap math and sub-goal aggregation
  - weights.go: Config validation the API enforces on save
  - run.go: Iterates reps and persists statements
*/
package comp

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Bucket is one weighted goal category in a quarter's plan.
type Bucket struct {
	Code        string // stable key, e.g. "REVENUE", "NEW_PRODUCTS"
	Name        string
	Weight      decimal.Decimal
	HasSubGoals bool
	Active      bool
}

// ProductSubGoal targets a share of the bucket goal on a specific product.
// The sub-goal's dollar goal is TargetPercent of the bucket goal.
type ProductSubGoal struct {
	SKU           string
	TargetPercent decimal.Decimal // 0..100
	SubWeight     decimal.Decimal
	Active        bool
}

// ActivitySubGoal targets an absolute count of a tracked activity.
type ActivitySubGoal struct {
	Activity  string // e.g. "demos", "new_accounts"
	Goal      decimal.Decimal
	SubWeight decimal.Decimal
	Active    bool
}

// RoleScale is the payout multiplier for one title.
type RoleScale struct {
	Title      Title
	Percentage decimal.Decimal // 0..1
}

// Budget is the goal set for one title: bucket code -> goal value
// (dollars for revenue buckets, counts for activity buckets).
type Budget struct {
	Title Title
	Goals map[string]decimal.Decimal
}

// BonusConfig is the complete plan for one quarter.
type BonusConfig struct {
	Quarter          string
	MaxBonusPerRep   Amount
	MinAttainment    decimal.Decimal // cliff floor, e.g. 0.75
	OverPerfCap      decimal.Decimal // cap, e.g. 1.25
	Buckets          []Bucket
	ProductSubGoals  map[string][]ProductSubGoal  // bucket code -> sub-goals
	ActivitySubGoals map[string][]ActivitySubGoal // bucket code -> sub-goals
	RoleScales       map[Title]RoleScale
	Budgets          map[Title]Budget
}

func (c *BonusConfig) roleScale(t Title) (decimal.Decimal, error) {
	rs, ok := c.RoleScales[t]
	if !ok {
		return decimal.Zero, &ConfigError{Field: "roleScale", Title: t, Err: ErrRoleScaleMissing}
	}
	return rs.Percentage, nil
}

func (c *BonusConfig) budget(t Title) (Budget, error) {
	b, ok := c.Budgets[t]
	if !ok {
		return Budget{}, &ConfigError{Field: "budget", Title: t, Err: ErrBudgetMissing}
	}
	return b, nil
}

// =============================================================================
// REP ACTUALS - Measured performance for one rep in the quarter
// =============================================================================

// RepActuals carries everything measured about one rep for the quarter.
// GoalOverrides replace the title budget's goal for specific buckets
// (negotiated quotas).
type RepActuals struct {
	RepID           RepID
	Title           Title
	BucketActuals   map[string]decimal.Decimal // bucket code -> actual
	ProductActuals  map[string]decimal.Decimal // sku -> actual dollars
	ActivityActuals map[string]decimal.Decimal // activity -> actual count
	GoalOverrides   map[string]decimal.Decimal // bucket code -> goal
}

func (ra RepActuals) goalFor(bucket string, budget Budget) decimal.Decimal {
	if g, ok := ra.GoalOverrides[bucket]; ok {
		return g
	}
	return budget.Goals[bucket]
}

// =============================================================================
// QUARTERLY BONUS CALCULATOR
// =============================================================================

// QuarterlyBonusCalculator computes one rep's statement from the quarter's
// config. It is pure: no store access, no clock.
type QuarterlyBonusCalculator struct {
	Config *BonusConfig
}

// Calculate produces the full statement for one rep: a bucket-level entry
// per active bucket, a detail entry per active sub-goal, and the scaled
// total. Entry IDs derive from (quarter, rep, bucket) so re-running a
// quarter regenerates identical records.
func (calc *QuarterlyBonusCalculator) Calculate(runID RunID, actuals RepActuals) (*BonusStatement, error) {
	cfg := calc.Config

	scale, err := cfg.roleScale(actuals.Title)
	if err != nil {
		return nil, err
	}
	budget, err := cfg.budget(actuals.Title)
	if err != nil {
		return nil, err
	}

	stmt := &BonusStatement{
		RepID:   actuals.RepID,
		Quarter: cfg.Quarter,
		RunID:   runID,
		Scale:   scale,
	}

	overall := decimal.Zero
	for _, bucket := range cfg.Buckets {
		if !bucket.Active {
			continue
		}

		goal := actuals.goalFor(bucket.Code, budget)
		var bucketAtt decimal.Decimal
		var actual decimal.Decimal
		var details []ComputedBonusEntry

		if bucket.HasSubGoals {
			results := calc.subGoalResults(bucket.Code, goal, actuals)
			bucketAtt = BoundAttainment(AggregateSubGoals(results), cfg.MinAttainment, cfg.OverPerfCap)
			for _, r := range results {
				details = append(details, ComputedBonusEntry{
					ID:         entryID(cfg.Quarter, actuals.RepID, bucket.Code, r.Key),
					RunID:      runID,
					Quarter:    cfg.Quarter,
					RepID:      actuals.RepID,
					BucketCode: bucket.Code,
					SubGoalKey: r.Key,
					Goal:       r.Goal,
					Actual:     r.Actual,
					Attainment: r.Raw,
					Weight:     r.SubWeight,
					Payout:     Dollars(0),
				})
				actual = actual.Add(r.Actual.Value)
			}
		} else {
			actual = actuals.BucketActuals[bucket.Code]
			bucketAtt = Attainment(actual, goal, cfg.MinAttainment, cfg.OverPerfCap)
		}

		contribution := bucketAtt.Mul(bucket.Weight)
		overall = overall.Add(contribution)

		stmt.Entries = append(stmt.Entries, ComputedBonusEntry{
			ID:         entryID(cfg.Quarter, actuals.RepID, bucket.Code, ""),
			RunID:      runID,
			Quarter:    cfg.Quarter,
			RepID:      actuals.RepID,
			BucketCode: bucket.Code,
			Goal:       Amount{Value: goal, Unit: UnitDollars},
			Actual:     Amount{Value: actual, Unit: UnitDollars},
			Attainment: bucketAtt,
			Weight:     bucket.Weight,
			Payout:     cfg.MaxBonusPerRep.Mul(contribution).Mul(scale),
		})
		stmt.Entries = append(stmt.Entries, details...)
	}

	stmt.OverallAttainment = overall
	stmt.Total = cfg.MaxBonusPerRep.Mul(overall).Mul(scale)
	return stmt, nil
}

// subGoalResults computes raw ratios for every active sub-goal of a bucket.
// Product goals are derived from the bucket goal; activity goals are absolute.
// Keys are sorted for deterministic entry ordering.
func (calc *QuarterlyBonusCalculator) subGoalResults(bucketCode string, bucketGoal decimal.Decimal, actuals RepActuals) []SubGoalResult {
	var results []SubGoalResult

	products := append([]ProductSubGoal(nil), calc.Config.ProductSubGoals[bucketCode]...)
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	for _, sg := range products {
		if !sg.Active {
			continue
		}
		goal := bucketGoal.Mul(sg.TargetPercent).Div(decimal.NewFromInt(100))
		actual := actuals.ProductActuals[sg.SKU]
		results = append(results, SubGoalResult{
			Key:       sg.SKU,
			Goal:      Amount{Value: goal, Unit: UnitDollars},
			Actual:    Amount{Value: actual, Unit: UnitDollars},
			Raw:       RawAttainment(actual, goal),
			SubWeight: sg.SubWeight,
		})
	}

	activities := append([]ActivitySubGoal(nil), calc.Config.ActivitySubGoals[bucketCode]...)
	sort.Slice(activities, func(i, j int) bool { return activities[i].Activity < activities[j].Activity })
	for _, sg := range activities {
		if !sg.Active {
			continue
		}
		actual := actuals.ActivityActuals[sg.Activity]
		results = append(results, SubGoalResult{
			Key:       sg.Activity,
			Goal:      Amount{Value: sg.Goal, Unit: UnitCount},
			Actual:    Amount{Value: actual, Unit: UnitCount},
			Raw:       RawAttainment(actual, sg.Goal),
			SubWeight: sg.SubWeight,
		})
	}

	return results
}

func entryID(quarter string, rep RepID, bucket, subKey string) string {
	if subKey == "" {
		return fmt.Sprintf("%s_%s_%s", quarter, rep, bucket)
	}
	return fmt.Sprintf("%s_%s_%s_%s", quarter, rep, bucket, subKey)
}
