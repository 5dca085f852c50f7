/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON plan and rule definitions into comp configuration structs.
  This enables plan changes without code changes - sales ops can define a
  quarter's bonus plan and the rate rules in JSON, and the factory builds
  the typed configuration with defaults applied.

WHY JSON?
  - Non-developers can modify plans
  - Easy integration with admin UI
  - Version control for plan definitions
  - Database storage of plan configs

JSON SCHEMA (bonus plan):
  {
    "quarter": "Q3-2025",
    "max_bonus_per_rep": 25000,
    "min_attainment": 0.75,
    "over_perf_cap": 1.25,
    "buckets": [
      {"code": "A", "name": "Revenue", "weight": 0.4, "active": true},
      {"code": "B", "name": "New Products", "weight": 0.3,
       "has_sub_goals": true, "active": true}
    ],
    "product_sub_goals": {
      "B": [{"sku": "WIDGET-X", "target_percent": 60, "sub_weight": 0.5, "active": true}]
    },
    "role_scales": [{"title": "Account Executive", "percentage": 0.85}],
    "budgets": [{"title": "Account Executive", "goals": {"A": 400000}}]
  }

KEY FEATURES:
  - Validates JSON structure
  - Applies the canonical defaults (comp.Normalize*)
  - Omitted role scales and budgets fall back to the standard titles

USAGE:
  f := factory.New()
  cfg, err := f.ParseBonusConfig(jsonStr)
  rateCfg, err := f.ParseRateConfig(jsonStr)

SEE ALSO:
  - comp/bonus.go: BonusConfig definition
  - comp/rates.go: RateConfig definition
  - comp/normalize.go: The defaulting policy
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/keystone/comp-engine/comp"
	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES - Bonus plan
// =============================================================================

// BonusConfigJSON is the JSON representation of a quarterly bonus plan.
type BonusConfigJSON struct {
	Quarter          string                           `json:"quarter"`
	MaxBonusPerRep   *float64                         `json:"max_bonus_per_rep,omitempty"`
	MinAttainment    *float64                         `json:"min_attainment,omitempty"`
	OverPerfCap      *float64                         `json:"over_perf_cap,omitempty"`
	Buckets          []BucketJSON                     `json:"buckets"`
	ProductSubGoals  map[string][]ProductSubGoalJSON  `json:"product_sub_goals,omitempty"`
	ActivitySubGoals map[string][]ActivitySubGoalJSON `json:"activity_sub_goals,omitempty"`
	RoleScales       []RoleScaleJSON                  `json:"role_scales,omitempty"`
	Budgets          []BudgetJSON                     `json:"budgets,omitempty"`
}

type BucketJSON struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	HasSubGoals bool    `json:"has_sub_goals,omitempty"`
	Active      *bool   `json:"active,omitempty"` // default true
}

type ProductSubGoalJSON struct {
	SKU           string  `json:"sku"`
	TargetPercent float64 `json:"target_percent"`
	SubWeight     float64 `json:"sub_weight"`
	Active        *bool   `json:"active,omitempty"`
}

type ActivitySubGoalJSON struct {
	Activity  string  `json:"activity"`
	Goal      float64 `json:"goal"`
	SubWeight float64 `json:"sub_weight"`
	Active    *bool   `json:"active,omitempty"`
}

type RoleScaleJSON struct {
	Title      string  `json:"title"`
	Percentage float64 `json:"percentage"`
}

type BudgetJSON struct {
	Title string             `json:"title"`
	Goals map[string]float64 `json:"goals"`
}

// =============================================================================
// JSON SCHEMA TYPES - Rate configuration
// =============================================================================

// RateConfigJSON is the JSON representation of the rate matrix, the
// special rules, and the commission rules in one document.
type RateConfigJSON struct {
	Rates        []RateEntryJSON      `json:"rates,omitempty"`
	SpecialRules *SpecialRulesJSON    `json:"special_rules,omitempty"`
	Rules        *CommissionRulesJSON `json:"rules,omitempty"`
}

type RateEntryJSON struct {
	Title   string  `json:"title"`
	Segment string  `json:"segment"`
	Status  string  `json:"status"`
	Rate    float64 `json:"rate"`
}

type SpecialRulesJSON struct {
	RepTransfer               *RepTransferJSON `json:"rep_transfer,omitempty"`
	InactivityThresholdMonths *int             `json:"inactivity_threshold_months,omitempty"`
}

type RepTransferJSON struct {
	Enabled         *bool              `json:"enabled,omitempty"`
	FlatFee         float64            `json:"flat_fee,omitempty"`
	PercentFallback *float64           `json:"percent_fallback,omitempty"`
	UseGreater      *bool              `json:"use_greater,omitempty"`
	SegmentRates    map[string]float64 `json:"segment_rates,omitempty"`
}

type CommissionRulesJSON struct {
	ExcludeShipping     *bool  `json:"exclude_shipping,omitempty"`
	ExcludeCCProcessing *bool  `json:"exclude_cc_processing,omitempty"`
	UseOrderValue       *bool  `json:"use_order_value,omitempty"`
	ApplyReorgRule      *bool  `json:"apply_reorg_rule,omitempty"`
	ReorgDate           string `json:"reorg_date,omitempty"`
}

// SpiffJSON is the JSON representation of one spiff definition.
type SpiffJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ProductKey string  `json:"product_key"`
	Type       string  `json:"type"` // flat, percentage
	Value      float64 `json:"value"`
	StartDate  string  `json:"start_date,omitempty"`
	EndDate    string  `json:"end_date,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON configuration to comp structs.
type Factory struct{}

func New() *Factory {
	return &Factory{}
}

// ParseBonusConfig parses a JSON bonus plan and applies defaults.
// The result is normalized but NOT weight-validated; the caller decides
// whether an invalid-weight config may be saved (it may not).
func (f *Factory) ParseBonusConfig(jsonStr string) (*comp.BonusConfig, error) {
	var cj BonusConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse bonus config JSON: %w", err)
	}
	return f.BonusConfigFromJSON(cj)
}

// BonusConfigFromJSON builds a typed config from the decoded form.
func (f *Factory) BonusConfigFromJSON(cj BonusConfigJSON) (*comp.BonusConfig, error) {
	if cj.Quarter == "" {
		return nil, fmt.Errorf("bonus config requires a quarter")
	}
	if _, err := comp.ParseQuarter(cj.Quarter); err != nil {
		return nil, err
	}

	cfg := &comp.BonusConfig{
		Quarter:          cj.Quarter,
		ProductSubGoals:  map[string][]comp.ProductSubGoal{},
		ActivitySubGoals: map[string][]comp.ActivitySubGoal{},
	}
	if cj.MaxBonusPerRep != nil {
		cfg.MaxBonusPerRep = comp.Dollars(*cj.MaxBonusPerRep)
	}
	if cj.MinAttainment != nil {
		cfg.MinAttainment = decimal.NewFromFloat(*cj.MinAttainment)
	}
	if cj.OverPerfCap != nil {
		cfg.OverPerfCap = decimal.NewFromFloat(*cj.OverPerfCap)
	}

	for _, bj := range cj.Buckets {
		if bj.Code == "" {
			return nil, fmt.Errorf("bucket requires a code")
		}
		cfg.Buckets = append(cfg.Buckets, comp.Bucket{
			Code:        bj.Code,
			Name:        bj.Name,
			Weight:      decimal.NewFromFloat(bj.Weight),
			HasSubGoals: bj.HasSubGoals,
			Active:      boolOrTrue(bj.Active),
		})
	}

	for code, sgs := range cj.ProductSubGoals {
		for _, sg := range sgs {
			cfg.ProductSubGoals[code] = append(cfg.ProductSubGoals[code], comp.ProductSubGoal{
				SKU:           sg.SKU,
				TargetPercent: decimal.NewFromFloat(sg.TargetPercent),
				SubWeight:     decimal.NewFromFloat(sg.SubWeight),
				Active:        boolOrTrue(sg.Active),
			})
		}
	}
	for code, sgs := range cj.ActivitySubGoals {
		for _, sg := range sgs {
			cfg.ActivitySubGoals[code] = append(cfg.ActivitySubGoals[code], comp.ActivitySubGoal{
				Activity:  sg.Activity,
				Goal:      decimal.NewFromFloat(sg.Goal),
				SubWeight: decimal.NewFromFloat(sg.SubWeight),
				Active:    boolOrTrue(sg.Active),
			})
		}
	}

	if len(cj.RoleScales) > 0 {
		cfg.RoleScales = map[comp.Title]comp.RoleScale{}
		for _, rs := range cj.RoleScales {
			title := comp.Title(rs.Title)
			cfg.RoleScales[title] = comp.RoleScale{
				Title:      title,
				Percentage: decimal.NewFromFloat(rs.Percentage),
			}
		}
	}
	if len(cj.Budgets) > 0 {
		cfg.Budgets = map[comp.Title]comp.Budget{}
		for _, b := range cj.Budgets {
			title := comp.Title(b.Title)
			goals := map[string]decimal.Decimal{}
			for code, g := range b.Goals {
				goals[code] = decimal.NewFromFloat(g)
			}
			cfg.Budgets[title] = comp.Budget{Title: title, Goals: goals}
		}
	}

	return comp.NormalizeBonusConfig(cfg), nil
}

// ParseRateConfig parses the JSON rate document and applies defaults.
func (f *Factory) ParseRateConfig(jsonStr string) (*comp.RateConfig, error) {
	var rj RateConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return nil, fmt.Errorf("failed to parse rate config JSON: %w", err)
	}
	return f.RateConfigFromJSON(rj)
}

// RateConfigFromJSON builds a typed rate config from the decoded form.
func (f *Factory) RateConfigFromJSON(rj RateConfigJSON) (*comp.RateConfig, error) {
	var entries []comp.RateEntry
	for _, e := range rj.Rates {
		entries = append(entries, comp.RateEntry{
			Title:   comp.Title(e.Title),
			Segment: comp.Segment(e.Segment),
			Status:  comp.CustomerStatus(e.Status),
			Rate:    decimal.NewFromFloat(e.Rate),
		})
	}

	special := comp.DefaultSpecialRules()
	if rj.SpecialRules != nil {
		if rj.SpecialRules.InactivityThresholdMonths != nil {
			special.InactivityThresholdMonths = *rj.SpecialRules.InactivityThresholdMonths
		}
		if rt := rj.SpecialRules.RepTransfer; rt != nil {
			if rt.Enabled != nil {
				special.RepTransfer.Enabled = *rt.Enabled
			}
			special.RepTransfer.FlatFee = comp.Dollars(rt.FlatFee)
			if rt.PercentFallback != nil {
				special.RepTransfer.PercentFallback = decimal.NewFromFloat(*rt.PercentFallback)
			}
			if rt.UseGreater != nil {
				special.RepTransfer.UseGreater = *rt.UseGreater
			}
			if len(rt.SegmentRates) > 0 {
				special.RepTransfer.SegmentRates = map[comp.Segment]decimal.Decimal{}
				for seg, rate := range rt.SegmentRates {
					special.RepTransfer.SegmentRates[comp.Segment(seg)] = decimal.NewFromFloat(rate)
				}
			}
		}
	}

	rules := comp.DefaultCommissionRules()
	if rj.Rules != nil {
		if rj.Rules.ExcludeShipping != nil {
			rules.ExcludeShipping = *rj.Rules.ExcludeShipping
		}
		if rj.Rules.ExcludeCCProcessing != nil {
			rules.ExcludeCCProcessing = *rj.Rules.ExcludeCCProcessing
		}
		if rj.Rules.UseOrderValue != nil {
			rules.UseOrderValue = *rj.Rules.UseOrderValue
		}
		if rj.Rules.ApplyReorgRule != nil {
			rules.ApplyReorgRule = *rj.Rules.ApplyReorgRule
		}
		if rj.Rules.ReorgDate != "" {
			d, err := comp.ParseDate(rj.Rules.ReorgDate)
			if err != nil {
				return nil, err
			}
			rules.ReorgDate = d
		}
	}

	return comp.NormalizeRateConfig(&comp.RateConfig{
		Table:        comp.NewRateTable(entries),
		SpecialRules: special,
		Rules:        rules,
	}), nil
}

// ParseSpiff parses one spiff definition.
func (f *Factory) ParseSpiff(jsonStr string) (comp.Spiff, error) {
	var sj SpiffJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return comp.Spiff{}, fmt.Errorf("failed to parse spiff JSON: %w", err)
	}
	return f.SpiffFromJSON(sj)
}

// SpiffFromJSON builds a typed spiff from the decoded form.
func (f *Factory) SpiffFromJSON(sj SpiffJSON) (comp.Spiff, error) {
	if sj.ID == "" || sj.ProductKey == "" {
		return comp.Spiff{}, fmt.Errorf("spiff requires id and product_key")
	}
	t := comp.IncentiveType(sj.Type)
	if t != comp.IncentiveFlat && t != comp.IncentivePercentage {
		return comp.Spiff{}, fmt.Errorf("unknown spiff type %q", sj.Type)
	}

	sp := comp.Spiff{
		ID:         sj.ID,
		Name:       sj.Name,
		ProductKey: sj.ProductKey,
		Type:       t,
		Value:      decimal.NewFromFloat(sj.Value),
		Active:     boolOrTrue(sj.Active),
	}
	if sj.StartDate != "" {
		d, err := comp.ParseDate(sj.StartDate)
		if err != nil {
			return comp.Spiff{}, err
		}
		sp.StartDate = d
	}
	if sj.EndDate != "" {
		d, err := comp.ParseDate(sj.EndDate)
		if err != nil {
			return comp.Spiff{}, err
		}
		sp.EndDate = d
	}
	return sp, nil
}

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
