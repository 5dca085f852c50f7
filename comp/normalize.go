/*
normalize.go - Canonical defaults and config normalization

PURPOSE:
  Every configuration knob has exactly one defaulting site: here. The
  factory deserializes partial JSON into pointer-laden intermediate forms,
  then normalization fills the gaps so the calculators never see a
  half-populated config.

  Role scales and budgets ship with defaults for the four standard titles.
  A rep whose title appears in neither the config nor the defaults still
  fails loudly at calculation time; normalization never invents scales for
  unknown titles.
*/
package comp

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEFAULT VALUES
// =============================================================================

const DefaultInactivityThresholdMonths = 12

func DefaultMaxBonusPerRep() Amount        { return Dollars(25000) }
func DefaultMinAttainment() decimal.Decimal { return decimal.NewFromFloat(0.75) }
func DefaultOverPerfCap() decimal.Decimal   { return decimal.NewFromFloat(1.25) }

// DefaultRoleScales returns the standard payout multipliers per title.
func DefaultRoleScales() map[Title]RoleScale {
	return map[Title]RoleScale{
		TitleSrAccountExecutive: {Title: TitleSrAccountExecutive, Percentage: decimal.NewFromFloat(1.00)},
		TitleAccountExecutive:   {Title: TitleAccountExecutive, Percentage: decimal.NewFromFloat(0.85)},
		TitleJrAccountExecutive: {Title: TitleJrAccountExecutive, Percentage: decimal.NewFromFloat(0.70)},
		TitleAccountManager:     {Title: TitleAccountManager, Percentage: decimal.NewFromFloat(0.60)},
	}
}

// DefaultBudgets returns the standard goal sets per title for the four
// standard buckets (A revenue, B new products, C key accounts, D activity
// count).
func DefaultBudgets() map[Title]Budget {
	mk := func(t Title, a, b, c, d float64) Budget {
		return Budget{Title: t, Goals: map[string]decimal.Decimal{
			"A": decimal.NewFromFloat(a),
			"B": decimal.NewFromFloat(b),
			"C": decimal.NewFromFloat(c),
			"D": decimal.NewFromFloat(d),
		}}
	}
	return map[Title]Budget{
		TitleSrAccountExecutive: mk(TitleSrAccountExecutive, 500000, 100000, 300000, 50),
		TitleAccountExecutive:   mk(TitleAccountExecutive, 400000, 80000, 250000, 40),
		TitleJrAccountExecutive: mk(TitleJrAccountExecutive, 300000, 60000, 200000, 30),
		TitleAccountManager:     mk(TitleAccountManager, 250000, 50000, 150000, 25),
	}
}

// DefaultSpecialRules returns the standard transfer pricing and
// inactivity settings.
func DefaultSpecialRules() SpecialRules {
	return SpecialRules{
		RepTransfer: RepTransferRule{
			Enabled:         true,
			FlatFee:         Dollars(0),
			PercentFallback: decimal.NewFromFloat(2.0),
			UseGreater:      true,
			SegmentRates: map[Segment]decimal.Decimal{
				SegmentWholesale:   decimal.NewFromFloat(4.0),
				SegmentDistributor: decimal.NewFromFloat(2.0),
			},
		},
		InactivityThresholdMonths: DefaultInactivityThresholdMonths,
	}
}

// DefaultCommissionRules returns the standard eligibility knobs.
func DefaultCommissionRules() CommissionRules {
	return CommissionRules{
		ExcludeShipping:     true,
		ExcludeCCProcessing: true,
		UseOrderValue:       true,
		ApplyReorgRule:      true,
		ReorgDate:           NewDate(2025, time.July, 1),
	}
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizeBonusConfig fills zero-valued policy knobs and missing scale and
// budget maps with the defaults. Explicitly configured values always win.
func NormalizeBonusConfig(c *BonusConfig) *BonusConfig {
	if c == nil {
		c = &BonusConfig{}
	}
	if c.MaxBonusPerRep.IsZero() {
		c.MaxBonusPerRep = DefaultMaxBonusPerRep()
	}
	if c.MinAttainment.IsZero() {
		c.MinAttainment = DefaultMinAttainment()
	}
	if c.OverPerfCap.IsZero() {
		c.OverPerfCap = DefaultOverPerfCap()
	}
	if c.RoleScales == nil {
		c.RoleScales = map[Title]RoleScale{}
	}
	for t, rs := range DefaultRoleScales() {
		if _, ok := c.RoleScales[t]; !ok {
			c.RoleScales[t] = rs
		}
	}
	if c.Budgets == nil {
		c.Budgets = map[Title]Budget{}
	}
	for t, b := range DefaultBudgets() {
		if _, ok := c.Budgets[t]; !ok {
			c.Budgets[t] = b
		}
	}
	if c.ProductSubGoals == nil {
		c.ProductSubGoals = map[string][]ProductSubGoal{}
	}
	if c.ActivitySubGoals == nil {
		c.ActivitySubGoals = map[string][]ActivitySubGoal{}
	}
	return c
}

// NormalizeRateConfig fills a partial rate configuration. A nil table
// becomes an empty one so every lookup falls through to the defaults.
func NormalizeRateConfig(c *RateConfig) *RateConfig {
	if c == nil {
		c = &RateConfig{}
	}
	if c.Table == nil {
		c.Table = NewRateTable(nil)
	}
	if c.SpecialRules.InactivityThresholdMonths == 0 {
		c.SpecialRules.InactivityThresholdMonths = DefaultInactivityThresholdMonths
	}
	// A nil SegmentRates map marks the transfer rule as never configured;
	// an explicitly disabled rule still carries its rates map.
	if c.SpecialRules.RepTransfer.SegmentRates == nil {
		c.SpecialRules.RepTransfer = DefaultSpecialRules().RepTransfer
	}
	if c.Rules.ReorgDate.IsZero() {
		c.Rules.ReorgDate = DefaultCommissionRules().ReorgDate
	}
	return c
}
