package factory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keystone/comp-engine/comp"
	"github.com/keystone/comp-engine/factory"
)

// =============================================================================
// BONUS PLAN PARSING
// =============================================================================

func TestParseBonusConfig_AppliesDefaults(t *testing.T) {
	f := factory.New()

	cfg, err := f.ParseBonusConfig(`{
		"quarter": "Q3-2025",
		"buckets": [
			{"code": "A", "name": "Revenue", "weight": 0.6},
			{"code": "B", "name": "New Products", "weight": 0.4}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Q3-2025", cfg.Quarter)
	assert.True(t, cfg.MaxBonusPerRep.Value.Equal(decimal.NewFromInt(25000)), "default max bonus")
	assert.True(t, cfg.MinAttainment.Equal(decimal.NewFromFloat(0.75)), "default floor")
	assert.True(t, cfg.OverPerfCap.Equal(decimal.NewFromFloat(1.25)), "default cap")

	// Omitted active flag defaults to true.
	require.Len(t, cfg.Buckets, 2)
	assert.True(t, cfg.Buckets[0].Active)

	// Standard role scales and budgets fill in.
	rs, ok := cfg.RoleScales[comp.TitleAccountExecutive]
	require.True(t, ok)
	assert.True(t, rs.Percentage.Equal(decimal.NewFromFloat(0.85)))
	b, ok := cfg.Budgets[comp.TitleSrAccountExecutive]
	require.True(t, ok)
	assert.True(t, b.Goals["A"].Equal(decimal.NewFromInt(500000)))
}

func TestParseBonusConfig_ExplicitValuesWin(t *testing.T) {
	f := factory.New()

	cfg, err := f.ParseBonusConfig(`{
		"quarter": "Q1-2026",
		"max_bonus_per_rep": 30000,
		"min_attainment": 0.8,
		"buckets": [{"code": "A", "weight": 1.0, "active": false}],
		"role_scales": [{"title": "Account Executive", "percentage": 0.9}]
	}`)
	require.NoError(t, err)

	assert.True(t, cfg.MaxBonusPerRep.Value.Equal(decimal.NewFromInt(30000)))
	assert.True(t, cfg.MinAttainment.Equal(decimal.NewFromFloat(0.8)))
	assert.False(t, cfg.Buckets[0].Active, "explicit active:false must survive")

	rs := cfg.RoleScales[comp.TitleAccountExecutive]
	assert.True(t, rs.Percentage.Equal(decimal.NewFromFloat(0.9)), "configured scale overrides default")
	// Other titles still fall back to defaults.
	assert.True(t, cfg.RoleScales[comp.TitleAccountManager].Percentage.Equal(decimal.NewFromFloat(0.60)))
}

func TestParseBonusConfig_SubGoals(t *testing.T) {
	f := factory.New()

	cfg, err := f.ParseBonusConfig(`{
		"quarter": "Q3-2025",
		"buckets": [{"code": "B", "weight": 1.0, "has_sub_goals": true}],
		"product_sub_goals": {
			"B": [{"sku": "WIDGET-X", "target_percent": 60, "sub_weight": 0.5}]
		},
		"activity_sub_goals": {
			"B": [{"activity": "demos", "goal": 20, "sub_weight": 0.5}]
		}
	}`)
	require.NoError(t, err)

	require.Len(t, cfg.ProductSubGoals["B"], 1)
	sg := cfg.ProductSubGoals["B"][0]
	assert.Equal(t, "WIDGET-X", sg.SKU)
	assert.True(t, sg.TargetPercent.Equal(decimal.NewFromInt(60)))
	assert.True(t, sg.Active)

	require.Len(t, cfg.ActivitySubGoals["B"], 1)
	assert.Equal(t, "demos", cfg.ActivitySubGoals["B"][0].Activity)
}

func TestParseBonusConfig_Rejections(t *testing.T) {
	f := factory.New()

	cases := []struct {
		name string
		json string
	}{
		{"missing quarter", `{"buckets": [{"code": "A", "weight": 1.0}]}`},
		{"bad quarter label", `{"quarter": "2025-Q3", "buckets": []}`},
		{"bucket without code", `{"quarter": "Q3-2025", "buckets": [{"weight": 1.0}]}`},
		{"malformed json", `{"quarter": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ParseBonusConfig(tc.json)
			assert.Error(t, err)
		})
	}
}

// =============================================================================
// RATE CONFIG PARSING
// =============================================================================

func TestParseRateConfig_EmptyDocumentGetsFullDefaults(t *testing.T) {
	f := factory.New()

	cfg, err := f.ParseRateConfig(`{}`)
	require.NoError(t, err)

	assert.Empty(t, cfg.Table.Entries())
	assert.True(t, cfg.SpecialRules.RepTransfer.Enabled)
	assert.True(t, cfg.SpecialRules.RepTransfer.UseGreater)
	assert.True(t, cfg.SpecialRules.RepTransfer.PercentFallback.Equal(decimal.NewFromFloat(2.0)))
	assert.Equal(t, comp.DefaultInactivityThresholdMonths, cfg.SpecialRules.InactivityThresholdMonths)
	assert.True(t, cfg.Rules.ExcludeShipping)
	assert.True(t, cfg.Rules.UseOrderValue)
	assert.True(t, cfg.Rules.ReorgDate.Equal(comp.NewDate(2025, time.July, 1)))
}

func TestParseRateConfig_PartialOverrides(t *testing.T) {
	f := factory.New()

	cfg, err := f.ParseRateConfig(`{
		"rates": [
			{"title": "Account Executive", "segment": "wholesale",
			 "status": "new_business", "rate": 12.5}
		],
		"special_rules": {
			"inactivity_threshold_months": 6,
			"rep_transfer": {"enabled": false}
		},
		"rules": {"exclude_shipping": false, "reorg_date": "2025-08-01"}
	}`)
	require.NoError(t, err)

	rate, src := cfg.Table.Lookup(comp.TitleAccountExecutive, comp.SegmentWholesale, comp.StatusNewBusiness)
	assert.True(t, rate.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, comp.RateConfigured, src)

	assert.Equal(t, 6, cfg.SpecialRules.InactivityThresholdMonths)
	assert.False(t, cfg.SpecialRules.RepTransfer.Enabled, "explicit disable survives")
	assert.True(t, cfg.SpecialRules.RepTransfer.UseGreater, "untouched knobs keep defaults")

	assert.False(t, cfg.Rules.ExcludeShipping)
	assert.True(t, cfg.Rules.ExcludeCCProcessing, "untouched rule keeps default")
	assert.True(t, cfg.Rules.ReorgDate.Equal(comp.NewDate(2025, time.August, 1)))
}

func TestParseRateConfig_BadReorgDate(t *testing.T) {
	f := factory.New()
	_, err := f.ParseRateConfig(`{"rules": {"reorg_date": "08/01/2025"}}`)
	assert.Error(t, err)
}

// =============================================================================
// SPIFF PARSING
// =============================================================================

func TestParseSpiff(t *testing.T) {
	f := factory.New()

	sp, err := f.ParseSpiff(`{
		"id": "spiff-1",
		"name": "Widget push",
		"product_key": "WIDGET",
		"type": "flat",
		"value": 16,
		"start_date": "2025-07-01",
		"end_date": "2025-09-30"
	}`)
	require.NoError(t, err)

	assert.Equal(t, "spiff-1", sp.ID)
	assert.Equal(t, comp.IncentiveFlat, sp.Type)
	assert.True(t, sp.Value.Equal(decimal.NewFromInt(16)))
	assert.True(t, sp.Active, "active defaults to true")
	assert.True(t, sp.StartDate.Equal(comp.NewDate(2025, time.July, 1)))
	assert.True(t, sp.EndDate.Equal(comp.NewDate(2025, time.September, 30)))
}

func TestParseSpiff_Rejections(t *testing.T) {
	f := factory.New()

	cases := []struct {
		name string
		json string
	}{
		{"missing id", `{"product_key": "WIDGET", "type": "flat", "value": 16}`},
		{"missing product", `{"id": "s1", "type": "flat", "value": 16}`},
		{"unknown type", `{"id": "s1", "product_key": "WIDGET", "type": "bonus", "value": 16}`},
		{"bad start date", `{"id": "s1", "product_key": "WIDGET", "type": "flat", "value": 16, "start_date": "July 1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ParseSpiff(tc.json)
			assert.Error(t, err)
		})
	}
}
