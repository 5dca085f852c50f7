/*
rates.go - Commission rate matrix and special rules

PURPOSE:
  The monthly commission rate for an order comes from a three-axis lookup:
  rep title x customer segment x customer status. A configured entry wins;
  a missing entry falls back to a documented default by (status, segment)
  so a partially-configured matrix still prices every order, and reports
  can show which rates were defaulted.

DEFAULT RATES (percent, by status then segment):
  new_business:    distributor 8.0, wholesale 10.0
  6_month_active:  distributor 5.0, wholesale 7.0
  12_month_active: distributor 3.0, wholesale 5.0
  transferred:     2.0 flat, both segments

SEE ALSO:
  - commission.go: Applies the lookup, exclusions, and the transfer rule
  - status.go: Produces the status axis
*/
package comp

import "github.com/shopspring/decimal"

// =============================================================================
// RATE TABLE
// =============================================================================

// RateEntry is one configured cell of the rate matrix. Rate is a percent
// (10.0 means 10%).
type RateEntry struct {
	Title   Title
	Segment Segment
	Status  CustomerStatus
	Rate    decimal.Decimal
}

// RateTable holds configured entries keyed for O(1) lookup.
type RateTable struct {
	entries map[rateKey]decimal.Decimal
}

type rateKey struct {
	Title   Title
	Segment Segment
	Status  CustomerStatus
}

func NewRateTable(entries []RateEntry) *RateTable {
	t := &RateTable{entries: make(map[rateKey]decimal.Decimal, len(entries))}
	for _, e := range entries {
		t.entries[rateKey{e.Title, e.Segment, e.Status}] = e.Rate
	}
	return t
}

// Entries returns the configured cells in unspecified order.
func (t *RateTable) Entries() []RateEntry {
	out := make([]RateEntry, 0, len(t.entries))
	for k, rate := range t.entries {
		out = append(out, RateEntry{Title: k.Title, Segment: k.Segment, Status: k.Status, Rate: rate})
	}
	return out
}

// Lookup returns the rate percent for the cell and where it came from.
func (t *RateTable) Lookup(title Title, segment Segment, status CustomerStatus) (decimal.Decimal, RateSource) {
	if t != nil && t.entries != nil {
		if rate, ok := t.entries[rateKey{title, segment, status}]; ok {
			return rate, RateConfigured
		}
	}
	return DefaultRate(segment, status), RateDefault
}

// DefaultRate is the documented fallback by (status, segment). Title does
// not vary the defaults. Unknown combinations return zero rather than
// guessing.
func DefaultRate(segment Segment, status CustomerStatus) decimal.Decimal {
	switch status {
	case StatusNewBusiness:
		return pick(segment, 8.0, 10.0)
	case Status6MonthActive:
		return pick(segment, 5.0, 7.0)
	case Status12MonthActive:
		return pick(segment, 3.0, 5.0)
	case StatusTransferred:
		return decimal.NewFromFloat(2.0)
	default:
		return decimal.Zero
	}
}

func pick(segment Segment, distributor, wholesale float64) decimal.Decimal {
	if segment == SegmentWholesale {
		return decimal.NewFromFloat(wholesale)
	}
	return decimal.NewFromFloat(distributor)
}

// =============================================================================
// SPECIAL RULES
// =============================================================================

// RepTransferRule prices transferred accounts. When UseGreater is set, the
// candidate percent is max(PercentFallback, SegmentRates[segment]); the
// flat fee then competes by resulting dollar amount in the calculator.
type RepTransferRule struct {
	Enabled         bool
	FlatFee         Amount
	PercentFallback decimal.Decimal
	UseGreater      bool
	SegmentRates    map[Segment]decimal.Decimal
}

// CandidatePercent resolves the percent side of the transfer rule.
func (r RepTransferRule) CandidatePercent(segment Segment) decimal.Decimal {
	if !r.UseGreater {
		return r.PercentFallback
	}
	if sr, ok := r.SegmentRates[segment]; ok && sr.GreaterThan(r.PercentFallback) {
		return sr
	}
	return r.PercentFallback
}

// SpecialRules are the cross-cutting rate policies.
type SpecialRules struct {
	RepTransfer               RepTransferRule
	InactivityThresholdMonths int
}

// CommissionRules are the order-level eligibility and base-value knobs.
type CommissionRules struct {
	ExcludeShipping     bool
	ExcludeCCProcessing bool
	UseOrderValue       bool // true: commission on order value; false: on revenue
	ApplyReorgRule      bool
	ReorgDate           Date
}

// RateConfig is the complete rate-side configuration snapshot a month
// close runs against.
type RateConfig struct {
	Table        *RateTable
	SpecialRules SpecialRules
	Rules        CommissionRules
}
