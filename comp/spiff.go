/*
spiff.go - Product spiff (kicker) incentives

PURPOSE:
  A spiff is a time-boxed incentive on a specific product: a flat dollar
  amount per unit sold, or a percent of the line value. Spiffs stack on
  top of the base commission; they never replace it.

EXAMPLE:
  $200 line at a 5% commission rate plus a flat $16-per-unit spiff
  (quantity 1) pays 10.00 commission + 16.00 spiff = 26.00.

SEE ALSO:
  - commission.go: The base commission spiffs stack onto
  - run.go: Matches active spiffs to order lines during month close
*/
package comp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type IncentiveType string

const (
	IncentiveFlat       IncentiveType = "flat"       // dollars per unit
	IncentivePercentage IncentiveType = "percentage" // percent of line value
)

// Spiff is one incentive definition. Inactive or out-of-window spiffs
// never match.
type Spiff struct {
	ID         string
	Name       string
	ProductKey string
	Type       IncentiveType
	Value      decimal.Decimal // dollars per unit, or percent
	StartDate  Date
	EndDate    Date
	Active     bool
}

// AppliesTo reports whether the spiff matches a product on a given date.
// The window is inclusive on both ends; a zero EndDate means open-ended.
func (s Spiff) AppliesTo(productKey string, date Date) bool {
	if !s.Active || s.ProductKey != productKey {
		return false
	}
	if !s.StartDate.IsZero() && date.Before(s.StartDate) {
		return false
	}
	if !s.EndDate.IsZero() && date.After(s.EndDate) {
		return false
	}
	return true
}

// Earned computes the spiff amount for one order line.
//   flat:       value * quantity
//   percentage: value% of the line value
func (s Spiff) Earned(line OrderLine) Amount {
	switch s.Type {
	case IncentiveFlat:
		return Amount{Value: s.Value.Mul(line.Quantity), Unit: UnitDollars}
	case IncentivePercentage:
		return Amount{Value: line.Value.Value.Mul(s.Value).Div(hundred), Unit: UnitDollars}
	default:
		return Dollars(0)
	}
}

// CalculateSpiffs matches every active spiff against every order line and
// returns one entry per match. Entry IDs derive from
// (rep, month, order, spiff, product) for idempotent re-runs.
func CalculateSpiffs(runID RunID, month string, ctx OrderContext, spiffs []Spiff) []ComputedSpiffEntry {
	var entries []ComputedSpiffEntry
	for _, line := range ctx.Order.Lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) || line.Value.IsNegative() {
			continue
		}
		for _, s := range spiffs {
			if !s.AppliesTo(line.ProductKey, ctx.Order.Date) {
				continue
			}
			entries = append(entries, ComputedSpiffEntry{
				ID:            spiffEntryID(ctx.Rep.ID, month, ctx.Order.ID, s.ID, line.ProductKey),
				RunID:         runID,
				Month:         month,
				RepID:         ctx.Rep.ID,
				OrderID:       ctx.Order.ID,
				OrderNumber:   ctx.Order.Number,
				SpiffID:       s.ID,
				ProductKey:    line.ProductKey,
				Quantity:      line.Quantity,
				LineValue:     line.Value,
				IncentiveType: s.Type,
				Incentive:     s.Value,
				Earned:        s.Earned(line),
			})
		}
	}
	return entries
}

func spiffEntryID(rep RepID, month string, order OrderID, spiff, product string) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s", rep, month, order, spiff, product)
}
