/*
commission.go - Monthly per-order commission calculator

PURPOSE:
  Prices one qualifying order: resolve the customer's status, pick a rate
  from the matrix (or a documented default), apply line exclusions to the
  commission base, and handle transferred accounts through the rep-transfer
  rule.

BASE VALUE:
  The base starts from the order value (or recognized revenue, per config)
  and removes flagged shipping and card-fee lines when the exclusions are
  on. Negative lines (credits, refunds) always reduce the base; the
  exclusion filters never remove a negative line.

TRANSFERRED ACCOUNTS:
  When the transfer rule is enabled and the account is transferred, the
  percent candidate is PercentFallback or the segment rate (greatest when
  UseGreater). A configured flat fee competes with the percent by the
  DOLLAR amount it yields, not by comparing a fee to a percent.

SEE ALSO:
  - rates.go: Rate table, defaults, special rules
  - status.go: Status classification
  - spiff.go: Line-level incentives added on top
*/
package comp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MonthlyCommissionCalculator prices orders against a rate configuration.
// Pure: all inputs arrive as arguments.
type MonthlyCommissionCalculator struct {
	Config RateConfig
}

// OrderContext is everything resolved about one order before pricing.
// The run orchestrator assembles it; resolution failures there become
// DataGapErrors before the calculator is reached.
type OrderContext struct {
	Order        Order
	Rep          Rep
	Customer     Customer
	OrderHistory []Date // the customer's full order date history
}

// Calculate prices one order for one month. The entry ID derives from
// (rep, month, order) so a re-run regenerates identical records.
func (calc *MonthlyCommissionCalculator) Calculate(runID RunID, month string, ctx OrderContext) ComputedCommissionEntry {
	base := EligibleOrderValue(ctx.Order, calc.Config.Rules)
	status := calc.resolveStatus(ctx)

	rate, source := calc.resolveRate(ctx.Rep.Title, ctx.Customer.Segment, status)
	earned := Amount{Value: base.Value.Mul(rate).Div(hundred), Unit: UnitDollars}

	if status == StatusTransferred && calc.Config.SpecialRules.RepTransfer.Enabled {
		rule := calc.Config.SpecialRules.RepTransfer
		rate = rule.CandidatePercent(ctx.Customer.Segment)
		source = RateTransferRule
		earned = Amount{Value: base.Value.Mul(rate).Div(hundred), Unit: UnitDollars}
		if rule.UseGreater && rule.FlatFee.IsPositive() && rule.FlatFee.GreaterThan(earned) {
			earned = rule.FlatFee
		}
	}

	return ComputedCommissionEntry{
		ID:          commissionEntryID(ctx.Rep.ID, month, ctx.Order.ID),
		RunID:       runID,
		Month:       month,
		RepID:       ctx.Rep.ID,
		OrderID:     ctx.Order.ID,
		OrderNumber: ctx.Order.Number,
		CustomerID:  ctx.Customer.ID,
		Segment:     ctx.Customer.Segment,
		Status:      status,
		Base:        base,
		Rate:        rate,
		RateSource:  source,
		Commission:  earned,
	}
}

// resolveStatus honors the manual override before consulting the
// classifier. "own" suppresses the reorg transfer rule but tenure still
// decides the tier; "transferred" forces the transfer pricing path.
func (calc *MonthlyCommissionCalculator) resolveStatus(ctx OrderContext) CustomerStatus {
	in := ClassifyInput{
		OrderDates:                ctx.OrderHistory,
		AssignedAt:                ctx.Customer.AssignedAt,
		AsOf:                      ctx.Order.Date,
		ApplyReorg:                calc.Config.Rules.ApplyReorgRule,
		ReorgDate:                 calc.Config.Rules.ReorgDate,
		InactivityThresholdMonths: calc.Config.SpecialRules.InactivityThresholdMonths,
	}

	switch ctx.Customer.TransferOverride {
	case OverrideTransferred:
		return StatusTransferred
	case OverrideOwn:
		in.ApplyReorg = false
	}
	return ClassifyCustomerStatus(in)
}

func (calc *MonthlyCommissionCalculator) resolveRate(title Title, segment Segment, status CustomerStatus) (decimal.Decimal, RateSource) {
	return calc.Config.Table.Lookup(title, segment, status)
}

// EligibleOrderValue computes the commission base for an order.
// Flagged shipping/card-fee lines are removed only when the corresponding
// exclusion is on AND the line value is positive: credits always count.
func EligibleOrderValue(order Order, rules CommissionRules) Amount {
	base := order.OrderValue
	if !rules.UseOrderValue {
		base = order.Revenue
	}

	for _, line := range order.Lines {
		if line.Value.IsNegative() {
			continue
		}
		if rules.ExcludeShipping && line.IsShipping {
			base = base.Sub(line.Value)
		} else if rules.ExcludeCCProcessing && line.IsCardFee {
			base = base.Sub(line.Value)
		}
	}
	return base
}

func commissionEntryID(rep RepID, month string, order OrderID) string {
	return fmt.Sprintf("%s_%s_%s", rep, month, order)
}
