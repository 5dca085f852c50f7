/*
run.go - Period-close orchestration

PURPOSE:
  Runners connect the pure calculators to the store. A run loads a
  configuration snapshot and the period's source records, computes every
  rep's output, and atomically replaces the period's result set.

FAILURE POLICY:
  - Configuration errors (missing role scale, missing budget, invalid
    weights) abort the run. Nothing is written except a failed run record.
  - Data gaps (unknown sales code, unresolvable customer) skip the record
    and surface as anomalies in the run summary. The run completes.
  - Expected exclusions (house orders, e-commerce, retail accounts,
    inactive reps, zero-quantity orders) are counted, not reported as
    anomalies.

SEE ALSO:
  - bonus.go / commission.go / spiff.go: The calculators
  - store.go: The replacement contract runs rely on
*/
package comp

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// =============================================================================
// QUARTER CLOSE
// =============================================================================

// QuarterCloseRunner computes every rep's quarterly bonus and replaces the
// quarter's bonus entry set.
type QuarterCloseRunner struct {
	Store  Store
	Logger *zap.Logger
}

// Run executes a quarter close. The returned summary is also persisted,
// including on failure.
func (r *QuarterCloseRunner) Run(ctx context.Context, quarter string) (RunSummary, error) {
	period, err := ParseQuarter(quarter)
	if err != nil {
		return RunSummary{}, err
	}

	run := RunSummary{
		ID:        RunID(uuid.NewString()),
		Kind:      RunQuarterClose,
		Period:    period.Label,
		Status:    RunCompleted,
		StartedAt: Today(),
	}
	log := r.Logger.With(zap.String("run_id", string(run.ID)), zap.String("quarter", period.Label))
	log.Info("quarter close started")

	cfg, err := r.Store.BonusConfig(ctx, period.Label)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	cfg = NormalizeBonusConfig(cfg)
	if err := cfg.ValidateWeights(); err != nil {
		return r.fail(ctx, run, log, err)
	}

	actuals, err := r.Store.RepActualsForQuarter(ctx, period.Label)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}

	calc := &QuarterlyBonusCalculator{Config: cfg}
	var entries []ComputedBonusEntry
	totalBonus := Dollars(0)
	for _, ra := range actuals {
		stmt, err := calc.Calculate(run.ID, ra)
		if err != nil {
			// Any calculation error here is configuration. Abort.
			return r.fail(ctx, run, log, err)
		}
		entries = append(entries, stmt.Entries...)
		totalBonus = totalBonus.Add(stmt.Total)
		log.Debug("rep bonus computed",
			zap.String("rep", string(ra.RepID)),
			zap.String("attainment", stmt.OverallAttainment.String()),
			zap.String("total", stmt.Total.Value.String()))
	}

	if err := r.Store.ReplaceBonusEntries(ctx, period.Label, entries); err != nil {
		return r.fail(ctx, run, log, err)
	}

	run.EntriesWritten = len(entries)
	run.TotalBonus = totalBonus
	run.CompletedAt = Today()
	if err := r.Store.SaveRun(ctx, run); err != nil {
		return run, err
	}
	log.Info("quarter close completed",
		zap.Int("entries", run.EntriesWritten),
		zap.String("total_bonus", totalBonus.Value.String()))
	return run, nil
}

func (r *QuarterCloseRunner) fail(ctx context.Context, run RunSummary, log *zap.Logger, cause error) (RunSummary, error) {
	run.Status = RunFailed
	run.Error = cause.Error()
	run.CompletedAt = Today()
	if saveErr := r.Store.SaveRun(ctx, run); saveErr != nil {
		log.Error("failed run record not persisted", zap.Error(saveErr))
	}
	log.Error("quarter close failed", zap.Error(cause))
	return run, cause
}

// =============================================================================
// MONTH CLOSE
// =============================================================================

// MonthCloseRunner computes commissions and spiffs for every qualifying
// order in a month and replaces the month's result set.
type MonthCloseRunner struct {
	Store  Store
	Logger *zap.Logger
}

func (r *MonthCloseRunner) Run(ctx context.Context, month string) (RunSummary, error) {
	period, err := ParseMonth(month)
	if err != nil {
		return RunSummary{}, err
	}

	run := RunSummary{
		ID:        RunID(uuid.NewString()),
		Kind:      RunMonthClose,
		Period:    period.Label,
		Status:    RunCompleted,
		StartedAt: Today(),
	}
	log := r.Logger.With(zap.String("run_id", string(run.ID)), zap.String("month", period.Label))
	log.Info("month close started")

	rateCfg, err := r.Store.RateConfig(ctx)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	rateCfg = NormalizeRateConfig(rateCfg)

	spiffs, err := r.Store.Spiffs(ctx)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	reps, err := r.Store.Reps(ctx)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	customers, err := r.Store.Customers(ctx)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	orders, err := r.Store.OrdersInPeriod(ctx, period)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}
	history, err := r.Store.OrderDatesByCustomer(ctx)
	if err != nil {
		return r.fail(ctx, run, log, err)
	}

	repsByCode := make(map[string]Rep, len(reps))
	for _, rep := range reps {
		repsByCode[rep.SalesCode] = rep
	}
	customersByID := make(map[CustomerID]Customer, len(customers))
	for _, c := range customers {
		customersByID[c.ID] = c
	}

	calc := &MonthlyCommissionCalculator{Config: *rateCfg}
	var commissions []ComputedCommissionEntry
	var spiffEntries []ComputedSpiffEntry
	summaries := map[RepID]*RepMonthlySummary{}

	for _, order := range orders {
		ctxOrder, skip := r.resolveOrder(order, repsByCode, customersByID, history, &run)
		if skip {
			continue
		}

		run.OrdersProcessed++
		entry := calc.Calculate(run.ID, period.Label, ctxOrder)
		commissions = append(commissions, entry)
		earned := CalculateSpiffs(run.ID, period.Label, ctxOrder, spiffs)
		spiffEntries = append(spiffEntries, earned...)

		s := summaries[ctxOrder.Rep.ID]
		if s == nil {
			s = &RepMonthlySummary{
				RepID:      ctxOrder.Rep.ID,
				RepName:    ctxOrder.Rep.Name,
				Month:      period.Label,
				Revenue:    Dollars(0),
				Commission: Dollars(0),
				Spiffs:     Dollars(0),
				Total:      Dollars(0),
			}
			summaries[ctxOrder.Rep.ID] = s
		}
		s.Orders++
		s.Revenue = s.Revenue.Add(entry.Base)
		s.Commission = s.Commission.Add(entry.Commission)
		for _, se := range earned {
			s.Spiffs = s.Spiffs.Add(se.Earned)
		}
		s.Total = s.Commission.Add(s.Spiffs)
	}

	summaryList := make([]RepMonthlySummary, 0, len(summaries))
	totalCommission, totalSpiffs := Dollars(0), Dollars(0)
	for _, s := range summaries {
		summaryList = append(summaryList, *s)
		totalCommission = totalCommission.Add(s.Commission)
		totalSpiffs = totalSpiffs.Add(s.Spiffs)
	}
	sort.Slice(summaryList, func(i, j int) bool { return summaryList[i].RepID < summaryList[j].RepID })

	if err := r.Store.ReplaceMonthlyResults(ctx, period.Label, commissions, spiffEntries, summaryList); err != nil {
		return r.fail(ctx, run, log, err)
	}

	run.EntriesWritten = len(commissions) + len(spiffEntries)
	run.TotalCommission = totalCommission
	run.TotalSpiffs = totalSpiffs
	run.CompletedAt = Today()
	if err := r.Store.SaveRun(ctx, run); err != nil {
		return run, err
	}
	log.Info("month close completed",
		zap.Int("orders", run.OrdersProcessed),
		zap.Int("entries", run.EntriesWritten),
		zap.Int("anomalies", len(run.Anomalies)),
		zap.String("total_commission", totalCommission.Value.String()),
		zap.String("total_spiffs", totalSpiffs.Value.String()))
	return run, nil
}

// resolveOrder maps an order to its rep and customer, applying the skip
// policy. Returns skip=true when the order must not be priced; expected
// exclusions bump a counter, data gaps append an anomaly.
func (r *MonthCloseRunner) resolveOrder(order Order, repsByCode map[string]Rep, customersByID map[CustomerID]Customer, history map[CustomerID][]Date, run *RunSummary) (OrderContext, bool) {
	switch order.Source {
	case SourceHouse:
		run.Skips.House++
		return OrderContext{}, true
	case SourceEcommerce:
		run.Skips.Ecommerce++
		return OrderContext{}, true
	}

	rep, ok := repsByCode[order.SalesCode]
	if !ok {
		run.Anomalies = append(run.Anomalies, (&DataGapError{
			OrderID: order.ID, OrderNum: order.Number,
			CustomerID: order.CustomerID, SalesCode: order.SalesCode,
			Err: ErrRepUnresolved,
		}).Anomaly())
		return OrderContext{}, true
	}
	if !rep.Active || !rep.Commissioned {
		run.Skips.InactiveRep++
		return OrderContext{}, true
	}

	customer, ok := customersByID[order.CustomerID]
	if !ok {
		run.Anomalies = append(run.Anomalies, (&DataGapError{
			OrderID: order.ID, OrderNum: order.Number,
			CustomerID: order.CustomerID, SalesCode: order.SalesCode,
			Err: ErrCustomerUnresolved,
		}).Anomaly())
		return OrderContext{}, true
	}
	if customer.Segment == SegmentRetail {
		run.Skips.Retail++
		return OrderContext{}, true
	}
	if customer.Segment == "" {
		run.Anomalies = append(run.Anomalies, (&DataGapError{
			OrderID: order.ID, OrderNum: order.Number,
			CustomerID: order.CustomerID, SalesCode: order.SalesCode,
			Err: ErrSegmentUnresolved,
		}).Anomaly())
		return OrderContext{}, true
	}

	if len(order.Lines) > 0 && totalQuantity(order.Lines).IsZero() {
		run.Skips.ZeroQuantity++
		return OrderContext{}, true
	}

	return OrderContext{
		Order:        order,
		Rep:          rep,
		Customer:     customer,
		OrderHistory: history[customer.ID],
	}, false
}

func totalQuantity(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Quantity)
	}
	return total
}

func (r *MonthCloseRunner) fail(ctx context.Context, run RunSummary, log *zap.Logger, cause error) (RunSummary, error) {
	run.Status = RunFailed
	run.Error = cause.Error()
	run.CompletedAt = Today()
	if saveErr := r.Store.SaveRun(ctx, run); saveErr != nil {
		log.Error("failed run record not persisted", zap.Error(saveErr))
	}
	log.Error("month close failed", zap.Error(cause))
	return run, cause
}
