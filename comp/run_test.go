package comp_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/keystone/comp-engine/comp"
	"github.com/keystone/comp-engine/comp/store"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func seededStore() *store.Memory {
	m := store.NewMemory()
	m.SeedReps(
		comp.Rep{ID: "rep-1", Name: "Ben Walker", Title: comp.TitleAccountExecutive, SalesCode: "BenW", Active: true, Commissioned: true},
		comp.Rep{ID: "rep-2", Name: "Dana Reed", Title: comp.TitleSrAccountExecutive, SalesCode: "DanaR", Active: false, Commissioned: true},
	)
	m.SeedCustomers(
		comp.Customer{ID: "cust-1", Name: "Acme Wholesale", Segment: comp.SegmentWholesale},
		comp.Customer{ID: "cust-2", Name: "Corner Shop", Segment: comp.SegmentRetail},
		comp.Customer{ID: "cust-3", Name: "Mystery Co"},
	)
	return m
}

func order(id, number string, cust comp.CustomerID, code string, src comp.OrderSource, date comp.Date, value float64) comp.Order {
	return comp.Order{
		ID:         comp.OrderID(id),
		Number:     number,
		CustomerID: cust,
		SalesCode:  code,
		Source:     src,
		Date:       date,
		OrderValue: comp.Dollars(value),
		Revenue:    comp.Dollars(value),
	}
}

// =============================================================================
// MONTH CLOSE
// =============================================================================

func TestMonthClose_SkipsAndAnomalies(t *testing.T) {
	// GIVEN: one qualifying order plus one of each excluded/broken kind
	// WHEN: running the month close
	// THEN: the run completes, skips are counted, gaps become anomalies

	m := seededStore()
	july := comp.NewDate(2025, time.July, 10)
	m.SeedOrders(
		order("ord-1", "SO-1", "cust-1", "BenW", comp.SourceRep, july, 10000),
		order("ord-2", "SO-2", "cust-1", "", comp.SourceHouse, july, 5000),
		order("ord-3", "SO-3", "cust-1", "", comp.SourceEcommerce, july, 300),
		order("ord-4", "SO-4", "cust-2", "BenW", comp.SourceRep, july, 800),      // retail
		order("ord-5", "SO-5", "cust-1", "DanaR", comp.SourceRep, july, 4000),    // inactive rep
		order("ord-6", "SO-6", "cust-1", "Nobody", comp.SourceRep, july, 2000),   // unknown sales code
		order("ord-7", "SO-7", "cust-9", "BenW", comp.SourceRep, july, 1500),     // unknown customer
		order("ord-8", "SO-8", "cust-3", "BenW", comp.SourceRep, july, 1200),     // missing segment
		order("ord-old", "SO-0", "cust-1", "BenW", comp.SourceRep, comp.NewDate(2025, time.June, 1), 100),
	)

	runner := &comp.MonthCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != comp.RunCompleted {
		t.Errorf("status = %s, want completed", run.Status)
	}
	if run.OrdersProcessed != 1 {
		t.Errorf("orders processed = %d, want 1", run.OrdersProcessed)
	}
	if run.Skips.House != 1 || run.Skips.Ecommerce != 1 || run.Skips.Retail != 1 || run.Skips.InactiveRep != 1 {
		t.Errorf("skips = %+v", run.Skips)
	}
	if len(run.Anomalies) != 3 {
		t.Fatalf("anomalies = %d, want 3 (unknown rep, unknown customer, missing segment)", len(run.Anomalies))
	}

	// ord-1 has a prior order in June, so it prices as 6_month_active
	// wholesale at the default 7%.
	entries, err := m.CommissionEntries(context.Background(), "rep-1", "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 commission entry, got %d", len(entries))
	}
	if entries[0].Status != comp.Status6MonthActive {
		t.Errorf("status = %s, want 6_month_active", entries[0].Status)
	}
	if !entries[0].Commission.Value.Equal(dec(700)) {
		t.Errorf("commission = %v, want 700", entries[0].Commission.Value)
	}
	if !run.TotalCommission.Value.Equal(dec(700)) {
		t.Errorf("total commission = %v, want 700", run.TotalCommission.Value)
	}

	// The run record is retrievable by ID.
	saved, err := m.Run(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Kind != comp.RunMonthClose || saved.Period != "2025-07" {
		t.Errorf("saved run = %+v", saved)
	}
}

func TestMonthClose_ZeroQuantityOrderSkipped(t *testing.T) {
	m := seededStore()
	o := order("ord-1", "SO-1", "cust-1", "BenW", comp.SourceRep, comp.NewDate(2025, time.July, 10), 500)
	o.Lines = []comp.OrderLine{
		{ProductKey: "WIDGET", Quantity: decimal.Zero, Value: comp.Dollars(500)},
	}
	m.SeedOrders(o)

	runner := &comp.MonthCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Skips.ZeroQuantity != 1 {
		t.Errorf("zero-quantity skips = %d, want 1", run.Skips.ZeroQuantity)
	}
	if run.OrdersProcessed != 0 {
		t.Errorf("orders processed = %d, want 0", run.OrdersProcessed)
	}
}

func TestMonthClose_SpiffsFlowIntoSummaries(t *testing.T) {
	// GIVEN: an order line matching an active spiff
	// THEN: the rep's summary totals commission + spiffs

	m := seededStore()
	o := order("ord-1", "SO-1", "cust-1", "BenW", comp.SourceRep, comp.NewDate(2025, time.July, 10), 200)
	o.Lines = []comp.OrderLine{
		{ProductKey: "WIDGET", Quantity: dec(1), Value: comp.Dollars(200)},
	}
	m.SeedOrders(o)
	_ = m.SaveSpiff(context.Background(), comp.Spiff{
		ID: "spiff-1", ProductKey: "WIDGET", Type: comp.IncentiveFlat, Value: dec(16), Active: true,
	})

	runner := &comp.MonthCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !run.TotalSpiffs.Value.Equal(dec(16)) {
		t.Errorf("total spiffs = %v, want 16", run.TotalSpiffs.Value)
	}

	summaries, err := m.MonthlySummaries(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	// New business wholesale: 200 * 10% = 20 commission, + 16 spiff.
	if !s.Commission.Value.Equal(dec(20)) {
		t.Errorf("commission = %v, want 20", s.Commission.Value)
	}
	if !s.Spiffs.Value.Equal(dec(16)) {
		t.Errorf("spiffs = %v, want 16", s.Spiffs.Value)
	}
	if !s.Total.Value.Equal(dec(36)) {
		t.Errorf("total = %v, want 36", s.Total.Value)
	}
}

func TestMonthClose_RerunReplacesResults(t *testing.T) {
	// GIVEN: a completed month close
	// WHEN: running the same month again
	// THEN: the result set is replaced, not appended, with identical entry IDs

	m := seededStore()
	m.SeedOrders(order("ord-1", "SO-1", "cust-1", "BenW", comp.SourceRep, comp.NewDate(2025, time.July, 10), 10000))

	runner := &comp.MonthCloseRunner{Store: m, Logger: zap.NewNop()}
	first, err := runner.Run(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := runner.Run(context.Background(), "2025-07")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.ID == second.ID {
		t.Error("each run must get its own ID")
	}

	entries, _ := m.CommissionEntries(context.Background(), "rep-1", "2025-07")
	if len(entries) != 1 {
		t.Fatalf("expected replacement to keep 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "rep-1_2025-07_ord-1" {
		t.Errorf("entry ID = %q", entries[0].ID)
	}
	if entries[0].RunID != second.ID {
		t.Error("surviving entry should belong to the latest run")
	}
}

func TestMonthClose_InvalidMonthLabel(t *testing.T) {
	runner := &comp.MonthCloseRunner{Store: store.NewMemory(), Logger: zap.NewNop()}
	if _, err := runner.Run(context.Background(), "July 2025"); err == nil {
		t.Fatal("expected an error for a bad month label")
	}
}

// =============================================================================
// QUARTER CLOSE
// =============================================================================

func validBonusConfig(quarter string) *comp.BonusConfig {
	return comp.NormalizeBonusConfig(&comp.BonusConfig{
		Quarter: quarter,
		Buckets: []comp.Bucket{
			{Code: "A", Name: "Revenue", Weight: dec(1.0), Active: true},
		},
	})
}

func TestQuarterClose_WritesEntriesAndTotals(t *testing.T) {
	m := store.NewMemory()
	_ = m.SaveBonusConfig(context.Background(), validBonusConfig("Q3-2025"))
	m.SeedRepActuals("Q3-2025",
		comp.RepActuals{
			RepID: "rep-1",
			Title: comp.TitleAccountExecutive,
			BucketActuals: map[string]decimal.Decimal{
				// Default AE budget for bucket A is 400000.
				"A": dec(400000),
			},
		},
	)

	runner := &comp.QuarterCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "Q3-2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Status != comp.RunCompleted {
		t.Errorf("status = %s", run.Status)
	}
	if run.EntriesWritten != 1 {
		t.Errorf("entries written = %d, want 1", run.EntriesWritten)
	}
	// Full attainment at AE scale 0.85 against the default 25000 cap.
	if !run.TotalBonus.Value.Equal(dec(21250)) {
		t.Errorf("total bonus = %v, want 21250", run.TotalBonus.Value)
	}

	entries, err := m.BonusEntries(context.Background(), "rep-1", "Q3-2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].ID != "Q3-2025_rep-1_A" {
		t.Errorf("entry ID = %q", entries[0].ID)
	}
}

func TestQuarterClose_InvalidWeightsFailTheRunAndWriteNothing(t *testing.T) {
	// GIVEN: a config whose bucket weights sum to 0.9
	// WHEN: running the quarter close
	// THEN: the run fails, a failed run record persists, no entries written

	m := store.NewMemory()
	cfg := validBonusConfig("Q3-2025")
	cfg.Buckets = []comp.Bucket{
		{Code: "A", Weight: dec(0.5), Active: true},
		{Code: "B", Weight: dec(0.4), Active: true},
	}
	_ = m.SaveBonusConfig(context.Background(), cfg)
	m.SeedRepActuals("Q3-2025", comp.RepActuals{RepID: "rep-1", Title: comp.TitleAccountExecutive})

	runner := &comp.QuarterCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "Q3-2025")
	if err == nil {
		t.Fatal("expected the run to fail")
	}
	if !comp.IsConfigError(err) {
		t.Errorf("expected a config error, got %v", err)
	}
	if run.Status != comp.RunFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
	if run.Error == "" {
		t.Error("failed run should carry the error message")
	}

	saved, err := m.Run(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("failed run record not persisted: %v", err)
	}
	if saved.Status != comp.RunFailed {
		t.Errorf("persisted status = %s, want failed", saved.Status)
	}

	entries, _ := m.BonusEntries(context.Background(), "rep-1", "Q3-2025")
	if len(entries) != 0 {
		t.Errorf("expected no entries after a failed run, got %d", len(entries))
	}
}

func TestQuarterClose_MissingConfigFails(t *testing.T) {
	m := store.NewMemory()
	runner := &comp.QuarterCloseRunner{Store: m, Logger: zap.NewNop()}
	run, err := runner.Run(context.Background(), "Q3-2025")
	if err == nil {
		t.Fatal("expected an error with no saved config")
	}
	if run.Status != comp.RunFailed {
		t.Errorf("status = %s, want failed", run.Status)
	}
}
