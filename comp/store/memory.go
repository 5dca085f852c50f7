// Package store provides an in-memory comp.Store for tests and local dev.
package store

import (
	"context"
	"sync"

	"github.com/keystone/comp-engine/comp"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	bonusConfigs map[string]*comp.BonusConfig
	rateConfig   *comp.RateConfig
	spiffs       map[string]comp.Spiff

	reps       []comp.Rep
	customers  []comp.Customer
	orders     []comp.Order
	repActuals map[string][]comp.RepActuals

	bonusEntries      map[string][]comp.ComputedBonusEntry
	commissionEntries map[string][]comp.ComputedCommissionEntry
	spiffEntries      map[string][]comp.ComputedSpiffEntry
	summaries         map[string][]comp.RepMonthlySummary
	runs              map[comp.RunID]comp.RunSummary
}

func NewMemory() *Memory {
	return &Memory{
		bonusConfigs:      make(map[string]*comp.BonusConfig),
		spiffs:            make(map[string]comp.Spiff),
		repActuals:        make(map[string][]comp.RepActuals),
		bonusEntries:      make(map[string][]comp.ComputedBonusEntry),
		commissionEntries: make(map[string][]comp.ComputedCommissionEntry),
		spiffEntries:      make(map[string][]comp.ComputedSpiffEntry),
		summaries:         make(map[string][]comp.RepMonthlySummary),
		runs:              make(map[comp.RunID]comp.RunSummary),
	}
}

var _ comp.Store = (*Memory)(nil)

// =============================================================================
// SEEDING - Test/dev helpers, not part of comp.Store
// =============================================================================

func (m *Memory) SeedReps(reps ...comp.Rep) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reps = append(m.reps, reps...)
}

func (m *Memory) SeedCustomers(customers ...comp.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, customers...)
}

func (m *Memory) SeedOrders(orders ...comp.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, orders...)
}

func (m *Memory) SeedRepActuals(quarter string, actuals ...comp.RepActuals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repActuals[quarter] = append(m.repActuals[quarter], actuals...)
}

// =============================================================================
// CONFIG STORE
// =============================================================================

func (m *Memory) BonusConfig(_ context.Context, quarter string) (*comp.BonusConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.bonusConfigs[quarter]
	if !ok {
		return nil, comp.ErrNotFound
	}
	cp := *cfg
	return &cp, nil
}

func (m *Memory) SaveBonusConfig(_ context.Context, cfg *comp.BonusConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.bonusConfigs[cfg.Quarter] = &cp
	return nil
}

func (m *Memory) RateConfig(_ context.Context) (*comp.RateConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rateConfig == nil {
		return comp.NormalizeRateConfig(nil), nil
	}
	cp := *m.rateConfig
	return &cp, nil
}

func (m *Memory) SaveRateConfig(_ context.Context, cfg *comp.RateConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cfg
	m.rateConfig = &cp
	return nil
}

func (m *Memory) Spiffs(_ context.Context) ([]comp.Spiff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]comp.Spiff, 0, len(m.spiffs))
	for _, s := range m.spiffs {
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) SaveSpiff(_ context.Context, s comp.Spiff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spiffs[s.ID] = s
	return nil
}

func (m *Memory) DeleteSpiff(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spiffs[id]; !ok {
		return comp.ErrNotFound
	}
	delete(m.spiffs, id)
	return nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) Reps(_ context.Context) ([]comp.Rep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]comp.Rep(nil), m.reps...), nil
}

func (m *Memory) Customers(_ context.Context) ([]comp.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]comp.Customer(nil), m.customers...), nil
}

func (m *Memory) OrdersInPeriod(_ context.Context, period comp.Period) ([]comp.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []comp.Order
	for _, o := range m.orders {
		if period.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Memory) OrderDatesByCustomer(_ context.Context) (map[comp.CustomerID][]comp.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[comp.CustomerID][]comp.Date)
	for _, o := range m.orders {
		out[o.CustomerID] = append(out[o.CustomerID], o.Date)
	}
	return out, nil
}

func (m *Memory) RepActualsForQuarter(_ context.Context, quarter string) ([]comp.RepActuals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]comp.RepActuals(nil), m.repActuals[quarter]...), nil
}

// =============================================================================
// RESULT STORE
// =============================================================================

func (m *Memory) ReplaceBonusEntries(_ context.Context, quarter string, entries []comp.ComputedBonusEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonusEntries[quarter] = append([]comp.ComputedBonusEntry(nil), entries...)
	return nil
}

func (m *Memory) ReplaceMonthlyResults(_ context.Context, month string,
	commissions []comp.ComputedCommissionEntry,
	spiffs []comp.ComputedSpiffEntry,
	summaries []comp.RepMonthlySummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commissionEntries[month] = append([]comp.ComputedCommissionEntry(nil), commissions...)
	m.spiffEntries[month] = append([]comp.ComputedSpiffEntry(nil), spiffs...)
	m.summaries[month] = append([]comp.RepMonthlySummary(nil), summaries...)
	return nil
}

func (m *Memory) BonusEntries(_ context.Context, rep comp.RepID, quarter string) ([]comp.ComputedBonusEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []comp.ComputedBonusEntry
	for _, e := range m.bonusEntries[quarter] {
		if e.RepID == rep {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) CommissionEntries(_ context.Context, rep comp.RepID, month string) ([]comp.ComputedCommissionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []comp.ComputedCommissionEntry
	for _, e := range m.commissionEntries[month] {
		if e.RepID == rep {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) SpiffEntries(_ context.Context, rep comp.RepID, month string) ([]comp.ComputedSpiffEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []comp.ComputedSpiffEntry
	for _, e := range m.spiffEntries[month] {
		if e.RepID == rep {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) MonthlySummaries(_ context.Context, month string) ([]comp.RepMonthlySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]comp.RepMonthlySummary(nil), m.summaries[month]...), nil
}

func (m *Memory) SaveRun(_ context.Context, run comp.RunSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) Run(_ context.Context, id comp.RunID) (comp.RunSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return comp.RunSummary{}, comp.ErrRunNotFound
	}
	return run, nil
}
