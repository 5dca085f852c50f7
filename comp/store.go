/*
store.go - Persistence interfaces for the calculation engine

PURPOSE:
  Defines the boundary between the pure calculators and the database.
  Three concerns, three interfaces:

  ConfigStore: Bonus plans, rate configuration, spiff definitions.
  RecordStore: Read-only source data (reps, customers, orders, actuals).
  ResultStore: Computed output, replaced as whole sets per period.

REPLACEMENT CONTRACT:
  Computed entries are never updated in place. A run replaces the full
  output set for its period key atomically: delete-by-period then insert.
  Combined with deterministic entry IDs, re-running a closed period with
  unchanged inputs yields byte-identical records.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - comp/store/memory.go: In-memory for testing

SEE ALSO:
  - run.go: The only writer of computed results
*/
package comp

import "context"

// =============================================================================
// CONFIG STORE
// =============================================================================

// ConfigStore persists configuration. BonusConfig is keyed by quarter;
// rate configuration is a single current snapshot.
type ConfigStore interface {
	// BonusConfig returns the plan for a quarter, or ErrNotFound.
	BonusConfig(ctx context.Context, quarter string) (*BonusConfig, error)
	SaveBonusConfig(ctx context.Context, cfg *BonusConfig) error

	// RateConfig returns the current rate snapshot. Never ErrNotFound:
	// an unconfigured system returns the normalized defaults.
	RateConfig(ctx context.Context) (*RateConfig, error)
	SaveRateConfig(ctx context.Context, cfg *RateConfig) error

	Spiffs(ctx context.Context) ([]Spiff, error)
	SaveSpiff(ctx context.Context, s Spiff) error
	DeleteSpiff(ctx context.Context, id string) error
}

// =============================================================================
// RECORD STORE - Source data, read-only from the engine's perspective
// =============================================================================

type RecordStore interface {
	Reps(ctx context.Context) ([]Rep, error)
	Customers(ctx context.Context) ([]Customer, error)

	// OrdersInPeriod returns orders with dates inside [period.Start, period.End].
	OrdersInPeriod(ctx context.Context, period Period) ([]Order, error)

	// OrderDatesByCustomer returns each customer's full order date history,
	// unbounded by period. Status classification needs dates outside the
	// run's window.
	OrderDatesByCustomer(ctx context.Context) (map[CustomerID][]Date, error)

	// RepActualsForQuarter returns measured quarterly performance per rep.
	RepActualsForQuarter(ctx context.Context, quarter string) ([]RepActuals, error)
}

// =============================================================================
// RESULT STORE - Computed output, replaced per period
// =============================================================================

type ResultStore interface {
	// ReplaceBonusEntries atomically swaps the quarter's full bonus output.
	ReplaceBonusEntries(ctx context.Context, quarter string, entries []ComputedBonusEntry) error

	// ReplaceMonthlyResults atomically swaps the month's commissions,
	// spiffs, and per-rep summaries.
	ReplaceMonthlyResults(ctx context.Context, month string,
		commissions []ComputedCommissionEntry,
		spiffs []ComputedSpiffEntry,
		summaries []RepMonthlySummary) error

	BonusEntries(ctx context.Context, rep RepID, quarter string) ([]ComputedBonusEntry, error)
	CommissionEntries(ctx context.Context, rep RepID, month string) ([]ComputedCommissionEntry, error)
	SpiffEntries(ctx context.Context, rep RepID, month string) ([]ComputedSpiffEntry, error)
	MonthlySummaries(ctx context.Context, month string) ([]RepMonthlySummary, error)

	SaveRun(ctx context.Context, run RunSummary) error
	Run(ctx context.Context, id RunID) (RunSummary, error)
}

// Store is the full persistence surface the server wires together.
type Store interface {
	ConfigStore
	RecordStore
	ResultStore
}
