/*
Package comp provides the core commission and bonus calculation engine.

PURPOSE:
  This package contains the pure calculators that turn sales activity into
  rep payouts: quarterly attainment-based bonuses and monthly rate-matrix
  commissions, plus spiff incentives layered on top. Every calculator is a
  side-effect-free function over in-memory records; reading inputs and
  writing results belongs to the store collaborator.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity with a unit (dollars for revenue goals, counts for
    activity goals)
  - Title/Segment/CustomerStatus: The three axes of the monthly rate matrix
  - Order/OrderLine: Read-only sales records consumed by the engine
  - Computed*Entry: Immutable output records, fully replaced on each run

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Purity: Calculators take config + records in, return records out
  3. Idempotence: Output IDs derive from (rep, period, source record), so
     re-running a period yields bit-identical entries
  4. Explicit config: No ambient state; every invocation receives its
     configuration snapshot

SEE ALSO:
  - bonus.go: Quarterly bonus calculator and its configuration
  - commission.go: Monthly commission calculator
  - status.go: Customer relationship status classifier
  - run.go: Period-close orchestration over the store
*/
package comp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (dollars or counts in this system)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDollars Unit = "dollars"
	UnitCount   Unit = "count"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func Dollars(value float64) Amount { return NewAmount(value, UnitDollars) }
func Count(value float64) Amount   { return NewAmount(value, UnitCount) }

// MustParseDecimal parses a decimal written by this engine. Stored
// amounts are always serialized through decimal.String, so a parse
// failure means the row is corrupt; panicking beats paying out $0.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("comp: corrupt stored decimal %q: %v", s, err))
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RepID string
type CustomerID string
type OrderID string
type RunID string

// =============================================================================
// RATE MATRIX AXES - title, segment, customer status
// =============================================================================

// Title is a rep's job title. The set below is canonical but open to
// extension: rate tables and role scales are keyed by string, so a new
// title only needs configuration, not code.
type Title string

const (
	TitleSrAccountExecutive Title = "Sr. Account Executive"
	TitleAccountExecutive   Title = "Account Executive"
	TitleJrAccountExecutive Title = "Jr. Account Executive"
	TitleAccountManager     Title = "Account Manager"
)

// Segment classifies a customer account for rate lookup.
// Retail accounts exist in source data but earn no commission; the month
// close skips them and counts the skip.
type Segment string

const (
	SegmentDistributor Segment = "distributor"
	SegmentWholesale   Segment = "wholesale"
	SegmentRetail      Segment = "retail"
)

// CustomerStatus is the relationship classification recomputed from order
// history at every run. It is never persisted as authoritative state.
type CustomerStatus string

const (
	StatusNewBusiness   CustomerStatus = "new_business"
	Status6MonthActive  CustomerStatus = "6_month_active"
	Status12MonthActive CustomerStatus = "12_month_active"
	StatusTransferred   CustomerStatus = "transferred"
)

// TransferOverride is a manual per-customer override set by an
// administrator. OverrideAuto (or empty) means the classifier decides.
type TransferOverride string

const (
	OverrideAuto        TransferOverride = "auto"
	OverrideOwn         TransferOverride = "own"
	OverrideTransferred TransferOverride = "transferred"
)

// =============================================================================
// SOURCE RECORDS - read-only inputs from the record store
// =============================================================================

// Rep is a commissioned salesperson.
type Rep struct {
	ID           RepID
	Name         string
	Title        Title
	SalesCode    string // key used on incoming orders (e.g. "BenW")
	Active       bool
	Commissioned bool
}

// Customer is a sales account. AssignedAt is when the account became
// effective for its current rep; the reorg rule compares it against the
// reorg cutoff date.
type Customer struct {
	ID               CustomerID
	Name             string
	Segment          Segment
	AssignedRep      RepID
	AssignedAt       Date
	TransferOverride TransferOverride
}

// OrderSource distinguishes rep-sold orders from house and e-commerce
// orders, which are never commissioned.
type OrderSource string

const (
	SourceRep       OrderSource = "rep"
	SourceHouse     OrderSource = "house"
	SourceEcommerce OrderSource = "ecommerce"
)

// Order is a sales order as exported from the ERP. The engine never
// mutates orders.
type Order struct {
	ID         OrderID
	Number     string
	CustomerID CustomerID
	SalesCode  string // rep key as recorded on the order
	Source     OrderSource
	Date       Date
	OrderValue Amount // order total as invoiced
	Revenue    Amount // recognized revenue (may differ from order value)
	Lines      []OrderLine
}

// OrderLine is one line item on an order. Shipping and card-fee lines are
// flagged at import time so the engine applies exclusions uniformly.
type OrderLine struct {
	ProductKey  string
	Description string
	Quantity    decimal.Decimal
	Value       Amount // extended price; negative for credits and refunds
	IsShipping  bool
	IsCardFee   bool
}

// =============================================================================
// COMPUTED OUTPUT RECORDS - never mutated after creation
// =============================================================================

// RateSource records where a commission rate came from, so a default
// fallback is distinguishable from a configured rate in reports.
type RateSource string

const (
	RateConfigured   RateSource = "configured"
	RateDefault      RateSource = "default"
	RateTransferRule RateSource = "transfer_rule"
)

// ComputedBonusEntry is one bucket (or sub-goal detail row) of a rep's
// quarterly bonus. The ID is deterministic: quarter_rep_bucket[_subgoal].
type ComputedBonusEntry struct {
	ID         string
	RunID      RunID
	Quarter    string
	RepID      RepID
	BucketCode string
	SubGoalKey string // empty for bucket-level rows
	Goal       Amount
	Actual     Amount
	Attainment decimal.Decimal // capped/floored for bucket rows, raw for sub-goal rows
	Weight     decimal.Decimal
	Payout     Amount // zero on sub-goal detail rows; payout is bucket-level
}

// BonusStatement is a rep's complete quarterly result: per-bucket entries
// plus the rep-level total after role scaling.
type BonusStatement struct {
	RepID             RepID
	Quarter           string
	RunID             RunID
	OverallAttainment decimal.Decimal
	Scale             decimal.Decimal
	Total             Amount
	Entries           []ComputedBonusEntry
}

// ComputedCommissionEntry is the commission for one qualifying order.
// The ID is deterministic: rep_month_order.
type ComputedCommissionEntry struct {
	ID          string
	RunID       RunID
	Month       string
	RepID       RepID
	OrderID     OrderID
	OrderNumber string
	CustomerID  CustomerID
	Segment     Segment
	Status      CustomerStatus
	Base        Amount // eligible order value after exclusions
	Rate        decimal.Decimal
	RateSource  RateSource
	Commission  Amount
}

// ComputedSpiffEntry is one spiff earned on one order line. Additive to,
// never a replacement for, the base commission.
type ComputedSpiffEntry struct {
	ID            string
	RunID         RunID
	Month         string
	RepID         RepID
	OrderID       OrderID
	OrderNumber   string
	SpiffID       string
	ProductKey    string
	Quantity      decimal.Decimal
	LineValue     Amount
	IncentiveType IncentiveType
	Incentive     decimal.Decimal
	Earned        Amount
}

// RepMonthlySummary aggregates a rep's month: one record per rep per month.
type RepMonthlySummary struct {
	RepID      RepID
	RepName    string
	Month      string
	Orders     int
	Revenue    Amount
	Commission Amount
	Spiffs     Amount
	Total      Amount
}

// =============================================================================
// RUN SUMMARY - outcome of one period-close run
// =============================================================================

type RunKind string

const (
	RunQuarterClose RunKind = "quarter_close"
	RunMonthClose   RunKind = "month_close"
)

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// SkipCounts tallies orders excluded from commission for expected,
// non-anomalous reasons.
type SkipCounts struct {
	House        int
	Ecommerce    int
	Retail       int
	InactiveRep  int
	ZeroQuantity int
}

// Anomaly records a per-record data gap: the record was skipped, the run
// continued, and a human fixes source data before re-running.
type Anomaly struct {
	OrderID    OrderID
	OrderNum   string
	CustomerID CustomerID
	SalesCode  string
	Reason     string
}

// RunSummary is the durable result record of one calculation run.
type RunSummary struct {
	ID              RunID
	Kind            RunKind
	Period          string // "Q3-2025" or "2025-07"
	Status          RunStatus
	Error           string
	OrdersProcessed int
	EntriesWritten  int
	TotalCommission Amount
	TotalSpiffs     Amount
	TotalBonus      Amount
	Skips           SkipCounts
	Anomalies       []Anomaly
	StartedAt       Date
	CompletedAt     Date
}
