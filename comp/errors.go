/*
errors.go - Centralized error types for the calculation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The run orchestrator classifies errors into two families with very
  different handling:

ERROR FAMILIES:
  1. Configuration errors - The run cannot proceed at all. Missing role
     scale, missing budget, invalid weights. The run aborts before any
     output is written; silent fallbacks here would corrupt payouts.
  2. Data gap errors - One record cannot be resolved (unknown sales code,
     customer without a segment). The record is skipped, the run continues,
     and the gap is reported as an anomaly in the run summary.

USAGE:
    if comp.IsConfigError(err) {
        // abort the run, write nothing
    }
    if comp.IsDataGap(err) {
        // skip the record, report the anomaly
    }

SEE ALSO:
  - bonus.go: Raises ConfigError for missing scales/budgets
  - commission.go: Raises DataGapError for unresolvable records
  - run.go: Applies the abort-vs-skip policy
*/
package comp

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrWeightSumInvalid is returned when a weight group does not sum to 1.0
	// within tolerance.
	ErrWeightSumInvalid = errors.New("weights must sum to 1.0")

	// ErrRoleScaleMissing is returned when a rep's title has no configured
	// role scale. There is no default scale; paying at an assumed scale is
	// worse than failing.
	ErrRoleScaleMissing = errors.New("role scale not configured for title")

	// ErrBudgetMissing is returned when a rep's title has no budget (goal set).
	ErrBudgetMissing = errors.New("budget not configured for title")

	// ErrRepUnresolved is returned when an order's sales code matches no
	// known rep.
	ErrRepUnresolved = errors.New("sales code matches no rep")

	// ErrSegmentUnresolved is returned when a customer has no usable segment.
	ErrSegmentUnresolved = errors.New("customer segment unresolved")

	// ErrCustomerUnresolved is returned when an order references no known
	// customer.
	ErrCustomerUnresolved = errors.New("order references unknown customer")

	// ErrNotFound is returned by stores when a record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrRunNotFound is returned when a referenced run doesn't exist.
	ErrRunNotFound = errors.New("run not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// WeightSumError reports which weight group failed validation and by how much.
type WeightSumError struct {
	Group string // e.g. "buckets", "subgoals:NEW_PRODUCTS"
	Sum   decimal.Decimal
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("weight group %q sums to %s, want 1.0 (±%s)",
		e.Group, e.Sum, WeightTolerance)
}

func (e *WeightSumError) Unwrap() error { return ErrWeightSumInvalid }

// ConfigError reports a configuration gap that must abort the run.
type ConfigError struct {
	Field string // e.g. "roleScale", "budget"
	Title Title  // the title the lookup failed for, when applicable
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("configuration error: %s for title %q: %v", e.Field, e.Title, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DataGapError reports an unresolvable source record. The offending record
// is identified well enough for a human to fix the data and re-run.
type DataGapError struct {
	OrderID    OrderID
	OrderNum   string
	CustomerID CustomerID
	SalesCode  string
	Err        error
}

func (e *DataGapError) Error() string {
	return fmt.Sprintf("data gap on order %s (customer=%s, salesCode=%q): %v",
		e.OrderNum, e.CustomerID, e.SalesCode, e.Err)
}

func (e *DataGapError) Unwrap() error { return e.Err }

// Anomaly converts the error into the run-summary record form.
func (e *DataGapError) Anomaly() Anomaly {
	return Anomaly{
		OrderID:    e.OrderID,
		OrderNum:   e.OrderNum,
		CustomerID: e.CustomerID,
		SalesCode:  e.SalesCode,
		Reason:     e.Err.Error(),
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConfigError returns true for errors that must abort the whole run.
func IsConfigError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, ErrWeightSumInvalid) ||
		errors.Is(err, ErrRoleScaleMissing) ||
		errors.Is(err, ErrBudgetMissing)
}

// IsDataGap returns true for per-record errors that skip the record and
// continue the run.
func IsDataGap(err error) bool {
	var dg *DataGapError
	if errors.As(err, &dg) {
		return true
	}
	return errors.Is(err, ErrRepUnresolved) ||
		errors.Is(err, ErrSegmentUnresolved) ||
		errors.Is(err, ErrCustomerUnresolved)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrRunNotFound)
}
