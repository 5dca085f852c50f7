/*
status.go - Customer relationship status classifier

PURPOSE:
  A customer's status drives the commission rate lookup. Status is derived
  from order history every run, never stored as authoritative state: a
  customer that was "new business" last month may be "6 month active" now
  without anyone editing a record.

DECISION ORDER (first match wins):
  1. Reorg rule on, assignment strictly after the reorg date -> transferred
  2. No prior orders, or last order older than the inactivity threshold
     -> new_business (a lapsed account restarts as new business)
  3. Last order within 6 whole months  -> 6_month_active
  4. Last order within 12 whole months -> 12_month_active
  5. Otherwise (older than 12 but within the threshold) -> 12_month_active

  "Prior orders" means orders strictly before the evaluation date; an
  order placed on the evaluation date itself does not age the account.

SEE ALSO:
  - period.go: WholeMonthsBetween (day-of-month sensitive)
  - commission.go: Applies the manual per-customer override before calling
    the classifier
*/
package comp

// ClassifyInput bundles everything the classifier looks at.
type ClassifyInput struct {
	// OrderDates is the customer's full order history; order and
	// duplicates don't matter, only the most recent date before AsOf.
	OrderDates []Date

	// AssignedAt is when the account became effective for its current rep.
	AssignedAt Date

	// AsOf is the evaluation date, normally the order date being priced.
	AsOf Date

	// ApplyReorg enables the territory-reorg transfer rule.
	ApplyReorg bool
	ReorgDate  Date

	// InactivityThresholdMonths is how many whole months of silence turn
	// an account back into new business.
	InactivityThresholdMonths int
}

// ClassifyCustomerStatus derives the relationship status for rate lookup.
func ClassifyCustomerStatus(in ClassifyInput) CustomerStatus {
	if in.ApplyReorg && in.AssignedAt.After(in.ReorgDate) {
		return StatusTransferred
	}

	last, ok := mostRecentBefore(in.OrderDates, in.AsOf)
	if !ok {
		return StatusNewBusiness
	}

	months := WholeMonthsBetween(last, in.AsOf)
	switch {
	case months > in.InactivityThresholdMonths:
		return StatusNewBusiness
	case months <= 6:
		return Status6MonthActive
	default:
		return Status12MonthActive
	}
}

func mostRecentBefore(dates []Date, asOf Date) (Date, bool) {
	var best Date
	found := false
	for _, d := range dates {
		if !d.Before(asOf) {
			continue
		}
		if !found || d.After(best) {
			best = d
			found = true
		}
	}
	return best, found
}
