package proposals

import "fmt"

// bidTolerance is the allowed gap between a bid and its milestone total:
// 2% of the bid, but never less than one currency unit.
func bidTolerance(bid int64) int64 {
	tol := bid * 2 / 100
	if tol < 1 {
		tol = 1
	}
	return tol
}

// validateBidWithinBudget rejects bids outside the request's budget range.
func validateBidWithinBudget(bid, budgetMin, budgetMax int64) error {
	if bid < budgetMin || bid > budgetMax {
		return fmt.Errorf("bid amount %d is outside the budget range %d-%d", bid, budgetMin, budgetMax)
	}
	return nil
}

// ValidateMilestonePlan checks a milestone plan against the bid: sequence
// numbers must strictly increase starting at 1, amounts must be positive,
// and the total must match the bid within bidTolerance.
func ValidateMilestonePlan(bid int64, milestones []MilestoneInput) error {
	if len(milestones) == 0 {
		return fmt.Errorf("at least one milestone is required")
	}

	var total int64
	for i, m := range milestones {
		if m.Title == "" {
			return fmt.Errorf("milestone %d: title is required", i+1)
		}
		if m.Amount <= 0 {
			return fmt.Errorf("milestone %d: amount must be greater than zero", i+1)
		}
		if m.Sequence != i+1 {
			return fmt.Errorf("milestone sequence numbers must strictly increase starting at 1")
		}
		total += m.Amount
	}

	diff := total - bid
	if diff < 0 {
		diff = -diff
	}
	if tol := bidTolerance(bid); diff > tol {
		return fmt.Errorf("milestone total %d differs from bid %d by more than the allowed tolerance %d", total, bid, tol)
	}
	return nil
}
