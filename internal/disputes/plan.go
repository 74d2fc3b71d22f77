package disputes

import "fmt"

// resolutionEffect describes the state changes a resolution outcome applies.
// Keeping it as data makes the outcome table testable without a database.
type resolutionEffect struct {
	// RejectAllMilestones marks every active milestone on the project REJECTED.
	RejectAllMilestones bool
	// MilestoneDisputed stamps only the tied milestone DISPUTED.
	MilestoneDisputed bool
	// RestorePrior reverts the tied milestone to its pre-dispute status
	// and the project back to IN_PROGRESS.
	RestorePrior bool
	// RefundEscrow returns escrowed payments on the project to the customer.
	RefundEscrow bool
	// ProjectDisputed stamps the project DISPUTED. Written explicitly rather
	// than assumed from OpenDispute: a redo reverts the project to
	// IN_PROGRESS while the dispute stays live, so a later resolution must
	// re-freeze it.
	ProjectDisputed bool
}

// resolutionPlan maps a resolve outcome onto its side effects. hasMilestone
// reports whether the dispute is tied to a specific milestone.
func resolutionPlan(outcome string, hasMilestone bool) (resolutionEffect, error) {
	switch outcome {
	case StatusResolved:
		return resolutionEffect{RejectAllMilestones: true, RefundEscrow: true, ProjectDisputed: true}, nil
	case StatusClosed:
		return resolutionEffect{MilestoneDisputed: hasMilestone, ProjectDisputed: true}, nil
	case StatusRejected:
		return resolutionEffect{RestorePrior: true}, nil
	default:
		return resolutionEffect{}, fmt.Errorf("invalid resolution outcome %q", outcome)
	}
}

// redoNote builds the dispute note for a rework request: the auto note,
// plus the admin's note when one was given.
func redoNote(adminNote string) string {
	const auto = "Rework requested by moderation"
	if adminNote == "" {
		return auto
	}
	return auto + " - " + adminNote
}
