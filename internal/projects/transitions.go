package projects

// Action is a milestone progress operation requested by one of the parties.
type Action string

const (
	ActionStart   Action = "start"   // provider begins work
	ActionSubmit  Action = "submit"  // provider delivers for review
	ActionApprove Action = "approve" // company accepts the delivery
	ActionReject  Action = "reject"  // company sends it back
	ActionRestart Action = "restart" // provider resumes after rejection
)

type transition struct {
	from string
	next string
	role string // role allowed to perform the action
}

var milestoneTransitions = map[Action]transition{
	ActionStart:   {from: MilestoneLocked, next: MilestoneInProgress, role: "provider"},
	ActionSubmit:  {from: MilestoneInProgress, next: MilestoneSubmitted, role: "provider"},
	ActionApprove: {from: MilestoneSubmitted, next: MilestoneApproved, role: "customer"},
	ActionReject:  {from: MilestoneSubmitted, next: MilestoneRejected, role: "customer"},
	ActionRestart: {from: MilestoneRejected, next: MilestoneInProgress, role: "provider"},
}

// NextStatus returns the resulting milestone status for an action, or
// ok=false when the action is not legal from the current status or for
// the caller's role.
func NextStatus(current string, act Action, role string) (string, bool) {
	t, ok := milestoneTransitions[act]
	if !ok || t.from != current || t.role != role {
		return "", false
	}
	return t.next, true
}

// planApproval records one party's approval of the milestone plan and
// reports whether both flags now hold, which is what locks the plan.
func planApproval(companyApproved, providerApproved, byCompany bool) (newCompany, newProvider, lockNow bool) {
	if byCompany {
		companyApproved = true
	} else {
		providerApproved = true
	}
	return companyApproved, providerApproved, companyApproved && providerApproved
}

// ActiveForDispute reports whether a milestone in this status can be the
// subject of a new dispute.
func ActiveForDispute(status string) bool {
	switch status {
	case MilestoneLocked, MilestoneInProgress, MilestoneSubmitted, MilestoneApproved, MilestoneRejected:
		return true
	}
	return false
}
