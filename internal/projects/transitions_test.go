package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilestoneLifecyclePath(t *testing.T) {
	status := MilestoneLocked

	next, ok := NextStatus(status, ActionStart, "provider")
	assert.True(t, ok)
	assert.Equal(t, MilestoneInProgress, next)

	next, ok = NextStatus(next, ActionSubmit, "provider")
	assert.True(t, ok)
	assert.Equal(t, MilestoneSubmitted, next)

	next, ok = NextStatus(next, ActionApprove, "customer")
	assert.True(t, ok)
	assert.Equal(t, MilestoneApproved, next)
}

func TestRejectAndRestart(t *testing.T) {
	next, ok := NextStatus(MilestoneSubmitted, ActionReject, "customer")
	assert.True(t, ok)
	assert.Equal(t, MilestoneRejected, next)

	next, ok = NextStatus(MilestoneRejected, ActionRestart, "provider")
	assert.True(t, ok)
	assert.Equal(t, MilestoneInProgress, next)
}

func TestWrongRoleIsRefused(t *testing.T) {
	_, ok := NextStatus(MilestoneLocked, ActionStart, "customer")
	assert.False(t, ok)

	_, ok = NextStatus(MilestoneSubmitted, ActionApprove, "provider")
	assert.False(t, ok)
}

func TestIllegalSourceStatusIsRefused(t *testing.T) {
	_, ok := NextStatus(MilestoneDraft, ActionStart, "provider")
	assert.False(t, ok)

	_, ok = NextStatus(MilestonePaid, ActionSubmit, "provider")
	assert.False(t, ok)

	_, ok = NextStatus(MilestoneDisputed, ActionApprove, "customer")
	assert.False(t, ok)

	_, ok = NextStatus(MilestoneInProgress, Action("unknown"), "provider")
	assert.False(t, ok)
}

func TestPlanApprovalFirstParty(t *testing.T) {
	company, provider, lock := planApproval(false, false, true)
	assert.True(t, company)
	assert.False(t, provider)
	assert.False(t, lock)

	company, provider, lock = planApproval(false, false, false)
	assert.False(t, company)
	assert.True(t, provider)
	assert.False(t, lock)
}

func TestPlanApprovalSecondPartyLocks(t *testing.T) {
	company, provider, lock := planApproval(true, false, false)
	assert.True(t, company)
	assert.True(t, provider)
	assert.True(t, lock)

	company, provider, lock = planApproval(false, true, true)
	assert.True(t, company)
	assert.True(t, provider)
	assert.True(t, lock)
}

func TestPlanApprovalIsIdempotent(t *testing.T) {
	// re-approving by the same party never locks on its own
	company, provider, lock := planApproval(true, false, true)
	assert.True(t, company)
	assert.False(t, provider)
	assert.False(t, lock)
}

func TestActiveForDispute(t *testing.T) {
	assert.True(t, ActiveForDispute(MilestoneInProgress))
	assert.True(t, ActiveForDispute(MilestoneSubmitted))
	assert.True(t, ActiveForDispute(MilestoneLocked))

	assert.False(t, ActiveForDispute(MilestoneDraft))
	assert.False(t, ActiveForDispute(MilestonePaid))
	assert.False(t, ActiveForDispute(MilestoneDisputed))
}
