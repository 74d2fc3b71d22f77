package disputes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionPlanResolved(t *testing.T) {
	eff, err := resolutionPlan(StatusResolved, true)
	require.NoError(t, err)
	assert.True(t, eff.RejectAllMilestones)
	assert.True(t, eff.RefundEscrow)
	assert.True(t, eff.ProjectDisputed)
	assert.False(t, eff.RestorePrior)

	// outcome does not depend on a tied milestone
	eff2, err := resolutionPlan(StatusResolved, false)
	require.NoError(t, err)
	assert.Equal(t, eff, eff2)
}

func TestResolutionPlanClosed(t *testing.T) {
	eff, err := resolutionPlan(StatusClosed, true)
	require.NoError(t, err)
	assert.True(t, eff.MilestoneDisputed)
	assert.True(t, eff.ProjectDisputed)
	assert.False(t, eff.RejectAllMilestones)
	assert.False(t, eff.RefundEscrow)

	eff, err = resolutionPlan(StatusClosed, false)
	require.NoError(t, err)
	assert.False(t, eff.MilestoneDisputed)
	assert.True(t, eff.ProjectDisputed)
}

func TestResolutionPlanRejected(t *testing.T) {
	eff, err := resolutionPlan(StatusRejected, true)
	require.NoError(t, err)
	assert.True(t, eff.RestorePrior)
	assert.False(t, eff.RejectAllMilestones)
	assert.False(t, eff.RefundEscrow)
	assert.False(t, eff.ProjectDisputed)
}

// A redo unfreezes the project but keeps the dispute live; resolving it
// afterward must re-freeze the project rather than trust the state left
// by OpenDispute.
func TestResolutionPlanFreezesProjectAfterRedo(t *testing.T) {
	for _, outcome := range []string{StatusResolved, StatusClosed} {
		eff, err := resolutionPlan(outcome, true)
		require.NoError(t, err)
		assert.True(t, eff.ProjectDisputed, "outcome %q must stamp the project DISPUTED", outcome)
	}
}

func TestRedoNote(t *testing.T) {
	assert.Equal(t, "Rework requested by moderation", redoNote(""))
	assert.Equal(t, "Rework requested by moderation - missing deliverable", redoNote("missing deliverable"))
}

func TestResolutionPlanInvalidOutcome(t *testing.T) {
	for _, outcome := range []string{StatusOpen, StatusUnderReview, "refund", ""} {
		_, err := resolutionPlan(outcome, true)
		assert.Error(t, err, "outcome %q should be rejected", outcome)
	}
}
