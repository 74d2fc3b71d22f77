package proposals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan(amounts ...int64) []MilestoneInput {
	ms := make([]MilestoneInput, len(amounts))
	for i, a := range amounts {
		ms[i] = MilestoneInput{Title: "phase", Amount: a, Sequence: i + 1, DueDays: 7}
	}
	return ms
}

func TestBidTolerance(t *testing.T) {
	assert.Equal(t, int64(200), bidTolerance(10000))
	assert.Equal(t, int64(1), bidTolerance(10))  // 2% would be 0, floor kicks in
	assert.Equal(t, int64(1), bidTolerance(50))  // exactly 1
	assert.Equal(t, int64(2), bidTolerance(100))
}

func TestValidateBidWithinBudget(t *testing.T) {
	assert.NoError(t, validateBidWithinBudget(5000, 1000, 10000))
	assert.NoError(t, validateBidWithinBudget(1000, 1000, 10000))
	assert.NoError(t, validateBidWithinBudget(10000, 1000, 10000))
	assert.Error(t, validateBidWithinBudget(999, 1000, 10000))
	assert.Error(t, validateBidWithinBudget(10001, 1000, 10000))
}

func TestValidateMilestonePlanWithinTolerance(t *testing.T) {
	// 1.5% over a 10000 bid is inside the 2% tolerance
	require.NoError(t, ValidateMilestonePlan(10000, plan(5000, 5150)))
}

func TestValidateMilestonePlanOverTolerance(t *testing.T) {
	// 5% over a 10000 bid is outside the tolerance
	err := ValidateMilestonePlan(10000, plan(5000, 5500))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tolerance")
}

func TestValidateMilestonePlanExactSum(t *testing.T) {
	assert.NoError(t, ValidateMilestonePlan(10000, plan(2500, 2500, 5000)))
}

func TestValidateMilestonePlanSmallBidFloor(t *testing.T) {
	// 2% of 10 rounds to 0 so the floor of 1 applies
	assert.NoError(t, ValidateMilestonePlan(10, plan(11)))
	assert.Error(t, ValidateMilestonePlan(10, plan(12)))
}

func TestValidateMilestonePlanSequence(t *testing.T) {
	ms := plan(5000, 5000)
	ms[1].Sequence = 3
	assert.Error(t, ValidateMilestonePlan(10000, ms))

	ms = plan(5000, 5000)
	ms[0].Sequence = 0
	ms[1].Sequence = 1
	assert.Error(t, ValidateMilestonePlan(10000, ms))

	// duplicate sequence
	ms = plan(5000, 5000)
	ms[1].Sequence = 1
	assert.Error(t, ValidateMilestonePlan(10000, ms))
}

func TestValidateMilestonePlanRejectsBadEntries(t *testing.T) {
	assert.Error(t, ValidateMilestonePlan(10000, nil))
	assert.Error(t, ValidateMilestonePlan(10000, plan(10000, 0)))

	ms := plan(10000)
	ms[0].Title = ""
	assert.Error(t, ValidateMilestonePlan(10000, ms))
}
