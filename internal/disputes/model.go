package disputes

import "time"

const (
	StatusOpen        = "OPEN"
	StatusUnderReview = "UNDER_REVIEW"
	StatusResolved    = "RESOLVED"
	StatusClosed      = "CLOSED"
	// StatusRejected stamps a dismissed dispute. It sits outside the
	// steady-state lifecycle but is accepted on the resolve endpoint and
	// reverts the tied milestone to where it was before the dispute.
	StatusRejected = "REJECTED"
)

type Dispute struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	MilestoneID    *string    `json:"milestone_id,omitempty"`
	RaisedBy       string     `json:"raised_by"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	ResolutionNote *string    `json:"resolution_note,omitempty"`
	TransactionRef *string    `json:"transaction_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
}
