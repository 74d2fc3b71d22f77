package projects

import "time"

// Project statuses
const (
	ProjectInProgress = "IN_PROGRESS"
	ProjectCompleted  = "COMPLETED"
	ProjectDisputed   = "DISPUTED"
)

// Milestone statuses
const (
	MilestoneDraft      = "DRAFT"
	MilestoneLocked     = "LOCKED"
	MilestoneInProgress = "IN_PROGRESS"
	MilestoneSubmitted  = "SUBMITTED"
	MilestoneApproved   = "APPROVED"
	MilestoneRejected   = "REJECTED"
	MilestonePaid       = "PAID"
	MilestoneDisputed   = "DISPUTED"
)

// Project is a matched service request in delivery
type Project struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"request_id"`
	ProposalID       string    `json:"proposal_id"`
	CustomerID       string    `json:"customer_id"`
	ProviderID       string    `json:"provider_id"`
	Title            string    `json:"title"`
	BidAmount        int64     `json:"bid_amount"`
	Status           string    `json:"status"`
	MilestonesLocked bool      `json:"milestones_locked"`
	CompanyApproved  bool      `json:"company_approved"`
	ProviderApproved bool      `json:"provider_approved"`
	CreatedAt        time.Time `json:"created_at"`
}

// Milestone is one deliverable of a project
type Milestone struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	Sequence  int       `json:"sequence"`
	DueDays   int       `json:"due_days,omitempty"`
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
