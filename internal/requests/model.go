package requests

import "time"

// ServiceRequest statuses
const (
	StatusOpen      = "OPEN"
	StatusMatched   = "MATCHED"
	StatusCancelled = "CANCELLED"
)

// ServiceRequest is a company's posted job before any proposal is accepted
type ServiceRequest struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category,omitempty"`
	BudgetMin   int64      `json:"budget_min"`
	BudgetMax   int64      `json:"budget_max"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Opportunity is a discovery row for providers, with proposal count
type Opportunity struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category,omitempty"`
	BudgetMin     int64      `json:"budget_min"`
	BudgetMax     int64      `json:"budget_max"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ProposalCount int        `json:"proposal_count"`
	CreatedAt     time.Time  `json:"created_at"`
}
