package proposals

import "time"

// Proposal statuses
const (
	StatusPending   = "PENDING"
	StatusAccepted  = "ACCEPTED"
	StatusDeclined  = "DECLINED"
	StatusWithdrawn = "WITHDRAWN"
)

// Proposal is a provider's bid against a service request
type Proposal struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	ProviderID   string    `json:"provider_id"`
	BidAmount    int64     `json:"bid_amount"`
	CoverLetter  string    `json:"cover_letter,omitempty"`
	DeliveryDays int       `json:"delivery_days,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// MilestoneInput is one entry of a proposed milestone plan
type MilestoneInput struct {
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
	Sequence int    `json:"sequence"`
	DueDays  int    `json:"due_days"`
}
