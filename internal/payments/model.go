package payments

import "time"

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusEscrowed   = "ESCROWED"
	StatusReleased   = "RELEASED"
	StatusFailed     = "FAILED"
)

type Payment struct {
	ID          string    `json:"id"`
	MilestoneID string    `json:"milestone_id"`
	ProjectID   string    `json:"project_id"`
	CustomerID  string    `json:"customer_id"`
	ProviderID  string    `json:"provider_id"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	GatewayRef  string    `json:"gateway_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
