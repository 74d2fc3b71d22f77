package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail       = "email:welcome"
	TaskPasswordReset      = "email:password_reset"
	TaskProposalAccepted   = "email:proposal_accepted"
	TaskMilestoneSubmitted = "email:milestone_submitted"
	TaskMilestonePaid      = "email:milestone_paid"
	TaskDisputeOpened      = "email:dispute_opened"
	TaskDisputeResolved    = "email:dispute_resolved"
	TaskKycReviewed        = "email:kyc_reviewed"
	TaskMessageNew         = "email:message_new"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset payload
type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// Proposal accepted payload (sent to provider)
type ProposalAcceptedPayload struct {
	ProposalID string        `json:"proposal_id"`
	ProjectID  string        `json:"project_id"`
	ProviderID string        `json:"provider_id"`
	Email      string        `json:"email"`
	BidAmount  int64         `json:"bid_amount"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// Milestone submitted payload (sent to customer)
type MilestoneSubmittedPayload struct {
	MilestoneID string        `json:"milestone_id"`
	ProjectID   string        `json:"project_id"`
	CustomerID  string        `json:"customer_id"`
	Email       string        `json:"email"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// Milestone paid payload (sent to provider)
type MilestonePaidPayload struct {
	MilestoneID string        `json:"milestone_id"`
	ProjectID   string        `json:"project_id"`
	ProviderID  string        `json:"provider_id"`
	Email       string        `json:"email"`
	Amount      int64         `json:"amount"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// Dispute opened payload (sent to the other party)
type DisputeOpenedPayload struct {
	DisputeID string        `json:"dispute_id"`
	ProjectID string        `json:"project_id"`
	RaisedBy  string        `json:"raised_by"`
	Email     string        `json:"email"`
	Reason    string        `json:"reason"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}

// Dispute resolved payload (sent to both parties)
type DisputeResolvedPayload struct {
	DisputeID string        `json:"dispute_id"`
	ProjectID string        `json:"project_id"`
	Outcome   string        `json:"outcome"`
	Email     string        `json:"email"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}

// KYC reviewed payload (sent to the document owner)
type KycReviewedPayload struct {
	DocumentID string        `json:"document_id"`
	UserID     string        `json:"user_id"`
	Email      string        `json:"email"`
	Outcome    string        `json:"outcome"`
	Envelope   EmailEnvelope `json:"envelope"`
	SentAt     time.Time     `json:"sent_at"`
}

// Message new payload (sent to recipient on new message)
type MessageNewPayload struct {
	ProjectID string        `json:"project_id"`
	SenderID  string        `json:"sender_id"`
	Recipient string        `json:"recipient"`
	Email     string        `json:"email"`
	Body      string        `json:"body"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
