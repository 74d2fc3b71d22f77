package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name string) error {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	base = strings.TrimRight(base, "/")

	subject := fmt.Sprintf("Welcome to Worklane, %s!", name)
	body := fmt.Sprintf("Hi %s, thanks for joining Worklane.\n\nOpen Worklane: %s\n\nIf the link doesn't work, copy and paste the URL above.", name, base)

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWelcomeEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueuePasswordReset schedules a password reset notification
func EnqueuePasswordReset(userID, email, resetURL, name string) error {
	expiry := os.Getenv("PASSWORD_RESET_EXP_MINUTES")
	if expiry == "" {
		expiry = "30"
	}
	subject := "Password reset instructions"
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset your Worklane password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in %s minutes. If you did not request this, no action is required.\n\n— Worklane Team", name, resetURL, expiry)

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := PasswordResetPayload{UserID: userID, Email: email, ResetURL: resetURL, Envelope: env, Requested: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskPasswordReset, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueProposalAccepted notifies the provider that their bid won
func EnqueueProposalAccepted(proposalID, projectID, providerID, providerEmail string, bidAmount int64) error {
	env := EmailEnvelope{
		To:      providerEmail,
		Subject: "Your proposal was accepted",
		Body:    fmt.Sprintf("Your proposal %s was accepted. Project %s has been created for %d. Agree on the milestone plan to get started.", proposalID, projectID, bidAmount),
	}
	payload := ProposalAcceptedPayload{ProposalID: proposalID, ProjectID: projectID, ProviderID: providerID, Email: providerEmail, BidAmount: bidAmount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskProposalAccepted, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueMilestoneSubmitted notifies the customer that work is ready for review
func EnqueueMilestoneSubmitted(milestoneID, projectID, customerID, customerEmail string) error {
	env := EmailEnvelope{
		To:      customerEmail,
		Subject: "Milestone submitted for review",
		Body:    fmt.Sprintf("A milestone on project %s was submitted. Review and approve to release the escrowed payment.", projectID),
	}
	payload := MilestoneSubmittedPayload{MilestoneID: milestoneID, ProjectID: projectID, CustomerID: customerID, Email: customerEmail, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskMilestoneSubmitted, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueMilestonePaid notifies the provider of a released payment
func EnqueueMilestonePaid(milestoneID, projectID, providerID, providerEmail string, amount int64) error {
	env := EmailEnvelope{
		To:      providerEmail,
		Subject: "Milestone payment released",
		Body:    fmt.Sprintf("Milestone %s on project %s is paid. Amount %d has been released to your wallet.", milestoneID, projectID, amount),
	}
	payload := MilestonePaidPayload{MilestoneID: milestoneID, ProjectID: projectID, ProviderID: providerID, Email: providerEmail, Amount: amount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskMilestonePaid, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueDisputeOpened notifies the other party that a dispute was filed
func EnqueueDisputeOpened(disputeID, projectID, raisedBy, otherEmail, reason string) error {
	env := EmailEnvelope{
		To:      otherEmail,
		Subject: "A dispute was opened on your project",
		Body:    fmt.Sprintf("A dispute was opened on project %s: %s\n\nAn administrator will review it shortly.", projectID, reason),
	}
	payload := DisputeOpenedPayload{DisputeID: disputeID, ProjectID: projectID, RaisedBy: raisedBy, Email: otherEmail, Reason: reason, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskDisputeOpened, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("alerts"))
	return err
}

// EnqueueDisputeResolved informs a party of the dispute outcome
func EnqueueDisputeResolved(disputeID, projectID, outcome, email string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Dispute " + strings.ToLower(outcome),
		Body:    fmt.Sprintf("The dispute on project %s was closed with outcome %s.", projectID, outcome),
	}
	payload := DisputeResolvedPayload{DisputeID: disputeID, ProjectID: projectID, Outcome: outcome, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskDisputeResolved, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("alerts"))
	return err
}

// EnqueueKycReviewed informs a user of their document review outcome
func EnqueueKycReviewed(documentID, userID, email, outcome string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your identity document was reviewed",
		Body:    fmt.Sprintf("Your document was %s. Log in to Worklane to see the details.", outcome),
	}
	payload := KycReviewedPayload{DocumentID: documentID, UserID: userID, Email: email, Outcome: outcome, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskKycReviewed, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueMessageNew notifies the recipient of a new project message
func EnqueueMessageNew(projectID, senderID, recipientID, email, body string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "New message on your project",
		Body:    fmt.Sprintf("You have a new message on project %s:\n\n%s", projectID, body),
	}
	payload := MessageNewPayload{ProjectID: projectID, SenderID: senderID, Recipient: recipientID, Email: email, Body: body, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskMessageNew, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}
