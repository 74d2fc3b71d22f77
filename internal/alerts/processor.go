package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the Asynq server and initializes a shared client.
func Init() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		// Prefer docker hostname, fallback to localhost
		if host := os.Getenv("REDIS_HOST"); host != "" {
			port := os.Getenv("REDIS_PORT")
			if port == "" {
				port = "6379"
			}
			redisAddr = host + ":" + port
		} else {
			redisAddr = "redis:6379"
			if os.Getenv("RUN_LOCAL") == "true" {
				redisAddr = "127.0.0.1:6379"
			}
		}
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskPasswordReset, handlePasswordReset)
	mux.HandleFunc(TaskProposalAccepted, handleProposalAccepted)
	mux.HandleFunc(TaskMilestoneSubmitted, handleMilestoneSubmitted)
	mux.HandleFunc(TaskMilestonePaid, handleMilestonePaid)
	mux.HandleFunc(TaskDisputeOpened, handleDisputeOpened)
	mux.HandleFunc(TaskDisputeResolved, handleDisputeResolved)
	mux.HandleFunc(TaskKycReviewed, handleKycReviewed)
	mux.HandleFunc(TaskMessageNew, handleMessageNew)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
			"alerts": 5,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

// Handlers below parse payloads and deliver via the configured mailer.

func handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] WelcomeEmail send failed: %v", err)
		return err
	}
	log.Printf("[notify] WelcomeEmail sent -> to=%s user=%s", p.Email, p.UserID)
	return nil
}

func handlePasswordReset(_ context.Context, t *asynq.Task) error {
	var p PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] PasswordReset send failed: %v", err)
		return err
	}
	log.Printf("[notify] PasswordReset sent -> to=%s", p.Email)
	return nil
}

func handleProposalAccepted(_ context.Context, t *asynq.Task) error {
	var p ProposalAcceptedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] ProposalAccepted send failed: %v", err)
		return err
	}
	log.Printf("[notify] ProposalAccepted sent -> proposal=%s to=%s", p.ProposalID, p.Email)
	return nil
}

func handleMilestoneSubmitted(_ context.Context, t *asynq.Task) error {
	var p MilestoneSubmittedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] MilestoneSubmitted send failed: %v", err)
		return err
	}
	log.Printf("[notify] MilestoneSubmitted sent -> milestone=%s to=%s", p.MilestoneID, p.Email)
	return nil
}

func handleMilestonePaid(_ context.Context, t *asynq.Task) error {
	var p MilestonePaidPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] MilestonePaid send failed: %v", err)
		return err
	}
	log.Printf("[notify] MilestonePaid sent -> milestone=%s to=%s", p.MilestoneID, p.Email)
	return nil
}

func handleDisputeOpened(_ context.Context, t *asynq.Task) error {
	var p DisputeOpenedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] DisputeOpened send failed: %v", err)
		return err
	}
	log.Printf("[notify] DisputeOpened sent -> dispute=%s to=%s", p.DisputeID, p.Email)
	return nil
}

func handleDisputeResolved(_ context.Context, t *asynq.Task) error {
	var p DisputeResolvedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] DisputeResolved send failed: %v", err)
		return err
	}
	log.Printf("[notify] DisputeResolved sent -> dispute=%s outcome=%s", p.DisputeID, p.Outcome)
	return nil
}

func handleKycReviewed(_ context.Context, t *asynq.Task) error {
	var p KycReviewedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] KycReviewed send failed: %v", err)
		return err
	}
	log.Printf("[notify] KycReviewed sent -> doc=%s outcome=%s", p.DocumentID, p.Outcome)
	return nil
}

func handleMessageNew(_ context.Context, t *asynq.Task) error {
	var p MessageNewPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] MessageNew send failed: %v", err)
		return err
	}
	log.Printf("[notify] MessageNew sent -> project=%s to=%s", p.ProjectID, p.Email)
	return nil
}
