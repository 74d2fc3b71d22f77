package projects

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
	"github.com/worklane/worklane/internal/messaging"
	"github.com/worklane/worklane/internal/payments"
)

// StartMilestone - provider begins work on a locked milestone
func StartMilestone(c echo.Context) error {
	return progressMilestone(c, ActionStart)
}

// SubmitMilestone - provider delivers a milestone for review
func SubmitMilestone(c echo.Context) error {
	return progressMilestone(c, ActionSubmit)
}

// ApproveMilestone - company accepts a submitted milestone. If an escrowed
// payment exists it is released immediately and the milestone goes to PAID.
func ApproveMilestone(c echo.Context) error {
	return progressMilestone(c, ActionApprove)
}

// RejectMilestone - company sends a submitted milestone back
func RejectMilestone(c echo.Context) error {
	return progressMilestone(c, ActionReject)
}

// RestartMilestone - provider resumes work on a rejected milestone
func RestartMilestone(c echo.Context) error {
	return progressMilestone(c, ActionRestart)
}

func progressMilestone(c echo.Context, act Action) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	milestoneID := c.Param("id")
	if milestoneID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing milestone id"})
	}

	var body struct {
		Note string `json:"note"`
	}
	_ = c.Bind(&body)

	ctx := context.Background()

	var projectID, status, projectStatus, customerID, providerID string
	var locked bool
	err := db.Conn.QueryRow(ctx,
		`SELECT m.project_id, m.status, p.status, p.customer_id, p.provider_id, p.milestones_locked
         FROM milestones m JOIN projects p ON p.id = m.project_id
         WHERE m.id = $1`, milestoneID,
	).Scan(&projectID, &status, &projectStatus, &customerID, &providerID, &locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "milestone not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch milestone"})
	}

	var role string
	switch uid {
	case customerID:
		role = "customer"
	case providerID:
		role = "provider"
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	if !locked {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone plan is not locked yet"})
	}
	if projectStatus == ProjectDisputed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "project is under dispute"})
	}

	next, allowed := NextStatus(status, act, role)
	if !allowed {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":            "transition not allowed",
			"milestone_status": status,
			"action":           string(act),
		})
	}

	if act == ActionSubmit || act == ActionReject {
		_, err = db.Conn.Exec(ctx,
			`UPDATE milestones SET status = $1, note = $2, updated_at = NOW() WHERE id = $3`,
			next, body.Note, milestoneID,
		)
	} else {
		_, err = db.Conn.Exec(ctx,
			`UPDATE milestones SET status = $1, updated_at = NOW() WHERE id = $2`,
			next, milestoneID,
		)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update milestone"})
	}

	messaging.BroadcastMilestoneEvent(projectID, echo.Map{
		"milestone_id": milestoneID,
		"status":       next,
		"action":       string(act),
	})

	switch act {
	case ActionSubmit:
		notifySubmitted(ctx, milestoneID, projectID, customerID)
	case ActionApprove:
		released, relErr := payments.ReleaseMilestonePayment(ctx, milestoneID)
		if relErr != nil {
			log.Printf("payment release failed for milestone %s: %v", milestoneID, relErr)
		}
		if released {
			maybeCompleteProject(ctx, projectID)
			return c.JSON(http.StatusOK, echo.Map{"message": "milestone approved and payment released", "status": MilestonePaid})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "milestone approved, no escrowed payment to release", "status": next})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "milestone updated", "status": next})
}

func notifySubmitted(ctx context.Context, milestoneID, projectID, customerID string) {
	ref := milestoneID
	if err := alerts.CreateNotification(customerID, "milestone:submitted", "Milestone submitted for review",
		"A milestone was submitted. Review and approve to release the escrowed payment.", &ref, nil); err != nil {
		log.Printf("milestone submit notification failed: %v", err)
	}
	var email string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, customerID).Scan(&email)
	if email != "" {
		_ = alerts.EnqueueMilestoneSubmitted(milestoneID, projectID, customerID, email)
	}
}

// maybeCompleteProject flips the project to COMPLETED once every milestone
// is PAID. Best effort: a failure here leaves the project IN_PROGRESS and
// the next approval will retry.
func maybeCompleteProject(ctx context.Context, projectID string) {
	var remaining int
	if err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM milestones WHERE project_id = $1 AND status <> 'PAID'`, projectID,
	).Scan(&remaining); err != nil {
		log.Printf("project completion check failed for %s: %v", projectID, err)
		return
	}
	if remaining > 0 {
		return
	}
	if _, err := db.Conn.Exec(ctx,
		`UPDATE projects SET status = 'COMPLETED', updated_at = NOW() WHERE id = $1 AND status = 'IN_PROGRESS'`, projectID,
	); err != nil {
		log.Printf("project completion update failed for %s: %v", projectID, err)
	}
}
