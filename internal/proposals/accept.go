package proposals

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
)

// AcceptProposal - company accepts a proposal. One transaction creates the
// project, clones the milestone plan, flips the request to MATCHED and
// declines sibling proposals. The provider notification fires after commit.
func AcceptProposal(c echo.Context) error {
	customerID, ok := c.Get("user_id").(string)
	if !ok || customerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	proposalID := c.Param("id")
	if _, err := uuid.Parse(proposalID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid proposal id format"})
	}

	ctx := context.Background()

	var requestID, providerID, proposalStatus, requestStatus, requestTitle, owner string
	var bidAmount int64
	err := db.Conn.QueryRow(ctx,
		`SELECT p.request_id, p.provider_id, p.status, p.bid_amount, sr.status, sr.title, sr.customer_id
         FROM proposals p JOIN service_requests sr ON sr.id = p.request_id
         WHERE p.id = $1`, proposalID,
	).Scan(&requestID, &providerID, &proposalStatus, &bidAmount, &requestStatus, &requestTitle, &owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch proposal"})
	}
	if owner != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your service request"})
	}
	if proposalStatus != "PENDING" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "proposal is no longer pending"})
	}
	if requestStatus != "OPEN" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service request is no longer open"})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	projectID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO projects (id, request_id, proposal_id, customer_id, provider_id, title, bid_amount, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, 'IN_PROGRESS', $8)`,
		projectID, requestID, proposalID, customerID, providerID, requestTitle, bidAmount, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create project"})
	}

	// Clone the proposed milestone plan as DRAFT milestones
	_, err = tx.Exec(ctx,
		`INSERT INTO milestones (id, project_id, title, amount, sequence, due_days, status)
         SELECT gen_random_uuid(), $1, title, amount, sequence, due_days, 'DRAFT'
         FROM proposal_milestones WHERE proposal_id = $2`,
		projectID, proposalID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not clone milestone plan"})
	}

	_, err = tx.Exec(ctx, `UPDATE proposals SET status = 'ACCEPTED' WHERE id = $1`, proposalID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not accept proposal"})
	}

	_, err = tx.Exec(ctx,
		`UPDATE proposals SET status = 'DECLINED' WHERE request_id = $1 AND id <> $2 AND status = 'PENDING'`,
		requestID, proposalID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decline sibling proposals"})
	}

	_, err = tx.Exec(ctx, `UPDATE service_requests SET status = 'MATCHED', updated_at = NOW() WHERE id = $1`, requestID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update service request"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	// One provider notification, best effort
	ref := projectID
	if nErr := alerts.CreateNotification(providerID, "proposal:accepted", "Your proposal was accepted",
		"A project has been created from your proposal. Agree on the milestone plan to begin.", &ref, nil); nErr != nil {
		log.Printf("proposal accept notification failed for %s: %v", providerID, nErr)
	}
	var providerEmail string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, providerID).Scan(&providerEmail)
	if providerEmail != "" {
		_ = alerts.EnqueueProposalAccepted(proposalID, projectID, providerID, providerEmail, bidAmount)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "proposal accepted",
		"project_id": projectID,
	})
}

// DeclineProposal - company declines a pending proposal
func DeclineProposal(c echo.Context) error {
	customerID, ok := c.Get("user_id").(string)
	if !ok || customerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	proposalID := c.Param("id")

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE proposals p SET status = 'DECLINED'
         FROM service_requests sr
         WHERE p.id = $1 AND sr.id = p.request_id AND sr.customer_id = $2 AND p.status = 'PENDING'`,
		proposalID, customerID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not decline proposal"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found, not yours, or no longer pending"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "proposal declined"})
}
