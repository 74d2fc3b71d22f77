package disputes

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
	"github.com/worklane/worklane/internal/payments"
)

// GET /admin/disputes
func ListDisputes(c echo.Context) error {
	status := c.QueryParam("status")

	query := `SELECT id, project_id, milestone_id, raised_by, reason, status, resolution_note, transaction_ref, created_at, resolved_at
              FROM disputes`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch disputes"})
	}
	defer rows.Close()

	var items []Dispute
	for rows.Next() {
		var d Dispute
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.MilestoneID, &d.RaisedBy, &d.Reason, &d.Status,
			&d.ResolutionNote, &d.TransactionRef, &d.CreatedAt, &d.ResolvedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read dispute record"})
		}
		items = append(items, d)
	}
	return c.JSON(http.StatusOK, echo.Map{"disputes": items})
}

// GET /admin/disputes/:id
func GetDispute(c echo.Context) error {
	id := c.Param("id")

	var d Dispute
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, project_id, milestone_id, raised_by, reason, status, resolution_note, transaction_ref, created_at, resolved_at
         FROM disputes WHERE id = $1`, id,
	).Scan(&d.ID, &d.ProjectID, &d.MilestoneID, &d.RaisedBy, &d.Reason, &d.Status,
		&d.ResolutionNote, &d.TransactionRef, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dispute not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch dispute"})
	}
	return c.JSON(http.StatusOK, d)
}

// POST /admin/disputes/:id/review - pick up an open dispute
func ReviewDispute(c echo.Context) error {
	id := c.Param("id")

	tag, err := db.Conn.Exec(context.Background(),
		`UPDATE disputes SET status = 'UNDER_REVIEW' WHERE id = $1 AND status = 'OPEN'`, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update dispute"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dispute is not open"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "dispute under review", "dispute_id": id})
}

// POST /admin/disputes/:id/resolve
// Accepts RESOLVED, CLOSED or REJECTED. RESOLVED freezes the project,
// rejects every active milestone and refunds escrowed funds to the customer.
// CLOSED stamps the tied milestone DISPUTED and keeps the project frozen.
// REJECTED dismisses the dispute and reinstates the milestone and project.
func ResolveDispute(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload: status required"})
	}

	ctx := context.Background()

	var projectID, status string
	var milestoneID *string
	err := db.Conn.QueryRow(ctx,
		`SELECT project_id, milestone_id, status FROM disputes WHERE id = $1`, id,
	).Scan(&projectID, &milestoneID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dispute not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch dispute"})
	}
	if status != StatusOpen && status != StatusUnderReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dispute already settled", "status": status})
	}

	eff, err := resolutionPlan(req.Status, milestoneID != nil)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx,
		`UPDATE disputes SET status = $1, resolution_note = $2, resolved_by = $3, resolved_at = NOW()
         WHERE id = $4`, req.Status, req.Note, adminID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resolve dispute"})
	}

	if eff.RejectAllMilestones {
		if _, err = tx.Exec(ctx,
			`UPDATE milestones SET status = 'REJECTED', updated_at = NOW()
             WHERE project_id = $1 AND status NOT IN ('DRAFT', 'PAID')`, projectID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject milestones"})
		}
	}
	if eff.MilestoneDisputed && milestoneID != nil {
		if _, err = tx.Exec(ctx,
			`UPDATE milestones SET status = 'DISPUTED', updated_at = NOW() WHERE id = $1`, *milestoneID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to stamp milestone"})
		}
	}
	if eff.ProjectDisputed {
		if _, err = tx.Exec(ctx,
			`UPDATE projects SET status = 'DISPUTED', updated_at = NOW() WHERE id = $1`, projectID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to freeze project"})
		}
	}
	if eff.RestorePrior {
		if milestoneID != nil {
			if _, err = tx.Exec(ctx,
				`UPDATE milestones SET status = COALESCE(prior_status, 'IN_PROGRESS'), prior_status = NULL, updated_at = NOW()
                 WHERE id = $1`, *milestoneID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reinstate milestone"})
			}
		}
		if _, err = tx.Exec(ctx,
			`UPDATE projects SET status = 'IN_PROGRESS', updated_at = NOW() WHERE id = $1`, projectID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reinstate project"})
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize resolution"})
	}

	// Refund runs in its own transaction; a failure leaves the funds in
	// escrow and is surfaced in the logs for manual follow-up.
	if eff.RefundEscrow {
		if err := payments.RefundEscrowedForProject(ctx, projectID); err != nil {
			log.Printf("escrow refund failed for project %s: %v", projectID, err)
		}
	}

	notifyResolved(ctx, id, projectID, req.Status, req.Note)

	return c.JSON(http.StatusOK, echo.Map{"message": "resolved", "dispute_id": id, "status": req.Status})
}

// POST /admin/disputes/:id/redo - send the work back for another pass. The
// milestone and project resume IN_PROGRESS and the dispute stays open for
// review until the rework lands.
func RedoDispute(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	ctx := context.Background()

	var projectID, status string
	var milestoneID *string
	err := db.Conn.QueryRow(ctx,
		`SELECT project_id, milestone_id, status FROM disputes WHERE id = $1`, id,
	).Scan(&projectID, &milestoneID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dispute not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch dispute"})
	}
	if status != StatusOpen && status != StatusUnderReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dispute already settled", "status": status})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx,
		`UPDATE disputes SET status = 'UNDER_REVIEW', resolution_note = $1
         WHERE id = $2`, redoNote(req.Note), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update dispute"})
	}
	if milestoneID != nil {
		if _, err = tx.Exec(ctx,
			`UPDATE milestones SET status = 'IN_PROGRESS', prior_status = NULL, updated_at = NOW()
             WHERE id = $1`, *milestoneID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset milestone"})
		}
	}
	if _, err = tx.Exec(ctx,
		`UPDATE projects SET status = 'IN_PROGRESS', updated_at = NOW() WHERE id = $1`, projectID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reset project"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize redo"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "rework requested", "dispute_id": id, "status": StatusUnderReview})
}

// POST /admin/disputes/:id/payout - settle in the provider's favor by
// releasing the escrowed milestone payment.
func PayoutDispute(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")

	ctx := context.Background()

	var projectID, status string
	var milestoneID *string
	err := db.Conn.QueryRow(ctx,
		`SELECT project_id, milestone_id, status FROM disputes WHERE id = $1`, id,
	).Scan(&projectID, &milestoneID, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dispute not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch dispute"})
	}
	if status != StatusOpen && status != StatusUnderReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dispute already settled", "status": status})
	}
	if milestoneID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dispute has no milestone to pay out"})
	}

	released, err := payments.ReleaseMilestonePayment(ctx, *milestoneID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payout failed"})
	}
	if !released {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no escrowed payment on the disputed milestone"})
	}

	// simulated gateway reference for the settlement
	txRef := "SIM-" + uuid.New().String()
	if _, err = db.Conn.Exec(ctx,
		`UPDATE disputes SET status = 'RESOLVED', resolution_note = 'Settled in favor of provider',
                transaction_ref = $1, resolved_by = $2, resolved_at = NOW()
         WHERE id = $3`, txRef, adminID, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payout succeeded but dispute update failed"})
	}

	_, _ = db.Conn.Exec(ctx,
		`UPDATE projects SET status = 'IN_PROGRESS', updated_at = NOW() WHERE id = $1 AND status = 'DISPUTED'`, projectID)
	var remaining int
	if err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM milestones WHERE project_id = $1 AND status <> 'PAID'`, projectID).Scan(&remaining); err == nil && remaining == 0 {
		_, _ = db.Conn.Exec(ctx,
			`UPDATE projects SET status = 'COMPLETED', updated_at = NOW() WHERE id = $1`, projectID)
	}

	notifyResolved(ctx, id, projectID, StatusResolved, "Settled in favor of provider")

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "payout complete",
		"dispute_id":      id,
		"status":          StatusResolved,
		"transaction_ref": txRef,
	})
}

func notifyResolved(ctx context.Context, disputeID, projectID, outcome, note string) {
	var customerID, providerID string
	if err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID); err != nil {
		log.Printf("dispute resolution notify skipped: %v", err)
		return
	}

	ref := disputeID
	body := outcome
	if note != "" {
		body = outcome + " - " + note
	}
	for _, uid := range []string{customerID, providerID} {
		if err := alerts.CreateNotification(uid, "dispute:resolved", "Dispute resolved", body, &ref, nil); err != nil {
			log.Printf("dispute resolution notification failed: %v", err)
		}
		var email string
		_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, uid).Scan(&email)
		if email != "" {
			_ = alerts.EnqueueDisputeResolved(disputeID, projectID, outcome, email)
		}
	}
}
