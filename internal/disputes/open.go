package disputes

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
	"github.com/worklane/worklane/internal/projects"
)

// OpenDispute lets a project participant open a dispute, optionally tied to
// a single milestone. The project is frozen at DISPUTED and a tied milestone
// moves to DISPUTED with its previous status saved for later reinstatement.
// POST /projects/:id/disputes
func OpenDispute(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project id"})
	}

	var req struct {
		Reason      string  `json:"reason"`
		MilestoneID *string `json:"milestone_id"`
	}
	if err := c.Bind(&req); err != nil || req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload: reason required"})
	}

	ctx := context.Background()

	var customerID, providerID, projectStatus string
	if err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id, status FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID, &projectStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if uid != customerID && uid != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}
	if projectStatus == projects.ProjectDisputed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "project already has an active dispute"})
	}

	if req.MilestoneID != nil {
		var mProject, mStatus string
		if err := db.Conn.QueryRow(ctx,
			`SELECT project_id, status FROM milestones WHERE id = $1`, *req.MilestoneID,
		).Scan(&mProject, &mStatus); err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "milestone not found"})
		}
		if mProject != projectID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone does not belong to this project"})
		}
		if !projects.ActiveForDispute(mStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone cannot be disputed in its current state", "status": mStatus})
		}
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	disputeID := uuid.New().String()
	var createdAt time.Time
	if err := tx.QueryRow(ctx,
		`INSERT INTO disputes (id, project_id, milestone_id, raised_by, reason, status)
         VALUES ($1, $2, $3, $4, $5, 'OPEN') RETURNING created_at`,
		disputeID, projectID, req.MilestoneID, uid, req.Reason,
	).Scan(&createdAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not open dispute"})
	}

	if req.MilestoneID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE milestones SET prior_status = status, status = 'DISPUTED', updated_at = NOW() WHERE id = $1`,
			*req.MilestoneID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not freeze milestone"})
		}
	}
	if _, err := tx.Exec(ctx,
		`UPDATE projects SET status = 'DISPUTED', updated_at = NOW() WHERE id = $1`, projectID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not freeze project"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize dispute"})
	}

	// Notify the other participant (best-effort)
	other := customerID
	if uid == customerID {
		other = providerID
	}
	ref := disputeID
	if err := alerts.CreateNotification(other, "dispute:opened", "Dispute opened on your project", req.Reason, &ref, nil); err != nil {
		log.Printf("dispute notification failed: %v", err)
	}
	var otherEmail string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, other).Scan(&otherEmail)
	if otherEmail != "" {
		_ = alerts.EnqueueDisputeOpened(disputeID, projectID, uid, otherEmail, req.Reason)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"dispute_id": disputeID,
		"status":     StatusOpen,
		"created_at": createdAt.UTC().Format(time.RFC3339),
	})
}

// GetProjectDisputes returns the dispute history on a project for a participant
func GetProjectDisputes(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	projectID := c.Param("id")

	ctx := context.Background()

	var customerID, providerID string
	if err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}
	if uid != customerID && uid != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	rows, err := db.Conn.Query(ctx,
		`SELECT id, project_id, milestone_id, raised_by, reason, status, resolution_note, transaction_ref, created_at, resolved_at
         FROM disputes WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
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
