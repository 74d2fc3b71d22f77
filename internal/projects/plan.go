package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
	"github.com/worklane/worklane/internal/proposals"
)

type ReplacePlanRequest struct {
	Milestones []proposals.MilestoneInput `json:"milestones"`
}

// ReplaceMilestonePlan - company rewrites the milestone plan while it is
// still unlocked. The whole replace runs in one transaction and resets
// both approval flags, so the provider has to re-approve the new plan.
func ReplaceMilestonePlan(c echo.Context) error {
	customerID, ok := c.Get("user_id").(string)
	if !ok || customerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	projectID := c.Param("id")

	var req ReplacePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := context.Background()

	var owner string
	var bidAmount int64
	var locked bool
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, bid_amount, milestones_locked FROM projects WHERE id = $1`, projectID,
	).Scan(&owner, &bidAmount, &locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if owner != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your project"})
	}
	if locked {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone plan is locked"})
	}

	if err := proposals.ValidateMilestonePlan(bidAmount, req.Milestones); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM milestones WHERE project_id = $1`, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not clear old plan"})
	}

	for _, m := range req.Milestones {
		_, err = tx.Exec(ctx,
			`INSERT INTO milestones (id, project_id, title, amount, sequence, due_days, status)
             VALUES ($1, $2, $3, $4, $5, $6, 'DRAFT')`,
			uuid.New().String(), projectID, m.Title, m.Amount, m.Sequence, m.DueDays,
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save milestone plan"})
		}
	}

	// Any edit invalidates both approvals
	_, err = tx.Exec(ctx,
		`UPDATE projects SET company_approved = FALSE, provider_approved = FALSE, updated_at = NOW() WHERE id = $1`,
		projectID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not reset approvals"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "milestone plan updated, approvals reset"})
}

// ApproveMilestonePlan - either party approves the current plan. When the
// second approval lands, the same transaction locks the plan and flips
// every DRAFT milestone to LOCKED.
func ApproveMilestonePlan(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	projectID := c.Param("id")

	ctx := context.Background()

	var customerID, providerID string
	var companyApproved, providerApproved, locked bool
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id, company_approved, provider_approved, milestones_locked
         FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID, &companyApproved, &providerApproved, &locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if locked {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone plan is already locked"})
	}

	var byCompany bool
	switch uid {
	case customerID:
		byCompany = true
	case providerID:
		byCompany = false
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}
	companyApproved, providerApproved, lockNow := planApproval(companyApproved, providerApproved, byCompany)

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE projects SET company_approved = $1, provider_approved = $2, milestones_locked = $3, updated_at = NOW()
         WHERE id = $4`,
		companyApproved, providerApproved, lockNow, projectID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record approval"})
	}

	if lockNow {
		_, err = tx.Exec(ctx,
			`UPDATE milestones SET status = 'LOCKED', updated_at = NOW() WHERE project_id = $1 AND status = 'DRAFT'`,
			projectID,
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not lock milestones"})
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	if lockNow {
		return c.JSON(http.StatusOK, echo.Map{"message": "both parties approved, milestone plan locked"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "approval recorded, waiting for the other party"})
}
