package proposals

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type SendProposalRequest struct {
	BidAmount    int64            `json:"bid_amount" validate:"gt=0"`
	CoverLetter  string           `json:"cover_letter"`
	DeliveryDays int              `json:"delivery_days"`
	Milestones   []MilestoneInput `json:"milestones"`
}

// SendProposal - provider bids on an open service request with a milestone
// plan. The target request comes from the route path, never the body.
func SendProposal(c echo.Context) error {
	providerID, ok := c.Get("user_id").(string)
	if !ok || providerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	requestID := c.Param("id")
	if _, err := uuid.Parse(requestID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}

	var req SendProposalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a positive bid is required"})
	}

	ctx := context.Background()

	// The request must exist and still be open
	var customerID, status string
	var budgetMin, budgetMax int64
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, status, budget_min, budget_max FROM service_requests WHERE id = $1`, requestID,
	).Scan(&customerID, &status, &budgetMin, &budgetMax)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch service request"})
	}
	if status != "OPEN" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "service request is no longer open"})
	}
	if customerID == providerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot bid on your own request"})
	}

	if err := validateBidWithinBudget(req.BidAmount, budgetMin, budgetMax); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := ValidateMilestonePlan(req.BidAmount, req.Milestones); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	// One pending proposal per provider per request
	var existing string
	dupErr := db.Conn.QueryRow(ctx,
		`SELECT id FROM proposals WHERE request_id = $1 AND provider_id = $2 AND status = 'PENDING'`,
		requestID, providerID,
	).Scan(&existing)
	if dupErr == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you already have a pending proposal on this request"})
	}
	if !errors.Is(dupErr, pgx.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing proposal"})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	proposalID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO proposals (id, request_id, provider_id, bid_amount, cover_letter, delivery_days, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', $7)`,
		proposalID, requestID, providerID, req.BidAmount, req.CoverLetter, req.DeliveryDays, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create proposal"})
	}

	for _, m := range req.Milestones {
		_, err = tx.Exec(ctx,
			`INSERT INTO proposal_milestones (id, proposal_id, title, amount, sequence, due_days)
             VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New().String(), proposalID, m.Title, m.Amount, m.Sequence, m.DueDays,
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save milestone plan"})
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"proposal_id": proposalID,
		"message":     "proposal sent successfully",
	})
}

// WithdrawProposal - provider withdraws a pending proposal
func WithdrawProposal(c echo.Context) error {
	providerID, ok := c.Get("user_id").(string)
	if !ok || providerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	proposalID := c.Param("id")

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE proposals SET status = 'WITHDRAWN' WHERE id = $1 AND provider_id = $2 AND status = 'PENDING'`,
		proposalID, providerID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not withdraw proposal"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found, not yours, or no longer pending"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "proposal withdrawn"})
}
