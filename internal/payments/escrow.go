package payments

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// InitMilestonePayment creates a pending payment for a milestone. Only the
// project's customer can fund a milestone, and only once the plan is locked.
func InitMilestonePayment(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	milestoneID := c.Param("id")

	ctx := context.Background()

	var projectID, customerID, providerID, mStatus string
	var amount int64
	var locked bool
	err := db.Conn.QueryRow(ctx,
		`SELECT m.project_id, p.customer_id, p.provider_id, m.status, m.amount, p.milestones_locked
         FROM milestones m JOIN projects p ON p.id = m.project_id
         WHERE m.id = $1`, milestoneID,
	).Scan(&projectID, &customerID, &providerID, &mStatus, &amount, &locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "milestone not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch milestone"})
	}

	if uid != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the project owner can fund milestones"})
	}
	if !locked {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "milestone plan is not locked yet"})
	}

	// Refuse a second live payment for the same milestone
	var existing int
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments
         WHERE milestone_id = $1 AND status IN ('PENDING', 'IN_PROGRESS', 'ESCROWED', 'RELEASED')`,
		milestoneID,
	).Scan(&existing)
	if existing > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "milestone already has an active payment"})
	}

	paymentID := uuid.New().String()
	gatewayRef := "PAY-" + uuid.New().String()
	_, err = db.Conn.Exec(ctx,
		`INSERT INTO payments (id, milestone_id, project_id, customer_id, provider_id, amount, status, gateway_ref, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, 'PENDING', $7, $8, $8)`,
		paymentID, milestoneID, projectID, customerID, providerID, amount, gatewayRef, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create payment"})
	}

	// mock checkout URL until a real gateway is wired in
	paymentURL := os.Getenv("MOCK_PAYMENT_URL")
	if paymentURL == "" {
		paymentURL = "https://pay.worklane.dev/mock/" + paymentID
	}

	// intent accepted by the (mock) gateway
	_, _ = db.Conn.Exec(ctx,
		`UPDATE payments SET status = 'IN_PROGRESS', updated_at = NOW() WHERE id = $1`, paymentID)

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id":  paymentID,
		"gateway_ref": gatewayRef,
		"amount":      amount,
		"status":      StatusInProgress,
		"message":     "Payment initialized. Complete checkout at " + paymentURL,
	})
}

// ConfirmMilestonePayment moves the milestone amount from the customer's
// balance into escrow. On insufficient funds the payment is stamped FAILED.
func ConfirmMilestonePayment(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	paymentID := c.Param("id")

	ctx := context.Background()

	var customerID, status string
	var amount int64
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, status, amount FROM payments WHERE id = $1`, paymentID,
	).Scan(&customerID, &status, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch payment"})
	}

	if uid != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your payment"})
	}
	if status != StatusPending && status != StatusInProgress {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment is not awaiting confirmation", "status": status})
	}

	var balance int64
	if err := db.Conn.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, uid).Scan(&balance); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch wallet balance"})
	}
	if amount > balance {
		_, _ = db.Conn.Exec(ctx,
			`UPDATE payments SET status = 'FAILED', updated_at = NOW() WHERE id = $1`, paymentID)
		_, _ = db.Conn.Exec(ctx,
			`INSERT INTO transactions (id, user_id, type, amount, status, reference, created_at)
             VALUES ($1, $2, 'escrow_fund', $3, 'failed', $4, $5)`,
			uuid.New().String(), uid, amount, paymentID, time.Now(),
		)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient balance"})
	}

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balance = balance - $1, escrow = escrow + $1 WHERE user_id = $2`,
		amount, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update wallet"})
	}

	_, err = tx.Exec(ctx,
		`UPDATE payments SET status = 'ESCROWED', updated_at = NOW() WHERE id = $1`, paymentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update payment"})
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, status, reference, created_at)
         VALUES ($1, $2, 'escrow_fund', $3, 'completed', $4, $5)`,
		uuid.New().String(), uid, amount, paymentID, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record transaction"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize payment"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id": paymentID,
		"amount":     amount,
		"status":     StatusEscrowed,
		"message":    "Funds escrowed. They will be released when the milestone is approved.",
	})
}
