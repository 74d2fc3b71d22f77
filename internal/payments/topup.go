package payments

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type TopupRequest struct {
	Amount int64 `json:"amount" validate:"required,min=100"`
}

// TopupInit creates a new topup record (pending)
func TopupInit(c echo.Context) error {
	req := new(TopupRequest)
	if err := c.Bind(req); err != nil || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()
	topupID := uuid.New().String()

	_, err := db.Conn.Exec(ctx,
		`INSERT INTO topups (id, user_id, amount, status, created_at)
         VALUES ($1, $2, $3, 'pending', $4)`,
		topupID, uid, req.Amount, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create topup"})
	}

	// mock payment URL until a real gateway is wired in
	paymentURL := os.Getenv("MOCK_PAYMENT_URL")
	if paymentURL == "" {
		paymentURL = "https://pay.worklane.dev/mock/" + topupID
	}

	return c.JSON(http.StatusOK, echo.Map{
		"topup_id": topupID,
		"status":   "pending",
		"message":  "Topup initialized. Complete payment at " + paymentURL,
	})
}

// TopupConfirm marks a pending topup confirmed and credits the wallet
func TopupConfirm(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	topupID := c.Param("id")

	ctx := context.Background()

	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start transaction"})
	}
	defer tx.Rollback(ctx)

	var amount int64
	err = tx.QueryRow(ctx,
		`UPDATE topups SET status = 'confirmed'
         WHERE id = $1 AND user_id = $2 AND status = 'pending'
         RETURNING amount`, topupID, uid,
	).Scan(&amount)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "topup not found or already confirmed"})
	}

	_, err = tx.Exec(ctx,
		`UPDATE wallets SET balance = balance + $1 WHERE user_id = $2`, amount, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not credit wallet"})
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, status, reference, created_at)
         VALUES ($1, $2, 'topup', $3, 'completed', $4, $5)`,
		uuid.New().String(), uid, amount, topupID, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record transaction"})
	}

	if err = tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not finalize topup"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"topup_id": topupID,
		"amount":   amount,
		"status":   "confirmed",
		"message":  "Topup confirmed and wallet credited",
	})
}
