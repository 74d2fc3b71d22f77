package payments

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type Transaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	Reference *string   `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Transactions returns the authenticated user's wallet history, newest first
func Transactions(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "unauthorized or invalid user",
		})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, type, amount, status, reference, created_at
         FROM transactions
         WHERE user_id = $1
         ORDER BY created_at DESC
         LIMIT 100`, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch transactions"})
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Type, &t.Amount, &t.Status, &t.Reference, &t.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan error"})
		}
		txs = append(txs, t)
	}

	return c.JSON(http.StatusOK, txs)
}

// ProjectPayments returns all payments on a project for a participant
func ProjectPayments(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	projectID := c.Param("id")

	ctx := context.Background()

	var customerID, providerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
	}
	if uid != customerID && uid != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	rows, err := db.Conn.Query(ctx,
		`SELECT id, milestone_id, project_id, customer_id, provider_id, amount, status, COALESCE(gateway_ref, ''), created_at, updated_at
         FROM payments WHERE project_id = $1 ORDER BY created_at`, projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch payments"})
	}
	defer rows.Close()

	var list []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.MilestoneID, &p.ProjectID, &p.CustomerID, &p.ProviderID,
			&p.Amount, &p.Status, &p.GatewayRef, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan error"})
		}
		list = append(list, p)
	}

	return c.JSON(http.StatusOK, list)
}
