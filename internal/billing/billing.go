package billing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// CompanySpend summarizes what a customer has escrowed and released
// GET /billing/spend
func CompanySpend(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	var released, escrowed int64
	var releasedCount int
	err := db.Conn.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'RELEASED'), 0),
               COALESCE(SUM(amount) FILTER (WHERE status = 'ESCROWED'), 0),
               COUNT(*) FILTER (WHERE status = 'RELEASED')
        FROM payments WHERE customer_id = $1`, uid,
	).Scan(&released, &escrowed, &releasedCount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute spend"})
	}

	var activeProjects int
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE customer_id = $1 AND status = 'IN_PROGRESS'`, uid,
	).Scan(&activeProjects)

	return c.JSON(http.StatusOK, echo.Map{
		"total_spent":     released,
		"in_escrow":       escrowed,
		"paid_milestones": releasedCount,
		"active_projects": activeProjects,
	})
}

// ProviderEarnings summarizes a provider's released income
// GET /billing/earnings
func ProviderEarnings(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx := context.Background()

	var earned, pending int64
	var paidCount int
	err := db.Conn.QueryRow(ctx, `
        SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'RELEASED'), 0),
               COALESCE(SUM(amount) FILTER (WHERE status = 'ESCROWED'), 0),
               COUNT(*) FILTER (WHERE status = 'RELEASED')
        FROM payments WHERE provider_id = $1`, uid,
	).Scan(&earned, &pending, &paidCount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute earnings"})
	}

	var completedProjects int
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE provider_id = $1 AND status = 'COMPLETED'`, uid,
	).Scan(&completedProjects)

	return c.JSON(http.StatusOK, echo.Map{
		"total_earned":       earned,
		"pending_in_escrow":  pending,
		"paid_milestones":    paidCount,
		"completed_projects": completedProjects,
	})
}

type Invoice struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	PaymentID  string    `json:"payment_id"`
	ProjectID  string    `json:"project_id"`
	CustomerID string    `json:"customer_id"`
	ProviderID string    `json:"provider_id"`
	Amount     int64     `json:"amount"`
	IssuedAt   time.Time `json:"issued_at"`
}

// ListInvoices returns the invoices where the user is either party
// GET /billing/invoices
func ListInvoices(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, number, payment_id, project_id, customer_id, provider_id, amount, issued_at
         FROM invoices
         WHERE customer_id = $1 OR provider_id = $1
         ORDER BY issued_at DESC`, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch invoices"})
	}
	defer rows.Close()

	var items []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.PaymentID, &inv.ProjectID,
			&inv.CustomerID, &inv.ProviderID, &inv.Amount, &inv.IssuedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan error"})
		}
		items = append(items, inv)
	}

	return c.JSON(http.StatusOK, echo.Map{"invoices": items})
}

// GetInvoice returns one invoice for either party
// GET /billing/invoices/:id
func GetInvoice(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var inv Invoice
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, number, payment_id, project_id, customer_id, provider_id, amount, issued_at
         FROM invoices WHERE id = $1`, c.Param("id"),
	).Scan(&inv.ID, &inv.Number, &inv.PaymentID, &inv.ProjectID,
		&inv.CustomerID, &inv.ProviderID, &inv.Amount, &inv.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch invoice"})
	}
	if uid != inv.CustomerID && uid != inv.ProviderID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a party on this invoice"})
	}

	return c.JSON(http.StatusOK, inv)
}
