package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type AdminProject struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	ProviderName string    `json:"provider_name"`
	Bid          int64     `json:"bid"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GET /admin/projects
func ListProjects(c echo.Context) error {
	query := `SELECT p.id, cu.name, pr.name, p.bid_amount, p.status, p.created_at
              FROM projects p
              JOIN users cu ON cu.id = p.customer_id
              JOIN users pr ON pr.id = p.provider_id`
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		query += ` WHERE p.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch projects"})
	}
	defer rows.Close()

	var items []AdminProject
	for rows.Next() {
		var p AdminProject
		if err := rows.Scan(&p.ID, &p.CustomerName, &p.ProviderName, &p.Bid, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read project record"})
		}
		items = append(items, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": items})
}

type AdminPayment struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	MilestoneID  string    `json:"milestone_id"`
	CustomerName string    `json:"customer_name"`
	ProviderName string    `json:"provider_name"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// GET /admin/payments
func ListPayments(c echo.Context) error {
	query := `SELECT pay.id, pay.project_id, pay.milestone_id, cu.name, pr.name, pay.amount, pay.status, pay.created_at
              FROM payments pay
              JOIN users cu ON cu.id = pay.customer_id
              JOIN users pr ON pr.id = pay.provider_id`
	args := []interface{}{}
	if status := c.QueryParam("status"); status != "" {
		query += ` WHERE pay.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY pay.created_at DESC LIMIT 200`

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch payments"})
	}
	defer rows.Close()

	var items []AdminPayment
	for rows.Next() {
		var p AdminPayment
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.MilestoneID, &p.CustomerName, &p.ProviderName, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read payment record"})
		}
		items = append(items, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": items})
}

// GET /admin/revenue
// Released payment volume grouped by calendar month.
func RevenueReport(c echo.Context) error {
	rows, err := db.Conn.Query(context.Background(), `
        SELECT to_char(date_trunc('month', updated_at), 'YYYY-MM') AS month,
               COALESCE(SUM(amount), 0), COUNT(*)
        FROM payments
        WHERE status = 'RELEASED'
        GROUP BY 1
        ORDER BY 1 DESC
        LIMIT 24`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute revenue"})
	}
	defer rows.Close()

	type monthRow struct {
		Month    string `json:"month"`
		Released int64  `json:"released"`
		Payments int    `json:"payments"`
	}
	var months []monthRow
	for rows.Next() {
		var m monthRow
		if err := rows.Scan(&m.Month, &m.Released, &m.Payments); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read revenue row"})
		}
		months = append(months, m)
	}
	return c.JSON(http.StatusOK, echo.Map{"months": months})
}
