package requests

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GetOpportunities returns OPEN service requests for provider discovery.
// Supports q (title/description contains), category, budget bounds and paging.
func GetOpportunities(c echo.Context) error {
	q := c.QueryParam("q")
	category := c.QueryParam("category")
	budgetMin := c.QueryParam("budget_min")
	budgetMax := c.QueryParam("budget_max")
	sort := c.QueryParam("sort")

	limit := 20
	offset := 0
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	query := `SELECT sr.id, sr.customer_id, sr.title, COALESCE(sr.description,''), COALESCE(sr.category,''),
                     sr.budget_min, sr.budget_max, sr.deadline, COUNT(p.id) AS proposal_count, sr.created_at
              FROM service_requests sr
              LEFT JOIN proposals p ON p.request_id = sr.id
              WHERE sr.status = 'OPEN'`
	var args []any

	if q != "" {
		args = append(args, "%"+q+"%")
		query += fmt.Sprintf(" AND (sr.title ILIKE $%d OR sr.description ILIKE $%d)", len(args), len(args))
	}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND sr.category = $%d", len(args))
	}
	if budgetMin != "" {
		args = append(args, budgetMin)
		query += fmt.Sprintf(" AND sr.budget_max >= $%d", len(args))
	}
	if budgetMax != "" {
		args = append(args, budgetMax)
		query += fmt.Sprintf(" AND sr.budget_min <= $%d", len(args))
	}

	query += " GROUP BY sr.id ORDER BY "
	switch sort {
	case "budget_desc":
		query += "sr.budget_max DESC"
	case "budget_asc":
		query += "sr.budget_min ASC"
	case "oldest":
		query += "sr.created_at ASC"
	default:
		query += "sr.created_at DESC"
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch opportunities"})
	}
	defer rows.Close()

	var items []Opportunity
	for rows.Next() {
		var o Opportunity
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Title, &o.Description, &o.Category, &o.BudgetMin, &o.BudgetMax, &o.Deadline, &o.ProposalCount, &o.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse opportunity record"})
		}
		items = append(items, o)
	}
	return c.JSON(http.StatusOK, echo.Map{"opportunities": items})
}
