package projects

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GetCompanyProjects returns the company's projects
func GetCompanyProjects(c echo.Context) error {
	return listProjects(c, "customer_id")
}

// GetProviderProjects returns the provider's projects
func GetProviderProjects(c echo.Context) error {
	return listProjects(c, "provider_id")
}

func listProjects(c echo.Context, ownerColumn string) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, request_id, proposal_id, customer_id, provider_id, title, bid_amount, status,
                milestones_locked, company_approved, provider_approved, created_at
         FROM projects WHERE `+ownerColumn+` = $1 ORDER BY created_at DESC`, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch projects"})
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.RequestID, &p.ProposalID, &p.CustomerID, &p.ProviderID, &p.Title, &p.BidAmount,
			&p.Status, &p.MilestonesLocked, &p.CompanyApproved, &p.ProviderApproved, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse project"})
		}
		items = append(items, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"projects": items})
}

// GetProject returns one project with its milestones. Participants only.
func GetProject(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	projectID := c.Param("id")

	var p Project
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, request_id, proposal_id, customer_id, provider_id, title, bid_amount, status,
                milestones_locked, company_approved, provider_approved, created_at
         FROM projects WHERE id = $1`, projectID,
	).Scan(&p.ID, &p.RequestID, &p.ProposalID, &p.CustomerID, &p.ProviderID, &p.Title, &p.BidAmount,
		&p.Status, &p.MilestonesLocked, &p.CompanyApproved, &p.ProviderApproved, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if uid != p.CustomerID && uid != p.ProviderID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	milestones, err := loadMilestones(context.Background(), projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch milestones"})
	}

	return c.JSON(http.StatusOK, echo.Map{"project": p, "milestones": milestones})
}

func loadMilestones(ctx context.Context, projectID string) ([]Milestone, error) {
	rows, err := db.Conn.Query(ctx,
		`SELECT id, project_id, title, amount, sequence, COALESCE(due_days,0), status, COALESCE(note,''), created_at
         FROM milestones WHERE project_id = $1 ORDER BY sequence`, projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &m.Amount, &m.Sequence, &m.DueDays, &m.Status, &m.Note, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}
