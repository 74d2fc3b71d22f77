package requests

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

type CreateRequestRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	BudgetMin   int64      `json:"budget_min" validate:"gt=0"`
	BudgetMax   int64      `json:"budget_max" validate:"gtefield=BudgetMin"`
	Deadline    *time.Time `json:"deadline"`
}

// CreateRequest - company posts a new service request
func CreateRequest(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and a valid budget range are required"})
	}

	requestID := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO service_requests (id, customer_id, title, description, category, budget_min, budget_max, deadline, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'OPEN', $9)`,
		requestID, uid, req.Title, req.Description, req.Category, req.BudgetMin, req.BudgetMax, req.Deadline, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create service request"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"request_id": requestID,
		"message":    "service request created successfully",
	})
}

// GetCompanyRequests returns all service requests posted by the company
func GetCompanyRequests(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, customer_id, title, COALESCE(description,''), COALESCE(category,''), budget_min, budget_max, deadline, status, created_at
         FROM service_requests WHERE customer_id = $1 ORDER BY created_at DESC`, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch service requests"})
	}
	defer rows.Close()

	var items []ServiceRequest
	for rows.Next() {
		var r ServiceRequest
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.Title, &r.Description, &r.Category, &r.BudgetMin, &r.BudgetMax, &r.Deadline, &r.Status, &r.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse service request"})
		}
		items = append(items, r)
	}
	return c.JSON(http.StatusOK, echo.Map{"requests": items})
}

// GetRequest returns one service request owned by the company
func GetRequest(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID := c.Param("id")
	if _, err := uuid.Parse(requestID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id format"})
	}

	var r ServiceRequest
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, customer_id, title, COALESCE(description,''), COALESCE(category,''), budget_min, budget_max, deadline, status, created_at
         FROM service_requests WHERE id = $1 AND customer_id = $2`, requestID, uid,
	).Scan(&r.ID, &r.CustomerID, &r.Title, &r.Description, &r.Category, &r.BudgetMin, &r.BudgetMax, &r.Deadline, &r.Status, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service request not found or not yours"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch service request"})
	}
	return c.JSON(http.StatusOK, r)
}

// UpdateRequest edits an OPEN service request
func UpdateRequest(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID := c.Param("id")

	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and a valid budget range are required"})
	}

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE service_requests
         SET title = $1, description = $2, category = $3, budget_min = $4, budget_max = $5, deadline = $6, updated_at = NOW()
         WHERE id = $7 AND customer_id = $8 AND status = 'OPEN'`,
		req.Title, req.Description, req.Category, req.BudgetMin, req.BudgetMax, req.Deadline, requestID, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update service request"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service request not found, not yours, or no longer open"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "service request updated"})
}

// CancelRequest cancels an OPEN service request
func CancelRequest(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID := c.Param("id")

	res, err := db.Conn.Exec(context.Background(),
		`UPDATE service_requests SET status = 'CANCELLED', updated_at = NOW()
         WHERE id = $1 AND customer_id = $2 AND status = 'OPEN'`, requestID, uid,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not cancel service request"})
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "service request not found, not yours, or no longer open"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "service request cancelled"})
}
