package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := context.Background()

	var users, requests, proposals, projects, disputes int
	var escrowed, released int64

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests`).Scan(&requests)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&proposals)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&projects)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM disputes WHERE status IN ('OPEN', 'UNDER_REVIEW')`).Scan(&disputes)
	_ = db.Conn.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'ESCROWED'`).Scan(&escrowed)
	_ = db.Conn.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'RELEASED'`).Scan(&released)

	return c.JSON(http.StatusOK, echo.Map{
		"users":            users,
		"service_requests": requests,
		"proposals":        proposals,
		"projects":         projects,
		"open_disputes":    disputes,
		"escrowed_total":   escrowed,
		"released_total":   released,
	})
}
