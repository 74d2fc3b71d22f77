package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GET /providers/:id
// Public provider card: profile, rating aggregate, certifications, portfolio.
func GetPublicProviderProfile(c echo.Context) error {
	providerID := c.Param("id")
	if providerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing provider id"})
	}

	ctx := context.Background()

	var (
		name       string
		headline   string
		skills     string
		hourlyRate int64
		about      string
		kycStatus  string
		createdAt  time.Time
	)
	err := db.Conn.QueryRow(ctx, `
        SELECT u.name, COALESCE(p.headline, ''), COALESCE(p.skills, ''),
               COALESCE(p.hourly_rate, 0), COALESCE(p.about, ''), COALESCE(u.kyc_status, 'none'), u.created_at
        FROM users u
        JOIN provider_profiles p ON p.user_id = u.id
        WHERE u.id = $1 AND u.role = 'provider' AND COALESCE(u.is_active, TRUE)`,
		providerID,
	).Scan(&name, &headline, &skills, &hourlyRate, &about, &kycStatus, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch provider"})
	}

	var totalReviews int
	var avgRating float64
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE provider_id = $1`,
		providerID,
	).Scan(&totalReviews, &avgRating)

	var completedProjects int
	_ = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM projects WHERE provider_id = $1 AND status = 'COMPLETED'`,
		providerID,
	).Scan(&completedProjects)

	certs := []Certification{}
	certRows, err := db.Conn.Query(ctx,
		`SELECT id, title, COALESCE(issuer, ''), COALESCE(year, 0), created_at
         FROM certifications WHERE user_id = $1 ORDER BY year DESC, created_at DESC`, providerID)
	if err == nil {
		defer certRows.Close()
		for certRows.Next() {
			var cert Certification
			if err := certRows.Scan(&cert.ID, &cert.Title, &cert.Issuer, &cert.Year, &cert.CreatedAt); err != nil {
				continue
			}
			certs = append(certs, cert)
		}
	}

	portfolio := []PortfolioItem{}
	itemRows, err := db.Conn.Query(ctx,
		`SELECT id, title, COALESCE(description, ''), COALESCE(url, ''), created_at
         FROM portfolio_items WHERE user_id = $1 ORDER BY created_at DESC`, providerID)
	if err == nil {
		defer itemRows.Close()
		for itemRows.Next() {
			var item PortfolioItem
			if err := itemRows.Scan(&item.ID, &item.Title, &item.Description, &item.URL, &item.CreatedAt); err != nil {
				continue
			}
			portfolio = append(portfolio, item)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":                 providerID,
		"name":               name,
		"headline":           headline,
		"skills":             skills,
		"hourly_rate":        hourlyRate,
		"about":              about,
		"kyc_status":         kycStatus,
		"member_since":       createdAt.UTC().Format(time.RFC3339),
		"average_rating":     avgRating,
		"total_reviews":      totalReviews,
		"completed_projects": completedProjects,
		"certifications":     certs,
		"portfolio":          portfolio,
	})
}
