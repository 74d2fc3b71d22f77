package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GetMyProfile returns the authenticated user's profile for their role
func GetMyProfile(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	ctx := context.Background()

	if role == "provider" {
		var p ProviderProfile
		err := db.Conn.QueryRow(ctx,
			`SELECT u.id, u.name, u.email, COALESCE(p.headline, ''), COALESCE(p.skills, ''),
                    COALESCE(p.hourly_rate, 0), COALESCE(p.about, ''), COALESCE(u.kyc_status, 'none'), p.updated_at
             FROM users u
             JOIN provider_profiles p ON p.user_id = u.id
             WHERE u.id = $1`, uid,
		).Scan(&p.UserID, &p.Name, &p.Email, &p.Headline, &p.Skills, &p.HourlyRate, &p.About, &p.KycStatus, &p.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch profile"})
		}
		return c.JSON(http.StatusOK, p)
	}

	var p CustomerProfile
	err := db.Conn.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, COALESCE(p.company_name, ''), COALESCE(p.website, ''),
                COALESCE(p.industry, ''), COALESCE(p.about, ''), p.updated_at
         FROM users u
         JOIN customer_profiles p ON p.user_id = u.id
         WHERE u.id = $1`, uid,
	).Scan(&p.UserID, &p.Name, &p.Email, &p.CompanyName, &p.Website, &p.Industry, &p.About, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch profile"})
	}
	return c.JSON(http.StatusOK, p)
}

type UpdateCustomerProfileRequest struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	About       string `json:"about"`
}

type UpdateProviderProfileRequest struct {
	Name       string `json:"name"`
	Headline   string `json:"headline"`
	Skills     string `json:"skills"`
	HourlyRate int64  `json:"hourly_rate"`
	About      string `json:"about"`
}

// UpdateProfile updates the role-specific profile. Empty fields keep their
// current value.
func UpdateProfile(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, _ := c.Get("role").(string)

	ctx := context.Background()

	if role == "provider" {
		req := new(UpdateProviderProfileRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}

		if req.Name != "" {
			if _, err := db.Conn.Exec(ctx,
				`UPDATE users SET name = $1 WHERE id = $2`, req.Name, uid); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update name"})
			}
		}
		_, err := db.Conn.Exec(ctx, `
            UPDATE provider_profiles
            SET headline = COALESCE(NULLIF($1, ''), headline),
                skills = COALESCE(NULLIF($2, ''), skills),
                hourly_rate = CASE WHEN $3 > 0 THEN $3 ELSE hourly_rate END,
                about = COALESCE(NULLIF($4, ''), about),
                updated_at = NOW()
            WHERE user_id = $5`,
			req.Headline, req.Skills, req.HourlyRate, req.About, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully"})
	}

	req := new(UpdateCustomerProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name != "" {
		if _, err := db.Conn.Exec(ctx,
			`UPDATE users SET name = $1 WHERE id = $2`, req.Name, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update name"})
		}
	}
	_, err := db.Conn.Exec(ctx, `
        UPDATE customer_profiles
        SET company_name = COALESCE(NULLIF($1, ''), company_name),
            website = COALESCE(NULLIF($2, ''), website),
            industry = COALESCE(NULLIF($3, ''), industry),
            about = COALESCE(NULLIF($4, ''), about),
            updated_at = NOW()
        WHERE user_id = $5`,
		req.CompanyName, req.Website, req.Industry, req.About, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully"})
}
