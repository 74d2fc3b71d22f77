package user

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type AddCertificationRequest struct {
	Title  string `json:"title" validate:"required"`
	Issuer string `json:"issuer"`
	Year   int    `json:"year"`
}

// AddCertification - provider adds a certification to their public card
func AddCertification(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(AddCertificationRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO certifications (id, user_id, title, issuer, year, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		id, uid, req.Title, req.Issuer, req.Year, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add certification"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"certification_id": id})
}

// DeleteCertification - provider removes one of their certifications
func DeleteCertification(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	tag, err := db.Conn.Exec(context.Background(),
		`DELETE FROM certifications WHERE id = $1 AND user_id = $2`, c.Param("id"), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete certification"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "certification not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "certification removed"})
}

type AddPortfolioItemRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"omitempty,url"`
}

// AddPortfolioItem - provider adds a work sample
func AddPortfolioItem(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	req := new(AddPortfolioItemRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	id := uuid.New().String()
	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO portfolio_items (id, user_id, title, description, url, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		id, uid, req.Title, req.Description, req.URL, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add portfolio item"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"portfolio_item_id": id})
}

// DeletePortfolioItem - provider removes a work sample
func DeletePortfolioItem(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	tag, err := db.Conn.Exec(context.Background(),
		`DELETE FROM portfolio_items WHERE id = $1 AND user_id = $2`, c.Param("id"), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete portfolio item"})
	}
	if tag.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "portfolio item not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "portfolio item removed"})
}
