package reviews

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// CreateReview allows a customer to rate a completed project
func CreateReview(c echo.Context) error {
	customerID, ok := c.Get("user_id").(string)
	if !ok || customerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if _, err := uuid.Parse(projectID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid project id format"})
	}

	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if len(req.Comment) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment too long (max 1000 characters)"})
	}

	ctx := context.Background()

	var providerID, projectStatus string
	err := db.Conn.QueryRow(ctx,
		`SELECT provider_id, status FROM projects WHERE id = $1 AND customer_id = $2`,
		projectID, customerID,
	).Scan(&providerID, &projectStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found or not yours"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}

	if projectStatus != "COMPLETED" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":          "can only review completed projects",
			"project_status": projectStatus,
		})
	}

	var existingID string
	err = db.Conn.QueryRow(ctx, `SELECT id FROM reviews WHERE project_id = $1`, projectID).Scan(&existingID)
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "review already exists for this project"})
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing review"})
	}

	reviewID := uuid.New().String()
	_, err = db.Conn.Exec(ctx,
		`INSERT INTO reviews (id, project_id, customer_id, provider_id, rating, comment, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		reviewID, projectID, customerID, providerID, req.Rating, req.Comment, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create review"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"review_id": reviewID,
		"message":   "Review created successfully",
	})
}

// ReplyToReview lets the reviewed provider answer once
func ReplyToReview(c echo.Context) error {
	providerID, ok := c.Get("user_id").(string)
	if !ok || providerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	reviewID := c.Param("id")
	var req ReplyRequest
	if err := c.Bind(&req); err != nil || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload: content required"})
	}
	if len(req.Content) > 1000 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reply too long (max 1000 characters)"})
	}

	ctx := context.Background()

	var reviewProvider string
	err := db.Conn.QueryRow(ctx, `SELECT provider_id FROM reviews WHERE id = $1`, reviewID).Scan(&reviewProvider)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch review"})
	}
	if reviewProvider != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "can only reply to your own reviews"})
	}

	var existing string
	err = db.Conn.QueryRow(ctx, `SELECT id FROM review_replies WHERE review_id = $1`, reviewID).Scan(&existing)
	if err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "reply already exists for this review"})
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check existing reply"})
	}

	replyID := uuid.New().String()
	_, err = db.Conn.Exec(ctx,
		`INSERT INTO review_replies (id, review_id, provider_id, content, created_at)
         VALUES ($1, $2, $3, $4, $5)`,
		replyID, reviewID, providerID, req.Content, time.Now(),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reply"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reply_id": replyID,
		"message":  "Reply posted",
	})
}

// GetProviderReviews returns a provider's public reviews with rating summary
func GetProviderReviews(c echo.Context) error {
	providerID := c.Param("id")
	if providerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing provider id"})
	}

	page := 1
	limit := 10
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}
	offset := (page - 1) * limit

	ctx := context.Background()

	var providerName string
	err := db.Conn.QueryRow(ctx,
		`SELECT name FROM users WHERE id = $1 AND role = 'provider'`, providerID).Scan(&providerName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "provider not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch provider"})
	}

	var summary ProviderRatingSummary
	summary.ProviderID = providerID
	summary.ProviderName = providerName

	err = db.Conn.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM reviews WHERE provider_id = $1`,
		providerID,
	).Scan(&summary.TotalReviews, &summary.AverageRating)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch rating summary"})
	}

	rows, err := db.Conn.Query(ctx,
		`SELECT rating, COUNT(*) FROM reviews WHERE provider_id = $1 GROUP BY rating ORDER BY rating DESC`,
		providerID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch rating breakdown"})
	}
	defer rows.Close()

	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			continue
		}
		switch rating {
		case 5:
			summary.RatingCounts.FiveStar = count
		case 4:
			summary.RatingCounts.FourStar = count
		case 3:
			summary.RatingCounts.ThreeStar = count
		case 2:
			summary.RatingCounts.TwoStar = count
		case 1:
			summary.RatingCounts.OneStar = count
		}
	}

	reviewRows, err := db.Conn.Query(ctx,
		`SELECT r.id, r.project_id, r.customer_id, u.name, r.provider_id, r.rating, COALESCE(r.comment, ''), rr.content, r.created_at
         FROM reviews r
         JOIN users u ON r.customer_id = u.id
         LEFT JOIN review_replies rr ON rr.review_id = r.id
         WHERE r.provider_id = $1
         ORDER BY r.created_at DESC
         LIMIT $2 OFFSET $3`,
		providerID, limit, offset,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch reviews"})
	}
	defer reviewRows.Close()

	var items []ReviewWithDetails
	for reviewRows.Next() {
		var r ReviewWithDetails
		if err := reviewRows.Scan(
			&r.ID, &r.ProjectID, &r.CustomerID, &r.CustomerName,
			&r.ProviderID, &r.Rating, &r.Comment, &r.Reply, &r.CreatedAt,
		); err != nil {
			continue
		}
		items = append(items, r)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"provider_summary": summary,
		"reviews":          items,
		"pagination": echo.Map{
			"page":  page,
			"limit": limit,
			"total": summary.TotalReviews,
		},
	})
}

// GetProjectReview returns the review on a project for a participant
func GetProjectReview(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")

	ctx := context.Background()

	var customerID, providerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch project"})
	}
	if userID != customerID && userID != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to view this project's review"})
	}

	var r ReviewWithDetails
	err = db.Conn.QueryRow(ctx,
		`SELECT r.id, r.project_id, r.customer_id, u.name, r.provider_id, r.rating, COALESCE(r.comment, ''), rr.content, r.created_at
         FROM reviews r
         JOIN users u ON r.customer_id = u.id
         LEFT JOIN review_replies rr ON rr.review_id = r.id
         WHERE r.project_id = $1`,
		projectID,
	).Scan(
		&r.ID, &r.ProjectID, &r.CustomerID, &r.CustomerName,
		&r.ProviderID, &r.Rating, &r.Comment, &r.Reply, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no review found for this project"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch review"})
	}

	return c.JSON(http.StatusOK, echo.Map{"review": r})
}
