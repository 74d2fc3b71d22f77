package proposals

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// GetProviderProposals returns the authenticated provider's proposals
func GetProviderProposals(c echo.Context) error {
	providerID, ok := c.Get("user_id").(string)
	if !ok || providerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, request_id, provider_id, bid_amount, COALESCE(cover_letter,''), COALESCE(delivery_days,0), status, created_at
         FROM proposals WHERE provider_id = $1 ORDER BY created_at DESC`, providerID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch proposals"})
	}
	defer rows.Close()

	var items []Proposal
	for rows.Next() {
		var p Proposal
		if err := rows.Scan(&p.ID, &p.RequestID, &p.ProviderID, &p.BidAmount, &p.CoverLetter, &p.DeliveryDays, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposal"})
		}
		items = append(items, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"proposals": items})
}

// GetRequestProposals returns proposals for one of the company's requests
func GetRequestProposals(c echo.Context) error {
	customerID, ok := c.Get("user_id").(string)
	if !ok || customerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	requestID := c.Param("id")

	// Ownership check
	var owner string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT customer_id FROM service_requests WHERE id = $1`, requestID,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "service request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch service request"})
	}
	if owner != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your service request"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, request_id, provider_id, bid_amount, COALESCE(cover_letter,''), COALESCE(delivery_days,0), status, created_at
         FROM proposals WHERE request_id = $1 ORDER BY created_at DESC`, requestID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch proposals"})
	}
	defer rows.Close()

	var items []Proposal
	for rows.Next() {
		var p Proposal
		if err := rows.Scan(&p.ID, &p.RequestID, &p.ProviderID, &p.BidAmount, &p.CoverLetter, &p.DeliveryDays, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposal"})
		}
		items = append(items, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"proposals": items})
}

// GetProposal returns one proposal plus its milestone plan. Visible to the
// bidding provider and the request owner.
func GetProposal(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	proposalID := c.Param("id")

	var p Proposal
	var customerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT p.id, p.request_id, p.provider_id, p.bid_amount, COALESCE(p.cover_letter,''), COALESCE(p.delivery_days,0), p.status, p.created_at, sr.customer_id
         FROM proposals p JOIN service_requests sr ON sr.id = p.request_id
         WHERE p.id = $1`, proposalID,
	).Scan(&p.ID, &p.RequestID, &p.ProviderID, &p.BidAmount, &p.CoverLetter, &p.DeliveryDays, &p.Status, &p.CreatedAt, &customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch proposal"})
	}
	if userID != p.ProviderID && userID != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this proposal"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT title, amount, sequence, COALESCE(due_days,0)
         FROM proposal_milestones WHERE proposal_id = $1 ORDER BY sequence`, proposalID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch milestone plan"})
	}
	defer rows.Close()

	var milestones []MilestoneInput
	for rows.Next() {
		var m MilestoneInput
		if err := rows.Scan(&m.Title, &m.Amount, &m.Sequence, &m.DueDays); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse milestone"})
		}
		milestones = append(milestones, m)
	}

	return c.JSON(http.StatusOK, echo.Map{"proposal": p, "milestones": milestones})
}
