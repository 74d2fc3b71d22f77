package kyc

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/alerts"
	"github.com/worklane/worklane/internal/db"
)

// GET /admin/kyc?status=uploaded
func ListDocuments(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = "uploaded"
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT k.id, k.user_id, u.name, u.email, k.doc_type, k.file_path, k.status, k.created_at
         FROM kyc_documents k
         JOIN users u ON u.id = k.user_id
         WHERE k.status = $1
         ORDER BY k.created_at ASC`, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch documents"})
	}
	defer rows.Close()

	type pending struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		UserName  string    `json:"user_name"`
		UserEmail string    `json:"user_email"`
		DocType   string    `json:"doc_type"`
		FilePath  string    `json:"file_path"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"created_at"`
	}
	var docs []pending
	for rows.Next() {
		var d pending
		if err := rows.Scan(&d.ID, &d.UserID, &d.UserName, &d.UserEmail, &d.DocType, &d.FilePath, &d.Status, &d.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan error"})
		}
		docs = append(docs, d)
	}

	return c.JSON(http.StatusOK, echo.Map{"documents": docs})
}

// POST /admin/kyc/:id/review
// Marks a document verified or rejected, then rolls the verdict up onto the
// user's kyc_status. The rollup is best-effort; a failure leaves the document
// reviewed and is logged for follow-up.
func ReviewDocument(c echo.Context) error {
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	docID := c.Param("id")

	var req struct {
		Approve *bool  `json:"approve"`
		Note    string `json:"note"`
	}
	if err := c.Bind(&req); err != nil || req.Approve == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "approve flag is required"})
	}
	verdict := "rejected"
	if *req.Approve {
		verdict = "verified"
	}

	ctx := context.Background()

	var userID string
	err := db.Conn.QueryRow(ctx,
		`UPDATE kyc_documents
         SET status = $1, note = $2, reviewed_by = $3, reviewed_at = NOW()
         WHERE id = $4 AND status = 'uploaded'
         RETURNING user_id`, verdict, req.Note, adminID, docID,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found or already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not review document"})
	}

	// Roll the document verdict up to the user record
	if _, err := db.Conn.Exec(ctx,
		`UPDATE users SET kyc_status = $1 WHERE id = $2`, verdict, userID); err != nil {
		log.Printf("kyc status rollup failed for user %s: %v", userID, err)
	}

	ref := docID
	if err := alerts.CreateNotification(userID, "kyc:reviewed", "Identity verification "+verdict, req.Note, &ref, nil); err != nil {
		log.Printf("kyc review notification failed: %v", err)
	}
	var email string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if email != "" {
		_ = alerts.EnqueueKycReviewed(docID, userID, email, verdict)
	}

	return c.JSON(http.StatusOK, echo.Map{"document_id": docID, "status": verdict})
}
