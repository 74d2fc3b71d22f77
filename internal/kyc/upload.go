package kyc

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

var allowedDocExts = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

const maxDocSize = 10 << 20 // 10 MB

// UploadDocument accepts a verification document from the authenticated user.
// POST /kyc/documents (multipart: file, doc_type)
func UploadDocument(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	docType := c.FormValue("doc_type")
	if docType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "doc_type is required"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	if file.Size > maxDocSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large (max 10MB)"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocExts[ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type", "ext": ext})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	docID := uuid.New().String()
	dir := filepath.Join("uploads", "kyc", uid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}
	dstPath := filepath.Join(dir, docID+ext)

	dst, err := os.Create(dstPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}

	_, err = db.Conn.Exec(context.Background(),
		`INSERT INTO kyc_documents (id, user_id, doc_type, file_path, status, created_at)
         VALUES ($1, $2, $3, $4, 'uploaded', $5)`,
		docID, uid, docType, dstPath, time.Now(),
	)
	if err != nil {
		_ = os.Remove(dstPath)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not record document"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"document_id": docID,
		"status":      "uploaded",
		"message":     "Document received and queued for review",
	})
}

// MyDocuments lists the authenticated user's verification documents
func MyDocuments(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, doc_type, status, COALESCE(note, ''), created_at, reviewed_at
         FROM kyc_documents WHERE user_id = $1 ORDER BY created_at DESC`, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch documents"})
	}
	defer rows.Close()

	type doc struct {
		ID         string     `json:"id"`
		DocType    string     `json:"doc_type"`
		Status     string     `json:"status"`
		Note       string     `json:"note,omitempty"`
		CreatedAt  time.Time  `json:"created_at"`
		ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	}
	var docs []doc
	for rows.Next() {
		var d doc
		if err := rows.Scan(&d.ID, &d.DocType, &d.Status, &d.Note, &d.CreatedAt, &d.ReviewedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "scan error"})
		}
		docs = append(docs, d)
	}

	return c.JSON(http.StatusOK, echo.Map{"documents": docs})
}
