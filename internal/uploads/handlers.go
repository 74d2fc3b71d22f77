package uploads

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// allowed extensions per upload category
var categoryExts = map[string]map[string]bool{
	"portfolio":   {".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".pdf": true},
	"attachments": {".png": true, ".jpg": true, ".jpeg": true, ".pdf": true, ".zip": true, ".txt": true},
	"avatars":     {".png": true, ".jpg": true, ".jpeg": true},
}

const maxUploadSize = 25 << 20 // 25 MB

// Upload stores a file under uploads/<category>/<userID>/ and returns a
// signed download URL.
// POST /uploads/:category (multipart: file)
func Upload(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	category := c.Param("category")
	exts, ok := categoryExts[category]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown upload category"})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file too large (max 25MB)"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !exts[ext] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unsupported file type for this category", "ext": ext})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read upload"})
	}
	defer src.Close()

	name := uuid.New().String() + ext
	rel := filepath.Join(category, uid, name)
	dir := filepath.Join("uploads", category, uid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}

	dst, err := os.Create(filepath.Join("uploads", rel))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not store upload"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"path": rel,
		"url":  SignedURL(rel, 24*time.Hour),
	})
}

// Download serves a stored file when the signature checks out.
// GET /files/* ?expires=..&sig=..
func Download(c echo.Context) error {
	rel := c.Param("*")
	if rel == "" || strings.Contains(rel, "..") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid path"})
	}

	if err := VerifySignature(rel, c.QueryParam("expires"), c.QueryParam("sig")); err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	}

	full := filepath.Join("uploads", filepath.FromSlash(rel))
	if _, err := os.Stat(full); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	}
	return c.File(full)
}

// Sign re-issues a short-lived URL for an already stored file.
// GET /uploads/sign?path=portfolio/<uid>/<file>
func Sign(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rel := c.QueryParam("path")
	if rel == "" || strings.Contains(rel, "..") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid path"})
	}

	// users can only sign their own files; admins can sign anything
	role, _ := c.Get("role").(string)
	parts := strings.Split(rel, "/")
	if role != "admin" && (len(parts) < 2 || parts[1] != uid) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your file"})
	}

	return c.JSON(http.StatusOK, echo.Map{"url": SignedURL(rel, time.Hour)})
}
