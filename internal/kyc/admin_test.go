package kyc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func reviewContext(body string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("doc-1")
	c.Set("user_id", "admin-1")
	return rec, c
}

// The review verdict rides on a boolean approve flag; a payload without
// it is refused before any document lookup.
func TestReviewDocumentRequiresApproveFlag(t *testing.T) {
	rec, c := reviewContext(`{"note":"blurry scan"}`)
	_ = ReviewDocument(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "approve flag is required")

	rec, c = reviewContext(`{"status":"verified"}`)
	_ = ReviewDocument(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewDocumentRequiresAuth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"approve":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = ReviewDocument(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
