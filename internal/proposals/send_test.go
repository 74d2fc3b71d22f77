package proposals

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// The target request id is the route path segment; a body cannot redirect
// the bid at another request. A non-uuid path segment is refused before
// anything else runs.
func TestSendProposalRefusesBadRequestIDParam(t *testing.T) {
	e := echo.New()
	body := `{"request_id":"3f9a2c71-aaaa-bbbb-cccc-000000000001","bid_amount":500}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	c.Set("user_id", "provider-1")

	_ = SendProposal(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request id")
}

func TestSendProposalRequiresAuth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3f9a2c71-aaaa-bbbb-cccc-000000000001")

	_ = SendProposal(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
