package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func invoke(mw echo.HandlerFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(c)
	return rec, c
}

func TestJWTMiddlewareRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "u-123",
		"role":    "provider",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	var called bool
	handler := JWTMiddleware(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	rec, c := invoke(handler, "Bearer "+signed)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-123", c.Get("user_id"))
	assert.Equal(t, "provider", c.Get("role"))
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := JWTMiddleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec, _ := invoke(handler, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = invoke(handler, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": "u-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	handler := JWTMiddleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	rec, _ := invoke(handler, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": "u-123",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	handler := JWTMiddleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	rec, _ := invoke(handler, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewareRejectsMissingUserID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	signed := signToken(t, "test-secret", jwt.MapClaims{
		"role": "customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	handler := JWTMiddleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	rec, _ := invoke(handler, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGuard(t *testing.T) {
	guarded := AdminGuard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		_ = guarded(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("admin"))
	assert.Equal(t, http.StatusForbidden, run("customer"))
	assert.Equal(t, http.StatusForbidden, run("provider"))
	assert.Equal(t, http.StatusForbidden, run(""))
}

func TestRequireRoles(t *testing.T) {
	allowed := RequireRoles("customer", "admin")(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role string) int {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set("role", role)
		}
		_ = allowed(c)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run("customer"))
	assert.Equal(t, http.StatusOK, run("admin"))
	assert.Equal(t, http.StatusForbidden, run("provider"))
	assert.Equal(t, http.StatusForbidden, run(""))
}
