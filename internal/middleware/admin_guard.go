package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminGuard rejects any caller whose token role is not admin. It sits
// behind JWTMiddleware on the /admin group, so the role claim is already
// on the context by the time it runs.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get("role").(string)
		if !ok || role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{
				"error": "admin privileges required",
			})
		}
		return next(c)
	}
}
