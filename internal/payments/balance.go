package payments

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

// Balance returns the authenticated user's wallet balance and escrow holds
func Balance(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var balance, escrow int64
	err := db.Conn.QueryRow(context.Background(),
		`SELECT balance, escrow FROM wallets WHERE user_id = $1`, uid).
		Scan(&balance, &escrow)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "wallet not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user_id": uid,
		"balance": balance,
		"escrow":  escrow,
	})
}
