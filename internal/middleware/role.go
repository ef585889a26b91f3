package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
)

// RequireAdmin aborts the request with 403 unless the authenticated user
// holds the admin role. It assumes TokenAuth ran earlier in the chain.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		u, ok := c.Get(ContextUserKey).(model.User)
		if !ok || !u.IsAdmin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Acesso restrito a administradores"})
		}
		return next(c)
	}
}
