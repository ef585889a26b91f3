package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/repository"
)

// ContextUserKey is the echo context key holding the authenticated
// model.User for the current request.
const ContextUserKey = "user"

// TokenAuth returns an Echo middleware that validates the Bearer session
// token. The token must be a well-formed HS256 JWT signed with secret
// AND match the token currently stored on a user row; login rotation
// therefore invalidates previous sessions even before their signature
// expires. The resolved user is stored in the context under
// ContextUserKey.
func TokenAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token ausente"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByToken(ctx, raw)
			if err != nil {
				if err == sql.ErrNoRows {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao validar sessão"})
			}

			c.Set(ContextUserKey, u)
			return next(c)
		}
	}
}
