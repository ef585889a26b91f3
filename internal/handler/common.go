package handler // handler defines the HTTP handlers of the board API

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/middleware"
	"github.com/vmeirelles/taskboard/internal/model"
)

// currentUser returns the authenticated user placed in the context by
// the TokenAuth middleware.
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(middleware.ContextUserKey).(model.User)
	return u, ok
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// reqContext bounds database calls made from a handler.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
