package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/config"
)

func TestRateLimiterPassesThroughWithoutRedis(t *testing.T) {
	mw := NewRateLimiter(config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute}, nil)

	e := echo.New()
	e.POST("/api/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, mw)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected pass-through 200, got %d", i, rec.Code)
		}
	}
}

func TestResponseCachePassesThroughWhenDisabled(t *testing.T) {
	mw := NewResponseCache(config.CacheConfig{Enabled: false}, nil)

	calls := 0
	e := echo.New()
	e.GET("/tasks/archive", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}, mw)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/tasks/archive", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("disabled cache must not short-circuit the handler, calls=%d", calls)
	}
}

func TestRequireAdminRejectsRegularUsers(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/users", nil), httptest.NewRecorder())

	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := RequireAdmin(next)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if c.Response().Status != http.StatusForbidden {
		t.Fatalf("missing user should be forbidden, got %d", c.Response().Status)
	}
}
