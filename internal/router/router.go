// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/handler"
	"github.com/vmeirelles/taskboard/internal/middleware"
)

// Deps bundles everything route registration needs. The rate limiter and
// archive cache are optional; nil means the middleware is skipped.
type Deps struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Tasks     *handler.TaskHandler
	Audit     *handler.AuditHandler
	Reminders *handler.ReminderHandler

	TokenAuth    echo.MiddlewareFunc
	Auditor      *middleware.Auditor
	RateLimiter  echo.MiddlewareFunc
	ArchiveCache echo.MiddlewareFunc
}

// Register mounts every route on the Echo instance. Audit actions are
// attached per route so the trail records what the caller did, not just
// where the request went.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Credential endpoints stay outside the auth group; the rate limiter
	// shields them from brute force when Redis is available.
	public := e.Group("/api")
	if d.RateLimiter != nil {
		public.Use(d.RateLimiter)
	}
	public.POST("/register", d.Auth.Register)
	public.POST("/login", d.Auth.Login)

	audit := d.Auditor.Middleware

	api := e.Group("/api", d.TokenAuth)
	api.POST("/change-password", d.Auth.ChangePassword, audit("change_password"))
	api.GET("/me", d.Auth.Me)
	api.GET("/audit", d.Audit.List, audit("view_audit"))

	admin := e.Group("/api/users", d.TokenAuth, middleware.RequireAdmin)
	admin.GET("", d.Users.List)
	admin.PUT("/:id/role", d.Users.UpdateRole, audit("update_user_role"))
	admin.DELETE("/:id", d.Users.Delete, audit("delete_user"))

	tasks := e.Group("/tasks", d.TokenAuth)
	tasks.GET("", d.Tasks.List, audit("list_tasks"))
	tasks.POST("", d.Tasks.Create, audit("create_task"))

	// The archive routes must come before /:id so "archive" is not
	// captured as a task id.
	archive := tasks.Group("/archive")
	if d.ArchiveCache != nil {
		archive.GET("", d.Tasks.ListArchive, audit("list_archive"), d.ArchiveCache)
	} else {
		archive.GET("", d.Tasks.ListArchive, audit("list_archive"))
	}
	archive.POST("/:id/restore", d.Tasks.Restore, audit("restore_archive"))

	tasks.PUT("/:id", d.Tasks.Update, audit("update_task"))
	tasks.DELETE("/:id", d.Tasks.Delete, audit("delete_task"))
	tasks.POST("/:id/timer/start", d.Tasks.StartTimer, audit("start_timer"))
	tasks.POST("/:id/timer/stop", d.Tasks.StopTimer, audit("stop_timer"))

	reminders := e.Group("/reminders", d.TokenAuth)
	reminders.GET("", d.Reminders.List, audit("list_reminders"))
	reminders.POST("", d.Reminders.Create, audit("create_reminder"))
	reminders.PUT("/:id", d.Reminders.Update, audit("update_reminder"))
	reminders.DELETE("/:id", d.Reminders.Delete, audit("delete_reminder"))
}
