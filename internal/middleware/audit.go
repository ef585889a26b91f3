package middleware

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/queue"
	"github.com/vmeirelles/taskboard/internal/repository"
)

// PublishFunc forwards an audit event to the message broker. It may be
// nil when event publishing is disabled.
type PublishFunc func(ctx context.Context, ev queue.AuditRecordedEvent) error

// Auditor records successful requests to the audit table and, when a
// publish function is configured, to the message broker. Delivery is at
// most once and best effort: the row is written in a detached goroutine
// after the response and a failure never reaches the client.
type Auditor struct {
	Audits  *repository.AuditRepo
	Publish PublishFunc
}

func NewAuditor(audits *repository.AuditRepo, publish PublishFunc) *Auditor {
	return &Auditor{Audits: audits, Publish: publish}
}

// Middleware returns the audit middleware for one action label. Only
// responses with status < 400 are recorded.
func (a *Auditor) Middleware(action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || c.Response().Status >= 400 {
				return err
			}

			username := "anonymous"
			if u, ok := c.Get(ContextUserKey).(model.User); ok {
				username = u.Username
			}
			rec := model.AuditRecord{
				User:   username,
				Action: action,
				Method: c.Request().Method,
				Path:   c.Request().URL.RequestURI(),
				Date:   time.Now().UTC().Format(time.RFC3339),
			}

			go a.record(rec)
			return nil
		}
	}
}

func (a *Auditor) record(rec model.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Audits.Insert(ctx, rec); err != nil {
		log.Printf("audit: insert failed: %v", err)
	}
	if a.Publish != nil {
		ev := queue.AuditRecordedEvent{
			User:   rec.User,
			Action: rec.Action,
			Method: rec.Method,
			Path:   rec.Path,
			Date:   rec.Date,
		}
		_ = a.Publish(ctx, ev) // publisher already logs failures
	}
}
