package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/repository"
)

// sqliteTime is the layout stored by datetime('now'), used to compare
// request date bounds against deleted_at.
const sqliteTime = "2006-01-02 15:04:05"

func parseDateParam(value string, endOfDay bool) (string, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		t, err = time.Parse(time.RFC3339, value)
		if err != nil {
			return "", err
		}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t.UTC().Format(sqliteTime), nil
}

// ListArchive handles GET /tasks/archive. Admins filter freely; other
// users see only entries they own, unowned entries, or ones they deleted
// themselves. Restored entries are hidden unless includeRestored=true.
func (h *TaskHandler) ListArchive(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}

	f := repository.ArchiveFilter{
		UserID:          u.ID,
		Username:        u.Username,
		Admin:           u.IsAdmin(),
		Search:          c.QueryParam("search"),
		IncludeRestored: c.QueryParam("includeRestored") == "true",
	}

	if u.IsAdmin() {
		if owner := strings.TrimSpace(c.QueryParam("owner")); owner != "" && owner != "all" {
			if owner == "none" {
				f.OwnerNone = true
			} else {
				id, err := strconv.ParseInt(owner, 10, 64)
				if err != nil || id < 1 {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "Parâmetro owner inválido"})
				}
				f.OwnerID = &id
			}
		}
	}

	if start := strings.TrimSpace(c.QueryParam("start")); start != "" {
		bound, err := parseDateParam(start, false)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Parâmetro start inválido"})
		}
		f.Start = bound
	}
	if end := strings.TrimSpace(c.QueryParam("end")); end != "" {
		bound, err := parseDateParam(end, true)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Parâmetro end inválido"})
		}
		f.End = bound
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	entries, err := h.Archives.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao consultar histórico"})
	}
	return c.JSON(http.StatusOK, entries)
}

// Restore handles POST /tasks/archive/:id/restore (admin only). A fresh
// backlog card is created from the snapshot; the entry can be restored
// only once. When the original owner no longer exists the card comes
// back unowned.
func (h *TaskHandler) Restore(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	if !u.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Somente administradores podem restaurar cards"})
	}
	archiveID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rec, err := h.Archives.GetByID(ctx, archiveID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Registro não encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao restaurar card"})
	}
	if rec.RestoredAt != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Este card já foi restaurado"})
	}

	ownerID := rec.OwnerID
	if ownerID != nil {
		exists, err := h.Users.Exists(ctx, *ownerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao restaurar card"})
		}
		if !exists {
			ownerID = nil
		}
	}

	note := fmt.Sprintf("Restaurado do histórico em %s por %s",
		time.Now().UTC().Format(time.RFC3339), u.Username)
	if rec.DeletedBy != nil && *rec.DeletedBy != "" {
		note += fmt.Sprintf(" (removido originalmente por %s)", *rec.DeletedBy)
	}
	note += "."
	description := note
	if rec.Description != nil && *rec.Description != "" {
		description = *rec.Description + "\n\n" + note
	}

	task, err := h.Tasks.RestoreArchived(ctx, rec, ownerID, u.Username, description)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Este card já foi restaurado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao restaurar card"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"restored":         true,
		"restored_task_id": task.ID,
		"code":             task.Code,
		"status":           task.Status,
	})
}
