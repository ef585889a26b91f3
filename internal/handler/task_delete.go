package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/repository"
)

// Delete handles DELETE /tasks/:id. Direct subtasks go with the parent;
// any card in 'done' is archived before removal, and an archive failure
// aborts the whole delete.
func (h *TaskHandler) Delete(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Tarefa não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao remover tarefa"})
	}
	if !u.IsAdmin() && task.OwnerID != nil && *task.OwnerID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Sem permissão para remover este card"})
	}

	deleted, err := h.Tasks.DeleteWithChildren(ctx, taskID, u.Username)
	if err != nil {
		if errors.Is(err, repository.ErrArchiveFailed) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao arquivar cards removidos"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao remover tarefa"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
