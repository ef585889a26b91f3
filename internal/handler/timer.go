package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/repository"
)

// loadForTimer applies the shared lookup and permission gate for the
// timer endpoints. The permission rule matches task updates.
func (h *TaskHandler) loadForTimer(c echo.Context) (model.Task, int, string) {
	u, ok := currentUser(c)
	if !ok {
		return model.Task{}, http.StatusUnauthorized, "Token inválido"
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return model.Task{}, http.StatusBadRequest, "ID inválido"
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	task, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Task{}, http.StatusNotFound, "Tarefa não encontrada"
		}
		return model.Task{}, http.StatusInternalServerError, "Erro ao consultar tarefa"
	}
	if !u.IsAdmin() && task.OwnerID != nil && *task.OwnerID != u.ID {
		return model.Task{}, http.StatusForbidden, "Sem permissão para alterar este card"
	}
	return task, 0, ""
}

// StartTimer handles POST /tasks/:id/timer/start. Only one timer may run
// per task; starting twice yields 409.
func (h *TaskHandler) StartTimer(c echo.Context) error {
	task, code, msg := h.loadForTimer(c)
	if code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Tasks.StartTimer(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Já existe um timer em andamento para este card"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao iniciar timer"})
	}
	updated, err := h.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao consultar tarefa"})
	}
	return c.JSON(http.StatusOK, updated)
}

// StopTimer handles POST /tasks/:id/timer/stop. The elapsed time is
// folded into tracked_seconds; stopping without a running timer is 400.
func (h *TaskHandler) StopTimer(c echo.Context) error {
	task, code, msg := h.loadForTimer(c)
	if code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Tasks.StopTimer(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nenhum timer em andamento para este card"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao encerrar timer"})
	}
	updated, err := h.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao consultar tarefa"})
	}
	return c.JSON(http.StatusOK, updated)
}
