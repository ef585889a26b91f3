package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/repository"
	"github.com/vmeirelles/taskboard/internal/utils"
)

// updateTaskReq distinguishes absent fields from explicit nulls. Pointer
// fields are nil when the key was not sent; owner_id and parent_id keep
// the raw JSON so "field: null" (clear) is not confused with "field
// omitted" (leave alone).
type updateTaskReq struct {
	Title            *string                `json:"title"`
	Status           *string                `json:"status"`
	RegressionReason *string                `json:"regression_reason"`
	Priority         *string                `json:"priority"`
	Description      *string                `json:"description"`
	Assignee         *string                `json:"assignee"`
	Tags             *[]string              `json:"tags"`
	Checklist        *[]model.ChecklistItem `json:"checklist"`
	OwnerID          json.RawMessage        `json:"owner_id"`
	ParentID         json.RawMessage        `json:"parent_id"`
}

// rawOptionalID interprets a raw JSON value as an optional id. Returns
// (nil, true, nil) for null or empty string, meaning "clear the column".
func rawOptionalID(raw json.RawMessage) (*int64, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return nil, true, nil
	}
	var id int64
	if err := json.Unmarshal(trimmed, &id); err != nil {
		// Accept numeric strings too ("5"), matching lenient clients.
		var s string
		if serr := json.Unmarshal(trimmed, &s); serr != nil {
			return nil, false, err
		}
		if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &id); err != nil {
			return nil, false, err
		}
	}
	if id < 1 {
		return nil, false, errInvalidID
	}
	return &id, false, nil
}

var errInvalidID = errors.New("invalid id")

// Update handles PUT /tasks/:id. Ownership gates non-admins; a status
// move to an earlier pipeline stage requires a regression reason; owner
// reassignment is admin only; parent changes re-run the depth-1 checks.
func (h *TaskHandler) Update(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}
	var req updateTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	current, err := h.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Tarefa não encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar tarefa"})
	}
	if !u.IsAdmin() && current.OwnerID != nil && *current.OwnerID != u.ID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Sem permissão para alterar este card"})
	}

	var upd repository.TaskUpdate

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "O título não pode ser vazio"})
		}
		upd.Title = &title
	}

	if req.Status != nil {
		status := *req.Status
		if !model.ValidStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status inválido"})
		}
		if status != current.Status {
			regression := model.StatusIndex(status) < model.StatusIndex(current.Status)
			if regression {
				reason := ""
				if req.RegressionReason != nil {
					reason = strings.TrimSpace(*req.RegressionReason)
				}
				if reason == "" {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "Motivo obrigatório ao mover o card para um status anterior."})
				}
				upd.RegressionReason = &reason
			}
			upd.Status = &status
			if status == model.StatusDone {
				upd.SetCompletedAt = true
			}
			if status == model.StatusBacklog || status == model.StatusDoing {
				upd.ClearCompletedAt = true
			}
		}
	}

	if req.Priority != nil {
		if !model.ValidPriority(*req.Priority) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Prioridade inválida"})
		}
		upd.Priority = req.Priority
	}
	upd.Description = req.Description
	upd.Assignee = req.Assignee
	if req.Tags != nil {
		tags := utils.SanitizeTags(*req.Tags)
		upd.Tags = &tags
	}
	if req.Checklist != nil {
		list := utils.SanitizeChecklist(*req.Checklist)
		upd.Checklist = &list
	}

	if req.OwnerID != nil {
		if !u.IsAdmin() {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Somente administradores podem reatribuir cards"})
		}
		ownerID, _, err := rawOptionalID(req.OwnerID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_id inválido"})
		}
		if ownerID != nil && (current.OwnerID == nil || *ownerID != *current.OwnerID) {
			exists, err := h.Users.Exists(ctx, *ownerID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar tarefa"})
			}
			if !exists {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_id não encontrado"})
			}
		}
		upd.OwnerSet = true
		upd.OwnerID = ownerID
	}

	if req.ParentID != nil {
		parentID, cleared, err := rawOptionalID(req.ParentID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent_id inválido"})
		}
		if cleared {
			upd.ParentSet = true
		} else {
			if *parentID == taskID {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Uma tarefa não pode ser pai de si mesma"})
			}
			// A card with subtasks cannot itself become a subtask;
			// chains stay one level deep.
			hasChildren, err := h.Tasks.HasChildren(ctx, taskID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar tarefa"})
			}
			if hasChildren {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Uma tarefa com subtarefas não pode virar subtarefa"})
			}
			parent, err := h.Tasks.GetByID(ctx, *parentID)
			if err != nil {
				if err == sql.ErrNoRows {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tarefa pai não encontrada"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar tarefa"})
			}
			if parent.ParentID != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Uma subtarefa não pode ter seus próprios filhos"})
			}
			if !u.IsAdmin() {
				allowedOwner := u.ID
				if parent.OwnerID != nil {
					allowedOwner = *parent.OwnerID
				}
				currentOwner := u.ID
				if current.OwnerID != nil {
					currentOwner = *current.OwnerID
				}
				if allowedOwner != u.ID || currentOwner != u.ID {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "Sem permissão para vincular a este card"})
				}
			}
			upd.ParentSet = true
			upd.ParentID = parentID
		}
	}

	if upd.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nenhum campo para atualizar."})
	}

	n, err := h.Tasks.Update(ctx, taskID, upd)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar tarefa"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
