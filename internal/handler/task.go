package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/repository"
	"github.com/vmeirelles/taskboard/internal/utils"
)

// TaskHandler implements the task board endpoints: create, list, update,
// delete, timer and archive restore.
type TaskHandler struct {
	Tasks    *repository.TaskRepo
	Archives *repository.ArchiveRepo
	Users    *repository.UserRepo
}

func NewTaskHandler(tasks *repository.TaskRepo, archives *repository.ArchiveRepo, users *repository.UserRepo) *TaskHandler {
	if tasks == nil || archives == nil || users == nil {
		panic("nil repository passed to NewTaskHandler")
	}
	return &TaskHandler{Tasks: tasks, Archives: archives, Users: users}
}

type createTaskReq struct {
	Title       string                `json:"title"`
	Priority    string                `json:"priority"`
	Description string                `json:"description"`
	Assignee    string                `json:"assignee"`
	ParentID    *int64                `json:"parent_id"`
	Status      string                `json:"status"`
	Tags        []string              `json:"tags"`
	Checklist   []model.ChecklistItem `json:"checklist"`
	OwnerID     *int64                `json:"owner_id"`
}

// Create handles POST /tasks.
//
// Validation order follows the board rules: title first, then owner
// assignment (admin only), then the parent constraints. A subtask may
// only be attached while the parent sits in backlog, the parent must not
// itself be a subtask, and non-admins must own the parent card (or it
// must be unowned). The subtask inherits the parent's owner when the
// parent has one.
func (h *TaskHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "O título não pode ser vazio"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ownerID := &u.ID
	if u.IsAdmin() && req.OwnerID != nil {
		if *req.OwnerID < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_id inválido"})
		}
		ownerID = req.OwnerID
	}

	status := model.StatusBacklog
	if model.ValidStatus(req.Status) {
		status = req.Status
	}

	task := model.Task{
		Title:       title,
		Status:      status,
		Priority:    model.NormalizePriority(req.Priority),
		Description: req.Description,
		Assignee:    req.Assignee,
		Tags:        utils.SanitizeTags(req.Tags),
		Checklist:   utils.SanitizeChecklist(req.Checklist),
		OwnerID:     ownerID,
	}

	if req.ParentID != nil {
		if *req.ParentID < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "parent_id inválido"})
		}
		parent, err := h.Tasks.GetByID(ctx, *req.ParentID)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Tarefa pai não encontrada"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao criar tarefa"})
		}
		if parent.ParentID != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Uma subtarefa não pode ter seus próprios filhos"})
		}
		if parent.Status != model.StatusBacklog {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Só é possível adicionar subtarefa enquanto o card pai estiver no backlog"})
		}
		if !u.IsAdmin() && parent.OwnerID != nil && *parent.OwnerID != u.ID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Sem permissão para adicionar subtarefa neste card"})
		}
		task.ParentID = req.ParentID
		if parent.OwnerID != nil {
			task.OwnerID = parent.OwnerID
		}
		if !model.ValidStatus(req.Status) {
			task.Status = parent.Status
		}
	}

	// Existence only needs checking when the card is being assigned to
	// somebody other than the requester.
	if task.OwnerID != nil && *task.OwnerID != u.ID {
		exists, err := h.Users.Exists(ctx, *task.OwnerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao criar tarefa"})
		}
		if !exists {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_id não encontrado"})
		}
	}

	if err := h.Tasks.Create(ctx, &task); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao criar tarefa"})
	}
	return c.JSON(http.StatusOK, task)
}

// List handles GET /tasks. Non-admins are always scoped server-side to
// their own and unowned cards; admins may filter with ?owner=none|<id>.
func (h *TaskHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}

	filter := repository.ListFilter{UserID: u.ID, Admin: u.IsAdmin()}
	if u.IsAdmin() {
		if owner := strings.TrimSpace(c.QueryParam("owner")); owner != "" {
			if owner == "none" {
				filter.OwnerNone = true
			} else {
				id, err := strconv.ParseInt(owner, 10, 64)
				if err != nil || id < 1 {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "Parâmetro owner inválido"})
				}
				filter.OwnerID = &id
			}
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	tasks, err := h.Tasks.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao listar tarefas"})
	}
	return c.JSON(http.StatusOK, tasks)
}
