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

// ReminderHandler exposes the personal reminder endpoints. Reminders are
// private per user; admins may read any user's list but mutate only
// within the usual ownership rule.
type ReminderHandler struct {
	Reminders *repository.ReminderRepo
}

func NewReminderHandler(reminders *repository.ReminderRepo) *ReminderHandler {
	return &ReminderHandler{Reminders: reminders}
}

// List handles GET /reminders. Admins may pass ?user=<id> to read another
// user's reminders.
func (h *ReminderHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	targetID := u.ID
	if u.IsAdmin() {
		if param := strings.TrimSpace(c.QueryParam("user")); param != "" {
			id, err := strconv.ParseInt(param, 10, 64)
			if err != nil || id < 1 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "Parâmetro user inválido"})
			}
			targetID = id
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	rows, err := h.Reminders.ListByUser(ctx, targetID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao listar lembretes"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Create handles POST /reminders.
func (h *ReminderHandler) Create(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}
	text := utils.SanitizeReminderText(body.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "O texto do lembrete é obrigatório."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	reminder, err := h.Reminders.Create(ctx, u.ID, text)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao criar lembrete"})
	}
	return c.JSON(http.StatusCreated, reminder)
}

// load fetches the reminder and applies the ownership gate.
func (h *ReminderHandler) load(c echo.Context, verb string) (model.Reminder, int, string) {
	u, ok := currentUser(c)
	if !ok {
		return model.Reminder{}, http.StatusUnauthorized, "Token inválido"
	}
	id, err := pathID(c, "id")
	if err != nil {
		return model.Reminder{}, http.StatusBadRequest, "ID inválido"
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	reminder, err := h.Reminders.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Reminder{}, http.StatusNotFound, "Lembrete não encontrado"
		}
		return model.Reminder{}, http.StatusInternalServerError, "Erro ao consultar lembrete"
	}
	if reminder.UserID != u.ID && !u.IsAdmin() {
		return model.Reminder{}, http.StatusForbidden, "Sem permissão para " + verb + " este lembrete"
	}
	return reminder, 0, ""
}

// Update handles PUT /reminders/:id.
func (h *ReminderHandler) Update(c echo.Context) error {
	reminder, code, msg := h.load(c, "alterar")
	if code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	var body struct {
		Text *string `json:"text"`
		Done *bool   `json:"done"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}
	if body.Text != nil {
		text := utils.SanitizeReminderText(*body.Text)
		if text == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "O texto do lembrete é obrigatório."})
		}
		body.Text = &text
	}
	if body.Text == nil && body.Done == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nenhum campo para atualizar."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	updated, err := h.Reminders.Update(ctx, reminder.ID, body.Text, body.Done)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar lembrete"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /reminders/:id.
func (h *ReminderHandler) Delete(c echo.Context) error {
	reminder, code, msg := h.load(c, "remover")
	if code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Reminders.Delete(ctx, reminder.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao remover lembrete"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
