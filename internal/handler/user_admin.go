package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/repository"
)

// UserHandler exposes the admin-only user management endpoints. The
// routes are wrapped by RequireAdmin; handlers only implement the
// operation itself.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao listar usuários"})
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateRole handles PUT /api/users/:id/role.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil || !model.ValidRole(body.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Papel inválido"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Users.UpdateRole(ctx, id, body.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar papel"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Delete handles DELETE /api/users/:id. An admin cannot remove their own
// account.
func (h *UserHandler) Delete(c echo.Context) error {
	u, _ := currentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ID inválido"})
	}
	if id == u.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Não pode remover a si mesmo"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()
	n, err := h.Users.Delete(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao remover usuário"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
