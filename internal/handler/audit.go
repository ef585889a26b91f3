package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/repository"
)

// AuditHandler exposes the audit trail. Admins see everything; other
// users only the rows recorded under their own name.
type AuditHandler struct {
	Audits *repository.AuditRepo
}

func NewAuditHandler(audits *repository.AuditRepo) *AuditHandler {
	return &AuditHandler{Audits: audits}
}

// List handles GET /api/audit.
func (h *AuditHandler) List(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	rows, err := h.Audits.List(ctx, u.Username, u.IsAdmin())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao consultar auditoria"})
	}
	return c.JSON(http.StatusOK, rows)
}
