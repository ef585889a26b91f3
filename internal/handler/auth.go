package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vmeirelles/taskboard/internal/config"
	"github.com/vmeirelles/taskboard/internal/model"
	"github.com/vmeirelles/taskboard/internal/repository"
	"github.com/vmeirelles/taskboard/internal/utils"
)

// AuthHandler bundles dependencies for registration and session endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type sessionResp struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
	Role     string `json:"role"`
}

// Register creates an account and returns a session immediately. The
// admin role may be self-assigned only while no admin exists; afterwards
// admins are created by promotion only.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Usuário e senha obrigatórios"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	role := model.RoleUser
	if req.Role == model.RoleAdmin {
		exists, err := h.Users.AdminExists(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao cadastrar usuário"})
		}
		if exists {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Já existe um administrador"})
		}
		role = model.RoleAdmin
	}

	uid, err := h.Users.Create(ctx, req.Username, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrUsernameExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Usuário já existe"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao cadastrar usuário"})
	}

	token, err := h.issueSession(c, uid, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao gerar token"})
	}
	return c.JSON(http.StatusOK, sessionResp{ID: uid, Username: req.Username, Token: token, Role: role})
}

// Login verifies the credentials and rotates the session token. The
// previous token stops resolving the moment the new one is stored.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Usuário ou senha inválidos"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao efetuar login"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Usuário ou senha inválidos"})
	}

	token, err := h.issueSession(c, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao atualizar token"})
	}
	return c.JSON(http.StatusOK, sessionResp{ID: u.ID, Username: u.Username, Token: token, Role: u.Role})
}

func (h *AuthHandler) issueSession(c echo.Context, userID int64, role string) (string, error) {
	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, userID, role, h.Cfg.TokenTTLMin)
	if err != nil {
		return "", err
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Users.UpdateToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the password of the authenticated user after
// checking the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Corpo da requisição inválido"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Senha atual e nova obrigatórias"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Senha atual incorreta"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao alterar senha"})
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Erro ao alterar senha"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the identity of the authenticated session.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Token inválido"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       u.ID,
		"username": u.Username,
		"role":     u.Role,
	})
}
