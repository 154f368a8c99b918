package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-report-service/internal/api/dto"
	"github.com/spec-kit/field-report-service/internal/auth"
	"github.com/spec-kit/field-report-service/internal/service"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

// AuthHandler exposes login, logout and identity endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	token, session, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token: token,
		User: dto.SessionUser{
			UUID:  session.SubjectID,
			Email: session.Email,
			Role:  string(session.Role),
		},
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// Me handles GET /api/auth/me. The identity is derived purely from the
// verified token; no store lookup is performed.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": dto.SessionUser{
		UUID:  session.SubjectID,
		Email: session.Email,
		Role:  string(session.Role),
	}})
}
