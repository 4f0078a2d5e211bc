package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/dto"
	"github.com/hubly/helpdesk/internal/auth"
	"github.com/hubly/helpdesk/internal/service"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// AuthHandler serves signup, login and identity.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

// Signup POST /auth/signup — one-time admin bootstrap.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, expiresAt, err := h.auth.Signup(c.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    userResponse(user),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    userResponse(user),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	})
}

// Me GET /auth/me — the authenticated caller's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    userResponse(principal.User),
	})
}
