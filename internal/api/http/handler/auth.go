package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/service/auth"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

type AuthHandler struct {
	svc      auth.Service
	sessions *session.Manager
}

func NewAuthHandler(svc auth.Service, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{svc: svc, sessions: sessions}
}

func mapAuthError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return badRequest(c, "Invalid login credentials")
	case errors.Is(err, auth.ErrUnknownUsername):
		return badRequest(c, "Incorrect username.")
	case errors.Is(err, auth.ErrWrongPassword):
		return badRequest(c, "Incorrect password.")
	case errors.Is(err, auth.ErrNotAuthenticated):
		return unauthorized(c, "Not authenticated")
	default:
		return internalError(c, err)
	}
}

// POST /api/auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var body auth.LoginRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid login credentials")
	}

	u, sid, err := h.svc.Login(c.Context(), body)
	if err != nil {
		return mapAuthError(c, err)
	}

	h.sessions.SetCookie(c, sid)
	return ok(c, u)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.svc.Logout(c.Context(), h.sessions.CookieID(c)); err != nil {
		return internalError(c, err)
	}
	h.sessions.ClearCookie(c)
	return ok(c, fiber.Map{"message": "Logged out successfully"})
}

// GET /api/auth/session
func (h *AuthHandler) Session(c fiber.Ctx) error {
	u, err := h.svc.Authenticate(c.Context(), h.sessions.CookieID(c))
	if err != nil {
		return mapAuthError(c, err)
	}
	return ok(c, u)
}
