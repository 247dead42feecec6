package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/service/user"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func mapUserError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, user.ErrInvalidUser):
		return badRequest(c, "Invalid user data")
	case errors.Is(err, user.ErrInvalidInvite):
		return badRequest(c, "Invalid invite data")
	case errors.Is(err, user.ErrUsernameExists):
		return conflict(c, "Username already exists")
	case errors.Is(err, user.ErrEmailAlreadyExists):
		return conflict(c, "Email already exists")
	default:
		return internalError(c, err)
	}
}

// POST /api/users
func (h *UserHandler) Create(c fiber.Ctx) error {
	var body user.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid user data")
	}

	u, err := h.svc.Create(c.Context(), body)
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, u)
}

// GET /api/users
func (h *UserHandler) List(c fiber.Ctx) error {
	users, err := h.svc.List(c.Context())
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, users)
}

// GET /api/users/agents
func (h *UserHandler) Agents(c fiber.Ctx) error {
	users, err := h.svc.Agents(c.Context())
	if err != nil {
		return mapUserError(c, err)
	}
	return ok(c, users)
}

// POST /api/team/invite
func (h *UserHandler) Invite(c fiber.Ctx) error {
	var body user.InviteRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid invite data")
	}

	u, err := h.svc.Invite(c.Context(), body)
	if err != nil {
		return mapUserError(c, err)
	}
	return created(c, u)
}
