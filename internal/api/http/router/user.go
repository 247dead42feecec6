package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/handler"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Permission) fiber.Handler,
) {
	users := api.Group("/users", authRequired)
	users.Get("/agents", requirePerm(authorize.PermUserListAgents), h.Agents)
	users.Get("/", requirePerm(authorize.PermUserList), h.List)
	users.Post("/", requirePerm(authorize.PermUserCreate), h.Create)

	team := api.Group("/team", authRequired)
	team.Post("/invite", requirePerm(authorize.PermTeamInvite), h.Invite)
}
