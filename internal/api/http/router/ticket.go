package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/handler"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func (r *Router) registerTicketRoutes(
	api fiber.Router,
	th *handler.TicketHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Permission) fiber.Handler,
) {
	read := requirePerm(authorize.PermTicketRead)

	tickets := api.Group("/tickets", authRequired)

	tickets.Get("/", read, th.List)
	tickets.Post("/", requirePerm(authorize.PermTicketCreate), th.Create)

	// Fixed segments go before /:id.
	tickets.Get("/search", read, th.Search)
	tickets.Get("/status/:status", read, th.ByStatus)
	tickets.Get("/priority/:priority", read, th.ByPriority)
	tickets.Get("/assigned/:id", read, th.ByAssignee)
	tickets.Get("/created/:id", read, th.ByCreator)

	t := tickets.Group("/:id")
	t.Get("/", read, th.Get)
	t.Patch("/", th.Update)
	t.Get("/comments", requirePerm(authorize.PermCommentRead), th.Comments)
	t.Post("/comments", requirePerm(authorize.PermCommentCreate), th.AddComment)
	t.Get("/activities", requirePerm(authorize.PermActivityRead), th.Activities)

	api.Get("/activities", authRequired, requirePerm(authorize.PermActivityRead), th.RecentActivities)
}
