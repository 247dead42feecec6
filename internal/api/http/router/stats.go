package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/handler"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func (r *Router) registerStatsRoutes(
	api fiber.Router,
	h *handler.StatsHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Permission) fiber.Handler,
) {
	api.Get("/stats", authRequired, requirePerm(authorize.PermStatsRead), h.Stats)

	reports := api.Group("/reports", authRequired, requirePerm(authorize.PermReportRead))
	reports.Get("/volume/:timeframe", h.Volume)
	reports.Get("/categories/:timeframe", h.Categories)
	reports.Get("/response-time/:timeframe", h.ResponseTime)
	reports.Get("/export/:timeframe", h.Export)
}
