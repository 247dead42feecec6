package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/api/http/handler"
	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
)

func (r *Router) registerArticleRoutes(
	api fiber.Router,
	h *handler.ArticleHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Permission) fiber.Handler,
) {
	read := requirePerm(authorize.PermArticleRead)
	write := requirePerm(authorize.PermArticleWrite)

	articles := api.Group("/articles", authRequired)
	articles.Get("/", read, h.List)
	articles.Post("/", write, h.Create)
	articles.Get("/search", read, h.Search)

	a := articles.Group("/:id")
	a.Get("/", read, h.Get)
	a.Patch("/", write, h.Update)
	a.Post("/publish", write, h.Publish)
	a.Post("/feedback", requirePerm(authorize.PermArticleFeedback), h.Feedback)
}
