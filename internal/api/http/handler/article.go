package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/article"
)

type ArticleHandler struct {
	svc article.Service
}

func NewArticleHandler(svc article.Service) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

func mapArticleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, article.ErrNotFound):
		return notFound(c, "Article not found")
	case errors.Is(err, article.ErrInvalidArticle):
		return badRequest(c, "Invalid article data")
	case errors.Is(err, article.ErrInvalidFeedback):
		return badRequest(c, "Invalid feedback data")
	case errors.Is(err, article.ErrQueryRequired):
		return badRequest(c, "Search query is required")
	default:
		return internalError(c, err)
	}
}

// GET /api/articles?status&category&authorId&page&limit
func (h *ArticleHandler) List(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var q struct {
		Status   string `query:"status"`
		Category string `query:"category"`
		AuthorID int    `query:"authorId"`
		Page     int    `query:"page"`
		Limit    int    `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	page, err := h.svc.List(c.Context(), caller, article.ListQuery{
		Status:   domain.ArticleStatus(q.Status),
		Category: q.Category,
		AuthorID: q.AuthorID,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return mapArticleError(c, err)
	}
	return ok(c, page)
}

// GET /api/articles/search?q=
func (h *ArticleHandler) Search(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	articles, err := h.svc.Search(c.Context(), caller, c.Query("q"))
	if err != nil {
		return mapArticleError(c, err)
	}
	return ok(c, articles)
}

// GET /api/articles/:id
func (h *ArticleHandler) Get(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid article id")
	}
	v, err := h.svc.Get(c.Context(), caller, id)
	if err != nil {
		return mapArticleError(c, err)
	}
	return ok(c, v)
}

// POST /api/articles
func (h *ArticleHandler) Create(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var body article.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid article data")
	}
	a, err := h.svc.Create(c.Context(), caller, body)
	if err != nil {
		return mapArticleError(c, err)
	}
	return created(c, a)
}

// PATCH /api/articles/:id
func (h *ArticleHandler) Update(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid article id")
	}
	var body article.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid article data")
	}
	a, err := h.svc.Update(c.Context(), caller, id, body)
	if err != nil {
		return mapArticleError(c, err)
	}
	return ok(c, a)
}

// POST /api/articles/:id/publish
func (h *ArticleHandler) Publish(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid article id")
	}
	a, err := h.svc.Publish(c.Context(), caller, id)
	if err != nil {
		return mapArticleError(c, err)
	}
	return ok(c, a)
}

// POST /api/articles/:id/feedback
func (h *ArticleHandler) Feedback(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid article id")
	}
	var body article.FeedbackRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid feedback data")
	}
	fb, err := h.svc.Feedback(c.Context(), caller, id, body)
	if err != nil {
		return mapArticleError(c, err)
	}
	return created(c, fb)
}
