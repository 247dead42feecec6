package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/ticket"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

type TicketHandler struct {
	svc ticket.Service
}

func NewTicketHandler(svc ticket.Service) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func mapTicketError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ticket.ErrNotFound):
		return notFound(c, "Ticket not found")
	case errors.Is(err, ticket.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, ticket.ErrInvalidTicket):
		return badRequest(c, "Invalid ticket data")
	case errors.Is(err, ticket.ErrInvalidUpdate):
		return badRequest(c, "Invalid update data")
	case errors.Is(err, ticket.ErrInvalidComment):
		return badRequest(c, "Invalid comment data")
	case errors.Is(err, ticket.ErrQueryRequired):
		return badRequest(c, "Search query is required")
	default:
		return internalError(c, err)
	}
}

func callerFrom(c fiber.Ctx) (reqctx.AuthContext, error) {
	a, found := reqctx.AuthFromContext(c.Context())
	if !found {
		return reqctx.AuthContext{}, fiber.ErrUnauthorized
	}
	return a, nil
}

// POST /api/tickets
func (h *TicketHandler) Create(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	var body ticket.CreateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid ticket data")
	}

	t, err := h.svc.Create(c.Context(), caller, body)
	if err != nil {
		return mapTicketError(c, err)
	}
	return created(c, t)
}

// GET /api/tickets?page&limit
func (h *TicketHandler) List(c fiber.Ctx) error {
	var q struct {
		Page  int `query:"page"`
		Limit int `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	page, err := h.svc.List(c.Context(), q.Page, q.Limit)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, page)
}

// GET /api/tickets/search?q=
func (h *TicketHandler) Search(c fiber.Ctx) error {
	tickets, err := h.svc.Search(c.Context(), c.Query("q"))
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, tickets)
}

// GET /api/tickets/status/:status
func (h *TicketHandler) ByStatus(c fiber.Ctx) error {
	tickets, err := h.svc.ByStatus(c.Context(), domain.TicketStatus(c.Params("status")))
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, tickets)
}

// GET /api/tickets/priority/:priority
func (h *TicketHandler) ByPriority(c fiber.Ctx) error {
	tickets, err := h.svc.ByPriority(c.Context(), domain.TicketPriority(c.Params("priority")))
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, tickets)
}

// GET /api/tickets/assigned/:id
func (h *TicketHandler) ByAssignee(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user id")
	}
	tickets, err := h.svc.ByAssignee(c.Context(), id)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, tickets)
}

// GET /api/tickets/created/:id
func (h *TicketHandler) ByCreator(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid user id")
	}
	tickets, err := h.svc.ByCreator(c.Context(), id)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, tickets)
}

// GET /api/tickets/:id
func (h *TicketHandler) Get(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid ticket id")
	}
	t, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, t)
}

// PATCH /api/tickets/:id
func (h *TicketHandler) Update(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid ticket id")
	}

	var body ticket.UpdateRequest
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid update data")
	}

	t, err := h.svc.Update(c.Context(), caller, id, body)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, t)
}

// POST /api/tickets/:id/comments
func (h *TicketHandler) AddComment(c fiber.Ctx) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid ticket id")
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "Invalid comment data")
	}

	comment, err := h.svc.AddComment(c.Context(), caller, id, body.Content)
	if err != nil {
		return mapTicketError(c, err)
	}
	return created(c, comment)
}

// GET /api/tickets/:id/comments
func (h *TicketHandler) Comments(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid ticket id")
	}
	comments, err := h.svc.Comments(c.Context(), id)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, comments)
}

// GET /api/tickets/:id/activities
func (h *TicketHandler) Activities(c fiber.Ctx) error {
	id, valid := paramID(c, "id")
	if !valid {
		return badRequest(c, "Invalid ticket id")
	}
	acts, err := h.svc.Activities(c.Context(), id)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, acts)
}

// GET /api/activities?limit
func (h *TicketHandler) RecentActivities(c fiber.Ctx) error {
	var q struct {
		Limit int `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	acts, err := h.svc.RecentActivities(c.Context(), q.Limit)
	if err != nil {
		return mapTicketError(c, err)
	}
	return ok(c, acts)
}
