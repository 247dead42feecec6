package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/service/stats"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatsHandler struct {
	svc stats.Service
}

func NewStatsHandler(svc stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func mapStatsError(c fiber.Ctx, err error) error {
	if errors.Is(err, stats.ErrInvalidTimeframe) {
		return badRequest(c, "Invalid timeframe")
	}
	return internalError(c, err)
}

// GET /api/stats
func (h *StatsHandler) Stats(c fiber.Ctx) error {
	st, err := h.svc.Stats(c.Context())
	if err != nil {
		return mapStatsError(c, err)
	}
	return ok(c, st)
}

// GET /api/reports/volume/:timeframe
func (h *StatsHandler) Volume(c fiber.Ctx) error {
	return report(c, h.svc.Volume)
}

// GET /api/reports/categories/:timeframe
func (h *StatsHandler) Categories(c fiber.Ctx) error {
	return report(c, h.svc.Categories)
}

// GET /api/reports/response-time/:timeframe
func (h *StatsHandler) ResponseTime(c fiber.Ctx) error {
	return report(c, h.svc.ResponseTime)
}

// GET /api/reports/export/:timeframe
func (h *StatsHandler) Export(c fiber.Ctx) error {
	tf, err := stats.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return mapStatsError(c, err)
	}
	data, err := h.svc.Export(c.Context(), tf)
	if err != nil {
		return mapStatsError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "tickets-"+string(tf)+".xlsx"))
	return c.Send(data)
}

func report[T any](c fiber.Ctx, fn func(ctx context.Context, tf stats.Timeframe) ([]T, error)) error {
	tf, err := stats.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return mapStatsError(c, err)
	}
	out, err := fn(c.Context(), tf)
	if err != nil {
		return mapStatsError(c, err)
	}
	return ok(c, out)
}
