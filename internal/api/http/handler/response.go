package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// Success bodies are the payload itself; failures are {"message": ...}.

func ok(c fiber.Ctx, data any) error {
	return c.JSON(data)
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func badRequest(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusBadRequest, msg)
}

func unauthorized(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusUnauthorized, msg)
}

func forbidden(c fiber.Ctx) error {
	return message(c, fiber.StatusForbidden, "Forbidden")
}

func notFound(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusNotFound, msg)
}

func conflict(c fiber.Ctx, msg string) error {
	return message(c, fiber.StatusConflict, msg)
}

// internalError logs the cause and answers with a generic 500.
func internalError(c fiber.Ctx, err error) error {
	slog.ErrorContext(c.Context(), "http: request failed",
		"method", c.Method(), "path", c.Path(), "err", err)
	return message(c, fiber.StatusInternalServerError, "Internal server error")
}

// paramID parses a positive integer route parameter.
func paramID(c fiber.Ctx, name string) (int, bool) {
	id, err := strconv.Atoi(c.Params(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
