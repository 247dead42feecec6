package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/pkg/authorize"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
)

// RequirePermission lets the request through only if the caller's role is
// granted perm. It must run after SessionRequired.
func RequirePermission(auth authorize.IAuthorization, perm authorize.Permission) fiber.Handler {
	return func(c fiber.Ctx) error {
		caller, ok := reqctx.AuthFromContext(c.Context())
		if !ok {
			return fiber.ErrUnauthorized
		}

		allowed, err := auth.Authorize(c.Context(), caller.Role, perm)
		if err != nil {
			return err
		}
		if !allowed {
			return fiber.ErrForbidden
		}

		return c.Next()
	}
}
