package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/helpdesk_backend/internal/domain"
	"github.com/Alijeyrad/helpdesk_backend/internal/service/auth"
	"github.com/Alijeyrad/helpdesk_backend/pkg/reqctx"
	"github.com/Alijeyrad/helpdesk_backend/pkg/session"
)

const LocalUser = "user"

// SessionRequired resolves the session cookie to a user. On success the
// user is stored in c.Locals(LocalUser) and the caller's AuthContext is
// attached to the request context.
func SessionRequired(svc auth.Service, sessions *session.Manager) fiber.Handler {
	return func(c fiber.Ctx) error {
		sid := sessions.CookieID(c)
		if sid == "" {
			return fiber.ErrUnauthorized
		}

		u, err := svc.Authenticate(c.Context(), sid)
		if err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				return fiber.ErrUnauthorized
			}
			return err
		}

		c.Locals(LocalUser, u)
		c.SetContext(reqctx.WithAuth(c.Context(), reqctx.AuthContext{UserID: u.ID, Role: u.Role}))
		return c.Next()
	}
}

// UserFromFiber returns the user loaded by SessionRequired.
func UserFromFiber(c fiber.Ctx) (domain.User, bool) {
	u, ok := c.Locals(LocalUser).(domain.User)
	return u, ok
}
