package session

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

// CookieID returns the session id carried by the request, if any.
func (m *Manager) CookieID(c fiber.Ctx) string {
	return c.Cookies(m.cfg.CookieName)
}

func (m *Manager) SetCookie(c fiber.Ctx, id string) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL / time.Second),
		Secure:   m.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
