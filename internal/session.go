package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DrGermanius/Glonni/internal/model"
)

const (
	tokenCookie = "token"
	sessionKey  = "session"
	profileKey  = "profile"
)

// Session reads the token cookie into the request locals. A missing or
// invalid token leaves the request anonymous.
func (h *Handlers) Session(c *fiber.Ctx) error {
	if t := c.Cookies(tokenCookie); t != "" {
		s, err := h.Service.ParseToken(t)
		if err == nil {
			c.Locals(sessionKey, &s)
		}
	}
	return c.Next()
}

// Authenticated rejects anonymous requests.
func (h *Handlers) Authenticated(c *fiber.Ctx) error {
	if sessionOf(c) == nil {
		return h.deny(c, ErrNotAuthenticated, model.Profile{})
	}
	return c.Next()
}

// RequireRole lets the request through only when the caller's profile may
// enter the area of role.
func (h *Handlers) RequireRole(role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := h.access.Authorize(c.Context(), sessionOf(c), role)
		if err != nil {
			return h.deny(c, err, p)
		}
		c.Locals(profileKey, p)
		return c.Next()
	}
}

func sessionOf(c *fiber.Ctx) *model.Session {
	s, _ := c.Locals(sessionKey).(*model.Session)
	return s
}

// identity of the caller; only valid behind Authenticated or RequireRole.
func identity(c *fiber.Ctx) string {
	if s := sessionOf(c); s != nil {
		return s.Identity
	}
	return ""
}

func setAuthCookie(c *fiber.Ctx, token string) {
	cookie := &fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Now().Add(tokenTTL),
	}

	c.Cookie(cookie)
}

func clearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:    tokenCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
	})
}
