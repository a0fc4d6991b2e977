package handlers

import (
	"net/url"

	applog "lootmarket/internal/log"
	"lootmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

func RequireAdmin(auth services.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", map[string]any{"sid": sid})
			return notFound(c, fiber.StatusForbidden, "Access denied")
		}
		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth services.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sidCookie)
		if sid == "" {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}
