package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lootmarket/internal/cart"
	"lootmarket/internal/domain"
	applog "lootmarket/internal/log"
	"lootmarket/internal/services"
)

const sidCookie = "sid"

func sidCookieFor(value string, secure bool, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     sidCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   secure,
		Expires:  expires,
	}
}

// ensureSID returns the session id of the request, issuing a cookie when there is none.
func ensureSID(c *fiber.Ctx, secure bool) string {
	if sid, _ := c.Locals("sid").(string); sid != "" {
		return sid
	}
	sid := c.Cookies(sidCookie)
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(sidCookieFor(sid, secure, time.Time{}))
	}
	c.Locals("sid", sid)
	return sid
}

func skipAssets(c *fiber.Ctx) bool {
	p := c.Path()
	return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/") || p == "/healthz"
}

// Session gives every page request a session id and attaches the logged-in user, if any,
// for templates, guards and the access log.
func Session(id services.Identity, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAssets(c) {
			return c.Next()
		}
		sid := ensureSID(c, secure)
		if u, err := id.CurrentUser(sid); err == nil && u != nil {
			c.Locals("user", u)
			c.Locals("user_id", u.ID)
		}
		return c.Next()
	}
}

// WithCart opens the session's cart for the request. Storage failures are logged
// against the request and never fail it.
func WithCart(carts *services.CartService, secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAssets(c) {
			return c.Next()
		}
		sid := ensureSID(c, secure)
		ct := carts.Open(sid, cart.WithFailureLog(func(action string, err error) {
			applog.Warn(c, action, err, nil)
		}))
		c.Locals("cart", ct)
		return c.Next()
	}
}

// currentCart falls back to opening the cart when WithCart is not mounted.
func currentCart(c *fiber.Ctx, carts *services.CartService, secure bool) *cart.Cart {
	if ct, ok := c.Locals("cart").(*cart.Cart); ok {
		return ct
	}
	ct := carts.Open(ensureSID(c, secure), cart.WithFailureLog(func(action string, err error) {
		applog.Warn(c, action, err, nil)
	}))
	c.Locals("cart", ct)
	return ct
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func currentCartOrNil(c *fiber.Ctx) *cart.Cart {
	ct, _ := c.Locals("cart").(*cart.Cart)
	return ct
}
