package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lootmarket/internal/cart"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Inject user if present
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if ct, ok := c.Locals("cart").(*cart.Cart); ok {
		data["CartCount"] = ct.ItemCount()
	}
	if _, set := data["CSRFToken"]; !set {
		data["CSRFToken"] = csrfToken(c)
	}
	return c.Render(tmpl, data)
}

// csrfToken is the token the CSRF middleware put into Locals, or the cookie when a
// handler runs outside the middleware chain.
func csrfToken(c *fiber.Ctx) string {
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		return tok
	}
	return c.Cookies("csrf_")
}

// notFound renders the shared message page with status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return render(c.Status(status), "notfound", fiber.Map{"Message": msg})
}
