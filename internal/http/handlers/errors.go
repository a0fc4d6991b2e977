package handlers

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "lootmarket/internal/log"
)

const genericFailure = "Something went wrong. Please try again."

// ErrorHandler logs err and renders the message page with the error's status code.
// The error text itself never reaches the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	applog.Error(c, "server.error", err, nil)
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": genericFailure}); rerr != nil {
		return c.Status(code).SendString(genericFailure)
	}
	return nil
}

// CSRFError is the csrf middleware's ErrorHandler.
func CSRFError(c *fiber.Ctx, err error) error {
	applog.Security(c, "csrf.fail", map[string]any{"err": err.Error()})
	return notFound(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
}

// ExposeCSRFToken copies the csrf middleware's token to where the templates read it.
func ExposeCSRFToken(c *fiber.Ctx) error {
	if tok, ok := c.Locals("csrf").(string); ok {
		c.Locals("CSRFToken", tok)
	}
	return c.Next()
}

// NotFoundPage is the catch-all registered after every route.
func NotFoundPage(c *fiber.Ctx) error {
	return notFound(c, fiber.StatusNotFound, "Page not found")
}

// Media serves uploaded files from dir, refusing anything that could leave it.
func Media(dir string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		raw := strings.ToLower(path)
		if strings.Contains(raw, "..") || strings.Contains(raw, "%2e") || strings.Contains(raw, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean), true)
	}
}
