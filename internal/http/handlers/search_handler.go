package handlers

import (
	"strings"

	"lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	if strings.TrimSpace(rawQ) == "" {
		// Initial page load: show empty search without errors
		return render(c, "search", fiber.Map{"Q": ""})
	}
	q, ok := validate.Q(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
		return render(c.Status(fiber.StatusBadRequest), "search", fiber.Map{
			"Q": "", "Err": "Enter a valid keyword (letters/numbers only)",
		})
	}

	page, err := h.Catalog.Search(q, validate.Page(c.Query("page")))
	if err != nil {
		log.Error(c, "search.error", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load results. Please retry.")
	}
	return render(c, "search", fiber.Map{"Q": q, "Page": page})
}
