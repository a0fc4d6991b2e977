package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lootmarket/internal/services"
	"lootmarket/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

// GET /api/v1/availability?item=
func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	itemID := strings.TrimSpace(c.Query("item"))
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing item",
		})
	}
	if _, ok := validate.ID(itemID); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid item",
		})
	}

	avail, err := h.Inv.Check(itemID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown item"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not check availability",
		})
	}
	return c.JSON(avail)
}
