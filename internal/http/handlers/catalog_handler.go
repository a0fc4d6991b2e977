package handlers

import (
	"encoding/json"
	"errors"

	"lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	v, err := h.Catalog.Home()
	if err != nil {
		log.Error(c, "home.load.fail", err, nil)
		return err
	}
	return render(c, "home", fiber.Map{"Banner": v.Banner, "Categories": v.Categories, "Latest": v.Latest})
}

// GET /category/:slug
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	cat, page, err := h.Catalog.Category(slug, validate.Page(c.Query("page")))
	if errors.Is(err, services.ErrNotFound) {
		return notFound(c, fiber.StatusNotFound, "Category not found")
	}
	if err != nil {
		log.Error(c, "category.load.fail", err, map[string]any{"slug": slug})
		return err
	}
	return render(c, "category", fiber.Map{"Category": cat, "Page": page})
}

// GET /item/:slug
func (h *CatalogHandler) Item(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "item"})
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	it, err := h.Catalog.Item(slug)
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			log.Error(c, "item.load.fail", err, map[string]any{"slug": slug})
		}
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	var stats map[string]any
	_ = json.Unmarshal([]byte(it.StatsJSON), &stats)

	maxQty := it.Stock
	if ct := currentCartOrNil(c); ct != nil {
		if l, ok := ct.Line(it.ID); ok {
			maxQty -= l.Quantity
		}
	}
	if maxQty > validate.MaxQty {
		maxQty = validate.MaxQty
	}
	return render(c, "item", fiber.Map{
		"Item":         it,
		"Stats":        stats,
		"Availability": services.Availability(it.Stock),
		"MaxQty":       maxQty,
		"Err":          c.Query("err"),
	})
}
