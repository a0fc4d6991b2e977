package handlers

import (
	"errors"
	"net/url"

	"lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart          *services.CartService
	SecureCookies bool
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	ct := currentCart(c, h.Cart, h.SecureCookies)
	return render(c, "cart", fiber.Map{"Lines": ct.Lines(), "Total": ct.Total(), "Count": ct.ItemCount()})
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.FormValue("item_id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "item_id"})
		return c.Status(fiber.StatusBadRequest).SendString("missing item")
	}
	qty, ok := validate.Qty(c.FormValue("qty"))
	if !ok || qty < 1 {
		log.Security(c, "validation.fail", map[string]any{"field": "qty"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid quantity")
	}

	ct := currentCart(c, h.Cart, h.SecureCookies)
	it, err := h.Cart.Add(ct, itemID, qty)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	case errors.Is(err, services.ErrInsufficientStock):
		log.Info(c, "cart.add.stock", map[string]any{"item_id": itemID, "qty": qty})
		return c.Redirect("/item/" + it.Slug + "?err=" + url.QueryEscape("Not enough stock for that quantity"))
	case err != nil:
		log.Error(c, "cart.add.fail", err, map[string]any{"item_id": itemID})
		return err
	}
	log.Info(c, "cart.add", map[string]any{"item_id": itemID, "qty": qty})
	return c.Redirect("/cart")
}

// POST /cart/update
func (h *CartHandler) Update(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.FormValue("item_id"))
	qty, okQty := validate.Qty(c.FormValue("qty"))
	if !ok || !okQty {
		log.Security(c, "validation.fail", map[string]any{"field": "cart.update"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid input")
	}
	applied := h.Cart.Update(currentCart(c, h.Cart, h.SecureCookies), itemID, qty)
	log.Info(c, "cart.update", map[string]any{"item_id": itemID, "qty": qty, "applied": applied})
	return c.Redirect("/cart")
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	itemID, ok := validate.ID(c.FormValue("item_id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "item_id"})
		return c.Status(fiber.StatusBadRequest).SendString("missing item")
	}
	currentCart(c, h.Cart, h.SecureCookies).Remove(itemID)
	log.Info(c, "cart.remove", map[string]any{"item_id": itemID})
	return c.Redirect("/cart")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	currentCart(c, h.Cart, h.SecureCookies).Clear()
	log.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

type cartLineJSON struct {
	ItemID   string `json:"item_id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// GET /api/v1/cart
func (h *CartHandler) API(c *fiber.Ctx) error {
	ct := currentCart(c, h.Cart, h.SecureCookies)
	lines := make([]cartLineJSON, 0, len(ct.Lines()))
	for _, l := range ct.Lines() {
		lines = append(lines, cartLineJSON{
			ItemID:   l.Product.ID,
			Slug:     l.Product.Slug,
			Name:     l.Product.Name,
			Price:    l.Product.Price.StringFixed(2),
			Quantity: l.Quantity,
			Subtotal: l.Subtotal().StringFixed(2),
		})
	}
	return c.JSON(fiber.Map{"lines": lines, "total": ct.Total().StringFixed(2), "count": ct.ItemCount()})
}
