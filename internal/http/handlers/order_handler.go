package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "lootmarket/internal/log"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"
)

type OrderHandler struct {
	Cart          *services.CartService
	Order         *services.OrderService
	SecureCookies bool
}

// GET /checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	ct := currentCart(c, h.Cart, h.SecureCookies)
	if ct.IsEmpty() {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Lines": ct.Lines(), "Total": ct.Total(), "Err": ""})
}

// POST /checkout
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Redirect("/login?next=/checkout")
	}
	ct := currentCart(c, h.Cart, h.SecureCookies)

	r, err := h.Order.Place(u.ID, ct)
	if err != nil {
		if errors.Is(err, services.ErrCartEmpty) {
			return c.Redirect("/cart")
		}
		if errors.Is(err, services.ErrInsufficientStock) || errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "order.place.fail", map[string]any{"error": err.Error()})
			return render(c.Status(fiber.StatusBadRequest), "checkout", fiber.Map{
				"Lines": ct.Lines(), "Total": ct.Total(),
				"Err": "Could not place order. Please review quantities and try again.",
			})
		}
		applog.Error(c, "order.place.fail", err, nil)
		return err
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id":     r.OrderID,
		"server_total": r.ServerTotal.StringFixed(2),
		"client_total": r.ClientTotal.StringFixed(2),
		"mismatch":     r.Mismatch(),
	})
	return c.Redirect("/checkout/success/" + r.OrderID)
}

// GET /checkout/success/:id
func (h *OrderHandler) Success(c *fiber.Ctx) error {
	return h.show(c, "checkout_success")
}

// GET /orders/:id
func (h *OrderHandler) View(c *fiber.Ctx) error {
	return h.show(c, "order")
}

func (h *OrderHandler) show(c *fiber.Ctx, tmpl string) error {
	u := currentUser(c)
	oid, ok := validate.ID(c.Params("id"))
	if !ok || u == nil {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	o, err := h.Order.ForUser(oid, u.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "access.denied.order", map[string]any{"order_id": oid})
		} else {
			applog.Error(c, "order.load.fail", err, map[string]any{"order_id": oid})
		}
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	return render(c, tmpl, fiber.Map{"Order": o})
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return notFound(c, fiber.StatusNotFound, "Orders not available")
	}
	orders, err := h.Order.History(u.ID)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	return render(c, "order_history", fiber.Map{"Orders": orders})
}
