package handlers

import (
	"errors"
	"net/url"

	"lootmarket/internal/domain"
	applog "lootmarket/internal/log"
	"lootmarket/internal/repos"
	"lootmarket/internal/services"
	"lootmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Admin    *services.AdminService
	Inv      *services.InventoryService
	Banners  *repos.BannerRepo
	MediaDir string
	PageSize int
}

func (h *AdminHandler) page(c *fiber.Ctx) repos.Page {
	return repos.NewPage(validate.Page(c.Query("page")), h.PageSize, 20)
}

func actorID(c *fiber.Ctx) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	st, err := h.Admin.Dashboard()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load dashboard")
	}
	return render(c, "admin_dashboard", fiber.Map{"Stats": st, "Statuses": domain.OrderStatuses})
}

// GET /admin/orders
func (h *AdminHandler) OrdersPage(c *fiber.Ctx) error {
	f := repos.OrderFilter{Query: c.Query("q")}
	if s := c.Query("status"); s != "" {
		status, ok := validate.Status(s)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "status"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid status")
		}
		f.Status = status
	}
	if f.Query != "" {
		q, ok := validate.Q(f.Query)
		if !ok && !isEmailish(f.Query) {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).SendString("invalid search")
		}
		if ok {
			f.Query = q
		}
	}
	ords, err := h.Admin.Orders.List(f, h.page(c))
	if err != nil {
		applog.Error(c, "admin.orders.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load orders")
	}
	return render(c, "admin_orders", fiber.Map{"Page": ords, "Filter": f, "Statuses": domain.OrderStatuses})
}

func isEmailish(s string) bool {
	_, ok := validate.Email(s)
	return ok
}

// GET /admin/orders/:id
func (h *AdminHandler) OrderDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	o, err := h.Admin.Orders.Get(id)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Order not found")
	}
	return render(c, "admin_order", fiber.Map{"Order": o, "Statuses": domain.OrderStatuses})
}

// POST /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	status, okStatus := validate.Status(c.FormValue("status"))
	if !ok || !okStatus {
		applog.Security(c, "validation.fail", map[string]any{"field": "order.status"})
		return c.Status(400).SendString("missing id or status")
	}
	if err := h.Admin.UpdateOrderStatus(id, status); err != nil {
		applog.Error(c, "admin.orders.update.fail", err, map[string]any{"order_id": id})
		if errors.Is(err, services.ErrNotFound) {
			return notFound(c, fiber.StatusNotFound, "Order not found")
		}
		return c.Status(400).SendString("could not update status")
	}
	applog.Audit(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.Redirect("/admin/orders/" + id)
}

// GET /admin/users
func (h *AdminHandler) UsersPage(c *fiber.Ctx) error {
	users, err := h.Admin.Users.List(h.page(c))
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load users")
	}
	return render(c, "admin_users", fiber.Map{"Page": users, "Err": c.Query("err")})
}

func (h *AdminHandler) usersError(c *fiber.Ctx, msg string) error {
	return c.Redirect("/admin/users?err=" + url.QueryEscape(msg))
}

// POST /admin/users
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	name, okName := validate.Name(c.FormValue("name"))
	email, okEmail := validate.Email(c.FormValue("email"))
	role, okRole := validate.Role(c.FormValue("role"))
	pass := c.FormValue("password")
	if !okName || !okEmail || !okRole || !validate.Password(pass) {
		applog.Security(c, "validation.fail", map[string]any{"form": "admin.users.create"})
		return h.usersError(c, "Check name, email, role and password strength")
	}
	u, err := h.Admin.CreateUser(name, email, pass, role)
	if errors.Is(err, services.ErrEmailTaken) {
		return h.usersError(c, "That email is already registered")
	}
	if err != nil {
		applog.Error(c, "admin.users.create.fail", err, nil)
		return err
	}
	applog.Audit(c, "admin.users.create", map[string]any{"user_id": u.ID, "role": role})
	return c.Redirect("/admin/users")
}

// POST /admin/users/:id/role
func (h *AdminHandler) SetUserRole(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	role, okRole := validate.Role(c.FormValue("role"))
	if !ok || !okRole {
		applog.Security(c, "validation.fail", map[string]any{"field": "role"})
		return c.Status(400).SendString("invalid input")
	}
	if err := h.Admin.SetRole(actorID(c), id, role); err != nil {
		applog.Security(c, "admin.users.role.refused", map[string]any{"user_id": id, "error": err.Error()})
		return h.usersError(c, userErrMessage(err))
	}
	applog.Audit(c, "admin.users.role", map[string]any{"user_id": id, "role": role})
	return c.Redirect("/admin/users")
}

// DeleteUser deletes a user with their sessions; their orders are kept.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("missing id")
	}
	if err := h.Admin.DeleteUser(actorID(c), id); err != nil {
		applog.Error(c, "admin.users.delete.fail", err, map[string]any{"user_id": id})
		return h.usersError(c, userErrMessage(err))
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"user_id": id})
	return c.Redirect("/admin/users")
}

func userErrMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrLastAdmin):
		return "At least one admin must remain"
	case errors.Is(err, services.ErrSelfChange):
		return "You cannot change or delete your own account"
	case errors.Is(err, services.ErrNotFound):
		return "User not found"
	}
	return "Could not update user"
}
