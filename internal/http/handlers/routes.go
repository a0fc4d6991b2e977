package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "lootmarket/internal/log"
)

// Register mounts the storefront, the JSON API and the admin area on app. Session,
// CSRF and static middleware are the caller's.
func Register(app *fiber.App, d *Deps) {
	secure := d.AuthHandler.SecureCookies
	app.Use(WithCart(d.Carts, secure))

	// Public pages
	app.Get("/", d.CatalogHandler.Home)
	app.Get("/search", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.search.hit", nil)
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
	}), d.SearchHandler.Search)
	app.Get("/category/:slug", d.CatalogHandler.Category)
	app.Get("/item/:slug", d.CatalogHandler.Item)
	app.Get("/blog", d.BlogHandler.List)
	app.Get("/blog/:slug", d.BlogHandler.Post)

	// API
	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|api"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	api.Get("/cart", d.CartHandler.API)
	api.Get("/availability", d.InventoryHandler.Check)

	// Cart & orders
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/update", d.CartHandler.Update)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)

	requireUser := RequireUser(d.Auth)
	app.Get("/checkout", requireUser, d.OrderHandler.Checkout)
	app.Post("/checkout", requireUser, d.OrderHandler.Place)
	app.Get("/checkout/success/:id", requireUser, d.OrderHandler.Success)
	app.Get("/orders", requireUser, d.OrderHandler.History)
	app.Get("/orders/:id", requireUser, d.OrderHandler.View)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return render(c.Status(fiber.StatusTooManyRequests), "login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)
	app.Get("/signup", d.AuthHandler.SignupForm)
	app.Post("/signup", d.AuthHandler.Signup)

	// Admin
	a := d.AdminHandler
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/", a.Dashboard)

	admin.Get("/items", a.Items)
	admin.Get("/items/new", a.ItemForm)
	admin.Post("/items", a.CreateItem)
	admin.Get("/items/:id/edit", a.ItemForm)
	admin.Post("/items/:id/stock", a.Restock)
	admin.Post("/items/:id/delete", a.DeleteItem)
	admin.Post("/items/:id", a.UpdateItem)

	admin.Get("/categories", a.Categories)
	admin.Post("/categories", a.CreateCategory)
	admin.Post("/categories/:id/delete", a.DeleteCategory)
	admin.Post("/categories/:id", a.UpdateCategory)

	admin.Get("/orders", a.OrdersPage)
	admin.Get("/orders/:id", a.OrderDetail)
	admin.Post("/orders/:id/status", a.UpdateOrderStatus)

	admin.Get("/users", a.UsersPage)
	admin.Post("/users", a.CreateUser)
	admin.Post("/users/:id/role", a.SetUserRole)
	admin.Post("/users/:id/delete", a.DeleteUser)

	// blog categories before /blog/:id so "categories" is not taken for an id
	admin.Get("/blog/categories", a.BlogCategories)
	admin.Post("/blog/categories", a.CreateBlogCategory)
	admin.Post("/blog/categories/:id/delete", a.DeleteBlogCategory)
	admin.Post("/blog/categories/:id", a.UpdateBlogCategory)
	admin.Get("/blog", a.Posts)
	admin.Get("/blog/new", a.PostForm)
	admin.Post("/blog", a.CreatePost)
	admin.Get("/blog/:id/edit", a.PostForm)
	admin.Post("/blog/:id/delete", a.DeletePost)
	admin.Post("/blog/:id", a.UpdatePost)

	admin.Get("/banners", a.BannersPage)
	admin.Post("/banners", a.CreateBanner)
	admin.Post("/banners/:id/activate", a.ActivateBanner)
	admin.Post("/banners/:id/delete", a.DeleteBanner)
}
