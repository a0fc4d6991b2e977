package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"lootmarket/internal/config"
	"lootmarket/internal/http/handlers"
	"lootmarket/internal/repos"
	"lootmarket/internal/services"
	"lootmarket/web"
)

func main() {
	cfg := config.Load()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] LOG_FILE %s not usable, logging to stdout only: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}

	devDir := ""
	if cfg.Dev {
		devDir = "./web/templates"
	}
	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(devDir),
		ErrorHandler: handlers.ErrorHandler,
	})
	// uploads go up to 5 MiB, leave room for the rest of the form
	app.Server().MaxRequestBodySize = 8 << 20

	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(handlers.Session(authSvc, cfg.SecureCookies))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
		ContextKey:     "csrf",
		ErrorHandler:   handlers.CSRFError,
	}))
	app.Use(handlers.ExposeCSRFToken)

	mediaDir := cfg.MediaDir
	if abs, err := filepath.Abs(mediaDir); err == nil {
		mediaDir = abs
	}
	log.Printf("[static] /static -> embedded web/static, /media -> %s", mediaDir)

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.Static(),
		MaxAge: 3600,
	}))
	app.Get("/media/*", handlers.Media(mediaDir))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	handlers.Register(app, handlers.NewDeps(db, cfg, authSvc))
	app.Use(handlers.NotFoundPage)

	log.Fatal(app.Listen(":" + cfg.Port))
}
