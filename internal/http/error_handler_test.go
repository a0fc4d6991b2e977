package handlers_test

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"lootmarket/internal/http/handlers"
	"lootmarket/web"
)

// Internal errors surface as a friendly page; the detail only goes to the log.
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{Views: web.NewEngine(""), ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return errors.New("db timeout: secret trace")
	})
	app.Get("/busy", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pool exhausted")
	})

	cases := []struct {
		path, leak string
		status     int
	}{
		{"/err", "secret trace", fiber.StatusInternalServerError},
		{"/busy", "pool exhausted", fiber.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		var body string
		var status int
		entries := captureLogs(t, func() {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			if err != nil {
				t.Fatalf("%s: %v", tc.path, err)
			}
			status = resp.StatusCode
			body = readBody(t, resp)
		})
		if status != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, status)
		}
		if !strings.Contains(body, "Something went wrong") {
			t.Fatalf("%s: friendly message missing; body=%s", tc.path, body)
		}
		if strings.Contains(body, tc.leak) {
			t.Fatalf("%s: internal details leaked to user; body=%s", tc.path, body)
		}
		if e, ok := findLog(entries, "server.error"); !ok || e.Level != "error" {
			t.Fatalf("%s: server.error not logged: %+v", tc.path, entries)
		}
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)

	for _, path := range []string{"/nope", "/item/no-such-item", "/category/no-such-category", "/blog/no-such-post"} {
		resp := b.get(t, path)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestMediaServesUploadsOnly(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)
	if err := os.MkdirAll(filepath.Join(ta.media, "items"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ta.media, "items", "axe.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := b.get(t, "/media/items/axe.png")
	if resp.StatusCode != fiber.StatusOK || readBody(t, resp) != "png-bytes" {
		t.Fatalf("upload not served: %d", resp.StatusCode)
	}
	for _, path := range []string{"/media/..%2f..%2fetc%2fpasswd", "/media/%2e%2e/secret", "/media/items/missing.png"} {
		if resp := b.get(t, path); resp.StatusCode != fiber.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}
