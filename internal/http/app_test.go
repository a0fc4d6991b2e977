package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"lootmarket/internal/config"
	"lootmarket/internal/http/handlers"
	"lootmarket/internal/repos"
	"lootmarket/internal/services"
	"lootmarket/web"
)

const testBodyLimit = 8 << 20

type testApp struct {
	app   *fiber.App
	db    *sqlx.DB
	users *repos.UserRepo
	media string
}

// newTestApp wires the same middleware chain and routes as cmd/lootmarket on an
// in-memory database, with the global limiter raised out of the way.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.Defaults()
	cfg.MediaDir = t.TempDir()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	app := fiber.New(fiber.Config{
		Views:        web.NewEngine(""),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = testBodyLimit
	app.Use(requestid.New())
	app.Use(limiter.New(limiter.Config{Max: 1000, Expiration: time.Minute}))
	app.Use(handlers.Session(authSvc, false))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ContextKey:     "csrf",
		ErrorHandler:   handlers.CSRFError,
	}))
	app.Use(handlers.ExposeCSRFToken)
	app.Get("/media/*", handlers.Media(cfg.MediaDir))
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	handlers.Register(app, handlers.NewDeps(db, cfg, authSvc))
	app.Use(handlers.NotFoundPage)
	return &testApp{app: app, db: db, users: userRepo, media: cfg.MediaDir}
}

// browser carries the sid and csrf cookies between requests like a real client would.
type browser struct {
	ta   *testApp
	sid  string
	csrf string
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// newBrowser opens /login once to pick up a session id and a CSRF token.
func (ta *testApp) newBrowser(t *testing.T) *browser {
	t.Helper()
	resp, err := ta.app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	b := &browser{ta: ta, sid: extractCookie(resp, "sid"), csrf: extractCookie(resp, "csrf_")}
	if b.sid == "" || b.csrf == "" {
		t.Fatalf("expected sid and csrf cookies, got sid=%q csrf=%q", b.sid, b.csrf)
	}
	return b
}

// loginAs binds the browser's session to a seeded user without going through the form.
func (b *browser) loginAs(t *testing.T, userID string) {
	t.Helper()
	if err := b.ta.users.BindSession(b.sid, userID); err != nil {
		t.Fatalf("bind session: %v", err)
	}
}

func (b *browser) send(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: b.sid})
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: b.csrf})
	resp, err := b.ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func (b *browser) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return b.send(t, httptest.NewRequest("GET", path, nil))
}

// post submits form with the browser's CSRF token added.
func (b *browser) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", b.csrf)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(t, req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
