package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"lootmarket/internal/repos"
)

// Seeded passwords are stored as bcrypt hashes, never plaintext.
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)

	login := func(pass string) *http.Response {
		return b.post(t, "/login", url.Values{"email": {"alice@lootmarket.test"}, "password": {pass}})
	}

	if resp := login("Wrongpass1!"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	resp := login("Passw0rd!")
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	u, err := ta.users.SessionUser(b.sid)
	if err != nil || u.Email != "alice@lootmarket.test" {
		t.Fatalf("session not bound to alice: %+v %v", u, err)
	}

	// five attempts per window; two used above
	for i := 0; i < 3; i++ {
		if resp := login("Wrongpass1!"); resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("throttled too early at attempt %d", i+3)
		}
	}
	if resp := login("Wrongpass1!"); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
}

func TestLoginRedirectsToSafeNext(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)

	resp := b.post(t, "/login", url.Values{"email": {"bob@lootmarket.test"}, "password": {"Passw0rd!"}, "next": {"/orders"}})
	if loc := resp.Header.Get("Location"); loc != "/orders" {
		t.Fatalf("expected redirect to /orders, got %q", loc)
	}

	b2 := ta.newBrowser(t)
	resp = b2.post(t, "/login", url.Values{"email": {"bob@lootmarket.test"}, "password": {"Passw0rd!"}, "next": {"//evil.example"}})
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("open redirect not blocked, got %q", loc)
	}
}

func TestSignupLogsInAndRejectsDuplicates(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)

	form := url.Values{
		"name":     {"Carol"},
		"email":    {"Carol@Lootmarket.test"},
		"password": {"S3cure!pass"},
		"confirm":  {"S3cure!pass"},
	}
	resp := b.post(t, "/signup", form)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect after signup, got %d body=%s", resp.StatusCode, readBody(t, resp))
	}
	u, err := ta.users.SessionUser(b.sid)
	if err != nil {
		t.Fatalf("signup did not log in: %v", err)
	}
	if u.Email != "carol@lootmarket.test" || u.Role != "user" {
		t.Fatalf("unexpected user %+v", u)
	}

	b2 := ta.newBrowser(t)
	resp = b2.post(t, "/signup", form)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for taken email, got %d", resp.StatusCode)
	}

	weak := url.Values{"name": {"Dan"}, "email": {"dan@lootmarket.test"}, "password": {"weak"}, "confirm": {"weak"}}
	if resp := b2.post(t, "/signup", weak); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for weak password, got %d", resp.StatusCode)
	}
}

func TestLogoutUnbindsSession(t *testing.T) {
	ta := newTestApp(t)
	b := ta.newBrowser(t)
	b.loginAs(t, "u-bob")
	addToCart(t, b, "itm-gold-1000", "2")

	countRows := func() int {
		var n int
		if err := ta.db.Get(&n, `SELECT COUNT(*) FROM session_storage WHERE session_id = ?`, b.sid); err != nil {
			t.Fatal(err)
		}
		return n
	}
	if countRows() == 0 {
		t.Fatal("cart was not saved before logout")
	}

	resp := b.post(t, "/logout", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on logout, got %d", resp.StatusCode)
	}
	if _, err := ta.users.SessionUser(b.sid); err == nil {
		t.Fatal("session still bound after logout")
	}
	if n := countRows(); n != 0 {
		t.Fatalf("session storage rows left for logged-out session: %d", n)
	}
}
