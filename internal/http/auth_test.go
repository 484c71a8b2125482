package handlers_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func csrfMiddleware() fiber.Handler {
	return csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"})
}

// Login success/fail paths and throttling.
func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app := newApp(t, []fiber.Handler{csrfMiddleware()},
		limiter.New(limiter.Config{Max: 2, Expiration: time.Minute}))
	b := newBrowser(t, app)

	// fetch csrf token
	b.get("/login")
	if b.cookies["csrf_"] == "" {
		t.Fatal("csrf token missing")
	}

	// bad password -> 401
	resp := b.post("/login", url.Values{"email": {"alice@example.test"}, "password": {"Wrongpass1!"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	// good password -> redirect
	resp = b.post("/login", url.Values{"email": {"alice@example.test"}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}

	// throttle after 2 attempts
	resp = b.post("/login", url.Values{"email": {"alice@example.test"}, "password": {"Wrongpass1!"}})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", resp.StatusCode)
	}
}

func TestLoginWithoutCSRFTokenIsRejected(t *testing.T) {
	app := newApp(t, []fiber.Handler{csrfMiddleware()})
	b := newBrowser(t, app)
	resp := b.do("POST", "/login", url.Values{"email": {"alice@example.test"}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
	}
}

func TestLoginRedirectsByRole(t *testing.T) {
	app := newApp(t, nil)
	cases := map[string]string{
		"alice@example.test": "/",
		"sam@example.test":   "/seller",
		"admin@example.test": "/admin",
	}
	for email, want := range cases {
		b := newBrowser(t, app)
		resp := b.post("/login", url.Values{"email": {email}, "password": {"Passw0rd!"}})
		if got := resp.Header.Get("Location"); got != want {
			t.Errorf("%s: redirected to %q, want %q", email, got, want)
		}
	}
}

func TestLogoutKeepsBrowserSession(t *testing.T) {
	app := newApp(t, nil)
	b := newBrowser(t, app)
	b.get("/")
	sid := b.cookies["sid"]
	if sid == "" {
		t.Fatal("sid cookie not issued")
	}
	b.login("alice@example.test")
	b.post("/logout", nil)
	if b.cookies["sid"] != sid {
		t.Fatalf("sid changed across sign-in/out: %q -> %q", sid, b.cookies["sid"])
	}
	if u, _ := app.deps.Auth.CurrentUser(sid); u != nil {
		t.Fatalf("session still signed in as %s", u.ID)
	}
}

// Login attempts are logged with their outcome.
func TestAuthLogs(t *testing.T) {
	app := newApp(t, nil)
	b := newBrowser(t, app)
	entries := captureLogs(t, func() {
		b.post("/login", url.Values{"email": {"alice@example.test"}, "password": {"Wrongpass1!"}})
		b.post("/login", url.Values{"email": {"not-an-email"}, "password": {"Passw0rd!"}})
		b.login("alice@example.test")
		b.post("/logout", nil)
	})
	fail := 0
	for _, e := range entries {
		if e.Action == "auth.login.fail" {
			fail++
		}
	}
	if fail != 2 {
		t.Fatalf("want 2 auth.login.fail entries, got %d", fail)
	}
	ok, found := findLog(entries, "auth.login.success")
	if !found || ok.Fields["user_id"] != "u-alice" {
		t.Fatalf("auth.login.success missing or wrong: %+v", ok)
	}
	if _, found := findLog(entries, "auth.logout"); !found {
		t.Fatal("auth.logout not logged")
	}
}
