package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/backend/backendtest"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/pricing"
	"storefront/internal/repos"
)

type testApp struct {
	*fiber.App
	api  *backendtest.Server
	deps *handlers.Deps
}

func testConfig(api *backendtest.Server) config.Config {
	return config.Config{
		DBDSN:           ":memory:",
		BackendURL:      api.URL,
		BackendTimeout:  2 * time.Second,
		JWTSecret:       backendtest.Secret,
		CartKeyPrefix:   cart.DefaultPrefix,
		CartSnapshotTTL: 24 * time.Hour,
		CartIdleTTL:     time.Hour,
		PlatformFeeRate: "0.10",
		TaxRate:         "0.11",
	}
}

// newApp builds the storefront against a fake backend. middleware runs
// before the storefront routes, loginGuards in front of POST /login.
func newApp(t *testing.T, middleware []fiber.Handler, loginGuards ...fiber.Handler) *testApp {
	t.Helper()
	return buildApp(t, true, middleware, loginGuards...)
}

func buildApp(t *testing.T, immutable bool, middleware []fiber.Handler, loginGuards ...fiber.Handler) *testApp {
	t.Helper()
	api := backendtest.New(t)
	cfg := testConfig(api)
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	deps, err := handlers.NewDeps(db, cfg, repos.NewSnapshotRepo(db, cfg.CartSnapshotTTL))
	if err != nil {
		t.Fatalf("deps: %v", err)
	}

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{
		Immutable:    immutable,
		Views:        engine,
		ViewsLayout:  "layout",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB
	app.Use(requestid.New())
	for _, m := range middleware {
		app.Use(m)
	}
	deps.Mount(app, loginGuards...)
	return &testApp{App: app, api: api, deps: deps}
}

// bind signs sid in as acc without going through the login form.
func (a *testApp) bind(t *testing.T, sid string, acc backendtest.Account) {
	t.Helper()
	u := domain.User{ID: acc.ID, Email: acc.Email, Name: acc.Name, Role: acc.Role, Token: backendtest.Token(acc)}
	if err := a.deps.Auth.Sessions.Bind(sid, u); err != nil {
		t.Fatalf("bind %s: %v", sid, err)
	}
}

func account(id string) backendtest.Account {
	for _, a := range backendtest.DefaultAccounts {
		if a.ID == id {
			return a
		}
	}
	panic("no account " + id)
}

// browser keeps cookies between requests like a real one would.
type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]string
}

func newBrowser(t *testing.T, app *testApp) *browser {
	return &browser{t: t, app: app, cookies: map[string]string{}}
}

func (b *browser) do(method, path string, form url.Values) *http.Response {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	for _, c := range resp.Cookies() {
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response { return b.do("GET", path, nil) }

func (b *browser) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	if tok := b.cookies["csrf_"]; tok != "" {
		form.Set("csrf", tok)
	}
	return b.do("POST", path, form)
}

func (b *browser) login(email string) {
	b.t.Helper()
	resp := b.post("/login", url.Values{"email": {email}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

type cartJSON struct {
	UserID  *string         `json:"userId"`
	Lines   []cart.Line     `json:"lines"`
	Totals  cart.Totals     `json:"totals"`
	Preview pricing.Preview `json:"preview"`
}

func (b *browser) cart() cartJSON {
	b.t.Helper()
	resp := b.get("/api/v1/cart")
	if resp.StatusCode != http.StatusOK {
		b.t.Fatalf("cart api: status %d", resp.StatusCode)
	}
	var out cartJSON
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		b.t.Fatalf("decode cart: %v", err)
	}
	return out
}

func bodyOf(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

type logEntry struct {
	Action string                 `json:"action"`
	Level  string                 `json:"level"`
	Fields map[string]interface{} `json:"fields"`
}

type lockedBuf struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf lockedBuf
	applog.SetOutput(&buf)
	defer applog.SetOutput(os.Stdout)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
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
