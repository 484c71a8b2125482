package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"storefront/internal/http/handlers"
)

// Friendly error surface, no internal leakage
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine, ViewsLayout: "layout", ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())

	// Route that triggers an internal error
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusGone, "This listing was withdrawn")
	})

	var body string
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
		if err != nil {
			t.Fatalf("test request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
	})
	if !strings.Contains(body, "Something went wrong") {
		t.Fatalf("friendly message missing; body=%s", body)
	}
	if strings.Contains(body, "db timeout") || strings.Contains(body, "secret") {
		t.Fatalf("internal details leaked to user; body=%s", body)
	}
	if _, ok := findLog(entries, "server.error"); !ok {
		t.Fatal("server.error not logged")
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/gone", nil))
	if resp.StatusCode != fiber.StatusGone || !strings.Contains(bodyOf(resp), "withdrawn") {
		t.Fatalf("4xx message should reach the user, got %d", resp.StatusCode)
	}
}
