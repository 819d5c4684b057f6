package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = RequestIDFrom(c)
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	echoed := resp.Header.Get("X-Request-ID")
	if echoed == "" {
		t.Fatal("no request id on response")
	}
	if seen != echoed {
		t.Fatalf("handler saw %q, response carries %q", seen, echoed)
	}
}

func TestRequestIDHonorsClientSuppliedID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	var seen string
	app.Get("/", func(c *fiber.Ctx) error {
		seen = RequestIDFrom(c)
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "mobile-7f3a")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("X-Request-ID"); got != "mobile-7f3a" {
		t.Fatalf("expected client id echoed, got %q", got)
	}
	if seen != "mobile-7f3a" {
		t.Fatalf("handler saw %q", seen)
	}
}
