package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func TestAuthRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", AuthRateLimiter(2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, code := range want {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != code {
			t.Errorf("request %d: status = %d, want %d", i, resp.StatusCode, code)
		}
	}
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "no coffee")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/teapot", fiber.StatusTeapot, "no coffee"},
		{"/boom", fiber.StatusInternalServerError, "Terjadi kesalahan pada server"},
		{"/missing", fiber.StatusNotFound, "Cannot GET /missing"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.code || body.Success || body.Message != tt.message {
				t.Errorf("status = %d body = %+v", resp.StatusCode, body)
			}
		})
	}
}

func TestCacheHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/public", PublicCache(time.Minute), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/private", PrivateCache(30*time.Second), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/failed", PublicCache(time.Minute), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/nocache", NoCacheHeaders(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	tests := []struct {
		path  string
		cache string
		vary  string
	}{
		{"/public", "public, max-age=60", ""},
		{"/private", "private, max-age=30", "Authorization"},
		{"/failed", "", ""},
		{"/nocache", "no-store, no-cache, must-revalidate", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if got := resp.Header.Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
			if got := resp.Header.Get("Vary"); got != tt.vary {
				t.Errorf("Vary = %q, want %q", got, tt.vary)
			}
		})
	}
}
