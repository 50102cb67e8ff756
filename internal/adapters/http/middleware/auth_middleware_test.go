package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eloan-must/internal/config"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "mw-secret", AccessTokenMins: 5}}
}

func token(t *testing.T, secret string, mins int, roles ...string) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(jwt.Identity{UserID: 3, Username: "rina", Roles: roles}, secret, mins)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok
}

func newApp(cfg *config.Config, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/private", AuthMiddleware(cfg), guard, func(c *fiber.Ctx) error {
		roles := c.Locals("roles").([]domain.Role)
		return c.SendString(c.Locals("username").(string) + ":" + string(roles[0]))
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testConfig()
	pass := func(c *fiber.Ctx) error { return c.Next() }

	tests := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + token(t, "mw-secret", 5, "ROLE_MARKETING"), "", http.StatusOK},
		{"cookie", "", token(t, "mw-secret", 5, "MARKETING"), http.StatusOK},
		{"wrong secret", "Bearer " + token(t, "other", 5, "MARKETING"), "", http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, "mw-secret", -1, "MARKETING"), "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}
			resp, err := newApp(cfg, pass).Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	cfg := testConfig()
	guard := RequireRoles(domain.RoleBackOffice)

	tests := []struct {
		name string
		role string
		want int
	}{
		{"owner", "BACK_OFFICE", http.StatusOK},
		{"super admin passes every gate", "SUPER_ADMIN", http.StatusOK},
		{"other staff", "MARKETING", http.StatusForbidden},
		{"customer", "CUSTOMER", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, "mw-secret", 5, tt.role))
			resp, _ := newApp(cfg, guard).Test(req)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestPublicCache(t *testing.T) {
	app := fiber.New()
	app.Get("/p", PublicCache(90*time.Second), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/p", nil))
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=90" {
		t.Errorf("Cache-Control = %q", got)
	}
}
