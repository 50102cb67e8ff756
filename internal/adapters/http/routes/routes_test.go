package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"eloan-must/internal/adapters/http/handlers"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

type fakeCatalog struct {
	services.PlafondCatalog
	active bool
}

func (f *fakeCatalog) Active(context.Context) ([]domain.Plafond, error) {
	return []domain.Plafond{{ID: 1, Name: "Silver", Active: f.active}}, nil
}

func (f *fakeCatalog) Detect(context.Context, float64) (domain.PlafondDetection, error) {
	if !f.active {
		return domain.PlafondDetection{Message: "Tidak ada produk"}, nil
	}
	return domain.PlafondDetection{Found: true, Message: "Silver", PlafondID: 1}, nil
}

func TestPlafondRoutes_CacheHeaders(t *testing.T) {
	app := fiber.New()
	denyAll := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusUnauthorized) }
	setupPlafondRoutes(app.Group("/plafonds"), handlers.NewPlafondHandler(&fakeCatalog{active: true}), denyAll)

	tests := []struct {
		path  string
		cache string
	}{
		{"/plafonds/active", "public, max-age=60"},
		{"/plafonds/detect?amount=5000000", "no-store, no-cache, must-revalidate"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
		})
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/plafonds/all", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("admin route without auth: status = %d", resp.StatusCode)
	}
}
