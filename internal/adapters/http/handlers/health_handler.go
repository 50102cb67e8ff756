package handlers

import (
	"context"
	"time"

	"eloan-must/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct{}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 E-Loan Must API v1.0 is running",
		"mode":    config.AppConfig.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API, database and cache health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	dbStatus := "healthy"
	if err := config.HealthCheck(ctx); err != nil {
		dbStatus = "unhealthy"
		status = fiber.StatusServiceUnavailable
	}

	cacheStatus := "disabled"
	if config.Redis != nil {
		cacheStatus = "healthy"
		if err := config.Redis.Ping(ctx).Err(); err != nil {
			cacheStatus = "unhealthy"
		}
	}

	checks := fiber.Map{
		"api":      "healthy",
		"database": dbStatus,
		"cache":    cacheStatus,
	}
	if stats, err := config.PoolStats(); err == nil {
		checks["pool"] = fiber.Map{
			"open":    stats.OpenConnections,
			"inUse":   stats.InUse,
			"idle":    stats.Idle,
			"waiting": stats.WaitCount,
		}
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":    overall,
		"checks":    checks,
		"timestamp": time.Now(),
	})
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1 [get]
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "E-Loan Must API v1.0",
		"version": "1.0.0",
	})
}
