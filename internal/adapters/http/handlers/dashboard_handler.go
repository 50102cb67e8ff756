package handlers

import (
	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService services.StatsProvider
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService services.StatsProvider) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Stats returns loan statistics for the caller's roles
// @Summary Dashboard statistics
// @Description SUPER_ADMIN sees every loan, other roles the union of their work queues
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.DashboardStats}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.Context(), currentRoles(c))
	if err != nil {
		return respondError(c, err, "Failed to get dashboard statistics")
	}
	return response.Success(c, "Dashboard statistics retrieved successfully", stats)
}
