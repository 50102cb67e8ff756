package handlers

import (
	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/pagination"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the caller's notification inbox
type NotificationHandler struct {
	notifications services.Notifier
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications services.Notifier) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns a page of the caller's notifications
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(0)
// @Param size query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.notifications.List(c.Context(), userID, false)
	if err != nil {
		return respondError(c, err, "Failed to list notifications")
	}
	return response.Success(c, "Notifications retrieved successfully", pagination.Slice(items, pagination.GetParams(c)))
}

// Unread returns the caller's unread notifications
// @Summary Unread notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.Notification}
// @Router /notifications/unread [get]
func (h *NotificationHandler) Unread(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	items, err := h.notifications.List(c.Context(), userID, true)
	if err != nil {
		return respondError(c, err, "Failed to list notifications")
	}
	return response.Success(c, "Unread notifications retrieved successfully", items)
}

// Count returns total and unread counts
// @Summary Notification count
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=domain.NotificationCount}
// @Router /notifications/count [get]
func (h *NotificationHandler) Count(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	count, err := h.notifications.Count(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to count notifications")
	}
	return response.Success(c, "Notification count retrieved successfully", count)
}

// MarkRead marks one notification as read
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid notification ID")
	}
	if err := h.notifications.MarkRead(c.Context(), userID, id); err != nil {
		return respondError(c, err, "Failed to update notification")
	}
	return response.Success(c, "Notification marked as read", nil)
}

// MarkAllRead marks every notification as read
// @Summary Mark all notifications read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/mark-all-read [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.notifications.MarkAllRead(c.Context(), userID); err != nil {
		return respondError(c, err, "Failed to update notifications")
	}
	return response.Success(c, "All notifications marked as read", nil)
}

// Delete removes one notification
// @Summary Delete notification
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid notification ID")
	}
	if err := h.notifications.Delete(c.Context(), userID, id); err != nil {
		return respondError(c, err, "Failed to delete notification")
	}
	return response.Success(c, "Notification deleted", nil)
}
