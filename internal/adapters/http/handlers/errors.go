package handlers

import (
	"errors"
	"log"
	"strconv"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/services"
	"eloan-must/internal/core/simulation"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service and domain errors onto HTTP responses.
// Anything unrecognized is logged and answered with a 500 carrying fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return response.BadRequest(c, "Validation failed", ve.Errors...)
	}

	switch {
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return response.Conflict(c, err.Error())

	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrPlafondNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, err.Error())

	case errors.Is(err, domain.ErrPlafondCodeTaken),
		errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrDuplicateEntry):
		return response.Conflict(c, err.Error())

	case errors.Is(err, domain.ErrRejectionReasonRequired),
		errors.Is(err, services.ErrInvalidReviewStatus),
		errors.Is(err, services.ErrInvalidApprovalStatus),
		errors.Is(err, services.ErrCannotDeactivateSelf),
		errors.Is(err, services.ErrCannotChangeOwnRole),
		errors.Is(err, simulation.ErrInvalidTerms),
		errors.Is(err, domain.ErrPlafondInvalid),
		errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	}

	log.Printf("❌ %s: %v", fallback, err)
	return response.InternalServerError(c, fallback)
}

// paramID parses the :id route parameter
func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// currentUserID returns the authenticated user's id set by AuthMiddleware
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// currentRoles returns the authenticated user's roles set by AuthMiddleware
func currentRoles(c *fiber.Ctx) []domain.Role {
	roles, _ := c.Locals("roles").([]domain.Role)
	return roles
}

// currentActor builds the workflow actor of the request
func currentActor(c *fiber.Ctx) services.Actor {
	id, _ := currentUserID(c)
	username, _ := c.Locals("username").(string)
	return services.Actor{
		UserID:    id,
		Username:  username,
		Roles:     currentRoles(c),
		IPAddress: c.IP(),
	}
}
