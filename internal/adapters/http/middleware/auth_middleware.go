package middleware

import (
	"errors"
	"strings"

	"eloan-must/internal/config"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/pkg/jwt"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		setIdentity(c, claims)
		return c.Next()
	}
}

// RequireRoles allows the request when the caller holds one of roles.
// SUPER_ADMIN is always allowed.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		held, ok := c.Locals("roles").([]domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		if lifecycle.HasAnyRole(held, roles...) {
			return c.Next()
		}
		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// SuperAdminOnly allows only SUPER_ADMIN
func SuperAdminOnly() fiber.Handler {
	return RequireRoles(domain.RoleSuperAdmin)
}

// AnyAdmin allows any admin-interface role
func AnyAdmin() fiber.Handler {
	return RequireRoles(domain.AdminRoles...)
}

// OptionalAuth sets user info when a valid token is present
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := extractToken(c); accessToken != "" {
			if claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret); err == nil {
				setIdentity(c, claims)
			}
		}
		return c.Next()
	}
}

// extractToken reads the bearer header first, then the access_token cookie
func extractToken(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies("access_token")
}

func setIdentity(c *fiber.Ctx, claims *jwt.Claims) {
	c.Locals("userID", claims.UserID)
	c.Locals("username", claims.Username)
	c.Locals("roles", domain.ParseRoles(claims.Roles))
	c.Locals("permissions", claims.Permissions)
}
