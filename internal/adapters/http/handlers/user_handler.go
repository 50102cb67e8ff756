package handlers

import (
	"eloan-must/internal/core/services"
	"eloan-must/internal/pkg/pagination"
	"eloan-must/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService services.UserAdmin
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService services.UserAdmin) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers handles listing users
// @Summary List users
// @Description Paginated list of users, 0-based pages (SUPER_ADMIN only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(0)
// @Param size query int false "Items per page" default(10)
// @Param search query string false "Username, email or name"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, err := h.userService.List(c.Context(), c.Query("search"), pagination.GetParams(c))
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}
	return response.Success(c, "Users retrieved successfully", page)
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", user)
}

// CreateUser handles creating a staff account
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}
	return response.Created(c, "User created successfully", user)
}

// UpdateUser handles editing a user's profile fields
// @Summary Update user
// @Description Update email, name or active flag (SUPER_ADMIN only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to change"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Update(c.Context(), id, adminID, &req)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return response.Success(c, "User updated successfully", user)
}

// ToggleActive handles activating or deactivating a user
// @Summary Toggle user active
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/toggle-active [patch]
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.ToggleActive(c.Context(), id, adminID)
	if err != nil {
		return respondError(c, err, "Failed to update user")
	}
	return response.Success(c, "User status updated", user)
}

// AssignRoles handles replacing a user's roles
// @Summary Assign roles
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.AssignRolesInput true "Role IDs"
// @Success 200 {object} response.Response{data=domain.User}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/roles [post]
func (h *UserHandler) AssignRoles(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req services.AssignRolesInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.AssignRoles(c.Context(), id, adminID, req.RoleIDs)
	if err != nil {
		return respondError(c, err, "Failed to assign roles")
	}
	return response.Success(c, "Roles updated successfully", user)
}

// RoleHandler handles role and permission endpoints
type RoleHandler struct {
	roleService services.RoleAdmin
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService services.RoleAdmin) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// AssignPermissionsRequest is the body of POST /roles/{id}/permissions
type AssignPermissionsRequest struct {
	PermissionIDs []uint `json:"permissionIds"`
}

// ListRoles lists roles with their permissions
// @Summary List roles
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.RoleInfo}
// @Router /roles [get]
func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roleService.List(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list roles")
	}
	return response.Success(c, "Roles retrieved successfully", roles)
}

// GetRole returns one role
// @Summary Get role
// @Tags Roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} response.Response{data=domain.RoleInfo}
// @Failure 404 {object} response.Response
// @Router /roles/{id} [get]
func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID")
	}
	role, err := h.roleService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Failed to get role")
	}
	return response.Success(c, "Role retrieved successfully", role)
}

// AssignPermissions replaces a role's permissions
// @Summary Assign permissions
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param body body AssignPermissionsRequest true "Permission IDs"
// @Success 200 {object} response.Response{data=domain.RoleInfo}
// @Failure 404 {object} response.Response
// @Router /roles/{id}/permissions [post]
func (h *RoleHandler) AssignPermissions(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return response.BadRequest(c, "Invalid role ID")
	}
	var req AssignPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	role, err := h.roleService.AssignPermissions(c.Context(), id, req.PermissionIDs)
	if err != nil {
		return respondError(c, err, "Failed to assign permissions")
	}
	return response.Success(c, "Permissions updated successfully", role)
}

// ListPermissions lists every permission
// @Summary List permissions
// @Tags Permissions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]domain.Permission}
// @Router /permissions [get]
func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.roleService.Permissions(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to list permissions")
	}
	return response.Success(c, "Permissions retrieved successfully", perms)
}
