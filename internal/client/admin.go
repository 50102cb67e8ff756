package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/session"
)

// PlafondInput is the body of plafond create and update
type PlafondInput struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	MinAmount    float64 `json:"minAmount"`
	MaxAmount    float64 `json:"maxAmount"`
	MinTenor     int     `json:"minTenor"`
	MaxTenor     int     `json:"maxTenor"`
	InterestRate float64 `json:"interestRate"`
	AdminFee     float64 `json:"adminFee,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// CreateUserInput is the body of POST /users
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	RoleIDs   []uint `json:"roleIds"`
}

// UpdateUserInput is the body of PUT /users/{id}; nil fields are unchanged
type UpdateUserInput struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

// ============================================================
// Plafonds
// ============================================================

// ActivePlafonds lists active products in server order (public)
func (c *Client) ActivePlafonds(ctx context.Context) ([]domain.Plafond, error) {
	return call[[]domain.Plafond](ctx, c, http.MethodGet, "/plafonds/active", nil, nil)
}

// DetectPlafond asks the server which product covers amount (public)
func (c *Client) DetectPlafond(ctx context.Context, amount float64) (domain.PlafondDetection, error) {
	q := url.Values{}
	q.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	return call[domain.PlafondDetection](ctx, c, http.MethodGet, withQuery("/plafonds/detect", q), nil, nil)
}

// AllPlafonds lists every product including inactive ones
func (c *Client) AllPlafonds(ctx context.Context, cred *session.Credential) ([]domain.Plafond, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.Plafond](ctx, c, http.MethodGet, "/plafonds/all", cred, nil)
}

// Plafond fetches one product
func (c *Client) Plafond(ctx context.Context, cred *session.Credential, id uint) (domain.Plafond, error) {
	if err := requireCredential(cred); err != nil {
		return domain.Plafond{}, err
	}
	return call[domain.Plafond](ctx, c, http.MethodGet, idPath("/plafonds", id), cred, nil)
}

// CreatePlafond creates a product
func (c *Client) CreatePlafond(ctx context.Context, cred *session.Credential, in PlafondInput) (domain.Plafond, error) {
	if err := requireCredential(cred); err != nil {
		return domain.Plafond{}, err
	}
	return call[domain.Plafond](ctx, c, http.MethodPost, "/plafonds", cred, in)
}

// UpdatePlafond replaces a product
func (c *Client) UpdatePlafond(ctx context.Context, cred *session.Credential, id uint, in PlafondInput) (domain.Plafond, error) {
	if err := requireCredential(cred); err != nil {
		return domain.Plafond{}, err
	}
	return call[domain.Plafond](ctx, c, http.MethodPut, idPath("/plafonds", id), cred, in)
}

// TogglePlafond flips a product's active flag
func (c *Client) TogglePlafond(ctx context.Context, cred *session.Credential, id uint) (domain.Plafond, error) {
	if err := requireCredential(cred); err != nil {
		return domain.Plafond{}, err
	}
	return call[domain.Plafond](ctx, c, http.MethodPatch, idPath("/plafonds", id)+"/toggle-active", cred, nil)
}

// DeletePlafond deletes a product
func (c *Client) DeletePlafond(ctx context.Context, cred *session.Credential, id uint) error {
	if err := requireCredential(cred); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, idPath("/plafonds", id), cred, nil)
	return err
}

// ============================================================
// Users, roles, permissions
// ============================================================

// Users lists one 0-based page of users matching search
func (c *Client) Users(ctx context.Context, cred *session.Credential, search string, page, size int) (domain.Page[domain.User], error) {
	if err := requireCredential(cred); err != nil {
		return domain.Page[domain.User]{}, err
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if search != "" {
		q.Set("search", search)
	}
	return call[domain.Page[domain.User]](ctx, c, http.MethodGet, withQuery("/users", q), cred, nil)
}

// User fetches one user
func (c *Client) User(ctx context.Context, cred *session.Credential, id uint) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodGet, idPath("/users", id), cred, nil)
}

// CreateUser creates a staff account
func (c *Client) CreateUser(ctx context.Context, cred *session.Credential, in CreateUserInput) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodPost, "/users", cred, in)
}

// UpdateUser edits a staff account
func (c *Client) UpdateUser(ctx context.Context, cred *session.Credential, id uint, in UpdateUserInput) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodPut, idPath("/users", id), cred, in)
}

// ToggleUser flips a user's active flag
func (c *Client) ToggleUser(ctx context.Context, cred *session.Credential, id uint) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodPatch, idPath("/users", id)+"/toggle-active", cred, nil)
}

// AssignRoles replaces a user's roles
func (c *Client) AssignRoles(ctx context.Context, cred *session.Credential, id uint, roleIDs []uint) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodPost, idPath("/users", id)+"/roles", cred, map[string][]uint{"roleIds": roleIDs})
}

// Roles lists roles with their permissions
func (c *Client) Roles(ctx context.Context, cred *session.Credential) ([]domain.RoleInfo, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.RoleInfo](ctx, c, http.MethodGet, "/roles", cred, nil)
}

// Role fetches one role
func (c *Client) Role(ctx context.Context, cred *session.Credential, id uint) (domain.RoleInfo, error) {
	if err := requireCredential(cred); err != nil {
		return domain.RoleInfo{}, err
	}
	return call[domain.RoleInfo](ctx, c, http.MethodGet, idPath("/roles", id), cred, nil)
}

// AssignPermissions replaces a role's permissions
func (c *Client) AssignPermissions(ctx context.Context, cred *session.Credential, roleID uint, permissionIDs []uint) (domain.RoleInfo, error) {
	if err := requireCredential(cred); err != nil {
		return domain.RoleInfo{}, err
	}
	return call[domain.RoleInfo](ctx, c, http.MethodPost, idPath("/roles", roleID)+"/permissions", cred, map[string][]uint{"permissionIds": permissionIDs})
}

// Permissions lists every permission
func (c *Client) Permissions(ctx context.Context, cred *session.Credential) ([]domain.Permission, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.Permission](ctx, c, http.MethodGet, "/permissions", cred, nil)
}

// ============================================================
// Notifications
// ============================================================

// Notifications lists one page of the caller's notifications
func (c *Client) Notifications(ctx context.Context, cred *session.Credential, page, size int) (domain.Page[domain.Notification], error) {
	if err := requireCredential(cred); err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return call[domain.Page[domain.Notification]](ctx, c, http.MethodGet, withQuery("/notifications", q), cred, nil)
}

// UnreadNotifications lists unread notifications
func (c *Client) UnreadNotifications(ctx context.Context, cred *session.Credential) ([]domain.Notification, error) {
	if err := requireCredential(cred); err != nil {
		return nil, err
	}
	return call[[]domain.Notification](ctx, c, http.MethodGet, "/notifications/unread", cred, nil)
}

// NotificationCount returns total and unread counts
func (c *Client) NotificationCount(ctx context.Context, cred *session.Credential) (domain.NotificationCount, error) {
	if err := requireCredential(cred); err != nil {
		return domain.NotificationCount{}, err
	}
	return call[domain.NotificationCount](ctx, c, http.MethodGet, "/notifications/count", cred, nil)
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, cred *session.Credential, id uint) error {
	if err := requireCredential(cred); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPatch, idPath("/notifications", id)+"/read", cred, nil)
	return err
}

// MarkAllNotificationsRead marks every notification as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context, cred *session.Credential) error {
	if err := requireCredential(cred); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPatch, "/notifications/mark-all-read", cred, nil)
	return err
}

// DeleteNotification deletes one notification
func (c *Client) DeleteNotification(ctx context.Context, cred *session.Credential, id uint) error {
	if err := requireCredential(cred); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, idPath("/notifications", id), cred, nil)
	return err
}

func idPath(prefix string, id uint) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
