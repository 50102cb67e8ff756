// Package session derives role facts, menus and access decisions from a
// credential. Everything here is a pure function of the credential passed in.
package session

import (
	"time"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
)

// Credential is an authenticated staff session
type Credential struct {
	Token        string
	RefreshToken string
	Subject      string
	UserID       uint
	Username     string
	Email        string
	Roles        []domain.Role
	Permissions  []string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

// Empty reports whether there is no credential at all
func (c *Credential) Empty() bool {
	return c == nil || c.Token == ""
}

// Expired reports whether the credential has expired at now. A zero
// expiry never expires.
func (c *Credential) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// HasPermission reports whether the credential carries a permission
func (c *Credential) HasPermission(name string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

// Facts are the role-derived flags of a session
type Facts struct {
	SuperAdmin    bool
	Marketing     bool
	BranchManager bool
	BackOffice    bool
	PrimaryRole   string
}

// Derive computes facts from a role list. SUPER_ADMIN implies every
// other capability.
func Derive(roles []domain.Role) Facts {
	return Facts{
		SuperAdmin:    lifecycle.HasRole(roles, domain.RoleSuperAdmin),
		Marketing:     lifecycle.HasRole(roles, domain.RoleMarketing),
		BranchManager: lifecycle.HasRole(roles, domain.RoleBranchManager),
		BackOffice:    lifecycle.HasRole(roles, domain.RoleBackOffice),
		PrimaryRole:   PrimaryLabel(roles),
	}
}

// PrimaryLabel returns the display label of the highest-ranked admin role
func PrimaryLabel(roles []domain.Role) string {
	for _, r := range domain.AdminRoles {
		for _, have := range roles {
			if have == r {
				return r.Label()
			}
		}
	}
	return "Admin"
}

// HasAdminRole reports whether roles intersect the admin roles
func HasAdminRole(roles []domain.Role) bool {
	for _, r := range roles {
		if r.IsAdmin() {
			return true
		}
	}
	return false
}
