package session

import (
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
)

// MenuItem is one navigation entry of the admin interface
type MenuItem struct {
	Label string
	Path  string
	Roles []domain.Role // empty means every admin role
}

var menu = []MenuItem{
	{Label: "Dashboard", Path: "/admin/dashboard"},
	{Label: "Review Pinjaman", Path: "/admin/reviews", Roles: []domain.Role{domain.RoleMarketing}},
	{Label: "Approval", Path: "/admin/approvals", Roles: []domain.Role{domain.RoleBranchManager}},
	{Label: "Pencairan", Path: "/admin/disbursements", Roles: []domain.Role{domain.RoleBackOffice}},
	{Label: "Semua Pinjaman", Path: "/admin/loans", Roles: []domain.Role{domain.RoleSuperAdmin}},
	{Label: "Users", Path: "/admin/users", Roles: []domain.Role{domain.RoleSuperAdmin}},
	{Label: "Roles", Path: "/admin/roles", Roles: []domain.Role{domain.RoleSuperAdmin}},
	{Label: "Products", Path: "/admin/products", Roles: []domain.Role{domain.RoleSuperAdmin}},
	{Label: "Notifications", Path: "/admin/notifications"},
}

// Menu returns the entries visible to roles
func Menu(roles []domain.Role) []MenuItem {
	if !HasAdminRole(roles) {
		return nil
	}
	var out []MenuItem
	for _, item := range menu {
		if len(item.Roles) == 0 || lifecycle.HasAnyRole(roles, item.Roles...) {
			out = append(out, item)
		}
	}
	return out
}

// CanOpen reports whether roles may open the menu entry at path
func CanOpen(roles []domain.Role, path string) bool {
	for _, item := range Menu(roles) {
		if item.Path == path {
			return true
		}
	}
	return false
}
