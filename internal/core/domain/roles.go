package domain

// Role is a role name carried by a staff or customer account
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleMarketing     Role = "MARKETING"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleBackOffice    Role = "BACK_OFFICE"
	RoleCustomer      Role = "CUSTOMER"
)

// AdminRoles are the roles allowed into the admin interface
var AdminRoles = []Role{RoleSuperAdmin, RoleMarketing, RoleBranchManager, RoleBackOffice}

// IsAdmin reports whether r grants access to the admin interface
func (r Role) IsAdmin() bool {
	for _, a := range AdminRoles {
		if r == a {
			return true
		}
	}
	return false
}

// Label returns the display label of the role
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleMarketing:
		return "Marketing"
	case RoleBranchManager:
		return "Branch Manager"
	case RoleBackOffice:
		return "Back Office"
	case RoleCustomer:
		return "Customer"
	default:
		return string(r)
	}
}

// ParseRoles converts raw role names, accepting an optional ROLE_ prefix
func ParseRoles(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if len(n) > 5 && n[:5] == "ROLE_" {
			n = n[5:]
		}
		if n == "" {
			continue
		}
		out = append(out, Role(n))
	}
	return out
}

// RoleStrings converts roles back to plain strings
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
