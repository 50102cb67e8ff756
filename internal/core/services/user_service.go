package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/pagination"
	"eloan-must/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrCannotDeactivateSelf = errors.New("cannot deactivate your own account")
	ErrCannotChangeOwnRole  = errors.New("cannot change your own roles")
)

// UserService handles staff account management
type UserService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) *UserService {
	return &UserService{userRepo: userRepo, roleRepo: roleRepo}
}

// CreateUserInput represents create user input
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	RoleIDs   []uint `json:"roleIds"`
}

// UpdateUserInput represents editable user fields. Nil fields are left
// unchanged; the username is fixed after creation.
type UpdateUserInput struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Active    *bool   `json:"active"`
}

// AssignRolesInput represents role assignment input
type AssignRolesInput struct {
	RoleIDs []uint `json:"roleIds"`
}

// List returns one page of users matching search
func (s *UserService) List(ctx context.Context, search string, params pagination.Params) (domain.Page[domain.User], error) {
	rows, total, err := s.userRepo.List(ctx, strings.TrimSpace(search), params.Offset, params.Size)
	if err != nil {
		return domain.Page[domain.User]{}, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, u := range rows {
		users = append(users, u.ToResponse())
	}
	return pagination.NewPage(users, params, total), nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id uint) (domain.User, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return u.ToResponse(), nil
}

// Create creates a staff account
func (s *UserService) Create(ctx context.Context, in *CreateUserInput) (domain.User, error) {
	var errs []string
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if len(in.Username) < 3 {
		errs = append(errs, "username must be at least 3 characters")
	}
	if !strings.Contains(in.Email, "@") {
		errs = append(errs, "email is invalid")
	}
	if !password.ValidatePassword(in.Password) {
		errs = append(errs, ErrWeakPassword.Error())
	}
	if len(errs) > 0 {
		return domain.User{}, &ValidationError{Errors: errs}
	}

	if exists, err := s.userRepo.ExistsByUsername(ctx, in.Username); err != nil {
		return domain.User{}, err
	} else if exists {
		return domain.User{}, domain.ErrUserAlreadyExists
	}
	if exists, err := s.userRepo.ExistsByEmail(ctx, in.Email); err != nil {
		return domain.User{}, err
	} else if exists {
		return domain.User{}, domain.ErrUserAlreadyExists
	}

	roles, err := s.resolveRoles(ctx, in.RoleIDs)
	if err != nil {
		return domain.User{}, err
	}

	hashed, err := password.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hashed,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    true,
		Roles:     roles,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrUserAlreadyExists
		}
		return domain.User{}, err
	}

	log.Printf("✅ User created: %s %v", user.Username, user.RoleNames())
	return s.Get(ctx, user.ID)
}

// Update edits a user's profile fields
func (s *UserService) Update(ctx context.Context, id, adminID uint, in *UpdateUserInput) (domain.User, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !strings.Contains(email, "@") {
			return domain.User{}, &ValidationError{Errors: []string{"email is invalid"}}
		}
		if !strings.EqualFold(email, u.Email) {
			if exists, err := s.userRepo.ExistsByEmail(ctx, email); err != nil {
				return domain.User{}, err
			} else if exists {
				return domain.User{}, domain.ErrUserAlreadyExists
			}
		}
		u.Email = email
	}
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Active != nil && *in.Active != u.Active {
		if id == adminID && !*in.Active {
			return domain.User{}, ErrCannotDeactivateSelf
		}
		u.Active = *in.Active
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ErrUserAlreadyExists
		}
		return domain.User{}, err
	}

	log.Printf("✅ User updated: %s", u.Username)
	return s.Get(ctx, id)
}

// ToggleActive flips a user's active flag
func (s *UserService) ToggleActive(ctx context.Context, id, adminID uint) (domain.User, error) {
	if id == adminID {
		return domain.User{}, ErrCannotDeactivateSelf
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	u.Active = !u.Active
	if err := s.userRepo.SetActive(ctx, id, u.Active); err != nil {
		return domain.User{}, err
	}

	log.Printf("✅ User %s active=%t", u.Username, u.Active)
	return u.ToResponse(), nil
}

// AssignRoles replaces a user's roles
func (s *UserService) AssignRoles(ctx context.Context, id, adminID uint, roleIDs []uint) (domain.User, error) {
	if id == adminID {
		return domain.User{}, ErrCannotChangeOwnRole
	}
	if len(roleIDs) == 0 {
		return domain.User{}, &ValidationError{Errors: []string{"roleIds must not be empty"}}
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	roles, err := s.resolveRoles(ctx, roleIDs)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.userRepo.ReplaceRoles(ctx, u, roles); err != nil {
		return domain.User{}, err
	}
	return s.Get(ctx, id)
}

func (s *UserService) resolveRoles(ctx context.Context, ids []uint) ([]models.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	roles, err := s.roleRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(roles) != len(uniqueIDs(ids)) {
		return nil, domain.ErrRoleNotFound
	}
	return roles, nil
}

func (s *UserService) load(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// RoleService exposes roles and their permissions
type RoleService struct {
	roleRepo repositories.RoleRepository
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo repositories.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// List returns every role with its permissions
func (s *RoleService) List(ctx context.Context) ([]domain.RoleInfo, error) {
	rows, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RoleInfo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToResponse())
	}
	return out, nil
}

// Get returns one role
func (s *RoleService) Get(ctx context.Context, id uint) (domain.RoleInfo, error) {
	r, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoleInfo{}, domain.ErrRoleNotFound
		}
		return domain.RoleInfo{}, err
	}
	return r.ToResponse(), nil
}

// AssignPermissions replaces a role's permissions
func (s *RoleService) AssignPermissions(ctx context.Context, id uint, permissionIDs []uint) (domain.RoleInfo, error) {
	r, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoleInfo{}, domain.ErrRoleNotFound
		}
		return domain.RoleInfo{}, err
	}

	var perms []models.Permission
	if len(permissionIDs) > 0 {
		perms, err = s.roleRepo.GetPermissionsByIDs(ctx, permissionIDs)
		if err != nil {
			return domain.RoleInfo{}, err
		}
		if len(perms) != len(uniqueIDs(permissionIDs)) {
			return domain.RoleInfo{}, domain.ErrNotFound
		}
	}

	if err := s.roleRepo.ReplacePermissions(ctx, r, perms); err != nil {
		return domain.RoleInfo{}, err
	}
	return s.Get(ctx, id)
}

// Permissions returns every permission
func (s *RoleService) Permissions(ctx context.Context) ([]domain.Permission, error) {
	rows, err := s.roleRepo.ListPermissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Permission, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.ToResponse())
	}
	return out, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
