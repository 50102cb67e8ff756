package services

import (
	"context"
	"errors"
	"testing"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/pagination"
)

func roleFixture() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles: []models.Role{
			{ID: 1, Name: "SUPER_ADMIN"},
			{ID: 2, Name: "MARKETING"},
			{ID: 3, Name: "BRANCH_MANAGER"},
		},
		perms: []models.Permission{
			{ID: 1, Name: "LOAN_REVIEW"},
			{ID: 2, Name: "LOAN_APPROVE"},
		},
	}
}

func TestUserService_CreateAndAssign(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: 1, Username: "admin", Email: "admin@eloan.id", Active: true})
	svc := NewUserService(users, roleFixture())
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{Username: "ab", Email: "nope", Password: "short"})
		var ve *ValidationError
		if !errors.As(err, &ve) || len(ve.Errors) != 3 {
			t.Fatalf("error = %v, want 3 validation errors", err)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{Username: "admin", Email: "x@eloan.id", Password: "rahasia123"})
		if !errors.Is(err, domain.ErrUserAlreadyExists) {
			t.Fatalf("error = %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateUserInput{Username: "budi", Email: "budi@eloan.id", Password: "rahasia123", RoleIDs: []uint{2, 42}})
		if !errors.Is(err, domain.ErrRoleNotFound) {
			t.Fatalf("error = %v", err)
		}
	})

	var created domain.User
	t.Run("create", func(t *testing.T) {
		u, err := svc.Create(ctx, &CreateUserInput{Username: "budi", Email: "budi@eloan.id", Password: "rahasia123", RoleIDs: []uint{2}})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if !u.Active || len(u.Roles) != 1 || u.Roles[0].Name != "MARKETING" {
			t.Errorf("created = %+v", u)
		}
		created = u
	})

	t.Run("assign roles", func(t *testing.T) {
		u, err := svc.AssignRoles(ctx, created.ID, 1, []uint{2, 3})
		if err != nil {
			t.Fatalf("AssignRoles() error: %v", err)
		}
		if len(u.Roles) != 2 {
			t.Errorf("roles = %+v", u.Roles)
		}
		if _, err := svc.AssignRoles(ctx, 1, 1, []uint{2}); !errors.Is(err, ErrCannotChangeOwnRole) {
			t.Errorf("self assign error = %v", err)
		}
		if _, err := svc.AssignRoles(ctx, created.ID, 1, nil); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("empty assign error = %v", err)
		}
	})

	t.Run("toggle", func(t *testing.T) {
		u, err := svc.ToggleActive(ctx, created.ID, 1)
		if err != nil || u.Active {
			t.Fatalf("ToggleActive() = %+v, %v", u, err)
		}
		if _, err := svc.ToggleActive(ctx, 1, 1); !errors.Is(err, ErrCannotDeactivateSelf) {
			t.Errorf("self toggle error = %v", err)
		}
		if _, err := svc.ToggleActive(ctx, 77, 1); !errors.Is(err, domain.ErrUserNotFound) {
			t.Errorf("missing toggle error = %v", err)
		}
	})

	t.Run("list pages", func(t *testing.T) {
		page, err := svc.List(ctx, "", pagination.New(0, 1))
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if page.TotalElements != 2 || page.TotalPages != 2 || !page.First || page.Last || len(page.Content) != 1 {
			t.Errorf("page = %+v", page)
		}
	})
}

func TestUserService_Update(t *testing.T) {
	users := newFakeUserRepo(
		&models.User{ID: 1, Username: "admin", Email: "admin@eloan.id", Active: true},
		&models.User{ID: 2, Username: "budi", Email: "budi@eloan.id", FirstName: "Budi", Active: true},
	)
	svc := NewUserService(users, roleFixture())
	ctx := context.Background()
	str := func(s string) *string { return &s }
	no := false

	tests := []struct {
		name    string
		id      uint
		in      UpdateUserInput
		wantErr error
	}{
		{"invalid email", 2, UpdateUserInput{Email: str("budi")}, domain.ErrInvalidInput},
		{"email taken", 2, UpdateUserInput{Email: str("admin@eloan.id")}, domain.ErrUserAlreadyExists},
		{"self deactivate", 1, UpdateUserInput{Active: &no}, ErrCannotDeactivateSelf},
		{"missing user", 42, UpdateUserInput{FirstName: str("X")}, domain.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Update(ctx, tt.id, 1, &tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	u, err := svc.Update(ctx, 2, 1, &UpdateUserInput{
		Email:     str(" budi.s@eloan.id "),
		FirstName: str("Budi"),
		LastName:  str("Santoso"),
		Active:    &no,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if u.Email != "budi.s@eloan.id" || u.LastName != "Santoso" || u.Active || u.Username != "budi" {
		t.Errorf("updated = %+v", u)
	}

	// unchanged email of the same user is not a conflict
	if _, err := svc.Update(ctx, 2, 1, &UpdateUserInput{Email: str("budi.s@eloan.id")}); err != nil {
		t.Errorf("same email error = %v", err)
	}
}

func TestRoleService_AssignPermissions(t *testing.T) {
	svc := NewRoleService(roleFixture())
	ctx := context.Background()

	r, err := svc.AssignPermissions(ctx, 2, []uint{1, 2})
	if err != nil {
		t.Fatalf("AssignPermissions() error: %v", err)
	}
	if len(r.Permissions) != 2 {
		t.Errorf("permissions = %+v", r.Permissions)
	}
	if _, err := svc.AssignPermissions(ctx, 2, []uint{9}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown permission error = %v", err)
	}
	if _, err := svc.Get(ctx, 99); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Errorf("missing role error = %v", err)
	}
	perms, _ := svc.Permissions(ctx)
	if len(perms) != 2 {
		t.Errorf("Permissions() = %d", len(perms))
	}
}
