package services

import (
	"context"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/lifecycle"
	"eloan-must/internal/pkg/jwt"
	"eloan-must/internal/pkg/pagination"
)

// The interfaces below are what the HTTP handlers depend on.
// Implementations live in the *_service.go files of this package.

// Authenticator defines the auth operations used by handlers and middleware
type Authenticator interface {
	Login(ctx context.Context, input *LoginInput) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID uint) error
	Me(ctx context.Context, userID uint) (domain.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
	ValidateAccessToken(accessToken string) (*jwt.Claims, error)
}

// LoanWorkflow defines loan listing and status transitions
type LoanWorkflow interface {
	ListAll(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error)
	Pending(ctx context.Context, queue lifecycle.Queue) ([]domain.LoanApplication, error)
	Disbursed(ctx context.Context) ([]domain.LoanApplication, error)
	Get(ctx context.Context, id uint) (domain.LoanApplication, error)
	History(ctx context.Context, id uint) ([]*models.LoanHistory, error)
	Review(ctx context.Context, id uint, actor Actor, req domain.ReviewRequest) (domain.LoanApplication, error)
	Decide(ctx context.Context, id uint, actor Actor, req domain.ApprovalRequest) (domain.LoanApplication, error)
	Disburse(ctx context.Context, id uint, actor Actor, note string) (domain.LoanApplication, error)
}

// PlafondCatalog defines product reads, detection, simulation and writes
type PlafondCatalog interface {
	Active(ctx context.Context) ([]domain.Plafond, error)
	All(ctx context.Context) ([]domain.Plafond, error)
	Get(ctx context.Context, id uint) (domain.Plafond, error)
	Detect(ctx context.Context, amount float64) (domain.PlafondDetection, error)
	Simulate(ctx context.Context, req domain.SimulationRequest) (domain.SimulationResult, error)
	Create(ctx context.Context, in *PlafondInput) (domain.Plafond, error)
	Update(ctx context.Context, id uint, in *PlafondInput) (domain.Plafond, error)
	ToggleActive(ctx context.Context, id uint) (domain.Plafond, error)
	Delete(ctx context.Context, id uint) error
}

// UserAdmin defines staff account management
type UserAdmin interface {
	List(ctx context.Context, search string, params pagination.Params) (domain.Page[domain.User], error)
	Get(ctx context.Context, id uint) (domain.User, error)
	Create(ctx context.Context, in *CreateUserInput) (domain.User, error)
	Update(ctx context.Context, id, adminID uint, in *UpdateUserInput) (domain.User, error)
	ToggleActive(ctx context.Context, id, adminID uint) (domain.User, error)
	AssignRoles(ctx context.Context, id, adminID uint, roleIDs []uint) (domain.User, error)
}

// RoleAdmin defines role and permission management
type RoleAdmin interface {
	List(ctx context.Context) ([]domain.RoleInfo, error)
	Get(ctx context.Context, id uint) (domain.RoleInfo, error)
	AssignPermissions(ctx context.Context, id uint, permissionIDs []uint) (domain.RoleInfo, error)
	Permissions(ctx context.Context) ([]domain.Permission, error)
}

// Notifier defines a user's notification inbox
type Notifier interface {
	List(ctx context.Context, userID uint, unreadOnly bool) ([]domain.Notification, error)
	Count(ctx context.Context, userID uint) (domain.NotificationCount, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, userID, id uint) error
	PurgeRead(ctx context.Context, retain time.Duration) (int64, error)
}

// StatsProvider defines dashboard statistics
type StatsProvider interface {
	Stats(ctx context.Context, roles []domain.Role) (domain.DashboardStats, error)
}

// LoanExporter renders loans as a downloadable workbook
type LoanExporter interface {
	Loans(ctx context.Context, status domain.LoanStatus, requestedBy string) (string, []byte, error)
}

var (
	_ Authenticator  = (*AuthService)(nil)
	_ LoanWorkflow   = (*LoanService)(nil)
	_ PlafondCatalog = (*PlafondService)(nil)
	_ UserAdmin      = (*UserService)(nil)
	_ RoleAdmin      = (*RoleService)(nil)
	_ Notifier       = (*NotificationService)(nil)
	_ StatsProvider  = (*DashboardService)(nil)
	_ LoanExporter   = (*ExportService)(nil)
)
