package repositories

import (
	"context"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id uint, active bool) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	ReplaceRoles(ctx context.Context, user *models.User, roles []models.Role) error
	List(ctx context.Context, search string, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RoleRepository defines role and permission repository interface
type RoleRepository interface {
	List(ctx context.Context) ([]*models.Role, error)
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ReplacePermissions(ctx context.Context, role *models.Role, perms []models.Permission) error
	ListPermissions(ctx context.Context) ([]*models.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []uint) ([]models.Permission, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PasswordResetRepository defines password reset repository interface
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PlafondRepository defines product repository interface
type PlafondRepository interface {
	Create(ctx context.Context, p *models.Plafond) error
	Update(ctx context.Context, p *models.Plafond) error
	GetByID(ctx context.Context, id uint) (*models.Plafond, error)
	ExistsByCode(ctx context.Context, code string, excludeID uint) (bool, error)
	ListActive(ctx context.Context) ([]*models.Plafond, error)
	ListAll(ctx context.Context) ([]*models.Plafond, error)
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error
}

// LoanFilter narrows loan listings
type LoanFilter struct {
	Statuses []domain.LoanStatus
}

// LoanRepository defines loan application repository interface
type LoanRepository interface {
	GetByID(ctx context.Context, id uint) (*models.LoanApplication, error)
	List(ctx context.Context, filter LoanFilter) ([]*models.LoanApplication, error)
	// Transition persists new status and audit fields only if the stored
	// status still equals from. It reports false when another writer won.
	Transition(ctx context.Context, loan *models.LoanApplication, from domain.LoanStatus, history *models.LoanHistory) (bool, error)
	History(ctx context.Context, loanID uint) ([]*models.LoanHistory, error)
}

// NotificationRepository defines notification repository interface
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool) ([]*models.Notification, error)
	CountByUser(ctx context.Context, userID uint) (total, unread int64, err error)
	MarkRead(ctx context.Context, userID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, userID, id uint) (bool, error)
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}
