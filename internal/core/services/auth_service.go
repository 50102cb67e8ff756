package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/adapters/persistence/repositories"
	"eloan-must/internal/config"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/jwt"
	"eloan-must/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	resetRepo        repositories.PasswordResetRepository
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	resetRepo repositories.PasswordResetRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetRepo:        resetRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshInput represents refresh-token input
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordInput represents forgot-password input
type ForgotPasswordInput struct {
	Email string `json:"email"`
}

// ResetPasswordInput represents reset-password input
type ResetPasswordInput struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	TokenType    string      `json:"tokenType"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         domain.User `json:"user"`
}

// Login authenticates a user by username or email
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// 1. Find user by username, then by email
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(username, "@") {
		user, err = s.userRepo.GetByEmail(ctx, username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Check if user is active
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s %v", user.Username, user.RoleNames())
	return resp, nil
}

// Refresh rotates the refresh token and issues a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2. Find the live token in DB
	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	if stored.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// 3. Load user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}

	// 4. Revoke old refresh token (rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		return nil, err
	}

	resp, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Username)
	return resp, nil
}

// Logout revokes the refresh token when one is given
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes every refresh token of a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user.ToResponse(), nil
}

// ForgotPassword stores a reset token for the account with email. Unknown
// emails succeed silently. The plain token is returned for delivery.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &ValidationError{Errors: []string{"email is required"}}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ Password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, hash := password.NewResetToken()
	reset := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(time.Duration(s.cfg.JWT.ResetTokenMins) * time.Minute),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return "", err
	}

	if s.cfg.IsDev() {
		log.Printf("🔑 Password reset token for %s: %s", user.Username, token)
	}
	return token, nil
}

// ResetPassword redeems a reset token and revokes every session of the user
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if !password.ValidatePassword(input.NewPassword) {
		return ErrWeakPassword
	}

	reset, err := s.resetRepo.GetByTokenHash(ctx, password.HashToken(strings.TrimSpace(input.Token)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if !reset.Usable(s.now()) {
		return ErrInvalidResetToken
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, reset.UserID, hashed); err != nil {
		return err
	}
	if err := s.resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return err
	}
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, reset.UserID); err != nil {
		return err
	}

	log.Printf("✅ Password reset for user ID: %d", reset.UserID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// issue generates and stores a token pair for user
func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	access, err := jwt.GenerateAccessToken(jwt.Identity{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Roles:       user.RoleNames(),
		Permissions: user.PermissionNames(),
	}, s.cfg.JWT.Secret, s.cfg.JWT.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.GenerateRefreshToken(user.ID, uuid.NewString(), s.cfg.JWT.RefreshSecret, s.cfg.JWT.RefreshTokenDays)
	if err != nil {
		return nil, err
	}

	stored := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refresh),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}
	if err := s.refreshTokenRepo.Create(ctx, stored); err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenMins) * 60,
		User:         user.ToResponse(),
	}, nil
}
