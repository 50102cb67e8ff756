package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eloan-must/internal/adapters/persistence/models"
	"eloan-must/internal/config"
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/jwt"
	"eloan-must/internal/pkg/password"
)

func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "access-secret",
			RefreshSecret:    "refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
			ResetTokenMins:   30,
		},
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeRefreshRepo, *fakeResetRepo) {
	t.Helper()
	hash, err := password.Hash("rahasia123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	marketing := models.Role{ID: 2, Name: "MARKETING", Permissions: []models.Permission{{ID: 1, Name: "LOAN_REVIEW"}}}
	users := newFakeUserRepo(
		&models.User{ID: 1, Username: "marketing", Email: "mkt@eloan.id", Password: hash, Active: true, Roles: []models.Role{marketing}},
		&models.User{ID: 2, Username: "dormant", Email: "dormant@eloan.id", Password: hash, Active: false, Roles: []models.Role{marketing}},
	)
	refresh := &fakeRefreshRepo{}
	resets := &fakeResetRepo{}
	return NewAuthService(users, refresh, resets, testConfig()), users, refresh, resets
}

func TestAuthService_Login(t *testing.T) {
	svc, _, refresh, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    LoginInput
		wantErr  error
		wantUser string
	}{
		{"by username", LoginInput{Username: "marketing", Password: "rahasia123"}, nil, "marketing"},
		{"by email", LoginInput{Username: "mkt@eloan.id", Password: "rahasia123"}, nil, "marketing"},
		{"wrong password", LoginInput{Username: "marketing", Password: "salah"}, domain.ErrInvalidCredentials, ""},
		{"unknown user", LoginInput{Username: "ghost", Password: "rahasia123"}, domain.ErrInvalidCredentials, ""},
		{"inactive", LoginInput{Username: "dormant", Password: "rahasia123"}, domain.ErrUserInactive, ""},
		{"empty", LoginInput{}, domain.ErrInvalidCredentials, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			resp, err := svc.Login(ctx, &in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if resp.User.Username != tt.wantUser || resp.TokenType != "Bearer" || resp.ExpiresIn != 900 {
				t.Errorf("response = %+v", resp)
			}
			claims, err := jwt.ValidateAccessToken(resp.AccessToken, "access-secret")
			if err != nil {
				t.Fatalf("access token invalid: %v", err)
			}
			if claims.Subject != "marketing" || len(claims.Roles) != 1 || claims.Roles[0] != "MARKETING" {
				t.Errorf("claims = %+v", claims)
			}
			if len(claims.Permissions) != 1 || claims.Permissions[0] != "LOAN_REVIEW" {
				t.Errorf("permissions = %v", claims.Permissions)
			}
		})
	}

	if refresh.live(1) != 2 {
		t.Errorf("live refresh tokens = %d, want 2", refresh.live(1))
	}
}

func TestAuthService_RefreshRotatesAndLogoutRevokes(t *testing.T) {
	svc, _, refresh, _ := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, &LoginInput{Username: "marketing", Password: "rahasia123"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Errorf("refresh token not rotated")
	}

	if _, err := svc.Refresh(ctx, first.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reusing rotated token error = %v, want revoked", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("garbage token error = %v, want invalid", err)
	}

	if err := svc.Logout(ctx, second.RefreshToken); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if refresh.live(1) != 0 {
		t.Errorf("live tokens after logout = %d", refresh.live(1))
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Errorf("Logout without token should be a no-op, got %v", err)
	}
}

func TestAuthService_LogoutAll(t *testing.T) {
	svc, _, refresh, _ := newAuthFixture(t)
	ctx := context.Background()

	var tokens []string
	for i := 0; i < 3; i++ {
		res, err := svc.Login(ctx, &LoginInput{Username: "marketing", Password: "rahasia123"})
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		tokens = append(tokens, res.RefreshToken)
	}
	if refresh.live(1) != 3 {
		t.Fatalf("live tokens = %d, want 3", refresh.live(1))
	}

	if err := svc.LogoutAll(ctx, 1); err != nil {
		t.Fatalf("LogoutAll() error: %v", err)
	}
	if refresh.live(1) != 0 {
		t.Errorf("live tokens after LogoutAll = %d", refresh.live(1))
	}
	for _, tok := range tokens {
		if _, err := svc.Refresh(ctx, tok); !errors.Is(err, ErrTokenRevoked) {
			t.Errorf("Refresh() after LogoutAll error = %v, want revoked", err)
		}
	}
}

func TestAuthService_PasswordReset(t *testing.T) {
	svc, users, refresh, resets := newAuthFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Login(ctx, &LoginInput{Username: "marketing", Password: "rahasia123"}); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	token, err := svc.ForgotPassword(ctx, "mkt@eloan.id")
	if err != nil || token == "" {
		t.Fatalf("ForgotPassword() = %q, %v", token, err)
	}
	if tok, err := svc.ForgotPassword(ctx, "nobody@eloan.id"); err != nil || tok != "" {
		t.Errorf("unknown email = %q, %v; want silent success", tok, err)
	}

	tests := []struct {
		name    string
		input   ResetPasswordInput
		wantErr error
	}{
		{"mismatch", ResetPasswordInput{Token: token, NewPassword: "baru12345", ConfirmPassword: "baru12346"}, ErrPasswordMismatch},
		{"weak", ResetPasswordInput{Token: token, NewPassword: "abcdefgh", ConfirmPassword: "abcdefgh"}, ErrWeakPassword},
		{"bad token", ResetPasswordInput{Token: "nope", NewPassword: "baru12345", ConfirmPassword: "baru12345"}, ErrInvalidResetToken},
		{"ok", ResetPasswordInput{Token: token, NewPassword: "baru12345", ConfirmPassword: "baru12345"}, nil},
		{"reused", ResetPasswordInput{Token: token, NewPassword: "baru12345", ConfirmPassword: "baru12345"}, ErrInvalidResetToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			if err := svc.ResetPassword(ctx, &in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ResetPassword() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if !password.Verify("baru12345", users.users[1].Password) {
		t.Errorf("password not updated")
	}
	if refresh.live(1) != 0 {
		t.Errorf("sessions not revoked after reset")
	}

	expired, _ := svc.ForgotPassword(ctx, "mkt@eloan.id")
	svc.now = func() time.Time { return now.Add(time.Hour) }
	err = svc.ResetPassword(ctx, &ResetPasswordInput{Token: expired, NewPassword: "lagi12345", ConfirmPassword: "lagi12345"})
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expired token error = %v", err)
	}
	if len(resets.rows) != 2 {
		t.Errorf("reset rows = %d, want 2", len(resets.rows))
	}
}
