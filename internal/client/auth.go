package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"eloan-must/internal/core/domain"
	"eloan-must/internal/core/session"
)

// LoginShape tags which login payload layout the server sent
type LoginShape int

const (
	ShapeNestedUser LoginShape = iota + 1
	ShapeFlatFields
)

// LoginVariant is the raw login payload in one of its two layouts.
// Exactly one of Nested and Flat is set, matching Shape.
type LoginVariant struct {
	Shape  LoginShape
	Nested *NestedUserLogin
	Flat   *FlatFieldsLogin
}

// NestedUserLogin is {accessToken, refreshToken, tokenType, expiresIn, user}
type NestedUserLogin struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         domain.User `json:"user"`
}

// FlatFieldsLogin carries the user fields next to the tokens
type FlatFieldsLogin struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int64     `json:"expiresIn"`
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Roles        roleNames `json:"roles"`
	Permissions  []string  `json:"permissions"`
}

// roleNames accepts ["MARKETING"] as well as [{"id":1,"name":"MARKETING"}]
type roleNames []string

func (r *roleNames) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			out = append(out, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		out = append(out, obj.Name)
	}
	*r = out
	return nil
}

// LoginResult is a login payload in its single normalized form
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	User         domain.User
}

// ParseLoginVariant detects the payload layout
func ParseLoginVariant(data []byte) (LoginVariant, error) {
	var shape struct {
		User     json.RawMessage `json:"user"`
		Username string          `json:"username"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return LoginVariant{}, ErrInvalidLoginResponse
	}

	switch {
	case len(shape.User) > 0 && !bytes.Equal(shape.User, []byte("null")):
		var n NestedUserLogin
		if err := json.Unmarshal(data, &n); err != nil {
			return LoginVariant{}, ErrInvalidLoginResponse
		}
		return LoginVariant{Shape: ShapeNestedUser, Nested: &n}, nil
	case shape.Username != "":
		var f FlatFieldsLogin
		if err := json.Unmarshal(data, &f); err != nil {
			return LoginVariant{}, ErrInvalidLoginResponse
		}
		return LoginVariant{Shape: ShapeFlatFields, Flat: &f}, nil
	default:
		return LoginVariant{}, ErrInvalidLoginResponse
	}
}

// NormalizeLogin resolves a login payload of either layout
func NormalizeLogin(data []byte) (LoginResult, error) {
	v, err := ParseLoginVariant(data)
	if err != nil {
		return LoginResult{}, err
	}

	switch v.Shape {
	case ShapeNestedUser:
		n := v.Nested
		return LoginResult{
			AccessToken:  n.AccessToken,
			RefreshToken: n.RefreshToken,
			TokenType:    n.TokenType,
			ExpiresIn:    n.ExpiresIn,
			User:         n.User,
		}, nil
	case ShapeFlatFields:
		f := v.Flat
		id := f.UserID
		if id == 0 {
			id = f.ID
		}
		first := f.FirstName
		if first == "" {
			first = f.Username
		}
		roles := make([]domain.RoleInfo, len(f.Roles))
		for i, name := range f.Roles {
			roles[i] = domain.RoleInfo{ID: uint(i), Name: name}
		}
		return LoginResult{
			AccessToken:  f.AccessToken,
			RefreshToken: f.RefreshToken,
			TokenType:    f.TokenType,
			ExpiresIn:    f.ExpiresIn,
			User: domain.User{
				ID:          id,
				Username:    f.Username,
				Email:       f.Email,
				FirstName:   first,
				LastName:    f.LastName,
				Roles:       roles,
				Permissions: f.Permissions,
				Active:      true,
			},
		}, nil
	default:
		return LoginResult{}, ErrInvalidLoginResponse
	}
}

// Login authenticates a staff account. Accounts without an admin role get
// ErrAccessDenied and nothing is stored.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Credential, domain.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusUnauthorized:
				apiErr.Message = msgLoginFailed
			case http.StatusForbidden:
				apiErr.Message = msgLoginForbidden
			}
		}
		return nil, domain.User{}, err
	}

	result, err := NormalizeLogin(env.Data)
	if err != nil {
		return nil, domain.User{}, err
	}
	if result.AccessToken == "" {
		return nil, domain.User{}, ErrInvalidLoginResponse
	}
	if !session.HasAdminRole(result.User.RoleNames()) {
		return nil, domain.User{}, ErrAccessDenied
	}

	cred, err := session.FromToken(result.AccessToken, result.RefreshToken)
	if err != nil {
		// opaque token: fall back to the user the server returned
		cred = &session.Credential{
			Token:        result.AccessToken,
			RefreshToken: result.RefreshToken,
			Subject:      result.User.Username,
			UserID:       result.User.ID,
			Username:     result.User.Username,
			Email:        result.User.Email,
			Roles:        result.User.RoleNames(),
			Permissions:  result.User.Permissions,
		}
	}

	if err := c.tokens.Save(Tokens{AccessToken: result.AccessToken, RefreshToken: result.RefreshToken}); err != nil {
		return nil, domain.User{}, err
	}
	return cred, result.User, nil
}

// Logout revokes the refresh token remotely when possible and always
// clears the local tokens
func (c *Client) Logout(ctx context.Context, cred *session.Credential) error {
	if !cred.Empty() {
		_, _ = c.do(ctx, http.MethodPost, "/auth/logout", cred, map[string]string{
			"refreshToken": cred.RefreshToken,
		})
	}
	return c.tokens.Clear()
}

// LogoutAll revokes every session of the account, then clears the local
// tokens. Unlike Logout the remote error is returned.
func (c *Client) LogoutAll(ctx context.Context, cred *session.Credential) error {
	if err := requireCredential(cred); err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPost, "/auth/logout-all", cred, nil); err != nil {
		return err
	}
	return c.tokens.Clear()
}

// Refresh rotates the refresh token. On failure the stored session is
// cleared.
func (c *Client) Refresh(ctx context.Context, cred *session.Credential) (*session.Credential, error) {
	if cred == nil || cred.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	env, err := c.do(ctx, http.MethodPost, "/auth/refresh-token", nil, map[string]string{
		"refreshToken": cred.RefreshToken,
	})
	if err != nil {
		_ = c.tokens.Clear()
		return nil, err
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload.AccessToken == "" {
		_ = c.tokens.Clear()
		return nil, ErrInvalidLoginResponse
	}
	if payload.RefreshToken == "" {
		payload.RefreshToken = cred.RefreshToken
	}

	if err := c.tokens.Save(Tokens{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}); err != nil {
		return nil, err
	}
	return session.FromToken(payload.AccessToken, payload.RefreshToken)
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context, cred *session.Credential) (domain.User, error) {
	if err := requireCredential(cred); err != nil {
		return domain.User{}, err
	}
	return call[domain.User](ctx, c, http.MethodGet, "/auth/me", cred, nil)
}

// ForgotPassword asks the server to send reset instructions
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/forgot-password", nil, map[string]string{"email": email})
	return err
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/reset-password", nil, map[string]string{
		"token":           token,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	})
	return err
}
