package session

import (
	"eloan-must/internal/core/domain"
	"eloan-must/internal/pkg/jwt"
)

// FromToken builds a credential from an access token's claims. The
// signature is not checked here; the server re-validates every call.
func FromToken(accessToken, refreshToken string) (*Credential, error) {
	claims, err := jwt.ParseUnverified(accessToken)
	if err != nil {
		return nil, err
	}

	cred := &Credential{
		Token:        accessToken,
		RefreshToken: refreshToken,
		Subject:      claims.Subject,
		UserID:       claims.UserID,
		Username:     claims.Username,
		Email:        claims.Email,
		Roles:        domain.ParseRoles(claims.Roles),
		Permissions:  claims.Permissions,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}
	return cred, nil
}
