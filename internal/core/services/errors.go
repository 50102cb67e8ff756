package services

import (
	"errors"
	"strings"

	"eloan-must/internal/core/domain"
)

// Auth errors
var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrWeakPassword      = errors.New("password must be at least 8 characters with letters and digits")
	ErrInvalidResetToken = errors.New("reset token is invalid or expired")
	ErrTokenRevoked      = errors.New("token revoked")
)

// Loan errors
var (
	ErrInvalidReviewStatus   = errors.New("reviewStatus must be APPROVED")
	ErrInvalidApprovalStatus = errors.New("approvalStatus must be APPROVED or REJECTED")
)

// ValidationError carries field level messages for a 400 response
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidInput
}
