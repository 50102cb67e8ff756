package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserInactive      = errors.New("user account is inactive")
	ErrRoleNotFound      = errors.New("role not found")
)

// Loan errors
var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrInvalidTransition       = errors.New("invalid loan status transition")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)

// Plafond errors
var (
	ErrPlafondNotFound  = errors.New("plafond not found")
	ErrPlafondInvalid   = errors.New("plafond ranges are invalid")
	ErrPlafondCodeTaken = errors.New("plafond code already exists")
)

// Notification errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)
