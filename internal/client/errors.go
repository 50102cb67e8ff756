package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure
type Kind int

const (
	KindServer Kind = iota
	KindTransport
	KindAuthorization
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Client errors
var (
	ErrAccessDenied         = errors.New("access denied: account has no admin role")
	ErrInvalidLoginResponse = errors.New("unknown login response shape")
	ErrNoCredential         = errors.New("no credential")
	ErrNoRefreshToken       = errors.New("no refresh token available")
	ErrResponseTooLarge     = errors.New("response body exceeds limit")
)

// Operator-facing messages
const (
	msgTransport    = "Tidak dapat terhubung ke server. Periksa koneksi internet Anda."
	msgBadRequest   = "Permintaan tidak valid."
	msgUnauthorized = "Sesi Anda telah berakhir. Silakan login kembali."
	msgForbidden    = "Anda tidak memiliki akses ke halaman ini."
	msgNotFound     = "Data tidak ditemukan."
	msgUnprocessed  = "Data yang dimasukkan tidak valid."
	msgServer       = "Terjadi kesalahan pada server. Silakan coba lagi nanti."

	msgLoginFailed    = "Username atau password salah."
	msgLoginForbidden = "Akses ditolak. Anda tidak memiliki izin untuk mengakses halaman ini."
	msgAccessDenied   = "Akses ditolak. Halaman ini hanya untuk admin internal."
	msgLoginFormat    = "Format data login tidak valid."
	msgGeneric        = "Terjadi kesalahan. Silakan coba lagi."
)

// APIError is a failed API call. Message is safe to show to an operator;
// Err keeps the underlying cause for logs.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Errors  []string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// SessionExpired reports whether the server rejected the credential itself
func (e *APIError) SessionExpired() bool {
	return e.Status == http.StatusUnauthorized
}

// IsSessionExpired reports whether err is an APIError with status 401
func IsSessionExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.SessionExpired()
}

// KindOf returns the kind of an APIError, or KindServer for anything else
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// UserMessage returns the operator-facing text for err
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrAccessDenied):
		return msgAccessDenied
	case errors.Is(err, ErrInvalidLoginResponse):
		return msgLoginFormat
	case errors.Is(err, ErrNoCredential), errors.Is(err, ErrNoRefreshToken):
		return msgUnauthorized
	default:
		return msgGeneric
	}
}

func transportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: msgTransport, Err: err}
}

// statusError classifies a non-2xx response. serverMsg is the envelope
// message, if any.
func statusError(status int, serverMsg string, errs []string) *APIError {
	e := &APIError{Status: status, Errors: errs}
	switch status {
	case http.StatusBadRequest:
		e.Kind, e.Message = KindValidation, orDefault(serverMsg, msgBadRequest)
	case http.StatusUnauthorized:
		e.Kind, e.Message = KindAuthorization, msgUnauthorized
	case http.StatusForbidden:
		e.Kind, e.Message = KindAuthorization, msgForbidden
	case http.StatusNotFound:
		e.Kind, e.Message = KindNotFound, msgNotFound
	case http.StatusConflict:
		e.Kind, e.Message = KindConflict, orDefault(serverMsg, fmt.Sprintf("Error: %d", status))
	case http.StatusUnprocessableEntity:
		e.Kind, e.Message = KindValidation, orDefault(serverMsg, msgUnprocessed)
	case http.StatusInternalServerError:
		e.Kind, e.Message = KindServer, msgServer
	default:
		e.Kind, e.Message = KindServer, orDefault(serverMsg, fmt.Sprintf("Error: %d", status))
	}
	if e.Kind == KindServer && serverMsg != "" {
		e.Err = errors.New(serverMsg)
	}
	return e
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
