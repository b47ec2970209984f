package shared

import "errors"

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed or tampered session token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a well-formed session token past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidResetToken indicates an unknown, redeemed or expired reset token.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// ValidationError carries a user facing explanation and unwraps to ErrValidation.
type ValidationError struct {
	Fields map[string]string
	Msg    string
}

// NewValidationError builds a ValidationError with a summary message.
func NewValidationError(msg string, fields map[string]string) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Msg == "" {
		return ErrValidation.Error()
	}
	return e.Msg
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsAuthFailure reports whether err is one of the session token failures.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken)
}
