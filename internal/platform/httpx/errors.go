// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// StatusFor maps a domain error onto its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrDuplicateKey),
		errors.Is(err, shared.ErrInvalidResetToken):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Internal errors never expose their message.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusBadRequest:
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			JSON(w, status, ProblemDetail{
				Title:  "Validation Failed",
				Status: status,
				Detail: verr.Error(),
				Fields: verr.Fields,
			})
			return
		}
		Problem(w, status, "Bad Request", publicMessage(err))
	case http.StatusUnauthorized:
		Problem(w, status, "Unauthorized", publicMessage(err))
	case http.StatusNotFound:
		Problem(w, status, "Not Found", publicMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// publicMessage returns the sentinel text rather than the wrapped chain so
// that internal context attached while propagating never reaches the client.
func publicMessage(err error) string {
	var pub *PublicError
	if errors.As(err, &pub) {
		return pub.Msg
	}
	for _, sentinel := range []error{
		shared.ErrDuplicateKey,
		shared.ErrInvalidResetToken,
		shared.ErrInvalidCredentials,
		shared.ErrInvalidToken,
		shared.ErrExpiredToken,
		shared.ErrNotFound,
		shared.ErrValidation,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return ""
}

// PublicError decorates a sentinel with a message that is safe to show clients.
type PublicError struct {
	Msg string
	Err error
}

// WithMessage wraps err so RespondError shows msg instead of the sentinel text.
func WithMessage(err error, msg string) error {
	return &PublicError{Msg: msg, Err: err}
}

func (e *PublicError) Error() string { return e.Msg }

// Unwrap exposes the underlying error.
func (e *PublicError) Unwrap() error { return e.Err }
