package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// EventRecorder counts authentication outcomes.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, string) {}

// Auth event names.
const (
	EventRegister     = "register"
	EventLogin        = "login"
	EventResetRequest = "reset_request"
	EventResetRedeem  = "reset_redeem"
	EventGate         = "gate"
)

// Auth event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

const gateFailureDetail = "authentication required"

// Gate returns middleware that admits only requests bearing a valid session
// token. On success the identity is attached to the request context. Every
// rejection gets the same 401 body; the reason is logged.
func Gate(verifier Verifier, logger *slog.Logger, events EventRecorder) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = nopRecorder{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w, r, logger, events, "missing bearer token", nil)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				reject(w, r, logger, events, "token rejected", err)
				return
			}
			events.RecordAuthEvent(EventGate, OutcomeSuccess)
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{
				UserID:   claims.UserID,
				IssuedAt: claims.IssuedAt,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, events EventRecorder, reason string, err error) {
	events.RecordAuthEvent(EventGate, OutcomeFailure)
	attrs := []any{slog.String("reason", reason), slog.String("path", r.URL.Path)}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	logger.Warn("auth gate rejected request", attrs...)
	w.Header().Set("WWW-Authenticate", `Bearer realm="backoffice"`)
	httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", gateFailureDetail)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
