package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ResetDispatcher hands reset requests to the background worker.
type ResetDispatcher interface {
	EnqueueResetRequest(ctx context.Context, email string) error
}

// ResetInitiatedMessage is returned by forgot-password for every input.
const ResetInitiatedMessage = "If the user exists, a password reset has been initiated"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	dispatcher ResetDispatcher
	events     EventRecorder
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, dispatcher ResetDispatcher, events EventRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if events == nil {
		events = nopRecorder{}
	}
	return &Handler{logger: logger, service: service, dispatcher: dispatcher, events: events}
}

// MountRoutes registers auth routes on the provided router. gate protects /me.
func (h *Handler) MountRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/reset-password", h.handleResetPassword)
	r.With(gate).Get("/me", h.handleMe)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input RegisterInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Register(r.Context(), input)
	if err != nil {
		h.fail(w, EventRegister, "register", err)
		return
	}
	h.events.RecordAuthEvent(EventRegister, OutcomeSuccess)
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, EventLogin, "login", err)
		return
	}
	h.events.RecordAuthEvent(EventLogin, OutcomeSuccess)
	httpx.JSON(w, http.StatusOK, result)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	email := NormalizeEmail(req.Email)
	if email == "" {
		httpx.RespondError(w, shared.NewValidationError("email is required", map[string]string{"email": "is required"}))
		return
	}
	if err := h.dispatcher.EnqueueResetRequest(r.Context(), email); err != nil {
		h.fail(w, EventResetRequest, "enqueue reset request", err)
		return
	}
	h.events.RecordAuthEvent(EventResetRequest, OutcomeSuccess)
	httpx.JSON(w, http.StatusOK, httpx.Message{Message: ResetInitiatedMessage})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RedeemReset(r.Context(), req.Token, req.NewPassword); err != nil {
		h.fail(w, EventResetRedeem, "reset password", err)
		return
	}
	h.events.RecordAuthEvent(EventResetRedeem, OutcomeSuccess)
	httpx.JSON(w, http.StatusOK, httpx.Message{Message: "Password has been reset"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	user, err := h.service.CurrentUser(r.Context(), identity)
	if err != nil {
		h.logger.Warn("load current user", slog.String("user_id", identity.UserID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) fail(w http.ResponseWriter, event, op string, err error) {
	status := httpx.StatusFor(err)
	outcome := OutcomeFailure
	if status >= http.StatusInternalServerError {
		outcome = OutcomeError
		h.logger.Error(op, slog.Any("error", err))
	} else {
		h.logger.Info(op+" rejected", slog.Any("error", err))
	}
	h.events.RecordAuthEvent(event, outcome)
	httpx.RespondError(w, err)
}
