package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

type stubDispatcher struct {
	emails []string
	err    error
}

func (s *stubDispatcher) EnqueueResetRequest(_ context.Context, email string) error {
	if s.err != nil {
		return s.err
	}
	s.emails = append(s.emails, email)
	return nil
}

type handlerFixture struct {
	*fixture
	dispatcher *stubDispatcher
	events     *eventLog
	router     http.Handler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := newFixture(t)
	dispatcher := &stubDispatcher{}
	events := &eventLog{}
	handler := auth.NewHandler(discardLogger(), f.service, dispatcher, events)
	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		handler.MountRoutes(r, auth.Gate(f.service, discardLogger(), events))
	})
	return &handlerFixture{fixture: f, dispatcher: dispatcher, events: events, router: r}
}

func (f *handlerFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	res := f.post(t, "/auth/register", map[string]string{"name": "Ann", "email": "ann@x.com", "password": "p@ss1x"})
	require.Equal(t, http.StatusCreated, res.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "ann@x.com", body["email"])
	assert.NotEmpty(t, body["id"])
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "PasswordHash")

	dup := f.post(t, "/auth/register", map[string]string{"name": "Ann", "email": "ann@x.com", "password": "p@ss1x"})
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Contains(t, dup.Body.String(), "duplicate key")
}

func TestRegisterEndpointValidation(t *testing.T) {
	f := newHandlerFixture(t)
	res := f.post(t, "/auth/register", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, res.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.NewDecoder(res.Body).Decode(&problem))
	assert.Equal(t, "Validation Failed", problem.Title)
	assert.Contains(t, problem.Fields, "name")
	assert.Contains(t, problem.Fields, "email")
}

func TestRegisterEndpointMalformedBody(t *testing.T) {
	f := newHandlerFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginEndpointUniformFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t, "Correct", "correct@x.com", "rightpass")

	wrong := f.post(t, "/auth/login", map[string]string{"email": "correct@x.com", "password": "wrongpass"})
	unknown := f.post(t, "/auth/login", map[string]string{"email": "noone@x.com", "password": "anything"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestLoginAndMe(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t, "Ann", "ann@x.com", "p@ss1x")

	res := f.post(t, "/auth/login", map[string]string{"email": "ann@x.com", "password": "p@ss1x"})
	require.Equal(t, http.StatusOK, res.Code)
	var login struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "ann@x.com", login.User.Email)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	me := httptest.NewRecorder()
	f.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "ann@x.com")

	anon := httptest.NewRecorder()
	f.router.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, anon.Code)
}

func TestForgotPasswordSameResponse(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t, "Ann", "ann@x.com", "p@ss1x")

	known := f.post(t, "/auth/forgot-password", map[string]string{"email": "Ann@x.com"})
	unknown := f.post(t, "/auth/forgot-password", map[string]string{"email": "noone@x.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Code, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
	assert.Contains(t, known.Body.String(), auth.ResetInitiatedMessage)
	assert.Equal(t, []string{"ann@x.com", "noone@x.com"}, f.dispatcher.emails)

	assert.Empty(t, f.store.user("ann@x.com").ResetTokenHash, "reset runs in the worker, not inline")
}

func TestForgotPasswordQueueFailure(t *testing.T) {
	f := newHandlerFixture(t)
	f.dispatcher.err = errors.New("redis down")

	res := f.post(t, "/auth/forgot-password", map[string]string{"email": "ann@x.com"})
	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.NotContains(t, res.Body.String(), "redis")
}

func TestResetPasswordEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.register(t, "Ann", "ann@x.com", "oldpass")
	ticket, err := f.service.RequestReset(context.Background(), "ann@x.com")
	require.NoError(t, err)

	ok := f.post(t, "/auth/reset-password", map[string]string{"token": ticket.Token, "newPassword": "newpass"})
	assert.Equal(t, http.StatusOK, ok.Code)

	again := f.post(t, "/auth/reset-password", map[string]string{"token": ticket.Token, "newPassword": "newpass"})
	assert.Equal(t, http.StatusBadRequest, again.Code)
	assert.Contains(t, again.Body.String(), "invalid or expired reset token")

	login := f.post(t, "/auth/login", map[string]string{"email": "ann@x.com", "password": "newpass"})
	assert.Equal(t, http.StatusOK, login.Code)
}
