package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/cryptox"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
	"github.com/dmitrijs2005/chatserver/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	iss, ver := newKeys(t)
	pool := cryptox.NewPool(cryptox.NewHasher(cryptox.Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}), 2)
	svc := services.NewUserService(users.NewMemoryRepository(), pool, iss, time.Hour, logging.Nop{})
	return New(svc, ver, logging.Nop{}).Routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) session {
	t.Helper()
	var s session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestSignupSigninFlow(t *testing.T) {
	h := newRouter(t)
	creds := map[string]string{"fullname": "Alice", "email": "a@example.com", "password": "correct horse"}

	rec := do(t, h, http.MethodPost, "/api/signup", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "argon2id")
	assert.NotContains(t, rec.Body.String(), "correct horse")
	signup := decodeSession(t, rec)
	assert.NotEmpty(t, signup.User.ID)
	assert.NotEmpty(t, signup.Token)

	rec = do(t, h, http.MethodPost, "/api/signup", creds, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"email already registered"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/signin", map[string]string{"email": "a@example.com", "password": "correct horse"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signin := decodeSession(t, rec)
	assert.Equal(t, signup.User.ID, signin.User.ID)

	rec = do(t, h, http.MethodGet, "/api/me", nil, signin.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me meResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, signup.User.ID, me.UserID)
	assert.False(t, me.UserIsAdmin)

	wrongPw := do(t, h, http.MethodPost, "/api/signin", map[string]string{"email": "a@example.com", "password": "battery staple"}, "")
	noUser := do(t, h, http.MethodPost, "/api/signin", map[string]string{"email": "ghost@example.com", "password": "correct horse"}, "")
	assert.Equal(t, http.StatusForbidden, wrongPw.Code)
	assert.Equal(t, wrongPw.Code, noUser.Code)
	assert.Equal(t, wrongPw.Body.String(), noUser.Body.String(), "responses must not reveal whether the email exists")
}

func TestProtectedRoutes(t *testing.T) {
	h := newRouter(t)
	rec := do(t, h, http.MethodPost, "/api/signup",
		map[string]string{"fullname": "Bob", "email": "b@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeSession(t, rec).Token

	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/chats"},
		{http.MethodPatch, "/api/chats"},
		{http.MethodDelete, "/api/chats"},
		{http.MethodGet, "/api/messages"},
	} {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := do(t, h, rt.method, rt.path, nil, "")
			assertForbidden(t, rec)

			rec = do(t, h, rt.method, rt.path, nil, token)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello")

	rec = do(t, h, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth_verifications_total")
}

func TestSignup_BadInput(t *testing.T) {
	h := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/signup", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/signup", map[string]string{"fullname": "A", "email": "", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email")
}

func TestSignup_ShortPasswordAndMixedCaseEmail(t *testing.T) {
	h := newRouter(t)

	rec := do(t, h, http.MethodPost, "/api/signup", map[string]string{"fullname": "Ann", "email": "Ann@Example.com", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Ann@Example.com", decodeSession(t, rec).User.Email)

	rec = do(t, h, http.MethodPost, "/api/signup", map[string]string{"fullname": "Ann", "email": "ann@example.com", "password": "pw"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/signin", map[string]string{"email": "Ann@Example.com", "password": "pw"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingUsers struct{ err error }

func (f failingUsers) Register(context.Context, string, string, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) Login(context.Context, string, string) (*models.User, error) {
	return nil, f.err
}
func (f failingUsers) IssueToken(*models.User) (string, error) { return "", f.err }

func TestInternalErrorsAreOpaque(t *testing.T) {
	_, ver := newKeys(t)
	for _, err := range []error{
		common.ErrCorruptCredentialRecord,
		common.ErrPersistence,
		common.ErrHashing,
		errors.New("anything else"),
	} {
		h := New(failingUsers{err: err}, ver, logging.Nop{}).Routes()

		rec := do(t, h, http.MethodPost, "/api/signin", map[string]string{"email": "a@example.com", "password": "x"}, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{common.ErrInvalidToken, http.StatusForbidden},
		{common.ErrorUnauthorized, http.StatusForbidden},
		{common.ErrDuplicateEmail, http.StatusConflict},
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrPersistence, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, got, tt.err.Error())
	}
}
