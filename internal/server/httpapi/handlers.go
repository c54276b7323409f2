// Package httpapi is the HTTP boundary of the chat server: JSON handlers for
// signup and signin, the bearer-token gate in front of protected routes, and
// request logging.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"github.com/dmitrijs2005/chatserver/internal/server/obs"
	"github.com/dmitrijs2005/chatserver/internal/server/services"
)

const maxBodyBytes = 1 << 20

// UserService is the account API the handlers need.
type UserService interface {
	Register(ctx context.Context, fullname, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(u *models.User) (string, error)
}

type API struct {
	users    UserService
	verifier TokenVerifier
	logger   logging.Logger
}

func New(users UserService, verifier TokenVerifier, logger logging.Logger) *API {
	return &API{users: users, verifier: verifier, logger: logger.With("module", "http_api")}
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type meResponse struct {
	UserID      string    `json:"user_id"`
	UserIsAdmin bool      `json:"user_is_admin"`
	UserCountry string    `json:"user_country"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func decode(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		a.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	respondError(w, status, msg)
}

// Signup handles POST /api/signup.
func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.RegistrationInput
	if err := decode(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	u, err := a.users.Register(r.Context(), in.FullName, in.Email, in.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	token, err := a.users.IssueToken(u)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: u, Token: token})
}

// Signin handles POST /api/signin. Unknown email and wrong password produce
// the same 403 body.
func (a *API) Signin(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decode(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	u, err := a.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			obs.AuthLogins.WithLabelValues("rejected").Inc()
		} else {
			obs.AuthLogins.WithLabelValues("error").Inc()
		}
		a.fail(w, r, err)
		return
	}

	token, err := a.users.IssueToken(u)
	if err != nil {
		obs.AuthLogins.WithLabelValues("error").Inc()
		a.fail(w, r, err)
		return
	}
	obs.AuthLogins.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

// Me handles GET /api/me and echoes the caller's verified claims.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		UserID:      claims.Subject,
		UserIsAdmin: claims.UserIsAdmin,
		UserCountry: claims.UserCountry,
		ExpiresAt:   claims.ExpiresAt,
	})
}

// resource answers the chat and message routes. Their storage lives in a
// separate service; here they only prove the gate ran.
func (a *API) resource(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			respondError(w, http.StatusForbidden, msgForbidden)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"resource": name,
			"method":   r.Method,
			"user_id":  claims.Subject,
		})
	}
}

func index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h1>Hello, World!</h1>"))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Routes builds the mux. Everything under /api except signup and signin
// sits behind RequireAuth.
func (a *API) Routes() http.Handler {
	protect := RequireAuth(a.verifier, a.logger)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", index)
	mux.HandleFunc("GET /healthz", healthz)
	mux.Handle("GET /metrics", obs.Handler())

	mux.HandleFunc("POST /api/signup", a.Signup)
	mux.HandleFunc("POST /api/signin", a.Signin)

	mux.Handle("GET /api/me", protect(http.HandlerFunc(a.Me)))
	mux.Handle("GET /api/chats", protect(a.resource("chat")))
	mux.Handle("PATCH /api/chats", protect(a.resource("chat")))
	mux.Handle("DELETE /api/chats", protect(a.resource("chat")))
	mux.Handle("GET /api/messages", protect(a.resource("message")))

	var h http.Handler = mux
	h = MaxBodyBytes(maxBodyBytes)(h)
	h = Recover(a.logger)(h)
	h = Logging(a.logger)(h)
	return h
}
