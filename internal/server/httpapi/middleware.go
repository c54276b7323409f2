package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/obs"
)

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth admits a request only if it carries a valid bearer token.
// Verified claims are attached to the request context; any failure ends the
// request with 403 {"error":"forbidden"} and next never runs.
func RequireAuth(verifier TokenVerifier, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(verifier, r.Header.Get(common.AuthorizationHeaderName))
			if err != nil {
				reason, _ := auth.ReasonOf(err)
				obs.AuthVerifications.WithLabelValues(string(reason)).Inc()
				logger.Warn(r.Context(), "token rejected", "reason", string(reason), "method", r.Method, "path", r.URL.Path)
				respondError(w, http.StatusForbidden, msgForbidden)
				return
			}

			obs.AuthVerifications.WithLabelValues("ok").Inc()
			ctx := auth.ContextWithClaims(r.Context(), *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(verifier TokenVerifier, header string) (*auth.Claims, error) {
	token, err := auth.ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return verifier.Verify(token)
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Logging records method, route, status and duration of every request and
// feeds the HTTP metrics.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			d := time.Since(start)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveHTTP(r.Method, route, sw.code, d)
			logger.Info(r.Context(), "http request",
				"method", r.Method, "path", r.URL.Path, "status", sw.code, "duration", d)
		})
	}
}

// Recover turns a handler panic into a 500 instead of a dropped connection.
func Recover(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error(r.Context(), "handler panic", "panic", p, "path", r.URL.Path)
					respondError(w, http.StatusInternalServerError, msgInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodyBytes limits request body size.
func MaxBodyBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
