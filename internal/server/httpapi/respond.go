package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatserver/internal/common"
)

// Messages sent to clients. Internal reasons never appear here.
const (
	msgForbidden      = "forbidden"
	msgBadCredentials = "invalid email or password"
	msgDuplicateEmail = "email already registered"
	msgBadRequest     = "invalid request"
	msgInternal       = "internal error"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor collapses service errors into an HTTP status and a public message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusForbidden, msgForbidden
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusForbidden, msgBadCredentials
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, msgDuplicateEmail
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
