// Package common defines shared constants and sentinel errors used across
// the chat server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrPersistence    = errors.New("persistence failure")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Credential errors.
	ErrHashing                 = errors.New("password hashing failed")
	ErrCorruptCredentialRecord = errors.New("corrupt credential record")

	// Auth errors. Every token rejection also matches ErrInvalidToken.
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrBadSignature     = errors.New("bad token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingToken     = errors.New("missing bearer token")
)
