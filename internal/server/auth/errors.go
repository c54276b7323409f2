package auth

import (
	"errors"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Reason names why a token was rejected. It is meant for logs and metrics
// only and must never be echoed to the caller.
type Reason string

const (
	ReasonMissing       Reason = "missing"
	ReasonMalformed     Reason = "malformed"
	ReasonBadSignature  Reason = "bad_signature"
	ReasonExpired       Reason = "expired"
	ReasonNotYetValid   Reason = "not_yet_valid"
	ReasonInvalidClaims Reason = "invalid_claims"
)

var reasonErrors = map[Reason]error{
	ReasonMissing:       common.ErrMissingToken,
	ReasonMalformed:     common.ErrMalformedToken,
	ReasonBadSignature:  common.ErrBadSignature,
	ReasonExpired:       common.ErrTokenExpired,
	ReasonNotYetValid:   common.ErrTokenNotYetValid,
	ReasonInvalidClaims: common.ErrInvalidClaims,
}

// VerificationError is returned for every rejected token. It matches
// common.ErrInvalidToken plus the sentinel of its Reason via errors.Is.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return "token rejected (" + string(e.Reason) + "): " + e.Err.Error()
	}
	return "token rejected (" + string(e.Reason) + ")"
}

func (e *VerificationError) Unwrap() []error {
	errs := []error{common.ErrInvalidToken}
	if sentinel, ok := reasonErrors[e.Reason]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ReasonOf reports the rejection reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}

func reject(reason Reason, err error) error {
	return &VerificationError{Reason: reason, Err: err}
}

// classify maps golang-jwt errors onto our reasons. Signature problems are
// checked before time bounds because the library verifies the signature first.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return reject(ReasonMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return reject(ReasonBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return reject(ReasonExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return reject(ReasonNotYetValid, err)
	default:
		return reject(ReasonInvalidClaims, err)
	}
}
