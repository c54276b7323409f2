// Package auth signs and verifies RS384 session tokens carrying the chat
// server's authorization claims, and carries verified claims through a
// request context.
//
// The Issuer holds only the private key and the Verifier holds only the
// public key. Both are immutable after construction and safe for concurrent
// use by any number of goroutines.
package auth

import (
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims is the application payload of a session token.
type CustomClaims struct {
	UserIsAdmin bool   `json:"user_is_admin"`
	UserCountry string `json:"user_country"`
}

// Claims is the result of a successful verification. It is rebuilt from the
// token on every call and never shared between requests.
type Claims struct {
	CustomClaims
	Subject   string
	Issuer    string
	ID        string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// tokenClaims is the wire shape. Custom fields are pointers so that a token
// lacking them can be told apart from one carrying zero values.
type tokenClaims struct {
	UserIsAdmin *bool   `json:"user_is_admin"`
	UserCountry *string `json:"user_country"`
	jwt.RegisteredClaims
}

// Validate is invoked by the jwt validator after the registered claims pass.
func (c *tokenClaims) Validate() error {
	if c.UserIsAdmin == nil || c.UserCountry == nil {
		return common.ErrInvalidClaims
	}
	return nil
}

func (c *tokenClaims) toClaims() *Claims {
	out := &Claims{
		CustomClaims: CustomClaims{
			UserIsAdmin: *c.UserIsAdmin,
			UserCountry: *c.UserCountry,
		},
		Subject: c.Subject,
		Issuer:  c.RegisteredClaims.Issuer,
		ID:      c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.NotBefore != nil {
		out.NotBefore = c.NotBefore.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
