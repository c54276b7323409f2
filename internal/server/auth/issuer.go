package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod is the only algorithm issued or accepted.
var SigningMethod = jwt.SigningMethodRS384

// Issuer signs session tokens with the deployment's private key.
type Issuer struct {
	key    *rsa.PrivateKey
	issuer string
	now    func() time.Time
}

type IssuerOption func(*Issuer)

// WithIssuerName sets the "iss" claim on every token.
func WithIssuerName(name string) IssuerOption {
	return func(i *Issuer) { i.issuer = name }
}

// WithIssuerClock overrides time.Now, for tests.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(key *rsa.PrivateKey, opts ...IssuerOption) (*Issuer, error) {
	if key == nil {
		return nil, errors.New("issuer: private key is required")
	}
	i := &Issuer{key: key, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Sign returns a token valid from now until now+ttl. subject may be empty.
func (i *Issuer) Sign(subject string, custom CustomClaims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("issuer: ttl must be positive")
	}

	now := i.now()
	isAdmin := custom.UserIsAdmin
	country := custom.UserCountry

	claims := &tokenClaims{
		UserIsAdmin: &isAdmin,
		UserCountry: &country,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(SigningMethod, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
