package auth

import (
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks tokens against the deployment's public key. It cannot sign.
type Verifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

type verifierConfig struct {
	issuer string
	leeway time.Duration
	now    func() time.Time
}

type VerifierOption func(*verifierConfig)

// WithExpectedIssuer rejects tokens whose "iss" differs from name.
func WithExpectedIssuer(name string) VerifierOption {
	return func(c *verifierConfig) { c.issuer = name }
}

// WithLeeway tolerates clock skew on exp and nbf.
func WithLeeway(d time.Duration) VerifierOption {
	return func(c *verifierConfig) { c.leeway = d }
}

// WithVerifierClock overrides time.Now, for tests.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(c *verifierConfig) { c.now = now }
}

func NewVerifier(key *rsa.PublicKey, opts ...VerifierOption) (*Verifier, error) {
	if key == nil {
		return nil, errors.New("verifier: public key is required")
	}

	cfg := verifierConfig{now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(cfg.now),
	}
	if cfg.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.issuer))
	}
	if cfg.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(cfg.leeway))
	}

	return &Verifier{key: key, parser: jwt.NewParser(parserOpts...)}, nil
}

// Verify parses token, checks its RS384 signature, decodes the claims and
// enforces exp/nbf/iat. Any failure is a *VerificationError.
func (v *Verifier) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, reject(ReasonMissing, nil)
	}

	wire := &tokenClaims{}
	parsed, err := v.parser.ParseWithClaims(token, wire, v.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, reject(ReasonInvalidClaims, nil)
	}

	return wire.toClaims(), nil
}

func (v *Verifier) keyFunc(*jwt.Token) (any, error) {
	return v.key, nil
}
