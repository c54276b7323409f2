// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and issuing session tokens.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/cryptox"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
	"github.com/dmitrijs2005/chatserver/internal/shared"
)

// RegistrationInput is what a new account is created from.
type RegistrationInput struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegistrationInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginInput carries signin credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// UserService provides authentication-related operations:
// - Register: hash the password and create the account
// - Login: verify credentials without revealing whether the email exists
// - IssueToken: mint an RS384 session token for an account
type UserService struct {
	users    users.Repository
	hashes   *cryptox.Pool
	issuer   *auth.Issuer
	tokenTTL time.Duration
	logger   logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService wires a UserService. tokenTTL is the validity of issued tokens.
func NewUserService(repo users.Repository, hashes *cryptox.Pool, issuer *auth.Issuer, tokenTTL time.Duration, logger logging.Logger) *UserService {
	return &UserService{
		users:    repo,
		hashes:   hashes,
		issuer:   issuer,
		tokenTTL: tokenTTL,
		logger:   logger.With("module", "user_service"),
	}
}

// Register creates an account. The plaintext password is only handed to the
// hashing pool. A taken email yields common.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, fullname, email, password string) (*models.User, error) {
	in := RegistrationInput{FullName: fullname, Email: email, Password: password}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := shared.WithSecret(in.Password, func(pw []byte) (string, error) {
		return s.hashes.Hash(ctx, pw)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrHashing, err)
	}

	u, err := s.users.Create(ctx, &models.User{FullName: in.FullName, Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u.Sanitized(), nil
}

// Login returns the account for email if password matches. Unknown email and
// wrong password both yield common.ErrorUnauthorized, and an unknown email
// still costs one argon2 verification.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	in := LoginInput{Email: email, Password: password}
	if err := in.Validate(); err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerification(ctx, in.Password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "error searching user", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	ok, err := shared.WithSecret(in.Password, func(pw []byte) (bool, error) {
		return s.hashes.Verify(ctx, pw, user.PasswordHash)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Error(ctx, "stored credential is unreadable", "user_id", user.ID, "error", err)
		return nil, err
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	return user.Sanitized(), nil
}

// IssueToken signs a session token for u with the configured validity.
func (s *UserService) IssueToken(u *models.User) (string, error) {
	token, err := s.issuer.Sign(u.ID, auth.CustomClaims{UserIsAdmin: u.IsAdmin, UserCountry: u.Country}, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

// burnVerification runs a verification against a throwaway hash so that a
// miss on email costs the same as a wrong password.
func (s *UserService) burnVerification(ctx context.Context, password string) {
	s.dummyOnce.Do(func() {
		seed := make([]byte, 32)
		_, _ = rand.Read(seed)
		h, err := s.hashes.Hash(context.Background(), seed)
		if err != nil {
			s.logger.Warn(ctx, "dummy hash unavailable", "error", err)
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = shared.WithSecret(password, func(pw []byte) (bool, error) {
		return s.hashes.Verify(ctx, pw, s.dummyHash)
	})
}
