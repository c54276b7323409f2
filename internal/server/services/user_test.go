package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/cryptox"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/auth/authtest"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var cheapParams = cryptox.Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func newUserService(t *testing.T, repo users.Repository) (*UserService, *auth.Verifier) {
	t.Helper()
	k := authtest.Key(t, "primary")
	iss, err := auth.NewIssuer(k)
	require.NoError(t, err)
	ver, err := auth.NewVerifier(&k.PublicKey)
	require.NoError(t, err)

	pool := cryptox.NewPool(cryptox.NewHasher(cheapParams), 2)
	return NewUserService(repo, pool, iss, time.Hour, logging.Nop{}), ver
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	findOut *models.User
	findErr error

	created []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.created = append(f.created, u)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

// --- tests ---

func TestRegisterLogin_Scenario(t *testing.T) {
	svc, _ := newUserService(t, users.NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, "Alice", "a@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Empty(t, u.PasswordHash, "hash never leaves the service")

	_, err = svc.Register(ctx, "Alice Again", "a@example.com", "another password")
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	got, err := svc.Login(ctx, "a@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, wrongPw := svc.Login(ctx, "a@example.com", "battery staple")
	_, noUser := svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, wrongPw, common.ErrorUnauthorized)
	assert.ErrorIs(t, noUser, common.ErrorUnauthorized)
	assert.Equal(t, wrongPw.Error(), noUser.Error(), "no distinguishable signal")
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	repo := users.NewMemoryRepository()
	svc, _ := newUserService(t, repo)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Ann", "Ann@Example.com", "password-one")
	require.NoError(t, err)
	assert.Equal(t, "Ann@Example.com", first.Email)

	second, err := svc.Register(ctx, "Other Ann", "ann@example.com", "password-two")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	stored, err := repo.FindByEmail(ctx, "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann@Example.com", stored.Email)

	u, err := svc.Login(ctx, "Ann@Example.com", "password-one")
	require.NoError(t, err)
	assert.Equal(t, first.ID, u.ID)

	u, err = svc.Login(ctx, "ann@example.com", "password-two")
	require.NoError(t, err)
	assert.Equal(t, second.ID, u.ID)

	_, err = svc.Login(ctx, "ANN@EXAMPLE.COM", "password-one")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRegister_AcceptsAnyNonEmptyCredentials(t *testing.T) {
	svc, _ := newUserService(t, users.NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.Register(ctx, "A", "not-an-email", "pw")
	require.NoError(t, err)

	got, err := svc.Login(ctx, "not-an-email", "pw")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newUserService(t, users.NewMemoryRepository())

	tests := []struct {
		name, fullname, email, password string
	}{
		{"empty name", "", "a@example.com", "password123"},
		{"empty email", "Alice", "", "password123"},
		{"empty password", "Alice", "a@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.fullname, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestRegister_StoresArgonHashNotPlaintext(t *testing.T) {
	repo := &fakeUsersRepo{createOut: &models.User{ID: "u-1", PasswordHash: "$argon2id$x"}}
	svc, _ := newUserService(t, repo)

	u, err := svc.Register(context.Background(), "Alice", "a@example.com", "password123")
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)

	require.Len(t, repo.created, 1)
	stored := repo.created[0].PasswordHash
	assert.NotContains(t, stored, "password123")
	assert.Regexp(t, `^\$argon2id\$v=19\$m=64,t=1,p=1\$`, stored)
}

func TestRegister_PersistenceFailure(t *testing.T) {
	svc, _ := newUserService(t, &fakeUsersRepo{createErr: errors.New("db down")})

	_, err := svc.Register(context.Background(), "Alice", "a@example.com", "password123")
	assert.ErrorIs(t, err, common.ErrPersistence)
	assert.NotErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestRegister_CancelledContext(t *testing.T) {
	svc, _ := newUserService(t, users.NewMemoryRepository())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Register(ctx, "Alice", "a@example.com", "password123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogin_Failures(t *testing.T) {
	t.Run("repository error", func(t *testing.T) {
		svc, _ := newUserService(t, &fakeUsersRepo{findErr: errors.New("db down")})
		_, err := svc.Login(context.Background(), "a@example.com", "password123")
		assert.ErrorIs(t, err, common.ErrPersistence)
	})

	t.Run("corrupt stored hash", func(t *testing.T) {
		svc, _ := newUserService(t, &fakeUsersRepo{findOut: &models.User{ID: "u-1", PasswordHash: "plaintext!"}})
		_, err := svc.Login(context.Background(), "a@example.com", "password123")
		assert.ErrorIs(t, err, common.ErrCorruptCredentialRecord)
		assert.NotErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("empty credentials", func(t *testing.T) {
		svc, _ := newUserService(t, users.NewMemoryRepository())
		_, err := svc.Login(context.Background(), "", "")
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}

func TestIssueToken_CarriesAccountClaims(t *testing.T) {
	svc, ver := newUserService(t, users.NewMemoryRepository())

	tok, err := svc.IssueToken(&models.User{ID: "u-9", IsAdmin: true, Country: "KZ"})
	require.NoError(t, err)

	claims, err := ver.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.Subject)
	assert.Equal(t, auth.CustomClaims{UserIsAdmin: true, UserCountry: "KZ"}, claims.CustomClaims)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}
