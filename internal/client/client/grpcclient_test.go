package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/cryptox"
	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/auth/authtest"
	gs "github.com/dmitrijs2005/chatserver/internal/server/grpc"
	"github.com/dmitrijs2005/chatserver/internal/server/repositories/users"
	"github.com/dmitrijs2005/chatserver/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T) (*GRPCClient, *services.UserService) {
	t.Helper()
	k := authtest.Key(t, "client")
	iss, err := auth.NewIssuer(k)
	require.NoError(t, err)
	ver, err := auth.NewVerifier(&k.PublicKey)
	require.NoError(t, err)

	pool := cryptox.NewPool(cryptox.NewHasher(cryptox.Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}), 2)
	svc := services.NewUserService(users.NewMemoryRepository(), pool, iss, time.Hour, logging.Nop{})
	srv := gs.NewGRPCServer("bufnet", logging.Nop{}, svc, ver)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	c, err := NewGRPCClient("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = c.Close()
		cancel()
		<-done
	})
	return c, svc
}

func TestGRPCClient_SigninThenWhoAmI(t *testing.T) {
	c, svc := startServer(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "Carol", "carol@example.com", "s3cret-enough")
	require.NoError(t, err)

	_, err = c.WhoAmI(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	id, err := c.Signin(ctx, "carol@example.com", "s3cret-enough")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.NotEmpty(t, c.Token())

	me, err := c.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.UserID)
	assert.False(t, me.UserIsAdmin)
	assert.WithinDuration(t, time.Now().Add(time.Hour), me.ExpiresAt, time.Minute)
}

func TestGRPCClient_SigninWrongPassword(t *testing.T) {
	c, svc := startServer(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dan", "dan@example.com", "s3cret-enough")
	require.NoError(t, err)

	_, err = c.Signin(ctx, "dan@example.com", "nope-nope")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, c.Token())
}

func TestGRPCClient_StaleToken(t *testing.T) {
	c, _ := startServer(t)
	c.SetToken("not.a.token")

	_, err := c.WhoAmI(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestWithAccessToken_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer old", "x-trace", "1")
	ctx = withAccessToken(ctx, "new")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Bearer new"}, md.Get("authorization"))
	assert.Equal(t, []string{"1"}, md.Get("x-trace"))
}

func TestMapError(t *testing.T) {
	s := &GRPCClient{}

	assert.NoError(t, s.mapError(nil))
	assert.ErrorIs(t, s.mapError(status.Error(codes.PermissionDenied, "forbidden")), ErrUnauthorized)
	assert.ErrorIs(t, s.mapError(status.Error(codes.Unauthenticated, "x")), ErrUnauthorized)
	assert.ErrorIs(t, s.mapError(status.Error(codes.Unavailable, "x")), ErrUnavailable)
	assert.ErrorIs(t, s.mapError(status.Error(codes.DeadlineExceeded, "x")), ErrUnavailable)

	other := s.mapError(status.Error(codes.Internal, "boom"))
	assert.False(t, errors.Is(other, ErrUnauthorized))
	assert.Contains(t, other.Error(), "rpc error")
}
