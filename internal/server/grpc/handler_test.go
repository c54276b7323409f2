package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func signin(ctx context.Context, t *testing.T, f *fixture, email, password string) (*structpb.Struct, error) {
	t.Helper()
	conn := f.dial(t)
	req, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, MethodSignin, req, out)
	return out, err
}

func TestIdentity_SigninAndWhoAmI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "Bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	conn := f.dial(t)

	req, err := structpb.NewStruct(map[string]any{"email": "bob@example.com", "password": "hunter2hunter2"})
	require.NoError(t, err)
	session := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, MethodSignin, req, session))

	token := session.GetFields()["token"].GetStringValue()
	userID := session.GetFields()["user_id"].GetStringValue()
	require.NotEmpty(t, token)
	require.NotEmpty(t, userID)

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	me := new(structpb.Struct)
	require.NoError(t, conn.Invoke(authed, MethodWhoAmI, &emptypb.Empty{}, me))

	fields := me.GetFields()
	assert.Equal(t, userID, fields["user_id"].GetStringValue())
	assert.False(t, fields["user_is_admin"].GetBoolValue())
	assert.Equal(t, "", fields["user_country"].GetStringValue())
	assert.Positive(t, fields["expires_at"].GetNumberValue())
}

func TestIdentity_WhoAmIWithoutToken(t *testing.T) {
	conn := newFixture(t).dial(t)

	err := conn.Invoke(context.Background(), MethodWhoAmI, &emptypb.Empty{}, new(structpb.Struct))
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.PermissionDenied, st.Code())
	assert.Equal(t, "forbidden", st.Message())
}

func TestIdentity_SigninRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "Eve", "eve@example.com", "long enough")
	require.NoError(t, err)

	for _, creds := range [][2]string{
		{"eve@example.com", "wrong password"},
		{"nobody@example.com", "long enough"},
	} {
		_, err := signin(ctx, t, f, creds[0], creds[1])
		st, ok := status.FromError(err)
		require.True(t, ok)
		assert.Equal(t, codes.PermissionDenied, st.Code())
		assert.Equal(t, "invalid email or password", st.Message())
	}
}

func TestHealthIsPublic(t *testing.T) {
	conn := newFixture(t).dial(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
