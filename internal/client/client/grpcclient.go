package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatserver/internal/common"
	gs "github.com/dmitrijs2005/chatserver/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Identity is what the server reports about the current session.
type Identity struct {
	UserID      string    `json:"user_id"`
	UserIsAdmin bool      `json:"user_is_admin"`
	UserCountry string    `json:"user_country"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set("authorization", common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

// Signin exchanges credentials for a session token, which is kept for later
// calls. It returns the user id.
func (s *GRPCClient) Signin(ctx context.Context, email, password string) (string, error) {
	req, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	if err != nil {
		return "", err
	}

	resp := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, gs.MethodSignin, req, resp); err != nil {
		return "", s.mapError(err)
	}

	fields := resp.GetFields()
	s.SetToken(fields["token"].GetStringValue())

	return fields["user_id"].GetStringValue(), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*Identity, error) {
	resp := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, gs.MethodWhoAmI, &emptypb.Empty{}, resp); err != nil {
		return nil, s.mapError(err)
	}

	fields := resp.GetFields()
	return &Identity{
		UserID:      fields["user_id"].GetStringValue(),
		UserIsAdmin: fields["user_is_admin"].GetBoolValue(),
		UserCountry: fields["user_country"].GetStringValue(),
		ExpiresAt:   time.Unix(int64(fields["expires_at"].GetNumberValue()), 0).UTC(),
	}, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
