// Package grpc exposes the identity API over gRPC behind the same bearer
// token gate as the HTTP boundary.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/chatserver/internal/logging"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the subset of services.UserService used here.
type UserService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	IssueToken(u *models.User) (string, error)
}

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	address  string
	users    UserService
	verifier TokenVerifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, us UserService, v TokenVerifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		verifier: v,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers services
	srv.RegisterService(&IdentityServiceDesc, s)
	healthpb.RegisterHealthServer(srv, health.NewServer())

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
