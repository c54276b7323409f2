package grpc

import (
	"context"

	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/obs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// authorizationMetadataKey is the lower-cased Authorization header.
const authorizationMetadataKey = "authorization"

// publicMethods skip the token check.
var publicMethods = map[string]struct{}{
	MethodSignin:                   {},
	"/grpc.health.v1.Health/Check": {},
	"/grpc.health.v1.Health/List":  {},
}

// accessTokenInterceptor verifies the bearer token of every non-public call
// and puts the claims into ctx. Failures end the call with PermissionDenied.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := publicMethods[info.FullMethod]; ok {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(authorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	claims, err := s.authenticate(header)
	if err != nil {
		reason, _ := auth.ReasonOf(err)
		obs.AuthVerifications.WithLabelValues(string(reason)).Inc()
		s.logger.Warn(ctx, "token rejected", "reason", string(reason), "method", info.FullMethod)
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	obs.AuthVerifications.WithLabelValues("ok").Inc()
	return handler(auth.ContextWithClaims(ctx, *claims), req)
}

func (s *GRPCServer) authenticate(header string) (*auth.Claims, error) {
	token, err := auth.ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return s.verifier.Verify(token)
}
