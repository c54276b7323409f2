package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/server/auth"
	"github.com/dmitrijs2005/chatserver/internal/server/obs"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.PermissionDenied, "forbidden")
	}

	out, err := structpb.NewStruct(map[string]any{
		"user_id":       claims.Subject,
		"user_is_admin": claims.UserIsAdmin,
		"user_country":  claims.UserCountry,
		"expires_at":    claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

func (s *GRPCServer) Signin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	email := fields["email"].GetStringValue()
	password := fields["password"].GetStringValue()

	user, err := s.users.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			obs.AuthLogins.WithLabelValues("rejected").Inc()
			return nil, status.Error(codes.PermissionDenied, "invalid email or password")
		}
		obs.AuthLogins.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "signin failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	token, err := s.users.IssueToken(user)
	if err != nil {
		obs.AuthLogins.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}

	obs.AuthLogins.WithLabelValues("ok").Inc()
	return structpb.NewStruct(map[string]any{"user_id": user.ID, "token": token})
}
