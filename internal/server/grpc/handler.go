package grpc

import (
	"context"

	"github.com/dmitrijs2005/mls/internal/server/protocol"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ListLeases returns {"leases": [{"user": ..., "expires": ...}]}, sorted by user.
func (s *GRPCServer) ListLeases(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot := s.leases.Snapshot()

	items := make([]interface{}, 0, len(snapshot))
	for _, l := range snapshot {
		items = append(items, map[string]interface{}{
			"user":    l.UserID,
			"expires": l.ExpiresAt.Format(protocol.TimeLayout),
		})
	}

	out, err := structpb.NewStruct(map[string]interface{}{"leases": items})
	if err != nil {
		s.logger.Error(ctx, "Encode lease list failed", "error", err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return out, nil
}

func (s *GRPCServer) Shutdown(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.logger.Info(ctx, "Shutdown requested", "operator", operatorFromContext(ctx))
	if s.shutdown != nil {
		s.shutdown()
	}
	return &emptypb.Empty{}, nil
}
