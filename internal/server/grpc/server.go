// Package grpc exposes the operator admin API: listing active leases and
// shutting the server down.
package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/dmitrijs2005/mls/internal/server/leases"
	"google.golang.org/grpc"
)

var ErrNoSecret = errors.New("admin API requires a secret key")

// LeaseLister is the read side of the lease table.
type LeaseLister interface {
	Snapshot() []leases.Lease
}

type GRPCServer struct {
	address   string
	leases    LeaseLister
	shutdown  func()
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer builds the admin server. shutdown is called once per
// Shutdown request and should cancel the application context.
func NewGRPCServer(a string, l logging.Logger, ll LeaseLister, shutdown func(), secretKey string) (*GRPCServer, error) {
	if secretKey == "" {
		return nil, ErrNoSecret
	}
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		leases:    ll,
		shutdown:  shutdown,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve runs the admin API on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	RegisterAdminServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping admin gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting admin gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
