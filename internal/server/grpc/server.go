// Package grpc serves the standard gRPC health service next to the HTTP API
// so orchestrators can probe the process.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported by the health service alongside the "" overall status.
const ServiceName = "profilekeeper.UserService"

type GRPCServer struct {
	address string
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(address string, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address: address,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		// flips every service to NOT_SERVING before draining
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
