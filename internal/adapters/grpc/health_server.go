package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GameService is the health service name reported for the game session
const GameService = "neonrails.Game"

// HealthServer exposes the standard gRPC health service for the daemon.
// It reports SERVING while the game session runs and NOT_SERVING afterwards.
type HealthServer struct {
	listener net.Listener
	server   *grpc.Server
	health   *health.Server
	logger   *zap.Logger
}

// NewHealthServer binds the listen address. Status starts as NOT_SERVING until Watch is called.
func NewHealthServer(address string, logger *zap.Logger) (*HealthServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(GameService, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &HealthServer{
		listener: listener,
		server:   server,
		health:   hs,
		logger:   logger.Named("grpc"),
	}, nil
}

// Addr returns the bound address
func (s *HealthServer) Addr() net.Addr {
	return s.listener.Addr()
}

// Close releases the listener of a server that will not be served
func (s *HealthServer) Close() error {
	return s.listener.Close()
}

// Watch marks the game SERVING until done is closed
func (s *HealthServer) Watch(ctx context.Context, done <-chan struct{}) {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(GameService, healthpb.HealthCheckResponse_SERVING)

	go func() {
		select {
		case <-done:
		case <-ctx.Done():
		}
		s.health.SetServingStatus(GameService, healthpb.HealthCheckResponse_NOT_SERVING)
	}()
}

// Serve handles requests until ctx is cancelled, then stops gracefully
func (s *HealthServer) Serve(ctx context.Context) error {
	s.logger.Info("health server listening", zap.String("address", s.listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.health.Shutdown()
		s.server.GracefulStop()
		<-errChan
		return nil
	}
}
