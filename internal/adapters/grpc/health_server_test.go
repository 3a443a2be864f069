package grpc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/andrescamacho/neonrails-go/internal/adapters/grpc"
)

func TestHealthServer_ReportsSessionLifecycle(t *testing.T) {
	// Arrange
	server, err := grpcadapter.NewHealthServer("127.0.0.1:0", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx) }()

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: grpcadapter.GameService})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	// Act + Assert
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())

	sessionDone := make(chan struct{})
	server.Watch(ctx, sessionDone)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status())

	close(sessionDone)
	assert.Eventually(t, func() bool {
		return status() == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("health server did not stop")
	}
}
