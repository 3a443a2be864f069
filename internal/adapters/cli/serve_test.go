package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/andrescamacho/neonrails-go/internal/adapters/grpc"
	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/config"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
)

func testDaemonConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Game.TickInterval = 10 * time.Millisecond
	cfg.Game.RandomEventProbability = 0
	cfg.Database.Path = filepath.Join(t.TempDir(), "neonrails.db")
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Daemon.HealthAddress = "127.0.0.1:0"
	cfg.Daemon.SaveSlot = "daemon-test"
	cfg.Daemon.SnapshotInterval = 0
	cfg.Daemon.ShutdownTimeout = time.Second
	cfg.Metrics.Enabled = false
	return cfg
}

func fetchSnapshot(base string) (game.Snapshot, error) {
	var snap game.Snapshot
	resp, err := http.Get(base + "/api/state")
	if err != nil {
		return snap, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	err = json.NewDecoder(resp.Body).Decode(&snap)
	return snap, err
}

func TestDaemon_ServesAndSavesOnShutdown(t *testing.T) {
	// Arrange
	cfg := testDaemonConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := newDaemon(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	base := fmt.Sprintf("http://%s", d.HTTPAddr())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Act
	require.Eventually(t, func() bool {
		snap, err := fetchSnapshot(base)
		return err == nil && snap.State.Tick >= 2
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/pause", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	paused, err := fetchSnapshot(base)
	require.NoError(t, err)

	conn, err := grpc.NewClient(d.HealthAddr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: grpcadapter.GameService})
	require.NoError(t, err)

	cancel()

	// Assert
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	assert.False(t, paused.Playing)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)

	db, err := database.NewConnection(&cfg.Database)
	require.NoError(t, err)
	defer database.Close(db)

	saved, found, err := persistence.NewGormSnapshotRepository(db, shared.NewRealClock()).Load(context.Background(), cfg.Daemon.SaveSlot)
	require.NoError(t, err)
	require.True(t, found, "the network is saved on shutdown")
	assert.Equal(t, paused.State.Tick, saved.Tick)
	assert.Equal(t, paused.State.Credits, saved.Credits)

	var incomeRows int64
	require.NoError(t, db.Model(&persistence.TransactionModel{}).Where("transaction_type = ?", "TICK_INCOME").Count(&incomeRows).Error)
	assert.Equal(t, paused.State.Tick, incomeRows, "every tick is in the ledger")
}

func TestDaemon_ResumesSavedNetwork(t *testing.T) {
	// Arrange
	cfg := testDaemonConfig(t)
	cfg.Game.StartPaused = true

	db, err := database.NewConnection(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	repo := persistence.NewGormSnapshotRepository(db, shared.NewRealClock())
	stored := economy.NewState(economy.DefaultBalance())
	stored.Credits = 4242
	stored.Reputation = 77
	stored.Energy = 60
	stored.Tick = 300
	stored.Version = 12
	require.NoError(t, repo.Save(context.Background(), cfg.Daemon.SaveSlot, stored))
	require.NoError(t, database.Close(db))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Act
	d, err := newDaemon(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	var snap game.Snapshot
	require.Eventually(t, func() bool {
		snap, err = fetchSnapshot(fmt.Sprintf("http://%s", d.HTTPAddr()))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	<-done

	// Assert
	assert.Equal(t, 4242, snap.State.Credits)
	assert.Equal(t, int64(300), snap.State.Tick)
	assert.False(t, snap.Playing)
}

func TestNewDaemon_PortInUse(t *testing.T) {
	// Arrange
	first := testDaemonConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d, err := newDaemon(ctx, first, zap.NewNop())
	require.NoError(t, err)
	defer d.close()

	second := testDaemonConfig(t)
	second.Server.Address = d.HTTPAddr()

	// Act
	_, err = newDaemon(ctx, second, zap.NewNop())

	// Assert
	assert.Error(t, err)
}

func TestNewDaemon_HealthAddressInUseReleasesListeners(t *testing.T) {
	// Arrange
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	httpAddr := free.Addr().String()
	require.NoError(t, free.Close())

	cfg := testDaemonConfig(t)
	cfg.Server.Address = httpAddr
	cfg.Daemon.HealthAddress = busy.Addr().String()

	// Act
	var d *daemon
	require.NotPanics(t, func() {
		d, err = newDaemon(context.Background(), cfg, zap.NewNop())
	})

	// Assert
	require.Error(t, err)
	assert.Nil(t, d)
	again, err := net.Listen("tcp", httpAddr)
	require.NoError(t, err, "the HTTP listener bound before the failure is released")
	again.Close()
}
