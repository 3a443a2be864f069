package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/andrescamacho/neonrails-go/internal/adapters/grpc"
	"github.com/andrescamacho/neonrails-go/internal/adapters/metrics"
	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/adapters/web"
	"github.com/andrescamacho/neonrails-go/internal/application/common"
	"github.com/andrescamacho/neonrails-go/internal/application/game"
	ledgerCmd "github.com/andrescamacho/neonrails-go/internal/application/ledger/commands"
	"github.com/andrescamacho/neonrails-go/internal/application/setup"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/config"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/pidfile"
)

const cashFlowPollInterval = 30 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the network daemon",
		Long: `Run the metro network daemon.

The daemon resumes the network stored in the configured save slot, advances it
on the tick interval and serves it over HTTP and WebSocket. Credit movements are
recorded in the ledger, the network is saved periodically and on shutdown, and
a gRPC health service reports whether the session is running.

Only one daemon may run per PID file. Use --force to replace a running one.

Examples:
  neonrails serve
  neonrails serve --config ./configs/dev.yaml --verbose
  neonrails serve --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Kill any existing daemon and start a new one")

	return cmd
}

func runServe(cmd *cobra.Command, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(force); err != nil {
		return fmt.Errorf("failed to acquire PID file lock: %w", err)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			logger.Warn("failed to release PID file", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Neon Rails daemon\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  HTTP:     http://%s\n", d.HTTPAddr())
	fmt.Fprintf(cmd.OutOrStdout(), "  Health:   %s\n", d.HealthAddr())
	if d.metricsServer != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "  Metrics:  http://%s%s\n", d.metricsServer.Addr, cfg.Metrics.Path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Slot:     %s\n", cfg.Daemon.SaveSlot)

	return d.Run(ctx)
}

// daemon holds every long-running component of a served network
type daemon struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB

	session   *game.Session
	hub       *web.Hub
	recorder  *ledgerCmd.Recorder
	saver     *game.Saver
	financial *metrics.FinancialMetricsCollector

	httpServer    *http.Server
	httpListener  net.Listener
	metricsServer *http.Server
	health        *grpc.HealthServer
}

// newDaemon wires the daemon and binds its listeners. Nothing runs until Run.
func newDaemon(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *daemon, err error) {
	d := &daemon{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			d.close()
		}
	}()

	d.db, err = openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	clock := shared.NewRealClock()
	snapshotRepo := persistence.NewGormSnapshotRepository(d.db, clock)
	transactionRepo := persistence.NewGormTransactionRepository(d.db)

	// Metrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	economyMetrics := metrics.NewEconomyCollector()
	providerMetrics := metrics.NewProviderMetricsCollector()
	commandMetrics := metrics.NewCommandMetricsCollector()

	// Mediator
	med := common.NewMediator()
	med.Use(common.LoggingMiddleware(logger))
	med.Use(metrics.PrometheusMiddleware(commandMetrics))

	d.financial = metrics.NewFinancialMetricsCollector(med, cfg.Daemon.SaveSlot, logger)
	for _, c := range []interface{ Register() error }{economyMetrics, providerMetrics, commandMetrics, d.financial} {
		if err := c.Register(); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	d.metricsServer = metrics.NewServer(cfg.Metrics)

	registry := setup.NewHandlerRegistry(transactionRepo, clock, d.financial.RecordTransaction)
	if err := registry.RegisterLedgerHandlers(med); err != nil {
		return nil, err
	}

	// Content provider
	provider, err := newContentProvider(ctx, cfg.Content, providerMetrics, logger)
	if err != nil {
		return nil, err
	}

	// Resume the saved network. Persistence is best effort: a broken save starts a new network.
	initial, found, loadErr := snapshotRepo.Load(ctx, cfg.Daemon.SaveSlot)
	switch {
	case loadErr != nil:
		logger.Warn("failed to load saved network, starting a new one", zap.Error(loadErr))
	case found:
		logger.Info("resuming saved network",
			zap.String("slot", cfg.Daemon.SaveSlot),
			zap.Int64("tick", initial.Tick),
			zap.Int("credits", initial.Credits),
			zap.Int("stations", len(initial.Stations)),
		)
	}

	d.hub = web.NewHub(logger)
	d.recorder = ledgerCmd.NewRecorder(med, cfg.Daemon.SaveSlot, logger)
	d.saver = game.NewSaver(snapshotRepo, cfg.Daemon.SaveSlot, logger)

	opts := game.Options{
		Balance:     cfg.Game.Balance(),
		Provider:    provider,
		Logger:      logger,
		StartPaused: cfg.Game.StartPaused,
		Observers:   []game.Observer{d.hub, economyMetrics, d.recorder, d.saver},
	}
	if found && loadErr == nil {
		opts.InitialState = &initial
	}
	d.session, err = game.NewSession(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create game session: %w", err)
	}

	if err := registry.RegisterGameHandlers(med, d.session); err != nil {
		return nil, err
	}

	// Listeners
	d.httpListener, err = net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Server.Address, err)
	}
	d.httpServer = &http.Server{
		Handler:           web.NewHandler(med, d.hub, cfg.Server.AllowedOrigins, logger).Routes(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	d.health, err = grpc.NewHealthServer(cfg.Daemon.HealthAddress, logger)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// HTTPAddr returns the bound HTTP address
func (d *daemon) HTTPAddr() string {
	return d.httpListener.Addr().String()
}

// HealthAddr returns the bound gRPC health address
func (d *daemon) HealthAddr() string {
	return d.health.Addr().String()
}

// Run serves until ctx is cancelled or a component fails, then shuts everything down.
// The ledger recorder and the saver outlive the session so its last changes are written.
func (d *daemon) Run(ctx context.Context) error {
	defer database.Close(d.db)

	g, gctx := errgroup.WithContext(ctx)

	drainCtx, drain := context.WithCancel(context.WithoutCancel(gctx))
	defer drain()

	g.Go(func() error {
		defer drain()
		if err := d.session.Run(gctx); err != nil {
			return fmt.Errorf("game session: %w", err)
		}
		return nil
	})
	g.Go(func() error { return d.recorder.Run(drainCtx) })
	g.Go(func() error { return d.saver.Run(drainCtx, d.cfg.Daemon.SnapshotInterval) })
	g.Go(func() error { return d.hub.Run(gctx) })

	d.health.Watch(gctx, d.session.Done())
	g.Go(func() error { return d.health.Serve(gctx) })

	g.Go(func() error {
		return serveHTTP(gctx, d.httpServer, d.httpListener, d.cfg.Daemon.ShutdownTimeout)
	})

	if d.metricsServer != nil {
		g.Go(func() error {
			ln, err := net.Listen("tcp", d.metricsServer.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", d.metricsServer.Addr, err)
			}
			return serveHTTP(gctx, d.metricsServer, ln, d.cfg.Daemon.ShutdownTimeout)
		})
		g.Go(func() error { return d.financial.Run(gctx, cashFlowPollInterval) })
	}

	d.logger.Info("daemon started",
		zap.String("http", d.HTTPAddr()),
		zap.String("health", d.HealthAddr()),
		zap.String("slot", d.cfg.Daemon.SaveSlot),
	)

	err := g.Wait()
	d.logger.Info("daemon stopped", zap.Error(err))
	return err
}

// close releases what newDaemon acquired when wiring fails halfway
func (d *daemon) close() {
	if d.health != nil {
		d.health.Close()
	}
	if d.httpListener != nil {
		d.httpListener.Close()
	}
	if d.db != nil {
		database.Close(d.db)
	}
}

// serveHTTP serves on ln until ctx is cancelled, then shuts down within timeout
func serveHTTP(ctx context.Context, server *http.Server, ln net.Listener, timeout time.Duration) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ln)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
		<-errChan
		return nil
	}
}
