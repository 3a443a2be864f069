package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

const (
	defaultRandomEventProbability = 0.10
	defaultEventRetention         = 100
	defaultSnapshotInterval       = 10 * time.Second
)

// registerDefaults covers the keys for which zero is a valid setting
func registerDefaults(v *viper.Viper) {
	v.SetDefault("game.random_event_probability", defaultRandomEventProbability)
	v.SetDefault("game.event_retention", defaultEventRetention)
	v.SetDefault("daemon.snapshot_interval", defaultSnapshotInterval)
}

// SetDefaults sets default values for all configuration fields left at zero
func SetDefaults(cfg *Config) {
	// Game defaults
	if cfg.Game.InitialCredits == 0 {
		cfg.Game.InitialCredits = 1000
	}
	if cfg.Game.InitialReputation == 0 {
		cfg.Game.InitialReputation = 50
	}
	if cfg.Game.MaxEnergy == 0 {
		cfg.Game.MaxEnergy = 100
	}
	if cfg.Game.TickInterval == 0 {
		cfg.Game.TickInterval = 2000 * time.Millisecond
	}
	if cfg.Game.BuildCost == 0 {
		cfg.Game.BuildCost = 500
	}
	if cfg.Game.UpgradeCostBase == 0 {
		cfg.Game.UpgradeCostBase = 200
	}
	if cfg.Game.EnergyDecayPerStation == 0 {
		cfg.Game.EnergyDecayPerStation = 0.5
	}
	if cfg.Game.EnergyRegenPerTick == 0 {
		cfg.Game.EnergyRegenPerTick = 2
	}
	if cfg.Game.ReputationSwing == 0 {
		cfg.Game.ReputationSwing = 5
	}
	if cfg.Game.StartingPassengers == 0 {
		cfg.Game.StartingPassengers = 50
	}
	if cfg.Game.StartingRevenue == 0 {
		cfg.Game.StartingRevenue = 5
	}
	if cfg.Game.UpgradeRevenueMultiplier == 0 {
		cfg.Game.UpgradeRevenueMultiplier = 1.5
	}
	if cfg.Game.UpgradePassengerMultiplier == 0 {
		cfg.Game.UpgradePassengerMultiplier = 1.2
	}

	// Content defaults
	if cfg.Content.Model == "" {
		cfg.Content.Model = "gemini-2.5-flash"
	}
	if cfg.Content.Timeout == 0 {
		cfg.Content.Timeout = 20 * time.Second
	}
	if cfg.Content.RateLimit.Requests == 0 {
		cfg.Content.RateLimit.Requests = 1
	}
	if cfg.Content.RateLimit.Burst == 0 {
		cfg.Content.RateLimit.Burst = 3
	}
	if cfg.Content.CircuitBreaker.MaxFailures == 0 {
		cfg.Content.CircuitBreaker.MaxFailures = 5
	}
	if cfg.Content.CircuitBreaker.Timeout == 0 {
		cfg.Content.CircuitBreaker.Timeout = 60 * time.Second
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "neonrails.db"
	}
	if cfg.Database.Type == "postgres" {
		if cfg.Database.Host == "" {
			cfg.Database.Host = "localhost"
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
		if cfg.Database.User == "" {
			cfg.Database.User = "neonrails"
		}
		if cfg.Database.Name == "" {
			cfg.Database.Name = "neonrails"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:8080"
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 5 * time.Second
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Daemon defaults
	if cfg.Daemon.HealthAddress == "" {
		cfg.Daemon.HealthAddress = "localhost:50052"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/neonrails-daemon.pid"
	}
	if cfg.Daemon.SaveSlot == "" {
		cfg.Daemon.SaveSlot = shared.DefaultSaveSlot
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}
}
