package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// gRPC health server address (host:port)
	HealthAddress string `mapstructure:"health_address" yaml:"health_address" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file" validate:"required"`

	// Save slot the network is stored under
	SaveSlot string `mapstructure:"save_slot" yaml:"save_slot" validate:"required,max=64"`

	// How often the network snapshot is written, 0 disables snapshots
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval" yaml:"snapshot_interval"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`
}
