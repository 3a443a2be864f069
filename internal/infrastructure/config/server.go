package config

import "time"

// ServerConfig holds the HTTP and WebSocket server configuration
type ServerConfig struct {
	// HTTP listen address (host:port)
	Address string `mapstructure:"address" yaml:"address" validate:"required"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"required"`

	// Origins allowed to open a WebSocket, empty allows same-origin only
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}
