package config

import "time"

// ContentConfig holds the generative-text provider configuration
type ContentConfig struct {
	// Provider API key. Empty runs the offline provider.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Model name
	Model string `mapstructure:"model" yaml:"model" validate:"required"`

	// Per-request timeout
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"required"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// Circuit breaker settings
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`

	// Answer failed station and event requests with stock content instead of failing them
	DegradeToFallback bool `mapstructure:"degrade_to_fallback" yaml:"degrade_to_fallback"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests float64 `mapstructure:"requests" yaml:"requests" validate:"gt=0"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" yaml:"burst" validate:"min=1"`
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	// Consecutive failures before the circuit opens
	MaxFailures int `mapstructure:"max_failures" yaml:"max_failures" validate:"min=1"`

	// How long the circuit stays open before a trial request
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"required"`
}

// Offline reports whether no provider key is configured
func (c ContentConfig) Offline() bool {
	return c.APIKey == ""
}
