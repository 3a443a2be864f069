package cli

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrescamacho/neonrails-go/internal/adapters/content"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/config"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/logging"
)

// loadConfig loads the configuration named by --config, applying --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// openDatabase connects to the configured database and migrates its tables
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newContentProvider assembles the provider chain.
// Without a key the offline provider answers everything locally. Otherwise Gemini
// runs behind the rate limiter, timeout and circuit breaker, and failed station and
// event requests degrade to stock content when configured.
func newContentProvider(ctx context.Context, cfg config.ContentConfig, observer content.RequestObserver, logger *zap.Logger) (economy.ContentProvider, error) {
	if cfg.Offline() {
		logger.Info("no content provider key configured, running offline")
		return content.NewOfflineProvider(content.SharedRandom{}), nil
	}

	gemini, err := content.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create content provider: %w", err)
	}

	var provider economy.ContentProvider = content.NewResilientProvider(gemini, content.ResilienceOptions{
		RequestsPerSecond: cfg.RateLimit.Requests,
		Burst:             cfg.RateLimit.Burst,
		Timeout:           cfg.Timeout,
		MaxFailures:       cfg.CircuitBreaker.MaxFailures,
		BreakerTimeout:    cfg.CircuitBreaker.Timeout,
		Clock:             shared.NewRealClock(),
		Observer:          observer,
		Logger:            logger,
	})

	if cfg.DegradeToFallback {
		provider = content.NewFallbackProvider(provider, content.SharedRandom{}, logger)
	}
	return provider, nil
}

// formatCredits formats credits with thousand separators
func formatCredits(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + b.String()
}

// formatAmount formats a signed transaction amount
func formatAmount(amount int) string {
	if amount > 0 {
		return "+" + formatCredits(amount)
	}
	return formatCredits(amount)
}

// maskSecret hides all but the last four characters of a secret
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// maskPassword masks the password of a connection URL
func maskPassword(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "****")
	return u.String()
}
