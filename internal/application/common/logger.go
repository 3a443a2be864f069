package common

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

// LoggingMiddleware logs every dispatched request with its outcome and latency
func LoggingMiddleware(base *zap.Logger) Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		name := RequestName(request)
		logger := base.With(zap.String("request", name))
		ctx = WithLogger(ctx, logger)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			logger.Warn("request failed", zap.Duration("elapsed", elapsed), zap.Error(err))
			return response, err
		}
		logger.Debug("request handled", zap.Duration("elapsed", elapsed))
		return response, nil
	}
}
