package metrics

import (
	"context"
	"time"

	"github.com/andrescamacho/neonrails-go/internal/application/common"
)

type rejectable interface {
	Rejected() bool
}

// PrometheusMiddleware creates a middleware that records command execution metrics.
//
// Game intents that complete without changing state (a Rejected result) are
// counted apart from successes and errors.
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		// Skip metrics if collector is nil (metrics disabled)
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)

		status := "success"
		if err != nil {
			status = "error"
		} else if r, ok := response.(rejectable); ok && r.Rejected() {
			status = "rejected"
		}
		collector.RecordCommandExecution(common.RequestName(request), time.Since(start).Seconds(), status)

		return response, err
	}
}
