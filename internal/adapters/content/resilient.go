package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/shared"
)

// Provider operations as reported to a RequestObserver
const (
	OperationStation = "station"
	OperationEvent   = "event"
	OperationChat    = "chat"
)

// Request outcomes as reported to a RequestObserver
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeCancelled   = "cancelled"
)

// RequestObserver is notified of every provider request
type RequestObserver interface {
	ObserveProviderRequest(operation, outcome string, duration time.Duration)
}

// ResilienceOptions configures a ResilientProvider
type ResilienceOptions struct {
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxFailures       int
	BreakerTimeout    time.Duration
	Clock             shared.Clock
	Observer          RequestObserver
	Logger            *zap.Logger
}

// ResilientProvider decorates a provider with a token-bucket rate limiter,
// a per-call timeout and a circuit breaker
type ResilientProvider struct {
	inner    economy.ContentProvider
	limiter  *rate.Limiter
	breaker  *CircuitBreaker
	timeout  time.Duration
	clock    shared.Clock
	observer RequestObserver
	logger   *zap.Logger
}

// NewResilientProvider wraps inner
func NewResilientProvider(inner economy.ContentProvider, opts ResilienceOptions) *ResilientProvider {
	if opts.Clock == nil {
		opts.Clock = shared.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &ResilientProvider{
		inner:    inner,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  NewCircuitBreaker(opts.MaxFailures, opts.BreakerTimeout, opts.Clock),
		timeout:  opts.Timeout,
		clock:    opts.Clock,
		observer: opts.Observer,
		logger:   opts.Logger.Named("content"),
	}
}

// Breaker exposes the circuit breaker so callers can inspect its state
func (p *ResilientProvider) Breaker() *CircuitBreaker {
	return p.breaker
}

// FetchStationDetails calls the wrapped provider under the resilience policy
func (p *ResilientProvider) FetchStationDetails(ctx context.Context) (economy.StationDetails, error) {
	var details economy.StationDetails
	err := p.do(ctx, OperationStation, func(ctx context.Context) error {
		var err error
		details, err = p.inner.FetchStationDetails(ctx)
		return err
	})
	return details, err
}

// FetchRandomEvent calls the wrapped provider under the resilience policy
func (p *ResilientProvider) FetchRandomEvent(ctx context.Context, reputation int) (economy.EventDetails, error) {
	var details economy.EventDetails
	err := p.do(ctx, OperationEvent, func(ctx context.Context) error {
		var err error
		details, err = p.inner.FetchRandomEvent(ctx, reputation)
		return err
	})
	return details, err
}

// FetchChatReply calls the wrapped provider under the resilience policy
func (p *ResilientProvider) FetchChatReply(ctx context.Context, stationName, message string) (string, error) {
	var reply string
	err := p.do(ctx, OperationChat, func(ctx context.Context) error {
		var err error
		reply, err = p.inner.FetchChatReply(ctx, stationName, message)
		return err
	})
	return reply, err
}

func (p *ResilientProvider) do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := p.clock.Now()

	err := p.breaker.Call(func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		callCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})

	outcome := classify(ctx, err)
	if p.observer != nil {
		p.observer.ObserveProviderRequest(operation, outcome, p.clock.Now().Sub(start))
	}
	if err != nil && outcome != OutcomeCancelled {
		p.logger.Warn("provider request failed",
			zap.String("operation", operation),
			zap.String("outcome", outcome),
			zap.String("circuit", p.breaker.State().String()),
			zap.Error(err),
		)
	}
	return err
}

func classify(ctx context.Context, err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case ctx.Err() != nil:
		return OutcomeCancelled
	case errors.Is(err, ErrCircuitOpen):
		return OutcomeCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
