package content

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// FallbackChatReply is what a commuter says when the provider cannot answer
const FallbackChatReply = economy.IgnoredChatReply

// FallbackStation returns the stock station used when generation fails.
// The sector number is drawn from [0, 9000).
func FallbackStation(r economy.RandomSource) economy.StationDetails {
	return economy.StationDetails{
		Name:        fmt.Sprintf("Sector %d", int(math.Floor(r.Float64()*9000))),
		Description: "Data corrupted. A generic industrial zone.",
		Type:        string(economy.StationTypeIndustrial),
	}
}

// FallbackEvent returns the stock event used when generation fails
func FallbackEvent() economy.EventDetails {
	return economy.EventDetails{
		Title:        "Signal Lost",
		Description:  "Communications disruption in the lower sectors.",
		ImpactType:   string(economy.ImpactNeutral),
		CreditChange: 0,
	}
}

// SharedRandom draws from the process-wide generator, which is safe for concurrent use
type SharedRandom struct{}

// Float64 returns a pseudo-random number in [0.0, 1.0)
func (SharedRandom) Float64() float64 {
	return rand.Float64()
}

// FallbackProvider answers failed station and event requests with stock content.
// Chat failures pass through; the session substitutes its own reply.
// Cancellation is never masked.
type FallbackProvider struct {
	inner  economy.ContentProvider
	random economy.RandomSource
	logger *zap.Logger
}

// NewFallbackProvider wraps inner with stock fallbacks. random is used from
// concurrent calls; nil selects SharedRandom.
func NewFallbackProvider(inner economy.ContentProvider, random economy.RandomSource, logger *zap.Logger) *FallbackProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if random == nil {
		random = SharedRandom{}
	}
	return &FallbackProvider{inner: inner, random: random, logger: logger.Named("content")}
}

// FetchStationDetails returns the generated station or the stock one
func (p *FallbackProvider) FetchStationDetails(ctx context.Context) (economy.StationDetails, error) {
	details, err := p.inner.FetchStationDetails(ctx)
	if err == nil || ctx.Err() != nil {
		return details, err
	}
	p.logger.Warn("station generation failed, using fallback", zap.Error(err))
	return FallbackStation(p.random), nil
}

// FetchRandomEvent returns the generated event or the stock one
func (p *FallbackProvider) FetchRandomEvent(ctx context.Context, reputation int) (economy.EventDetails, error) {
	details, err := p.inner.FetchRandomEvent(ctx, reputation)
	if err == nil || ctx.Err() != nil {
		return details, err
	}
	p.logger.Warn("event generation failed, using fallback", zap.Error(err), zap.Int("reputation", reputation))
	return FallbackEvent(), nil
}

// FetchChatReply delegates to the wrapped provider
func (p *FallbackProvider) FetchChatReply(ctx context.Context, stationName, message string) (string, error) {
	return p.inner.FetchChatReply(ctx, stationName, message)
}
