package content

import (
	"context"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// OfflineProvider answers without any network access: stations and events are
// the stock fallbacks and chat always fails with ErrOffline.
type OfflineProvider struct {
	random economy.RandomSource
}

// NewOfflineProvider creates an offline provider drawing sector numbers from r.
// r is used from concurrent calls; nil selects SharedRandom.
func NewOfflineProvider(r economy.RandomSource) *OfflineProvider {
	if r == nil {
		r = SharedRandom{}
	}
	return &OfflineProvider{random: r}
}

// FetchStationDetails returns the stock station
func (p *OfflineProvider) FetchStationDetails(ctx context.Context) (economy.StationDetails, error) {
	if err := ctx.Err(); err != nil {
		return economy.StationDetails{}, err
	}
	return FallbackStation(p.random), nil
}

// FetchRandomEvent returns the stock event
func (p *OfflineProvider) FetchRandomEvent(ctx context.Context, reputation int) (economy.EventDetails, error) {
	if err := ctx.Err(); err != nil {
		return economy.EventDetails{}, err
	}
	return FallbackEvent(), nil
}

// FetchChatReply always fails
func (p *OfflineProvider) FetchChatReply(ctx context.Context, stationName, message string) (string, error) {
	return "", ErrOffline
}
