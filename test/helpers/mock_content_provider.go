package helpers

import (
	"context"
	"sync"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// MockContentProvider is a scripted test double for economy.ContentProvider.
//
// While held, every call blocks until Release or until its context ends, which
// lets tests interleave ticks with an outstanding request.
type MockContentProvider struct {
	mu sync.Mutex

	station    economy.StationDetails
	stationErr error
	event      economy.EventDetails
	eventErr   error
	chat       string
	chatErr    error

	gate  chan struct{}
	calls map[string]int
	reps  []int
}

// NewMockContentProvider creates a provider that answers immediately with stock content
func NewMockContentProvider() *MockContentProvider {
	return &MockContentProvider{
		station: economy.StationDetails{
			Name:        "Neon Spire",
			Description: "A vertical bazaar wrapped in holo-ads.",
			Type:        "CYBERNETIC",
		},
		event: economy.EventDetails{
			Title:        "Power Surge",
			Description:  "A grid overload fried half the ticket gates.",
			ImpactType:   "negative",
			CreditChange: -50,
		},
		chat:  "Trains are late again, choom.",
		calls: make(map[string]int),
	}
}

// SetStation scripts the next station answers
func (m *MockContentProvider) SetStation(details economy.StationDetails, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.station, m.stationErr = details, err
}

// SetEvent scripts the next event answers
func (m *MockContentProvider) SetEvent(details economy.EventDetails, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.event, m.eventErr = details, err
}

// SetChat scripts the next chat answers
func (m *MockContentProvider) SetChat(reply string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat, m.chatErr = reply, err
}

// Hold makes subsequent calls block until Release
func (m *MockContentProvider) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate == nil {
		m.gate = make(chan struct{})
	}
}

// Release unblocks every held call
func (m *MockContentProvider) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Calls returns how many times an operation ("station", "event", "chat") was invoked
func (m *MockContentProvider) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Reputations returns the reputation passed to each event request
func (m *MockContentProvider) Reputations() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.reps...)
}

func (m *MockContentProvider) enter(ctx context.Context, op string) error {
	m.mu.Lock()
	m.calls[op]++
	gate := m.gate
	m.mu.Unlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchStationDetails returns the scripted station
func (m *MockContentProvider) FetchStationDetails(ctx context.Context) (economy.StationDetails, error) {
	if err := m.enter(ctx, "station"); err != nil {
		return economy.StationDetails{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.station, m.stationErr
}

// FetchRandomEvent returns the scripted event
func (m *MockContentProvider) FetchRandomEvent(ctx context.Context, reputation int) (economy.EventDetails, error) {
	m.mu.Lock()
	m.reps = append(m.reps, reputation)
	m.mu.Unlock()

	if err := m.enter(ctx, "event"); err != nil {
		return economy.EventDetails{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.event, m.eventErr
}

// FetchChatReply returns the scripted reply
func (m *MockContentProvider) FetchChatReply(ctx context.Context, stationName, message string) (string, error) {
	if err := m.enter(ctx, "chat"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chat, m.chatErr
}
