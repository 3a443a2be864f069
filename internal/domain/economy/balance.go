package economy

import "time"

const (
	// MinReputation and MaxReputation bound the reputation score
	MinReputation = 0
	MaxReputation = 100
)

// Balance holds the tunable constants of the economy.
// It is loaded from configuration at startup and never changes while a session runs.
type Balance struct {
	InitialCredits    int
	InitialReputation int
	MaxEnergy         float64

	// TickInterval is the wall-clock period between two scheduler firings
	TickInterval time.Duration

	BuildCost       int
	UpgradeCostBase int

	// RandomEventProbability is the chance, per tick, of requesting a random event
	RandomEventProbability float64

	EnergyDecayPerStation float64
	EnergyRegenPerTick    float64

	// ReputationSwing is applied up (positive) or down (negative) per reconciled event
	ReputationSwing int

	StartingPassengers int
	StartingRevenue    int

	UpgradeRevenueMultiplier   float64
	UpgradePassengerMultiplier float64

	// EventRetention caps the event log length. Zero keeps every event.
	EventRetention int
}

// DefaultBalance returns the stock tuning of the network
func DefaultBalance() Balance {
	return Balance{
		InitialCredits:             1000,
		InitialReputation:          50,
		MaxEnergy:                  100,
		TickInterval:               2000 * time.Millisecond,
		BuildCost:                  500,
		UpgradeCostBase:            200,
		RandomEventProbability:     0.10,
		EnergyDecayPerStation:      0.5,
		EnergyRegenPerTick:         2,
		ReputationSwing:            5,
		StartingPassengers:         50,
		StartingRevenue:            5,
		UpgradeRevenueMultiplier:   1.5,
		UpgradePassengerMultiplier: 1.2,
		EventRetention:             100,
	}
}
