package config

import (
	"time"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// GameConfig holds the tuning of the economy
type GameConfig struct {
	InitialCredits    int     `mapstructure:"initial_credits" yaml:"initial_credits" validate:"min=0"`
	InitialReputation int     `mapstructure:"initial_reputation" yaml:"initial_reputation" validate:"min=0,max=100"`
	MaxEnergy         float64 `mapstructure:"max_energy" yaml:"max_energy" validate:"gt=0"`

	// Wall-clock period between two ticks
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" validate:"required"`

	BuildCost       int `mapstructure:"build_cost" yaml:"build_cost" validate:"min=1"`
	UpgradeCostBase int `mapstructure:"upgrade_cost_base" yaml:"upgrade_cost_base" validate:"min=1"`

	// Chance per tick of requesting a random event
	RandomEventProbability float64 `mapstructure:"random_event_probability" yaml:"random_event_probability" validate:"min=0,max=1"`

	EnergyDecayPerStation float64 `mapstructure:"energy_decay_per_station" yaml:"energy_decay_per_station" validate:"min=0"`
	EnergyRegenPerTick    float64 `mapstructure:"energy_regen_per_tick" yaml:"energy_regen_per_tick" validate:"min=0"`
	ReputationSwing       int     `mapstructure:"reputation_swing" yaml:"reputation_swing" validate:"min=0,max=100"`

	StartingPassengers int `mapstructure:"starting_passengers" yaml:"starting_passengers" validate:"min=0"`
	StartingRevenue    int `mapstructure:"starting_revenue" yaml:"starting_revenue" validate:"min=0"`

	UpgradeRevenueMultiplier   float64 `mapstructure:"upgrade_revenue_multiplier" yaml:"upgrade_revenue_multiplier" validate:"gte=1"`
	UpgradePassengerMultiplier float64 `mapstructure:"upgrade_passenger_multiplier" yaml:"upgrade_passenger_multiplier" validate:"gte=1"`

	// Event log cap, 0 keeps everything
	EventRetention int `mapstructure:"event_retention" yaml:"event_retention" validate:"min=0"`

	// Start the scheduler paused
	StartPaused bool `mapstructure:"start_paused" yaml:"start_paused"`
}

// Balance converts the configuration into the economy tuning
func (g GameConfig) Balance() economy.Balance {
	return economy.Balance{
		InitialCredits:             g.InitialCredits,
		InitialReputation:          g.InitialReputation,
		MaxEnergy:                  g.MaxEnergy,
		TickInterval:               g.TickInterval,
		BuildCost:                  g.BuildCost,
		UpgradeCostBase:            g.UpgradeCostBase,
		RandomEventProbability:     g.RandomEventProbability,
		EnergyDecayPerStation:      g.EnergyDecayPerStation,
		EnergyRegenPerTick:         g.EnergyRegenPerTick,
		ReputationSwing:            g.ReputationSwing,
		StartingPassengers:         g.StartingPassengers,
		StartingRevenue:            g.StartingRevenue,
		UpgradeRevenueMultiplier:   g.UpgradeRevenueMultiplier,
		UpgradePassengerMultiplier: g.UpgradePassengerMultiplier,
		EventRetention:             g.EventRetention,
	}
}
