package steps

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

type economyContext struct {
	balance economy.Balance
	state   economy.State
	err     error
}

func (ec *economyContext) reset() {
	ec.balance = economy.DefaultBalance()
	ec.state = economy.State{Events: []economy.GameEvent{}}
	ec.err = nil
}

// Given steps

func (ec *economyContext) theStockNetworkBalance() error {
	ec.balance = economy.DefaultBalance()
	return nil
}

func (ec *economyContext) aNetworkWithCreditsAndEnergy(credits int, energy float64) error {
	ec.state.Credits = credits
	ec.state.Energy = energy
	ec.state.Reputation = ec.balance.InitialReputation
	return nil
}

func (ec *economyContext) theNetworkHasReputation(reputation int) error {
	ec.state.Reputation = reputation
	return nil
}

func (ec *economyContext) addStation(name string, status economy.StationStatus, revenue, passengers int) {
	ec.state.Stations = append(ec.state.Stations, economy.Station{
		ID:             fmt.Sprintf("st-%d", len(ec.state.Stations)),
		Name:           name,
		Type:           economy.StationTypeResidential,
		Level:          1,
		Passengers:     passengers,
		RevenuePerTick: revenue,
		Status:         status,
	})
}

func (ec *economyContext) anActiveStationEarningWithPassengers(name string, revenue, passengers int) error {
	ec.addStation(name, economy.StationStatusActive, revenue, passengers)
	return nil
}

func (ec *economyContext) aLockedStationEarning(name string, revenue int) error {
	ec.addStation(name, economy.StationStatusLocked, revenue, 0)
	return nil
}

func (ec *economyContext) idleStations(count int) error {
	for i := 0; i < count; i++ {
		ec.addStation(fmt.Sprintf("Idle %d", i), economy.StationStatusActive, 0, 0)
	}
	return nil
}

// When steps

func (ec *economyContext) theNetworkAdvancesTicks(ticks int) error {
	for i := 0; i < ticks; i++ {
		ec.state = economy.Advance(ec.state, ec.balance)
	}
	return nil
}

func (ec *economyContext) iUpgradeStation(name string) error {
	id := name
	if st, ok := ec.state.FindStationByName(name); ok {
		id = st.ID
	}
	ec.state, _, ec.err = economy.Upgrade(ec.state, ec.balance, id)
	return nil
}

func (ec *economyContext) eventsChangingCreditsAreReconciled(count int, impact string, change int) error {
	for i := 0; i < count; i++ {
		ec.state = economy.ApplyRandomEvent(ec.state, ec.balance, economy.EventDetails{
			Title:        fmt.Sprintf("Event %d", i),
			Description:  "Something happened on the line.",
			ImpactType:   impact,
			CreditChange: change,
		}, fmt.Sprintf("evt-%d", i))
	}
	return nil
}

// Then steps

func (ec *economyContext) theNetworkShouldHaveCredits(expected int) error {
	if ec.state.Credits != expected {
		return fmt.Errorf("expected %d credits, got %d", expected, ec.state.Credits)
	}
	return nil
}

func (ec *economyContext) theNetworkShouldHaveEnergy(expected float64) error {
	if math.Abs(ec.state.Energy-expected) > 1e-9 {
		return fmt.Errorf("expected %.2f energy, got %.2f", expected, ec.state.Energy)
	}
	return nil
}

func (ec *economyContext) theNetworkShouldHaveReputation(expected int) error {
	if ec.state.Reputation != expected {
		return fmt.Errorf("expected reputation %d, got %d", expected, ec.state.Reputation)
	}
	return nil
}

func (ec *economyContext) theNetworkShouldBeAtTick(expected int64) error {
	if ec.state.Tick != expected {
		return fmt.Errorf("expected tick %d, got %d", expected, ec.state.Tick)
	}
	return nil
}

func (ec *economyContext) theUpgradeShouldSucceed() error {
	if ec.err != nil {
		return fmt.Errorf("expected upgrade to succeed, got: %w", ec.err)
	}
	return nil
}

func (ec *economyContext) theUpgradeShouldBeRejectedWith(reason string) error {
	if ec.err == nil {
		return fmt.Errorf("expected upgrade to be rejected with %q", reason)
	}
	if !economy.IsRejection(ec.err) {
		return fmt.Errorf("expected a rejection, got failure: %w", ec.err)
	}
	if !strings.Contains(ec.err.Error(), reason) {
		return fmt.Errorf("expected rejection containing %q, got %q", reason, ec.err.Error())
	}
	return nil
}

func (ec *economyContext) stationShouldBeAtLevel(name string, level, revenue, passengers int) error {
	st, ok := ec.state.FindStationByName(name)
	if !ok {
		return fmt.Errorf("station %q not found", name)
	}
	if st.Level != level || st.RevenuePerTick != revenue || st.Passengers != passengers {
		return fmt.Errorf("expected level %d, revenue %d, passengers %d; got level %d, revenue %d, passengers %d",
			level, revenue, passengers, st.Level, st.RevenuePerTick, st.Passengers)
	}
	return nil
}

func (ec *economyContext) theEventLogShouldHold(expected int) error {
	if len(ec.state.Events) != expected {
		return fmt.Errorf("expected %d events, got %d", expected, len(ec.state.Events))
	}
	return nil
}

// InitializeEconomyScenario registers the pure domain economy steps
func InitializeEconomyScenario(ctx *godog.ScenarioContext) {
	ec := &economyContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		ec.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the stock network balance$`, ec.theStockNetworkBalance)
	ctx.Step(`^a network with (\d+) credits and ([0-9.]+) energy$`, ec.aNetworkWithCreditsAndEnergy)
	ctx.Step(`^the network has (\d+) reputation$`, ec.theNetworkHasReputation)
	ctx.Step(`^an active station "([^"]*)" earning (\d+) per tick with (\d+) passengers$`, ec.anActiveStationEarningWithPassengers)
	ctx.Step(`^a locked station "([^"]*)" earning (\d+) per tick$`, ec.aLockedStationEarning)
	ctx.Step(`^(\d+) idle stations$`, ec.idleStations)

	// When steps
	ctx.Step(`^the network advances (\d+) ticks?$`, ec.theNetworkAdvancesTicks)
	ctx.Step(`^I upgrade station "([^"]*)"$`, ec.iUpgradeStation)
	ctx.Step(`^(\d+) "([^"]*)" events changing credits by (-?\d+) are reconciled$`, ec.eventsChangingCreditsAreReconciled)

	// Then steps
	ctx.Step(`^the network should have (\d+) credits$`, ec.theNetworkShouldHaveCredits)
	ctx.Step(`^the network should have ([0-9.]+) energy$`, ec.theNetworkShouldHaveEnergy)
	ctx.Step(`^the network should have (\d+) reputation$`, ec.theNetworkShouldHaveReputation)
	ctx.Step(`^the network should be at tick (\d+)$`, ec.theNetworkShouldBeAtTick)
	ctx.Step(`^the upgrade should succeed$`, ec.theUpgradeShouldSucceed)
	ctx.Step(`^the upgrade should be rejected with "([^"]*)"$`, ec.theUpgradeShouldBeRejectedWith)
	ctx.Step(`^station "([^"]*)" should be at level (\d+) earning (\d+) per tick with (\d+) passengers$`, ec.stationShouldBeAtLevel)
	ctx.Step(`^the event log should hold (\d+) events$`, ec.theEventLogShouldHold)
}
