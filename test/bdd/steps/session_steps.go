package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/test/helpers"
)

const stepTimeout = 5 * time.Second

// scriptedRoll returns a fixed value for every random draw
type scriptedRoll struct {
	mu    sync.Mutex
	value float64
}

func (r *scriptedRoll) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

func (r *scriptedRoll) set(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
}

// sessionRunner runs a game session on manual ticks for the length of a scenario
type sessionRunner struct {
	session  *game.Session
	ticks    *game.ManualTickSource
	provider *helpers.MockContentProvider
	roll     *scriptedRoll
	cancel   context.CancelFunc
	errc     chan error
}

// startSessionRunner starts a session that rolls no random events until told to
func startSessionRunner(initial *economy.State, observers ...game.Observer) (*sessionRunner, error) {
	r := &sessionRunner{
		ticks:    game.NewManualTickSource(),
		provider: helpers.NewMockContentProvider(),
		roll:     &scriptedRoll{value: 0.99},
		errc:     make(chan error, 1),
	}

	session, err := game.NewSession(game.Options{
		Balance:      economy.DefaultBalance(),
		Provider:     r.provider,
		Ticks:        r.ticks,
		Random:       r.roll,
		InitialState: initial,
		Observers:    observers,
	})
	if err != nil {
		return nil, err
	}
	r.session = session

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go func() { r.errc <- session.Run(ctx) }()
	return r, nil
}

func (r *sessionRunner) stop() error {
	if r == nil {
		return nil
	}
	r.cancel()
	r.provider.Release()
	select {
	case err := <-r.errc:
		return err
	case <-time.After(stepTimeout):
		return fmt.Errorf("session did not stop")
	}
}

func (r *sessionRunner) fire(n int) error {
	for i := 0; i < n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
		taken := r.ticks.Fire(ctx)
		cancel()
		if !taken {
			return fmt.Errorf("tick %d was not taken", i+1)
		}
	}
	return nil
}

func (r *sessionRunner) settle() (game.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	return r.session.Settle(ctx)
}

func (r *sessionRunner) snapshot() (game.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	return r.session.Snapshot(ctx)
}

func (r *sessionRunner) build() (game.BuildResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	return r.session.BuildStation(ctx)
}

// stationID resolves a station name, falling back to the name itself
func (r *sessionRunner) stationID(name string) (string, error) {
	snap, err := r.snapshot()
	if err != nil {
		return "", err
	}
	if st, ok := snap.State.FindStationByName(name); ok {
		return st.ID, nil
	}
	return name, nil
}

type sessionContext struct {
	runner *sessionRunner
	result game.Result
	chat   game.ChatResult
}

func (sc *sessionContext) reset() error {
	err := sc.runner.stop()
	sc.runner = nil
	sc.result = game.Result{}
	sc.chat = game.ChatResult{}
	return err
}

// Given steps

func (sc *sessionContext) aRunningGameSession() error {
	runner, err := startSessionRunner(nil)
	if err != nil {
		return err
	}
	sc.runner = runner
	return nil
}

func (sc *sessionContext) aRunningGameSessionWithCredits(credits int) error {
	state := economy.NewState(economy.DefaultBalance())
	state.Credits = credits
	runner, err := startSessionRunner(&state)
	if err != nil {
		return err
	}
	sc.runner = runner
	return nil
}

func (sc *sessionContext) theProviderDescribesAStation(name, stationType string) error {
	sc.runner.provider.SetStation(economy.StationDetails{
		Name:        name,
		Description: "Fresh concrete under flickering signs.",
		Type:        stationType,
	}, nil)
	return nil
}

func (sc *sessionContext) theProviderCannotDescribeStations() error {
	sc.runner.provider.SetStation(economy.StationDetails{}, errors.New("content service unavailable"))
	return nil
}

func (sc *sessionContext) theProviderReportsAnEvent(impact string, change int) error {
	sc.runner.provider.SetEvent(economy.EventDetails{
		Title:        "Grid Incident",
		Description:  "Something happened on the line.",
		ImpactType:   impact,
		CreditChange: change,
	}, nil)
	return nil
}

func (sc *sessionContext) theProviderCannotReportEvents() error {
	sc.runner.provider.SetEvent(economy.EventDetails{}, errors.New("content service unavailable"))
	return nil
}

func (sc *sessionContext) theProviderReplies(reply string) error {
	sc.runner.provider.SetChat(reply, nil)
	return nil
}

func (sc *sessionContext) theProviderCannotChat() error {
	sc.runner.provider.SetChat("", errors.New("content service unavailable"))
	return nil
}

func (sc *sessionContext) theProviderIsSlowToAnswer() error {
	sc.runner.provider.Hold()
	return nil
}

func (sc *sessionContext) randomEventsAlwaysRoll() error {
	sc.runner.roll.set(0)
	return nil
}

// When steps

func (sc *sessionContext) thePlayerBuildsAStation() error {
	result, err := sc.runner.build()
	if err != nil {
		return err
	}
	sc.result = result.Result
	return nil
}

func (sc *sessionContext) thePlayerUpgrades(name string) error {
	id, err := sc.runner.stationID(name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	result, err := sc.runner.session.UpgradeStation(ctx, id)
	if err != nil {
		return err
	}
	sc.result = result.Result
	return nil
}

func (sc *sessionContext) thePlayerSaysAt(message, name string) error {
	id, err := sc.runner.stationID(name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	result, err := sc.runner.session.Chat(ctx, id, message)
	if err != nil {
		return err
	}
	sc.chat = result
	sc.result = result.Result
	return nil
}

func (sc *sessionContext) setPlaying(playing bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	_, err := sc.runner.session.SetPlaying(ctx, playing)
	return err
}

func (sc *sessionContext) thePlayerPausesTheSession() error {
	return sc.setPlaying(false)
}

func (sc *sessionContext) thePlayerResumesTheSession() error {
	return sc.setPlaying(true)
}

func (sc *sessionContext) ticksFire(n int) error {
	return sc.runner.fire(n)
}

func (sc *sessionContext) theProviderAnswers() error {
	sc.runner.provider.Release()
	return nil
}

func (sc *sessionContext) theSessionSettles() error {
	_, err := sc.runner.settle()
	return err
}

// Then steps

func (sc *sessionContext) theIntentShouldBeAccepted() error {
	if sc.result.Rejected() {
		return fmt.Errorf("expected intent to be accepted, rejected with: %v", sc.result.Reason)
	}
	return nil
}

func (sc *sessionContext) theIntentShouldBeRejectedWith(reason string) error {
	if !sc.result.Rejected() {
		return fmt.Errorf("expected intent to be rejected with %q", reason)
	}
	if !strings.Contains(sc.result.Reason.Error(), reason) {
		return fmt.Errorf("expected rejection containing %q, got %q", reason, sc.result.Reason.Error())
	}
	return nil
}

func (sc *sessionContext) aTickShouldNotBeTaken() error {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if sc.runner.ticks.Fire(ctx) {
		return fmt.Errorf("a paused session took a tick")
	}
	return nil
}

func (sc *sessionContext) theSessionShouldHaveCredits(expected int) error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if snap.State.Credits != expected {
		return fmt.Errorf("expected %d credits, got %d", expected, snap.State.Credits)
	}
	return nil
}

func (sc *sessionContext) theSessionShouldHaveReputation(expected int) error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if snap.State.Reputation != expected {
		return fmt.Errorf("expected reputation %d, got %d", expected, snap.State.Reputation)
	}
	return nil
}

func (sc *sessionContext) theSessionShouldHaveStations(expected int) error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if len(snap.State.Stations) != expected {
		return fmt.Errorf("expected %d stations, got %d", expected, len(snap.State.Stations))
	}
	return nil
}

func (sc *sessionContext) theSessionShouldBeAtTick(expected int64) error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if snap.State.Tick != expected {
		return fmt.Errorf("expected tick %d, got %d", expected, snap.State.Tick)
	}
	return nil
}

func (sc *sessionContext) sessionStation(name string) (economy.Station, error) {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return economy.Station{}, err
	}
	st, ok := snap.State.FindStationByName(name)
	if !ok {
		return economy.Station{}, fmt.Errorf("station %q not found", name)
	}
	return st, nil
}

func (sc *sessionContext) sessionStationShouldBeActiveAtLevel(name, stationType string, level int) error {
	st, err := sc.sessionStation(name)
	if err != nil {
		return err
	}
	if !st.IsActive() || string(st.Type) != stationType || st.Level != level {
		return fmt.Errorf("expected active %s station at level %d, got %s %s at level %d",
			stationType, level, st.Status, st.Type, st.Level)
	}
	return nil
}

func (sc *sessionContext) sessionStationShouldEarnWithPassengers(name string, revenue, passengers int) error {
	st, err := sc.sessionStation(name)
	if err != nil {
		return err
	}
	if st.RevenuePerTick != revenue || st.Passengers != passengers {
		return fmt.Errorf("expected revenue %d with %d passengers, got %d with %d",
			revenue, passengers, st.RevenuePerTick, st.Passengers)
	}
	return nil
}

func (sc *sessionContext) theNewestSessionEventShouldBe(impact string) error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if len(snap.State.Events) == 0 {
		return fmt.Errorf("expected a %s event, the log is empty", impact)
	}
	if got := snap.State.Events[0].Impact; string(got) != impact {
		return fmt.Errorf("expected newest event to be %s, got %s", impact, got)
	}
	return nil
}

func (sc *sessionContext) theSessionEventLogShouldBeEmpty() error {
	snap, err := sc.runner.snapshot()
	if err != nil {
		return err
	}
	if len(snap.State.Events) != 0 {
		return fmt.Errorf("expected no events, got %d", len(snap.State.Events))
	}
	return nil
}

// theProviderShouldHaveBeenAskedFor waits briefly since provider calls start on their own goroutines
func (sc *sessionContext) theProviderShouldHaveBeenAskedFor(expected int, op string) error {
	op = strings.TrimSuffix(op, "s")
	deadline := time.Now().Add(time.Second)
	for {
		got := sc.runner.provider.Calls(op)
		if got == expected {
			return nil
		}
		if got > expected || time.Now().After(deadline) {
			return fmt.Errorf("expected %d %s requests, got %d", expected, op, got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (sc *sessionContext) theCommuterShouldReply(reply string) error {
	if sc.chat.Reply != reply {
		return fmt.Errorf("expected reply %q, got %q", reply, sc.chat.Reply)
	}
	return nil
}

func (sc *sessionContext) theChatShouldBeDegraded() error {
	if !sc.chat.Degraded {
		return fmt.Errorf("expected the chat to be degraded")
	}
	return nil
}

// InitializeSessionScenario registers the game session steps
func InitializeSessionScenario(ctx *godog.ScenarioContext) {
	sc := &sessionContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		return ctx, sc.reset()
	})
	ctx.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		return ctx, sc.reset()
	})

	// Given steps
	ctx.Step(`^a running game session$`, sc.aRunningGameSession)
	ctx.Step(`^a running game session with (\d+) credits$`, sc.aRunningGameSessionWithCredits)
	ctx.Step(`^the provider describes a station "([^"]*)" of type "([^"]*)"$`, sc.theProviderDescribesAStation)
	ctx.Step(`^the provider cannot describe stations$`, sc.theProviderCannotDescribeStations)
	ctx.Step(`^the provider reports a "([^"]*)" event changing credits by (-?\d+)$`, sc.theProviderReportsAnEvent)
	ctx.Step(`^the provider cannot report events$`, sc.theProviderCannotReportEvents)
	ctx.Step(`^the provider replies "([^"]*)"$`, sc.theProviderReplies)
	ctx.Step(`^the provider cannot chat$`, sc.theProviderCannotChat)
	ctx.Step(`^the provider is slow to answer$`, sc.theProviderIsSlowToAnswer)
	ctx.Step(`^random events always roll$`, sc.randomEventsAlwaysRoll)

	// When steps
	ctx.Step(`^the player builds a station$`, sc.thePlayerBuildsAStation)
	ctx.Step(`^the player upgrades "([^"]*)"$`, sc.thePlayerUpgrades)
	ctx.Step(`^the player says "([^"]*)" at "([^"]*)"$`, sc.thePlayerSaysAt)
	ctx.Step(`^the player pauses the session$`, sc.thePlayerPausesTheSession)
	ctx.Step(`^the player resumes the session$`, sc.thePlayerResumesTheSession)
	ctx.Step(`^(\d+) ticks? fires?$`, sc.ticksFire)
	ctx.Step(`^the provider answers$`, sc.theProviderAnswers)
	ctx.Step(`^the session settles$`, sc.theSessionSettles)

	// Then steps
	ctx.Step(`^the intent should be accepted$`, sc.theIntentShouldBeAccepted)
	ctx.Step(`^the intent should be rejected with "([^"]*)"$`, sc.theIntentShouldBeRejectedWith)
	ctx.Step(`^a tick should not be taken$`, sc.aTickShouldNotBeTaken)
	ctx.Step(`^the session should have (\d+) credits$`, sc.theSessionShouldHaveCredits)
	ctx.Step(`^the session should have (\d+) reputation$`, sc.theSessionShouldHaveReputation)
	ctx.Step(`^the session should have (\d+) stations$`, sc.theSessionShouldHaveStations)
	ctx.Step(`^the session should be at tick (\d+)$`, sc.theSessionShouldBeAtTick)
	ctx.Step(`^session station "([^"]*)" should be an active "([^"]*)" station at level (\d+)$`, sc.sessionStationShouldBeActiveAtLevel)
	ctx.Step(`^session station "([^"]*)" should earn (\d+) per tick with (\d+) passengers$`, sc.sessionStationShouldEarnWithPassengers)
	ctx.Step(`^the newest session event should be "([^"]*)"$`, sc.theNewestSessionEventShouldBe)
	ctx.Step(`^the session event log should be empty$`, sc.theSessionEventLogShouldBeEmpty)
	ctx.Step(`^the provider should have been asked for (\d+) (stations?|events?|chats?)$`, sc.theProviderShouldHaveBeenAskedFor)
	ctx.Step(`^the commuter should reply "([^"]*)"$`, sc.theCommuterShouldReply)
	ctx.Step(`^the chat should be degraded$`, sc.theChatShouldBeDegraded)
}
