package game_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
)

func TestSession_TickAccruesIncome(t *testing.T) {
	// Arrange
	h := startSession(t)

	// Act
	h.tick(1)

	// Assert
	snap := h.snapshot()
	assert.Equal(t, int64(1), snap.State.Tick)
	assert.Equal(t, 1013, snap.State.Credits)
	assert.Equal(t, 99.0, snap.State.Energy)
	assert.Equal(t, 90, snap.Status.PassengerSatisfaction)

	ticks := h.changes.ByCause(game.CauseTick)
	require.Len(t, ticks, 1)
	require.Len(t, ticks[0].Movements, 1)
	mv := ticks[0].Movements[0]
	assert.Equal(t, ledger.TransactionTypeTickIncome, mv.Type)
	assert.Equal(t, 13, mv.Amount)
	assert.Equal(t, 1000, mv.BalanceBefore)
	assert.Equal(t, 1013, mv.BalanceAfter)
}

func TestSession_PausedSessionDoesNotTick(t *testing.T) {
	h := startSession(t)

	snap, err := h.session.SetPlaying(h.ctx(), false)
	require.NoError(t, err)
	assert.False(t, snap.Playing)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.False(t, h.ticks.Fire(ctx), "a paused session must not take ticks")
	assert.Equal(t, int64(0), h.snapshot().State.Tick)

	_, err = h.session.SetPlaying(h.ctx(), true)
	require.NoError(t, err)
	h.tick(1)
	assert.Equal(t, int64(1), h.snapshot().State.Tick)
}

func TestSession_StartPaused(t *testing.T) {
	h := startSession(t, func(o *game.Options) { o.StartPaused = true })

	assert.False(t, h.snapshot().Playing)
}

func TestSession_BuildCommits(t *testing.T) {
	// Arrange
	h := startSession(t)

	// Act
	res, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)
	snap := h.settle()

	// Assert
	assert.False(t, res.Rejected())
	assert.NotEmpty(t, res.BuildID)
	assert.Equal(t, 500, res.State.Credits)

	assert.Equal(t, 500, snap.State.Credits)
	require.Len(t, snap.State.Stations, 3)
	built := snap.State.Stations[2]
	assert.Equal(t, "Neon Spire", built.Name)
	assert.Equal(t, economy.StationTypeCybernetic, built.Type)
	assert.Equal(t, 1, built.Level)
	assert.Equal(t, economy.StationStatusActive, built.Status)
	require.Len(t, snap.State.Events, 1)
	assert.Equal(t, "Construction complete at Neon Spire.", snap.State.Events[0].Description)

	started := h.changes.ByCause(game.CauseBuildStarted)
	require.Len(t, started, 1)
	assert.Equal(t, -500, started[0].Movements[0].Amount)
	assert.Len(t, h.changes.ByCause(game.CauseBuildCommitted), 1)
}

func TestSession_BuildFailureRefunds(t *testing.T) {
	h := startSession(t)
	h.provider.SetStation(economy.StationDetails{}, errors.New("quota exceeded"))

	res, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)
	require.False(t, res.Rejected())
	snap := h.settle()

	assert.Equal(t, 1000, snap.State.Credits)
	assert.Len(t, snap.State.Stations, 2)
	assert.Empty(t, snap.State.Events)
	assert.False(t, snap.Building)

	rolled := h.changes.ByCause(game.CauseBuildRolledBack)
	require.Len(t, rolled, 1)
	assert.Equal(t, ledger.TransactionTypeBuildRefund, rolled[0].Movements[0].Type)
	assert.Equal(t, 500, rolled[0].Movements[0].Amount)
	assert.Error(t, rolled[0].Err)
}

func TestSession_SecondBuildWhilePendingIsRejected(t *testing.T) {
	h := startSession(t)
	h.provider.Hold()

	first, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)
	require.False(t, first.Rejected())

	second, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)
	assert.True(t, second.Rejected())
	assert.ErrorIs(t, second.Reason, economy.ErrActionInFlight)
	assert.Equal(t, 500, second.State.Credits, "a rejected build must not debit")

	h.provider.Release()
	snap := h.settle()
	assert.Len(t, snap.State.Stations, 3)
	assert.Equal(t, 500, snap.State.Credits)
	assert.Equal(t, 1, h.provider.Calls("station"))
}

func TestSession_UnaffordableBuildIsRejected(t *testing.T) {
	initial := economy.NewState(economy.DefaultBalance())
	initial.Credits = 499
	h := startSession(t, func(o *game.Options) { o.InitialState = &initial })

	res, err := h.session.BuildStation(h.ctx())

	require.NoError(t, err)
	require.True(t, res.Rejected())
	var insufficient *economy.ErrInsufficientCredits
	require.ErrorAs(t, res.Reason, &insufficient)
	assert.Equal(t, 500, insufficient.Required)
	assert.Equal(t, 499, h.snapshot().State.Credits)
	assert.Zero(t, h.provider.Calls("station"))
}

func TestSession_TicksContinueWhileBuildPending(t *testing.T) {
	h := startSession(t)
	h.provider.Hold()

	_, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)
	h.tick(3)

	pending := h.snapshot()
	assert.True(t, pending.Building)
	assert.False(t, pending.CanBuild)
	assert.Equal(t, int64(3), pending.State.Tick)
	assert.Equal(t, 500+3*13, pending.State.Credits)

	h.provider.Release()
	snap := h.settle()
	assert.Equal(t, 500+3*13, snap.State.Credits)
	assert.Len(t, snap.State.Stations, 3)
}

func TestSession_RandomEventSingleFlight(t *testing.T) {
	// Arrange
	h := startSession(t)
	h.random.Set(0)
	h.provider.Hold()

	// Act
	h.tick(3)
	h.random.Set(0.99)
	h.provider.Release()
	snap := h.settle()

	// Assert
	assert.Equal(t, 1, h.provider.Calls("event"), "triggers while a request is outstanding are dropped")
	assert.Equal(t, []int{50}, h.provider.Reputations())
	require.Len(t, snap.State.Events, 1)
	assert.Equal(t, "Power Surge", snap.State.Events[0].Title)
	assert.Equal(t, economy.ImpactNegative, snap.State.Events[0].Impact)
	assert.Equal(t, int64(3), snap.State.Events[0].Timestamp, "stamped with the reconciliation tick")
	assert.Equal(t, 45, snap.State.Reputation)
	assert.Equal(t, 1000+3*13-50, snap.State.Credits)

	events := h.changes.ByCause(game.CauseEvent)
	require.Len(t, events, 1)
	assert.Equal(t, ledger.TransactionTypeEventAdjustment, events[0].Movements[0].Type)
	assert.Equal(t, -50, events[0].Movements[0].Amount)
}

func TestSession_RandomEventFailureChangesNothing(t *testing.T) {
	h := startSession(t)
	h.provider.SetEvent(economy.EventDetails{}, errors.New("model overloaded"))
	h.random.Set(0)

	h.tick(1)
	h.random.Set(0.99)
	snap := h.settle()

	assert.Empty(t, snap.State.Events)
	assert.Equal(t, 50, snap.State.Reputation)
	assert.Equal(t, 1013, snap.State.Credits)
	assert.Len(t, h.changes.ByCause(game.CauseEventFailed), 1)
}

func TestSession_EventCreditsFloorAtZero(t *testing.T) {
	initial := economy.NewState(economy.DefaultBalance())
	initial.Credits = 10
	initial.Stations = nil
	h := startSession(t, func(o *game.Options) { o.InitialState = &initial })
	h.provider.SetEvent(economy.EventDetails{Title: "Audit", ImpactType: "negative", CreditChange: -300}, nil)
	h.random.Set(0)

	h.tick(1)
	h.random.Set(0.99)
	snap := h.settle()

	assert.Equal(t, 0, snap.State.Credits)
	events := h.changes.ByCause(game.CauseEvent)
	require.Len(t, events, 1)
	assert.Equal(t, -10, events[0].Movements[0].Amount)
}

func TestSession_Upgrade(t *testing.T) {
	h := startSession(t)

	res, err := h.session.UpgradeStation(h.ctx(), "st-0")

	require.NoError(t, err)
	require.False(t, res.Rejected())
	assert.Equal(t, 2, res.Station.Level)
	assert.Equal(t, 7, res.Station.RevenuePerTick)
	assert.Equal(t, 144, res.Station.Passengers)
	assert.Equal(t, 800, h.snapshot().State.Credits)

	upgrades := h.changes.ByCause(game.CauseUpgrade)
	require.Len(t, upgrades, 1)
	assert.Equal(t, ledger.TransactionTypeStationUpgrade, upgrades[0].Movements[0].Type)
}

func TestSession_UpgradeUnknownStationIsRejected(t *testing.T) {
	h := startSession(t)

	res, err := h.session.UpgradeStation(h.ctx(), "st-404")

	require.NoError(t, err)
	assert.True(t, res.Rejected())
	var notFound *economy.ErrStationNotFound
	assert.ErrorAs(t, res.Reason, &notFound)
	assert.Equal(t, 1000, h.snapshot().State.Credits)
	assert.Empty(t, h.changes.ByCause(game.CauseUpgrade))
}

func TestSession_Chat(t *testing.T) {
	h := startSession(t)

	res, err := h.session.Chat(h.ctx(), "st-1", "  how is the commute?  ")

	require.NoError(t, err)
	require.False(t, res.Rejected())
	assert.Equal(t, "Core Plaza", res.StationName)
	assert.Equal(t, "Trains are late again, choom.", res.Reply)
	assert.False(t, res.Degraded)
}

func TestSession_ChatDegradesOnProviderFailure(t *testing.T) {
	h := startSession(t)
	h.provider.SetChat("", errors.New("timeout"))

	res, err := h.session.Chat(h.ctx(), "st-0", "hello")

	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, economy.IgnoredChatReply, res.Reply)
}

func TestSession_ChatRejections(t *testing.T) {
	h := startSession(t)

	empty, err := h.session.Chat(h.ctx(), "st-0", "   ")
	require.NoError(t, err)
	assert.ErrorIs(t, empty.Reason, economy.ErrEmptyMessage)

	unknown, err := h.session.Chat(h.ctx(), "nope", "hi")
	require.NoError(t, err)
	var notFound *economy.ErrStationNotFound
	assert.ErrorAs(t, unknown.Reason, &notFound)

	assert.Zero(t, h.provider.Calls("chat"))
}

func TestSession_OneChatPerStation(t *testing.T) {
	h := startSession(t)
	h.provider.Hold()

	firstc := make(chan game.ChatResult, 1)
	go func() {
		res, _ := h.session.Chat(context.Background(), "st-0", "first")
		firstc <- res
	}()
	require.Eventually(t, func() bool { return h.provider.Calls("chat") == 1 }, time.Second, 5*time.Millisecond)

	second, err := h.session.Chat(h.ctx(), "st-0", "second")
	require.NoError(t, err)
	assert.ErrorIs(t, second.Reason, economy.ErrActionInFlight)

	h.provider.Release()
	other, err := h.session.Chat(h.ctx(), "st-1", "other station")
	require.NoError(t, err)
	assert.False(t, other.Rejected())

	first := <-firstc
	assert.False(t, first.Rejected())
}

func TestSession_ChatLocksStationsSharingAName(t *testing.T) {
	// Arrange
	initial := economy.NewState(economy.DefaultBalance())
	initial.Stations = append([]economy.Station(nil), initial.Stations...)
	initial.Stations[1].Name = initial.Stations[0].Name
	h := startSession(t, func(o *game.Options) { o.InitialState = &initial })
	h.provider.Hold()

	firstc := make(chan game.ChatResult, 1)
	go func() {
		res, _ := h.session.Chat(context.Background(), "st-0", "first")
		firstc <- res
	}()
	require.Eventually(t, func() bool { return h.provider.Calls("chat") == 1 }, time.Second, 5*time.Millisecond)

	// Act
	secondc := make(chan game.ChatResult, 1)
	go func() {
		res, _ := h.session.Chat(context.Background(), "st-1", "second")
		secondc <- res
	}()
	require.Eventually(t, func() bool { return h.provider.Calls("chat") == 2 }, time.Second, 5*time.Millisecond,
		"a namesake station must not share the chat lock")
	h.provider.Release()

	// Assert
	assert.False(t, (<-firstc).Rejected())
	assert.False(t, (<-secondc).Rejected())
}

func TestSession_ShutdownCancelsOutstandingBuild(t *testing.T) {
	h := startSession(t)
	h.provider.Hold()

	_, err := h.session.BuildStation(h.ctx())
	require.NoError(t, err)

	h.cancel()
	select {
	case <-h.session.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}

	_, err = h.session.Snapshot(h.ctx())
	assert.ErrorIs(t, err, game.ErrSessionClosed)
	assert.Empty(t, h.changes.ByCause(game.CauseBuildRolledBack), "late results are discarded after shutdown")
	assert.Empty(t, h.changes.ByCause(game.CauseBuildCommitted))
}

func TestSession_RunTwice(t *testing.T) {
	h := startSession(t)
	h.snapshot()

	err := h.session.Run(context.Background())

	assert.Error(t, err)
}

func TestNewSession_RequiresProvider(t *testing.T) {
	_, err := game.NewSession(game.Options{Balance: economy.DefaultBalance()})

	assert.Error(t, err)
}
