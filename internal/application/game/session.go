package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
)

const inboxSize = 32

// Options configures a Session
type Options struct {
	Balance  economy.Balance
	Provider economy.ContentProvider

	// Ticks defaults to an IntervalTickSource on Balance.TickInterval
	Ticks TickSource

	// Random drives event rolls and station placement. Defaults to a time-seeded PCG.
	Random economy.RandomSource

	Logger *zap.Logger

	// InitialState resumes a saved network. Nil starts a new one.
	InitialState *economy.State

	StartPaused bool
	Observers   []Observer
}

// Session owns the economy state of one network.
//
// Every transition runs on the goroutine executing Run. Ticks, player intents
// and provider results arrive as messages and are applied one at a time, so
// the state needs no locks. Provider calls run on their own goroutines and
// report back through the inbox; results that arrive after shutdown are dropped.
type Session struct {
	balance   economy.Balance
	provider  economy.ContentProvider
	ticks     TickSource
	rng       economy.RandomSource
	logger    *zap.Logger
	observers []Observer

	inbox   chan any
	done    chan struct{}
	started atomic.Bool
	wg      sync.WaitGroup

	// owned by the Run goroutine
	runCtx   context.Context
	state    economy.State
	playing  bool
	inflight *InflightSet
	pending  map[string]*economy.PendingBuild
	settlers []chan Snapshot
}

// NewSession creates a session. Nothing happens until Run is called.
func NewSession(opts Options) (*Session, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("content provider is required")
	}
	if opts.Balance.TickInterval <= 0 && opts.Ticks == nil {
		return nil, fmt.Errorf("tick interval must be positive")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ticks := opts.Ticks
	if ticks == nil {
		ticks = NewIntervalTickSource(opts.Balance.TickInterval)
	}

	rng := opts.Random
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	state := economy.NewState(opts.Balance)
	if opts.InitialState != nil {
		state = *opts.InitialState
	}

	return &Session{
		balance:   opts.Balance,
		provider:  opts.Provider,
		ticks:     ticks,
		rng:       rng,
		logger:    logger.Named("session"),
		observers: append([]Observer(nil), opts.Observers...),
		inbox:     make(chan any, inboxSize),
		done:      make(chan struct{}),
		state:     state,
		playing:   !opts.StartPaused,
		inflight:  NewInflightSet(),
		pending:   make(map[string]*economy.PendingBuild),
	}, nil
}

// Balance returns the tuning the session runs with
func (s *Session) Balance() economy.Balance {
	return s.balance
}

// Done is closed once Run has returned and all provider goroutines have exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run processes messages until ctx is cancelled.
// Cancelling ctx also cancels every outstanding provider call.
func (s *Session) Run(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("game session already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.runCtx = runCtx
	defer s.ticks.Stop()
	if s.playing {
		s.ticks.Reset()
	}

	s.logger.Info("session started",
		zap.Int64("tick", s.state.Tick),
		zap.Int("credits", s.state.Credits),
		zap.Int("stations", len(s.state.Stations)),
		zap.Bool("playing", s.playing),
	)

	for {
		var tickC <-chan time.Time
		if s.playing {
			tickC = s.ticks.C()
		}

		select {
		case <-runCtx.Done():
			cancel()
			s.wg.Wait()
			close(s.done)
			s.logger.Info("session stopped",
				zap.Int64("tick", s.state.Tick),
				zap.Int("pending_builds", len(s.pending)),
			)
			return nil
		case <-tickC:
			s.handleTick()
		case msg := <-s.inbox:
			s.handle(msg)
		}
	}
}

// messages

type buildRequest struct{ reply chan BuildResult }

type upgradeRequest struct {
	stationID string
	reply     chan UpgradeResult
}

type playbackRequest struct {
	playing bool
	reply   chan Snapshot
}

type chatRequest struct {
	stationID string
	message   string
	reply     chan ChatResult
}

type snapshotRequest struct{ reply chan Snapshot }

type settleRequest struct{ reply chan Snapshot }

type buildResolved struct {
	buildID string
	details economy.StationDetails
	err     error
}

type eventResolved struct {
	details economy.EventDetails
	err     error
}

type chatResolved struct {
	stationID   string
	stationName string
	reply       string
	err         error
	to          chan ChatResult
}

func (s *Session) handle(msg any) {
	switch m := msg.(type) {
	case buildRequest:
		m.reply <- s.handleBuild()
	case upgradeRequest:
		m.reply <- s.handleUpgrade(m.stationID)
	case playbackRequest:
		s.handlePlayback(m.playing)
		m.reply <- s.snapshot()
	case chatRequest:
		s.handleChat(m)
	case snapshotRequest:
		m.reply <- s.snapshot()
	case settleRequest:
		s.settlers = append(s.settlers, m.reply)
	case buildResolved:
		s.handleBuildResolved(m)
	case eventResolved:
		s.handleEventResolved(m)
	case chatResolved:
		s.handleChatResolved(m)
	default:
		s.logger.Error("unknown session message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
	s.notifySettlers()
}

func (s *Session) handleTick() {
	before := s.state
	next := economy.Advance(before, s.balance)

	s.install(Change{
		Cause: CauseTick,
		State: next,
		Movements: movement(ledger.TransactionTypeTickIncome, before, next,
			fmt.Sprintf("Fares collected on tick %d", next.Tick), ""),
	})
	s.logger.Debug("tick", zap.Int64("tick", next.Tick), zap.Int("credits", next.Credits), zap.Float64("energy", next.Energy))

	s.maybeRequestEvent()
}

func (s *Session) maybeRequestEvent() {
	if s.rng.Float64() >= s.balance.RandomEventProbability {
		return
	}
	if !s.inflight.TryAcquire(InflightEvent, "") {
		s.logger.Debug("random event skipped, request already in flight")
		return
	}

	reputation := s.state.Reputation
	s.spawn(func(ctx context.Context) any {
		details, err := s.provider.FetchRandomEvent(ctx, reputation)
		return eventResolved{details: details, err: err}
	})
}

func (s *Session) handleEventResolved(m eventResolved) {
	s.inflight.Release(InflightEvent, "")

	if m.err != nil {
		s.logger.Warn("random event request failed", zap.Error(m.err))
		s.publish(Change{Cause: CauseEventFailed, State: s.state, Playing: s.playing, Err: m.err})
		return
	}

	before := s.state
	eventID := economy.NewEventID("evt")
	next := economy.ApplyRandomEvent(before, s.balance, m.details, eventID)
	event := next.Events[0]

	s.install(Change{
		Cause:     CauseEvent,
		State:     next,
		Event:     &event,
		Movements: movement(ledger.TransactionTypeEventAdjustment, before, next, event.Title, eventID),
	})
	s.logger.Info("random event applied",
		zap.String("title", event.Title),
		zap.String("impact", string(event.Impact)),
		zap.Int("credit_change", next.Credits-before.Credits),
	)
}

func (s *Session) handleBuild() BuildResult {
	if !economy.CanBuild(s.state, s.balance) {
		return BuildResult{Result: rejected(s.state, &economy.ErrInsufficientCredits{
			Required:  s.balance.BuildCost,
			Available: s.state.Credits,
		})}
	}
	if s.inflight.Held(InflightBuild, "") {
		return BuildResult{Result: rejected(s.state, economy.ErrActionInFlight)}
	}

	buildID := economy.NewBuildID()
	before := s.state
	next, pb, err := economy.BeginBuild(before, s.balance, buildID)
	if err != nil {
		return BuildResult{Result: rejected(s.state, err)}
	}
	s.inflight.TryAcquire(InflightBuild, "")
	s.pending[buildID] = pb

	s.install(Change{
		Cause:     CauseBuildStarted,
		State:     next,
		BuildID:   buildID,
		Movements: movement(ledger.TransactionTypeStationBuild, before, next, "Station construction started", buildID),
	})
	s.logger.Info("station construction started", zap.String("build_id", buildID), zap.Int("cost", pb.Cost()))

	s.spawn(func(ctx context.Context) any {
		details, err := s.provider.FetchStationDetails(ctx)
		return buildResolved{buildID: buildID, details: details, err: err}
	})

	return BuildResult{Result: accepted(next), BuildID: buildID}
}

func (s *Session) handleBuildResolved(m buildResolved) {
	pb, ok := s.pending[m.buildID]
	if !ok {
		s.logger.Error("resolution for unknown build", zap.String("build_id", m.buildID))
		return
	}
	delete(s.pending, m.buildID)
	s.inflight.Release(InflightBuild, "")

	before := s.state

	if m.err != nil {
		next, err := economy.RollbackBuild(before, pb, m.err)
		if err != nil {
			s.logger.Error("build rollback rejected", zap.String("build_id", m.buildID), zap.Error(err))
			return
		}
		s.install(Change{
			Cause:     CauseBuildRolledBack,
			State:     next,
			BuildID:   m.buildID,
			Err:       m.err,
			Movements: movement(ledger.TransactionTypeBuildRefund, before, next, "Construction cancelled, cost refunded", m.buildID),
		})
		s.logger.Warn("station construction failed, cost refunded",
			zap.String("build_id", m.buildID),
			zap.Int64("started_tick", pb.StartedTick()),
			zap.Int64("resolved_tick", pb.ResolvedTick()),
			zap.Error(m.err),
		)
		return
	}

	coords := economy.RandomCoordinates(s.rng)
	next, station, err := economy.CommitBuild(before, s.balance, pb, m.details, coords, economy.NewStationID(), economy.NewEventID("build"))
	if err != nil {
		s.logger.Error("build commit rejected", zap.String("build_id", m.buildID), zap.Error(err))
		return
	}

	s.install(Change{
		Cause:   CauseBuildCommitted,
		State:   next,
		BuildID: m.buildID,
		Station: &station,
		Event:   &next.Events[0],
	})
	s.logger.Info("station construction complete",
		zap.String("build_id", m.buildID),
		zap.Int64("started_tick", pb.StartedTick()),
		zap.Int64("resolved_tick", pb.ResolvedTick()),
		zap.String("station_id", station.ID),
		zap.String("name", station.Name),
		zap.String("type", string(station.Type)),
	)
}

func (s *Session) handleUpgrade(stationID string) UpgradeResult {
	before := s.state
	next, station, err := economy.Upgrade(before, s.balance, stationID)
	if err != nil {
		return UpgradeResult{Result: rejected(before, err)}
	}

	s.install(Change{
		Cause:   CauseUpgrade,
		State:   next,
		Station: &station,
		Movements: movement(ledger.TransactionTypeStationUpgrade, before, next,
			fmt.Sprintf("%s upgraded to level %d", station.Name, station.Level), station.ID),
	})
	s.logger.Info("station upgraded",
		zap.String("station_id", station.ID),
		zap.Int("level", station.Level),
		zap.Int("revenue_per_tick", station.RevenuePerTick),
	)

	return UpgradeResult{Result: accepted(next), Station: station}
}

func (s *Session) handlePlayback(playing bool) {
	if s.playing == playing {
		return
	}
	s.playing = playing
	if playing {
		s.ticks.Reset()
	} else {
		s.ticks.Stop()
	}
	s.publish(Change{Cause: CausePlayback, State: s.state, Playing: playing})
	s.logger.Info("playback changed", zap.Bool("playing", playing))
}

func (s *Session) handleChat(m chatRequest) {
	message, err := economy.NormalizeChatMessage(m.message)
	if err != nil {
		m.reply <- ChatResult{Result: rejected(s.state, err)}
		return
	}

	station, ok := s.state.FindStation(m.stationID)
	if !ok {
		m.reply <- ChatResult{Result: rejected(s.state, &economy.ErrStationNotFound{ID: m.stationID})}
		return
	}
	if !s.inflight.TryAcquire(InflightChat, station.ID) {
		m.reply <- ChatResult{Result: rejected(s.state, economy.ErrActionInFlight), StationName: station.Name}
		return
	}

	id, name := station.ID, station.Name
	s.spawn(func(ctx context.Context) any {
		reply, err := s.provider.FetchChatReply(ctx, name, message)
		return chatResolved{stationID: id, stationName: name, reply: reply, err: err, to: m.reply}
	})
}

func (s *Session) handleChatResolved(m chatResolved) {
	s.inflight.Release(InflightChat, m.stationID)

	result := ChatResult{Result: accepted(s.state), StationName: m.stationName, Reply: m.reply}
	if m.err != nil {
		s.logger.Warn("chat request failed", zap.String("station", m.stationName), zap.Error(m.err))
		result.Reply = economy.IgnoredChatReply
		result.Degraded = true
	}
	m.to <- result
}

// install replaces the state and publishes the change
func (s *Session) install(change Change) {
	s.state = change.State
	change.Playing = s.playing
	s.publish(change)
}

func (s *Session) publish(change Change) {
	for _, o := range s.observers {
		o.Observe(change)
	}
}

// spawn runs fn on its own goroutine and posts its result back to the loop
func (s *Session) spawn(fn func(ctx context.Context) any) {
	ctx := s.runCtx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		msg := fn(ctx)
		select {
		case s.inbox <- msg:
		case <-ctx.Done():
		}
	}()
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:    s.state,
		Playing:  s.playing,
		Building: s.inflight.Held(InflightBuild, ""),
		CanBuild: economy.CanBuild(s.state, s.balance) && !s.inflight.Held(InflightBuild, ""),
		Status:   economy.Status(s.state),
	}
}

func (s *Session) notifySettlers() {
	if len(s.settlers) == 0 || s.inflight.Len() > 0 {
		return
	}
	snap := s.snapshot()
	for _, reply := range s.settlers {
		reply <- snap
	}
	s.settlers = nil
}
