package game

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// Saver keeps the latest settled state of a session and writes it to a save slot.
//
// States observed while a build is pending are skipped: they carry the debit of a
// station that does not exist yet, and a resumed network would lose the credits.
type Saver struct {
	repo   economy.SnapshotRepository
	slot   string
	logger *zap.Logger

	mu      sync.Mutex
	latest  *economy.State
	saved   uint64
	pending map[string]struct{}
}

// NewSaver creates a saver for the given slot
func NewSaver(repo economy.SnapshotRepository, slot string, logger *zap.Logger) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saver{
		repo:    repo,
		slot:    slot,
		logger:  logger.Named("saver"),
		pending: make(map[string]struct{}),
	}
}

// Observe records the state of a change
func (s *Saver) Observe(change Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch change.Cause {
	case CauseBuildStarted:
		s.pending[change.BuildID] = struct{}{}
	case CauseBuildCommitted, CauseBuildRolledBack:
		delete(s.pending, change.BuildID)
	}
	if len(s.pending) > 0 {
		return
	}

	state := change.State
	s.latest = &state
}

// Run saves every interval until ctx is cancelled, then saves once more.
// A zero interval only saves on shutdown.
func (s *Saver) Run(ctx context.Context, interval time.Duration) error {
	writeCtx := context.WithoutCancel(ctx)

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-tick:
			s.Save(writeCtx)
		case <-ctx.Done():
			s.Save(writeCtx)
			return nil
		}
	}
}

// Save writes the latest state if it changed since the last save.
// Failures are logged; persistence is best effort.
func (s *Saver) Save(ctx context.Context) bool {
	s.mu.Lock()
	latest := s.latest
	saved := s.saved
	s.mu.Unlock()

	if latest == nil || (saved != 0 && latest.Version == saved) {
		return false
	}

	if err := s.repo.Save(ctx, s.slot, *latest); err != nil {
		s.logger.Error("failed to save network", zap.String("slot", s.slot), zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.saved = latest.Version
	s.mu.Unlock()

	s.logger.Debug("network saved",
		zap.String("slot", s.slot),
		zap.Int64("tick", latest.Tick),
		zap.Uint64("version", latest.Version),
	)
	return true
}
