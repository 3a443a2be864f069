package game_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/test/helpers"
)

// scriptedRandom returns the same value until told otherwise
type scriptedRandom struct {
	mu    sync.Mutex
	value float64
}

func (r *scriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

func (r *scriptedRandom) Set(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
}

type changeLog struct {
	mu      sync.Mutex
	changes []game.Change
}

func (l *changeLog) Observe(c game.Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) All() []game.Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]game.Change(nil), l.changes...)
}

func (l *changeLog) ByCause(cause game.ChangeCause) []game.Change {
	var out []game.Change
	for _, c := range l.All() {
		if c.Cause == cause {
			out = append(out, c)
		}
	}
	return out
}

type harness struct {
	t        *testing.T
	session  *game.Session
	ticks    *game.ManualTickSource
	provider *helpers.MockContentProvider
	random   *scriptedRandom
	changes  *changeLog
	cancel   context.CancelFunc
	errc     chan error
}

// startSession runs a session with no random events unless the test changes the roll
func startSession(t *testing.T, configure ...func(*game.Options)) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		ticks:    game.NewManualTickSource(),
		provider: helpers.NewMockContentProvider(),
		random:   &scriptedRandom{value: 0.99},
		changes:  &changeLog{},
		errc:     make(chan error, 1),
	}

	opts := game.Options{
		Balance:   economy.DefaultBalance(),
		Provider:  h.provider,
		Ticks:     h.ticks,
		Random:    h.random,
		Observers: []game.Observer{h.changes},
	}
	for _, fn := range configure {
		fn(&opts)
	}

	session, err := game.NewSession(opts)
	require.NoError(t, err)
	h.session = session

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.errc <- session.Run(ctx) }()

	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	h.provider.Release()
	select {
	case err := <-h.errc:
		require.NoError(h.t, err)
		h.errc <- nil
	case <-time.After(5 * time.Second):
		h.t.Fatal("session did not stop")
	}
}

func (h *harness) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	h.t.Cleanup(cancel)
	return ctx
}

func (h *harness) tick(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		require.True(h.t, h.ticks.Fire(h.ctx()), "tick %d was not taken", i)
	}
}

func (h *harness) snapshot() game.Snapshot {
	h.t.Helper()
	snap, err := h.session.Snapshot(h.ctx())
	require.NoError(h.t, err)
	return snap
}

func (h *harness) settle() game.Snapshot {
	h.t.Helper()
	snap, err := h.session.Settle(h.ctx())
	require.NoError(h.t, err)
	return snap
}
