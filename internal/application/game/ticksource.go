package game

import (
	"context"
	"time"
)

// TickSource drives the scheduler. The session only reads from C while playing.
// Reset is called whenever playback starts or resumes, Stop when it pauses or ends.
type TickSource interface {
	C() <-chan time.Time
	Reset()
	Stop()
}

// IntervalTickSource fires on a fixed wall-clock period.
// The first tick after Reset arrives one full period later.
type IntervalTickSource struct {
	interval time.Duration
	ticker   *time.Ticker
}

// NewIntervalTickSource creates an idle source. The ticker starts on the first Reset.
func NewIntervalTickSource(interval time.Duration) *IntervalTickSource {
	return &IntervalTickSource{interval: interval}
}

// C returns nil until the first Reset, so a select on it blocks
func (t *IntervalTickSource) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}

func (t *IntervalTickSource) Reset() {
	if t.ticker == nil {
		t.ticker = time.NewTicker(t.interval)
		return
	}
	t.ticker.Reset(t.interval)
}

func (t *IntervalTickSource) Stop() {
	if t.ticker != nil {
		t.ticker.Stop()
	}
}

// ManualTickSource fires only when told to. Used by tests and headless simulation.
type ManualTickSource struct {
	ch chan time.Time
}

// NewManualTickSource creates an idle manual source
func NewManualTickSource() *ManualTickSource {
	return &ManualTickSource{ch: make(chan time.Time)}
}

func (t *ManualTickSource) C() <-chan time.Time { return t.ch }

func (t *ManualTickSource) Reset() {}

func (t *ManualTickSource) Stop() {}

// Fire hands one tick to the session and blocks until it has been taken.
// It returns false if ctx ends first, which is what happens while paused.
func (t *ManualTickSource) Fire(ctx context.Context) bool {
	select {
	case t.ch <- time.Now():
		return true
	case <-ctx.Done():
		return false
	}
}
