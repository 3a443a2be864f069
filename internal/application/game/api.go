package game

import (
	"context"
)

// BuildStation debits the build cost and asks the provider for a new station.
// The build resolves asynchronously: it commits or is refunded later.
func (s *Session) BuildStation(ctx context.Context) (BuildResult, error) {
	reply := make(chan BuildResult, 1)
	return call(ctx, s, buildRequest{reply: reply}, reply)
}

// UpgradeStation raises the level of a station if the network can pay for it
func (s *Session) UpgradeStation(ctx context.Context, stationID string) (UpgradeResult, error) {
	reply := make(chan UpgradeResult, 1)
	return call(ctx, s, upgradeRequest{stationID: stationID, reply: reply}, reply)
}

// SetPlaying pauses or resumes the tick scheduler
func (s *Session) SetPlaying(ctx context.Context, playing bool) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	return call(ctx, s, playbackRequest{playing: playing, reply: reply}, reply)
}

// Chat sends a message to a commuter at the station and waits for the answer.
// Provider failures degrade to the stock reply instead of an error.
func (s *Session) Chat(ctx context.Context, stationID, message string) (ChatResult, error) {
	reply := make(chan ChatResult, 1)
	return call(ctx, s, chatRequest{stationID: stationID, message: message, reply: reply}, reply)
}

// Snapshot returns the current state
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	return call(ctx, s, snapshotRequest{reply: reply}, reply)
}

// Settle waits until no provider request is outstanding and returns the state at that point
func (s *Session) Settle(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	return call(ctx, s, settleRequest{reply: reply}, reply)
}

func call[T any](ctx context.Context, s *Session, msg any, reply <-chan T) (T, error) {
	var zero T

	select {
	case s.inbox <- msg:
	case <-s.done:
		return zero, ErrSessionClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-reply:
		return r, nil
	case <-s.done:
		return zero, ErrSessionClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
