package game

import (
	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
	"github.com/andrescamacho/neonrails-go/internal/domain/ledger"
)

// ChangeCause says which transition produced a Change
type ChangeCause string

const (
	CauseTick            ChangeCause = "tick"
	CauseBuildStarted    ChangeCause = "build_started"
	CauseBuildCommitted  ChangeCause = "build_committed"
	CauseBuildRolledBack ChangeCause = "build_rolled_back"
	CauseUpgrade         ChangeCause = "upgrade"
	CauseEvent           ChangeCause = "event"
	CauseEventFailed     ChangeCause = "event_failed"
	CausePlayback        ChangeCause = "playback"
)

// CreditMovement describes one change of the credit balance
type CreditMovement struct {
	Type          ledger.TransactionType
	Tick          int64
	Amount        int
	BalanceBefore int
	BalanceAfter  int
	Description   string
	RelatedID     string
}

// Change is published after every transition the session installs.
// Failed provider calls are published too, with the unchanged state and Err set.
type Change struct {
	Cause     ChangeCause
	State     economy.State
	Playing   bool
	Movements []CreditMovement
	BuildID   string
	Station   *economy.Station
	Event     *economy.GameEvent
	Err       error
}

// Observer receives changes on the session goroutine and must not block
type Observer interface {
	Observe(change Change)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(change Change)

func (f ObserverFunc) Observe(change Change) { f(change) }

func movement(txType ledger.TransactionType, before, after economy.State, description, relatedID string) []CreditMovement {
	amount := after.Credits - before.Credits
	if amount == 0 {
		return nil
	}
	return []CreditMovement{{
		Type:          txType,
		Tick:          after.Tick,
		Amount:        amount,
		BalanceBefore: before.Credits,
		BalanceAfter:  after.Credits,
		Description:   description,
		RelatedID:     relatedID,
	}}
}
