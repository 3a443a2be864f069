package game

import (
	"errors"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

// ErrSessionClosed is returned by every call made after the session loop has stopped
var ErrSessionClosed = errors.New("game session closed")

// Outcome reports whether an intent changed anything
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// Result is the answer to a player intent. A rejected intent carries its reason
// and the state it was checked against, which it left untouched.
type Result struct {
	Outcome Outcome
	Reason  error
	State   economy.State
}

// Rejected reports whether the intent was a no-op
func (r Result) Rejected() bool {
	return r.Outcome == OutcomeRejected
}

func accepted(state economy.State) Result {
	return Result{Outcome: OutcomeAccepted, State: state}
}

func rejected(state economy.State, reason error) Result {
	return Result{Outcome: OutcomeRejected, Reason: reason, State: state}
}

// BuildResult answers a build request. Acceptance means the cost is debited and
// station details were requested; the build resolves later.
type BuildResult struct {
	Result
	BuildID string
}

// UpgradeResult answers an upgrade request
type UpgradeResult struct {
	Result
	Station economy.Station
}

// ChatResult answers a chat message. Degraded is set when the provider failed
// and the stock reply was used.
type ChatResult struct {
	Result
	StationName string
	Reply       string
	Degraded    bool
}

// Snapshot is a read-only view of the session
type Snapshot struct {
	State    economy.State        `json:"state"`
	Playing  bool                 `json:"playing"`
	Building bool                 `json:"building"`
	CanBuild bool                 `json:"canBuild"`
	Status   economy.SystemStatus `json:"status"`
}
