package economy

import (
	"errors"
	"fmt"
)

// Rejection reasons. A rejected action leaves the state untouched.
var (
	// ErrActionInFlight is returned when an action of the same kind is still outstanding
	ErrActionInFlight = errors.New("action already in flight")
)

// ErrInsufficientCredits reports a precondition failure on cost gating
type ErrInsufficientCredits struct {
	Required  int
	Available int
}

func (e *ErrInsufficientCredits) Error() string {
	return fmt.Sprintf("insufficient credits: need %d, have %d", e.Required, e.Available)
}

// ErrStationNotFound reports an unknown station id
type ErrStationNotFound struct {
	ID string
}

func (e *ErrStationNotFound) Error() string {
	return fmt.Sprintf("station not found: %s", e.ID)
}

// ErrInvalidBuildTransition reports a build resolved twice or out of order
type ErrInvalidBuildTransition struct {
	From BuildStatus
	To   BuildStatus
}

func (e *ErrInvalidBuildTransition) Error() string {
	return fmt.Sprintf("cannot move build from %s to %s", e.From, e.To)
}

// IsRejection reports whether err is a precondition rejection rather than a failure
func IsRejection(err error) bool {
	var credits *ErrInsufficientCredits
	var notFound *ErrStationNotFound
	return errors.As(err, &credits) ||
		errors.As(err, &notFound) ||
		errors.Is(err, ErrActionInFlight) ||
		errors.Is(err, ErrEmptyMessage)
}
