package economy

// EventDetails is the provider payload describing a random event
type EventDetails struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ImpactType   string `json:"impactType"`
	CreditChange int    `json:"creditChange"`
}

// ApplyRandomEvent reconciles a random event into the state.
//
// The event is stamped with the tick of reconciliation, which may be later than
// the tick at which it was requested. Credits are floored at zero and reputation
// is clamped to [MinReputation, MaxReputation].
func ApplyRandomEvent(s State, b Balance, details EventDetails, eventID string) State {
	impact := ParseImpact(details.ImpactType)

	n := s.next()
	n.Credits = s.Credits + details.CreditChange
	if n.Credits < 0 {
		n.Credits = 0
	}
	n.Reputation = clampInt(s.Reputation+ReputationDelta(impact, b), MinReputation, MaxReputation)
	n.Events = prependEvent(s.Events, GameEvent{
		ID:          eventID,
		Timestamp:   s.Tick,
		Title:       details.Title,
		Description: details.Description,
		Impact:      impact,
	}, b.EventRetention)

	return n
}

// ReputationDelta is the reputation change carried by an impact
func ReputationDelta(impact Impact, b Balance) int {
	switch impact {
	case ImpactPositive:
		return b.ReputationSwing
	case ImpactNegative:
		return -b.ReputationSwing
	default:
		return 0
	}
}

// prependEvent returns a new log with e first, trimmed to retention entries.
func prependEvent(events []GameEvent, e GameEvent, retention int) []GameEvent {
	size := len(events) + 1
	if retention > 0 && size > retention {
		size = retention
	}
	out := make([]GameEvent, 0, size)
	out = append(out, e)
	for _, old := range events {
		if len(out) == size {
			break
		}
		out = append(out, old)
	}
	return out
}
