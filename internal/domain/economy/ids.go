package economy

import "github.com/google/uuid"

// NewStationID returns a fresh identifier for a built station
func NewStationID() string {
	return "st-" + uuid.NewString()
}

// NewEventID returns a fresh identifier for an event log entry
func NewEventID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// NewBuildID returns a fresh identifier for a construction attempt
func NewBuildID() string {
	return "build-" + uuid.NewString()
}
