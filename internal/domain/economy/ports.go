package economy

import "context"

// ContentProvider is the generative-text service that names stations, narrates
// random events and voices commuters. Calls may be slow and may fail.
type ContentProvider interface {
	FetchStationDetails(ctx context.Context) (StationDetails, error)
	FetchRandomEvent(ctx context.Context, reputation int) (EventDetails, error)
	FetchChatReply(ctx context.Context, stationName, message string) (string, error)
}

// SnapshotRepository stores the latest state of a save slot. Best effort only.
type SnapshotRepository interface {
	Save(ctx context.Context, slot string, state State) error

	// Load returns ok=false when the slot has never been saved
	Load(ctx context.Context, slot string) (state State, ok bool, err error)
}
