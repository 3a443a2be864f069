package economy

import (
	"fmt"
	"math"
)

// BuildStatus is the lifecycle state of one construction attempt
type BuildStatus string

const (
	// BuildPending means the cost is debited and station details are outstanding
	BuildPending BuildStatus = "PENDING"

	// BuildCommitted means the station was added to the network
	BuildCommitted BuildStatus = "COMMITTED"

	// BuildRolledBack means the cost was refunded and no station was added
	BuildRolledBack BuildStatus = "ROLLED_BACK"
)

// PendingBuild tracks one optimistic construction through
// PENDING → COMMITTED | ROLLED_BACK.
//
// Invariants:
// - The cost is debited exactly once (BeginBuild) and refunded at most once (RollbackBuild)
// - A build resolves exactly once
type PendingBuild struct {
	id           string
	cost         int
	status       BuildStatus
	startedTick  int64
	resolvedTick int64
	lastError    error
}

// ID returns the identifier of the attempt
func (p *PendingBuild) ID() string { return p.id }

// Cost returns the debited amount
func (p *PendingBuild) Cost() int { return p.cost }

// Status returns the lifecycle state
func (p *PendingBuild) Status() BuildStatus { return p.status }

// StartedTick returns the tick at which the cost was debited
func (p *PendingBuild) StartedTick() int64 { return p.startedTick }

// ResolvedTick returns the tick at which the build committed or rolled back
func (p *PendingBuild) ResolvedTick() int64 { return p.resolvedTick }

// LastError returns the provider error that caused a rollback
func (p *PendingBuild) LastError() error { return p.lastError }

// IsPending reports whether the build still awaits station details
func (p *PendingBuild) IsPending() bool { return p.status == BuildPending }

func (p *PendingBuild) resolve(to BuildStatus, tick int64) error {
	if p.status != BuildPending {
		return &ErrInvalidBuildTransition{From: p.status, To: to}
	}
	p.status = to
	p.resolvedTick = tick
	return nil
}

// StationDetails is the provider payload describing a new station
type StationDetails struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// CanBuild reports whether the network can afford a new station
func CanBuild(s State, b Balance) bool {
	return s.Credits >= b.BuildCost
}

// BeginBuild debits the build cost and opens a pending build.
// An unaffordable build returns *ErrInsufficientCredits and the unchanged state.
func BeginBuild(s State, b Balance, buildID string) (State, *PendingBuild, error) {
	if !CanBuild(s, b) {
		return s, nil, &ErrInsufficientCredits{Required: b.BuildCost, Available: s.Credits}
	}

	n := s.next()
	n.Credits = s.Credits - b.BuildCost

	pb := &PendingBuild{
		id:          buildID,
		cost:        b.BuildCost,
		status:      BuildPending,
		startedTick: s.Tick,
	}
	return n, pb, nil
}

// CommitBuild appends the new station and logs the construction
func CommitBuild(s State, b Balance, pb *PendingBuild, details StationDetails, coords Coordinates, stationID, eventID string) (State, Station, error) {
	if err := pb.resolve(BuildCommitted, s.Tick); err != nil {
		return s, Station{}, err
	}

	station := Station{
		ID:             stationID,
		Name:           details.Name,
		Description:    details.Description,
		Type:           ParseStationType(details.Type),
		Level:          1,
		Passengers:     b.StartingPassengers,
		RevenuePerTick: b.StartingRevenue,
		Coordinates:    coords,
		Status:         StationStatusActive,
	}

	n := s.next()
	stations := make([]Station, 0, len(s.Stations)+1)
	stations = append(stations, s.Stations...)
	n.Stations = append(stations, station)
	n.Events = prependEvent(s.Events, GameEvent{
		ID:          eventID,
		Timestamp:   s.Tick,
		Title:       "New Sector Opened",
		Description: fmt.Sprintf("Construction complete at %s.", station.Name),
		Impact:      ImpactPositive,
	}, b.EventRetention)

	return n, station, nil
}

// RollbackBuild refunds the build cost. No station and no event are produced.
func RollbackBuild(s State, pb *PendingBuild, cause error) (State, error) {
	if err := pb.resolve(BuildRolledBack, s.Tick); err != nil {
		return s, err
	}
	pb.lastError = cause

	n := s.next()
	n.Credits = s.Credits + pb.cost
	return n, nil
}

// RandomSource yields uniform floats in [0, 1)
type RandomSource interface {
	Float64() float64
}

// RandomCoordinates places a new station inside the visible part of the map:
// x in [0, 90), y in [10, 90)
func RandomCoordinates(r RandomSource) Coordinates {
	return Coordinates{
		X: math.Floor(r.Float64() * 90),
		Y: math.Floor(r.Float64()*80) + 10,
	}
}
