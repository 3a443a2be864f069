package economy

// StationType is the flavor category of a station. It only affects presentation.
type StationType string

const (
	StationTypeResidential StationType = "RESIDENTIAL"
	StationTypeCommercial  StationType = "COMMERCIAL"
	StationTypeIndustrial  StationType = "INDUSTRIAL"
	StationTypeCybernetic  StationType = "CYBERNETIC"
)

// StationStatus gates income. Only active stations earn revenue; locked and
// disrupted are reserved and never produced by any transition.
type StationStatus string

const (
	StationStatusActive    StationStatus = "active"
	StationStatusLocked    StationStatus = "locked"
	StationStatusDisrupted StationStatus = "disrupted"
)

// Impact drives the reputation adjustment of an event and its display icon
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
	ImpactNeutral  Impact = "neutral"
)

// Coordinates place a station in the 0-100 display space of the network map
type Coordinates struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Station is a player-owned economic unit generating periodic income
type Station struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Type           StationType   `json:"type"`
	Level          int           `json:"level"`
	Passengers     int           `json:"passengers"`
	RevenuePerTick int           `json:"revenuePerTick"`
	Coordinates    Coordinates   `json:"coordinates"`
	Status         StationStatus `json:"status"`
}

// IsActive reports whether the station participates in income
func (s Station) IsActive() bool {
	return s.Status == StationStatusActive
}

// GameEvent is an immutable entry of the event log
type GameEvent struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
}

// State is the economy aggregate.
//
// A State is a value: transitions never modify the receiver's slices, they
// allocate new ones. Holders of a State may therefore share it freely but must
// not write into Stations or Events themselves.
type State struct {
	Credits    int         `json:"credits"`
	Reputation int         `json:"reputation"`
	Energy     float64     `json:"energy"`
	Tick       int64       `json:"tick"`
	Stations   []Station   `json:"stations"`
	Events     []GameEvent `json:"events"`
	Version    uint64      `json:"version"`
}

// NewState builds the opening state of a new network with the two seed stations
func NewState(b Balance) State {
	return State{
		Credits:    b.InitialCredits,
		Reputation: clampInt(b.InitialReputation, MinReputation, MaxReputation),
		Energy:     b.MaxEnergy,
		Tick:       0,
		Stations:   SeedStations(),
		Events:     []GameEvent{},
	}
}

// SeedStations returns the stations every network starts with
func SeedStations() []Station {
	return []Station{
		{
			ID:             "st-0",
			Name:           "Sector 7 Slums",
			Description:    "A densely populated residential zone known for its neon markets and unauthorized cyber-clinics.",
			Type:           StationTypeResidential,
			Level:          1,
			Passengers:     120,
			RevenuePerTick: 5,
			Coordinates:    Coordinates{X: 10, Y: 50},
			Status:         StationStatusActive,
		},
		{
			ID:             "st-1",
			Name:           "Core Plaza",
			Description:    "The commercial heart of the under-city. Corporate HQs tower above the smog layer.",
			Type:           StationTypeCommercial,
			Level:          1,
			Passengers:     80,
			RevenuePerTick: 8,
			Coordinates:    Coordinates{X: 50, Y: 20},
			Status:         StationStatusActive,
		},
	}
}

// FindStation returns the station with the given id
func (s State) FindStation(id string) (Station, bool) {
	for _, st := range s.Stations {
		if st.ID == id {
			return st, true
		}
	}
	return Station{}, false
}

// FindStationByName returns the first station with the given name
func (s State) FindStationByName(name string) (Station, bool) {
	for _, st := range s.Stations {
		if st.Name == name {
			return st, true
		}
	}
	return Station{}, false
}

// ActiveIncome sums the revenue of every active station
func (s State) ActiveIncome() int {
	income := 0
	for _, st := range s.Stations {
		if st.IsActive() {
			income += st.RevenuePerTick
		}
	}
	return income
}

// next returns a shallow copy of s with the version bumped.
// Callers replace slices rather than writing into them.
func (s State) next() State {
	n := s
	n.Version = s.Version + 1
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
