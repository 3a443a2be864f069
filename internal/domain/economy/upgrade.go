package economy

import "math"

// UpgradeCost is the price of taking a station to its next level
func UpgradeCost(st Station, b Balance) int {
	return b.UpgradeCostBase * st.Level
}

// CanUpgrade reports whether the station exists and the upgrade is affordable
func CanUpgrade(s State, b Balance, stationID string) bool {
	st, ok := s.FindStation(stationID)
	return ok && s.Credits >= UpgradeCost(st, b)
}

// Upgrade debits the upgrade cost and improves the matching station.
// Every other station and field is carried over untouched.
func Upgrade(s State, b Balance, stationID string) (State, Station, error) {
	idx := -1
	for i, st := range s.Stations {
		if st.ID == stationID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, Station{}, &ErrStationNotFound{ID: stationID}
	}

	current := s.Stations[idx]
	cost := UpgradeCost(current, b)
	if s.Credits < cost {
		return s, Station{}, &ErrInsufficientCredits{Required: cost, Available: s.Credits}
	}

	upgraded := current
	upgraded.Level = current.Level + 1
	upgraded.RevenuePerTick = int(math.Floor(float64(current.RevenuePerTick) * b.UpgradeRevenueMultiplier))
	upgraded.Passengers = int(math.Floor(float64(current.Passengers) * b.UpgradePassengerMultiplier))

	n := s.next()
	n.Credits = s.Credits - cost
	stations := make([]Station, len(s.Stations))
	copy(stations, s.Stations)
	stations[idx] = upgraded
	n.Stations = stations

	return n, upgraded, nil
}
