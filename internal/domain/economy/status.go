package economy

// SystemStatus holds the derived readouts shown next to the event log
type SystemStatus struct {
	NetworkLoad           int `json:"networkLoad"`
	PassengerSatisfaction int `json:"passengerSatisfaction"`
}

// Status derives the network load and passenger satisfaction percentages.
// Network load is not capped at 100.
func Status(s State) SystemStatus {
	satisfaction := 85 + s.Reputation/10
	if satisfaction > 100 {
		satisfaction = 100
	}
	return SystemStatus{
		NetworkLoad:           len(s.Stations) * 12,
		PassengerSatisfaction: satisfaction,
	}
}
