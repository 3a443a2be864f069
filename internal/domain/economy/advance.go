package economy

// Advance moves the economy forward by exactly one tick.
//
// Active stations pay their revenue, every station draws EnergyDecayPerStation,
// and the grid regenerates EnergyRegenPerTick while below MaxEnergy. Energy is
// clamped to [0, MaxEnergy]. Reputation, stations and events pass through.
func Advance(s State, b Balance) State {
	n := s.next()

	energyUse := b.EnergyDecayPerStation * float64(len(s.Stations))
	regen := 0.0
	if s.Energy < b.MaxEnergy {
		regen = b.EnergyRegenPerTick
	}

	n.Energy = clampFloat(s.Energy-energyUse+regen, 0, b.MaxEnergy)
	n.Credits = s.Credits + s.ActiveIncome()
	n.Tick = s.Tick + 1
	return n
}
