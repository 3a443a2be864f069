package economy

import "strings"

// ParseStationType coerces provider text into a known station type.
// Unrecognised text falls back to RESIDENTIAL.
func ParseStationType(s string) StationType {
	switch StationType(strings.ToUpper(strings.TrimSpace(s))) {
	case StationTypeResidential:
		return StationTypeResidential
	case StationTypeCommercial:
		return StationTypeCommercial
	case StationTypeIndustrial:
		return StationTypeIndustrial
	case StationTypeCybernetic:
		return StationTypeCybernetic
	default:
		return StationTypeResidential
	}
}

// ParseImpact coerces provider text into an impact. Anything unknown is neutral.
func ParseImpact(s string) Impact {
	switch Impact(strings.ToLower(strings.TrimSpace(s))) {
	case ImpactPositive:
		return ImpactPositive
	case ImpactNegative:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

// AllStationTypes lists the station types in display order
func AllStationTypes() []StationType {
	return []StationType{
		StationTypeResidential,
		StationTypeCommercial,
		StationTypeIndustrial,
		StationTypeCybernetic,
	}
}
