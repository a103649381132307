package engine

// FacilityType is a territory improvement.
type FacilityType string

const (
	MajorIndustrialComplex FacilityType = "major_ic"
	MinorIndustrialComplex FacilityType = "minor_ic"
	AirBase                FacilityType = "air_base"
	NavalBase              FacilityType = "naval_base"
)

// IsIndustrial reports whether the facility produces units.
func (ft FacilityType) IsIndustrial() bool {
	return ft == MajorIndustrialComplex || ft == MinorIndustrialComplex
}

// Valid reports whether ft is a known facility type.
func (ft FacilityType) Valid() bool {
	switch ft {
	case MajorIndustrialComplex, MinorIndustrialComplex, AirBase, NavalBase:
		return true
	}
	return false
}

// Facility tracks damage against a maximum derived from its type and territory.
// Operational is kept equal to Damage < MaxDamage.
type Facility struct {
	Type        FacilityType `json:"type"`
	Damage      int          `json:"damage"`
	MaxDamage   int          `json:"max_damage"`
	Operational bool         `json:"operational"`
}

// NewFacility builds an undamaged facility for a territory worth territoryIPC.
func NewFacility(ft FacilityType, territoryIPC int) Facility {
	maxDamage := 6
	if ft.IsIndustrial() {
		maxDamage = territoryIPC * 2
	}
	return Facility{Type: ft, MaxDamage: maxDamage, Operational: true}
}

// SetDamage clamps damage into [0, MaxDamage] and refreshes Operational.
func (f *Facility) SetDamage(d int) {
	if d < 0 {
		d = 0
	}
	if d > f.MaxDamage {
		d = f.MaxDamage
	}
	f.Damage = d
	f.Operational = f.Damage < f.MaxDamage
}

// ProductionCapacity is the number of units the complex can place per turn.
func (f Facility) ProductionCapacity(territoryIPC int) int {
	var base int
	switch f.Type {
	case MajorIndustrialComplex:
		base = min(territoryIPC, 10)
	case MinorIndustrialComplex:
		base = min(territoryIPC, 3)
	default:
		return 0
	}
	return max(base-f.Damage, 0)
}
