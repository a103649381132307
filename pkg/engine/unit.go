package engine

// UnitType identifies a kind of piece.
type UnitType string

const (
	Infantry        UnitType = "infantry"
	MechInfantry    UnitType = "mech_infantry"
	Artillery       UnitType = "artillery"
	Tank            UnitType = "tank"
	AAA             UnitType = "aaa"
	Fighter         UnitType = "fighter"
	TacticalBomber  UnitType = "tactical_bomber"
	StrategicBomber UnitType = "strategic_bomber"
	Transport       UnitType = "transport"
	Submarine       UnitType = "submarine"
	Destroyer       UnitType = "destroyer"
	Cruiser         UnitType = "cruiser"
	Carrier         UnitType = "carrier"
	Battleship      UnitType = "battleship"
)

// AllUnitTypes lists unit types in purchase-screen order.
var AllUnitTypes = []UnitType{
	Infantry, MechInfantry, Artillery, Tank, AAA,
	Fighter, TacticalBomber, StrategicBomber,
	Transport, Submarine, Destroyer, Cruiser, Carrier, Battleship,
}

// Domain is where a unit operates.
type Domain string

const (
	DomainLand Domain = "land"
	DomainAir  Domain = "air"
	DomainSea  Domain = "sea"
)

// Ability is a special rule attached to a unit type.
type Ability string

const (
	AbilityArtillerySupport Ability = "artillery_support" // gives +1 to one paired infantry
	AbilitySupported        Ability = "supported"         // can receive artillery support
	AbilityBlitz            Ability = "blitz"
	AbilityBlitzWithTank    Ability = "blitz_with_tank"
	AbilityAntiAir          Ability = "anti_air"
	AbilityTacticalBoost    Ability = "tactical_boost"
	AbilityDefenceless      Ability = "defenceless"
	AbilitySubmarine        Ability = "submarine"
	AbilityAntiSubmarine    Ability = "anti_submarine"
	AbilityShoreBombard     Ability = "shore_bombard"
	AbilityCarrierLanding   Ability = "carrier_landing"
)

// UnitStats is the static stat line for a unit type.
type UnitStats struct {
	Cost              int
	Attack            int
	Defense           int
	Movement          int
	Domain            Domain
	HitPoints         int
	Bombard           int
	TransportCapacity int
	CarrierCapacity   int
	Abilities         []Ability
}

// Has reports whether the stat line carries the ability.
func (s UnitStats) Has(a Ability) bool {
	for _, x := range s.Abilities {
		if x == a {
			return true
		}
	}
	return false
}

var unitStats = map[UnitType]UnitStats{
	Infantry:        {Cost: 3, Attack: 1, Defense: 2, Movement: 1, Domain: DomainLand, HitPoints: 1, Abilities: []Ability{AbilitySupported}},
	MechInfantry:    {Cost: 4, Attack: 1, Defense: 2, Movement: 2, Domain: DomainLand, HitPoints: 1, Abilities: []Ability{AbilitySupported, AbilityBlitzWithTank}},
	Artillery:       {Cost: 4, Attack: 2, Defense: 2, Movement: 1, Domain: DomainLand, HitPoints: 1, Abilities: []Ability{AbilityArtillerySupport}},
	Tank:            {Cost: 6, Attack: 3, Defense: 3, Movement: 2, Domain: DomainLand, HitPoints: 1, Abilities: []Ability{AbilityBlitz}},
	AAA:             {Cost: 5, Attack: 0, Defense: 0, Movement: 1, Domain: DomainLand, HitPoints: 1, Abilities: []Ability{AbilityAntiAir}},
	Fighter:         {Cost: 10, Attack: 3, Defense: 4, Movement: 4, Domain: DomainAir, HitPoints: 1, Abilities: []Ability{AbilityCarrierLanding}},
	TacticalBomber:  {Cost: 11, Attack: 3, Defense: 3, Movement: 4, Domain: DomainAir, HitPoints: 1, Abilities: []Ability{AbilityTacticalBoost, AbilityCarrierLanding}},
	StrategicBomber: {Cost: 12, Attack: 4, Defense: 1, Movement: 6, Domain: DomainAir, HitPoints: 1},
	Transport:       {Cost: 7, Attack: 0, Defense: 0, Movement: 2, Domain: DomainSea, HitPoints: 1, TransportCapacity: 2, Abilities: []Ability{AbilityDefenceless}},
	Submarine:       {Cost: 6, Attack: 2, Defense: 1, Movement: 2, Domain: DomainSea, HitPoints: 1, Abilities: []Ability{AbilitySubmarine}},
	Destroyer:       {Cost: 8, Attack: 2, Defense: 2, Movement: 2, Domain: DomainSea, HitPoints: 1, Abilities: []Ability{AbilityAntiSubmarine}},
	Cruiser:         {Cost: 12, Attack: 3, Defense: 3, Movement: 2, Domain: DomainSea, HitPoints: 1, Bombard: 3, Abilities: []Ability{AbilityShoreBombard}},
	Carrier:         {Cost: 16, Attack: 0, Defense: 2, Movement: 2, Domain: DomainSea, HitPoints: 2, CarrierCapacity: 2},
	Battleship:      {Cost: 20, Attack: 4, Defense: 4, Movement: 2, Domain: DomainSea, HitPoints: 2, Bombard: 4, Abilities: []Ability{AbilityShoreBombard}},
}

// StatsFor returns the stat line for t. Unknown types return a zero UnitStats.
func StatsFor(t UnitType) UnitStats {
	return unitStats[t]
}

// Valid reports whether t is a known unit type.
func (t UnitType) Valid() bool {
	_, ok := unitStats[t]
	return ok
}

// UnitID is a stable per-game unit identifier. IDs start at 1 and are never reused.
type UnitID int

// Unit is a piece on the board. It lives in exactly one region's unit list.
type Unit struct {
	ID           UnitID   `json:"id"`
	Type         UnitType `json:"type"`
	Owner        Power    `json:"owner"`
	Hits         int      `json:"hits,omitempty"`
	Moved        bool     `json:"moved,omitempty"`
	MovementLeft int      `json:"movement_left"`
}

// NewUnit returns a healthy unit with full movement.
func NewUnit(id UnitID, t UnitType, owner Power) Unit {
	return Unit{ID: id, Type: t, Owner: owner, MovementLeft: StatsFor(t).Movement}
}

// Stats returns the unit's static stat line.
func (u Unit) Stats() UnitStats {
	return StatsFor(u.Type)
}

// Domain returns the unit's operating domain.
func (u Unit) Domain() Domain {
	return StatsFor(u.Type).Domain
}

// Damaged reports whether a multi-hit unit has absorbed a hit.
func (u Unit) Damaged() bool {
	return u.Hits > 0
}

// HitsLeft is the number of further hits the unit can take before it is destroyed.
func (u Unit) HitsLeft() int {
	return StatsFor(u.Type).HitPoints - u.Hits
}

// IsWarship reports whether the unit is a combat vessel (anything at sea but a transport).
func (u Unit) IsWarship() bool {
	return u.Domain() == DomainSea && u.Type != Transport
}
