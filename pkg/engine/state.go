package engine

import "slices"

// PowerState is the per-power economy and status.
type PowerState struct {
	Power           Power `json:"power"`
	IPCs            int   `json:"ipcs"`
	CapitalCaptured bool  `json:"capital_captured,omitempty"`
	AtWar           bool  `json:"at_war"`
	LastIncome      int   `json:"last_income,omitempty"`
}

// PoliticalState holds the symmetric war matrix, indexed by Power.Index,
// and the entry-into-war triggers.
type PoliticalState struct {
	Wars                [9][9]bool `json:"wars"`
	USAtWar             bool       `json:"us_at_war"`
	USWarTurn           int        `json:"us_war_turn,omitempty"`
	SovietAtWarWithAxis bool       `json:"soviet_at_war_with_axis"`
}

// AtWar reports whether a and b are at war. Unknown powers are never at war.
func (ps *PoliticalState) AtWar(a, b Power) bool {
	i, j := a.Index(), b.Index()
	if i < 0 || j < 0 {
		return false
	}
	return ps.Wars[i][j]
}

func (ps *PoliticalState) setWar(a, b Power) {
	i, j := a.Index(), b.Index()
	ps.Wars[i][j] = true
	ps.Wars[j][i] = true
}

// ActionLogEntry pairs an applied action with its inverse.
type ActionLogEntry struct {
	Action  Action  `json:"action"`
	Inverse Inverse `json:"inverse"`
}

// GameState is the complete, serializable state of a game.
type GameState struct {
	Turn                int              `json:"turn"`
	CurrentPower        Power            `json:"current_power"`
	CurrentPhase        Phase            `json:"current_phase"`
	PhaseState          PhaseState       `json:"phase_state"`
	Territories         []TerritoryState `json:"territories"`
	SeaZones            []SeaZoneState   `json:"sea_zones"`
	Powers              []PowerState     `json:"powers"`
	Political           PoliticalState   `json:"political"`
	ActionLog           []ActionLogEntry `json:"action_log"`
	UndoCheckpoints     []int            `json:"undo_checkpoints"`
	PendingMobilization []PurchaseLine   `json:"pending_mobilization,omitempty"`
	NextUnitID          UnitID           `json:"next_unit_id"`
	RNGSeed             uint64           `json:"rng_seed"`
	RNGCounter          uint64           `json:"rng_counter"`
	Winner              Team             `json:"winner,omitempty"`
}

// Power returns the mutable state of p. It panics on unknown powers.
func (gs *GameState) Power(p Power) *PowerState {
	return &gs.Powers[p.Index()]
}

// Territory returns the mutable state of a territory, or nil when out of range.
func (gs *GameState) Territory(id TerritoryID) *TerritoryState {
	if id < 0 || int(id) >= len(gs.Territories) {
		return nil
	}
	return &gs.Territories[id]
}

// SeaZone returns the mutable state of a sea zone, or nil when out of range.
func (gs *GameState) SeaZone(id SeaZoneID) *SeaZoneState {
	if id < 0 || int(id) >= len(gs.SeaZones) {
		return nil
	}
	return &gs.SeaZones[id]
}

// ValidRegion reports whether r indexes an existing territory or sea zone.
func (gs *GameState) ValidRegion(r RegionID) bool {
	if r.IsLand() {
		return gs.Territory(r.Territory()) != nil
	}
	return gs.SeaZone(r.SeaZone()) != nil
}

func (gs *GameState) unitList(r RegionID) *[]Unit {
	if r.IsLand() {
		if t := gs.Territory(r.Territory()); t != nil {
			return &t.Units
		}
		return nil
	}
	if z := gs.SeaZone(r.SeaZone()); z != nil {
		return &z.Units
	}
	return nil
}

// Units returns the units in a region.
func (gs *GameState) Units(r RegionID) []Unit {
	if l := gs.unitList(r); l != nil {
		return *l
	}
	return nil
}

// FindUnit locates a unit anywhere on the board.
func (gs *GameState) FindUnit(id UnitID) (Unit, RegionID, bool) {
	for i := range gs.Territories {
		for _, u := range gs.Territories[i].Units {
			if u.ID == id {
				return u, Land(TerritoryID(i)), true
			}
		}
	}
	for i := range gs.SeaZones {
		for _, u := range gs.SeaZones[i].Units {
			if u.ID == id {
				return u, Sea(SeaZoneID(i)), true
			}
		}
	}
	return Unit{}, RegionID{}, false
}

func (gs *GameState) unitPtr(id UnitID) *Unit {
	for i := range gs.Territories {
		for j := range gs.Territories[i].Units {
			if gs.Territories[i].Units[j].ID == id {
				return &gs.Territories[i].Units[j]
			}
		}
	}
	for i := range gs.SeaZones {
		for j := range gs.SeaZones[i].Units {
			if gs.SeaZones[i].Units[j].ID == id {
				return &gs.SeaZones[i].Units[j]
			}
		}
	}
	return nil
}

// removeUnit deletes a unit from its region and returns it with its former
// location and list index.
func (gs *GameState) removeUnit(id UnitID) (Unit, RegionID, int, bool) {
	u, r, ok := gs.FindUnit(id)
	if !ok {
		return Unit{}, RegionID{}, 0, false
	}
	l := gs.unitList(r)
	idx := slices.IndexFunc(*l, func(x Unit) bool { return x.ID == id })
	*l = slices.Delete(*l, idx, idx+1)
	return u, r, idx, true
}

// insertUnit places u in region r at index idx, clamped to the list length.
func (gs *GameState) insertUnit(r RegionID, u Unit, idx int) {
	l := gs.unitList(r)
	if idx < 0 || idx > len(*l) {
		idx = len(*l)
	}
	*l = slices.Insert(*l, idx, u)
}

func (gs *GameState) addUnit(r RegionID, u Unit) {
	l := gs.unitList(r)
	*l = append(*l, u)
}

// spawnUnit creates a fresh unit with the next ID and adds it to r.
func (gs *GameState) spawnUnit(r RegionID, t UnitType, owner Power) Unit {
	u := NewUnit(gs.NextUnitID, t, owner)
	gs.NextUnitID++
	gs.addUnit(r, u)
	return u
}

// AtWar reports whether two powers are at war.
func (gs *GameState) AtWar(a, b Power) bool {
	return gs.Political.AtWar(a, b)
}

// Friendly reports whether b's territory and units are friendly to a: the
// same power, or the same team and not at war.
func (gs *GameState) Friendly(a, b Power) bool {
	if a == b {
		return a != Neutral
	}
	if a == Neutral || b == Neutral {
		return false
	}
	return a.Team() == b.Team() && !gs.AtWar(a, b)
}

// HasEnemyUnits reports whether region r holds any unit at war with p.
func (gs *GameState) HasEnemyUnits(r RegionID, p Power) bool {
	for _, u := range gs.Units(r) {
		if gs.AtWar(p, u.Owner) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the game state.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.PhaseState = gs.PhaseState.Clone()
	out.Territories = make([]TerritoryState, len(gs.Territories))
	for i, t := range gs.Territories {
		t.Units = slices.Clone(t.Units)
		t.Facilities = slices.Clone(t.Facilities)
		out.Territories[i] = t
	}
	out.SeaZones = make([]SeaZoneState, len(gs.SeaZones))
	for i, z := range gs.SeaZones {
		out.SeaZones[i] = SeaZoneState{Units: slices.Clone(z.Units)}
	}
	out.Powers = slices.Clone(gs.Powers)
	out.ActionLog = make([]ActionLogEntry, len(gs.ActionLog))
	for i, e := range gs.ActionLog {
		out.ActionLog[i] = ActionLogEntry{Action: e.Action.Clone(), Inverse: e.Inverse.clone()}
	}
	out.UndoCheckpoints = slices.Clone(gs.UndoCheckpoints)
	out.PendingMobilization = slices.Clone(gs.PendingMobilization)
	return &out
}
