package engine

import "slices"

// placementZone picks the sea zone a ship built in territory t enters: the
// first coastal zone free of enemy units, else the first coastal zone.
func placementZone(gs *GameState, m Map, t TerritoryID, p Power) (SeaZoneID, bool) {
	zones := m.CoastalZones(t)
	if len(zones) == 0 {
		return 0, false
	}
	for _, z := range zones {
		if !gs.HasEnemyUnits(Sea(z), p) {
			return z, true
		}
	}
	return zones[0], true
}

func validatePlace(gs *GameState, m Map, ut UnitType, tid TerritoryID) error {
	ms := gs.PhaseState.Mobilize
	if !ut.Valid() {
		return invalidAction("unknown unit type %q", ut)
	}
	if ms.Remaining(ut) <= 0 {
		return invalidAction("no %s left to place", ut)
	}
	t := gs.Territory(tid)
	if t == nil {
		return territoryNotFound(tid)
	}
	def, _ := m.Territory(tid)
	if t.Owner != gs.CurrentPower {
		return invalidAction("you do not control %s", def.Name)
	}
	if t.JustCaptured {
		return invalidAction("%s was captured this turn", def.Name)
	}
	ic := t.IndustrialComplex()
	if StatsFor(ut).Domain == DomainSea {
		if len(m.CoastalZones(tid)) == 0 {
			return invalidAction("%s is not coastal", def.Name)
		}
		if ic == nil && !t.HasFacility(NavalBase) {
			return invalidAction("%s has no industrial complex or naval base", def.Name)
		}
	} else if ic == nil {
		return invalidAction("%s has no industrial complex", def.Name)
	}
	if ic != nil {
		capacity := ic.ProductionCapacity(def.IPC)
		if ms.PlacedIn(tid) >= capacity {
			return invalidAction("production capacity of %s exhausted (%d)", def.Name, capacity)
		}
	}
	return nil
}

// place mobilizes one unit with a fresh ID. It returns the unit and the
// position of the to-place line it emptied, or -1.
func place(gs *GameState, m Map, ut UnitType, tid TerritoryID) (Unit, int) {
	ms := gs.PhaseState.Mobilize
	r := Land(tid)
	if StatsFor(ut).Domain == DomainSea {
		z, _ := placementZone(gs, m, tid, gs.CurrentPower)
		r = Sea(z)
	}
	u := gs.spawnUnit(r, ut, gs.CurrentPower)
	ms.Placed = append(ms.Placed, PlacedUnit{UnitID: u.ID, UnitType: ut, Territory: tid})
	var emptied int
	ms.ToPlace, emptied = adjustLine(ms.ToPlace, ut, -1, -1)
	return u, emptied
}

// unplace reverses the most recent placement. Its to-place line returns to
// slot when the placement had emptied it. The unit's ID is handed out again
// next: undo only ever pops the newest log entry, so no logged action can
// refer to the removed unit.
func unplace(gs *GameState, id UnitID, slot int) error {
	ms := gs.PhaseState.Mobilize
	idx := slices.IndexFunc(ms.Placed, func(p PlacedUnit) bool { return p.UnitID == id })
	if idx < 0 {
		return internalError("unit %d was not placed this phase", id)
	}
	if _, _, _, ok := gs.removeUnit(id); !ok {
		return unitNotFound(id)
	}
	ms.ToPlace, _ = adjustLine(ms.ToPlace, ms.Placed[idx].UnitType, 1, slot)
	ms.Placed = slices.Delete(ms.Placed, idx, idx+1)
	if id == gs.NextUnitID-1 {
		gs.NextUnitID = id
	}
	return nil
}

// PlacementOptions lists the territories where a unit type can be placed now.
func PlacementOptions(gs *GameState, m Map, ut UnitType) []TerritoryID {
	var out []TerritoryID
	for i := range gs.Territories {
		id := TerritoryID(i)
		if gs.Territories[i].Owner == gs.CurrentPower && validatePlace(gs, m, ut, id) == nil {
			out = append(out, id)
		}
	}
	return out
}
