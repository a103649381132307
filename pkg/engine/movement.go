package engine

// regionName returns the board name of a region for error messages.
func regionName(m Map, r RegionID) string {
	if r.IsLand() {
		if t, ok := m.Territory(r.Territory()); ok {
			return t.Name
		}
	} else if z, ok := m.SeaZone(r.SeaZone()); ok {
		return z.Name
	}
	return r.String()
}

// planMove checks a MoveUnit or MoveUnitNonCombat path and returns the
// resulting planned move. It does not touch the state.
func planMove(gs *GameState, m Map, id UnitID, path []RegionID, nonCombat bool) (PlannedMove, error) {
	u, loc, ok := gs.FindUnit(id)
	if !ok {
		return PlannedMove{}, unitNotFound(id)
	}
	if u.Owner != gs.CurrentPower {
		return PlannedMove{}, illegalMove("unit %d belongs to %s, not %s", id, u.Owner.Name(), gs.CurrentPower.Name())
	}
	if u.Moved {
		return PlannedMove{}, illegalMove("unit %d has already moved this turn", id)
	}
	if len(path) < 2 {
		return PlannedMove{}, illegalMove("path must contain at least two regions")
	}
	if path[0] != loc {
		return PlannedMove{}, illegalMove("path must start at the unit's location %s", regionName(m, loc))
	}
	for _, r := range path {
		if !gs.ValidRegion(r) {
			if r.IsLand() {
				return PlannedMove{}, territoryNotFound(r.Territory())
			}
			return PlannedMove{}, illegalMove("unknown sea zone %s", r)
		}
	}
	if u.Owner == China {
		for _, r := range path {
			if t, _ := m.Territory(r.Territory()); r.IsSea() || !t.Chinese {
				return PlannedMove{}, illegalMove("Chinese units must stay in Chinese territories")
			}
		}
	}

	pm := PlannedMove{
		UnitID: id,
		From:   loc,
		To:     path[len(path)-1],
		Path:   append([]RegionID(nil), path...),
		Via:    path[len(path)-2],
	}
	var err error
	switch u.Domain() {
	case DomainLand:
		err = checkLandPath(gs, m, u, &pm, nonCombat)
	case DomainSea:
		err = checkSeaPath(gs, m, u, &pm, nonCombat)
	case DomainAir:
		err = checkAirPath(gs, m, u, &pm, nonCombat)
	default:
		err = internalError("unit %d has unknown type %q", id, u.Type)
	}
	if err != nil {
		return PlannedMove{}, err
	}
	if pm.Movement > u.MovementLeft {
		return PlannedMove{}, illegalMove("Insufficient movement: need %d, have %d", pm.Movement, u.MovementLeft)
	}
	return pm, nil
}

func checkLandPath(gs *GameState, m Map, u Unit, pm *PlannedMove, nonCombat bool) error {
	for _, r := range pm.Path[1:] {
		if r.IsSea() {
			return checkAmphibiousPath(gs, m, u, pm, nonCombat)
		}
	}

	last := len(pm.Path) - 1
	for i := 1; i <= last; i++ {
		prev, cur := pm.Path[i-1], pm.Path[i]
		if !m.LandAdjacent(prev.Territory(), cur.Territory()) {
			return illegalMove("%s is not adjacent to %s", regionName(m, prev), regionName(m, cur))
		}
		def, _ := m.Territory(cur.Territory())
		if def.Impassable() {
			return illegalMove("%s is impassable", def.Name)
		}
		if err := checkLandEntry(gs, u, cur, def, nonCombat); err != nil {
			return err
		}
		if i == last {
			break
		}
		t := gs.Territory(cur.Territory())
		switch {
		case gs.AtWar(u.Owner, t.Owner):
			if !canBlitz(gs, u, pm.From, cur) || gs.HasEnemyUnits(cur, u.Owner) {
				return illegalMove("cannot move through enemy territory %s", def.Name)
			}
		case !gs.Friendly(u.Owner, t.Owner):
			return illegalMove("cannot move through neutral territory %s", def.Name)
		case gs.HasEnemyUnits(cur, u.Owner):
			return illegalMove("cannot move through contested territory %s", def.Name)
		}
	}
	pm.Movement = last
	return nil
}

// checkLandEntry applies the ownership rules for a land unit stepping into cur.
func checkLandEntry(gs *GameState, u Unit, cur RegionID, def *TerritoryDef, nonCombat bool) error {
	t := gs.Territory(cur.Territory())
	if nonCombat {
		if gs.AtWar(u.Owner, t.Owner) || gs.HasEnemyUnits(cur, u.Owner) {
			return illegalMove("cannot enter enemy territory %s during non-combat movement", def.Name)
		}
		if !gs.Friendly(u.Owner, t.Owner) {
			return illegalMove("cannot enter non-friendly territory %s during non-combat movement", def.Name)
		}
		return nil
	}
	if t.Owner == Neutral {
		return illegalMove("neutral territory %s cannot be entered", def.Name)
	}
	if !gs.Friendly(u.Owner, t.Owner) && !gs.AtWar(u.Owner, t.Owner) {
		return illegalMove("%s is not at war with %s", u.Owner.Name(), t.Owner.Name())
	}
	return nil
}

// canBlitz reports whether u may pass through an empty enemy territory.
// Mechanized infantry needs a tank of the same power that already moved
// through the same territory from the same origin this phase.
func canBlitz(gs *GameState, u Unit, from, through RegionID) bool {
	stats := u.Stats()
	if stats.Has(AbilityBlitz) {
		return true
	}
	if !stats.Has(AbilityBlitzWithTank) {
		return false
	}
	ms := gs.PhaseState.Movement()
	if ms == nil {
		return false
	}
	for _, mv := range ms.Moves {
		if mv.From != from {
			continue
		}
		tank, _, ok := gs.FindUnit(mv.UnitID)
		if !ok || tank.Type != Tank || tank.Owner != u.Owner {
			continue
		}
		for _, r := range mv.Path[1 : len(mv.Path)-1] {
			if r == through {
				return true
			}
		}
	}
	return false
}

// checkAmphibiousPath handles a land unit carried by transport:
// origin land, one sea zone, destination land.
func checkAmphibiousPath(gs *GameState, m Map, u Unit, pm *PlannedMove, nonCombat bool) error {
	if len(pm.Path) != 3 || pm.Path[1].IsLand() || pm.Path[2].IsSea() {
		return illegalMove("land units at sea must load and unload through exactly one sea zone")
	}
	from, zone, to := pm.Path[0], pm.Path[1], pm.Path[2]
	if !m.Adjacent(from, zone) || !m.Adjacent(zone, to) {
		return illegalMove("%s does not border both %s and %s", regionName(m, zone), regionName(m, from), regionName(m, to))
	}
	for _, e := range gs.Units(zone) {
		if gs.AtWar(u.Owner, e.Owner) && e.IsWarship() {
			return illegalMove("cannot load in hostile sea zone %s", regionName(m, zone))
		}
	}
	if free := transportSpace(gs, zone, u.Owner); free <= 0 {
		return illegalMove("no transport space in %s", regionName(m, zone))
	}
	def, _ := m.Territory(to.Territory())
	if def.Impassable() {
		return illegalMove("%s is impassable", def.Name)
	}
	if err := checkLandEntry(gs, u, to, def, nonCombat); err != nil {
		return err
	}
	pm.Amphibious = true
	pm.Movement = u.MovementLeft
	return nil
}

// transportSpace is the free cargo capacity of p's transports in a zone
// for the current phase.
func transportSpace(gs *GameState, zone RegionID, p Power) int {
	capacity := 0
	for _, t := range gs.Units(zone) {
		if t.Owner == p {
			capacity += t.Stats().TransportCapacity
		}
	}
	if ms := gs.PhaseState.Movement(); ms != nil {
		for _, mv := range ms.Moves {
			if mv.Amphibious && mv.Path[1] == zone {
				capacity--
			}
		}
	}
	return capacity
}

func checkSeaPath(gs *GameState, m Map, u Unit, pm *PlannedMove, nonCombat bool) error {
	last := len(pm.Path) - 1
	for i := 1; i <= last; i++ {
		prev, cur := pm.Path[i-1], pm.Path[i]
		if cur.IsLand() {
			return illegalMove("naval units cannot enter land (%s)", regionName(m, cur))
		}
		if !m.SeaAdjacent(prev.SeaZone(), cur.SeaZone()) {
			s, ok := m.StraitBetween(prev.SeaZone(), cur.SeaZone())
			if !ok {
				return illegalMove("%s is not adjacent to %s", regionName(m, prev), regionName(m, cur))
			}
			if !straitPassable(gs, s, u.Owner) {
				return illegalMove("Strait '%s' is blocked", s.Name)
			}
		}
		hostile := false
		for _, e := range gs.Units(cur) {
			if gs.AtWar(u.Owner, e.Owner) && e.IsWarship() {
				hostile = true
				if i < last && blocksPassage(u, e) {
					return illegalMove("cannot move through hostile sea zone %s", regionName(m, cur))
				}
			}
		}
		if hostile && nonCombat {
			return illegalMove("cannot enter hostile sea zone %s during non-combat movement", regionName(m, cur))
		}
	}
	pm.Movement = last
	return nil
}

// blocksPassage reports whether enemy unit e stops u from sailing through.
// Submarines are only stopped by destroyers and never stop surface ships.
func blocksPassage(u, e Unit) bool {
	if u.Stats().Has(AbilitySubmarine) {
		return e.Stats().Has(AbilityAntiSubmarine)
	}
	return !e.Stats().Has(AbilitySubmarine)
}

// straitPassable reports whether p's ships may use a strait: its controlling
// territory must be friendly.
func straitPassable(gs *GameState, s *StraitDef, p Power) bool {
	t := gs.Territory(s.ControlledBy)
	return t != nil && gs.Friendly(p, t.Owner)
}

func checkAirPath(gs *GameState, m Map, u Unit, pm *PlannedMove, nonCombat bool) error {
	last := len(pm.Path) - 1
	for i := 1; i <= last; i++ {
		prev, cur := pm.Path[i-1], pm.Path[i]
		if !m.Adjacent(prev, cur) {
			return illegalMove("%s is not adjacent to %s", regionName(m, prev), regionName(m, cur))
		}
		if cur.IsLand() {
			if def, _ := m.Territory(cur.Territory()); def.Impassable() {
				return illegalMove("%s is impassable", def.Name)
			}
		}
	}
	if nonCombat {
		if err := checkLanding(gs, m, u, pm.To); err != nil {
			return err
		}
	}
	pm.Movement = last
	return nil
}

// checkLanding validates that an air unit can end its move in dest.
func checkLanding(gs *GameState, m Map, u Unit, dest RegionID) error {
	if u.Domain() != DomainAir {
		return illegalMove("only air units can land")
	}
	if dest.IsLand() {
		def, _ := m.Territory(dest.Territory())
		t := gs.Territory(dest.Territory())
		if def.Impassable() || !gs.Friendly(u.Owner, t.Owner) {
			return illegalMove("air units can only land in friendly territory, not %s", def.Name)
		}
		return nil
	}
	if !u.Stats().Has(AbilityCarrierLanding) {
		return illegalMove("%s cannot land on a carrier", u.Type)
	}
	if carrierSpace(gs, dest, u) <= 0 {
		return illegalMove("no carrier space in %s", regionName(m, dest))
	}
	return nil
}

// carrierSpace is the free deck space for u in a sea zone, counting friendly
// carriers against carrier-capable aircraft already there.
func carrierSpace(gs *GameState, zone RegionID, u Unit) int {
	space := 0
	for _, x := range gs.Units(zone) {
		if !gs.Friendly(u.Owner, x.Owner) {
			continue
		}
		space += x.Stats().CarrierCapacity
		if x.ID != u.ID && x.Stats().Has(AbilityCarrierLanding) {
			space--
		}
	}
	return space
}

// airPassable accepts every region an aircraft may fly over.
func airPassable(m Map) func(RegionID) bool {
	return func(r RegionID) bool {
		if r.IsLand() {
			def, _ := m.Territory(r.Territory())
			return !def.Impassable()
		}
		return true
	}
}

// canReachLanding runs a breadth-first search from the air unit's location
// within its remaining movement for any friendly landing spot.
func canReachLanding(gs *GameState, m Map, u Unit, from RegionID) bool {
	for r := range ReachableWithin(m, from, u.MovementLeft, airPassable(m)) {
		if r.IsLand() {
			if gs.Friendly(u.Owner, gs.Territory(r.Territory()).Owner) {
				return true
			}
			continue
		}
		if !u.Stats().Has(AbilityCarrierLanding) {
			continue
		}
		for _, x := range gs.Units(r) {
			if x.Type == Carrier && gs.Friendly(u.Owner, x.Owner) {
				return true
			}
		}
	}
	return false
}

// planLanding validates a LandAirUnit and returns the route taken.
func planLanding(gs *GameState, m Map, id UnitID, dest RegionID) (PlannedMove, error) {
	u, loc, ok := gs.FindUnit(id)
	if !ok {
		return PlannedMove{}, unitNotFound(id)
	}
	if u.Owner != gs.CurrentPower {
		return PlannedMove{}, illegalMove("unit %d belongs to %s, not %s", id, u.Owner.Name(), gs.CurrentPower.Name())
	}
	if !gs.ValidRegion(dest) {
		if dest.IsLand() {
			return PlannedMove{}, territoryNotFound(dest.Territory())
		}
		return PlannedMove{}, illegalMove("unknown sea zone %s", dest)
	}
	if err := checkLanding(gs, m, u, dest); err != nil {
		return PlannedMove{}, err
	}
	path, ok := ShortestPath(m, loc, dest, airPassable(m))
	if !ok {
		return PlannedMove{}, illegalMove("no route from %s to %s", regionName(m, loc), regionName(m, dest))
	}
	hops := len(path) - 1
	if hops > u.MovementLeft {
		return PlannedMove{}, illegalMove("Insufficient movement: need %d, have %d", hops, u.MovementLeft)
	}
	pm := PlannedMove{UnitID: id, From: loc, To: dest, Path: path, Via: loc, Movement: hops}
	if hops > 0 {
		pm.Via = path[hops-1]
	}
	return pm, nil
}
