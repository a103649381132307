package engine

import "slices"

// Bombing raids are fought before general combat. Strategic bombers can hit
// any facility; tactical bombers only air and naval bases.

// raidFacility picks the facility a raid on t targets. An empty type means
// the industrial complex.
func raidFacility(t *TerritoryState, ft FacilityType) *Facility {
	for i := range t.Facilities {
		f := &t.Facilities[i]
		if ft == "" && f.Type.IsIndustrial() || ft != "" && f.Type == ft {
			return f
		}
	}
	return nil
}

func canBomb(u Unit, ft FacilityType) bool {
	switch u.Type {
	case StrategicBomber:
		return true
	case TacticalBomber:
		return !ft.IsIndustrial()
	}
	return false
}

// raidForces splits the fighters and bombers at loc into the raid's sides.
// Only units of the current power that moved this turn take part.
func raidForces(gs *GameState, loc RegionID, ft FacilityType) (bombers, escorts, interceptors []Unit) {
	p := gs.CurrentPower
	for _, u := range gs.Units(loc) {
		switch {
		case u.Owner == p && u.Moved && canBomb(u, ft):
			bombers = append(bombers, u)
		case u.Owner == p && u.Moved && u.Type == Fighter:
			escorts = append(escorts, u)
		case u.Type == Fighter && gs.AtWar(p, u.Owner):
			interceptors = append(interceptors, u)
		}
	}
	return bombers, escorts, interceptors
}

func validateBombingRaid(gs *GameState, m Map, a Action) error {
	cs := gs.PhaseState.Combat
	if cs.Active != nil {
		return invalidAction("a battle is already in progress at %s", regionName(m, cs.Active.Location))
	}
	t := gs.Territory(a.Territory)
	if t == nil {
		return territoryNotFound(a.Territory)
	}
	loc := Land(a.Territory)
	name := regionName(m, loc)
	if !gs.AtWar(gs.CurrentPower, t.Owner) {
		return invalidAction("%s is not held by an enemy", name)
	}
	if slices.Contains(cs.Raids, a.Territory) || slices.Contains(cs.ResolvedBattles, loc) {
		return invalidAction("%s has already been attacked this turn", name)
	}
	f := raidFacility(t, a.Facility)
	if f == nil {
		return invalidAction("no facility to bomb in %s", name)
	}
	if bombers, _, _ := raidForces(gs, loc, f.Type); len(bombers) == 0 {
		return invalidAction("no bomber over %s can raid its %s", name, f.Type)
	}
	return nil
}

// raidTargets lists every raid the current power can launch.
func raidTargets(gs *GameState, m Map) []Action {
	var out []Action
	for i := range gs.Territories {
		for _, f := range gs.Territories[i].Facilities {
			a := BombingRaid(TerritoryID(i), f.Type)
			if validateBombingRaid(gs, m, a) == nil {
				out = append(out, a)
			}
		}
	}
	return out
}

// bombingRaid resolves a raid in one step. Escorts and interceptors fire at
// each other first. Interceptor hits fall on escorts before bombers. The
// facility then fires one shot per surviving bomber, hitting on a 1, and the
// remaining bombers roll damage: d6+2 for a strategic bomber, d6 for a
// tactical one. Damage stops at the facility's maximum.
func bombingRaid(gs *GameState, m Map, d *Dice, a Action) []Event {
	p := gs.CurrentPower
	cs := gs.PhaseState.Combat
	loc := Land(a.Territory)
	t := gs.Territory(a.Territory)
	f := raidFacility(t, a.Facility)
	defender := t.Owner
	bombers, escorts, interceptors := raidForces(gs, loc, f.Type)

	var events []Event
	fire := func(side Power, vals []int) int {
		rolls, hits := rollAgainst(d, vals)
		if len(rolls) > 0 {
			events = append(events, Event{Type: EventDiceRolled, Power: side, Location: loc, Rolls: rolls, Hits: hits})
		}
		return hits
	}
	lose := func(side Power, units []Unit) {
		if len(units) == 0 {
			return
		}
		ids := make([]UnitID, len(units))
		for i, u := range units {
			ids[i] = u.ID
			gs.removeUnit(u.ID)
		}
		events = append(events, Event{Type: EventCasualtiesTaken, Power: side, Location: loc, Units: ids, Count: len(ids)})
	}

	escortHits := fire(p, baseValues(escorts, func(s UnitStats) int { return s.Attack }))
	interceptorHits := fire(defender, baseValues(interceptors, func(s UnitStats) int { return s.Defense }))
	lose(defender, interceptors[len(interceptors)-min(escortHits, len(interceptors)):])

	raiders := slices.Concat(bombers, escorts)
	shot := min(interceptorHits, len(raiders))
	lose(p, raiders[len(raiders)-shot:])
	raiders = raiders[:len(raiders)-shot]
	bombers = raiders[:min(len(bombers), len(raiders))]
	escorts = raiders[len(bombers):]

	aa := make([]int, len(bombers))
	for i := range aa {
		aa[i] = 1
	}
	aaHits := min(fire(defender, aa), len(bombers))
	lose(p, bombers[len(bombers)-aaHits:])
	bombers = bombers[:len(bombers)-aaHits]

	var rolls []int
	damage := 0
	for _, u := range bombers {
		r := d.Roll()
		rolls = append(rolls, r)
		damage += r
		if u.Type == StrategicBomber {
			damage += 2
		}
	}
	if len(rolls) > 0 {
		events = append(events, Event{Type: EventDiceRolled, Power: p, Location: loc, Rolls: rolls})
	}
	before := f.Damage
	f.SetDamage(f.Damage + damage)
	events = append(events, Event{Type: EventFacilityDamaged, Power: p, Target: defender, Territory: a.Territory, Amount: f.Damage - before})

	cs.Raids = append(cs.Raids, a.Territory)
	for _, u := range slices.Concat(bombers, escorts) {
		cs.Raiders = append(cs.Raiders, u.ID)
	}
	if !contested(gs, loc, p, cs.Raiders) {
		cs.PendingBattles = slices.DeleteFunc(cs.PendingBattles, func(r RegionID) bool { return r == loc })
	}
	return events
}

// baseValues reads one printed value per unit, without the support and boost
// modifiers of a general battle.
func baseValues(units []Unit, pick func(UnitStats) int) []int {
	vals := make([]int, len(units))
	for i, u := range units {
		vals[i] = pick(u.Stats())
	}
	return vals
}

// contested reports whether a battle is still due at loc once the units in
// skip are left out.
func contested(gs *GameState, loc RegionID, p Power, skip []UnitID) bool {
	moved, enemy := false, false
	for _, u := range gs.Units(loc) {
		if u.Owner == p && u.Moved && !slices.Contains(skip, u.ID) {
			moved = true
		}
		if gs.AtWar(p, u.Owner) {
			enemy = true
		}
	}
	return moved && enemy
}
