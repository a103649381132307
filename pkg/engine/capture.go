package engine

// captureTerritory transfers a territory after a successful attack and
// applies capital capture and liberation.
func captureTerritory(gs *GameState, m Map, id TerritoryID, attacker Power) []Event {
	def, _ := m.Territory(id)
	t := gs.Territory(id)
	prev := t.Owner

	owner := attacker
	if lib, ok := liberator(gs, def, attacker); ok {
		owner = lib
	}
	t.Owner = owner
	t.JustCaptured = true

	events := []Event{{Type: EventTerritoryCaptured, Territory: id, Power: attacker, Target: prev}}
	if owner != attacker {
		events = append(events, Event{Type: EventTerritoryLiberated, Territory: id, Power: owner, Target: attacker})
	}

	cp := def.Capital
	switch {
	case cp == Neutral:
	case cp == owner:
		gs.Power(cp).CapitalCaptured = false
	case cp.Team() != attacker.Team():
		victim := gs.Power(cp)
		seized := victim.IPCs
		victim.IPCs = 0
		victim.CapitalCaptured = true
		gs.Power(attacker).IPCs += seized
		events = append(events, Event{Type: EventCapitalCaptured, Territory: id, Power: attacker, Target: cp, Amount: seized})
	}
	return events
}

// liberator returns the original owner a captured territory reverts to: a
// teammate of the capturer whose capital is free, or whose capital this is.
func liberator(gs *GameState, def *TerritoryDef, capturer Power) (Power, bool) {
	orig := def.OriginalOwner
	if orig == Neutral || orig == capturer || orig.Team() != capturer.Team() {
		return Neutral, false
	}
	if gs.Power(orig).CapitalCaptured && def.Capital != orig {
		return Neutral, false
	}
	return orig, true
}
