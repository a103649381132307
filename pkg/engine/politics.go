package engine

func validateDeclareWar(gs *GameState, against Power) error {
	p := gs.CurrentPower
	switch {
	case !against.Valid():
		return invalidAction("unknown power %q", against)
	case against == p:
		return invalidAction("cannot declare war on yourself")
	case against.Team() == p.Team():
		return invalidAction("cannot declare war on an ally")
	case gs.AtWar(p, against):
		return invalidAction("already at war with %s", against.Name())
	}
	return nil
}

// declareWar sets both matrix cells and the entry-into-war triggers.
func declareWar(gs *GameState, against Power) []Event {
	p := gs.CurrentPower
	gs.Political.setWar(p, against)
	gs.Power(p).AtWar = true
	gs.Power(against).AtWar = true
	for _, q := range []Power{p, against} {
		if q == UnitedStates && !gs.Political.USAtWar {
			gs.Political.USAtWar = true
			gs.Political.USWarTurn = gs.Turn
		}
	}
	if (p == SovietUnion && against.Team() == Axis) || (against == SovietUnion && p.Team() == Axis) {
		gs.Political.SovietAtWarWithAxis = true
	}
	return []Event{{Type: EventWarDeclared, Power: p, Target: against, Turn: gs.Turn}}
}

// WarTargets lists the powers the current power may still declare war on.
func WarTargets(gs *GameState) []Power {
	var out []Power
	for _, q := range TurnOrder {
		if validateDeclareWar(gs, q) == nil {
			out = append(out, q)
		}
	}
	return out
}
