package engine

// ConvoyLoss is the income a power loses to raiders in one convoy zone.
type ConvoyLoss struct {
	Zone SeaZoneID
	Lost int
}

// ComputeIncome works out p's income from territory, national objectives and
// convoy disruption. A power whose capital is held by the enemy collects nothing.
func ComputeIncome(gs *GameState, m Map, p Power) (IncomeState, []ConvoyLoss) {
	var inc IncomeState
	if gs.Power(p).CapitalCaptured {
		return inc, nil
	}
	for i := range gs.Territories {
		if gs.Territories[i].Owner == p {
			def, _ := m.Territory(TerritoryID(i))
			inc.Base += def.IPC
		}
	}
	for _, obj := range m.Objectives() {
		if obj.Power == p && objectiveMet(gs, obj) {
			inc.Objectives += obj.Bonus
		}
	}
	var losses []ConvoyLoss
	for i := range gs.SeaZones {
		z, _ := m.SeaZone(SeaZoneID(i))
		if !z.Convoy {
			continue
		}
		if lost := convoyDamage(gs, m, z, p); lost > 0 {
			inc.ConvoyLosses += lost
			losses = append(losses, ConvoyLoss{Zone: z.ID, Lost: lost})
		}
	}
	inc.Total = max(inc.Base+inc.Objectives-inc.ConvoyLosses, 0)
	return inc, losses
}

// convoyDamage scores raiders at war with p (submarines 2, other warships 1)
// capped at the value of p's territories on that coast.
func convoyDamage(gs *GameState, m Map, z *SeaZoneDef, p Power) int {
	raid := 0
	for _, u := range gs.SeaZones[z.ID].Units {
		if !gs.AtWar(p, u.Owner) {
			continue
		}
		switch u.Type {
		case Submarine:
			raid += 2
		case Destroyer, Cruiser, Carrier, Battleship:
			raid++
		}
	}
	if raid == 0 {
		return 0
	}
	exposed := 0
	for _, t := range z.AdjacentLand {
		if gs.Territory(t).Owner == p {
			def, _ := m.Territory(t)
			exposed += def.IPC
		}
	}
	return min(raid, exposed)
}

func objectiveMet(gs *GameState, obj Objective) bool {
	if obj.RequiresWar && !gs.Power(obj.Power).AtWar {
		return false
	}
	for _, t := range obj.AllOf {
		if gs.Territory(t).Owner != obj.Power {
			return false
		}
	}
	if len(obj.AnyOf) == 0 {
		return true
	}
	for _, t := range obj.AnyOf {
		if gs.Territory(t).Owner == obj.Power {
			return true
		}
	}
	return false
}

// collectIncome credits the current power and records the breakdown.
func collectIncome(gs *GameState, m Map) []Event {
	p := gs.CurrentPower
	inc, losses := ComputeIncome(gs, m, p)
	*gs.PhaseState.Income = inc
	ps := gs.Power(p)
	ps.IPCs += inc.Total
	ps.LastIncome = inc.Total

	var events []Event
	for _, l := range losses {
		events = append(events, Event{Type: EventConvoyDisrupted, Power: p, Location: Sea(l.Zone), Amount: l.Lost})
	}
	return append(events, Event{Type: EventIncomeCollected, Power: p, Amount: inc.Total, Turn: gs.Turn})
}
