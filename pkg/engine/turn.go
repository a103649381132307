package engine

import "slices"

// advancePhase closes the current phase and opens the next one, handing the
// turn to the next power after Collect Income.
func advancePhase(gs *GameState, m Map) []Event {
	gs.UndoCheckpoints = append(gs.UndoCheckpoints, len(gs.ActionLog))
	from := gs.CurrentPhase
	p := gs.CurrentPower
	var events []Event
	var battles []RegionID
	var arrivals []PlannedMove

	switch from {
	case PhasePurchase:
		gs.PendingMobilization = slices.Clone(gs.PhaseState.Purchase.Purchases)
	case PhaseCombatMovement:
		arrivals = cloneMoves(gs.PhaseState.CombatMove.Moves)
		events = append(events, resolveUncontested(gs, m, p, arrivals)...)
		battles = pendingBattles(gs, p)
	case PhaseNonCombatMovement:
		events = append(events, crashUnlandedAir(gs, m, p)...)
	case PhaseMobilize:
		gs.PendingMobilization = nil
	case PhaseCollectIncome:
		events = append(events, collectIncome(gs, m)...)
		endTurn(gs, p)
	}

	next, wrap := from.Next()
	if wrap {
		gs.CurrentPower = NextPower(p)
		if gs.CurrentPower == TurnOrder[0] {
			gs.Turn++
		}
	}
	gs.CurrentPhase = next
	gs.PhaseState = NewPhaseState(next)
	switch next {
	case PhaseConductCombat:
		gs.PhaseState.Combat.PendingBattles = battles
		gs.PhaseState.Combat.Arrivals = arrivals
	case PhaseMobilize:
		gs.PhaseState.Mobilize.ToPlace = slices.Clone(gs.PendingMobilization)
	case PhaseCollectIncome:
		inc, _ := ComputeIncome(gs, m, gs.CurrentPower)
		*gs.PhaseState.Income = inc
	}

	events = append(events, Event{Type: EventPhaseChanged, Power: gs.CurrentPower, From: from, To: next, Turn: gs.Turn})
	if wrap {
		events = append(events, Event{Type: EventTurnChanged, Power: gs.CurrentPower, Turn: gs.Turn})
	}
	return append(events, checkVictory(gs, m)...)
}

// endTurn refreshes the finishing power's units and clears capture markers.
func endTurn(gs *GameState, p Power) {
	reset := func(units []Unit) {
		for i := range units {
			if units[i].Owner == p {
				units[i].Moved = false
				units[i].MovementLeft = units[i].Stats().Movement
			}
		}
	}
	for i := range gs.Territories {
		reset(gs.Territories[i].Units)
		gs.Territories[i].JustCaptured = false
	}
	for i := range gs.SeaZones {
		reset(gs.SeaZones[i].Units)
	}
}

// crashUnlandedAir removes p's aircraft that end non-combat movement without
// a landing spot: over hostile land, or at sea beyond friendly deck space.
func crashUnlandedAir(gs *GameState, m Map, p Power) []Event {
	var lost []UnitID
	for i := range gs.Territories {
		t := &gs.Territories[i]
		if gs.Friendly(p, t.Owner) {
			continue
		}
		for _, u := range t.Units {
			if u.Owner == p && u.Domain() == DomainAir {
				lost = append(lost, u.ID)
			}
		}
	}
	for i := range gs.SeaZones {
		space := 0
		for _, u := range gs.SeaZones[i].Units {
			if gs.Friendly(p, u.Owner) {
				space += u.Stats().CarrierCapacity
			}
		}
		for _, u := range gs.SeaZones[i].Units {
			if u.Owner != p || u.Domain() != DomainAir {
				continue
			}
			if u.Stats().Has(AbilityCarrierLanding) && space > 0 {
				space--
				continue
			}
			lost = append(lost, u.ID)
		}
	}
	if len(lost) == 0 {
		return nil
	}
	for _, id := range lost {
		gs.removeUnit(id)
	}
	return []Event{{Type: EventCasualtiesTaken, Power: p, Units: lost, Count: len(lost)}}
}
