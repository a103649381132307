package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// LegalAction is an action that would pass validation now, with a
// human-readable description.
type LegalAction struct {
	Action      Action `json:"action"`
	Description string `json:"description"`
}

// LegalActions enumerates the confirm action, Undo when available, and the
// per-phase actions that can be listed without a free-form choice. Movement
// paths are open-ended and are not enumerated.
func LegalActions(gs *GameState, m Map) []LegalAction {
	if gs.Winner != "" {
		return nil
	}
	var cands []Action
	switch gs.CurrentPhase {
	case PhasePurchase:
		for _, t := range AllUnitTypes {
			cands = append(cands, PurchaseUnit(t, 1))
		}
		for _, l := range gs.PhaseState.Purchase.Purchases {
			cands = append(cands, RemovePurchase(l.UnitType, 1))
		}
		for i, t := range gs.Territories {
			for _, f := range t.Facilities {
				if f.Damage > 0 {
					amount := min(f.Damage, gs.Power(gs.CurrentPower).IPCs)
					cands = append(cands, RepairFacility(TerritoryID(i), f.Type, amount))
				}
			}
		}
		cands = append(cands, warDeclarations(gs)...)
		cands = append(cands, Simple(ActionConfirmPurchases))

	case PhaseCombatMovement:
		for _, mv := range gs.PhaseState.CombatMove.Moves {
			cands = append(cands, UndoMove(mv.UnitID))
		}
		cands = append(cands, warDeclarations(gs)...)
		cands = append(cands, Simple(ActionConfirmCombatMovement))

	case PhaseConductCombat:
		cands = append(cands, combatActions(gs, m)...)

	case PhaseNonCombatMovement:
		for i := range gs.Territories {
			cands = append(cands, landingActions(gs, m, Land(TerritoryID(i)))...)
		}
		for i := range gs.SeaZones {
			cands = append(cands, landingActions(gs, m, Sea(SeaZoneID(i)))...)
		}
		cands = append(cands, Simple(ActionConfirmNonCombatMovement))

	case PhaseMobilize:
		for _, l := range gs.PhaseState.Mobilize.ToPlace {
			for _, t := range PlacementOptions(gs, m, l.UnitType) {
				cands = append(cands, PlaceUnit(l.UnitType, t))
			}
		}
		cands = append(cands, Simple(ActionConfirmMobilization))

	case PhaseCollectIncome:
		cands = append(cands, Simple(ActionConfirmIncome))
	}

	var out []LegalAction
	for _, a := range cands {
		if Validate(gs, m, a) == nil {
			out = append(out, LegalAction{Action: a, Description: Describe(m, a)})
		}
	}
	if CanUndo(gs) {
		out = append(out, LegalAction{Action: Simple(ActionUndo), Description: "Undo last action"})
	}
	return out
}

func warDeclarations(gs *GameState) []Action {
	var out []Action
	for _, p := range WarTargets(gs) {
		out = append(out, DeclareWar(p))
	}
	return out
}

func combatActions(gs *GameState, m Map) []Action {
	cs := gs.PhaseState.Combat
	c := cs.Active
	if c == nil {
		out := raidTargets(gs, m)
		for _, r := range cs.PendingBattles {
			out = append(out, SelectBattle(r))
		}
		return append(out, Simple(ActionConfirmPhase))
	}
	switch c.SubPhase {
	case SubPhaseAAFire, SubPhaseShoreBombardment, SubPhaseAttackerSubmarineStrike, SubPhaseAttackerRolls:
		return []Action{Simple(ActionRollAttack)}
	case SubPhaseDefenderSubmarineStrike, SubPhaseDefenderRolls:
		return []Action{Simple(ActionRollDefense)}
	case SubPhaseAttackerDecision:
		out := []Action{Simple(ActionContinueCombat)}
		for _, r := range c.RetreatOptions {
			out = append(out, AttackerRetreat(r))
		}
		for _, u := range filterUnits(c.attackers(gs), isSub) {
			out = append(out, SubmergeSubmarine(u.ID))
		}
		return out
	}
	if c.SubPhase.IsCasualtySelection() {
		return []Action{SelectCasualties(DefaultCasualties(gs)...)}
	}
	return nil
}

// landingActions offers the nearest friendly landing for the current power's
// air units that have not moved in this phase and sit somewhere they could
// not stay.
func landingActions(gs *GameState, m Map, r RegionID) []Action {
	p := gs.CurrentPower
	if r.IsLand() && gs.Friendly(p, gs.Territory(r.Territory()).Owner) {
		return nil
	}
	var out []Action
	for _, u := range gs.Units(r) {
		if u.Owner != p || u.Domain() != DomainAir || gs.PhaseState.NonCombatMove.Find(u.ID) != nil {
			continue
		}
		if r.IsSea() && checkLanding(gs, m, u, r) == nil {
			continue
		}
		reach := ReachableWithin(m, r, u.MovementLeft, airPassable(m))
		var dests []RegionID
		for dest := range reach {
			if dest != r && checkLanding(gs, m, u, dest) == nil {
				dests = append(dests, dest)
			}
		}
		if len(dests) == 0 {
			continue
		}
		slices.SortFunc(dests, func(a, b RegionID) int {
			if c := cmp.Compare(reach[a], reach[b]); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
		out = append(out, LandAirUnit(u.ID, dests[0]))
	}
	return out
}

// DefaultCasualties picks the casualties the current step requires: healthy
// two-hit units absorb first, then the cheapest units go.
func DefaultCasualties(gs *GameState) []UnitID {
	cs := gs.PhaseState.Combat
	if cs == nil || cs.Active == nil || !cs.Active.SubPhase.IsCasualtySelection() {
		return nil
	}
	c := cs.Active
	_, eligible, _ := c.casualtyRule(gs)
	n := c.requiredCasualties(gs)
	units := slices.Clone(eligible)
	slices.SortStableFunc(units, func(a, b Unit) int {
		aa, ba := a.HitsLeft() > 1, b.HitsLeft() > 1
		switch {
		case aa && !ba:
			return -1
		case ba && !aa:
			return 1
		}
		if c := cmp.Compare(a.Stats().Cost, b.Stats().Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	out := make([]UnitID, 0, n)
	for _, u := range units[:n] {
		out = append(out, u.ID)
	}
	return out
}

// Describe renders an action with board names.
func Describe(m Map, a Action) string {
	switch a.Type {
	case ActionPurchaseUnit:
		return fmt.Sprintf("Buy %d %s", a.Count, a.UnitType)
	case ActionRemovePurchase:
		return fmt.Sprintf("Remove %d %s from purchases", a.Count, a.UnitType)
	case ActionRepairFacility:
		return fmt.Sprintf("Repair %d damage at %s", a.Amount, regionName(m, Land(a.Territory)))
	case ActionUndoMove:
		return fmt.Sprintf("Undo move of unit %d", a.UnitID)
	case ActionBombingRaid:
		target := "industrial complex"
		if a.Facility != "" {
			target = string(a.Facility)
		}
		return fmt.Sprintf("Bomb the %s in %s", target, regionName(m, Land(a.Territory)))
	case ActionSelectBattle:
		return "Resolve battle in " + regionName(m, a.Location)
	case ActionRollAttack:
		return "Roll attack"
	case ActionRollDefense:
		return "Roll defense"
	case ActionSelectCasualties:
		return fmt.Sprintf("Take casualties %v", a.Casualties)
	case ActionAttackerRetreat:
		return "Retreat to " + regionName(m, a.Location)
	case ActionSubmergeSubmarine:
		return fmt.Sprintf("Submerge submarine %d", a.UnitID)
	case ActionContinueCombat:
		return "Continue combat"
	case ActionLandAirUnit:
		return fmt.Sprintf("Land unit %d in %s", a.UnitID, regionName(m, a.Location))
	case ActionPlaceUnit:
		return fmt.Sprintf("Place %s in %s", a.UnitType, regionName(m, Land(a.Territory)))
	case ActionDeclareWar:
		return "Declare war on " + a.Against.Name()
	case ActionConfirmPurchases, ActionConfirmCombatMovement, ActionConfirmNonCombatMovement,
		ActionConfirmMobilization, ActionConfirmIncome, ActionConfirmPhase:
		return "End phase"
	}
	return a.String()
}
