package bot

import (
	"github.com/freeeve/global-command/api/pkg/engine"
)

// Passive never attacks. It spends its treasury on infantry up to what its
// factories can place, fights only the battles it is dragged into with the
// cheapest casualties, lands stranded aircraft and collects income.
type Passive struct{}

func (Passive) Name() string { return "passive" }

func (Passive) NextAction(gs *engine.GameState, m engine.Map) (engine.Action, bool) {
	if gs.Winner != "" {
		return engine.Action{}, false
	}
	las := engine.LegalActions(gs, m)

	switch gs.CurrentPhase {
	case engine.PhasePurchase:
		if n := infantryToBuy(gs, m); n > 0 {
			a := engine.PurchaseUnit(engine.Infantry, n)
			if engine.Validate(gs, m, a) == nil {
				return a, true
			}
		}
		if a, ok := firstOf(las, engine.ActionConfirmPurchases); ok {
			return a, true
		}
	case engine.PhaseCombatMovement:
		if a, ok := firstOf(las, engine.ActionConfirmCombatMovement); ok {
			return a, true
		}
		// a planned move left aircraft without a landing spot
		if a, ok := firstOf(las, engine.ActionUndoMove); ok {
			return a, true
		}
	case engine.PhaseConductCombat:
		if a, ok := firstOf(las, engine.ActionSelectBattle, engine.ActionConfirmPhase); ok {
			return a, true
		}
	case engine.PhaseNonCombatMovement:
		if a, ok := firstOf(las, engine.ActionLandAirUnit, engine.ActionConfirmNonCombatMovement); ok {
			return a, true
		}
	case engine.PhaseMobilize:
		if a, ok := firstOf(las, engine.ActionPlaceUnit, engine.ActionConfirmMobilization); ok {
			return a, true
		}
	case engine.PhaseCollectIncome:
		if a, ok := firstOf(las, engine.ActionConfirmIncome); ok {
			return a, true
		}
	}
	return firstForward(las)
}

// infantryToBuy returns how many more infantry the current power can afford
// and still place this turn.
func infantryToBuy(gs *engine.GameState, m engine.Map) int {
	p := gs.CurrentPower
	ps := gs.PhaseState.Purchase
	if ps == nil {
		return 0
	}
	bought := 0
	for _, l := range ps.Purchases {
		bought += l.Count
	}
	room := placementCapacity(gs, m, p) - bought
	afford := gs.Power(p).IPCs / engine.StatsFor(engine.Infantry).Cost
	return max(0, min(room, afford))
}

// placementCapacity sums the production capacity of p's factories.
func placementCapacity(gs *engine.GameState, m engine.Map, p engine.Power) int {
	total := 0
	for i := range gs.Territories {
		t := &gs.Territories[i]
		if t.Owner != p || t.JustCaptured {
			continue
		}
		ic := t.IndustrialComplex()
		if ic == nil {
			continue
		}
		def, ok := m.Territory(engine.TerritoryID(i))
		if !ok {
			continue
		}
		total += ic.ProductionCapacity(def.IPC)
	}
	return total
}
