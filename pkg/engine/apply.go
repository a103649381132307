package engine

import (
	"encoding/json"
	"slices"
)

// Result is the outcome of a successful Apply.
type Result struct {
	Applied ActionLogEntry `json:"applied"`
	Events  []Event        `json:"events"`
}

// Apply validates a and applies it to gs, appending exactly one log entry.
// Validation failures leave gs untouched. d may be nil; a stream positioned
// at the state's counter is then created.
func Apply(gs *GameState, m Map, d *Dice, a Action) (Result, error) {
	if a.Type == ActionUndo {
		return undo(gs, m)
	}
	if err := Validate(gs, m, a); err != nil {
		return Result{}, err
	}
	if d == nil || d.Seed() != gs.RNGSeed || d.Counter() != gs.RNGCounter {
		d = NewDice(gs.RNGSeed, gs.RNGCounter)
	}
	inv, events, err := execute(gs, m, d, a)
	if err != nil {
		return Result{}, err
	}
	entry := ActionLogEntry{Action: a.Clone(), Inverse: inv}
	gs.ActionLog = append(gs.ActionLog, entry)
	gs.RNGCounter = d.Counter()
	return Result{Applied: entry, Events: events}, nil
}

// execute performs an already validated action and returns its inverse.
func execute(gs *GameState, m Map, d *Dice, a Action) (Inverse, []Event, error) {
	p := gs.CurrentPower
	switch a.Type {
	case ActionPurchaseUnit:
		purchase(gs, a.UnitType, a.Count, slotOf(a))
		ev := Event{Type: EventUnitsPurchased, Power: p, UnitType: a.UnitType, Count: a.Count}
		return simpleInverse(RemovePurchase(a.UnitType, a.Count)), []Event{ev}, nil
	case ActionRemovePurchase:
		emptied := purchase(gs, a.UnitType, -a.Count, -1)
		return simpleInverse(withSlot(PurchaseUnit(a.UnitType, a.Count), emptied)), nil, nil
	case ActionRepairFacility:
		inv := repair(gs, a)
		ev := Event{Type: EventFacilityRepaired, Power: p, Territory: a.Territory, Amount: a.Amount}
		return simpleInverse(inv), []Event{ev}, nil

	case ActionMoveUnit:
		pm, err := planMove(gs, m, a.UnitID, a.Path, false)
		if err != nil {
			return Inverse{}, nil, err
		}
		pm.FromIndex = relocate(gs, pm)
		gs.PhaseState.CombatMove.Moves = append(gs.PhaseState.CombatMove.Moves, pm)
		return simpleInverse(UndoMove(a.UnitID)), []Event{moveEvent(p, pm)}, nil
	case ActionUndoMove:
		ms := gs.PhaseState.CombatMove
		mv := ms.Find(a.UnitID)
		if mv == nil {
			return Inverse{}, nil, illegalMove("unit %d has no planned move to undo", a.UnitID)
		}
		snap, err := takeSnapshot(gs, a.UnitID)
		if err != nil {
			return Inverse{}, nil, err
		}
		u, _, _, _ := gs.removeUnit(a.UnitID)
		u.Moved = false
		u.MovementLeft += mv.Movement
		gs.insertUnit(mv.From, u, mv.FromIndex)
		ms.remove(a.UnitID)
		return Inverse{Kind: InverseRestoreSnapshot, Snapshot: snap}, nil, nil

	case ActionMoveUnitNonCombat, ActionLandAirUnit:
		var pm PlannedMove
		var err error
		if a.Type == ActionLandAirUnit {
			pm, err = planLanding(gs, m, a.UnitID, a.Location)
		} else {
			pm, err = planMove(gs, m, a.UnitID, a.Path, true)
		}
		if err != nil {
			return Inverse{}, nil, err
		}
		snap, err := takeSnapshot(gs, a.UnitID)
		if err != nil {
			return Inverse{}, nil, err
		}
		pm.FromIndex = relocate(gs, pm)
		ms := gs.PhaseState.NonCombatMove
		ms.remove(a.UnitID)
		ms.Moves = append(ms.Moves, pm)
		return Inverse{Kind: InverseRestoreSnapshot, Snapshot: snap}, []Event{moveEvent(p, pm)}, nil

	case ActionSelectBattle:
		cs := gs.PhaseState.Combat
		loc := a.Location
		cs.CurrentBattle = &loc
		c := startBattle(gs, m, loc)
		cs.Active = c
		events := []Event{{Type: EventBattleStarted, Location: loc, Power: c.Attacker, Target: c.Defender, Units: slices.Concat(c.AttackerUnits, c.DefenderUnits)}}
		return irreversible(), append(events, settleBattle(gs, m)...), nil
	case ActionBombingRaid:
		return irreversible(), bombingRaid(gs, m, d, a), nil
	case ActionRollAttack:
		return irreversible(), rollAttack(gs, m, d, gs.PhaseState.Combat.Active), nil
	case ActionRollDefense:
		return irreversible(), rollDefense(gs, m, d, gs.PhaseState.Combat.Active), nil
	case ActionSelectCasualties:
		return irreversible(), applyCasualties(gs, m, gs.PhaseState.Combat.Active, a.Casualties), nil
	case ActionAttackerRetreat:
		return irreversible(), retreat(gs, m, gs.PhaseState.Combat.Active, a.Location), nil
	case ActionSubmergeSubmarine:
		return irreversible(), submerge(gs, m, gs.PhaseState.Combat.Active, a.UnitID), nil
	case ActionContinueCombat:
		continueRound(gs, gs.PhaseState.Combat.Active)
		return irreversible(), nil, nil

	case ActionPlaceUnit:
		u, emptied := place(gs, m, a.UnitType, a.Territory)
		ev := Event{Type: EventUnitsPlaced, Power: p, UnitType: a.UnitType, UnitID: u.ID, Territory: a.Territory, Count: 1}
		return simpleInverse(withSlot(Action{Type: ActionUnplaceUnit, UnitID: u.ID}, emptied)), []Event{ev}, nil
	case ActionUnplaceUnit:
		return irreversible(), nil, unplace(gs, a.UnitID, slotOf(a))

	case ActionDeclareWar:
		return irreversible(), declareWar(gs, a.Against), nil

	case ActionConfirmPurchases, ActionConfirmCombatMovement, ActionConfirmNonCombatMovement,
		ActionConfirmMobilization, ActionConfirmIncome, ActionConfirmPhase:
		return irreversible(), advancePhase(gs, m), nil
	}
	return Inverse{}, nil, invalidAction("unknown action type %q", a.Type)
}

func moveEvent(p Power, pm PlannedMove) Event {
	return Event{Type: EventUnitMoved, Power: p, UnitID: pm.UnitID, Location: pm.To}
}

// relocate carries out a planned move and returns the unit's former index
// in its origin list.
func relocate(gs *GameState, pm PlannedMove) int {
	u, _, idx, _ := gs.removeUnit(pm.UnitID)
	u.Moved = true
	u.MovementLeft -= pm.Movement
	gs.addUnit(pm.To, u)
	return idx
}

// phaseSnapshot is the serialized pre-action state used by RestoreSnapshot
// inverses: the phase state and the moved unit exactly as they were.
type phaseSnapshot struct {
	Phase PhaseState `json:"phase"`
	Unit  Unit       `json:"unit"`
	From  RegionID   `json:"from"`
	Index int        `json:"index"`
}

func takeSnapshot(gs *GameState, id UnitID) ([]byte, error) {
	u, loc, ok := gs.FindUnit(id)
	if !ok {
		return nil, unitNotFound(id)
	}
	idx := slices.IndexFunc(gs.Units(loc), func(x Unit) bool { return x.ID == id })
	b, err := json.Marshal(phaseSnapshot{Phase: gs.PhaseState.Clone(), Unit: u, From: loc, Index: idx})
	if err != nil {
		return nil, serializationError(err)
	}
	return b, nil
}

func restoreSnapshot(gs *GameState, data []byte) error {
	var s phaseSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return deserializationError("snapshot: %v", err)
	}
	if _, _, _, ok := gs.removeUnit(s.Unit.ID); !ok {
		return unitNotFound(s.Unit.ID)
	}
	gs.insertUnit(s.From, s.Unit, s.Index)
	gs.PhaseState = s.Phase
	return nil
}
