package engine

import "slices"

// Validate checks an action against the current state without modifying it.
func Validate(gs *GameState, m Map, a Action) error {
	if gs.Winner != "" {
		return invalidAction("the game is over: %s won", gs.Winner)
	}
	if a.Slot != nil {
		return invalidAction("%s cannot carry a list slot", a.Type)
	}
	phase := gs.CurrentPhase
	need := func(p Phase) error {
		if phase != p {
			return wrongPhase(p, phase)
		}
		return nil
	}

	switch a.Type {
	case ActionPurchaseUnit:
		if err := need(PhasePurchase); err != nil {
			return err
		}
		return validatePurchase(gs, a.UnitType, a.Count)
	case ActionRemovePurchase:
		if err := need(PhasePurchase); err != nil {
			return err
		}
		return validateRemovePurchase(gs, a.UnitType, a.Count)
	case ActionRepairFacility:
		if err := need(PhasePurchase); err != nil {
			return err
		}
		return validateRepair(gs, m, a)
	case ActionConfirmPurchases:
		return need(PhasePurchase)

	case ActionMoveUnit:
		if err := need(PhaseCombatMovement); err != nil {
			return err
		}
		_, err := planMove(gs, m, a.UnitID, a.Path, false)
		return err
	case ActionUndoMove:
		if err := need(PhaseCombatMovement); err != nil {
			return err
		}
		return validateUndoMove(gs, m, a.UnitID)
	case ActionConfirmCombatMovement:
		if err := need(PhaseCombatMovement); err != nil {
			return err
		}
		return validateAirLandings(gs, m)

	case ActionSelectBattle:
		if err := need(PhaseConductCombat); err != nil {
			return err
		}
		cs := gs.PhaseState.Combat
		if cs.Active != nil {
			return invalidAction("a battle is already in progress at %s", regionName(m, cs.Active.Location))
		}
		if !slices.Contains(cs.PendingBattles, a.Location) {
			return invalidAction("no pending battle at %s", a.Location)
		}
		return nil
	case ActionBombingRaid:
		if err := need(PhaseConductCombat); err != nil {
			return err
		}
		return validateBombingRaid(gs, m, a)
	case ActionRollAttack:
		return validateCombatStep(gs, a.Type, SubPhaseAAFire, SubPhaseShoreBombardment, SubPhaseAttackerSubmarineStrike, SubPhaseAttackerRolls)
	case ActionRollDefense:
		return validateCombatStep(gs, a.Type, SubPhaseDefenderSubmarineStrike, SubPhaseDefenderRolls)
	case ActionSelectCasualties:
		if err := validateCombatStep(gs, a.Type,
			SubPhaseAAFireCasualties, SubPhaseShoreBombardmentCasualties,
			SubPhaseDefenderSubmarineStrikeCasualties, SubPhaseAttackerSubmarineStrikeCasualties,
			SubPhaseDefenderSelectsCasualties, SubPhaseAttackerSelectsCasualties); err != nil {
			return err
		}
		return validateCasualties(gs, gs.PhaseState.Combat.Active, a.Casualties)
	case ActionAttackerRetreat:
		if err := validateCombatStep(gs, a.Type, SubPhaseAttackerDecision); err != nil {
			return err
		}
		if !slices.Contains(gs.PhaseState.Combat.Active.RetreatOptions, a.Location) {
			return invalidAction("cannot retreat to %s", regionName(m, a.Location))
		}
		return nil
	case ActionSubmergeSubmarine:
		if err := validateCombatStep(gs, a.Type, SubPhaseAttackerDecision); err != nil {
			return err
		}
		return validateSubmerge(gs, a.UnitID)
	case ActionContinueCombat:
		return validateCombatStep(gs, a.Type, SubPhaseAttackerDecision)
	case ActionConfirmPhase:
		if phase != PhaseConductCombat {
			return Validate(gs, m, Simple(phaseConfirm(phase)))
		}
		cs := gs.PhaseState.Combat
		if cs.Active != nil {
			return invalidAction("finish the battle at %s first", regionName(m, cs.Active.Location))
		}
		if len(cs.PendingBattles) > 0 {
			return invalidAction("%d battles still to resolve", len(cs.PendingBattles))
		}
		return nil

	case ActionMoveUnitNonCombat:
		if err := need(PhaseNonCombatMovement); err != nil {
			return err
		}
		_, err := planMove(gs, m, a.UnitID, a.Path, true)
		return err
	case ActionLandAirUnit:
		if err := need(PhaseNonCombatMovement); err != nil {
			return err
		}
		_, err := planLanding(gs, m, a.UnitID, a.Location)
		return err
	case ActionConfirmNonCombatMovement:
		return need(PhaseNonCombatMovement)

	case ActionPlaceUnit:
		if err := need(PhaseMobilize); err != nil {
			return err
		}
		return validatePlace(gs, m, a.UnitType, a.Territory)
	case ActionConfirmMobilization:
		if err := need(PhaseMobilize); err != nil {
			return err
		}
		if n := gs.PhaseState.Mobilize.RemainingTotal(); n > 0 {
			return invalidAction("%d purchased units still to place", n)
		}
		return nil

	case ActionConfirmIncome:
		return need(PhaseCollectIncome)

	case ActionDeclareWar:
		if phase != PhasePurchase && phase != PhaseCombatMovement {
			return wrongPhase(PhaseCombatMovement, phase)
		}
		return validateDeclareWar(gs, a.Against)

	case ActionUndo:
		return checkUndo(gs)
	case ActionUnplaceUnit:
		return invalidAction("%s cannot be submitted directly", a.Type)
	}
	return invalidAction("unknown action type %q", a.Type)
}

// phaseConfirm maps a phase to its dedicated confirm action.
func phaseConfirm(p Phase) ActionType {
	switch p {
	case PhasePurchase:
		return ActionConfirmPurchases
	case PhaseCombatMovement:
		return ActionConfirmCombatMovement
	case PhaseNonCombatMovement:
		return ActionConfirmNonCombatMovement
	case PhaseMobilize:
		return ActionConfirmMobilization
	case PhaseCollectIncome:
		return ActionConfirmIncome
	}
	return ActionConfirmPhase
}

func validateCombatStep(gs *GameState, t ActionType, allowed ...CombatSubPhase) error {
	if gs.CurrentPhase != PhaseConductCombat {
		return wrongPhase(PhaseConductCombat, gs.CurrentPhase)
	}
	c := gs.PhaseState.Combat.Active
	if c == nil {
		return invalidAction("no battle in progress")
	}
	if !slices.Contains(allowed, c.SubPhase) {
		return invalidAction("%s is not allowed during %s", t, c.SubPhase)
	}
	return nil
}

func validateSubmerge(gs *GameState, id UnitID) error {
	c := gs.PhaseState.Combat.Active
	if !slices.Contains(c.ActiveAttackers(), id) {
		return invalidAction("unit %d is not an active attacker", id)
	}
	u, _, _ := gs.FindUnit(id)
	if !isSub(u) {
		return invalidAction("unit %d is not a submarine", id)
	}
	if hasType(c.defenders(gs), isDestroyer) {
		return invalidAction("cannot submerge while an enemy destroyer is present")
	}
	return nil
}

func validateUndoMove(gs *GameState, m Map, id UnitID) error {
	mv := gs.PhaseState.CombatMove.Find(id)
	if mv == nil {
		return illegalMove("unit %d has no planned move to undo", id)
	}
	_, loc, ok := gs.FindUnit(id)
	if !ok {
		return unitNotFound(id)
	}
	if loc != mv.To {
		return illegalMove("unit %d is no longer in %s", id, regionName(m, mv.To))
	}
	return nil
}

// validateAirLandings checks every air unit that moved in combat can still
// reach a landing spot with its remaining movement.
func validateAirLandings(gs *GameState, m Map) error {
	for _, mv := range gs.PhaseState.CombatMove.Moves {
		u, loc, ok := gs.FindUnit(mv.UnitID)
		if !ok {
			return unitNotFound(mv.UnitID)
		}
		if u.Domain() != DomainAir {
			continue
		}
		if !canReachLanding(gs, m, u, loc) {
			return illegalMove("air unit %d in %s has no reachable landing spot", u.ID, regionName(m, loc))
		}
	}
	return nil
}
