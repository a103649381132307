package engine

// checkUndo reports whether the top log entry can be reversed.
func checkUndo(gs *GameState) error {
	if len(gs.ActionLog) == 0 {
		return cannotUndo("nothing to undo")
	}
	top := gs.ActionLog[len(gs.ActionLog)-1]
	if top.Inverse.Kind == InverseIrreversible {
		return cannotUndo(string(top.Action.Type) + " cannot be undone")
	}
	return nil
}

// CanUndo reports whether Undo would succeed.
func CanUndo(gs *GameState) bool {
	return gs.Winner == "" && checkUndo(gs) == nil
}

// undo pops the top log entry and reverses it. The undo itself is not logged.
// A failed inverse leaves gs untouched.
func undo(gs *GameState, m Map) (Result, error) {
	if gs.Winner != "" {
		return Result{}, cannotUndo("the game is over")
	}
	if err := checkUndo(gs); err != nil {
		return Result{}, err
	}
	work := gs.Clone()
	top := work.ActionLog[len(work.ActionLog)-1]
	work.ActionLog = work.ActionLog[:len(work.ActionLog)-1]

	switch top.Inverse.Kind {
	case InverseSimple:
		if top.Inverse.Action == nil {
			return Result{}, internalError("simple inverse without an action")
		}
		d := NewDice(work.RNGSeed, work.RNGCounter)
		if _, _, err := execute(work, m, d, *top.Inverse.Action); err != nil {
			return Result{}, err
		}
	case InverseRestoreSnapshot:
		if err := restoreSnapshot(work, top.Inverse.Snapshot); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, internalError("unknown inverse kind %q", top.Inverse.Kind)
	}

	*gs = *work
	ev := Event{Type: EventActionUndone, Power: gs.CurrentPower, Action: top.Action.Type, UnitID: top.Action.UnitID}
	return Result{Applied: top, Events: []Event{ev}}, nil
}

// ActingPower returns the power whose controller must issue a: the defender
// rolls defence and picks defender-side casualties, the current power does
// everything else.
func ActingPower(gs *GameState, a Action) Power {
	var c *ActiveCombat
	if gs.PhaseState.Combat != nil {
		c = gs.PhaseState.Combat.Active
	}
	if c == nil {
		return gs.CurrentPower
	}
	switch a.Type {
	case ActionRollDefense:
		return c.Defender
	case ActionSelectCasualties:
		if c.SubPhase.defenderSelects() {
			return c.Defender
		}
	}
	return gs.CurrentPower
}
