package engine

import "testing"

func TestPurchaseAndUndo(t *testing.T) {
	gs, b := newTestGame(t)
	ipcs := func() int { return gs.Power(Germany).IPCs }

	res := mustApply(t, gs, b, PurchaseUnit(Infantry, 2))
	if ipcs() != 24 {
		t.Fatalf("IPCs = %d, want 24", ipcs())
	}
	if !hasEvent(res.Events, EventUnitsPurchased) {
		t.Errorf("missing units_purchased event")
	}
	if inv := res.Applied.Inverse; inv.Kind != InverseSimple || inv.Action.Type != ActionRemovePurchase || inv.Action.Count != 2 {
		t.Errorf("inverse = %+v", inv)
	}

	mustApply(t, gs, b, RemovePurchase(Infantry, 1))
	if ipcs() != 27 || gs.PhaseState.Purchase.Count(Infantry) != 1 {
		t.Fatalf("after remove: IPCs=%d count=%d", ipcs(), gs.PhaseState.Purchase.Count(Infantry))
	}

	mustApply(t, gs, b, Simple(ActionUndo))
	if ipcs() != 24 || gs.PhaseState.Purchase.Count(Infantry) != 2 {
		t.Fatalf("after undo remove: IPCs=%d count=%d", ipcs(), gs.PhaseState.Purchase.Count(Infantry))
	}
	mustApply(t, gs, b, Simple(ActionUndo))
	if ipcs() != 30 || len(gs.PhaseState.Purchase.Purchases) != 0 || gs.PhaseState.Purchase.IPCsSpent != 0 {
		t.Fatalf("after undo purchase: IPCs=%d purchases=%v", ipcs(), gs.PhaseState.Purchase.Purchases)
	}
	if len(gs.ActionLog) != 0 {
		t.Errorf("undo should pop the log, have %d entries", len(gs.ActionLog))
	}
}

func TestPurchaseValidation(t *testing.T) {
	gs, b := newTestGame(t)

	err := Validate(gs, b, PurchaseUnit(Battleship, 2))
	expectKind(t, err, ErrInsufficientIPCs)
	if e, ok := err.(*Error); !ok || e.Needed != 40 || e.Available != 30 {
		t.Errorf("error details = %+v", err)
	}
	expectKind(t, Validate(gs, b, PurchaseUnit(Infantry, 0)), ErrInvalidAction)
	expectKind(t, Validate(gs, b, PurchaseUnit("zeppelin", 1)), ErrInvalidAction)
	expectKind(t, Validate(gs, b, RemovePurchase(Infantry, 1)), ErrInvalidAction)
	expectKind(t, Validate(gs, b, MoveUnit(1, land(b, "Germany"), land(b, "Poland"))), ErrWrongPhase)

	if _, err := Apply(gs, b, nil, PurchaseUnit(Battleship, 2)); err == nil {
		t.Fatalf("expected failure")
	}
	if gs.Power(Germany).IPCs != 30 || len(gs.ActionLog) != 0 {
		t.Errorf("failed action changed the state")
	}

	gs.CurrentPower = China
	expectKind(t, Validate(gs, b, PurchaseUnit(Tank, 1)), ErrInvalidAction)
	if err := Validate(gs, b, PurchaseUnit(Infantry, 4)); err != nil {
		t.Errorf("China infantry purchase: %v", err)
	}
}

func TestRepairFacility(t *testing.T) {
	gs, b := newTestGame(t)
	ger := b.MustTerritory("Germany")
	ic := gs.Territory(ger).IndustrialComplex()
	ic.SetDamage(4)

	expectKind(t, Validate(gs, b, RepairFacility(ger, MajorIndustrialComplex, 5)), ErrInvalidAction)
	expectKind(t, Validate(gs, b, RepairFacility(b.MustTerritory("France"), MajorIndustrialComplex, 1)), ErrInvalidAction)

	mustApply(t, gs, b, RepairFacility(ger, MajorIndustrialComplex, 3))
	if ic := gs.Territory(ger).IndustrialComplex(); ic.Damage != 1 {
		t.Fatalf("damage = %d, want 1", ic.Damage)
	}
	if gs.Power(Germany).IPCs != 27 {
		t.Fatalf("IPCs = %d, want 27", gs.Power(Germany).IPCs)
	}
	mustApply(t, gs, b, Simple(ActionUndo))
	if ic := gs.Territory(ger).IndustrialComplex(); ic.Damage != 4 {
		t.Errorf("damage after undo = %d, want 4", ic.Damage)
	}
	if gs.Power(Germany).IPCs != 30 {
		t.Errorf("IPCs after undo = %d, want 30", gs.Power(Germany).IPCs)
	}
	if len(gs.PhaseState.Purchase.Repairs) != 0 {
		t.Errorf("repair lines not cleared: %v", gs.PhaseState.Purchase.Repairs)
	}
}

func TestCannotUndo(t *testing.T) {
	gs, b := newTestGame(t)
	_, err := Apply(gs, b, nil, Simple(ActionUndo))
	expectKind(t, err, ErrCannotUndo)

	mustApply(t, gs, b, PurchaseUnit(Infantry, 1))
	mustApply(t, gs, b, Simple(ActionConfirmPurchases))
	if CanUndo(gs) {
		t.Fatalf("confirm should be irreversible")
	}
	logLen := len(gs.ActionLog)
	_, err = Apply(gs, b, nil, Simple(ActionUndo))
	expectKind(t, err, ErrCannotUndo)
	if len(gs.ActionLog) != logLen {
		t.Errorf("failed undo changed the log")
	}
}
