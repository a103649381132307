package engine

import (
	"strings"
	"testing"
)

func TestCombatMoveValidation(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)

	ger := land(b, "Germany")
	inf := unitOf(t, gs, ger, Germany, Infantry)
	tank := unitOf(t, gs, ger, Germany, Tank)
	polInf := unitOf(t, gs, land(b, "Poland"), Germany, Infantry)
	ukInf := unitOf(t, gs, land(b, "Britain"), UnitedKingdom, Infantry)

	tests := []struct {
		name    string
		unit    UnitID
		path    []RegionID
		wantErr error
		reason  string
	}{
		{"friendly neighbour", inf.ID, []RegionID{ger, land(b, "Poland")}, nil, ""},
		{"enemy neighbour", inf.ID, []RegionID{ger, land(b, "Low Countries")}, nil, ""},
		{"tank blitz", tank.ID, []RegionID{ger, land(b, "Low Countries"), land(b, "France")}, nil, ""},
		{"infantry cannot blitz", inf.ID, []RegionID{ger, land(b, "Low Countries"), land(b, "France")}, ErrIllegalMove, "enemy territory"},
		{"impassable", tank.ID, []RegionID{ger, land(b, "Alps")}, ErrIllegalMove, "impassable"},
		{"not adjacent", inf.ID, []RegionID{ger, land(b, "Russia")}, ErrIllegalMove, "not adjacent"},
		{"not at war", polInf.ID, []RegionID{land(b, "Poland"), land(b, "Russia")}, ErrIllegalMove, "not at war"},
		{"neutral", tank.ID, []RegionID{ger, land(b, "Denmark"), land(b, "Sweden")}, ErrIllegalMove, "neutral"},
		{"too far", inf.ID, []RegionID{ger, land(b, "Poland"), land(b, "Russia")}, ErrIllegalMove, "not at war"},
		{"not owner", ukInf.ID, []RegionID{land(b, "Britain"), sea(b, "North Sea")}, ErrIllegalMove, "belongs to"},
		{"unknown unit", 9999, []RegionID{ger, land(b, "Poland")}, ErrUnitNotFound, ""},
		{"wrong start", inf.ID, []RegionID{land(b, "Poland"), ger}, ErrIllegalMove, "must start"},
		{"single region", inf.ID, []RegionID{ger}, ErrIllegalMove, "at least two"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(gs, b, MoveUnit(tt.unit, tt.path...))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			expectKind(t, err, tt.wantErr)
			if tt.reason != "" && !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error %q does not mention %q", err, tt.reason)
			}
		})
	}
}

func TestInsufficientMovement(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	ger := land(b, "Germany")
	inf := unitOf(t, gs, ger, Germany, Infantry)

	err := Validate(gs, b, MoveUnit(inf.ID, ger, land(b, "Denmark"), ger))
	expectKind(t, err, ErrIllegalMove)
	if !strings.Contains(err.Error(), "Insufficient movement: need 2, have 1") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestMechInfantryBlitzNeedsTank(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	ger, low, fra := land(b, "Germany"), land(b, "Low Countries"), land(b, "France")
	mech := unitOf(t, gs, ger, Germany, MechInfantry)
	tank := unitOf(t, gs, ger, Germany, Tank)

	expectKind(t, Validate(gs, b, MoveUnit(mech.ID, ger, low, fra)), ErrIllegalMove)
	mustApply(t, gs, b, MoveUnit(tank.ID, ger, low, fra))
	if err := Validate(gs, b, MoveUnit(mech.ID, ger, low, fra)); err != nil {
		t.Fatalf("mech infantry should blitz alongside the tank: %v", err)
	}
}

func TestStraitControl(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	baltic, north := sea(b, "Baltic Sea"), sea(b, "North Sea")
	cruiser := unitOf(t, gs, baltic, Germany, Cruiser)

	if err := Validate(gs, b, MoveUnit(cruiser.ID, baltic, north)); err != nil {
		t.Fatalf("strait held by Germany should be open: %v", err)
	}
	gs.Territory(b.MustTerritory("Denmark")).Owner = UnitedKingdom
	err := Validate(gs, b, MoveUnit(cruiser.ID, baltic, north))
	expectKind(t, err, ErrIllegalMove)
	if !strings.Contains(err.Error(), "Strait 'Danish Straits' is blocked") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestAmphibiousTransportCapacity(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	ger, baltic, den := land(b, "Germany"), sea(b, "Baltic Sea"), land(b, "Denmark")

	var infantry []Unit
	for _, u := range gs.Units(ger) {
		if u.Type == Infantry {
			infantry = append(infantry, u)
		}
	}
	for _, u := range infantry[:2] {
		res := mustApply(t, gs, b, MoveUnit(u.ID, ger, baltic, den))
		if res.Applied.Inverse.Kind != InverseSimple {
			t.Errorf("MoveUnit inverse = %s, want simple", res.Applied.Inverse.Kind)
		}
	}
	mv := gs.PhaseState.CombatMove.Find(infantry[0].ID)
	if mv == nil || !mv.Amphibious {
		t.Fatalf("expected an amphibious planned move, got %+v", mv)
	}
	err := Validate(gs, b, MoveUnit(infantry[2].ID, ger, baltic, den))
	expectKind(t, err, ErrIllegalMove)
	if !strings.Contains(err.Error(), "transport space") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestChineseUnitsStayInChina(t *testing.T) {
	gs, b := newTestGame(t)
	gs.CurrentPower = China
	gs.CurrentPhase = PhaseCombatMovement
	gs.PhaseState = NewPhaseState(PhaseCombatMovement)
	sz := land(b, "Szechwan")
	inf := unitOf(t, gs, sz, China, Infantry)

	if err := Validate(gs, b, MoveUnit(inf.ID, sz, land(b, "Yunnan"))); err != nil {
		t.Fatalf("move within China: %v", err)
	}
	err := Validate(gs, b, MoveUnit(inf.ID, sz, land(b, "Yunnan"), land(b, "Burma")))
	expectKind(t, err, ErrIllegalMove)
	if !strings.Contains(err.Error(), "Chinese") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestUndoMoveRestoresUnit(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	ger, pol := land(b, "Germany"), land(b, "Poland")
	inf := unitOf(t, gs, ger, Germany, Infantry)

	mustApply(t, gs, b, MoveUnit(inf.ID, ger, pol))
	if _, loc, _ := gs.FindUnit(inf.ID); loc != pol {
		t.Fatalf("unit in %s, want Poland", loc)
	}
	mustApply(t, gs, b, Simple(ActionUndo))
	u, loc, _ := gs.FindUnit(inf.ID)
	if loc != ger || u.Moved || u.MovementLeft != 1 {
		t.Fatalf("after undo: loc=%s moved=%v left=%d", loc, u.Moved, u.MovementLeft)
	}
	if len(gs.PhaseState.CombatMove.Moves) != 0 {
		t.Errorf("planned moves not cleared")
	}

	mustApply(t, gs, b, MoveUnit(inf.ID, ger, pol))
	mustApply(t, gs, b, UndoMove(inf.ID))
	if _, loc, _ := gs.FindUnit(inf.ID); loc != ger {
		t.Fatalf("UndoMove left unit in %s", loc)
	}
	// undoing the UndoMove replays the move
	mustApply(t, gs, b, Simple(ActionUndo))
	if _, loc, _ := gs.FindUnit(inf.ID); loc != pol {
		t.Fatalf("undo of UndoMove left unit in %s", loc)
	}
}

func TestAirMustHaveLanding(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseCombatMovement)
	ger := land(b, "Germany")
	ftr := unitOf(t, gs, ger, Germany, Fighter)

	mustApply(t, gs, b, MoveUnit(ftr.ID, ger, land(b, "Low Countries"), sea(b, "North Sea"), sea(b, "Channel")))
	err := Validate(gs, b, Simple(ActionConfirmCombatMovement))
	expectKind(t, err, ErrIllegalMove)
	if !strings.Contains(err.Error(), "landing") {
		t.Errorf("unexpected message: %v", err)
	}

	mustApply(t, gs, b, Simple(ActionUndo))
	mustApply(t, gs, b, MoveUnit(ftr.ID, ger, land(b, "Low Countries"), sea(b, "North Sea")))
	if err := Validate(gs, b, Simple(ActionConfirmCombatMovement)); err != nil {
		t.Fatalf("fighter two hops out should reach home: %v", err)
	}
}

func TestNonCombatMoveRules(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseNonCombatMovement)
	ger := land(b, "Germany")
	inf := unitOf(t, gs, ger, Germany, Infantry)
	cruiser := unitOf(t, gs, sea(b, "Baltic Sea"), Germany, Cruiser)

	expectKind(t, Validate(gs, b, MoveUnitNonCombat(inf.ID, ger, land(b, "Low Countries"))), ErrIllegalMove)
	expectKind(t, Validate(gs, b, MoveUnitNonCombat(cruiser.ID, sea(b, "Baltic Sea"), sea(b, "North Sea"))), ErrIllegalMove)

	res := mustApply(t, gs, b, MoveUnitNonCombat(inf.ID, ger, land(b, "Poland")))
	if res.Applied.Inverse.Kind != InverseRestoreSnapshot {
		t.Fatalf("inverse = %s, want restore_snapshot", res.Applied.Inverse.Kind)
	}
	before := gs.Units(ger)
	mustApply(t, gs, b, Simple(ActionUndo))
	u, loc, _ := gs.FindUnit(inf.ID)
	if loc != ger || u.Moved || u.MovementLeft != 1 {
		t.Fatalf("after undo: loc=%s moved=%v left=%d", loc, u.Moved, u.MovementLeft)
	}
	if len(gs.Units(ger)) != len(before)+1 {
		t.Errorf("unit count in Germany = %d, want %d", len(gs.Units(ger)), len(before)+1)
	}
	if gs.Units(ger)[0].ID != inf.ID {
		t.Errorf("snapshot restore should put the unit back at its original index")
	}
	if len(gs.PhaseState.NonCombatMove.Moves) != 0 {
		t.Errorf("phase state not restored")
	}
}

func TestLandAirUnit(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseNonCombatMovement)
	ger, low := land(b, "Germany"), land(b, "Low Countries")
	ftr := unitOf(t, gs, ger, Germany, Fighter)
	inf := unitOf(t, gs, ger, Germany, Infantry)

	// park the fighter over enemy land as if it had attacked there
	u, _, _, _ := gs.removeUnit(ftr.ID)
	u.Moved, u.MovementLeft = true, 2
	gs.addUnit(low, u)

	expectKind(t, Validate(gs, b, LandAirUnit(inf.ID, ger)), ErrIllegalMove)
	expectKind(t, Validate(gs, b, LandAirUnit(ftr.ID, land(b, "France"))), ErrIllegalMove)

	legal := LegalActions(gs, b)
	found := false
	for _, la := range legal {
		if la.Action.Type == ActionLandAirUnit && la.Action.UnitID == ftr.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("LegalActions should offer a landing for the stranded fighter")
	}

	mustApply(t, gs, b, LandAirUnit(ftr.ID, ger))
	got, loc, _ := gs.FindUnit(ftr.ID)
	if loc != ger || got.MovementLeft != 1 {
		t.Fatalf("fighter at %s with %d movement left", loc, got.MovementLeft)
	}
}

func TestUnlandedAirCrashes(t *testing.T) {
	gs, b := newTestGame(t)
	advanceTo(t, gs, b, PhaseNonCombatMovement)
	ger, low := land(b, "Germany"), land(b, "Low Countries")
	ftr := unitOf(t, gs, ger, Germany, Fighter)
	u, _, _, _ := gs.removeUnit(ftr.ID)
	gs.addUnit(low, u)

	res := mustApply(t, gs, b, Simple(ActionConfirmNonCombatMovement))
	if _, _, ok := gs.FindUnit(ftr.ID); ok {
		t.Fatalf("fighter over enemy territory should be lost")
	}
	if !hasEvent(res.Events, EventCasualtiesTaken) {
		t.Errorf("expected a casualties event")
	}
}
