package engine

import (
	"slices"
	"testing"
)

// raidSetup flies fresh German units into a territory and opens Conduct
// Combat with the battles that follow from it.
func raidSetup(t *testing.T, name string, units ...UnitType) (*GameState, *Board, []Unit) {
	t.Helper()
	gs, b := newTestGame(t)
	loc := land(b, name)
	var out []Unit
	for _, ut := range units {
		u := gs.spawnUnit(loc, ut, Germany)
		gs.unitPtr(u.ID).Moved = true
		out = append(out, *gs.unitPtr(u.ID))
	}
	gs.CurrentPhase = PhaseConductCombat
	gs.PhaseState = NewPhaseState(PhaseConductCombat)
	gs.PhaseState.Combat.PendingBattles = pendingBattles(gs, Germany)
	return gs, b, out
}

func facilityOf(t *testing.T, gs *GameState, b *Board, name string, ft FacilityType) Facility {
	t.Helper()
	for _, f := range gs.Territory(b.MustTerritory(name)).Facilities {
		if f.Type == ft {
			return f
		}
	}
	t.Fatalf("no %s in %s", ft, name)
	return Facility{}
}

func eventsOf(events []Event, et EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

func TestBombingRaidDamagesComplex(t *testing.T) {
	gs, b, units := raidSetup(t, "France", StrategicBomber)
	fra := b.MustTerritory("France")
	bomber := units[0]
	if !slices.Contains(gs.PhaseState.Combat.PendingBattles, Land(fra)) {
		t.Fatal("expected the bomber over France's guns to open a battle")
	}
	raid := BombingRaid(fra, "")
	if !slices.ContainsFunc(LegalActions(gs, b), func(la LegalAction) bool {
		return la.Action.Type == ActionBombingRaid && la.Action.Territory == fra
	}) {
		t.Error("expected a raid on France among the legal actions")
	}

	rigDice(t, gs, func(r int) bool { return r > 1 })
	next := NewDice(gs.RNGSeed, gs.RNGCounter+1).Roll()
	res := mustApply(t, gs, b, raid)

	want := next + 2
	f := facilityOf(t, gs, b, "France", MajorIndustrialComplex)
	if f.Damage != want {
		t.Fatalf("expected %d damage, got %d", want, f.Damage)
	}
	if got := f.ProductionCapacity(6); got != max(6-want, 0) {
		t.Errorf("expected capacity %d, got %d", max(6-want, 0), got)
	}
	dmg := eventsOf(res.Events, EventFacilityDamaged)
	if len(dmg) != 1 || dmg[0].Amount != want || dmg[0].Target != France {
		t.Errorf("expected one facility_damaged event of %d against france, got %+v", want, dmg)
	}
	if res.Applied.Inverse.Kind != InverseIrreversible {
		t.Errorf("expected an irreversible raid, got %s", res.Applied.Inverse.Kind)
	}
	cs := gs.PhaseState.Combat
	if slices.Contains(cs.PendingBattles, Land(fra)) {
		t.Error("a raid-only territory should leave the battle list")
	}
	if !slices.Contains(cs.Raiders, bomber.ID) {
		t.Errorf("expected bomber %d among raiders %v", bomber.ID, cs.Raiders)
	}
	if _, loc, ok := gs.FindUnit(bomber.ID); !ok || loc != Land(fra) {
		t.Errorf("expected bomber to stay over France, got %s ok=%v", loc, ok)
	}
	expectKind(t, Validate(gs, b, raid), ErrInvalidAction)
	if CanUndo(gs) {
		t.Error("a raid cannot be undone")
	}
}

func TestBombingRaidAntiAircraft(t *testing.T) {
	gs, b, units := raidSetup(t, "France", StrategicBomber)
	rigDice(t, gs, func(r int) bool { return r == 1 })
	res := mustApply(t, gs, b, BombingRaid(b.MustTerritory("France"), MajorIndustrialComplex))

	if _, _, ok := gs.FindUnit(units[0].ID); ok {
		t.Error("expected the bomber to be shot down")
	}
	if f := facilityOf(t, gs, b, "France", MajorIndustrialComplex); f.Damage != 0 {
		t.Errorf("expected no damage, got %d", f.Damage)
	}
	lost := eventsOf(res.Events, EventCasualtiesTaken)
	if len(lost) != 1 || lost[0].Power != Germany || !slices.Equal(lost[0].Units, []UnitID{units[0].ID}) {
		t.Errorf("expected germany to lose the bomber, got %+v", lost)
	}
	if rolls := eventsOf(res.Events, EventDiceRolled); len(rolls) != 1 {
		t.Errorf("expected only the anti-aircraft roll, got %d dice events", len(rolls))
	}
}

func TestBombingRaidEscortsAndInterceptors(t *testing.T) {
	gs, b, units := raidSetup(t, "Britain", StrategicBomber, Fighter)
	bomber, escort := units[0], units[1]
	brit := land(b, "Britain")
	interceptor := unitOf(t, gs, brit, UnitedKingdom, Fighter)

	d := NewDice(gs.RNGSeed, gs.RNGCounter)
	escortHit := d.Roll() <= 3
	interceptorHit := d.Roll() <= 4
	bomberHit := d.Roll() == 1
	want := 0
	if !bomberHit {
		want = min(d.Roll()+2, 16)
	}

	mustApply(t, gs, b, BombingRaid(brit.Territory(), ""))
	alive := func(id UnitID) bool { _, _, ok := gs.FindUnit(id); return ok }
	if alive(interceptor.ID) == escortHit {
		t.Errorf("interceptor alive = %v with escort hit %v", alive(interceptor.ID), escortHit)
	}
	if alive(escort.ID) == interceptorHit {
		t.Errorf("escort alive = %v with interceptor hit %v", alive(escort.ID), interceptorHit)
	}
	if alive(bomber.ID) == bomberHit {
		t.Errorf("bomber alive = %v with anti-aircraft hit %v", alive(bomber.ID), bomberHit)
	}
	if f := facilityOf(t, gs, b, "Britain", MajorIndustrialComplex); f.Damage != want {
		t.Errorf("expected %d damage, got %d", want, f.Damage)
	}
	if f := facilityOf(t, gs, b, "Britain", NavalBase); f.Damage != 0 {
		t.Errorf("naval base should be untouched, got %d damage", f.Damage)
	}
}

func TestTacticalBomberHitsBases(t *testing.T) {
	gs, b, _ := raidSetup(t, "Britain", TacticalBomber)
	brit := b.MustTerritory("Britain")
	expectKind(t, Validate(gs, b, BombingRaid(brit, "")), ErrInvalidAction)

	// the British fighter intercepts, then the base fires
	d := NewDice(gs.RNGSeed, gs.RNGCounter)
	want := 0
	if d.Roll() > 4 && d.Roll() != 1 {
		want = d.Roll()
	}
	mustApply(t, gs, b, BombingRaid(brit, NavalBase))
	f := facilityOf(t, gs, b, "Britain", NavalBase)
	if f.Damage != want {
		t.Errorf("expected %d damage, got %d", want, f.Damage)
	}
	if f.Operational != (f.Damage < f.MaxDamage) {
		t.Errorf("operational flag out of step: %+v", f)
	}
}

func TestBombingRaidValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		units  []UnitType
		ft     FacilityType
		prep   func(gs *GameState, b *Board)
		want   error
	}{
		{name: "not at war", target: "Russia", units: []UnitType{StrategicBomber}, want: ErrInvalidAction},
		{name: "no bomber", target: "France", units: []UnitType{Fighter}, want: ErrInvalidAction},
		{name: "no facility", target: "Low Countries", units: []UnitType{StrategicBomber}, want: ErrInvalidAction},
		{name: "missing facility type", target: "France", units: []UnitType{StrategicBomber}, ft: AirBase, want: ErrInvalidAction},
		{name: "bomber did not move", target: "France", units: []UnitType{StrategicBomber}, want: ErrInvalidAction,
			prep: func(gs *GameState, b *Board) {
				for i := range gs.Territory(b.MustTerritory("France")).Units {
					gs.Territory(b.MustTerritory("France")).Units[i].Moved = false
				}
			}},
		{name: "battle already fought", target: "France", units: []UnitType{StrategicBomber}, want: ErrInvalidAction,
			prep: func(gs *GameState, b *Board) {
				cs := gs.PhaseState.Combat
				cs.ResolvedBattles = append(cs.ResolvedBattles, land(b, "France"))
			}},
		{name: "wrong phase", target: "France", units: []UnitType{StrategicBomber}, want: ErrWrongPhase,
			prep: func(gs *GameState, b *Board) { gs.CurrentPhase = PhaseNonCombatMovement }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, b, _ := raidSetup(t, tt.target, tt.units...)
			if tt.prep != nil {
				tt.prep(gs, b)
			}
			expectKind(t, Validate(gs, b, BombingRaid(b.MustTerritory(tt.target), tt.ft)), tt.want)
		})
	}
}

func TestRaidersSitOutBattle(t *testing.T) {
	gs, b, units := raidSetup(t, "France", StrategicBomber, Infantry)
	fra := land(b, "France")
	bomber, inf := units[0], units[1]
	rigDice(t, gs, func(r int) bool { return r > 1 })
	mustApply(t, gs, b, BombingRaid(fra.Territory(), ""))

	if !slices.Contains(gs.PhaseState.Combat.PendingBattles, fra) {
		t.Fatal("the infantry should still have a battle to fight")
	}
	mustApply(t, gs, b, SelectBattle(fra))
	c := gs.PhaseState.Combat.Active
	if c == nil {
		t.Fatal("expected an active battle")
	}
	if slices.Contains(c.AttackerUnits, bomber.ID) || !slices.Contains(c.AttackerUnits, inf.ID) {
		t.Errorf("expected attackers %v to hold the infantry only", c.AttackerUnits)
	}
	if c.SubPhase == SubPhaseAAFire {
		t.Error("no anti-aircraft step without attacking aircraft")
	}
}

func TestBombingRaidDuringBattleRejected(t *testing.T) {
	gs, b, _ := raidSetup(t, "France", StrategicBomber, Infantry)
	fra := land(b, "France")
	mustApply(t, gs, b, SelectBattle(fra))
	if gs.PhaseState.Combat.Active == nil {
		t.Fatal("expected an active battle")
	}
	expectKind(t, Validate(gs, b, BombingRaid(fra.Territory(), "")), ErrInvalidAction)
}
