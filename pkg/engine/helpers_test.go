package engine

import (
	"errors"
	"os"
	"testing"
)

func loadTestBoard(t *testing.T) *Board {
	t.Helper()
	data, err := os.ReadFile("testdata/test_board.yaml")
	if err != nil {
		t.Fatalf("read test board: %v", err)
	}
	b, err := LoadBoard(data)
	if err != nil {
		t.Fatalf("load test board: %v", err)
	}
	return b
}

func newTestGame(t *testing.T) (*GameState, *Board) {
	t.Helper()
	b := loadTestBoard(t)
	gs, err := NewGame(42, b)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return gs, b
}

func land(b *Board, name string) RegionID { return Land(b.MustTerritory(name)) }
func sea(b *Board, name string) RegionID  { return Sea(b.MustSeaZone(name)) }

// unitOf returns the first unit of type ut owned by p in r.
func unitOf(t *testing.T, gs *GameState, r RegionID, p Power, ut UnitType) Unit {
	t.Helper()
	for _, u := range gs.Units(r) {
		if u.Owner == p && u.Type == ut {
			return u
		}
	}
	t.Fatalf("no %s %s in %s", p, ut, r)
	return Unit{}
}

func mustApply(t *testing.T, gs *GameState, m Map, a Action) Result {
	t.Helper()
	res, err := Apply(gs, m, nil, a)
	if err != nil {
		t.Fatalf("apply %s: %v", a, err)
	}
	return res
}

func expectKind(t *testing.T, err error, sentinel error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", sentinel)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
}

// advanceTo confirms phases until the current phase is p.
func advanceTo(t *testing.T, gs *GameState, m Map, p Phase) {
	t.Helper()
	for i := 0; gs.CurrentPhase != p; i++ {
		if i > 60 {
			t.Fatalf("never reached %s", p)
		}
		mustApply(t, gs, m, Simple(ActionConfirmPhase))
	}
}

func hasEvent(events []Event, et EventType) bool {
	for _, e := range events {
		if e.Type == et {
			return true
		}
	}
	return false
}

// combatStep returns the default next action in Conduct Combat: fight the
// first pending battle, always press on, take default casualties.
func combatStep(gs *GameState) (Action, bool) {
	cs := gs.PhaseState.Combat
	if cs == nil {
		return Action{}, false
	}
	c := cs.Active
	if c == nil {
		if len(cs.PendingBattles) == 0 {
			return Action{}, false
		}
		return SelectBattle(cs.PendingBattles[0]), true
	}
	switch {
	case c.SubPhase.IsCasualtySelection():
		return SelectCasualties(DefaultCasualties(gs)...), true
	case c.SubPhase == SubPhaseDefenderSubmarineStrike, c.SubPhase == SubPhaseDefenderRolls:
		return Simple(ActionRollDefense), true
	case c.SubPhase == SubPhaseAttackerDecision:
		return Simple(ActionContinueCombat), true
	}
	return Simple(ActionRollAttack), true
}

// fightAll resolves every pending battle with default choices.
func fightAll(t *testing.T, gs *GameState, m Map) []Event {
	t.Helper()
	var events []Event
	for i := 0; ; i++ {
		if i > 1000 {
			t.Fatalf("combat did not finish")
		}
		a, ok := combatStep(gs)
		if !ok {
			return events
		}
		events = append(events, mustApply(t, gs, m, a).Events...)
	}
}
