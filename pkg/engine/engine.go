package engine

import (
	"fmt"
	"time"
)

// Engine owns one game's state and board. It is not safe for concurrent
// use; callers serialize access per game.
type Engine struct {
	state *GameState
	board Map
	dice  *Dice
}

// NewEngine starts a new game on b.
func NewEngine(seed uint64, b *Board) (*Engine, error) {
	gs, err := NewGame(seed, b)
	if err != nil {
		return nil, err
	}
	return FromState(gs, b), nil
}

// FromState wraps an existing state, for example one loaded from a save.
func FromState(gs *GameState, m Map) *Engine {
	return &Engine{state: gs, board: m, dice: NewDice(gs.RNGSeed, gs.RNGCounter)}
}

// Submit applies an action. On error the state is unchanged.
func (e *Engine) Submit(a Action) (Result, error) {
	work := e.state.Clone()
	dice := e.dice
	if dice.Seed() != work.RNGSeed || dice.Counter() != work.RNGCounter {
		dice = NewDice(work.RNGSeed, work.RNGCounter)
	}
	res, err := Apply(work, e.board, dice, a)
	if err != nil {
		return Result{}, err
	}
	e.state = work
	e.dice = dice
	return res, nil
}

// State returns the live state. Callers must not modify it.
func (e *Engine) State() *GameState { return e.state }

// Board returns the map the game is played on.
func (e *Engine) Board() Map { return e.board }

// CanUndo reports whether Undo would succeed.
func (e *Engine) CanUndo() bool { return CanUndo(e.state) }

// IsLegal reports whether a would be accepted now.
func (e *Engine) IsLegal(a Action) bool {
	if a.Type == ActionUndo {
		return e.CanUndo()
	}
	return Validate(e.state, e.board, a) == nil
}

// LegalActions lists the enumerable legal actions.
func (e *Engine) LegalActions() []LegalAction { return LegalActions(e.state, e.board) }

// Summary renders "Turn N - Power - Phase".
func (e *Engine) Summary() string { return Summary(e.state) }

// Save packages the current state as a save file.
func (e *Engine) Save(name string, ts time.Time) SaveFile {
	return NewSaveFile(e.state, name, ts)
}

// Summary renders "Turn N - Power - Phase" for a state.
func Summary(gs *GameState) string {
	return fmt.Sprintf("Turn %d - %s - %s", gs.Turn, gs.CurrentPower.Name(), gs.CurrentPhase.Name())
}
