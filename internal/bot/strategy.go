// Package bot plays powers that have no human at the table: bot seats and
// humans whose turn timer ran out.
package bot

import (
	"github.com/freeeve/global-command/api/pkg/engine"
)

// Strategy picks the next action for whichever power must act in gs.
// It reports false when there is nothing to do, for example after the game
// has been won.
type Strategy interface {
	Name() string
	NextAction(gs *engine.GameState, m engine.Map) (engine.Action, bool)
}

// StrategyFor returns the strategy registered under name, defaulting to
// Passive.
func StrategyFor(name string) Strategy {
	switch name {
	default:
		return Passive{}
	}
}

// firstOf returns the first legal action whose type is in prefer, trying
// the types in order.
func firstOf(las []engine.LegalAction, prefer ...engine.ActionType) (engine.Action, bool) {
	for _, t := range prefer {
		for _, la := range las {
			if la.Action.Type == t {
				return la.Action, true
			}
		}
	}
	return engine.Action{}, false
}

// firstForward returns the first legal action that is not an undo.
func firstForward(las []engine.LegalAction) (engine.Action, bool) {
	for _, la := range las {
		if la.Action.Type != engine.ActionUndo {
			return la.Action, true
		}
	}
	return engine.Action{}, false
}
