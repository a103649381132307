package bot

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/pkg/engine"
)

// ErrRunaway is returned when a drive exceeds its step limit.
var ErrRunaway = errors.New("bot exceeded step limit")

// Drive submits actions chosen by s for as long as the acting power is
// automated. It returns the number of actions submitted. state must return
// the latest state after each submit.
func Drive(
	s Strategy,
	state func() *engine.GameState,
	m engine.Map,
	automated func(gs *engine.GameState, p engine.Power) bool,
	submit func(engine.Action) error,
	maxSteps int,
) (int, error) {
	steps := 0
	for {
		gs := state()
		if gs.Winner != "" {
			return steps, nil
		}
		a, ok := s.NextAction(gs, m)
		if !ok {
			return steps, nil
		}
		p := engine.ActingPower(gs, a)
		if !automated(gs, p) {
			return steps, nil
		}
		if steps >= maxSteps {
			return steps, ErrRunaway
		}
		if err := submit(a); err != nil {
			return steps, fmt.Errorf("%s %s: %w", p, a, err)
		}
		steps++
	}
}

// Play runs s for every power until the game is won, the strategy stalls, or
// the turn limit passes. It returns the number of actions applied.
func Play(e *engine.Engine, s Strategy, maxTurns int) (int, error) {
	const stepsPerTurn = 5000
	n, err := Drive(s, e.State, e.Board(),
		func(gs *engine.GameState, _ engine.Power) bool { return gs.Turn <= maxTurns },
		func(a engine.Action) error {
			_, err := e.Submit(a)
			return err
		},
		stepsPerTurn*max(maxTurns, 1),
	)
	if err != nil {
		return n, err
	}
	gs := e.State()
	log.Debug().Str("strategy", s.Name()).Int("turn", gs.Turn).Int("actions", n).
		Str("winner", string(gs.Winner)).Msg("Play finished")
	return n, nil
}
