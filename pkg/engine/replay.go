package engine

import (
	"encoding/json"
	"reflect"
)

// ReplayStep describes one re-applied log entry.
type ReplayStep struct {
	Index      int
	Power      Power
	Action     Action
	Events     []Event
	DiceBefore uint64
	DiceAfter  uint64
}

// Replay starts a fresh game on b with seed and re-applies actions in order.
// step, when non-nil, is called after each action.
func Replay(seed uint64, b *Board, actions []Action, step func(ReplayStep)) (*Engine, error) {
	e, err := NewEngine(seed, b)
	if err != nil {
		return nil, err
	}
	for i, a := range actions {
		before := e.State()
		rs := ReplayStep{Index: i, Power: ActingPower(before, a), Action: a, DiceBefore: before.RNGCounter}
		res, err := e.Submit(a)
		if err != nil {
			return e, internalError("replay action %d (%s): %v", i+1, a.Type, err)
		}
		if step != nil {
			rs.Events = res.Events
			rs.DiceAfter = e.State().RNGCounter
			step(rs)
		}
	}
	return e, nil
}

// ReplaySave replays the action log of a save and reports whether the result
// matches the saved state exactly.
func ReplaySave(sf SaveFile, b *Board, step func(ReplayStep)) (*Engine, bool, error) {
	actions := make([]Action, len(sf.State.ActionLog))
	for i, entry := range sf.State.ActionLog {
		actions[i] = entry.Action
	}
	e, err := Replay(sf.State.RNGSeed, b, actions, step)
	if err != nil {
		return e, false, err
	}
	same, err := sameState(sf.State, e.State())
	return e, same, err
}

// sameState compares two states field by field. A list emptied by undo and
// a list that was never filled are equal.
func sameState(a, b *GameState) (bool, error) {
	ca, err := canonical(a)
	if err != nil {
		return false, err
	}
	cb, err := canonical(b)
	if err != nil {
		return false, err
	}
	return reflect.DeepEqual(ca, cb), nil
}

func canonical(gs *GameState) (any, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, serializationError(err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, deserializationError("canonical state: %v", err)
	}
	return dropEmpty(v), nil
}

func dropEmpty(v any) any {
	switch x := v.(type) {
	case []any:
		if len(x) == 0 {
			return nil
		}
		for i := range x {
			x[i] = dropEmpty(x[i])
		}
	case map[string]any:
		for k, e := range x {
			if e = dropEmpty(e); e == nil {
				delete(x, k)
			} else {
				x[k] = e
			}
		}
	}
	return v
}
