package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an engine failure.
type ErrorKind string

const (
	KindNotYourTurn       ErrorKind = "not_your_turn"
	KindWrongPhase        ErrorKind = "wrong_phase"
	KindInsufficientIPCs  ErrorKind = "insufficient_ipcs"
	KindIllegalMove       ErrorKind = "illegal_move"
	KindInvalidAction     ErrorKind = "invalid_action"
	KindUnitNotFound      ErrorKind = "unit_not_found"
	KindTerritoryNotFound ErrorKind = "territory_not_found"
	KindCannotUndo        ErrorKind = "cannot_undo"
	KindSerialization     ErrorKind = "serialization"
	KindDeserialization   ErrorKind = "deserialization"
	KindSetup             ErrorKind = "setup"
	KindInternal          ErrorKind = "internal"
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrNotYourTurn       = errors.New("not your turn")
	ErrWrongPhase        = errors.New("wrong phase")
	ErrInsufficientIPCs  = errors.New("insufficient IPCs")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidAction     = errors.New("invalid action")
	ErrUnitNotFound      = errors.New("unit not found")
	ErrTerritoryNotFound = errors.New("territory not found")
	ErrCannotUndo        = errors.New("cannot undo")
	ErrSerialization     = errors.New("serialization error")
	ErrDeserialization   = errors.New("deserialization error")
	ErrSetup             = errors.New("game setup error")
	ErrInternal          = errors.New("internal engine error")
)

var sentinels = map[ErrorKind]error{
	KindNotYourTurn:       ErrNotYourTurn,
	KindWrongPhase:        ErrWrongPhase,
	KindInsufficientIPCs:  ErrInsufficientIPCs,
	KindIllegalMove:       ErrIllegalMove,
	KindInvalidAction:     ErrInvalidAction,
	KindUnitNotFound:      ErrUnitNotFound,
	KindTerritoryNotFound: ErrTerritoryNotFound,
	KindCannotUndo:        ErrCannotUndo,
	KindSerialization:     ErrSerialization,
	KindDeserialization:   ErrDeserialization,
	KindSetup:             ErrSetup,
	KindInternal:          ErrInternal,
}

// Error is the single error type returned by the engine. Only the fields
// relevant to Kind are populated.
type Error struct {
	Kind        ErrorKind   `json:"kind"`
	Reason      string      `json:"reason,omitempty"`
	Current     Power       `json:"current,omitempty"`
	Expected    Phase       `json:"expected,omitempty"`
	Actual      Phase       `json:"actual,omitempty"`
	Needed      int         `json:"needed,omitempty"`
	Available   int         `json:"available,omitempty"`
	UnitID      UnitID      `json:"unit_id,omitempty"`
	TerritoryID TerritoryID `json:"territory_id,omitempty"`
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotYourTurn:
		return fmt.Sprintf("not your turn: current power is %s", e.Current)
	case KindWrongPhase:
		return fmt.Sprintf("wrong phase: expected %s, got %s", e.Expected, e.Actual)
	case KindInsufficientIPCs:
		return fmt.Sprintf("insufficient IPCs: need %d, have %d", e.Needed, e.Available)
	case KindUnitNotFound:
		return fmt.Sprintf("unit not found: %d", e.UnitID)
	case KindTerritoryNotFound:
		return fmt.Sprintf("territory not found: %d", e.TerritoryID)
	}
	return sentinels[e.Kind].Error() + ": " + e.Reason
}

// Unwrap exposes the kind's sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return sentinels[e.Kind]
}

// KindOf returns the engine error kind of err, or "" if err is not an engine error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func notYourTurn(current Power) *Error {
	return &Error{Kind: KindNotYourTurn, Current: current}
}

func wrongPhase(expected, actual Phase) *Error {
	return &Error{Kind: KindWrongPhase, Expected: expected, Actual: actual}
}

func insufficientIPCs(needed, available int) *Error {
	return &Error{Kind: KindInsufficientIPCs, Needed: needed, Available: available}
}

func illegalMove(format string, args ...any) *Error {
	return &Error{Kind: KindIllegalMove, Reason: fmt.Sprintf(format, args...)}
}

func invalidAction(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidAction, Reason: fmt.Sprintf(format, args...)}
}

func unitNotFound(id UnitID) *Error {
	return &Error{Kind: KindUnitNotFound, UnitID: id}
}

func territoryNotFound(id TerritoryID) *Error {
	return &Error{Kind: KindTerritoryNotFound, TerritoryID: id}
}

func cannotUndo(reason string) *Error {
	return &Error{Kind: KindCannotUndo, Reason: reason}
}

func serializationError(err error) *Error {
	return &Error{Kind: KindSerialization, Reason: err.Error()}
}

func deserializationError(format string, args ...any) *Error {
	return &Error{Kind: KindDeserialization, Reason: fmt.Sprintf(format, args...)}
}

func setupError(format string, args ...any) *Error {
	return &Error{Kind: KindSetup, Reason: fmt.Sprintf(format, args...)}
}

func internalError(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Reason: fmt.Sprintf(format, args...)}
}
