package engine

import (
	"encoding/json"
	"time"
)

// CurrentSaveVersion is the save format written by this package.
const CurrentSaveVersion = 1

// SaveMetadata describes a save without the full state.
type SaveMetadata struct {
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
	Summary     string    `json:"summary"`
	ActionCount int       `json:"action_count"`
}

// SaveFile is the on-disk form of a game.
type SaveFile struct {
	Version  int          `json:"version"`
	Metadata SaveMetadata `json:"metadata"`
	State    *GameState   `json:"state"`
}

// NewSaveFile snapshots gs under the given name.
func NewSaveFile(gs *GameState, name string, ts time.Time) SaveFile {
	return SaveFile{
		Version: CurrentSaveVersion,
		Metadata: SaveMetadata{
			Name:        name,
			Timestamp:   ts.UTC(),
			Summary:     Summary(gs),
			ActionCount: len(gs.ActionLog),
		},
		State: gs.Clone(),
	}
}

// Encode serializes the save as JSON.
func (s SaveFile) Encode() ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, serializationError(err)
	}
	return b, nil
}

// DecodeSave parses and validates a save.
func DecodeSave(data []byte) (SaveFile, error) {
	var s SaveFile
	if err := json.Unmarshal(data, &s); err != nil {
		return SaveFile{}, deserializationError("invalid save: %v", err)
	}
	if err := checkVersion(s.Version); err != nil {
		return SaveFile{}, err
	}
	if s.State == nil {
		return SaveFile{}, deserializationError("save has no game state")
	}
	if s.State.Turn < 1 {
		return SaveFile{}, deserializationError("invalid turn %d", s.State.Turn)
	}
	if len(s.State.Territories) == 0 {
		return SaveFile{}, deserializationError("save has no territories")
	}
	if !s.State.CurrentPower.Valid() {
		return SaveFile{}, deserializationError("unknown current power %q", s.State.CurrentPower)
	}
	if len(s.State.Powers) != len(TurnOrder) {
		return SaveFile{}, deserializationError("expected %d powers, got %d", len(TurnOrder), len(s.State.Powers))
	}
	if s.State.PhaseState.Phase != s.State.CurrentPhase {
		return SaveFile{}, deserializationError("phase state %q does not match phase %q", s.State.PhaseState.Phase, s.State.CurrentPhase)
	}
	return s, nil
}

// PeekMetadata reads only the version and metadata of a save.
func PeekMetadata(data []byte) (SaveMetadata, error) {
	var head struct {
		Version  int          `json:"version"`
		Metadata SaveMetadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return SaveMetadata{}, deserializationError("invalid save: %v", err)
	}
	if err := checkVersion(head.Version); err != nil {
		return SaveMetadata{}, err
	}
	return head.Metadata, nil
}

func checkVersion(v int) error {
	if v < 1 || v > CurrentSaveVersion {
		return deserializationError("unsupported save version %d", v)
	}
	return nil
}
