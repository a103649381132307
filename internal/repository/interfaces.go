package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/freeeve/global-command/api/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName string) (*model.User, error)
}

// GameRepository defines game and seat data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID string, seed int64, turnTimeoutSecs int) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	ClaimSeats(ctx context.Context, gameID, userID string, powers []string) error
	Start(ctx context.Context, gameID string, botPowers []string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
}

// ActionRepository stores the applied-action history and the latest state
// snapshot of each game.
type ActionRepository interface {
	Append(ctx context.Context, rec *model.ActionRecord, state json.RawMessage) error
	DeleteLast(ctx context.Context, gameID string, state json.RawMessage) error
	Replace(ctx context.Context, gameID string, recs []model.ActionRecord, state json.RawMessage) error
	List(ctx context.Context, gameID string) ([]model.ActionRecord, error)
	LatestSnapshot(ctx context.Context, gameID string) (*model.Snapshot, error)
}

// StateCache defines live game state operations (Redis).
type StateCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	TimerDeadline(ctx context.Context, gameID string) (time.Time, error)
	ClearTimer(ctx context.Context, gameID string) error
	DeleteGameData(ctx context.Context, gameID string) error
}

// SaveStore keeps named save files.
type SaveStore interface {
	Put(ctx context.Context, slot *model.SaveSlot, data []byte) error
	Get(ctx context.Context, id string) (*model.SaveSlot, []byte, error) // nils when missing
	ListByGame(ctx context.Context, gameID string) ([]model.SaveSlot, error)
	Delete(ctx context.Context, id string) error
}
