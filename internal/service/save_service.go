package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freeeve/global-command/api/internal/logger"
	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/internal/repository"
	"github.com/freeeve/global-command/api/pkg/engine"
)

var (
	ErrSaveNotFound = errors.New("save not found")
	ErrInvalidSave  = errors.New("save file is invalid")
)

const defaultSaveName = "Quick save"

// SaveService writes and restores named save files.
type SaveService struct {
	gameRepo repository.GameRepository
	store    repository.SaveStore
	sessions *SessionService
	board    *engine.Board
	now      func() time.Time
}

// NewSaveService creates a SaveService.
func NewSaveService(gameRepo repository.GameRepository, store repository.SaveStore, sessions *SessionService, board *engine.Board) *SaveService {
	return &SaveService{gameRepo: gameRepo, store: store, sessions: sessions, board: board, now: time.Now}
}

// SaveGame stores the current state of a game under name.
func (s *SaveService) SaveGame(ctx context.Context, gameID, userID, name string) (*model.SaveSlot, error) {
	game, err := s.sessions.startedGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.HasUser(userID) && game.CreatorID != userID {
		return nil, ErrNotInGame
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultSaveName
	}

	mu := s.sessions.gameLock(gameID)
	mu.Lock()
	gs, err := s.sessions.loadState(ctx, gameID)
	mu.Unlock()
	if err != nil {
		return nil, err
	}

	sf := engine.NewSaveFile(gs, name, s.now())
	data, err := sf.Encode()
	if err != nil {
		return nil, err
	}
	slot := &model.SaveSlot{
		GameID:      gameID,
		Name:        name,
		Summary:     sf.Metadata.Summary,
		ActionCount: sf.Metadata.ActionCount,
		CreatedBy:   userID,
		CreatedAt:   sf.Metadata.Timestamp,
	}
	if err := s.store.Put(ctx, slot, data); err != nil {
		return nil, err
	}
	l := logger.ForGame(ctx, gameID)
	l.Info().Str("saveId", slot.ID).Str("summary", slot.Summary).Msg("Game saved")
	return slot, nil
}

// ListSaves returns a game's saves, newest first.
func (s *SaveService) ListSaves(ctx context.Context, gameID string) ([]model.SaveSlot, error) {
	if _, err := s.sessions.startedGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.ListByGame(ctx, gameID)
}

// LoadSave validates a save and makes it the live state of its game. The
// action history is rebuilt by replaying the save's log. Only the creator of
// an active game can load a save.
func (s *SaveService) LoadSave(ctx context.Context, saveID, userID string) (*engine.GameState, error) {
	slot, data, err := s.store.Get(ctx, saveID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSaveNotFound
	}
	sf, err := engine.DecodeSave(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	game, err := s.sessions.activeGame(ctx, slot.GameID)
	if err != nil {
		return nil, err
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}

	l := logger.ForGame(ctx, game.ID)
	var recs []model.ActionRecord
	_, matches, err := engine.ReplaySave(sf, s.board, func(rs engine.ReplayStep) {
		rec, recErr := newActionRecord(game.ID, rs.Index+1, rs.Power, "", rs.Action, rs.Events)
		if recErr != nil {
			return
		}
		rec.DiceBefore = int64(rs.DiceBefore)
		rec.DiceAfter = int64(rs.DiceAfter)
		recs = append(recs, *rec)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if !matches {
		l.Warn().Str("saveId", saveID).Msg("Save state differs from its replayed log, keeping saved state")
	}
	recs = fillRecordGaps(game.ID, sf.State, recs)

	if err := s.sessions.restore(ctx, game, sf.State, recs); err != nil {
		return nil, err
	}
	l.Info().Str("saveId", saveID).Int("actions", len(recs)).Msg("Save loaded")
	return sf.State, nil
}

// fillRecordGaps adds bare records for log entries the replay could not
// describe, so the history always matches the log length.
func fillRecordGaps(gameID string, gs *engine.GameState, recs []model.ActionRecord) []model.ActionRecord {
	for i := len(recs); i < len(gs.ActionLog); i++ {
		a, _ := json.Marshal(gs.ActionLog[i].Action)
		recs = append(recs, model.ActionRecord{GameID: gameID, Seq: i + 1, Action: a})
	}
	return recs
}
