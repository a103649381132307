package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/pkg/engine"
)

type testEnv struct {
	games    *mockGameRepo
	actions  *mockActionRepo
	cache    *mockCache
	saves    *mockSaveStore
	bc       *recordingBroadcaster
	board    *engine.Board
	sessions *SessionService
	gameSvc  *GameService
	saveSvc  *SaveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	board, err := engine.DefaultBoard()
	if err != nil {
		t.Fatalf("load board: %v", err)
	}
	env := &testEnv{
		games:   newMockGameRepo(),
		actions: newMockActionRepo(),
		cache:   newMockCache(),
		saves:   newMockSaveStore(),
		bc:      &recordingBroadcaster{},
		board:   board,
	}
	env.sessions = NewSessionService(env.games, env.actions, env.cache, board, env.bc)
	env.gameSvc = NewGameService(env.games, env.sessions, board, env.bc, time.Hour)
	env.saveSvc = NewSaveService(env.games, env.saves, env.sessions, board)
	return env
}

// startGame creates and starts a game with a fixed seed. The creator holds
// the given powers; everything else is a bot.
func (env *testEnv) startGame(t *testing.T, creator string, powers ...string) *model.Game {
	t.Helper()
	ctx := context.Background()
	seed := int64(42)
	g, err := env.gameSvc.CreateGame(ctx, CreateGameInput{Name: "Test", CreatorID: creator, Seed: &seed, Powers: powers})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	g, err = env.gameSvc.StartGame(ctx, g.ID, creator)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return g
}

func (env *testEnv) state(t *testing.T, gameID string) *engine.GameState {
	t.Helper()
	raw, ok := env.actions.snapshots[gameID]
	if !ok {
		t.Fatalf("no snapshot for %s", gameID)
	}
	var gs engine.GameState
	if err := json.Unmarshal(raw.State, &gs); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return &gs
}

func (env *testEnv) submit(t *testing.T, gameID, userID string, a engine.Action) *ActionOutcome {
	t.Helper()
	out, err := env.sessions.SubmitAction(context.Background(), gameID, userID, a)
	if err != nil {
		t.Fatalf("submit %s: %v", a, err)
	}
	return out
}

// playHumanTurn confirms every phase of the current power's turn.
func (env *testEnv) playHumanTurn(t *testing.T, gameID, userID string) *ActionOutcome {
	t.Helper()
	var out *ActionOutcome
	for _, a := range []engine.ActionType{
		engine.ActionConfirmPurchases,
		engine.ActionConfirmCombatMovement,
		engine.ActionConfirmPhase,
		engine.ActionConfirmNonCombatMovement,
		engine.ActionConfirmMobilization,
		engine.ActionConfirmIncome,
	} {
		out = env.submit(t, gameID, userID, engine.Simple(a))
	}
	return out
}
