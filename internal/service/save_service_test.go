package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/pkg/engine"
)

func TestSaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.startGame(t, "user-1", "germany")
	env.submit(t, g.ID, "user-1", engine.PurchaseUnit(engine.Infantry, 2))

	slot, err := env.saveSvc.SaveGame(ctx, g.ID, "user-1", "  before confirm ")
	if err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if slot.Name != "before confirm" || slot.ActionCount != 1 || slot.GameID != g.ID {
		t.Errorf("unexpected slot %+v", slot)
	}
	if slot.Summary != "Turn 1 - Germany - Purchase & Repair" {
		t.Errorf("unexpected summary %q", slot.Summary)
	}

	env.playHumanTurn(t, g.ID, "user-1")
	if gs := env.state(t, g.ID); gs.Turn != 2 {
		t.Fatalf("expected turn 2 before loading, got %d", gs.Turn)
	}

	gs, err := env.saveSvc.LoadSave(ctx, slot.ID, "user-1")
	if err != nil {
		t.Fatalf("LoadSave: %v", err)
	}
	if gs.Turn != 1 || gs.PhaseState.Purchase.Count(engine.Infantry) != 2 {
		t.Errorf("expected the saved purchase phase, got %s", engine.Summary(gs))
	}
	recs := env.actions.records[g.ID]
	if len(recs) != 1 || recs[0].Power != "germany" || recs[0].Seq != 1 {
		t.Errorf("expected history rebuilt from the save, got %+v", recs)
	}
	cached, err := env.sessions.State(ctx, g.ID)
	if err != nil || cached.Turn != 1 {
		t.Errorf("expected restored state to be cached, got %v", err)
	}
	if env.bc.count(EventGameRestored) != 1 {
		t.Error("expected game_restored broadcast")
	}

	// the restored purchase can still be undone
	if _, err := env.sessions.Undo(ctx, g.ID, "user-1"); err != nil {
		t.Errorf("undo after load: %v", err)
	}
}

func TestListSaves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.startGame(t, "user-1", "germany")
	env.saveSvc.SaveGame(ctx, g.ID, "user-1", "")
	env.saveSvc.SaveGame(ctx, g.ID, "user-1", "second")

	slots, err := env.saveSvc.ListSaves(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListSaves: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(slots))
	}
	if slots[0].Name != defaultSaveName {
		t.Errorf("expected default name %q, got %q", defaultSaveName, slots[0].Name)
	}
}

func TestSaveAndLoadRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	g := env.startGame(t, "user-1", "germany")
	slot, _ := env.saveSvc.SaveGame(ctx, g.ID, "user-1", "ok")
	env.saves.Put(ctx, &model.SaveSlot{ID: "broken", GameID: g.ID}, []byte(`{"version":1}`))

	if _, err := env.saveSvc.SaveGame(ctx, g.ID, "user-9", "x"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("expected ErrNotInGame, got %v", err)
	}
	tests := []struct {
		name   string
		saveID string
		user   string
		want   error
	}{
		{"missing", "nope", "user-1", ErrSaveNotFound},
		{"not creator", slot.ID, "user-2", ErrNotCreator},
		{"corrupt", "broken", "user-1", ErrInvalidSave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.saveSvc.LoadSave(ctx, tt.saveID, tt.user); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
