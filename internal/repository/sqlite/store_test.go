package sqlite

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/global-command/api/internal/model"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "saves", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		store.Close()
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	slot := &model.SaveSlot{
		GameID:      "game-1",
		Name:        "before the invasion",
		Summary:     "Turn 2 - Germany - Combat Movement",
		ActionCount: 17,
		CreatedBy:   "user-1",
		CreatedAt:   created,
	}
	data := []byte(`{"version":1}`)

	if err := store.Put(ctx, slot, data); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := uuid.Parse(slot.ID); err != nil {
		t.Fatalf("expected generated uuid, got %q", slot.ID)
	}

	got, gotData, err := store.Get(ctx, slot.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GameID != slot.GameID || got.Name != slot.Name || got.Summary != slot.Summary ||
		got.ActionCount != 17 || got.CreatedBy != "user-1" {
		t.Errorf("slot = %+v, want %+v", got, slot)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
	if !bytes.Equal(gotData, data) {
		t.Errorf("data = %s, want %s", gotData, data)
	}
}

func TestPutValidates(t *testing.T) {
	store := openTempStore(t)
	tests := []struct {
		name string
		slot model.SaveSlot
		data []byte
	}{
		{"no game", model.SaveSlot{Name: "x"}, []byte("{}")},
		{"no data", model.SaveSlot{GameID: "g"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Put(context.Background(), &tt.slot, tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestListByGameNewestFirst(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		slot := &model.SaveSlot{GameID: "g1", Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Put(ctx, slot, []byte("{}")); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}
	store.Put(ctx, &model.SaveSlot{GameID: "g2", Name: "other"}, []byte("{}"))

	slots, err := store.ListByGame(ctx, "g1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 saves, got %d", len(slots))
	}
	if slots[0].Name != "third" || slots[2].Name != "first" {
		t.Errorf("unexpected order: %s, %s, %s", slots[0].Name, slots[1].Name, slots[2].Name)
	}
}

func TestDeleteAndMissing(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	slot := &model.SaveSlot{GameID: "g1", Name: "doomed"}
	store.Put(ctx, slot, []byte("{}"))

	if err := store.Delete(ctx, slot.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, data, err := store.Get(ctx, slot.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil || data != nil {
		t.Errorf("expected nil for a deleted save, got %+v", got)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("deleting a missing save should succeed, got %v", err)
	}
}
