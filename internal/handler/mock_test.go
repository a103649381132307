package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/freeeve/global-command/api/internal/model"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by provider/providerID
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*model.User)}
}

func (m *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Upsert(_ context.Context, provider, providerID, displayName string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := provider + "/" + providerID
	u, ok := m.users[key]
	if !ok {
		u = &model.User{ID: fmt.Sprintf("user-%d", len(m.users)+1), Provider: provider, ProviderID: providerID, CreatedAt: time.Now()}
		m.users[key] = u
	}
	u.DisplayName = displayName
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

type memGames struct {
	mu    sync.Mutex
	games map[string]*model.Game
}

func newMemGames() *memGames {
	return &memGames{games: make(map[string]*model.Game)}
}

func cloneGame(g *model.Game) *model.Game {
	cp := *g
	cp.Seats = slices.Clone(g.Seats)
	return &cp
}

func (m *memGames) Create(_ context.Context, name, creatorID string, seed int64, turnTimeoutSecs int) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := &model.Game{
		ID:              fmt.Sprintf("game-%d", len(m.games)+1),
		Name:            name,
		CreatorID:       creatorID,
		Status:          model.StatusWaiting,
		Seed:            seed,
		TurnTimeoutSecs: turnTimeoutSecs,
		CreatedAt:       time.Now(),
	}
	m.games[g.ID] = g
	return cloneGame(g), nil
}

func (m *memGames) FindByID(_ context.Context, id string) (*model.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[id]; ok {
		return cloneGame(g), nil
	}
	return nil, nil
}

func (m *memGames) filter(keep func(*model.Game) bool) []model.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Game
	for _, g := range m.games {
		if keep(g) {
			out = append(out, *cloneGame(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memGames) ListOpen(context.Context) ([]model.Game, error) {
	return m.filter(func(g *model.Game) bool { return g.Status == model.StatusWaiting }), nil
}

func (m *memGames) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	return m.filter(func(g *model.Game) bool { return g.HasUser(userID) || g.CreatorID == userID }), nil
}

func (m *memGames) ListActive(context.Context) ([]model.Game, error) {
	return m.filter(func(g *model.Game) bool { return g.Status == model.StatusActive }), nil
}

func (m *memGames) ClaimSeats(_ context.Context, gameID, userID string, powers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	for _, p := range powers {
		g.Seats = append(g.Seats, model.Seat{GameID: gameID, Power: p, UserID: userID, JoinedAt: time.Now()})
	}
	return nil
}

func (m *memGames) Start(_ context.Context, gameID string, botPowers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	for _, p := range botPowers {
		g.Seats = append(g.Seats, model.Seat{GameID: gameID, Power: p, IsBot: true, JoinedAt: time.Now()})
	}
	now := time.Now()
	g.Status = model.StatusActive
	g.StartedAt = &now
	return nil
}

func (m *memGames) SetFinished(_ context.Context, gameID, winner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[gameID]; ok {
		g.Status = model.StatusFinished
		g.Winner = winner
	}
	return nil
}

func (m *memGames) Delete(_ context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, gameID)
	return nil
}

type memActions struct {
	mu        sync.Mutex
	records   map[string][]model.ActionRecord
	snapshots map[string]model.Snapshot
}

func newMemActions() *memActions {
	return &memActions{records: make(map[string][]model.ActionRecord), snapshots: make(map[string]model.Snapshot)}
}

func (m *memActions) Append(_ context.Context, rec *model.ActionRecord, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.GameID] = append(m.records[rec.GameID], *rec)
	m.snapshots[rec.GameID] = model.Snapshot{GameID: rec.GameID, ActionSeq: rec.Seq, State: state}
	return nil
}

func (m *memActions) DeleteLast(_ context.Context, gameID string, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.records[gameID]
	if len(recs) == 0 {
		return fmt.Errorf("no actions to delete")
	}
	m.records[gameID] = recs[:len(recs)-1]
	m.snapshots[gameID] = model.Snapshot{GameID: gameID, ActionSeq: len(recs) - 1, State: state}
	return nil
}

func (m *memActions) Replace(_ context.Context, gameID string, recs []model.ActionRecord, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[gameID] = slices.Clone(recs)
	m.snapshots[gameID] = model.Snapshot{GameID: gameID, ActionSeq: len(recs), State: state}
	return nil
}

func (m *memActions) List(_ context.Context, gameID string) ([]model.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records[gameID]), nil
}

func (m *memActions) LatestSnapshot(_ context.Context, gameID string) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snapshots[gameID]; ok {
		return &snap, nil
	}
	return nil, nil
}

// memCache keeps no state so every read falls back to the snapshot.
type memCache struct{}

func (memCache) SetGameState(context.Context, string, json.RawMessage) error { return nil }
func (memCache) GetGameState(context.Context, string) (json.RawMessage, error) { return nil, nil }
func (memCache) SetTimer(context.Context, string, time.Time) error { return nil }
func (memCache) TimerDeadline(context.Context, string) (time.Time, error) { return time.Time{}, nil }
func (memCache) ClearTimer(context.Context, string) error { return nil }
func (memCache) DeleteGameData(context.Context, string) error { return nil }

type memSaves struct {
	mu    sync.Mutex
	slots map[string]model.SaveSlot
	data  map[string][]byte
}

func newMemSaves() *memSaves {
	return &memSaves{slots: make(map[string]model.SaveSlot), data: make(map[string][]byte)}
}

func (m *memSaves) Put(_ context.Context, slot *model.SaveSlot, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if slot.ID == "" {
		slot.ID = fmt.Sprintf("save-%d", len(m.slots)+1)
	}
	m.slots[slot.ID] = *slot
	m.data[slot.ID] = slices.Clone(data)
	return nil
}

func (m *memSaves) Get(_ context.Context, id string) (*model.SaveSlot, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[id]
	if !ok {
		return nil, nil, nil
	}
	return &slot, m.data[id], nil
}

func (m *memSaves) ListByGame(_ context.Context, gameID string) ([]model.SaveSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SaveSlot
	for _, s := range m.slots {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memSaves) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, id)
	delete(m.data, id)
	return nil
}
