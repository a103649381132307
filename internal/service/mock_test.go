package service

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

type mockGameRepo struct {
	games map[string]*model.Game
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{games: make(map[string]*model.Game)}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID string, seed int64, turnTimeoutSecs int) (*model.Game, error) {
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
	return m.copyOf(g), nil
}

func (m *mockGameRepo) copyOf(g *model.Game) *model.Game {
	cp := *g
	cp.Seats = slices.Clone(g.Seats)
	return &cp
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	return m.copyOf(g), nil
}

func (m *mockGameRepo) list(keep func(*model.Game) bool) []model.Game {
	var out []model.Game
	for _, g := range m.games {
		if keep(g) {
			out = append(out, *m.copyOf(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	return m.list(func(g *model.Game) bool { return g.Status == model.StatusWaiting }), nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	return m.list(func(g *model.Game) bool { return g.HasUser(userID) || g.CreatorID == userID }), nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	return m.list(func(g *model.Game) bool { return g.Status == model.StatusActive }), nil
}

func (m *mockGameRepo) ClaimSeats(_ context.Context, gameID, userID string, powers []string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s not found", gameID)
	}
	for _, p := range powers {
		if g.SeatFor(p) != nil {
			return fmt.Errorf("seat %s taken", p)
		}
	}
	for _, p := range powers {
		g.Seats = append(g.Seats, model.Seat{GameID: gameID, Power: p, UserID: userID, JoinedAt: time.Now()})
	}
	return nil
}

func (m *mockGameRepo) Start(_ context.Context, gameID string, botPowers []string) error {
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

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	if g, ok := m.games[gameID]; ok {
		now := time.Now()
		g.Status = model.StatusFinished
		g.Winner = winner
		g.FinishedAt = &now
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	return nil
}

type mockActionRepo struct {
	records   map[string][]model.ActionRecord
	snapshots map[string]*model.Snapshot
	failNext  error
}

func newMockActionRepo() *mockActionRepo {
	return &mockActionRepo{
		records:   make(map[string][]model.ActionRecord),
		snapshots: make(map[string]*model.Snapshot),
	}
}

func (m *mockActionRepo) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *mockActionRepo) snapshot(gameID string, seq int, state json.RawMessage) {
	m.snapshots[gameID] = &model.Snapshot{GameID: gameID, ActionSeq: seq, State: state, UpdatedAt: time.Now()}
}

func (m *mockActionRepo) Append(_ context.Context, rec *model.ActionRecord, state json.RawMessage) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	recs := m.records[rec.GameID]
	if len(recs) > 0 && recs[len(recs)-1].Seq >= rec.Seq {
		return fmt.Errorf("duplicate seq %d", rec.Seq)
	}
	m.records[rec.GameID] = append(recs, *rec)
	m.snapshot(rec.GameID, rec.Seq, state)
	return nil
}

func (m *mockActionRepo) DeleteLast(_ context.Context, gameID string, state json.RawMessage) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	recs := m.records[gameID]
	if len(recs) == 0 {
		return fmt.Errorf("no actions to delete")
	}
	m.records[gameID] = recs[:len(recs)-1]
	m.snapshot(gameID, len(recs)-1, state)
	return nil
}

func (m *mockActionRepo) Replace(_ context.Context, gameID string, recs []model.ActionRecord, state json.RawMessage) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.records[gameID] = slices.Clone(recs)
	m.snapshot(gameID, len(recs), state)
	return nil
}

func (m *mockActionRepo) List(_ context.Context, gameID string) ([]model.ActionRecord, error) {
	return slices.Clone(m.records[gameID]), nil
}

func (m *mockActionRepo) LatestSnapshot(_ context.Context, gameID string) (*model.Snapshot, error) {
	snap, ok := m.snapshots[gameID]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

type mockCache struct {
	states map[string]json.RawMessage
	timers map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		states: make(map[string]json.RawMessage),
		timers: make(map[string]time.Time),
	}
}

func (m *mockCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	m.states[gameID] = state
	return nil
}

func (m *mockCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return m.states[gameID], nil
}

func (m *mockCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	m.timers[gameID] = deadline
	return nil
}

func (m *mockCache) TimerDeadline(_ context.Context, gameID string) (time.Time, error) {
	return m.timers[gameID], nil
}

func (m *mockCache) ClearTimer(_ context.Context, gameID string) error {
	delete(m.timers, gameID)
	return nil
}

func (m *mockCache) DeleteGameData(_ context.Context, gameID string) error {
	delete(m.states, gameID)
	delete(m.timers, gameID)
	return nil
}

type mockSaveStore struct {
	slots map[string]model.SaveSlot
	data  map[string][]byte
}

func newMockSaveStore() *mockSaveStore {
	return &mockSaveStore{slots: make(map[string]model.SaveSlot), data: make(map[string][]byte)}
}

func (m *mockSaveStore) Put(_ context.Context, slot *model.SaveSlot, data []byte) error {
	if slot.ID == "" {
		slot.ID = fmt.Sprintf("save-%d", len(m.slots)+1)
	}
	m.slots[slot.ID] = *slot
	m.data[slot.ID] = slices.Clone(data)
	return nil
}

func (m *mockSaveStore) Get(_ context.Context, id string) (*model.SaveSlot, []byte, error) {
	slot, ok := m.slots[id]
	if !ok {
		return nil, nil, nil
	}
	return &slot, m.data[id], nil
}

func (m *mockSaveStore) ListByGame(_ context.Context, gameID string) ([]model.SaveSlot, error) {
	var out []model.SaveSlot
	for _, s := range m.slots {
		if s.GameID == gameID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSaveStore) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	delete(m.data, id)
	return nil
}

type broadcastRecord struct {
	gameID    string
	eventType string
	data      any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcastRecord
}

func (b *recordingBroadcaster) BroadcastGameEvent(gameID, eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, broadcastRecord{gameID, eventType, data})
}

func (b *recordingBroadcaster) count(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}
