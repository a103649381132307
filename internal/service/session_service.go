package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/freeeve/global-command/api/internal/bot"
	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/internal/repository"
	"github.com/freeeve/global-command/api/pkg/engine"
)

var (
	ErrNotYourTurn = errors.New("it is not your turn to act")
	ErrNoState     = errors.New("game has no stored state")
)

// maxAutopilotSteps bounds one autopilot run. A full round of nine passive
// powers takes a few hundred actions.
const maxAutopilotSteps = 20000

var tracer = otel.Tracer("github.com/freeeve/global-command/api/internal/service")

// ActionOutcome is the response to a submitted action.
type ActionOutcome struct {
	Result           engine.Result     `json:"result"`
	AutopilotActions int               `json:"autopilot_actions"`
	State            *engine.GameState `json:"state"`
}

// SessionService owns the authoritative state of every active game. The
// state lives in Redis with a Postgres snapshot behind it; each applied
// action is appended to the Postgres history.
type SessionService struct {
	gameRepo    repository.GameRepository
	actionRepo  repository.ActionRepository
	cache       repository.StateCache
	board       engine.Map
	broadcaster Broadcaster
	strategy    bot.Strategy
	now         func() time.Time

	// gameLocks serializes submissions, timer expiries and restores per game.
	gameLocks sync.Map
}

// NewSessionService creates a SessionService.
func NewSessionService(
	gameRepo repository.GameRepository,
	actionRepo repository.ActionRepository,
	cache repository.StateCache,
	board engine.Map,
	broadcaster Broadcaster,
) *SessionService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &SessionService{
		gameRepo:    gameRepo,
		actionRepo:  actionRepo,
		cache:       cache,
		board:       board,
		broadcaster: broadcaster,
		strategy:    bot.Passive{},
		now:         time.Now,
	}
}

// SetStrategy replaces the autopilot strategy.
func (s *SessionService) SetStrategy(st bot.Strategy) {
	s.strategy = st
}

// gameLock returns the mutex for a given game ID.
func (s *SessionService) gameLock(gameID string) *sync.Mutex {
	v, _ := s.gameLocks.LoadOrStore(gameID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// SubmitAction applies an action on behalf of a user, then lets the autopilot
// play any bot seats that act next.
func (s *SessionService) SubmitAction(ctx context.Context, gameID, userID string, a engine.Action) (*ActionOutcome, error) {
	ctx, span := tracer.Start(ctx, "SessionService.SubmitAction", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("action.type", string(a.Type)),
	))
	defer span.End()

	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	e, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return nil, err
	}
	acting := engine.ActingPower(e.State(), a)
	seat := game.SeatFor(string(acting))
	if seat == nil || seat.IsBot || seat.UserID != userID {
		if !game.HasUser(userID) {
			return nil, ErrNotInGame
		}
		return nil, fmt.Errorf("%s must act: %w", acting, ErrNotYourTurn)
	}

	res, err := s.apply(ctx, game, e, a, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	n := s.autopilot(ctx, game, e, nil)
	return &ActionOutcome{Result: res, AutopilotActions: n, State: e.State()}, nil
}

// Undo reverses the caller's last action.
func (s *SessionService) Undo(ctx context.Context, gameID, userID string) (*ActionOutcome, error) {
	return s.SubmitAction(ctx, gameID, userID, engine.Simple(engine.ActionUndo))
}

// State returns the current state of a started game.
func (s *SessionService) State(ctx context.Context, gameID string) (*engine.GameState, error) {
	if _, err := s.startedGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.loadState(ctx, gameID)
}

// LegalActions lists the enumerable actions available now, whoever must
// issue them.
func (s *SessionService) LegalActions(ctx context.Context, gameID string) ([]engine.LegalAction, error) {
	gs, err := s.State(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return engine.LegalActions(gs, s.board), nil
}

// ActionHistory returns the persisted action log of a game.
func (s *SessionService) ActionHistory(ctx context.Context, gameID string) ([]model.ActionRecord, error) {
	if _, err := s.startedGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.actionRepo.List(ctx, gameID)
}

// TimeoutTurn hands the current power to the autopilot until its turn ends.
// Called when the game's turn timer expires.
func (s *SessionService) TimeoutTurn(ctx context.Context, gameID string) error {
	mu := s.gameLock(gameID)
	mu.Lock()
	defer mu.Unlock()

	game, err := s.activeGame(ctx, gameID)
	if err != nil {
		return err
	}
	// a newer timer means the turn moved on while we waited for the lock
	deadline, err := s.cache.TimerDeadline(ctx, gameID)
	if err != nil {
		return err
	}
	if !deadline.IsZero() && s.now().Before(deadline) {
		return nil
	}
	e, err := s.loadEngine(ctx, gameID)
	if err != nil {
		return err
	}
	gs := e.State()
	expired := &turnKey{power: gs.CurrentPower, turn: gs.Turn}
	log.Info().Str("gameId", gameID).Str("power", string(expired.power)).Int("turn", expired.turn).
		Msg("Turn timer expired, autopilot taking over")
	n := s.autopilot(ctx, game, e, expired)
	if n == 0 && game.Status == model.StatusActive {
		// nothing moved; try again after another full timeout
		s.resetTimer(ctx, game)
	}
	return nil
}

// RecoverActiveGames rehydrates Redis state for all active games from
// Postgres, restores missing timers and resumes stalled autopilot seats.
// Called on server startup.
func (s *SessionService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}
	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")

	for i := range games {
		game := &games[i]
		if err := s.recoverGame(ctx, game); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to recover game")
		}
	}
	return nil
}

func (s *SessionService) recoverGame(ctx context.Context, game *model.Game) error {
	mu := s.gameLock(game.ID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.actionRepo.LatestSnapshot(ctx, game.ID)
	if err != nil {
		return err
	}
	if snap == nil {
		log.Warn().Str("gameId", game.ID).Msg("Active game has no snapshot, skipping")
		return nil
	}
	if err := s.cache.SetGameState(ctx, game.ID, snap.State); err != nil {
		return fmt.Errorf("cache state: %w", err)
	}
	deadline, err := s.cache.TimerDeadline(ctx, game.ID)
	if err != nil {
		return err
	}
	if deadline.IsZero() {
		s.resetTimer(ctx, game)
	}
	e, err := s.loadEngine(ctx, game.ID)
	if err != nil {
		return err
	}
	n := s.autopilot(ctx, game, e, nil)
	log.Info().Str("gameId", game.ID).Int("actionSeq", snap.ActionSeq).Int("autopilot", n).Msg("Game recovered")
	return nil
}

// writeInitialState stores the opening position of a game being started.
func (s *SessionService) writeInitialState(ctx context.Context, gameID string, gs *engine.GameState) error {
	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.actionRepo.Replace(ctx, gameID, nil, raw); err != nil {
		return fmt.Errorf("store initial snapshot: %w", err)
	}
	return s.cache.SetGameState(ctx, gameID, raw)
}

// begin arms the first timer and lets bot seats play until a human must act.
func (s *SessionService) begin(ctx context.Context, game *model.Game, e *engine.Engine) error {
	mu := s.gameLock(game.ID)
	mu.Lock()
	defer mu.Unlock()

	s.resetTimer(ctx, game)
	s.autopilot(ctx, game, e, nil)
	return nil
}

// restore replaces a game's history and state, for example from a save.
func (s *SessionService) restore(ctx context.Context, game *model.Game, gs *engine.GameState, recs []model.ActionRecord) error {
	mu := s.gameLock(game.ID)
	mu.Lock()
	defer mu.Unlock()

	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.actionRepo.Replace(ctx, game.ID, recs, raw); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	if err := s.cache.SetGameState(ctx, game.ID, raw); err != nil {
		return fmt.Errorf("cache state: %w", err)
	}
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameRestored, map[string]any{
		"summary": engine.Summary(gs),
	})
	if gs.Winner != "" {
		s.finish(ctx, game, gs)
		return nil
	}
	s.resetTimer(ctx, game)
	s.autopilot(ctx, game, engine.FromState(gs, s.board), nil)
	return nil
}

// forget drops the cached state and lock of a deleted game.
func (s *SessionService) forget(ctx context.Context, gameID string) {
	if err := s.cache.DeleteGameData(ctx, gameID); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to delete cached game data")
	}
	s.gameLocks.Delete(gameID)
}

// apply submits one action and persists the result. It must be called with
// the game lock held.
func (s *SessionService) apply(ctx context.Context, game *model.Game, e *engine.Engine, a engine.Action, userID string) (engine.Result, error) {
	ctx, span := tracer.Start(ctx, "SessionService.apply", trace.WithAttributes(
		attribute.String("game.id", game.ID),
		attribute.String("action.type", string(a.Type)),
		attribute.Bool("autopilot", userID == ""),
	))
	defer span.End()

	before := e.State()
	prevPower := before.CurrentPower
	diceBefore := before.RNGCounter
	acting := engine.ActingPower(before, a)

	res, err := e.Submit(a)
	if err != nil {
		return engine.Result{}, err
	}
	gs := e.State()
	raw, err := json.Marshal(gs)
	if err != nil {
		return res, fmt.Errorf("marshal state: %w", err)
	}

	if a.Type == engine.ActionUndo {
		err = s.actionRepo.DeleteLast(ctx, game.ID, raw)
	} else {
		rec, recErr := newActionRecord(game.ID, len(gs.ActionLog), acting, userID, a, res.Events)
		if recErr != nil {
			return res, recErr
		}
		rec.DiceBefore = int64(diceBefore)
		rec.DiceAfter = int64(gs.RNGCounter)
		err = s.actionRepo.Append(ctx, rec, raw)
	}
	if err != nil {
		span.RecordError(err)
		return res, fmt.Errorf("persist action: %w", err)
	}
	if err := s.cache.SetGameState(ctx, game.ID, raw); err != nil {
		// stale cache would hide the action; fall back to the snapshot
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to cache game state")
		if err := s.cache.DeleteGameData(ctx, game.ID); err != nil {
			log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to drop cached game state")
		}
	}

	s.broadcastResult(game.ID, acting, a, res, gs)
	if gs.Winner != "" {
		s.finish(ctx, game, gs)
	} else if gs.CurrentPower != prevPower {
		s.resetTimer(ctx, game)
	}
	return res, nil
}

func newActionRecord(gameID string, seq int, acting engine.Power, userID string, a engine.Action, events []engine.Event) (*model.ActionRecord, error) {
	actionJSON, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal action: %w", err)
	}
	var eventsJSON json.RawMessage
	if len(events) > 0 {
		if eventsJSON, err = json.Marshal(events); err != nil {
			return nil, fmt.Errorf("marshal events: %w", err)
		}
	}
	return &model.ActionRecord{
		GameID: gameID,
		Seq:    seq,
		Power:  string(acting),
		UserID: userID,
		Action: actionJSON,
		Events: eventsJSON,
	}, nil
}

// turnKey identifies one power's turn.
type turnKey struct {
	power engine.Power
	turn  int
}

// autopilot plays bot seats, and the expired turn if any, until a human must
// act. It returns the number of actions applied. Failures are logged; the
// game stays where the autopilot stopped.
func (s *SessionService) autopilot(ctx context.Context, game *model.Game, e *engine.Engine, expired *turnKey) int {
	automated := func(gs *engine.GameState, p engine.Power) bool {
		if expired != nil && gs.CurrentPower == expired.power && gs.Turn == expired.turn {
			return true
		}
		seat := game.SeatFor(string(p))
		return seat == nil || seat.IsBot
	}
	submit := func(a engine.Action) error {
		_, err := s.apply(ctx, game, e, a, "")
		return err
	}
	n, err := bot.Drive(s.strategy, e.State, s.board, automated, submit, maxAutopilotSteps)
	if err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Int("steps", n).Msg("Autopilot stopped")
	} else if n > 0 {
		log.Debug().Str("gameId", game.ID).Int("steps", n).Str("summary", e.Summary()).Msg("Autopilot finished")
	}
	return n
}

func (s *SessionService) broadcastResult(gameID string, acting engine.Power, a engine.Action, res engine.Result, gs *engine.GameState) {
	eventType := EventActionApplied
	if a.Type == engine.ActionUndo {
		eventType = EventActionUndone
	}
	s.broadcaster.BroadcastGameEvent(gameID, eventType, map[string]any{
		"power":   acting,
		"action":  a,
		"events":  res.Events,
		"summary": engine.Summary(gs),
		"seq":     len(gs.ActionLog),
	})
	for _, ev := range res.Events {
		switch ev.Type {
		case engine.EventPhaseChanged:
			s.broadcaster.BroadcastGameEvent(gameID, EventPhaseChanged, ev)
		case engine.EventBattleEnded:
			s.broadcaster.BroadcastGameEvent(gameID, EventBattleEnded, ev)
		}
	}
}

func (s *SessionService) finish(ctx context.Context, game *model.Game, gs *engine.GameState) {
	winner := string(gs.Winner)
	if err := s.gameRepo.SetFinished(ctx, game.ID, winner); err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to mark game finished")
	}
	if err := s.cache.ClearTimer(ctx, game.ID); err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Failed to clear timer")
	}
	game.Status = model.StatusFinished
	game.Winner = winner
	log.Info().Str("gameId", game.ID).Str("winner", winner).Int("turn", gs.Turn).Msg("Game finished")
	s.broadcaster.BroadcastGameEvent(game.ID, EventGameEnded, map[string]any{
		"winner": winner,
		"turn":   gs.Turn,
	})
}

// resetTimer restarts the turn clock for the power now to act. Untimed games
// never arm one.
func (s *SessionService) resetTimer(ctx context.Context, game *model.Game) {
	timeout := game.TurnTimeout()
	if timeout <= 0 {
		return
	}
	if err := s.cache.SetTimer(ctx, game.ID, s.now().Add(timeout)); err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to set turn timer")
	}
}

func (s *SessionService) startedGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status == model.StatusWaiting {
		return nil, ErrGameNotActive
	}
	return game, nil
}

func (s *SessionService) activeGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.startedGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.StatusActive {
		return nil, ErrGameNotActive
	}
	return game, nil
}

// loadState reads the cached state, falling back to the Postgres snapshot
// and re-caching it.
func (s *SessionService) loadState(ctx context.Context, gameID string) (*engine.GameState, error) {
	raw, err := s.cache.GetGameState(ctx, gameID)
	if err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Msg("State cache unavailable, reading snapshot")
		raw = nil
	}
	if raw == nil {
		snap, err := s.actionRepo.LatestSnapshot(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, ErrNoState
		}
		raw = snap.State
		if err := s.cache.SetGameState(ctx, gameID, raw); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to re-cache game state")
		}
	}
	var gs engine.GameState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &gs, nil
}

func (s *SessionService) loadEngine(ctx context.Context, gameID string) (*engine.Engine, error) {
	gs, err := s.loadState(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return engine.FromState(gs, s.board), nil
}
