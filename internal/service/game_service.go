package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/model"
	"github.com/freeeve/global-command/api/internal/repository"
	"github.com/freeeve/global-command/api/pkg/engine"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameNotWaiting = errors.New("game is not in waiting status")
	ErrGameNotActive  = errors.New("game is not active")
	ErrNotCreator     = errors.New("only the creator can do that")
	ErrNotInGame      = errors.New("you are not in this game")
	ErrInvalidPower   = errors.New("invalid power")
	ErrSeatTaken      = errors.New("power already claimed")
	ErrNoHumanSeats   = errors.New("at least one power must be claimed by a player")
	ErrInvalidTimeout = errors.New("turn timeout must not be negative")
	ErrInvalidSeed    = errors.New("seed must not be negative")
)

// CreateGameInput holds the options for a new game.
type CreateGameInput struct {
	Name        string
	CreatorID   string
	Seed        *int64
	TurnTimeout *time.Duration
	Powers      []string
}

// GameService handles game lifecycle operations.
type GameService struct {
	gameRepo       repository.GameRepository
	sessions       *SessionService
	board          *engine.Board
	broadcaster    Broadcaster
	defaultTimeout time.Duration
}

// NewGameService creates a GameService. New games use defaultTimeout unless
// they ask for their own.
func NewGameService(gameRepo repository.GameRepository, sessions *SessionService, board *engine.Board, broadcaster Broadcaster, defaultTimeout time.Duration) *GameService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &GameService{
		gameRepo:       gameRepo,
		sessions:       sessions,
		board:          board,
		broadcaster:    broadcaster,
		defaultTimeout: defaultTimeout,
	}
}

// CreateGame creates a new game in "waiting" status. The creator takes the
// requested powers, or Germany when none are given.
func (s *GameService) CreateGame(ctx context.Context, in CreateGameInput) (*model.Game, error) {
	powers := in.Powers
	if len(powers) == 0 {
		powers = []string{string(engine.TurnOrder[0])}
	}
	if err := validatePowers(powers); err != nil {
		return nil, err
	}
	timeout := s.defaultTimeout
	if in.TurnTimeout != nil {
		timeout = *in.TurnTimeout
	}
	if timeout < 0 {
		return nil, ErrInvalidTimeout
	}
	seed := rand.Int64()
	if in.Seed != nil {
		if *in.Seed < 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidSeed, *in.Seed)
		}
		seed = *in.Seed
	}

	game, err := s.gameRepo.Create(ctx, in.Name, in.CreatorID, seed, int(timeout/time.Second))
	if err != nil {
		return nil, err
	}
	if err := s.gameRepo.ClaimSeats(ctx, game.ID, in.CreatorID, powers); err != nil {
		return nil, fmt.Errorf("claim creator seats: %w", err)
	}
	log.Info().Str("gameId", game.ID).Str("creator", in.CreatorID).Strs("powers", powers).Msg("Game created")
	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame claims one or more unclaimed powers of a waiting game.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID string, powers []string) (*model.Game, error) {
	if len(powers) == 0 {
		return nil, ErrInvalidPower
	}
	if err := validatePowers(powers); err != nil {
		return nil, err
	}
	game, err := s.waitingGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, p := range powers {
		if game.SeatFor(p) != nil {
			return nil, fmt.Errorf("%s: %w", p, ErrSeatTaken)
		}
	}
	if err := s.gameRepo.ClaimSeats(ctx, gameID, userID, powers); err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastGameEvent(gameID, EventPlayerJoined, map[string]any{
		"user_id": userID,
		"powers":  powers,
	})
	return s.gameRepo.FindByID(ctx, gameID)
}

// StartGame seats the autopilot on every unclaimed power, builds the opening
// position and hands the game to the session service.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.waitingGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	var bots []string
	for _, p := range engine.TurnOrder {
		if game.SeatFor(string(p)) == nil {
			bots = append(bots, string(p))
		}
	}
	if len(bots) == len(engine.TurnOrder) {
		return nil, ErrNoHumanSeats
	}

	e, err := engine.NewEngine(uint64(game.Seed), s.board)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	if err := s.sessions.writeInitialState(ctx, gameID, e.State()); err != nil {
		return nil, err
	}
	if err := s.gameRepo.Start(ctx, gameID, bots); err != nil {
		return nil, err
	}
	started, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("gameId", gameID).Strs("bots", bots).Int64("seed", game.Seed).Msg("Game started")
	s.broadcaster.BroadcastGameEvent(gameID, EventGameStarted, map[string]any{
		"summary": e.Summary(),
	})
	if err := s.sessions.begin(ctx, started, e); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// ListGames returns open games, the user's games or all active games.
func (s *GameService) ListGames(ctx context.Context, userID, filter string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "active":
		return s.gameRepo.ListActive(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}

// DeleteGame removes a game and its cached state. Only the creator can
// delete a game.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	if err := s.gameRepo.Delete(ctx, gameID); err != nil {
		return err
	}
	s.sessions.forget(ctx, gameID)
	log.Info().Str("gameId", gameID).Msg("Game deleted")
	return nil
}

func (s *GameService) waitingGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != model.StatusWaiting {
		return nil, ErrGameNotWaiting
	}
	return game, nil
}

func validatePowers(powers []string) error {
	for i, p := range powers {
		if !engine.Power(p).Valid() || slices.Contains(powers[:i], p) {
			return fmt.Errorf("%q: %w", p, ErrInvalidPower)
		}
	}
	return nil
}
