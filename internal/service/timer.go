package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/global-command/api/internal/repository"
	redisrepo "github.com/freeeve/global-command/api/internal/repository/redis"
)

// pollInterval is how often the fallback poller looks for overdue turns.
const pollInterval = 10 * time.Second

// TimerListener listens for Redis keyspace notifications on expired timer keys
// and hands the current power to the autopilot when a turn runs out. Also runs
// a polling fallback in case keyspace notifications are unavailable.
type TimerListener struct {
	rdb      *redis.Client
	sessions *SessionService
	gameRepo repository.GameRepository
	cache    repository.StateCache
	now      func() time.Time
}

// NewTimerListener creates a TimerListener.
func NewTimerListener(rdb *redis.Client, sessions *SessionService, gameRepo repository.GameRepository, cache repository.StateCache) *TimerListener {
	return &TimerListener{rdb: rdb, sessions: sessions, gameRepo: gameRepo, cache: cache, now: time.Now}
}

// Start begins listening for expired key events and runs the polling
// fallback until ctx is cancelled.
func (t *TimerListener) Start(ctx context.Context) {
	go t.listenKeyspace(ctx)
	t.pollOverdueTurns(ctx)
}

// listenKeyspace subscribes to Redis keyspace notifications for expired keys.
func (t *TimerListener) listenKeyspace(ctx context.Context) {
	pubsub := t.rdb.PSubscribe(ctx, "__keyevent@0__:expired")
	defer pubsub.Close()

	log.Info().Msg("Timer listener started, listening for expired keys")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			t.handleExpiry(ctx, msg.Payload)
		}
	}
}

func (t *TimerListener) pollOverdueTurns(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info().Dur("interval", pollInterval).Msg("Turn deadline poller started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Turn deadline poller stopped")
			return
		case <-ticker.C:
			t.checkOverdueTurns(ctx)
		}
	}
}

// checkOverdueTurns times out active, timed games whose deadline has passed
// or whose timer key is gone.
func (t *TimerListener) checkOverdueTurns(ctx context.Context) {
	games, err := t.gameRepo.ListActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active games")
		return
	}
	now := t.now()
	for _, g := range games {
		if g.TurnTimeout() <= 0 {
			continue
		}
		deadline, err := t.cache.TimerDeadline(ctx, g.ID)
		if err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("Failed to read turn deadline")
			continue
		}
		if !deadline.IsZero() && now.Before(deadline.Add(redisrepo.TurnGracePeriod)) {
			continue
		}
		log.Info().Str("gameId", g.ID).Time("deadline", deadline).Msg("Poller found overdue turn")
		if err := t.sessions.TimeoutTurn(ctx, g.ID); err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("Turn timeout failed from poller")
		}
	}
}

// handleExpiry processes an expired key. Only acts on game timer keys.
func (t *TimerListener) handleExpiry(ctx context.Context, key string) {
	gameID, ok := redisrepo.GameIDFromTimerKey(key)
	if !ok {
		return
	}
	log.Info().Str("gameId", gameID).Msg("Timer expired, handing turn to autopilot")
	if err := t.sessions.TimeoutTurn(ctx, gameID); err != nil {
		log.Error().Err(err).Str("gameId", gameID).Msg("Turn timeout failed after timer expiry")
	}
}
