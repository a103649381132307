package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string { return "game:" + gameID + ":state" }
func timerKey(gameID string) string { return "game:" + gameID + ":timer" }

// GameIDFromTimerKey extracts the game ID from a "game:<id>:timer" key.
func GameIDFromTimerKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, "game:")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, ":timer")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// stateTTL bounds how long an idle game's state stays cached; Postgres keeps
// the authoritative snapshot.
const stateTTL = 7 * 24 * time.Hour

// SetGameState stores the live game state JSON.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), stateTTL).Err()
}

// GetGameState retrieves the live game state JSON, or nil when not cached.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// TurnGracePeriod is the extra time after the displayed deadline before the
// autopilot takes over, giving players a few seconds of leeway.
const TurnGracePeriod = 5 * time.Second

// SetTimer creates a timer key with a TTL. When the key expires, Redis
// keyspace notifications hand the current power to the autopilot.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + TurnGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// TimerDeadline returns the deadline stored for a game, zero when no timer runs.
func (c *Client) TimerDeadline(ctx context.Context, gameID string) (time.Time, error) {
	unix, err := c.rdb.Get(ctx, timerKey(gameID)).Int64()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get timer: %w", err)
	}
	return time.Unix(unix, 0), nil
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// DeleteGameData removes all Redis data for a game.
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, stateKey(gameID), timerKey(gameID)).Err()
}
