//go:build integration

package redis

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/freeeve/global-command/api/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return NewClientFromPool(testRDB)
}

func TestGameStateRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	state := json.RawMessage(`{"turn":3,"current_power":"japan"}`)

	if err := c.SetGameState(ctx, "g1", state); err != nil {
		t.Fatalf("set game state: %v", err)
	}
	got, err := c.GetGameState(ctx, "g1")
	if err != nil {
		t.Fatalf("get game state: %v", err)
	}
	var fetched map[string]any
	if err := json.Unmarshal(got, &fetched); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fetched["current_power"] != "japan" {
		t.Fatalf("state round-trip failed: %s", string(got))
	}

	missing, err := c.GetGameState(ctx, "nonexistent")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing state, got %s, %v", missing, err)
	}
}

func TestTimer(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	deadline := time.Now().Add(time.Hour).Truncate(time.Second)

	if err := c.SetTimer(ctx, "g1", deadline); err != nil {
		t.Fatalf("set timer: %v", err)
	}
	got, err := c.TimerDeadline(ctx, "g1")
	if err != nil || !got.Equal(deadline) {
		t.Fatalf("expected deadline %v, got %v, %v", deadline, got, err)
	}
	ttl := testRDB.TTL(ctx, timerKey("g1")).Val()
	if ttl <= time.Hour || ttl > time.Hour+TurnGracePeriod {
		t.Errorf("expected ttl within grace window, got %v", ttl)
	}

	if err := c.ClearTimer(ctx, "g1"); err != nil {
		t.Fatalf("clear timer: %v", err)
	}
	got, _ = c.TimerDeadline(ctx, "g1")
	if !got.IsZero() {
		t.Errorf("expected no timer after clear, got %v", got)
	}
}

func TestDeleteGameData(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	c.SetGameState(ctx, "g1", json.RawMessage(`{}`))
	c.SetTimer(ctx, "g1", time.Now().Add(time.Minute))

	if err := c.DeleteGameData(ctx, "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := testRDB.Exists(ctx, stateKey("g1"), timerKey("g1")).Val(); n != 0 {
		t.Errorf("expected keys removed, %d remain", n)
	}
}

func TestPingAndExpiryEvents(t *testing.T) {
	c := setup(t)
	ctx := context.Background()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := c.EnableExpiryEvents(ctx); err != nil {
		t.Skipf("server refuses CONFIG SET: %v", err)
	}
	got, err := c.Underlying().ConfigGet(ctx, "notify-keyspace-events").Result()
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if v := got["notify-keyspace-events"]; !strings.Contains(v, "x") {
		t.Errorf("expected expired events enabled, got %q", v)
	}
}
