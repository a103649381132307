package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestRequestIDRoundTrip(t *testing.T) {
	id := NewRequestID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid request id, got %q", id)
	}
	if NewRequestID() == id {
		t.Error("request ids should differ")
	}

	ctx := WithRequestID(context.Background(), id)
	if got := RequestIDFromContext(ctx); got != id {
		t.Errorf("expected %s, got %s", id, got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %s", got)
	}
}

func TestForRequestAddsField(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	l := ForRequest(WithRequestID(context.Background(), "abc"))
	l.Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if line["requestId"] != "abc" {
		t.Errorf("expected requestId=abc, got %v", line["requestId"])
	}
}

func TestLogBodyTruncates(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prevLevel) })

	LogRequest(l, []byte(strings.Repeat("x", maxBodyLog+50)))
	if !strings.Contains(buf.String(), `"truncated":true`) {
		t.Errorf("expected truncated marker, got %s", buf.String())
	}

	buf.Reset()
	LogResponse(l, nil)
	if buf.Len() != 0 {
		t.Errorf("empty body should not log, got %s", buf.String())
	}
}

func TestForGameCarriesRequestAndGame(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	l := ForGame(WithRequestID(context.Background(), "req-1"), "game-9")
	l.Info().Msg("saved")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if line["requestId"] != "req-1" || line["gameId"] != "game-9" {
		t.Errorf("expected requestId and gameId fields, got %v", line)
	}
}
