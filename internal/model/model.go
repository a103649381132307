package model

import (
	"encoding/json"
	"time"
)

// Game statuses.
const (
	StatusWaiting  = "waiting"
	StatusActive   = "active"
	StatusFinished = "finished"
)

// User represents a registered user.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents one Global Command match.
type Game struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CreatorID       string     `json:"creator_id"`
	Status          string     `json:"status"`
	Winner          string     `json:"winner,omitempty"`
	Seed            int64      `json:"seed"`
	TurnTimeoutSecs int        `json:"turn_timeout_secs"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Seats           []Seat     `json:"seats,omitempty"`
}

// TurnTimeout returns the per-power turn deadline, zero when untimed.
func (g *Game) TurnTimeout() time.Duration {
	return time.Duration(g.TurnTimeoutSecs) * time.Second
}

// SeatFor returns the seat controlling power, or nil.
func (g *Game) SeatFor(power string) *Seat {
	for i := range g.Seats {
		if g.Seats[i].Power == power {
			return &g.Seats[i]
		}
	}
	return nil
}

// PowersOf lists the powers a user holds.
func (g *Game) PowersOf(userID string) []string {
	var out []string
	for _, s := range g.Seats {
		if !s.IsBot && s.UserID == userID {
			out = append(out, s.Power)
		}
	}
	return out
}

// HasUser reports whether the user holds at least one seat.
func (g *Game) HasUser(userID string) bool {
	return len(g.PowersOf(userID)) > 0
}

// Seat binds one power of a game to a user or to the autopilot.
type Seat struct {
	GameID   string    `json:"game_id"`
	Power    string    `json:"power"`
	UserID   string    `json:"user_id,omitempty"`
	IsBot    bool      `json:"is_bot"`
	JoinedAt time.Time `json:"joined_at"`
}

// ActionRecord is one applied action in a game's history. Seq matches the
// action's 1-based position in the engine log.
type ActionRecord struct {
	GameID     string          `json:"game_id"`
	Seq        int             `json:"seq"`
	Power      string          `json:"power"`
	UserID     string          `json:"user_id,omitempty"`
	Action     json.RawMessage `json:"action"`
	Events     json.RawMessage `json:"events,omitempty"`
	DiceBefore int64           `json:"dice_before"`
	DiceAfter  int64           `json:"dice_after"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Snapshot is the latest authoritative state of a game.
type Snapshot struct {
	GameID    string          `json:"game_id"`
	ActionSeq int             `json:"action_seq"`
	State     json.RawMessage `json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// SaveSlot describes a stored save file without its payload.
type SaveSlot struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Name        string    `json:"name"`
	Summary     string    `json:"summary"`
	ActionCount int       `json:"action_count"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
