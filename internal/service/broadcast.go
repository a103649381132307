package service

// WebSocket event types pushed to game subscribers.
const (
	EventPlayerJoined  = "player_joined"
	EventGameStarted   = "game_started"
	EventActionApplied = "action_applied"
	EventActionUndone  = "action_undone"
	EventPhaseChanged  = "phase_changed"
	EventBattleEnded   = "battle_ended"
	EventGameEnded     = "game_ended"
	EventGameRestored  = "game_restored"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// NoopBroadcaster drops every event. Used in tests and by offline tools.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}
