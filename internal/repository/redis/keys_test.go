package redis

import "testing"

func TestGameIDFromTimerKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
		ok   bool
	}{
		{"game:abc-123:timer", "abc-123", true},
		{timerKey("xyz"), "xyz", true},
		{"game:abc-123:state", "", false},
		{"game::timer", "", false},
		{"other:abc:timer", "", false},
	}
	for _, tt := range tests {
		got, ok := GameIDFromTimerKey(tt.key)
		if got != tt.want || ok != tt.ok {
			t.Errorf("GameIDFromTimerKey(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}
