package store

import (
	"regexp"
	"testing"
)

func TestNewSessionIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^session_\d+_\d{4}$`)
	for i := 0; i < 20; i++ {
		id := NewSessionID()
		if !pattern.MatchString(id) {
			t.Errorf("NewSessionID() = %q, want session_<unixtime>_<4 digits>", id)
		}
		if len(id) < 3 || len(id) > 100 {
			t.Errorf("NewSessionID() = %q, length %d outside the accepted 3-100 range", id, len(id))
		}
	}
}

func TestTurnCount(t *testing.T) {
	s := &Session{ID: "session_1_test"}
	if s.TurnCount() != 0 {
		t.Errorf("TurnCount() = %d, want 0", s.TurnCount())
	}
	s.Turns = append(s.Turns, Turn{Role: RoleUser, Content: "hi"})
	if s.TurnCount() != 1 {
		t.Errorf("TurnCount() = %d, want 1", s.TurnCount())
	}
}
