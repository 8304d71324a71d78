package service

import (
	"fmt"
	"testing"
	"time"

	"voice-agent-be/internal/repository/memory"
	"voice-agent-be/pkg/store"
)

// nopLogger satisfies logger.ILogger for tests without writing anywhere.
type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newConversationService() IConversationService {
	return NewConversationService(memory.NewSessionRepository(time.Hour), nopLogger{})
}

func TestGetOrCreate(t *testing.T) {
	svc := newConversationService()

	session, created := svc.GetOrCreate("session_1_test")
	if !created {
		t.Error("first GetOrCreate reported created=false")
	}
	if session.TurnCount() != 0 {
		t.Errorf("new session has %d turns, want 0", session.TurnCount())
	}

	_, created = svc.GetOrCreate("session_1_test")
	if created {
		t.Error("second GetOrCreate reported created=true")
	}
}

func TestHistoryUnseenSessionIsEmpty(t *testing.T) {
	svc := newConversationService()
	history := svc.History("never_seen")
	if len(history) != 0 {
		t.Errorf("unseen session history has %d turns, want 0", len(history))
	}
}

func TestAppendTurnKeepsInsertionOrder(t *testing.T) {
	svc := newConversationService()
	const sessionID = "session_2_test"

	for i := 0; i < 3; i++ {
		svc.AppendTurn(sessionID, store.RoleUser, fmt.Sprintf("question %d", i), nil)
		svc.AppendTurn(sessionID, store.RoleAssistant, fmt.Sprintf("answer %d", i), nil)
	}

	history := svc.History(sessionID)
	if len(history) != 6 {
		t.Fatalf("history has %d turns, want 6", len(history))
	}
	for i, turn := range history {
		wantRole := store.RoleUser
		wantContent := fmt.Sprintf("question %d", i/2)
		if i%2 == 1 {
			wantRole = store.RoleAssistant
			wantContent = fmt.Sprintf("answer %d", i/2)
		}
		if turn.Role != wantRole || turn.Content != wantContent {
			t.Errorf("turn %d = {%s %q}, want {%s %q}", i, turn.Role, turn.Content, wantRole, wantContent)
		}
	}
}

func TestHistoryReturnsACopy(t *testing.T) {
	svc := newConversationService()
	const sessionID = "session_3_test"
	svc.AppendTurn(sessionID, store.RoleUser, "original", nil)

	history := svc.History(sessionID)
	history[0].Content = "mutated"

	if got := svc.History(sessionID)[0].Content; got != "original" {
		t.Errorf("stored turn content = %q, caller mutation leaked into the store", got)
	}
}

func TestClearHistoryKeepsSession(t *testing.T) {
	svc := newConversationService()
	const sessionID = "session_4_test"
	svc.AppendTurn(sessionID, store.RoleUser, "hello", nil)

	if !svc.ClearHistory(sessionID) {
		t.Fatal("ClearHistory returned false for a live session")
	}
	if got := svc.TurnCount(sessionID); got != 0 {
		t.Errorf("TurnCount after clear = %d, want 0", got)
	}
	if _, created := svc.GetOrCreate(sessionID); created {
		t.Error("session was recreated after clear, want it kept alive")
	}

	if svc.ClearHistory("never_seen") {
		t.Error("ClearHistory returned true for an unknown session")
	}
}

func TestDeleteSession(t *testing.T) {
	svc := newConversationService()
	const sessionID = "session_5_test"
	svc.AppendTurn(sessionID, store.RoleUser, "hello", nil)

	if !svc.DeleteSession(sessionID) {
		t.Fatal("DeleteSession returned false for a live session")
	}
	if svc.DeleteSession(sessionID) {
		t.Error("DeleteSession returned true for an already deleted session")
	}
	if got := len(svc.History(sessionID)); got != 0 {
		t.Errorf("deleted session history has %d turns, want 0", got)
	}
}

func TestSessionCounters(t *testing.T) {
	svc := newConversationService()
	svc.AppendTurn("session_6_a", store.RoleUser, "a", nil)
	svc.AppendTurn("session_6_a", store.RoleAssistant, "b", nil)
	svc.AppendTurn("session_6_b", store.RoleUser, "c", nil)

	if got := svc.ActiveSessions(); got != 2 {
		t.Errorf("ActiveSessions() = %d, want 2", got)
	}
	if got := svc.TotalMessages(); got != 3 {
		t.Errorf("TotalMessages() = %d, want 3", got)
	}
}
