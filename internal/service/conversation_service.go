package service

import (
	"sync"
	"time"

	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/repository/memory"
	"voice-agent-be/pkg/store"
)

// IConversationService owns every session and its turn history. All
// mutations funnel through here so concurrent pipelines cannot corrupt a
// session's turn list.
type IConversationService interface {
	// GetOrCreate returns the session, creating it when the id is unseen.
	// The second return reports whether it was created by this call.
	GetOrCreate(sessionID string) (*store.Session, bool)

	// AppendTurn adds one turn, creating the session if needed, and returns
	// the session's new turn count.
	AppendTurn(sessionID, role, content string, confidence *float64) int

	// History returns a copy of the session's turns in insertion order. An
	// unknown session yields an empty history, not an error.
	History(sessionID string) []store.Turn

	TurnCount(sessionID string) int

	// ClearHistory drops a session's turns but keeps the session alive.
	ClearHistory(sessionID string) bool

	DeleteSession(sessionID string) bool

	ActiveSessions() int

	// TotalMessages counts turns across every live session.
	TotalMessages() int
}

type conversationService struct {
	repo *memory.SessionRepository
	mu   sync.Mutex
	log  logger.ILogger
}

func NewConversationService(repo *memory.SessionRepository, log logger.ILogger) IConversationService {
	return &conversationService{
		repo: repo,
		log:  log,
	}
}

func (s *conversationService) GetOrCreate(sessionID string) (*store.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(sessionID)
}

func (s *conversationService) getOrCreateLocked(sessionID string) (*store.Session, bool) {
	if session, found := s.repo.Get(sessionID); found {
		return session, false
	}
	session := &store.Session{
		ID:        sessionID,
		CreatedAt: time.Now(),
		Turns:     []store.Turn{},
	}
	s.repo.Save(session)
	s.log.Info("ConversationService", "Created new session", map[string]interface{}{
		"session_id": sessionID,
	})
	return session, true
}

func (s *conversationService) AppendTurn(sessionID, role, content string, confidence *float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, _ := s.getOrCreateLocked(sessionID)
	session.Turns = append(session.Turns, store.Turn{
		Role:       role,
		Content:    content,
		Timestamp:  time.Now(),
		Confidence: confidence,
	})
	// Save refreshes the session's expiry window alongside the new turn
	s.repo.Save(session)
	return session.TurnCount()
}

func (s *conversationService) History(sessionID string) []store.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.repo.Get(sessionID)
	if !found {
		return []store.Turn{}
	}
	turns := make([]store.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns
}

func (s *conversationService) TurnCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.repo.Get(sessionID)
	if !found {
		return 0
	}
	return session.TurnCount()
}

func (s *conversationService) ClearHistory(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.repo.Get(sessionID)
	if !found {
		return false
	}
	session.Turns = []store.Turn{}
	s.repo.Save(session)
	s.log.Info("ConversationService", "Session history cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return true
}

func (s *conversationService) DeleteSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.repo.Get(sessionID); !found {
		return false
	}
	s.repo.Delete(sessionID)
	s.log.Info("ConversationService", "Session deleted", map[string]interface{}{
		"session_id": sessionID,
	})
	return true
}

func (s *conversationService) ActiveSessions() int {
	return s.repo.Count()
}

func (s *conversationService) TotalMessages() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, id := range s.repo.Keys() {
		if session, found := s.repo.Get(id); found {
			total += session.TurnCount()
		}
	}
	return total
}
