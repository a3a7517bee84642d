package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// SessionStore keeps in-flight chat sessions in process memory. It stores
// copies, so callers must UpdateSession to publish changes.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.ChatSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.ChatSession),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return errors.New("session already exists")
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) UpdateSession(_ context.Context, session *domain.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return domain.ErrSessionNotFound
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return cloneSession(sess), nil
}

func (s *SessionStore) DeleteSession(_ context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) DeleteIdle(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(before) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions are held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func cloneSession(in *domain.ChatSession) *domain.ChatSession {
	out := *in
	out.Questions = append([]string(nil), in.Questions...)
	out.History = make([]domain.Turn, len(in.History))
	for i, t := range in.History {
		t.Keywords = append([]string(nil), t.Keywords...)
		out.History[i] = t
	}
	out.SentimentCounts = in.SentimentCounts.Clone()
	return &out
}
