package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// FeedbackStore keeps answered turns per employee, oldest first.
type FeedbackStore struct {
	mu         sync.RWMutex
	byEmployee map[domain.EmployeeID][]*domain.Feedback
}

func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{
		byEmployee: make(map[domain.EmployeeID][]*domain.Feedback),
	}
}

func (s *FeedbackStore) AppendFeedback(_ context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *fb
	cp.Keywords = append([]string(nil), fb.Keywords...)
	s.byEmployee[fb.EmployeeID] = append(s.byEmployee[fb.EmployeeID], &cp)
	return nil
}

func (s *FeedbackStore) ListFeedbackByEmployee(_ context.Context, employeeID domain.EmployeeID) ([]*domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byEmployee[employeeID]
	out := make([]*domain.Feedback, len(rows))
	copy(out, rows)
	return out, nil
}
