package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// ReportStore is an in-memory domain.ReportStore.
// It is NOT persistent and is only suitable for development / local mode.
type ReportStore struct {
	mu     sync.RWMutex
	latest map[domain.EmployeeID]*domain.FinalAnalysis
	vibes  map[domain.EmployeeID][]*domain.VibeEntry
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		latest: make(map[domain.EmployeeID]*domain.FinalAnalysis),
		vibes:  make(map[domain.EmployeeID][]*domain.VibeEntry),
	}
}

func (s *ReportStore) SaveAnalysis(_ context.Context, a *domain.FinalAnalysis) error {
	if a == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest[a.EmployeeID] = a
	return nil
}

func (s *ReportStore) GetLatestAnalysis(_ context.Context, employeeID domain.EmployeeID) (*domain.FinalAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.latest[employeeID]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return a, nil
}

func (s *ReportStore) AppendVibeEntry(_ context.Context, entry *domain.VibeEntry) error {
	if entry == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.vibes[entry.EmployeeID] = append(s.vibes[entry.EmployeeID], &cp)
	return nil
}

// ListVibeEntries returns the last `limit` entries, oldest first.
// If limit <= 0, returns all.
func (s *ReportStore) ListVibeEntries(_ context.Context, employeeID domain.EmployeeID, limit int) ([]*domain.VibeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.vibes[employeeID]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	out := make([]*domain.VibeEntry, limit)
	copy(out, entries[len(entries)-limit:])
	return out, nil
}

// EscalationStore is an in-memory escalation log.
type EscalationStore struct {
	mu  sync.RWMutex
	log []*domain.Escalation
}

func NewEscalationStore() *EscalationStore {
	return &EscalationStore{}
}

func (s *EscalationStore) RecordEscalation(_ context.Context, esc *domain.Escalation) error {
	if esc == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *esc
	s.log = append(s.log, &cp)
	return nil
}

func (s *EscalationStore) ListEscalations(_ context.Context, limit int) ([]*domain.Escalation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.log)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*domain.Escalation, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.log[i])
	}
	return out, nil
}

// EmployeeStore keeps account records keyed by employee id.
type EmployeeStore struct {
	mu      sync.RWMutex
	records map[domain.EmployeeID]*domain.EmployeeRecord
}

func NewEmployeeStore() *EmployeeStore {
	return &EmployeeStore{
		records: make(map[domain.EmployeeID]*domain.EmployeeRecord),
	}
}

func (s *EmployeeStore) GetEmployee(_ context.Context, id domain.EmployeeID) (*domain.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *EmployeeStore) SaveEmployee(_ context.Context, rec *domain.EmployeeRecord) error {
	if rec == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.records[rec.EmployeeID] = &cp
	return nil
}

// ListDue returns records whose next chat date is on or before day, sorted by
// date then id. Dates are YYYY-MM-DD so string order is date order.
func (s *EmployeeStore) ListDue(_ context.Context, day string) ([]*domain.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.EmployeeRecord
	for _, rec := range s.records {
		if rec.NextChatDate != "" && rec.NextChatDate <= day {
			cp := *rec
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].NextChatDate != out[j].NextChatDate {
			return out[i].NextChatDate < out[j].NextChatDate
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// Sink bundles the in-memory durable stores into one domain.Sink.
type Sink struct {
	*FeedbackStore
	*ReportStore
	*EscalationStore
	*EmployeeStore
}

func NewSink() *Sink {
	return &Sink{
		FeedbackStore:   NewFeedbackStore(),
		ReportStore:     NewReportStore(),
		EscalationStore: NewEscalationStore(),
		EmployeeStore:   NewEmployeeStore(),
	}
}
