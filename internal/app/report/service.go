package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

const (
	defaultEscalationLimit = 50
	defaultVibeLimit       = 30
)

// Service holds the HR review reads over the durable sink.
type Service struct {
	sink domain.Sink
	now  func() time.Time
}

// NewService creates a report service from a storage sink.
func NewService(sink domain.Sink) *Service {
	return &Service{
		sink: sink,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// EmployeeReport is the HR view of one employee.
type EmployeeReport struct {
	Employee *domain.EmployeeRecord `json:"employee,omitempty"`
	Latest   *domain.FinalAnalysis  `json:"latest_analysis"`
	Vibes    []*domain.VibeEntry    `json:"vibe_meter"`
}

// LatestReport returns the employee's most recent analysis with the vibe
// timeline and account record.
func (s *Service) LatestReport(ctx context.Context, employeeID domain.EmployeeID) (*EmployeeReport, error) {
	if strings.TrimSpace(string(employeeID)) == "" {
		return nil, fmt.Errorf("%w: employee_id is required", domain.ErrInvalidInput)
	}

	log := observability.LoggerFromContext(ctx).With("employee_id", employeeID)

	latest, err := s.sink.GetLatestAnalysis(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	vibes, err := s.sink.ListVibeEntries(ctx, employeeID, defaultVibeLimit)
	if err != nil {
		log.Error("failed to list vibe entries", "error", err)
		return nil, err
	}

	// The account record is optional: reports can predate it.
	rec, err := s.sink.GetEmployee(ctx, employeeID)
	if err != nil {
		log.Warn("employee record unavailable", "error", err)
		rec = nil
	}

	return &EmployeeReport{Employee: rec, Latest: latest, Vibes: vibes}, nil
}

// Escalations returns the last `limit` escalations, newest first.
// If limit <= 0, a reasonable default value is used.
func (s *Service) Escalations(ctx context.Context, limit int) ([]*domain.Escalation, error) {
	if limit <= 0 {
		limit = defaultEscalationLimit
	}
	out, err := s.sink.ListEscalations(ctx, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Escalation{}
	}
	return out, nil
}

// Due lists employees whose next check-in is today or overdue.
func (s *Service) Due(ctx context.Context) ([]*domain.EmployeeRecord, error) {
	today := s.now().Format(domain.DateLayout)
	out, err := s.sink.ListDue(ctx, today)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.EmployeeRecord{}
	}
	return out, nil
}
