package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// HistoryMessage is one answered question as shown to HR.
type HistoryMessage struct {
	Question  string      `json:"question"`
	Response  string      `json:"response"`
	Sentiment domain.Zone `json:"sentiment"`
	Reason    string      `json:"reason,omitempty"`
	Keywords  []string    `json:"keywords,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionHistory groups the stored turns of one session.
type SessionHistory struct {
	SessionID domain.SessionID `json:"session_id"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Messages  []HistoryMessage `json:"messages"`
}

// ChatHistory returns the employee's stored turns grouped by session, newest
// session first. A non-empty day (YYYY-MM-DD, UTC) keeps only that day.
func (s *Service) ChatHistory(ctx context.Context, employeeID domain.EmployeeID, day string) ([]SessionHistory, error) {
	if strings.TrimSpace(string(employeeID)) == "" {
		return nil, fmt.Errorf("%w: employee_id is required", domain.ErrInvalidInput)
	}
	if day != "" {
		if _, err := time.Parse(domain.DateLayout, day); err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
	}
	if s.feedbackStore == nil {
		return []SessionHistory{}, nil
	}

	rows, err := s.feedbackStore.ListFeedbackByEmployee(ctx, employeeID)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list feedback", "employee_id", employeeID, "error", err)
		return nil, err
	}

	var order []domain.SessionID
	bySession := make(map[domain.SessionID]*SessionHistory)
	for _, fb := range rows {
		if day != "" && dayOf(fb.CreatedAt) != day {
			continue
		}

		h, ok := bySession[fb.SessionID]
		if !ok {
			h = &SessionHistory{
				SessionID: fb.SessionID,
				StartTime: fb.CreatedAt,
				EndTime:   fb.CreatedAt,
			}
			bySession[fb.SessionID] = h
			order = append(order, fb.SessionID)
		}

		h.Messages = append(h.Messages, HistoryMessage{
			Question:  fb.Question,
			Response:  fb.Response,
			Sentiment: fb.Sentiment,
			Reason:    fb.Reason,
			Keywords:  fb.Keywords,
			Timestamp: fb.CreatedAt,
		})
		if fb.CreatedAt.Before(h.StartTime) {
			h.StartTime = fb.CreatedAt
		}
		if fb.CreatedAt.After(h.EndTime) {
			h.EndTime = fb.CreatedAt
		}
	}

	out := make([]SessionHistory, 0, len(order))
	for _, id := range order {
		out = append(out, *bySession[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// ChatDates returns the distinct UTC days with stored turns, oldest first.
func (s *Service) ChatDates(ctx context.Context, employeeID domain.EmployeeID) ([]string, error) {
	if strings.TrimSpace(string(employeeID)) == "" {
		return nil, fmt.Errorf("%w: employee_id is required", domain.ErrInvalidInput)
	}
	if s.feedbackStore == nil {
		return []string{}, nil
	}

	rows, err := s.feedbackStore.ListFeedbackByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	dates := []string{}
	for _, fb := range rows {
		d := dayOf(fb.CreatedAt)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// ClearEscalation resets the employee's HR flag.
func (s *Service) ClearEscalation(ctx context.Context, employeeID domain.EmployeeID) (*domain.EmployeeRecord, error) {
	if strings.TrimSpace(string(employeeID)) == "" {
		return nil, fmt.Errorf("%w: employee_id is required", domain.ErrInvalidInput)
	}
	if s.employees == nil {
		return nil, domain.ErrEmployeeNotFound
	}

	log := observability.LoggerFromContext(ctx).With("employee_id", employeeID)

	rec, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	rec.HREscalation = false
	rec.EscalationReason = ""
	rec.UpdatedAt = s.now()

	if err := s.employees.SaveEmployee(ctx, rec); err != nil {
		log.Error("failed to clear escalation", "error", err)
		return nil, err
	}

	log.Info("hr escalation cleared")
	return rec, nil
}

func dayOf(t time.Time) string {
	return t.UTC().Format(domain.DateLayout)
}
