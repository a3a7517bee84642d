package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

func (s *Store) AppendFeedback(ctx context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return nil
	}
	keywords, err := json.Marshal(nonNil(fb.Keywords))
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	query := `INSERT INTO feedback (session_id, employee_id, question, response, sentiment, reason, keywords, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		string(fb.SessionID), string(fb.EmployeeID), fb.Question, fb.Response,
		string(fb.Sentiment), fb.Reason, string(keywords), millis(fb.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

func (s *Store) ListFeedbackByEmployee(ctx context.Context, employeeID domain.EmployeeID) ([]*domain.Feedback, error) {
	query := `SELECT session_id, employee_id, question, response, sentiment, reason, keywords, created_at
		FROM feedback WHERE employee_id = ? ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, query, string(employeeID))
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	out := []*domain.Feedback{}
	for rows.Next() {
		var (
			fb        domain.Feedback
			sessionID string
			empID     string
			sentiment string
			keywords  string
			created   int64
		)
		if err := rows.Scan(&sessionID, &empID, &fb.Question, &fb.Response, &sentiment, &fb.Reason, &keywords, &created); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		fb.SessionID = domain.SessionID(sessionID)
		fb.EmployeeID = domain.EmployeeID(empID)
		fb.Sentiment = domain.Zone(sentiment)
		fb.CreatedAt = fromMillis(created)
		if err := json.Unmarshal([]byte(keywords), &fb.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
		out = append(out, &fb)
	}
	return out, rows.Err()
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
