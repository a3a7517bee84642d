package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// SaveAnalysis keeps one analysis per employee, the latest.
func (s *Store) SaveAnalysis(ctx context.Context, a *domain.FinalAnalysis) error {
	if a == nil {
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	return s.upsert(ctx, "analyses", a.EmployeeID,
		`INSERT INTO analyses (employee_id, session_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		string(a.EmployeeID), string(a.SessionID), string(payload), millis(a.CreatedAt),
	)
}

func (s *Store) GetLatestAnalysis(ctx context.Context, employeeID domain.EmployeeID) (*domain.FinalAnalysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM analyses WHERE employee_id = ?`, string(employeeID)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	var a domain.FinalAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &a, nil
}

func (s *Store) AppendVibeEntry(ctx context.Context, e *domain.VibeEntry) error {
	if e == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vibe_entries (employee_id, day, mood_score, comments) VALUES (?, ?, ?, ?)`,
		string(e.EmployeeID), e.Date, e.MoodScore, e.Comments,
	)
	if err != nil {
		return fmt.Errorf("failed to save vibe entry: %w", err)
	}
	return nil
}

// ListVibeEntries returns the last `limit` entries, oldest first.
// If limit <= 0, returns all.
func (s *Store) ListVibeEntries(ctx context.Context, employeeID domain.EmployeeID, limit int) ([]*domain.VibeEntry, error) {
	query := `SELECT employee_id, day, mood_score, comments FROM vibe_entries WHERE employee_id = ? ORDER BY id DESC`
	args := []any{string(employeeID)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vibe entries: %w", err)
	}
	defer rows.Close()

	var newestFirst []*domain.VibeEntry
	for rows.Next() {
		var (
			e     domain.VibeEntry
			empID string
		)
		if err := rows.Scan(&empID, &e.Date, &e.MoodScore, &e.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan vibe entry: %w", err)
		}
		e.EmployeeID = domain.EmployeeID(empID)
		newestFirst = append(newestFirst, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.VibeEntry, len(newestFirst))
	for i, e := range newestFirst {
		out[len(newestFirst)-1-i] = e
	}
	return out, nil
}

func (s *Store) RecordEscalation(ctx context.Context, esc *domain.Escalation) error {
	if esc == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO escalations (employee_id, session_id, reason, score, day, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(esc.EmployeeID), string(esc.SessionID), esc.Reason, esc.Score, esc.Date, millis(esc.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save escalation: %w", err)
	}
	return nil
}

// ListEscalations returns the most recent `limit` escalations, newest first.
func (s *Store) ListEscalations(ctx context.Context, limit int) ([]*domain.Escalation, error) {
	query := `SELECT employee_id, session_id, reason, score, day, created_at FROM escalations ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalations: %w", err)
	}
	defer rows.Close()

	out := []*domain.Escalation{}
	for rows.Next() {
		var (
			esc       domain.Escalation
			empID     string
			sessionID string
			created   int64
		)
		if err := rows.Scan(&empID, &sessionID, &esc.Reason, &esc.Score, &esc.Date, &created); err != nil {
			return nil, fmt.Errorf("failed to scan escalation: %w", err)
		}
		esc.EmployeeID = domain.EmployeeID(empID)
		esc.SessionID = domain.SessionID(sessionID)
		esc.CreatedAt = fromMillis(created)
		out = append(out, &esc)
	}
	return out, rows.Err()
}
