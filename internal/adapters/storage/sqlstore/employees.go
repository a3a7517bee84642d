package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

const employeeColumns = `employee_id, current_mood, last_chat_at, next_chat_date, hr_escalation, escalation_reason, updated_at`

func (s *Store) GetEmployee(ctx context.Context, id domain.EmployeeID) (*domain.EmployeeRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = ?`, string(id))
	rec, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	return rec, nil
}

func (s *Store) SaveEmployee(ctx context.Context, rec *domain.EmployeeRecord) error {
	if rec == nil {
		return nil
	}
	var lastChat sql.NullInt64
	if rec.LastChatDate != nil {
		lastChat = sql.NullInt64{Int64: rec.LastChatDate.UnixMilli(), Valid: true}
	}
	flag := 0
	if rec.HREscalation {
		flag = 1
	}
	return s.upsert(ctx, "employees", rec.EmployeeID,
		`INSERT INTO employees (`+employeeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(rec.EmployeeID), string(rec.CurrentMood), lastChat, rec.NextChatDate,
		flag, rec.EscalationReason, millis(rec.UpdatedAt),
	)
}

// ListDue returns employees whose next chat date is on or before day,
// sorted by date then id.
func (s *Store) ListDue(ctx context.Context, day string) ([]*domain.EmployeeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		WHERE next_chat_date <> '' AND next_chat_date <= ?
		ORDER BY next_chat_date ASC, employee_id ASC`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query due employees: %w", err)
	}
	defer rows.Close()

	out := []*domain.EmployeeRecord{}
	for rows.Next() {
		rec, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (*domain.EmployeeRecord, error) {
	var (
		rec      domain.EmployeeRecord
		id       string
		mood     string
		lastChat sql.NullInt64
		flag     int
		updated  int64
	)
	if err := r.Scan(&id, &mood, &lastChat, &rec.NextChatDate, &flag, &rec.EscalationReason, &updated); err != nil {
		return nil, err
	}
	rec.EmployeeID = domain.EmployeeID(id)
	rec.CurrentMood = domain.Zone(mood)
	rec.HREscalation = flag != 0
	rec.UpdatedAt = fromMillis(updated)
	if lastChat.Valid {
		t := fromMillis(lastChat.Int64)
		rec.LastChatDate = &t
	}
	return &rec, nil
}
