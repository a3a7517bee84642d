// Package sqlstore is the relational domain.Sink. The same SQL runs on
// MySQL and SQLite: placeholders are "?", timestamps are epoch millis and
// days are YYYY-MM-DD strings.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

type Store struct {
	db     *sql.DB
	driver string
}

// Open connects with driver "mysql" or "sqlite" and creates missing tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver != "mysql" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if dsn == "" {
		return nil, errors.New("sql dsn is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// One writer at a time keeps SQLite away from SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) autoID() string {
	if s.driver == "mysql" {
		return "id BIGINT AUTO_INCREMENT PRIMARY KEY"
	}
	return "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (s *Store) initSchema(ctx context.Context) error {
	observability.LoggerFromContext(ctx).Info("initializing schema", "driver", s.driver)

	tables := []struct{ name, ddl string }{
		{"feedback", `
		CREATE TABLE IF NOT EXISTS feedback (
			` + s.autoID() + `,
			session_id VARCHAR(64) NOT NULL,
			employee_id VARCHAR(255) NOT NULL,
			question TEXT NOT NULL,
			response TEXT NOT NULL,
			sentiment VARCHAR(64) NOT NULL,
			reason TEXT NOT NULL,
			keywords TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`},
		{"escalations", `
		CREATE TABLE IF NOT EXISTS escalations (
			` + s.autoID() + `,
			employee_id VARCHAR(255) NOT NULL,
			session_id VARCHAR(64) NOT NULL,
			reason TEXT NOT NULL,
			score DOUBLE NOT NULL,
			day VARCHAR(10) NOT NULL,
			created_at BIGINT NOT NULL
		)`},
		{"analyses", `
		CREATE TABLE IF NOT EXISTS analyses (
			employee_id VARCHAR(255) PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL,
			payload TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`},
		{"vibe_entries", `
		CREATE TABLE IF NOT EXISTS vibe_entries (
			` + s.autoID() + `,
			employee_id VARCHAR(255) NOT NULL,
			day VARCHAR(10) NOT NULL,
			mood_score INT NOT NULL,
			comments TEXT NOT NULL
		)`},
		{"employees", `
		CREATE TABLE IF NOT EXISTS employees (
			employee_id VARCHAR(255) PRIMARY KEY,
			current_mood VARCHAR(64) NOT NULL,
			last_chat_at BIGINT NULL,
			next_chat_date VARCHAR(10) NOT NULL,
			hr_escalation INT NOT NULL,
			escalation_reason TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`},
	}

	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}
	return nil
}

// upsert replaces the row keyed by employee id inside one transaction.
func (s *Store) upsert(ctx context.Context, table string, employeeID domain.EmployeeID, insert string, args ...any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE employee_id = ?", string(employeeID)); err != nil {
		return fmt.Errorf("failed to clear %s row: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("failed to insert %s row: %w", table, err)
	}
	return tx.Commit()
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
