// Package schedule runs the periodic housekeeping jobs: evicting idle chat
// sessions and announcing employees due for a check-in.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// DueLister lists employees whose next check-in has arrived.
type DueLister interface {
	Due(ctx context.Context) ([]*domain.EmployeeRecord, error)
}

type Scheduler struct {
	sessions domain.SessionStore
	due      DueLister
	idleTTL  time.Duration
	now      func() time.Time

	cron *cron.Cron
}

// NewScheduler builds a scheduler. due may be nil, which disables reminders.
func NewScheduler(sessions domain.SessionStore, due DueLister, idleTTL time.Duration) *Scheduler {
	return &Scheduler{
		sessions: sessions,
		due:      due,
		idleTTL:  idleTTL,
		now:      func() time.Time { return time.Now().UTC() },
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SweepIdle evicts sessions untouched for longer than the idle TTL.
func (s *Scheduler) SweepIdle(ctx context.Context) (int, error) {
	if s.idleTTL <= 0 {
		return 0, nil
	}
	n, err := s.sessions.DeleteIdle(ctx, s.now().Add(-s.idleTTL))
	if err != nil {
		return 0, fmt.Errorf("sweeping idle sessions: %w", err)
	}
	if n > 0 {
		observability.RecordSessionsEvicted(n)
	}
	return n, nil
}

// RemindDue logs one reminder per employee due for a check-in.
func (s *Scheduler) RemindDue(ctx context.Context) ([]*domain.EmployeeRecord, error) {
	if s.due == nil {
		return nil, nil
	}
	due, err := s.due.Due(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing due check-ins: %w", err)
	}

	log := observability.LoggerFromContext(ctx)
	for _, rec := range due {
		log.Info("check-in due",
			"employee_id", rec.EmployeeID,
			"next_chat_date", rec.NextChatDate,
			"current_mood", rec.CurrentMood,
			"hr_escalation", rec.HREscalation,
		)
	}
	return due, nil
}

// Start registers both jobs and starts the cron loop. An empty spec skips
// that job.
func (s *Scheduler) Start(ctx context.Context, sweepSpec, reminderSpec string) error {
	log := observability.LoggerFromContext(ctx)

	if sweepSpec != "" {
		_, err := s.cron.AddFunc(sweepSpec, func() {
			n, err := s.SweepIdle(ctx)
			if err != nil {
				log.Error("idle sweep failed", "error", err)
				return
			}
			log.Info("idle sweep finished", "evicted", n)
		})
		if err != nil {
			return fmt.Errorf("invalid sweep schedule %q: %w", sweepSpec, err)
		}
	}

	if reminderSpec != "" {
		_, err := s.cron.AddFunc(reminderSpec, func() {
			due, err := s.RemindDue(ctx)
			if err != nil {
				log.Error("check-in reminders failed", "error", err)
				return
			}
			log.Info("check-in reminders sent", "count", len(due))
		})
		if err != nil {
			return fmt.Errorf("invalid reminder schedule %q: %w", reminderSpec, err)
		}
	}

	s.cron.Start()
	log.Info("scheduler started", "sweep", sweepSpec, "reminders", reminderSpec)
	return nil
}

// Stop halts the cron loop and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
