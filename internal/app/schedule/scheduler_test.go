package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/vibe-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/vibe-agent/internal/app/report"
	"github.com/PabloGalante/vibe-agent/internal/app/schedule"
	"github.com/PabloGalante/vibe-agent/internal/domain"
)

var now = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

func TestSweepIdle(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	require.NoError(t, sessions.CreateSession(ctx, &domain.ChatSession{ID: "stale", UpdatedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, sessions.CreateSession(ctx, &domain.ChatSession{ID: "fresh", UpdatedAt: now.Add(-time.Minute)}))

	s := schedule.NewScheduler(sessions, nil, 2*time.Hour)
	s.SetClock(func() time.Time { return now })

	n, err := s.SweepIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = sessions.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = sessions.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSweepDisabledWithoutTTL(t *testing.T) {
	s := schedule.NewScheduler(memory.NewSessionStore(), nil, 0)
	n, err := s.SweepIdle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRemindDue(t *testing.T) {
	ctx := context.Background()
	sink := memory.NewSink()
	require.NoError(t, sink.SaveEmployee(ctx, &domain.EmployeeRecord{EmployeeID: "e1", NextChatDate: "2026-06-30"}))
	require.NoError(t, sink.SaveEmployee(ctx, &domain.EmployeeRecord{EmployeeID: "e2", NextChatDate: "2026-07-08"}))

	reports := report.NewService(sink)
	reports.SetClock(func() time.Time { return now })

	s := schedule.NewScheduler(memory.NewSessionStore(), reports, time.Hour)
	due, err := s.RemindDue(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, domain.EmployeeID("e1"), due[0].EmployeeID)
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := schedule.NewScheduler(memory.NewSessionStore(), nil, time.Hour)
	err := s.Start(context.Background(), "every now and then", "")
	assert.Error(t, err)
}

func TestStartAndStop(t *testing.T) {
	s := schedule.NewScheduler(memory.NewSessionStore(), nil, time.Hour)
	require.NoError(t, s.Start(context.Background(), "@every 1h", "0 9 * * *"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
