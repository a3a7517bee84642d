package chat_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/vibe-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/vibe-agent/internal/app/analysis"
	"github.com/PabloGalante/vibe-agent/internal/app/chat"
	"github.com/PabloGalante/vibe-agent/internal/app/questions"
	"github.com/PabloGalante/vibe-agent/internal/app/sentiment"
	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// scriptedModel returns queued judgments in order, repeating the last one.
type scriptedModel struct {
	mu    sync.Mutex
	queue []domain.SentimentJudgment
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Classify(context.Context, string) (domain.SentimentJudgment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := m.queue[0]
	if len(m.queue) > 1 {
		m.queue = m.queue[1:]
	}
	return j, nil
}

func repeat(j domain.SentimentJudgment, n int) []domain.SentimentJudgment {
	out := make([]domain.SentimentJudgment, n)
	for i := range out {
		out[i] = j
	}
	return out
}

var (
	happy = domain.SentimentJudgment{Label: domain.LabelPositive, Score: 0.95}
	sad   = domain.SentimentJudgment{Label: domain.LabelNegative, Score: 0.95}
)

// failingFeedback breaks only the feedback write.
type failingFeedback struct {
	*memory.Sink
}

func (failingFeedback) AppendFeedback(context.Context, *domain.Feedback) error {
	return errors.New("disk full")
}

type fixture struct {
	svc      *chat.Service
	sessions *memory.SessionStore
	sink     *memory.Sink
}

func flatBank(n int) []questions.Category {
	bank := make([]questions.Category, n)
	for i := range bank {
		bank[i] = questions.Category{
			Name:      fmt.Sprintf("c%d", i),
			Questions: []string{fmt.Sprintf("question %d?", i)},
		}
	}
	return bank
}

func newFixture(t *testing.T, bank []questions.Category, sink domain.Sink, script ...domain.SentimentJudgment) fixture {
	t.Helper()

	lex := sentiment.DefaultLexicon()
	model := &scriptedModel{queue: script}
	sessions := memory.NewSessionStore()

	builder := analysis.NewBuilder(sink, nil, lex.CriticalTopics)
	svc := chat.NewService(
		sentiment.NewAnalyzer(model, lex, 0),
		questions.NewSelector(bank, rand.New(rand.NewPCG(1, 2))),
		builder,
		sessions,
		sink,
	)

	f := fixture{svc: svc, sessions: sessions}
	if ms, ok := sink.(*memory.Sink); ok {
		f.sink = ms
	}
	return f
}

func TestStartChatRequiresEmployee(t *testing.T) {
	f := newFixture(t, questions.Bank, memory.NewSink(), happy)

	_, err := f.svc.StartChat(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStartChatCreatesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions.Bank, memory.NewSink(), happy)

	out, err := f.svc.StartChat(ctx, "emp-1")
	require.NoError(t, err)
	require.NotEmpty(t, out.SessionID)

	sess, err := f.sessions.GetSession(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingAnswer, sess.State)
	assert.Equal(t, questions.DefaultMaxQuestions, sess.CurrentMaxQuestions)
	assert.Equal(t, sess.Questions[0], out.Question)
	assert.Zero(t, sess.SentimentCounts.Total())

	rec, err := f.sink.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.NotNil(t, rec.LastChatDate)
}

func TestHappySessionEndsAfterFiveTurns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, flatBank(15), memory.NewSink(), happy)

	out, err := f.svc.StartChat(ctx, "emp-1")
	require.NoError(t, err)

	var res *chat.TurnResult
	for i := 1; i <= 5; i++ {
		res, err = f.svc.ProcessTurn(ctx, out.SessionID, "I love working here")
		require.NoError(t, err)
		if i < 5 {
			require.False(t, res.Completed(), "turn %d", i)
			require.NotEmpty(t, res.NextQuestion)
		}
	}

	require.True(t, res.Completed())
	assert.Equal(t, 5, res.FinalAnalysis.ResponsesAnalyzed)
	assert.Equal(t, 5, res.FinalAnalysis.SentimentDistribution[domain.ZoneHappy])
	assert.Equal(t, domain.ZoneHappy, res.FinalAnalysis.OverallAssessment)
	assert.Contains(t, chat.ClosingMessages, res.ClosingMessage)

	_, err = f.svc.ProcessTurn(ctx, out.SessionID, "one more thing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	first, err := f.svc.GetEscalationScore(ctx, out.SessionID)
	require.NoError(t, err)
	second, err := f.svc.GetEscalationScore(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.False(t, first.NeedsEscalation)
}

func TestCountsTrackHistoryAndIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions.Bank, memory.NewSink(), sad)

	out, err := f.svc.StartChat(ctx, "emp-2")
	require.NoError(t, err)

	sess, _ := f.sessions.GetSession(ctx, out.SessionID)
	total := len(sess.Questions)
	want := total
	if want > 12 {
		want = 12
	}

	for turn := 1; ; turn++ {
		res, err := f.svc.ProcessTurn(ctx, out.SessionID, "I am exhausted")
		require.NoError(t, err)

		sess, err := f.sessions.GetSession(ctx, out.SessionID)
		require.NoError(t, err)
		require.Equal(t, len(sess.History), sess.SentimentCounts.Total())
		require.Equal(t, len(sess.History), sess.QuestionIndex)
		require.Equal(t, 12, sess.CurrentMaxQuestions)

		if res.Completed() {
			assert.Equal(t, want, turn)
			assert.Equal(t, domain.StateCompleted, sess.State)
			assert.True(t, res.FinalAnalysis.HREscalation)
			break
		}
		require.Less(t, turn, total)
	}
}

func TestLateHappyAnswerShrinksBound(t *testing.T) {
	ctx := context.Background()
	script := append(repeat(sad, 6), happy)
	f := newFixture(t, flatBank(10), memory.NewSink(), script...)

	out, err := f.svc.StartChat(ctx, "emp-3")
	require.NoError(t, err)

	for i := 1; i <= 6; i++ {
		res, err := f.svc.ProcessTurn(ctx, out.SessionID, "bad day")
		require.NoError(t, err)
		require.False(t, res.Completed())
	}

	res, err := f.svc.ProcessTurn(ctx, out.SessionID, "actually a good day")
	require.NoError(t, err)
	require.True(t, res.Completed())
	assert.Equal(t, 7, res.FinalAnalysis.ResponsesAnalyzed)
}

func TestFeedbackFailureDoesNotAbortTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, flatBank(10), failingFeedback{memory.NewSink()}, happy)

	out, err := f.svc.StartChat(ctx, "emp-4")
	require.NoError(t, err)

	res, err := f.svc.ProcessTurn(ctx, out.SessionID, "great")
	require.NoError(t, err)
	assert.NotEmpty(t, res.NextQuestion)

	sess, _ := f.sessions.GetSession(ctx, out.SessionID)
	assert.Equal(t, 1, sess.QuestionIndex)
}

func TestProcessTurnUnknownSession(t *testing.T) {
	f := newFixture(t, questions.Bank, nil, happy)

	_, err := f.svc.ProcessTurn(context.Background(), "nope", "hello")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = f.svc.ProcessTurn(context.Background(), "", "hello")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAbandonChatDropsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, flatBank(15), memory.NewSink(), happy)

	out, err := f.svc.StartChat(ctx, "emp-1")
	require.NoError(t, err)
	_, err = f.svc.ProcessTurn(ctx, out.SessionID, "I love working here")
	require.NoError(t, err)

	require.NoError(t, f.svc.AbandonChat(ctx, out.SessionID))

	_, err = f.sessions.GetSession(ctx, out.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.AbandonChat(ctx, out.SessionID), domain.ErrSessionNotFound)

	fb, err := f.sink.ListFeedbackByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, fb, 1)
}

func TestAbandonChatRejectsCompletedSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, flatBank(15), memory.NewSink(), happy)

	out, err := f.svc.StartChat(ctx, "emp-1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.svc.ProcessTurn(ctx, out.SessionID, "I love working here")
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.AbandonChat(ctx, out.SessionID), domain.ErrSessionNotFound)
	_, err = f.sessions.GetSession(ctx, out.SessionID)
	assert.NoError(t, err)
}

func TestHistoryDatesAndClearEscalation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, flatBank(3), memory.NewSink(), sad)

	day1 := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	run := func(at time.Time) domain.SessionID {
		f.svc.SetClock(func() time.Time { return at })
		out, err := f.svc.StartChat(ctx, "emp-5")
		require.NoError(t, err)
		for {
			res, err := f.svc.ProcessTurn(ctx, out.SessionID, "the stress is unbearable")
			require.NoError(t, err)
			if res.Completed() {
				return out.SessionID
			}
		}
	}
	first := run(day1)
	second := run(day2)

	history, err := f.svc.ChatHistory(ctx, "emp-5", "")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second, history[0].SessionID)
	assert.Equal(t, first, history[1].SessionID)
	assert.Len(t, history[1].Messages, 3)
	assert.Equal(t, "Stress-related issues", history[1].Messages[0].Reason)

	filtered, err := f.svc.ChatHistory(ctx, "emp-5", "2026-05-04")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first, filtered[0].SessionID)

	_, err = f.svc.ChatHistory(ctx, "emp-5", "May 4th")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dates, err := f.svc.ChatDates(ctx, "emp-5")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-05-04", "2026-05-05"}, dates)

	rec, err := f.sink.GetEmployee(ctx, "emp-5")
	require.NoError(t, err)
	require.True(t, rec.HREscalation)

	cleared, err := f.svc.ClearEscalation(ctx, "emp-5")
	require.NoError(t, err)
	assert.False(t, cleared.HREscalation)
	assert.Empty(t, cleared.EscalationReason)

	_, err = f.svc.ClearEscalation(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}
