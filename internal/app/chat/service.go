package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PabloGalante/vibe-agent/internal/app/analysis"
	"github.com/PabloGalante/vibe-agent/internal/app/escalation"
	"github.com/PabloGalante/vibe-agent/internal/app/questions"
	"github.com/PabloGalante/vibe-agent/internal/app/sentiment"
	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// Question bounds applied after each answer.
const (
	negativeMaxQuestions = 12
	positiveMaxQuestions = 5
)

// ClosingMessages thank the employee once the final analysis is ready.
var ClosingMessages = []string{
	"Thank you for sharing your thoughts! Your feedback is incredibly valuable and helps us improve.",
	"We truly appreciate your candid feedback! Your insights will help shape a better workplace.",
	"Thank you for your thoughtful response! Your perspective matters greatly to us.",
	"We've received your feedback. Thank you for taking the time to share your thoughts with us!",
	"Your input is invaluable! Thank you for helping us understand what matters to you.",
}

// Service runs chat sessions. Turns for one session must not run
// concurrently; the caller serializes them.
type Service struct {
	analyzer *sentiment.Analyzer
	selector *questions.Selector
	builder  *analysis.Builder

	sessionStore  domain.SessionStore
	feedbackStore domain.FeedbackStore
	employees     domain.EmployeeStore

	now func() time.Time
}

// NewService wires the chat flow. sink may be nil, which turns feedback and
// employee bookkeeping off.
func NewService(
	analyzer *sentiment.Analyzer,
	selector *questions.Selector,
	builder *analysis.Builder,
	sessionStore domain.SessionStore,
	sink domain.Sink,
) *Service {
	s := &Service{
		analyzer:     analyzer,
		selector:     selector,
		builder:      builder,
		sessionStore: sessionStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
	if sink != nil {
		s.feedbackStore = sink
		s.employees = sink
	}
	return s
}

// SetClock replaces the service time source. The analysis builder keeps its own.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

type StartChatOutput struct {
	SessionID domain.SessionID
	Question  string
}

// StartChat opens a session for the employee and returns its first question.
func (s *Service) StartChat(ctx context.Context, employeeID domain.EmployeeID) (_ *StartChatOutput, err error) {
	ctx, span := observability.Tracer().Start(ctx, "chat.StartChat",
		trace.WithAttributes(attribute.String("employee_id", string(employeeID))))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(string(employeeID)) == "" {
		return nil, fmt.Errorf("%w: employee_id is required", domain.ErrInvalidInput)
	}

	log := observability.LoggerFromContext(ctx).With("employee_id", employeeID)
	log.Info("starting chat")

	qs := s.selector.Select()
	if len(qs) == 0 {
		return nil, errors.New("question bank is empty")
	}

	now := s.now()
	session := &domain.ChatSession{
		ID:                  domain.SessionID(uuid.NewString()),
		EmployeeID:          employeeID,
		State:               domain.StateAwaitingAnswer,
		Questions:           qs,
		QuestionIndex:       0,
		CurrentMaxQuestions: questions.DefaultMaxQuestions,
		History:             []domain.Turn{},
		SentimentCounts:     domain.NewSentimentCounts(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	s.touchEmployee(ctx, employeeID, now)
	observability.RecordSessionStarted()

	log.Info("chat started", "session_id", session.ID, "questions", len(qs))
	span.SetAttributes(attribute.String("session_id", string(session.ID)))

	return &StartChatOutput{
		SessionID: session.ID,
		Question:  qs[0],
	}, nil
}

// TurnResult carries either the next question or, once the session is
// complete, the final analysis and a closing message.
type TurnResult struct {
	SessionID      domain.SessionID
	NextQuestion   string
	FinalAnalysis  *domain.FinalAnalysis
	ClosingMessage string
}

func (r *TurnResult) Completed() bool {
	return r.FinalAnalysis != nil
}

// ProcessTurn records one answer and advances the session.
func (s *Service) ProcessTurn(ctx context.Context, sessionID domain.SessionID, message string) (_ *TurnResult, err error) {
	ctx, span := observability.Tracer().Start(ctx, "chat.ProcessTurn",
		trace.WithAttributes(attribute.String("session_id", string(sessionID))))
	defer func() { endSpan(span, err) }()

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"employee_id", session.EmployeeID,
	)

	question, ok := session.CurrentQuestion()
	if !ok {
		return nil, fmt.Errorf("%w: no pending question", domain.ErrSessionNotFound)
	}

	res := s.analyzer.Analyze(ctx, message)
	now := s.now()

	session.History = append(session.History, domain.Turn{
		Question:   question,
		Response:   message,
		Sentiment:  res.Zone,
		Reason:     res.Reason,
		Keywords:   res.Keywords,
		AnsweredAt: now,
	})
	session.SentimentCounts[res.Zone]++

	// Last write wins: a late happy answer can pull the bound below the index.
	switch {
	case res.Zone.IsNegative():
		session.CurrentMaxQuestions = negativeMaxQuestions
	case res.Zone.IsPositive():
		session.CurrentMaxQuestions = positiveMaxQuestions
	}

	s.saveFeedback(ctx, session, question, message, res, now)
	observability.RecordTurn(string(res.Zone))

	session.QuestionIndex++
	session.UpdatedAt = now

	log.Info("turn processed",
		"zone", res.Zone,
		"model", res.Model,
		"fallback", res.Fallback,
		"question_index", session.QuestionIndex,
		"max_questions", session.CurrentMaxQuestions,
	)

	if session.QuestionIndex >= session.CurrentMaxQuestions || session.QuestionIndex >= len(session.Questions) {
		return s.complete(ctx, session)
	}

	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	return &TurnResult{
		SessionID:    session.ID,
		NextQuestion: session.Questions[session.QuestionIndex],
	}, nil
}

func (s *Service) complete(ctx context.Context, session *domain.ChatSession) (*TurnResult, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)

	session.State = domain.StateCompleted
	final := s.builder.Build(ctx, session)

	// The completed session stays readable for escalation review until the
	// idle sweep removes it.
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to mark session completed", "error", err)
		observability.RecordPersistenceFailure("sessions")
	}
	observability.RecordSessionCompleted()

	log.Info("chat completed", "responses", final.ResponsesAnalyzed, "hr_escalation", final.HREscalation)

	return &TurnResult{
		SessionID:      session.ID,
		FinalAnalysis:  final,
		ClosingMessage: ClosingMessages[rand.IntN(len(ClosingMessages))],
	}, nil
}

// GetEscalationScore scores a session, in progress or completed. It has no
// side effects, so repeated calls agree.
func (s *Service) GetEscalationScore(ctx context.Context, sessionID domain.SessionID) (escalation.Result, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return escalation.Result{}, err
	}
	return s.builder.Score(session), nil
}

// AbandonChat drops a session that is still awaiting answers. Answers already
// given stay in the feedback store; no final analysis is built.
func (s *Service) AbandonChat(ctx context.Context, sessionID domain.SessionID) error {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := s.sessionStore.DeleteSession(ctx, session.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	observability.LoggerFromContext(ctx).Info("chat abandoned",
		"session_id", session.ID,
		"employee_id", session.EmployeeID,
		"answered", session.QuestionIndex,
	)
	return nil
}

func (s *Service) activeSession(ctx context.Context, id domain.SessionID) (*domain.ChatSession, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}

	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State == domain.StateCompleted {
		return nil, fmt.Errorf("%w: session already completed", domain.ErrSessionNotFound)
	}
	return session, nil
}

func (s *Service) saveFeedback(ctx context.Context, session *domain.ChatSession, question, message string, res sentiment.Result, now time.Time) {
	if s.feedbackStore == nil {
		return
	}

	fb := &domain.Feedback{
		SessionID:  session.ID,
		EmployeeID: session.EmployeeID,
		Question:   question,
		Response:   message,
		Sentiment:  res.Zone,
		Reason:     res.Reason,
		Keywords:   res.Keywords,
		CreatedAt:  now,
	}
	if err := s.feedbackStore.AppendFeedback(ctx, fb); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to persist feedback",
			"session_id", session.ID,
			"error", fmt.Errorf("%w: %w", domain.ErrPersistence, err),
		)
		observability.RecordPersistenceFailure("feedback")
	}
}

// touchEmployee records the chat start on the employee's account.
func (s *Service) touchEmployee(ctx context.Context, employeeID domain.EmployeeID, now time.Time) {
	if s.employees == nil {
		return
	}
	log := observability.LoggerFromContext(ctx)

	rec, err := s.employees.GetEmployee(ctx, employeeID)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		rec = &domain.EmployeeRecord{EmployeeID: employeeID}
	} else if err != nil {
		log.Error("failed to load employee record", "error", err)
		observability.RecordPersistenceFailure("employees")
		return
	}

	rec.LastChatDate = &now
	rec.UpdatedAt = now
	if err := s.employees.SaveEmployee(ctx, rec); err != nil {
		log.Error("failed to save employee record", "error", err)
		observability.RecordPersistenceFailure("employees")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
