package domain

import (
	"context"
	"time"
)

// SentimentLabel is the binary output of an external text classifier.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "POSITIVE"
	LabelNegative SentimentLabel = "NEGATIVE"
)

// SentimentJudgment is a label with its confidence in [0,1].
type SentimentJudgment struct {
	Label SentimentLabel `json:"label"`
	Score float64        `json:"score"`
}

// Valid reports whether the judgment can be fed to the zone mapping.
func (j SentimentJudgment) Valid() bool {
	if j.Label != LabelPositive && j.Label != LabelNegative {
		return false
	}
	return j.Score >= 0 && j.Score <= 1
}

// SentimentModel defines how the core obtains a binary sentiment judgment.
type SentimentModel interface {
	Name() string
	Classify(ctx context.Context, text string) (SentimentJudgment, error)
}

// SessionStore holds in-flight chat sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *ChatSession) error
	UpdateSession(ctx context.Context, session *ChatSession) error
	GetSession(ctx context.Context, id SessionID) (*ChatSession, error)
	DeleteSession(ctx context.Context, id SessionID) error
	// DeleteIdle evicts sessions not updated since before and returns how many went.
	DeleteIdle(ctx context.Context, before time.Time) (int, error)
}

// FeedbackStore persists answered turns.
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, fb *Feedback) error
	// ListFeedbackByEmployee returns turns in chronological order.
	ListFeedbackByEmployee(ctx context.Context, employeeID EmployeeID) ([]*Feedback, error)
}

// EscalationStore keeps the HR escalation log.
type EscalationStore interface {
	RecordEscalation(ctx context.Context, esc *Escalation) error
	// ListEscalations returns the most recent `limit` escalations, newest first.
	ListEscalations(ctx context.Context, limit int) ([]*Escalation, error)
}

// EscalationNotifier pushes escalations to whoever acts on them.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, esc *Escalation) error
}

// ReportStore keeps final analyses and the vibe meter.
type ReportStore interface {
	// SaveAnalysis replaces the latest analysis for the employee.
	SaveAnalysis(ctx context.Context, analysis *FinalAnalysis) error
	GetLatestAnalysis(ctx context.Context, employeeID EmployeeID) (*FinalAnalysis, error)
	AppendVibeEntry(ctx context.Context, entry *VibeEntry) error
	ListVibeEntries(ctx context.Context, employeeID EmployeeID, limit int) ([]*VibeEntry, error)
}

// EmployeeStore keeps account records: mood, next contact and escalation flag.
type EmployeeStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*EmployeeRecord, error)
	SaveEmployee(ctx context.Context, rec *EmployeeRecord) error
	// ListDue returns employees whose next chat date is on or before day (YYYY-MM-DD).
	ListDue(ctx context.Context, day string) ([]*EmployeeRecord, error)
}

// Sink bundles every durable collaborator a storage backend provides.
type Sink interface {
	FeedbackStore
	EscalationStore
	ReportStore
	EmployeeStore
}
