package domain

import "time"

// FinalAnalysis is the report produced once a session completes.
// It is immutable after it is built.
type FinalAnalysis struct {
	SessionID             SessionID       `json:"session_id"`
	EmployeeID            EmployeeID      `json:"employee_id"`
	SentimentDistribution SentimentCounts `json:"sentiment_distribution"`
	KeyThemes             []string        `json:"key_themes"`
	TopKeywords           []string        `json:"top_keywords"`
	OverallAssessment     Zone            `json:"overall_assessment"`
	NextInteraction       string          `json:"next_interaction"`
	ResponsesAnalyzed     int             `json:"responses_analyzed"`
	HREscalation          bool            `json:"hr_escalation"`
	EscalationReason      string          `json:"escalation_reason"`
	MoodExplanation       string          `json:"mood_explanation"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Escalation is an HR notification raised for an employee.
type Escalation struct {
	EmployeeID EmployeeID `json:"employee_id"`
	SessionID  SessionID  `json:"session_id"`
	Reason     string     `json:"escalation_reason"`
	Score      float64    `json:"score"`
	Date       string     `json:"date"`
	CreatedAt  time.Time  `json:"created_at"`
}

// VibeEntry is one point on an employee's mood timeline.
type VibeEntry struct {
	EmployeeID EmployeeID `json:"employee_id"`
	Date       string     `json:"date"`
	MoodScore  int        `json:"mood_score"`
	Comments   string     `json:"comments"`
}

// EmployeeRecord is the account-level view HR works from.
type EmployeeRecord struct {
	EmployeeID       EmployeeID `json:"employee_id"`
	CurrentMood      Zone       `json:"current_mood,omitempty"`
	LastChatDate     *time.Time `json:"last_chat_date,omitempty"`
	NextChatDate     string     `json:"next_chat_date,omitempty"`
	HREscalation     bool       `json:"hr_escalation"`
	EscalationReason string     `json:"escalation_reason,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
