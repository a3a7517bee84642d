package domain

// Turn is one answered question inside a chat session.
type Turn struct {
	Question   string    `json:"question"`
	Response   string    `json:"response"`
	Sentiment  Zone      `json:"sentiment"`
	Reason     string    `json:"reason"`
	Keywords   []string  `json:"keywords"`
	AnsweredAt Timestamp `json:"answered_at"`
}

// ChatSession is one question-answer interaction with an employee, from the
// first question to the final analysis. It lives only as long as the
// conversation; its durable trace is the feedback rows and the final report.
type ChatSession struct {
	ID         SessionID    `json:"id"`
	EmployeeID EmployeeID   `json:"employee_id"`
	State      SessionState `json:"state"`

	// Questions is fixed at creation. QuestionIndex is the cursor into it
	// and only ever moves forward.
	Questions     []string `json:"questions"`
	QuestionIndex int      `json:"question_index"`

	// CurrentMaxQuestions is revised after every answer (last write wins).
	CurrentMaxQuestions int `json:"current_max_questions"`

	History         []Turn          `json:"history"`
	SentimentCounts SentimentCounts `json:"sentiment_counts"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// CurrentQuestion returns the prompt awaiting an answer, if any.
func (s *ChatSession) CurrentQuestion() (string, bool) {
	if s.QuestionIndex < 0 || s.QuestionIndex >= len(s.Questions) {
		return "", false
	}
	return s.Questions[s.QuestionIndex], true
}

// Feedback is the durable record of a single answered turn.
type Feedback struct {
	SessionID  SessionID  `json:"session_id"`
	EmployeeID EmployeeID `json:"employee_id"`
	Question   string     `json:"question"`
	Response   string     `json:"response"`
	Sentiment  Zone       `json:"sentiment"`
	Reason     string     `json:"reason"`
	Keywords   []string   `json:"keywords"`
	CreatedAt  Timestamp  `json:"created_at"`
}
