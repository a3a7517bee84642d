// Package firestore is the document-database domain.Sink used in GCP mode.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

// NewStore creates a Firestore store for the given project (VIBE_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) feedbackCol() *firestore.CollectionRef {
	return s.client.Collection("feedback")
}

func (s *Store) escalationsCol() *firestore.CollectionRef {
	return s.client.Collection("hr_escalations")
}

func (s *Store) analysesCol() *firestore.CollectionRef {
	return s.client.Collection("analysis_reports")
}

func (s *Store) vibesCol() *firestore.CollectionRef {
	return s.client.Collection("vibe_meter")
}

func (s *Store) employeesCol() *firestore.CollectionRef {
	return s.client.Collection("employees")
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// collect drains a query iterator, decoding each snapshot with decode.
func collect(iter *firestore.DocumentIterator, op string, decode func(*firestore.DocumentSnapshot) error) error {
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return fmt.Errorf("firestore %s: %w", op, err)
		}
		if err := decode(snap); err != nil {
			return fmt.Errorf("firestore %s decode: %w", op, err)
		}
	}
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type feedbackDoc struct {
	SessionID  string    `firestore:"session_id"`
	EmployeeID string    `firestore:"employee_id"`
	Question   string    `firestore:"question"`
	Response   string    `firestore:"response"`
	Sentiment  string    `firestore:"sentiment"`
	Reason     string    `firestore:"reason"`
	Keywords   []string  `firestore:"keywords"`
	CreatedAt  time.Time `firestore:"created_at"`
}

type escalationDoc struct {
	EmployeeID string    `firestore:"employee_id"`
	SessionID  string    `firestore:"session_id"`
	Reason     string    `firestore:"escalation_reason"`
	Score      float64   `firestore:"score"`
	Date       string    `firestore:"date"`
	CreatedAt  time.Time `firestore:"created_at"`
}

type analysisDoc struct {
	SessionID             string         `firestore:"session_id"`
	EmployeeID            string         `firestore:"employee_id"`
	SentimentDistribution map[string]int `firestore:"sentiment_distribution"`
	KeyThemes             []string       `firestore:"key_themes"`
	TopKeywords           []string       `firestore:"top_keywords"`
	OverallAssessment     string         `firestore:"overall_assessment"`
	NextInteraction       string         `firestore:"next_interaction"`
	ResponsesAnalyzed     int            `firestore:"responses_analyzed"`
	HREscalation          bool           `firestore:"hr_escalation"`
	EscalationReason      string         `firestore:"escalation_reason"`
	MoodExplanation       string         `firestore:"mood_explanation"`
	CreatedAt             time.Time      `firestore:"created_at"`
}

type vibeDoc struct {
	EmployeeID string    `firestore:"employee_id"`
	Date       string    `firestore:"date"`
	MoodScore  int       `firestore:"mood_score"`
	Comments   string    `firestore:"comments"`
	RecordedAt time.Time `firestore:"recorded_at"`
}

type employeeDoc struct {
	CurrentMood      string     `firestore:"current_mood"`
	LastChatDate     *time.Time `firestore:"last_chat_date"`
	NextChatDate     string     `firestore:"next_chat_date"`
	HREscalation     bool       `firestore:"hr_escalation"`
	EscalationReason string     `firestore:"escalation_reason"`
	UpdatedAt        time.Time  `firestore:"updated_at"`
}

// ─────────────────────────────────────────
// FeedbackStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendFeedback(ctx context.Context, fb *domain.Feedback) error {
	if fb == nil {
		return nil
	}
	doc := feedbackDoc{
		SessionID:  string(fb.SessionID),
		EmployeeID: string(fb.EmployeeID),
		Question:   fb.Question,
		Response:   fb.Response,
		Sentiment:  string(fb.Sentiment),
		Reason:     fb.Reason,
		Keywords:   fb.Keywords,
		CreatedAt:  fb.CreatedAt,
	}
	if _, _, err := s.feedbackCol().Add(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendFeedback: %w", err)
	}
	return nil
}

func (s *Store) ListFeedbackByEmployee(ctx context.Context, employeeID domain.EmployeeID) ([]*domain.Feedback, error) {
	q := s.feedbackCol().Where("employee_id", "==", string(employeeID)).OrderBy("created_at", firestore.Asc)

	out := []*domain.Feedback{}
	err := collect(q.Documents(ctx), "ListFeedbackByEmployee", func(snap *firestore.DocumentSnapshot) error {
		var doc feedbackDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		out = append(out, &domain.Feedback{
			SessionID:  domain.SessionID(doc.SessionID),
			EmployeeID: domain.EmployeeID(doc.EmployeeID),
			Question:   doc.Question,
			Response:   doc.Response,
			Sentiment:  domain.Zone(doc.Sentiment),
			Reason:     doc.Reason,
			Keywords:   doc.Keywords,
			CreatedAt:  doc.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ─────────────────────────────────────────
// EscalationStore implementation
// ─────────────────────────────────────────

func (s *Store) RecordEscalation(ctx context.Context, esc *domain.Escalation) error {
	if esc == nil {
		return nil
	}
	doc := escalationDoc{
		EmployeeID: string(esc.EmployeeID),
		SessionID:  string(esc.SessionID),
		Reason:     esc.Reason,
		Score:      esc.Score,
		Date:       esc.Date,
		CreatedAt:  esc.CreatedAt,
	}
	if _, _, err := s.escalationsCol().Add(ctx, doc); err != nil {
		return fmt.Errorf("firestore RecordEscalation: %w", err)
	}
	return nil
}

func (s *Store) ListEscalations(ctx context.Context, limit int) ([]*domain.Escalation, error) {
	q := s.escalationsCol().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []*domain.Escalation{}
	err := collect(q.Documents(ctx), "ListEscalations", func(snap *firestore.DocumentSnapshot) error {
		var doc escalationDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		out = append(out, &domain.Escalation{
			EmployeeID: domain.EmployeeID(doc.EmployeeID),
			SessionID:  domain.SessionID(doc.SessionID),
			Reason:     doc.Reason,
			Score:      doc.Score,
			Date:       doc.Date,
			CreatedAt:  doc.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ─────────────────────────────────────────
// ReportStore implementation
// ─────────────────────────────────────────

// SaveAnalysis overwrites the employee's report document, keeping only the latest.
func (s *Store) SaveAnalysis(ctx context.Context, a *domain.FinalAnalysis) error {
	if a == nil {
		return nil
	}
	dist := make(map[string]int, len(domain.Zones))
	for _, z := range domain.Zones {
		dist[string(z)] = a.SentimentDistribution[z]
	}
	doc := analysisDoc{
		SessionID:             string(a.SessionID),
		EmployeeID:            string(a.EmployeeID),
		SentimentDistribution: dist,
		KeyThemes:             a.KeyThemes,
		TopKeywords:           a.TopKeywords,
		OverallAssessment:     string(a.OverallAssessment),
		NextInteraction:       a.NextInteraction,
		ResponsesAnalyzed:     a.ResponsesAnalyzed,
		HREscalation:          a.HREscalation,
		EscalationReason:      a.EscalationReason,
		MoodExplanation:       a.MoodExplanation,
		CreatedAt:             a.CreatedAt,
	}
	if _, err := s.analysesCol().Doc(string(a.EmployeeID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveAnalysis: %w", err)
	}
	return nil
}

func (s *Store) GetLatestAnalysis(ctx context.Context, employeeID domain.EmployeeID) (*domain.FinalAnalysis, error) {
	snap, err := s.analysesCol().Doc(string(employeeID)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("firestore GetLatestAnalysis: %w", err)
	}

	var doc analysisDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetLatestAnalysis decode: %w", err)
	}

	dist := domain.NewSentimentCounts()
	for _, z := range domain.Zones {
		dist[z] = doc.SentimentDistribution[string(z)]
	}
	return &domain.FinalAnalysis{
		SessionID:             domain.SessionID(doc.SessionID),
		EmployeeID:            domain.EmployeeID(doc.EmployeeID),
		SentimentDistribution: dist,
		KeyThemes:             doc.KeyThemes,
		TopKeywords:           doc.TopKeywords,
		OverallAssessment:     domain.Zone(doc.OverallAssessment),
		NextInteraction:       doc.NextInteraction,
		ResponsesAnalyzed:     doc.ResponsesAnalyzed,
		HREscalation:          doc.HREscalation,
		EscalationReason:      doc.EscalationReason,
		MoodExplanation:       doc.MoodExplanation,
		CreatedAt:             doc.CreatedAt,
	}, nil
}

func (s *Store) AppendVibeEntry(ctx context.Context, e *domain.VibeEntry) error {
	if e == nil {
		return nil
	}
	doc := vibeDoc{
		EmployeeID: string(e.EmployeeID),
		Date:       e.Date,
		MoodScore:  e.MoodScore,
		Comments:   e.Comments,
		RecordedAt: s.now(),
	}
	if _, _, err := s.vibesCol().Add(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendVibeEntry: %w", err)
	}
	return nil
}

// ListVibeEntries returns the last `limit` entries, oldest first.
func (s *Store) ListVibeEntries(ctx context.Context, employeeID domain.EmployeeID, limit int) ([]*domain.VibeEntry, error) {
	q := s.vibesCol().Where("employee_id", "==", string(employeeID)).OrderBy("recorded_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var newestFirst []*domain.VibeEntry
	err := collect(q.Documents(ctx), "ListVibeEntries", func(snap *firestore.DocumentSnapshot) error {
		var doc vibeDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		newestFirst = append(newestFirst, &domain.VibeEntry{
			EmployeeID: domain.EmployeeID(doc.EmployeeID),
			Date:       doc.Date,
			MoodScore:  doc.MoodScore,
			Comments:   doc.Comments,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.VibeEntry, len(newestFirst))
	for i, e := range newestFirst {
		out[len(newestFirst)-1-i] = e
	}
	return out, nil
}

// ─────────────────────────────────────────
// EmployeeStore implementation
// ─────────────────────────────────────────

func (s *Store) GetEmployee(ctx context.Context, id domain.EmployeeID) (*domain.EmployeeRecord, error) {
	snap, err := s.employeesCol().Doc(string(id)).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("firestore GetEmployee: %w", err)
	}
	return decodeEmployee(snap)
}

func (s *Store) SaveEmployee(ctx context.Context, rec *domain.EmployeeRecord) error {
	if rec == nil {
		return nil
	}
	doc := employeeDoc{
		CurrentMood:      string(rec.CurrentMood),
		LastChatDate:     rec.LastChatDate,
		NextChatDate:     rec.NextChatDate,
		HREscalation:     rec.HREscalation,
		EscalationReason: rec.EscalationReason,
		UpdatedAt:        rec.UpdatedAt,
	}
	if _, err := s.employeesCol().Doc(string(rec.EmployeeID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SaveEmployee: %w", err)
	}
	return nil
}

// ListDue returns employees whose next chat date is on or before day,
// sorted by date then id.
func (s *Store) ListDue(ctx context.Context, day string) ([]*domain.EmployeeRecord, error) {
	q := s.employeesCol().
		Where("next_chat_date", ">", "").
		Where("next_chat_date", "<=", day).
		OrderBy("next_chat_date", firestore.Asc)

	out := []*domain.EmployeeRecord{}
	err := collect(q.Documents(ctx), "ListDue", func(snap *firestore.DocumentSnapshot) error {
		rec, err := decodeEmployee(snap)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NextChatDate != out[j].NextChatDate {
			return out[i].NextChatDate < out[j].NextChatDate
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

func decodeEmployee(snap *firestore.DocumentSnapshot) (*domain.EmployeeRecord, error) {
	var doc employeeDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode employeeDoc: %w", err)
	}
	return &domain.EmployeeRecord{
		EmployeeID:       domain.EmployeeID(snap.Ref.ID),
		CurrentMood:      domain.Zone(doc.CurrentMood),
		LastChatDate:     doc.LastChatDate,
		NextChatDate:     doc.NextChatDate,
		HREscalation:     doc.HREscalation,
		EscalationReason: doc.EscalationReason,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}
