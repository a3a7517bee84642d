// Package analysis turns a completed chat session into its final report and
// fans the report out to the HR-facing stores.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/PabloGalante/vibe-agent/internal/app/escalation"
	"github.com/PabloGalante/vibe-agent/internal/app/sentiment"
	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

const maxTopKeywords = 10

// Days until the next check-in.
const (
	followUpSoon   = 1 // negative answers outnumber positive ones
	followUpMedium = 3 // some negative answers
	followUpLate   = 7
)

type Builder struct {
	reports     domain.ReportStore
	employees   domain.EmployeeStore
	escalations domain.EscalationStore
	notifier    domain.EscalationNotifier

	criticalTopics []string
	weights        escalation.Weights
	now            func() time.Time
}

// NewBuilder wires the builder to a storage sink. sink and notifier may be nil,
// in which case the matching side effects are skipped.
func NewBuilder(sink domain.Sink, notifier domain.EscalationNotifier, criticalTopics []string) *Builder {
	b := &Builder{
		notifier:       notifier,
		criticalTopics: criticalTopics,
		weights:        escalation.DefaultWeights(),
		now:            func() time.Time { return time.Now().UTC() },
	}
	if sink != nil {
		b.reports = sink
		b.employees = sink
		b.escalations = sink
	}
	return b
}

// SetClock replaces the time source used for report and next-contact dates.
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// SetWeights replaces the escalation weights used by Score and Build.
func (b *Builder) SetWeights(w escalation.Weights) {
	b.weights = w
}

// Score runs the escalation scorer over a session with the builder's settings.
func (b *Builder) Score(session *domain.ChatSession) escalation.Result {
	return escalation.Score(session.SentimentCounts, session.History, b.criticalTopics, b.weights)
}

// Build assembles the final analysis and performs every side effect on a
// best-effort basis. It always returns a report.
func (b *Builder) Build(ctx context.Context, session *domain.ChatSession) *domain.FinalAnalysis {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"employee_id", session.EmployeeID,
	)

	now := b.now()
	counts := session.SentimentCounts.Clone()
	negative, positive := counts.Negative(), counts.Positive()

	themes := keyThemes(session.History)
	keywords := topKeywords(session.History)
	dominant := dominantZone(counts)
	score := b.Score(session)

	a := &domain.FinalAnalysis{
		SessionID:             session.ID,
		EmployeeID:            session.EmployeeID,
		SentimentDistribution: counts,
		KeyThemes:             themes,
		TopKeywords:           keywords,
		OverallAssessment:     dominant,
		NextInteraction:       NextInteraction(now, negative, positive),
		ResponsesAnalyzed:     counts.Total(),
		HREscalation:          score.NeedsEscalation,
		MoodExplanation:       moodExplanation(dominant, themes, keywords, negative, positive, session.History),
		CreatedAt:             now,
	}
	if score.NeedsEscalation {
		a.EscalationReason = score.Reason
		b.escalate(ctx, a, score)
	}

	b.persist(ctx, a)

	log.Info("final analysis built",
		"overall", a.OverallAssessment,
		"responses", a.ResponsesAnalyzed,
		"escalation_score", score.Score,
		"hr_escalation", a.HREscalation,
	)
	return a
}

func (b *Builder) escalate(ctx context.Context, a *domain.FinalAnalysis, score escalation.Result) {
	log := observability.LoggerFromContext(ctx)
	observability.RecordEscalation()

	esc := &domain.Escalation{
		EmployeeID: a.EmployeeID,
		SessionID:  a.SessionID,
		Reason:     score.Reason,
		Score:      score.Score,
		Date:       a.CreatedAt.Format(domain.DateLayout),
		CreatedAt:  a.CreatedAt,
	}

	if b.escalations != nil {
		if err := b.escalations.RecordEscalation(ctx, esc); err != nil {
			log.Error("failed to record escalation", "error", err)
			observability.RecordPersistenceFailure("escalations")
		}
	}
	if b.notifier != nil {
		if err := b.notifier.NotifyEscalation(ctx, esc); err != nil {
			log.Error("failed to notify escalation", "error", err)
			observability.RecordPersistenceFailure("notifier")
		}
	}
}

func (b *Builder) persist(ctx context.Context, a *domain.FinalAnalysis) {
	log := observability.LoggerFromContext(ctx)

	if b.reports != nil {
		if err := b.reports.SaveAnalysis(ctx, a); err != nil {
			log.Error("failed to save analysis", "error", err)
			observability.RecordPersistenceFailure("reports")
		}

		entry := &domain.VibeEntry{
			EmployeeID: a.EmployeeID,
			Date:       a.CreatedAt.Format(domain.DateLayout),
			MoodScore:  a.OverallAssessment.MoodScore(),
			Comments:   string(a.OverallAssessment),
		}
		if err := b.reports.AppendVibeEntry(ctx, entry); err != nil {
			log.Error("failed to append vibe entry", "error", err)
			observability.RecordPersistenceFailure("vibe_meter")
		}
	}

	if b.employees != nil {
		if err := b.updateEmployee(ctx, a); err != nil {
			log.Error("failed to update employee record", "error", err)
			observability.RecordPersistenceFailure("employees")
		}
	}
}

// updateEmployee sets mood and next contact. The escalation flag is only
// ever raised here; clearing it is an explicit HR action.
func (b *Builder) updateEmployee(ctx context.Context, a *domain.FinalAnalysis) error {
	rec, err := b.employees.GetEmployee(ctx, a.EmployeeID)
	if errors.Is(err, domain.ErrEmployeeNotFound) {
		rec = &domain.EmployeeRecord{EmployeeID: a.EmployeeID}
	} else if err != nil {
		return err
	}

	rec.CurrentMood = a.OverallAssessment
	rec.NextChatDate = a.NextInteraction
	if a.HREscalation {
		rec.HREscalation = true
		rec.EscalationReason = a.EscalationReason
	}
	rec.UpdatedAt = a.CreatedAt

	return b.employees.SaveEmployee(ctx, rec)
}

// NextInteraction returns the next check-in day as YYYY-MM-DD.
func NextInteraction(now time.Time, negative, positive int) string {
	days := followUpLate
	switch {
	case negative > positive:
		days = followUpSoon
	case negative > 0:
		days = followUpMedium
	}
	return now.AddDate(0, 0, days).Format(domain.DateLayout)
}

// dominantZone walks zones in canonical order; the first strict maximum wins
// and an empty session reads as neutral.
func dominantZone(counts domain.SentimentCounts) domain.Zone {
	dominant, best := domain.ZoneNeutral, 0
	for _, z := range domain.Zones {
		if counts[z] > best {
			dominant, best = z, counts[z]
		}
	}
	return dominant
}

func keyThemes(history []domain.Turn) []string {
	themes := []string{}
	seen := make(map[string]bool)
	for _, t := range history {
		if t.Reason == "" || seen[t.Reason] {
			continue
		}
		seen[t.Reason] = true
		themes = append(themes, t.Reason)
	}
	return themes
}

func topKeywords(history []domain.Turn) []string {
	var all []string
	for _, t := range history {
		all = append(all, t.Keywords...)
	}
	top := sentiment.RankByFrequency(all, maxTopKeywords)
	if top == nil {
		top = []string{}
	}
	return top
}
