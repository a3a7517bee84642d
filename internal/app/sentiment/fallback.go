package sentiment

import (
	"context"
	"strings"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// RuleModel is the keyword-count classifier used whenever the external model
// cannot answer. It never fails.
type RuleModel struct {
	lex *Lexicon
}

func NewRuleModel(lex *Lexicon) *RuleModel {
	return &RuleModel{lex: lex}
}

func (m *RuleModel) Name() string { return "rules" }

// Judge counts positive and negative word hits. Any workspace term adds a
// small positive bias. Ties go to NEGATIVE.
func (m *RuleModel) Judge(text string) domain.SentimentJudgment {
	lower := strings.ToLower(text)
	fb := m.lex.Fallback

	positive := float64(countMatches(lower, fb.PositiveWords))
	negative := float64(countMatches(lower, fb.NegativeWords))
	if containsAny(lower, fb.WorkspaceTerms) {
		positive += fb.WorkspaceBonus
	}

	label := domain.LabelNegative
	if positive > negative {
		label = domain.LabelPositive
	}
	return domain.SentimentJudgment{Label: label, Score: fb.Confidence}
}

// Classify implements domain.SentimentModel.
func (m *RuleModel) Classify(_ context.Context, text string) (domain.SentimentJudgment, error) {
	return m.Judge(text), nil
}
