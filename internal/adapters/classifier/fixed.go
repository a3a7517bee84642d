package classifier

import (
	"context"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// FixedModel returns the same judgment (or error) for every answer.
// Useful for demos and for pinning zones in handler tests.
type FixedModel struct {
	Judgment domain.SentimentJudgment
	Err      error
}

func NewFixedModel(label domain.SentimentLabel, score float64) *FixedModel {
	return &FixedModel{Judgment: domain.SentimentJudgment{Label: label, Score: score}}
}

func (m *FixedModel) Name() string { return "fixed" }

func (m *FixedModel) Classify(ctx context.Context, _ string) (domain.SentimentJudgment, error) {
	if err := ctx.Err(); err != nil {
		return domain.SentimentJudgment{}, err
	}
	if m.Err != nil {
		return domain.SentimentJudgment{}, m.Err
	}
	return m.Judgment, nil
}
