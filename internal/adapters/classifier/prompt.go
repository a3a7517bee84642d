package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

const systemPrompt = `
You are a sentiment classifier for short answers given by employees during a workplace check-in.

Rules:
- Read the employee's answer and decide whether its overall tone is POSITIVE or NEGATIVE.
- There is no neutral label. Pick the closer one and express doubt through the score.
- score is your confidence in the label, a number between 0 and 1.
- Answer ONLY with a JSON object of the form {"label": "POSITIVE", "score": 0.93}.
- Do not add explanations, markdown or extra fields.
`

// buildUserPrompt wraps the answer so the model never mistakes it for instructions.
func buildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Employee answer:\n<<<\n")
	b.WriteString(text)
	b.WriteString("\n>>>")
	return b.String()
}

type rawJudgment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// parseJudgment decodes a model reply into a judgment. Code fences around
// the JSON are tolerated; anything outside the label set is rejected.
func parseJudgment(reply string) (domain.SentimentJudgment, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if s == "" {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: empty reply", domain.ErrClassifierUnavailable)
	}

	var raw rawJudgment
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: decoding reply: %v", domain.ErrClassifierUnavailable, err)
	}

	j := domain.SentimentJudgment{
		Label: domain.SentimentLabel(strings.ToUpper(strings.TrimSpace(raw.Label))),
		Score: raw.Score,
	}
	if !j.Valid() {
		return domain.SentimentJudgment{}, fmt.Errorf("%w: invalid judgment %q/%v", domain.ErrClassifierUnavailable, raw.Label, raw.Score)
	}
	return j, nil
}

// newLimiter returns nil when rps is not positive, meaning unlimited.
func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func waitTurn(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %v", domain.ErrClassifierUnavailable, err)
	}
	return nil
}
