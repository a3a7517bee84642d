// Package escalation scores a session's sentiment history and decides
// whether HR should be told about it.
package escalation

import (
	"strings"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// Weights are the scoring constants. They are empirical; keep the defaults
// unless there is data to replace them.
type Weights struct {
	Sad             float64
	LeaningSad      float64
	Frustrated      float64
	ConsecutiveRun  float64 // per answer in the longest negative run
	CriticalMention float64 // per answer mentioning a critical topic
	HighRatioBonus  float64
	RatioThreshold  float64 // negative share above which the bonus applies

	Threshold         float64
	PositiveThreshold float64 // used when positive answers outnumber negative ones
}

func DefaultWeights() Weights {
	return Weights{
		Sad:               1.0,
		LeaningSad:        0.5,
		Frustrated:        1.0,
		ConsecutiveRun:    0.5,
		CriticalMention:   1.5,
		HighRatioBonus:    2.0,
		RatioThreshold:    0.4,
		Threshold:         5,
		PositiveThreshold: 7,
	}
}

const (
	reasonPrefix   = "Employee reported "
	fallbackReason = "Multiple factors indicating potential employee distress"
)

// Result is the outcome of one scoring pass. Reason is empty unless
// NeedsEscalation is set.
type Result struct {
	Score           float64 `json:"score"`
	NeedsEscalation bool    `json:"needs_escalation"`
	Reason          string  `json:"reason"`

	MaxConsecutiveNegative int     `json:"max_consecutive_negative"`
	CriticalMentions       int     `json:"critical_mentions"`
	NegativeRatio          float64 `json:"negative_ratio"`
}

// Score is a pure function of the counts and the ordered history.
func Score(counts domain.SentimentCounts, history []domain.Turn, criticalTopics []string, w Weights) Result {
	var r Result

	r.Score += w.Sad * float64(counts[domain.ZoneSad])
	r.Score += w.LeaningSad * float64(counts[domain.ZoneLeaningSad])
	r.Score += w.Frustrated * float64(counts[domain.ZoneFrustrated])

	r.MaxConsecutiveNegative = longestNegativeRun(history)
	r.Score += w.ConsecutiveRun * float64(r.MaxConsecutiveNegative)

	r.CriticalMentions = criticalMentions(history, criticalTopics)
	r.Score += w.CriticalMention * float64(r.CriticalMentions)

	negative := counts.Negative()
	positive := counts.Positive()
	if total := counts.Total(); total > 0 {
		r.NegativeRatio = float64(negative) / float64(total)
		if r.NegativeRatio > w.RatioThreshold {
			r.Score += w.HighRatioBonus
		}
	}

	threshold := w.Threshold
	if positive > negative {
		threshold = w.PositiveThreshold
	}
	r.NeedsEscalation = r.Score >= threshold

	if r.NeedsEscalation {
		r.Reason = composeReason(counts, r, w)
	}
	return r
}

func longestNegativeRun(history []domain.Turn) int {
	longest, run := 0, 0
	for _, t := range history {
		if t.Sentiment.IsNegative() {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// criticalMentions counts answers, not keywords: an answer naming two
// topics counts once.
func criticalMentions(history []domain.Turn, topics []string) int {
	n := 0
	for _, t := range history {
		lower := strings.ToLower(t.Response)
		for _, topic := range topics {
			if topic != "" && strings.Contains(lower, topic) {
				n++
				break
			}
		}
	}
	return n
}

func composeReason(counts domain.SentimentCounts, r Result, w Weights) string {
	var parts []string
	if counts[domain.ZoneSad] >= 2 {
		parts = append(parts, "multiple highly negative responses")
	}
	if r.MaxConsecutiveNegative >= 2 {
		parts = append(parts, "consecutive negative responses")
	}
	if r.CriticalMentions > 0 {
		parts = append(parts, "mentions of sensitive topics")
	}
	if r.NegativeRatio > w.RatioThreshold {
		parts = append(parts, "high ratio of negative feedback")
	}
	if len(parts) == 0 {
		return fallbackReason
	}
	return reasonPrefix + strings.Join(parts, ", ")
}
