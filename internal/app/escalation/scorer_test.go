package escalation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

var topics = []string{
	"harassment", "discrimination", "burnout", "quit", "unsafe",
	"overworked", "stress", "hostile", "unfair", "mental health",
}

type answer struct {
	zone domain.Zone
	text string
}

func build(answers ...answer) (domain.SentimentCounts, []domain.Turn) {
	counts := domain.NewSentimentCounts()
	var history []domain.Turn
	for _, a := range answers {
		counts[a.zone]++
		history = append(history, domain.Turn{Response: a.text, Sentiment: a.zone})
	}
	return counts, history
}

func TestScoreSustainedDistress(t *testing.T) {
	counts, history := build(
		answer{domain.ZoneHappy, "fine"},
		answer{domain.ZoneSad, "I am close to burnout"},
		answer{domain.ZoneSad, "it is bad"},
		answer{domain.ZoneNeutral, "fine"},
		answer{domain.ZoneSad, "bad again"},
		answer{domain.ZoneNeutral, "ok"},
		answer{domain.ZoneLeaningHappy, "fine"},
		answer{domain.ZoneNeutral, "ok"},
	)

	r := Score(counts, history, topics, DefaultWeights())

	// 3 sad + 0.5*2 run + 1.5 mention; ratio 3/8 stays under 0.4.
	assert.InDelta(t, 5.5, r.Score, 1e-9)
	assert.Equal(t, 2, r.MaxConsecutiveNegative)
	assert.Equal(t, 1, r.CriticalMentions)
	assert.True(t, r.NeedsEscalation)
	assert.Equal(t,
		"Employee reported multiple highly negative responses, consecutive negative responses, mentions of sensitive topics",
		r.Reason)
}

func TestScoreHighRatioBonus(t *testing.T) {
	counts, history := build(
		answer{domain.ZoneLeaningSad, "meh"},
		answer{domain.ZoneNeutral, "ok"},
		answer{domain.ZoneLeaningSad, "meh"},
	)

	r := Score(counts, history, topics, DefaultWeights())

	// 0.5*2 + 0.5*1 run + 2.0 bonus
	assert.InDelta(t, 3.5, r.Score, 1e-9)
	assert.False(t, r.NeedsEscalation)
	assert.Empty(t, r.Reason)
}

func TestScorePositiveRaisesThreshold(t *testing.T) {
	var answers []answer
	for i := 0; i < 6; i++ {
		answers = append(answers, answer{domain.ZoneHappy, "great"})
	}
	// Five separate stress mentions score 7.5 on their own.
	for i := 0; i < 5; i++ {
		answers = append(answers, answer{domain.ZoneNeutral, "some stress"})
	}
	counts, history := build(answers...)

	r := Score(counts, history, topics, DefaultWeights())
	assert.InDelta(t, 7.5, r.Score, 1e-9)
	assert.True(t, r.NeedsEscalation)
	assert.Equal(t, "Employee reported mentions of sensitive topics", r.Reason)

	answers = answers[:10]
	counts, history = build(answers...)
	r = Score(counts, history, topics, DefaultWeights())
	// 6.0 would clear 5 but not the raised threshold of 7.
	assert.InDelta(t, 6.0, r.Score, 1e-9)
	assert.False(t, r.NeedsEscalation)
}

func TestScoreFallbackReason(t *testing.T) {
	var answers []answer
	for i := 0; i < 5; i++ {
		answers = append(answers,
			answer{domain.ZoneFrustrated, "annoyed"},
			answer{domain.ZoneNeutral, "ok"},
			answer{domain.ZoneNeutral, "ok"},
		)
	}
	counts, history := build(answers...)

	r := Score(counts, history, topics, DefaultWeights())
	assert.InDelta(t, 5.5, r.Score, 1e-9)
	assert.True(t, r.NeedsEscalation)
	assert.Equal(t, "Multiple factors indicating potential employee distress", r.Reason)
}

func TestCriticalMentionCountsOncePerAnswer(t *testing.T) {
	counts, history := build(answer{domain.ZoneNeutral, "Harassment and DISCRIMINATION and burnout"})
	r := Score(counts, history, topics, DefaultWeights())
	assert.Equal(t, 1, r.CriticalMentions)
	assert.InDelta(t, 1.5, r.Score, 1e-9)
}

func TestScoreEmptySession(t *testing.T) {
	r := Score(domain.NewSentimentCounts(), nil, topics, DefaultWeights())
	assert.Zero(t, r.Score)
	assert.Zero(t, r.NegativeRatio)
	assert.False(t, r.NeedsEscalation)
}

func TestScoreMonotonicInSadAndFrustrated(t *testing.T) {
	base := []answer{
		{domain.ZoneHappy, "great"},
		{domain.ZoneNeutral, "ok"},
		{domain.ZoneLeaningSad, "meh"},
	}
	counts, history := build(base...)
	prev := Score(counts, history, topics, DefaultWeights()).Score

	for _, z := range []domain.Zone{domain.ZoneSad, domain.ZoneFrustrated, domain.ZoneSad, domain.ZoneFrustrated} {
		base = append(base, answer{z, "bad"})
		counts, history = build(base...)
		next := Score(counts, history, topics, DefaultWeights()).Score
		require.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	counts, history := build(
		answer{domain.ZoneSad, "unfair treatment"},
		answer{domain.ZoneFrustrated, "frustrated"},
		answer{domain.ZoneSad, "hostile"},
	)
	first := Score(counts, history, topics, DefaultWeights())
	second := Score(counts, history, topics, DefaultWeights())
	assert.Equal(t, first, second)
}
