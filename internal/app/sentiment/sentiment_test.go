package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Name() string { return "mock" }

func (m *mockModel) Classify(ctx context.Context, text string) (domain.SentimentJudgment, error) {
	args := m.Called(ctx, text)
	return args.Get(0).(domain.SentimentJudgment), args.Error(1)
}

func pos(score float64) domain.SentimentJudgment {
	return domain.SentimentJudgment{Label: domain.LabelPositive, Score: score}
}

func neg(score float64) domain.SentimentJudgment {
	return domain.SentimentJudgment{Label: domain.LabelNegative, Score: score}
}

func TestMapZone(t *testing.T) {
	lex := DefaultLexicon()

	tests := []struct {
		name     string
		judgment domain.SentimentJudgment
		text     string
		want     domain.Zone
	}{
		{"strong positive", pos(0.9), "I love my team", domain.ZoneHappy},
		{"weak positive", pos(0.75), "it is fine", domain.ZoneLeaningHappy},
		{"strong negative", neg(0.9), "I'm so stressed and overworked", domain.ZoneSad},
		{"negative at sad boundary", neg(0.85), "not great honestly", domain.ZoneLeaningSad},
		{"negative at leaning boundary", neg(0.7), "this is frustrating", domain.ZoneFrustrated},
		{"anger marker", neg(0.5), "so much ANGER in meetings", domain.ZoneFrustrated},
		{"plain neutral", neg(0.6), "it is what it is", domain.ZoneNeutral},
		{"neutral promoted", neg(0.6), "the coffee is good", domain.ZoneLeaningHappy},
		{"frustration beats promotion", neg(0.6), "good people, frustrating process", domain.ZoneFrustrated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapZone(tt.judgment, tt.text, lex))
		})
	}
}

func TestMapZoneIsDeterministic(t *testing.T) {
	lex := DefaultLexicon()
	first := MapZone(neg(0.8), "my manager never listens", lex)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, MapZone(neg(0.8), "my manager never listens", lex))
	}
}

func TestExtractReason(t *testing.T) {
	lex := DefaultLexicon()

	assert.Equal(t, "Team dynamics", ExtractReason("I love my team", lex))
	assert.Equal(t, "Stress-related issues", ExtractReason("I'm so stressed and overworked", lex))
	// workload is declared before manager, so it wins.
	assert.Equal(t, "Work volume concerns", ExtractReason("My MANAGER piles on workload", lex))
	assert.Equal(t, "Compensation concerns", ExtractReason("my compensation is low", lex))
	assert.Equal(t, "General feedback", ExtractReason("nothing to add", lex))
}

func TestParseLexiconFixture(t *testing.T) {
	lex, err := ParseLexicon([]byte(`
reasons:
  - { keyword: Coffee, label: Kitchen }
positive_keywords: [Yay]
fallback:
  confidence: 0.6
`))
	require.NoError(t, err)

	assert.Equal(t, "General feedback", lex.DefaultReason)
	assert.Equal(t, "Kitchen", ExtractReason("the coffee machine", lex))
	assert.Equal(t, domain.ZoneLeaningHappy, MapZone(neg(0.1), "yay", lex))
}

func TestParseLexiconRejectsBadRules(t *testing.T) {
	_, err := ParseLexicon([]byte("reasons:\n  - { keyword: pay }\n"))
	assert.Error(t, err)

	_, err = ParseLexicon([]byte("fallback:\n  confidence: 1.5\n"))
	assert.Error(t, err)
}

func TestRuleModel(t *testing.T) {
	m := NewRuleModel(DefaultLexicon())

	assert.Equal(t, domain.LabelPositive, m.Judge("The office is great").Label)
	assert.Equal(t, domain.LabelNegative, m.Judge("The office is noisy and cramped").Label)
	// one positive, one negative, no workspace term: tie goes negative.
	assert.Equal(t, domain.LabelNegative, m.Judge("good people but bad hours").Label)
	// the workspace bonus breaks the tie.
	assert.Equal(t, domain.LabelPositive, m.Judge("good desk but bad chair").Label)
	assert.Equal(t, 0.8, m.Judge("anything").Score)
}

func TestRankByFrequency(t *testing.T) {
	items := []string{"b", "a", "c", "a", "b", "d"}
	assert.Equal(t, []string{"b", "a"}, RankByFrequency(items, 2))
	assert.Equal(t, []string{"b", "a", "c", "d"}, RankByFrequency(items, 0))
	assert.Empty(t, RankByFrequency(nil, 3))
}

func TestKeywordExtractor(t *testing.T) {
	ex := NewKeywordExtractor(DefaultLexicon())

	kws, err := ex.Extract("The workload is crushing and my manager ignores deadlines")
	require.NoError(t, err)

	assert.Contains(t, kws, "workload")
	assert.Contains(t, kws, "manager")
	assert.Contains(t, kws, "manager ignores")
	assert.LessOrEqual(t, len(kws), 10)
	assert.NotContains(t, kws, "the")
	assert.NotContains(t, kws, "my")
}

func TestKeywordExtractorEmptyText(t *testing.T) {
	ex := NewKeywordExtractor(DefaultLexicon())
	kws, err := ex.Extract("")
	require.NoError(t, err)
	assert.Empty(t, kws)
}

func TestLemmatize(t *testing.T) {
	lem, err := englishLemmatizer()
	require.NoError(t, err)

	tests := []struct {
		word, tag, want string
	}{
		{"deadlines", "NNS", "deadline"},
		{"policies", "NNS", "policy"},
		{"ignores", "VBZ", "ignore"},
		{"stressed", "VBD", "stress"},
		{"coming", "VBG", "come"},
		{"ignoring", "VBG", "ignore"},
		{"taken", "VBN", "take"},
		{"worked", "VBN", "work"},
		{"stress", "NN", "stress"},
		{"meeting", "NN", "meeting"},
		{"quickly", "RB", "quickly"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lemmatize(lem, tt.word, tt.tag), "%s/%s", tt.word, tt.tag)
	}
}

func TestExtractFoldsInflections(t *testing.T) {
	ex := NewKeywordExtractor(DefaultLexicon())
	kws, err := ex.Extract("Deadlines keep coming and the managers ignored them")
	require.NoError(t, err)

	assert.Contains(t, kws, "deadline")
	assert.NotContains(t, kws, "deadlines")
	assert.NotContains(t, kws, "managers")
}

func TestAnalyzerUsesModel(t *testing.T) {
	m := new(mockModel)
	m.On("Classify", mock.Anything, "I love my team").Return(pos(0.9), nil)

	a := NewAnalyzer(m, DefaultLexicon(), 0)
	res := a.Analyze(context.Background(), "I love my team")

	assert.Equal(t, domain.ZoneHappy, res.Zone)
	assert.Equal(t, "Team dynamics", res.Reason)
	assert.Equal(t, "mock", res.Model)
	assert.False(t, res.Fallback)
	m.AssertExpectations(t)
}

func TestAnalyzerFallsBackOnError(t *testing.T) {
	m := new(mockModel)
	m.On("Classify", mock.Anything, mock.Anything).Return(domain.SentimentJudgment{}, errors.New("quota exceeded"))

	a := NewAnalyzer(m, DefaultLexicon(), 0)
	res := a.Analyze(context.Background(), "The office is noisy and cramped")

	assert.True(t, res.Fallback)
	assert.Equal(t, "rules", res.Model)
	// NEGATIVE at 0.8 maps to Leaning to Sad.
	assert.Equal(t, domain.ZoneLeaningSad, res.Zone)
	m.AssertExpectations(t)
}

func TestAnalyzerFallsBackOnInvalidJudgment(t *testing.T) {
	m := new(mockModel)
	m.On("Classify", mock.Anything, mock.Anything).Return(domain.SentimentJudgment{Label: "MIXED", Score: 0.5}, nil)

	res := NewAnalyzer(m, DefaultLexicon(), 0).Analyze(context.Background(), "great desk")
	assert.True(t, res.Fallback)
	assert.Equal(t, domain.LabelPositive, res.Judgment.Label)
	assert.Equal(t, domain.ZoneHappy, res.Zone)
}

func TestAnalyzerWithoutModel(t *testing.T) {
	res := NewAnalyzer(nil, nil, 0).Analyze(context.Background(), "I hate the noisy office")
	assert.True(t, res.Fallback)
	assert.Equal(t, domain.ZoneLeaningSad, res.Zone)
	assert.NotNil(t, res.Keywords)
}
