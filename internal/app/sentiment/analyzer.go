package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/vibe-agent/internal/domain"
	"github.com/PabloGalante/vibe-agent/internal/observability"
)

// Result is everything the chat flow records about one answer.
type Result struct {
	Zone     domain.Zone `json:"zone"`
	Reason   string      `json:"reason"`
	Keywords []string    `json:"keywords"`

	Judgment domain.SentimentJudgment `json:"judgment"`
	// Model names whoever produced Judgment.
	Model string `json:"model"`
	// Fallback is set when the external model was skipped or failed.
	Fallback bool `json:"fallback"`
}

// Analyzer classifies answers with an external model and falls back to the
// rule-based model whenever that model is missing, errors or returns garbage.
type Analyzer struct {
	model    domain.SentimentModel
	fallback *RuleModel
	keywords *KeywordExtractor
	lex      *Lexicon
	timeout  time.Duration
}

// NewAnalyzer builds an analyzer. model may be nil; timeout <= 0 means the
// external call is bounded only by ctx.
func NewAnalyzer(model domain.SentimentModel, lex *Lexicon, timeout time.Duration) *Analyzer {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Analyzer{
		model:    model,
		fallback: NewRuleModel(lex),
		keywords: NewKeywordExtractor(lex),
		lex:      lex,
		timeout:  timeout,
	}
}

// Analyze never fails: classifier and keyword errors degrade to the fallback
// judgment and an empty keyword list.
func (a *Analyzer) Analyze(ctx context.Context, text string) Result {
	log := observability.LoggerFromContext(ctx)

	judgment, model, err := a.classify(ctx, text)
	fallback := false
	if err != nil {
		log.Warn("using rule-based sentiment", "model", model, "error", err)
		observability.RecordClassifierFallback(model)
		judgment = a.fallback.Judge(text)
		model = a.fallback.Name()
		fallback = true
	}

	keywords, err := a.keywords.Extract(text)
	if err != nil {
		log.Warn("keyword extraction failed", "error", err)
	}
	if keywords == nil {
		keywords = []string{}
	}

	return Result{
		Zone:     MapZone(judgment, text, a.lex),
		Reason:   ExtractReason(text, a.lex),
		Keywords: keywords,
		Judgment: judgment,
		Model:    model,
		Fallback: fallback,
	}
}

func (a *Analyzer) classify(ctx context.Context, text string) (domain.SentimentJudgment, string, error) {
	if a.model == nil {
		return domain.SentimentJudgment{}, "none", domain.ErrClassifierUnavailable
	}
	name := a.model.Name()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	j, err := a.model.Classify(ctx, text)
	if err != nil {
		return j, name, fmt.Errorf("%w: %w", domain.ErrClassifierUnavailable, err)
	}
	if !j.Valid() {
		return j, name, fmt.Errorf("%w: out-of-range judgment %s/%.3f", domain.ErrClassifierUnavailable, j.Label, j.Score)
	}
	return j, name, nil
}
