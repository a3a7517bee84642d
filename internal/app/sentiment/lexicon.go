package sentiment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// ReasonRule maps a keyword substring to a reason tag.
type ReasonRule struct {
	Keyword string `yaml:"keyword"`
	Label   string `yaml:"label"`
}

// FallbackLexicon feeds the rule-based model.
type FallbackLexicon struct {
	PositiveWords  []string `yaml:"positive_words"`
	NegativeWords  []string `yaml:"negative_words"`
	WorkspaceTerms []string `yaml:"workspace_terms"`
	WorkspaceBonus float64  `yaml:"workspace_bonus"`
	Confidence     float64  `yaml:"confidence"`
}

// Lexicon holds every keyword table used for classification and scoring.
// Slices keep their declaration order; Reasons is matched first-wins.
type Lexicon struct {
	DefaultReason      string          `yaml:"default_reason"`
	PositiveKeywords   []string        `yaml:"positive_keywords"`
	FrustrationMarkers []string        `yaml:"frustration_markers"`
	Reasons            []ReasonRule    `yaml:"reasons"`
	CriticalTopics     []string        `yaml:"critical_topics"`
	Fallback           FallbackLexicon `yaml:"fallback"`
	Stopwords          []string        `yaml:"stopwords"`
	ImportantTerms     []string        `yaml:"important_terms"`

	stop      map[string]struct{}
	important map[string]struct{}
}

// DefaultLexicon returns the built-in tables. It panics if the embedded
// document is malformed, which only a broken build can cause.
func DefaultLexicon() *Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("sentiment: embedded lexicon: %v", err))
	}
	return lex
}

// LoadLexicon reads a lexicon file. An empty path yields the built-in tables.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}

// ParseLexicon decodes and validates a YAML lexicon. Keywords are lowercased.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("decoding lexicon: %w", err)
	}

	if lex.DefaultReason == "" {
		lex.DefaultReason = "General feedback"
	}
	for i, r := range lex.Reasons {
		if strings.TrimSpace(r.Keyword) == "" || strings.TrimSpace(r.Label) == "" {
			return nil, fmt.Errorf("reason rule %d: keyword and label are required", i)
		}
		lex.Reasons[i].Keyword = strings.ToLower(r.Keyword)
	}
	if lex.Fallback.Confidence < 0 || lex.Fallback.Confidence > 1 {
		return nil, errors.New("fallback confidence must be within [0,1]")
	}

	lowerAll(lex.PositiveKeywords)
	lowerAll(lex.FrustrationMarkers)
	lowerAll(lex.CriticalTopics)
	lowerAll(lex.Fallback.PositiveWords)
	lowerAll(lex.Fallback.NegativeWords)
	lowerAll(lex.Fallback.WorkspaceTerms)
	lowerAll(lex.Stopwords)
	lowerAll(lex.ImportantTerms)

	lex.stop = toSet(lex.Stopwords)
	lex.important = toSet(lex.ImportantTerms)

	return &lex, nil
}

func (l *Lexicon) isStopword(w string) bool {
	_, ok := l.stop[w]
	return ok
}

func (l *Lexicon) isImportant(w string) bool {
	_, ok := l.important[w]
	return ok
}

func lowerAll(words []string) {
	for i, w := range words {
		words[i] = strings.ToLower(strings.TrimSpace(w))
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// containsAny reports whether lower contains any of the substrings.
func containsAny(lower string, subs []string) bool {
	for _, s := range subs {
		if s != "" && strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// countMatches counts how many of subs occur in lower, each at most once.
func countMatches(lower string, subs []string) int {
	n := 0
	for _, s := range subs {
		if s != "" && strings.Contains(lower, s) {
			n++
		}
	}
	return n
}
