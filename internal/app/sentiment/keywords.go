package sentiment

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

const (
	maxUnigrams = 8
	maxBigrams  = 3
	maxKeywords = 10
	minTermLen  = 3
)

// posPrefixes are the Penn Treebank families kept as keywords:
// nouns, verbs, adjectives and adverbs.
var posPrefixes = []string{"NN", "VB", "JJ", "RB"}

// englishLemmatizer loads the English dictionary once, on first use.
var englishLemmatizer = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// KeywordExtractor pulls frequency-ranked terms and bigrams out of an answer.
type KeywordExtractor struct {
	lex *Lexicon
}

func NewKeywordExtractor(lex *Lexicon) *KeywordExtractor {
	return &KeywordExtractor{lex: lex}
}

// Extract returns up to ten keywords: the top unigrams followed by the top
// bigrams. Callers treat an error as "no keywords".
func (e *KeywordExtractor) Extract(text string) (keywords []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			keywords, err = nil, fmt.Errorf("keyword extraction panicked: %v", r)
		}
	}()

	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	lem, err := englishLemmatizer()
	if err != nil {
		return nil, fmt.Errorf("loading lemmatizer: %w", err)
	}

	doc, err := prose.NewDocument(
		strings.ToLower(text),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	var terms, clean []string
	for _, tok := range doc.Tokens() {
		word := tok.Text

		if e.lex.isImportant(word) {
			terms = append(terms, lemmatize(lem, word, nounTag(word)))
		} else if isAlpha(word) && !e.lex.isStopword(word) && len(word) >= minTermLen && keepTag(tok.Tag) {
			terms = append(terms, lemmatize(lem, word, tok.Tag))
		}

		if isAlpha(word) && !e.lex.isStopword(word) && len(word) >= minTermLen {
			clean = append(clean, word)
		}
	}

	var bigrams []string
	for i := 0; i+1 < len(clean); i++ {
		bigrams = append(bigrams, clean[i]+" "+clean[i+1])
	}

	keywords = RankByFrequency(terms, maxUnigrams)
	keywords = append(keywords, RankByFrequency(bigrams, maxBigrams)...)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords, nil
}

// RankByFrequency returns the n most frequent items, most frequent first.
// Ties keep first-occurrence order. n <= 0 returns every distinct item.
func RankByFrequency(items []string, n int) []string {
	counts := make(map[string]int, len(items))
	var order []string
	for _, it := range items {
		if _, seen := counts[it]; !seen {
			order = append(order, it)
		}
		counts[it]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n > 0 && len(order) > n {
		order = order[:n]
	}
	return order
}

func keepTag(tag string) bool {
	for _, p := range posPrefixes {
		if strings.HasPrefix(tag, p) {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// inflectedTags are the Penn Treebank tags whose words are not already in
// base form. Base tags (NN, VB, VBP, JJ, RB) pass through unchanged so that
// nouns like "meeting" are not folded into a verb.
var inflectedTags = map[string]bool{
	"NNS": true, "NNPS": true,
	"VBD": true, "VBG": true, "VBN": true, "VBZ": true,
	"JJR": true, "JJS": true,
}

// nounTag guesses a noun tag for allow-listed terms, which skip the tagger.
func nounTag(word string) string {
	if strings.HasSuffix(word, "s") {
		return "NNS"
	}
	return "NN"
}

// lemmatize returns the dictionary base form of an inflected word. When the
// dictionary lists the word as its own lemma too, another candidate wins.
func lemmatize(lem *golem.Lemmatizer, word, tag string) string {
	if !inflectedTags[tag] {
		return word
	}
	for _, base := range lem.Lemmas(word) {
		if base != "" && base != word {
			return base
		}
	}
	return word
}
