package questions

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// MaxQuestions caps a session's sequence. Truncation can drop a category.
	MaxQuestions = 15
	// DefaultMaxQuestions is the neutral starting bound of a session.
	DefaultMaxQuestions = 8

	minPerCategory = 1
	maxPerCategory = 2
)

// Selector samples a per-session question sequence from a bank.
// It is safe for concurrent use.
type Selector struct {
	bank []Category

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector builds a selector over bank with an injected random source.
// A nil rng is seeded from the clock.
func NewSelector(bank []Category, rng *rand.Rand) *Selector {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Selector{bank: bank, rng: rng}
}

// Select takes one or two prompts from every category, shuffles the lot and
// truncates it to MaxQuestions. No prompt repeats.
func (s *Selector) Select() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, c := range s.bank {
		if len(c.Questions) == 0 {
			continue
		}
		k := minPerCategory + s.rng.IntN(maxPerCategory-minPerCategory+1)
		if k > len(c.Questions) {
			k = len(c.Questions)
		}
		for _, i := range s.rng.Perm(len(c.Questions))[:k] {
			out = append(out, c.Questions[i])
		}
	}

	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})

	if len(out) > MaxQuestions {
		out = out[:MaxQuestions]
	}
	return out
}
