// Package keywords extracts per-review keywords and phrases and ranks
// corpus-wide terms with TF-IDF
package keywords

import (
	"sort"

	"localpulse/internal/core/textnorm"
)

// Extraction defaults
const (
	DefaultKeywordLimit = 10
	DefaultPhraseLimit  = 5

	minKeywordLen = 3 // tokens shorter than this carry no signal
	minPhraseLen  = 6 // "of it" style fragments are dropped
)

// Extractor derives keywords and phrases from a single document
type Extractor struct {
	n *textnorm.Normalizer
}

// NewExtractor constructs an Extractor
func NewExtractor() *Extractor { return &Extractor{n: textnorm.New()} }

// Keywords returns up to limit single-word keywords ordered by frequency,
// first appearance breaking ties. Stop words and short tokens are excluded
func (e *Extractor) Keywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	toks := e.n.Tokens(text)
	if len(toks) == 0 {
		return nil
	}

	counts := make(map[string]int, len(toks))
	firstSeen := make(map[string]int, len(toks))
	order := make([]string, 0, len(toks))
	for i, t := range toks {
		if len(t) < minKeywordLen || textnorm.IsStop(t) {
			continue
		}
		if _, ok := counts[t]; !ok {
			firstSeen[t] = i
			order = append(order, t)
		}
		counts[t]++
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return firstSeen[a] < firstSeen[b]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

// Phrases returns up to limit two-word phrases whose words are both
// non-stop, ordered by frequency with first appearance breaking ties
func (e *Extractor) Phrases(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultPhraseLimit
	}
	toks := e.n.Tokens(text)
	if len(toks) < 2 {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := make([]string, 0, len(toks))
	for i := 0; i+1 < len(toks); i++ {
		a, b := toks[i], toks[i+1]
		if textnorm.IsStop(a) || textnorm.IsStop(b) {
			continue
		}
		p := a + " " + b
		if len(p) < minPhraseLen {
			continue
		}
		if _, ok := counts[p]; !ok {
			firstSeen[p] = i
			order = append(order, p)
		}
		counts[p]++
	}
	if len(order) == 0 {
		return nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return firstSeen[a] < firstSeen[b]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
