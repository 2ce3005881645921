package keywords

import (
	"math"
	"sort"

	"localpulse/internal/core/textnorm"
)

// Term is a ranked corpus term
type Term struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Vectorizer defaults
const (
	DefaultMinDF       = 2
	DefaultMaxDFRatio  = 0.8
	DefaultMaxFeatures = 500

	// DefaultCorpusLimit is how many ranked terms TopTerms keeps when the
	// caller passes no limit
	DefaultCorpusLimit = 50
)

// Vectorizer ranks unigrams and bigrams across a corpus by mean TF-IDF weight.
// Zero value fields fall back to the defaults above
type Vectorizer struct {
	MinDF       int     // drop terms appearing in fewer documents
	MaxDFRatio  float64 // drop terms appearing in more than this share of documents
	MaxFeatures int     // cap the vocabulary by corpus frequency

	n *textnorm.Normalizer
}

// NewVectorizer constructs a Vectorizer with default cutoffs
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		MinDF:       DefaultMinDF,
		MaxDFRatio:  DefaultMaxDFRatio,
		MaxFeatures: DefaultMaxFeatures,
		n:           textnorm.New(),
	}
}

// TopTerms returns the limit highest mean-weight terms across texts; a
// non-positive limit keeps DefaultCorpusLimit terms. Degenerate corpora (empty, all-stop, or nothing surviving the document
// frequency cutoffs) yield an empty result rather than an error: trending
// rollups treat "nothing to say" as a valid outcome
func (v *Vectorizer) TopTerms(texts []string, limit int) []Term {
	if limit <= 0 {
		limit = DefaultCorpusLimit
	}
	minDF := v.MinDF
	if minDF <= 0 {
		minDF = DefaultMinDF
	}
	maxRatio := v.MaxDFRatio
	if maxRatio <= 0 || maxRatio > 1 {
		maxRatio = DefaultMaxDFRatio
	}
	maxFeatures := v.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	norm := v.n
	if norm == nil {
		norm = textnorm.New()
	}

	// tokenize and stop-filter each document, keeping empty docs in the count
	docs := make([][]string, 0, len(texts))
	for _, t := range texts {
		docs = append(docs, contentTerms(norm, t))
	}
	n := len(docs)
	if n == 0 {
		return nil
	}

	// document frequency and corpus frequency per candidate term
	df := make(map[string]int)
	cf := make(map[string]int)
	for _, d := range docs {
		seen := make(map[string]struct{}, len(d))
		for _, t := range d {
			cf[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				df[t]++
			}
		}
	}

	// apply df cutoffs
	vocab := make([]string, 0, len(df))
	maxDF := maxRatio * float64(n)
	for t, d := range df {
		if d < minDF {
			continue
		}
		if float64(d) > maxDF {
			continue
		}
		vocab = append(vocab, t)
	}
	if len(vocab) == 0 {
		return nil
	}

	// cap vocabulary by corpus frequency, ties lexicographic for determinism
	if len(vocab) > maxFeatures {
		sort.Slice(vocab, func(i, j int) bool {
			if cf[vocab[i]] != cf[vocab[j]] {
				return cf[vocab[i]] > cf[vocab[j]]
			}
			return vocab[i] < vocab[j]
		})
		vocab = vocab[:maxFeatures]
	}
	inVocab := make(map[string]struct{}, len(vocab))
	for _, t := range vocab {
		inVocab[t] = struct{}{}
	}

	// smooth idf
	idf := make(map[string]float64, len(vocab))
	for _, t := range vocab {
		idf[t] = math.Log(float64(1+n)/float64(1+df[t])) + 1
	}

	// accumulate L2-normalized per-document weights
	sums := make(map[string]float64, len(vocab))
	for _, d := range docs {
		tf := make(map[string]int, len(d))
		for _, t := range d {
			if _, ok := inVocab[t]; ok {
				tf[t]++
			}
		}
		if len(tf) == 0 {
			continue
		}
		var sq float64
		for t, c := range tf {
			w := float64(c) * idf[t]
			sq += w * w
		}
		l2 := math.Sqrt(sq)
		if l2 == 0 {
			continue
		}
		for t, c := range tf {
			sums[t] += float64(c) * idf[t] / l2
		}
	}

	out := make([]Term, 0, len(vocab))
	for _, t := range vocab {
		out = append(out, Term{Text: t, Weight: sums[t] / float64(n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Text < out[j].Text
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// contentTerms produces the unigram+bigram term sequence of one document
// after stop filtering. Bigrams span only adjacent surviving tokens
func contentTerms(n *textnorm.Normalizer, text string) []string {
	toks := n.ContentTokens(text)
	if len(toks) == 0 {
		return nil
	}
	out := make([]string, 0, len(toks)*2)
	out = append(out, toks...)
	for i := 0; i+1 < len(toks); i++ {
		out = append(out, toks[i]+" "+toks[i+1])
	}
	return out
}
