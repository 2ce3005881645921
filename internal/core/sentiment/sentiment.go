package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// Label classifies a compound score
type Label string

// Label values are stored verbatim on reviews
const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Method records which scorer produced a result
type Method string

// Method values are stored verbatim on reviews
const (
	MethodText    Method = "text"
	MethodPattern Method = "pattern"
	MethodRating  Method = "rating"
)

// Score is a classified sentiment result
type Score struct {
	Compound float64
	Label    Label
	Method   Method
}

// Scoring constants. The booster increment, negation factor/window, emphasis
// bumps, and normalization alpha follow the usual valence-lexicon tuning
const (
	boostIncr      = 0.293
	negationFactor = -0.74
	negationWindow = 3
	capsBump       = 0.733
	exclBump       = 0.292
	maxExcl        = 4
	normAlpha      = 15.0

	// label cutoffs
	textThreshold    = 0.05
	patternThreshold = 0.1
)

// Analyzer scores free text against the embedded lexicon.
// Safe for concurrent use; the pack is read-only after load
type Analyzer struct {
	pack *Pack
}

// New loads the embedded lexicon and returns a ready analyzer
func New() (*Analyzer, error) {
	p, err := LoadPack()
	if err != nil {
		return nil, err
	}
	return &Analyzer{pack: p}, nil
}

// Score runs the primary lexicon scorer over raw (un-normalized) text.
// Empty or unscorable text yields 0.0/neutral
func (a *Analyzer) Score(text string) Score {
	c := a.Compound(text)
	return Score{Compound: c, Label: labelFor(c, textThreshold), Method: MethodText}
}

// Compound returns the normalized valence sum in [-1,1]
func (a *Analyzer) Compound(text string) float64 {
	toks := strings.Fields(text)
	if len(toks) == 0 {
		return 0
	}

	capsMixed := hasCapsDifferential(toks)

	var sum float64
	for i, tok := range toks {
		key := wordKey(tok)
		valence, ok := a.pack.Terms[key]
		if !ok {
			continue
		}

		// ALL-CAPS emphasis only matters when the writer mixes cases
		if capsMixed && isUpperWord(tok) {
			if valence > 0 {
				valence += capsBump
			} else {
				valence -= capsBump
			}
		}

		// booster and negation window over the preceding tokens
		for dist := 1; dist <= negationWindow && i-dist >= 0; dist++ {
			prev := wordKey(toks[i-dist])
			if prev == "" || prev == key {
				continue
			}
			if b, ok := a.pack.Boosters[prev]; ok {
				scalar := b * scalarDecay(dist)
				if valence < 0 {
					scalar = -scalar
				}
				if capsMixed && isUpperWord(toks[i-dist]) {
					if valence > 0 {
						scalar += capsBump
					} else {
						scalar -= capsBump
					}
				}
				valence += scalar
			}
			if _, neg := a.pack.Negators[prev]; neg {
				valence *= negationFactor
				break
			}
		}

		sum += valence
	}

	if sum == 0 {
		return 0
	}

	// exclamation emphasis amplifies the running sum in its own direction
	excl := strings.Count(text, "!")
	if excl > maxExcl {
		excl = maxExcl
	}
	amp := float64(excl) * exclBump
	if sum > 0 {
		sum += amp
	} else {
		sum -= amp
	}

	return clamp(sum / math.Sqrt(sum*sum+normAlpha))
}

// PatternScore is the alternate scorer: the mean matched valence scaled to
// [-1,1], with wider neutral cutoffs. Text with no lexicon hits is neutral
func (a *Analyzer) PatternScore(text string) Score {
	toks := strings.Fields(text)
	var sum float64
	var hits int
	for _, tok := range toks {
		if v, ok := a.pack.Terms[wordKey(tok)]; ok {
			sum += v
			hits++
		}
	}
	var c float64
	if hits > 0 {
		c = clamp(sum / float64(hits) / 4.0)
	}
	return Score{Compound: c, Label: labelFor(c, patternThreshold), Method: MethodPattern}
}

// FromRating derives sentiment from a 1..5 star rating when no text scorer
// applies: 4-5 stars map onto [0.5,0.75] positive, 3 stars is neutral, and
// 1-2 stars map onto [-0.5,-0.25] negative
func FromRating(rating int) Score {
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}
	switch {
	case rating >= 4:
		return Score{Compound: 0.5 + float64(rating-4)*0.25, Label: LabelPositive, Method: MethodRating}
	case rating == 3:
		return Score{Compound: 0, Label: LabelNeutral, Method: MethodRating}
	default:
		return Score{Compound: -0.5 + float64(rating-1)*0.25, Label: LabelNegative, Method: MethodRating}
	}
}

func labelFor(c, threshold float64) Label {
	switch {
	case c >= threshold:
		return LabelPositive
	case c <= -threshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// wordKey lowercases and strips non-letter edges so "Amazing!!" matches "amazing"
func wordKey(tok string) string {
	tok = strings.ToLower(tok)
	start, end := 0, len(tok)
	for start < end && !isLowerByte(tok[start]) {
		start++
	}
	for end > start && !isLowerByte(tok[end-1]) {
		end--
	}
	key := tok[start:end]
	// collapse possessives and straight apostrophes inside the word
	key = strings.ReplaceAll(key, "'", "")
	return key
}

func isLowerByte(b byte) bool { return b >= 'a' && b <= 'z' }

// scalarDecay weakens boosters by distance from the scored word
func scalarDecay(dist int) float64 {
	switch dist {
	case 2:
		return 0.95
	case 3:
		return 0.9
	default:
		return 1.0
	}
}

// isUpperWord reports whether tok has letters and all of them are upper case
func isUpperWord(tok string) bool {
	hasLetter := false
	for _, r := range tok {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// hasCapsDifferential reports whether some but not all words are ALL-CAPS
func hasCapsDifferential(toks []string) bool {
	upper, letters := 0, 0
	for _, t := range toks {
		ok := false
		for _, r := range t {
			if unicode.IsLetter(r) {
				ok = true
				break
			}
		}
		if !ok {
			continue
		}
		letters++
		if isUpperWord(t) {
			upper++
		}
	}
	return upper > 0 && upper < letters
}

func clamp(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}
