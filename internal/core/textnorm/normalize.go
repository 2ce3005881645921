// Package textnorm provides the deterministic review text normalizer shared by
// the sentiment and keyword extractors
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD normalization (decompose so accents become strippable marks)
// 3 Case folding
// 4 Remove combining marks and format chars
// 5 Width fold fullwidth to ASCII
// 6 Drop every rune outside [a-z] treating whitespace as separators
// 7 Collapse separator runs to single spaces and trim
package textnorm

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Clean returns the canonical form of s following the pipeline described above
func (n *Normalizer) Clean(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 drop invalid bytes
	s = strings.ToValidUTF8(s, "")

	// 2-5 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 6-7 letter filter and whitespace collapse
	return asciiLetters(ns)
}

// Tokens returns Clean(s) split on single spaces; empty input yields nil
func (n *Normalizer) Tokens(s string) []string {
	c := n.Clean(s)
	if c == "" {
		return nil
	}
	return strings.Split(c, " ")
}

// ContentTokens returns Tokens(s) with stop words removed
func (n *Normalizer) ContentTokens(s string) []string {
	toks := n.Tokens(s)
	if len(toks) == 0 {
		return nil
	}
	out := toks[:0]
	for _, t := range toks {
		if !IsStop(t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asciiLetters keeps [a-z], folds whitespace runs to one space, drops the rest.
// Non-letter non-space runes vanish without splitting a word ("don't" -> "dont")
func asciiLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}
