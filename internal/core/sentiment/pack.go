// Package sentiment scores review text with an embedded valence lexicon and
// derives labels. A pattern-average alternate scorer and a star-rating
// fallback cover text the lexicon cannot score
package sentiment

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed lexicon.json
var embedded []byte

type rawPack struct {
	Version  int                `json:"version"`
	Meta     map[string]any     `json:"meta"`
	Terms    map[string]float64 `json:"terms"`
	Boosters map[string]float64 `json:"boosters"`
	Negators []string           `json:"negators"`
}

// Pack is the compiled lexicon the analyzer scores against
type Pack struct {
	Version int
	Meta    map[string]any

	// Terms maps a lowercased word to its valence in [-4,4]
	Terms map[string]float64

	// Boosters maps intensifier/dampener words to their magnitude shift
	Boosters map[string]float64

	// Negators is the set of words that flip valence within the window
	Negators map[string]struct{}
}

// LoadPack parses and validates the embedded lexicon.json
func LoadPack() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("sentiment: parse lexicon.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("sentiment: unsupported lexicon.json version %d (want 1)", rp.Version)
	}
	if len(rp.Terms) == 0 {
		return nil, fmt.Errorf("sentiment: lexicon.json has no terms")
	}

	p := &Pack{
		Version:  rp.Version,
		Meta:     rp.Meta,
		Terms:    make(map[string]float64, len(rp.Terms)),
		Boosters: make(map[string]float64, len(rp.Boosters)),
		Negators: make(map[string]struct{}, len(rp.Negators)),
	}

	for term, v := range rp.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if v < -4 || v > 4 {
			return nil, fmt.Errorf("sentiment: term %q valence %v out of [-4,4]", term, v)
		}
		p.Terms[term] = v
	}
	for w, v := range rp.Boosters {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			p.Boosters[w] = v
		}
	}
	for _, w := range rp.Negators {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			p.Negators[w] = struct{}{}
		}
	}

	return p, nil
}
