package keywords

import "strings"

// CloudEntry pairs a term with how many documents mention it
type CloudEntry struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Cloud counts case-insensitive substring mentions of each term across the
// raw (un-normalized) texts. Terms keep their input order; zero counts are kept
// so callers can see which ranked terms never literally appear
func Cloud(texts []string, terms []string) []CloudEntry {
	if len(terms) == 0 {
		return nil
	}
	lowered := make([]string, len(texts))
	for i, t := range texts {
		lowered[i] = strings.ToLower(t)
	}
	out := make([]CloudEntry, 0, len(terms))
	for _, term := range terms {
		lt := strings.ToLower(term)
		count := 0
		if lt != "" {
			for _, txt := range lowered {
				if strings.Contains(txt, lt) {
					count++
				}
			}
		}
		out = append(out, CloudEntry{Text: term, Count: count})
	}
	return out
}
