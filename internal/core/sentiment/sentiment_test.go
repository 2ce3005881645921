package sentiment

import (
	"math"
	"testing"
)

func mustAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestLoadPack(t *testing.T) {
	p, err := LoadPack()
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("version = %d, want 1", p.Version)
	}
	if len(p.Terms) == 0 || len(p.Boosters) == 0 || len(p.Negators) == 0 {
		t.Fatalf("pack incomplete: %d terms %d boosters %d negators",
			len(p.Terms), len(p.Boosters), len(p.Negators))
	}
	for term, v := range p.Terms {
		if v < -4 || v > 4 {
			t.Fatalf("term %q valence %v out of range", term, v)
		}
	}
	if _, ok := p.Negators["not"]; !ok {
		t.Fatalf("negators missing 'not'")
	}
}

func TestScore_Basics(t *testing.T) {
	a := mustAnalyzer(t)

	tests := []struct {
		name string
		in   string
		want Label
	}{
		{"empty", "", LabelNeutral},
		{"no lexicon hits", "we sat at the corner table", LabelNeutral},
		{"clear positive", "The food was amazing and the staff were friendly", LabelPositive},
		{"clear negative", "terrible service and the soup was cold", LabelNegative},
		{"negation flips positive", "the tacos were not good", LabelNegative},
		{"negation flips negative", "honestly not bad at all", LabelPositive},
		{"mixed leans on magnitude", "great food but horrible wait staff", LabelPositive},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := a.Score(tc.in)
			if got.Label != tc.want {
				t.Fatalf("Score(%q) = %+v, want label %q", tc.in, got, tc.want)
			}
			if got.Method != MethodText {
				t.Fatalf("Score method = %q, want %q", got.Method, MethodText)
			}
			if got.Compound < -1 || got.Compound > 1 {
				t.Fatalf("compound %v out of [-1,1]", got.Compound)
			}
		})
	}
}

func TestCompound_Emphasis(t *testing.T) {
	a := mustAnalyzer(t)

	plain := a.Compound("the pizza was good")
	boosted := a.Compound("the pizza was very good")
	if boosted <= plain {
		t.Fatalf("booster did not amplify: plain=%v boosted=%v", plain, boosted)
	}

	damped := a.Compound("the pizza was slightly good")
	if damped >= plain {
		t.Fatalf("dampener did not reduce: plain=%v damped=%v", plain, damped)
	}

	excl := a.Compound("the pizza was good!!")
	if excl <= plain {
		t.Fatalf("exclamation did not amplify: plain=%v excl=%v", plain, excl)
	}

	caps := a.Compound("the pizza was GOOD")
	if caps <= plain {
		t.Fatalf("all-caps did not amplify: plain=%v caps=%v", plain, caps)
	}

	// all-caps text has no differential, so no bump applies
	allCaps := a.Compound("THE PIZZA WAS GOOD")
	if math.Abs(allCaps-plain) > 1e-9 {
		t.Fatalf("uniform caps should score as plain: plain=%v allCaps=%v", plain, allCaps)
	}
}

func TestLabelCutoffs(t *testing.T) {
	tests := []struct {
		c         float64
		threshold float64
		want      Label
	}{
		{0.05, textThreshold, LabelPositive},
		{0.049, textThreshold, LabelNeutral},
		{-0.05, textThreshold, LabelNegative},
		{-0.049, textThreshold, LabelNeutral},
		{0.0, textThreshold, LabelNeutral},
		{0.1, patternThreshold, LabelPositive},
		{0.09, patternThreshold, LabelNeutral},
		{-0.1, patternThreshold, LabelNegative},
	}
	for _, tc := range tests {
		if got := labelFor(tc.c, tc.threshold); got != tc.want {
			t.Fatalf("labelFor(%v, %v) = %q, want %q", tc.c, tc.threshold, got, tc.want)
		}
	}
}

func TestPatternScore(t *testing.T) {
	a := mustAnalyzer(t)

	if got := a.PatternScore("we sat by the window"); got.Label != LabelNeutral || got.Compound != 0 {
		t.Fatalf("no-hit PatternScore = %+v, want 0/neutral", got)
	}

	got := a.PatternScore("good")
	if got.Method != MethodPattern {
		t.Fatalf("method = %q, want %q", got.Method, MethodPattern)
	}
	if got.Label != LabelPositive {
		t.Fatalf("PatternScore(good) = %+v, want positive", got)
	}
	// mean of 1.9 scaled by 4
	if math.Abs(got.Compound-0.475) > 1e-9 {
		t.Fatalf("compound = %v, want 0.475", got.Compound)
	}
}

func TestFromRating(t *testing.T) {
	tests := []struct {
		rating   int
		compound float64
		label    Label
	}{
		{5, 0.75, LabelPositive},
		{4, 0.5, LabelPositive},
		{3, 0, LabelNeutral},
		{2, -0.25, LabelNegative},
		{1, -0.5, LabelNegative},
		// out of range clamps
		{0, -0.5, LabelNegative},
		{9, 0.75, LabelPositive},
	}
	for _, tc := range tests {
		got := FromRating(tc.rating)
		if math.Abs(got.Compound-tc.compound) > 1e-9 || got.Label != tc.label {
			t.Fatalf("FromRating(%d) = %+v, want %v/%q", tc.rating, got, tc.compound, tc.label)
		}
		if got.Method != MethodRating {
			t.Fatalf("FromRating method = %q, want %q", got.Method, MethodRating)
		}
	}
}

func TestWordKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Amazing!!", "amazing"},
		{"don't", "dont"},
		{"(great)", "great"},
		{"...", ""},
		{"5-star", "star"},
	}
	for _, tc := range tests {
		if got := wordKey(tc.in); got != tc.want {
			t.Fatalf("wordKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
