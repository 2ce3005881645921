package service

import (
	"testing"
	"time"
)

// month builds n rated reviews dated inside the given month
func month(year int, m time.Month, rating, n int) []RatedReview {
	out := make([]RatedReview, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RatedReview{
			Rating: rating,
			Date:   time.Date(year, m, 1+i%27, 12, 0, 0, 0, time.UTC),
		})
	}
	return out
}

func TestDetectRatingAnomalies_Drop(t *testing.T) {
	revs := append(month(2025, time.March, 5, 6), month(2025, time.April, 4, 6)...)

	got := DetectRatingAnomalies(revs, 0)
	if len(got) != 1 {
		t.Fatalf("anomalies = %+v, want 1", got)
	}
	a := got[0]
	if a.Month != "2025-04" || a.Type != "decrease" {
		t.Fatalf("anomaly = %+v, want a decrease in 2025-04", a)
	}
	if a.RatingChange != -1.0 || a.CurrentRating != 4.0 || a.PreviousRating != 5.0 {
		t.Fatalf("values = %+v", a)
	}
	if a.Severity != "high" {
		t.Fatalf("severity = %q, want high for a full-point drop", a.Severity)
	}
}

func TestDetectRatingAnomalies_MediumSeverity(t *testing.T) {
	// 5.0 -> 4.25: a 0.75 drop clears the default threshold but not high
	revs := append(month(2025, time.March, 5, 8), []RatedReview{
		{Rating: 5, Date: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC)},
	}...)

	got := DetectRatingAnomalies(revs, 0)
	if len(got) != 1 {
		t.Fatalf("anomalies = %+v, want 1", got)
	}
	if got[0].RatingChange != -0.75 || got[0].Severity != "medium" || got[0].Type != "decrease" {
		t.Fatalf("anomaly = %+v, want -0.75 medium decrease", got[0])
	}
}

func TestDetectRatingAnomalies_BelowThresholdIgnored(t *testing.T) {
	// 4.0 -> 4.25 is under the default 0.5
	revs := append(month(2025, time.March, 4, 8), []RatedReview{
		{Rating: 5, Date: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 9, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC)},
	}...)

	if got := DetectRatingAnomalies(revs, 0); got != nil {
		t.Fatalf("anomalies = %+v, want none under default threshold", got)
	}

	// a caller-supplied tighter threshold reports the same swing
	got := DetectRatingAnomalies(revs, 0.2)
	if len(got) != 1 || got[0].RatingChange != 0.25 || got[0].Type != "increase" {
		t.Fatalf("anomalies = %+v, want one +0.25 increase", got)
	}
}

func TestDetectRatingAnomalies_ThinMonthsExcluded(t *testing.T) {
	// April has only 2 reviews, so March is compared against May
	revs := append(month(2025, time.March, 5, 6), month(2025, time.April, 1, 2)...)
	revs = append(revs, month(2025, time.May, 3, 6)...)

	got := DetectRatingAnomalies(revs, 0)
	if len(got) != 1 {
		t.Fatalf("anomalies = %+v, want 1", got)
	}
	if got[0].Month != "2025-05" || got[0].PreviousRating != 5.0 || got[0].RatingChange != -2.0 {
		t.Fatalf("anomaly = %+v, want 2025-05 against March's 5.0 average", got[0])
	}
}

func TestDetectRatingAnomalies_SingleQualifyingMonth(t *testing.T) {
	revs := append(month(2025, time.March, 5, 10), month(2025, time.April, 1, 2)...)
	if got := DetectRatingAnomalies(revs, 0); got != nil {
		t.Fatalf("anomalies = %+v, want nil with one qualifying month", got)
	}
}

func TestDetectRatingAnomalies_MultipleSwings(t *testing.T) {
	revs := append(month(2025, time.January, 5, 5), month(2025, time.February, 3, 5)...)
	revs = append(revs, month(2025, time.March, 5, 5)...)

	got := DetectRatingAnomalies(revs, 0)
	if len(got) != 2 {
		t.Fatalf("anomalies = %+v, want 2", got)
	}
	if got[0].RatingChange != -2.0 || got[1].RatingChange != 2.0 {
		t.Fatalf("changes = %v %v, want -2 then +2", got[0].RatingChange, got[1].RatingChange)
	}
	if got[0].Type != "decrease" || got[1].Type != "increase" {
		t.Fatalf("types = %q %q", got[0].Type, got[1].Type)
	}
	for _, a := range got {
		if a.Severity != "high" {
			t.Fatalf("severity = %q, want high", a.Severity)
		}
	}
}

func TestDetectRatingAnomalies_CapsHistory(t *testing.T) {
	// the tail month falls past the cap and must not be considered
	revs := append(month(2025, time.June, 5, 300), month(2025, time.July, 5, 200)...)
	revs = append(revs, month(2025, time.August, 1, 50)...)

	if got := DetectRatingAnomalies(revs, 0); got != nil {
		t.Fatalf("anomalies = %+v, want nil once history is capped", got)
	}
}

func TestDetectRatingAnomalies_RoundsToTwoPlaces(t *testing.T) {
	// March avg 4.333..., April avg 3.0
	revs := []RatedReview{
		{Rating: 5, Date: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC)},
		{Rating: 4, Date: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)},
	}
	revs = append(revs, month(2025, time.April, 3, 7)...)

	got := DetectRatingAnomalies(revs, 0)
	if len(got) != 1 {
		t.Fatalf("anomalies = %+v, want 1", got)
	}
	if got[0].PreviousRating != 4.33 || got[0].RatingChange != -1.33 {
		t.Fatalf("rounding = %+v, want prev 4.33 change -1.33", got[0])
	}
}
