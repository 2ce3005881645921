package service

import (
	"math"
	"sort"
	"time"

	"localpulse/internal/services/insights/domain"
)

// Anomaly detection knobs
const (
	// DefaultThreshold is the minimum month-over-month swing worth reporting
	DefaultThreshold = 0.5

	// highSeverityAt promotes a swing from medium to high
	highSeverityAt = 1.0

	// maxDetectReviews caps how much history one detection considers
	maxDetectReviews = 500

	// minDetectReviews is the floor on a business's fetched history, rated
	// or not; below it DetectAnomalies skips detection entirely
	minDetectReviews = 10

	// minMonthlyReviews a month needs to produce a trustworthy mean
	minMonthlyReviews = 3
)

// RatedReview is the minimal input the detector needs
type RatedReview struct {
	Rating int
	Date   time.Time
}

// DetectRatingAnomalies finds month-over-month average-rating swings of at
// least threshold. Months are keyed YYYY-MM in UTC and only months with
// enough reviews participate; differences are taken between consecutive
// qualifying months in chronological order
func DetectRatingAnomalies(revs []RatedReview, threshold float64) []domain.Anomaly {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if len(revs) > maxDetectReviews {
		revs = revs[:maxDetectReviews]
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range revs {
		m := r.Date.UTC().Format("2006-01")
		sums[m] += float64(r.Rating)
		counts[m]++
	}

	months := make([]string, 0, len(sums))
	for m, c := range counts {
		if c >= minMonthlyReviews {
			months = append(months, m)
		}
	}
	if len(months) < 2 {
		return nil
	}
	sort.Strings(months)

	var out []domain.Anomaly
	for i := 1; i < len(months); i++ {
		prev, curr := months[i-1], months[i]
		prevAvg := sums[prev] / float64(counts[prev])
		currAvg := sums[curr] / float64(counts[curr])
		change := currAvg - prevAvg
		if math.Abs(change) < threshold {
			continue
		}
		kind := "increase"
		if change < 0 {
			kind = "decrease"
		}
		severity := "medium"
		if math.Abs(change) >= highSeverityAt {
			severity = "high"
		}
		out = append(out, domain.Anomaly{
			Month:          curr,
			PreviousRating: round2(prevAvg),
			CurrentRating:  round2(currAvg),
			RatingChange:   round2(change),
			Type:           kind,
			Severity:       severity,
		})
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
