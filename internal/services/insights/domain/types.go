// Package domain defines insight types: trending keywords and rating anomalies
package domain

import "time"

// TrendingKeyword is one row of the corpus-wide trending snapshot
type TrendingKeyword struct {
	Text        string    `json:"text"`
	Weight      float64   `json:"weight"`
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generated_at"`
	PeriodDays  int       `json:"period_days"`
}

// Anomaly is one month-over-month rating swing. Type is "increase" or
// "decrease"; severity promotes to "high" on a full-point swing
type Anomaly struct {
	Month          string  `json:"month"`
	PreviousRating float64 `json:"previous_rating"`
	CurrentRating  float64 `json:"current_rating"`
	RatingChange   float64 `json:"rating_change"`
	Type           string  `json:"type"`
	Severity       string  `json:"severity"`
}

// TrendPoint is one time bucket of a business's sentiment trend
type TrendPoint struct {
	Period       string  `json:"period"`
	AvgSentiment float64 `json:"avg_sentiment"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewCount  int     `json:"review_count"`
}

// AnomalyReport is the current report for one business; re-detection
// overwrites it
type AnomalyReport struct {
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	Anomalies    []Anomaly `json:"anomalies"`
	DetectedAt   time.Time `json:"detected_at"`
}

// ScanResult summarizes an anomaly scan across businesses
type ScanResult struct {
	Scanned        int      `json:"scanned"`
	Reported       int      `json:"reported"`
	AnomaliesFound int      `json:"anomalies_found"`
	Failed         []string `json:"failed,omitempty"`
}

// CleanupResult counts pruned rows per table
type CleanupResult struct {
	TrendingPruned  int64 `json:"trending_pruned"`
	AnomaliesPruned int64 `json:"anomalies_pruned"`
}
