// Package domain defines business types shared by repo, service, and transport
package domain

import "time"

// Business is a stored business listing. The analytics snapshot is a
// sub-document refreshed by the pipeline, nil until first computed
type Business struct {
	ID          int64
	Source      string
	SourceID    string
	Name        string
	Category    *string
	City        *string
	PriceRange  *string
	Rating      *float64
	ReviewCount *int

	Analytics        *Summary
	AnalyticsUpdated *time.Time
}

// BusinessWrite is the ingestion shape accepted from acquisition code
type BusinessWrite struct {
	Source      string
	SourceID    string
	Name        string
	Category    *string
	City        *string
	PriceRange  *string
	Rating      *float64
	ReviewCount *int
}

// Summary is the per-business analytics rollup computed from reviews
type Summary struct {
	AvgRating      float64    `json:"avg_rating"`
	TotalReviews   int        `json:"total_reviews"`
	AvgSentiment   float64    `json:"avg_sentiment"`
	LatestReview   *time.Time `json:"latest_review,omitempty"`
	EarliestReview *time.Time `json:"earliest_review,omitempty"`
}

// CompetitorEntry is one business's contribution to a comparison
type CompetitorEntry struct {
	BusinessID   string   `json:"business_id"`
	Name         string   `json:"name"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	AvgSentiment *float64 `json:"avg_sentiment,omitempty"`
}

// CompetitorReport compares a set of businesses with unweighted means.
// Requested counts the input ids; Compared counts those actually found
type CompetitorReport struct {
	Requested      int               `json:"requested"`
	Compared       int               `json:"compared"`
	AvgRating      float64           `json:"avg_rating"`
	AvgReviewCount int               `json:"avg_review_count"`
	AvgSentiment   float64           `json:"avg_sentiment"`
	Businesses     []CompetitorEntry `json:"businesses"`
}
