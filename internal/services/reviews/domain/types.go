// Package domain defines review types shared by repo, service, and transport
package domain

import "time"

// Review is a stored customer review. Optional source fields are pointers so
// absent stays distinct from zero
type Review struct {
	ID             int64
	Source         string
	SourceReviewID string
	BusinessID     string
	BusinessName   string
	ReviewerName   *string
	Rating         *int
	Text           string
	Date           *time.Time

	// enrichment outputs, nil until processed
	SentimentScore  *float64
	SentimentLabel  *string
	SentimentMethod *string
	Keywords        []string
	Phrases         []string
	ProcessedAt     *time.Time
}

// ReviewWrite is the ingestion shape accepted from acquisition code
type ReviewWrite struct {
	Source         string
	SourceReviewID string
	BusinessID     string
	BusinessName   string
	ReviewerName   *string
	Rating         *int
	Text           string
	Date           *time.Time
}

// Enrichment is the computed annotation written back onto a review
type Enrichment struct {
	Score    float64
	Label    string
	Method   string
	Keywords []string
	Phrases  []string
}

// Skip records one review left unprocessed during a batch and why
type Skip struct {
	ReviewID int64  `json:"review_id"`
	Reason   string `json:"reason"`
}

// BatchResult summarizes one enrichment batch
type BatchResult struct {
	Selected int    `json:"selected"`
	Enriched int    `json:"enriched"`
	Skips    []Skip `json:"skips,omitempty"`
}
