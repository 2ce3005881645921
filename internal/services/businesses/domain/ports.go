package domain

import (
	"context"
	"time"
)

// StoragePort is the business repository surface
type StoragePort interface {
	Upsert(ctx context.Context, xs []BusinessWrite) (int, error)
	Get(ctx context.Context, businessID string) (Business, bool, error)
	ListIDs(ctx context.Context, limit int) ([]string, error)

	// Aggregate computes the live rollup from reviews; ok=false when the
	// business has no reviews at all
	Aggregate(ctx context.Context, businessID string) (Summary, bool, error)

	// SaveAnalytics overwrites the stored snapshot and its timestamp
	SaveAnalytics(ctx context.Context, businessID string, s Summary, at time.Time) error

	// MetricsFor returns entries for the ids that exist; missing ids are
	// silently absent from the result
	MetricsFor(ctx context.Context, ids []string) ([]CompetitorEntry, error)
}
