package domain

import (
	"context"
	"time"
)

// StoragePort is the insights repository surface. The trending writes are
// meant to run inside one transaction together with TryLock
type StoragePort interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	DeleteAllTrending(ctx context.Context) error
	InsertTrending(ctx context.Context, xs []TrendingKeyword) error
	ListTrending(ctx context.Context, limit int) ([]TrendingKeyword, error)

	UpsertAnomalyReport(ctx context.Context, r AnomalyReport) error
	GetAnomalyReport(ctx context.Context, businessID string) (AnomalyReport, bool, error)

	PruneTrending(ctx context.Context, cutoff time.Time) (int64, error)
	PruneAnomalies(ctx context.Context, cutoff time.Time) (int64, error)
}
