package domain

import (
	"context"
	"time"
)

// WriterPort ingests raw reviews and persists enrichment results
type WriterPort interface {
	UpsertBatch(ctx context.Context, xs []ReviewWrite) (int, error)
	SaveEnrichment(ctx context.Context, reviewID int64, e Enrichment, processedAt time.Time) error
}

// ReaderPort selects reviews for enrichment and rollups
type ReaderPort interface {
	ListUnprocessed(ctx context.Context, limit int) ([]Review, error)
	ListForBusiness(ctx context.Context, businessID string, limit int) ([]Review, error)
	ListRecentTexts(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// StoragePort is the full repository surface
type StoragePort interface {
	WriterPort
	ReaderPort
}
