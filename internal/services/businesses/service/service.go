// Package service provides business analytics rollups and competitor comparison
package service

import (
	"context"
	"math"
	"time"

	"localpulse/internal/platform/logger"
	"localpulse/internal/services/businesses/domain"
)

// Config for the businesses service
type Config struct {
	// RefreshLimit caps how many businesses one RefreshAll pass touches
	RefreshLimit int
}

// Service implements analytics reads and snapshot refreshes
type Service struct {
	storage domain.StoragePort
	cfg     Config
	log     *logger.Logger
}

// New constructs the businesses service
func New(storage domain.StoragePort, cfg Config) *Service {
	if cfg.RefreshLimit <= 0 {
		cfg.RefreshLimit = 100
	}
	return &Service{storage: storage, cfg: cfg, log: logger.Named("businesses")}
}

// Ingest upserts raw listings from acquisition code
func (s *Service) Ingest(ctx context.Context, xs []domain.BusinessWrite) (int, error) {
	n, err := s.storage.Upsert(ctx, xs)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("received", len(xs)).Int("written", n).Msg("businesses ingested")
	return n, nil
}

// Get fetches one business with its stored analytics snapshot
func (s *Service) Get(ctx context.Context, businessID string) (domain.Business, bool, error) {
	return s.storage.Get(ctx, businessID)
}

// Analytics computes the live rollup for one business.
// ok=false means the business has no reviews: absent, not zero-filled
func (s *Service) Analytics(ctx context.Context, businessID string) (domain.Summary, bool, error) {
	return s.storage.Aggregate(ctx, businessID)
}

// RefreshAnalytics recomputes and overwrites one business's snapshot.
// Businesses without reviews are skipped (false, nil)
func (s *Service) RefreshAnalytics(ctx context.Context, businessID string) (bool, error) {
	sum, ok, err := s.storage.Aggregate(ctx, businessID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.storage.SaveAnalytics(ctx, businessID, sum, time.Now().UTC()); err != nil {
		return false, err
	}
	return true, nil
}

// RefreshAll refreshes snapshots across stored businesses, soft-failing per
// business, and returns how many were updated
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.storage.ListIDs(ctx, s.cfg.RefreshLimit)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		ok, err := s.RefreshAnalytics(ctx, id)
		if err != nil {
			logger.C(ctx).Warn().Str("business_id", id).Err(err).Msg("analytics refresh failed")
			continue
		}
		if ok {
			refreshed++
		}
	}

	logger.C(ctx).Info().Int("candidates", len(ids)).Int("refreshed", refreshed).Msg("analytics refresh done")
	return refreshed, nil
}

// CompetitorMetrics compares the given businesses with unweighted means.
// Unknown ids are silently skipped; an empty or all-unknown input yields an
// empty report rather than an error
func (s *Service) CompetitorMetrics(ctx context.Context, ids []string) (domain.CompetitorReport, error) {
	report := domain.CompetitorReport{Requested: len(ids)}
	if len(ids) == 0 {
		return report, nil
	}

	entries, err := s.storage.MetricsFor(ctx, ids)
	if err != nil {
		return domain.CompetitorReport{}, err
	}
	report.Compared = len(entries)
	report.Businesses = entries
	if len(entries) == 0 {
		return report, nil
	}

	var ratingSum, countSum, sentSum float64
	for _, e := range entries {
		if e.Rating != nil {
			ratingSum += *e.Rating
		}
		if e.ReviewCount != nil {
			countSum += float64(*e.ReviewCount)
		}
		if e.AvgSentiment != nil {
			sentSum += *e.AvgSentiment
		}
	}
	n := float64(len(entries))
	report.AvgRating = round(ratingSum/n, 2)
	report.AvgReviewCount = int(countSum / n)
	report.AvgSentiment = round(sentSum/n, 3)
	return report, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
