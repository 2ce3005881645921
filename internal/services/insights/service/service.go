// Package service provides trending keyword snapshots, rating anomaly
// detection, and retention cleanup
package service

import (
	"context"
	"time"

	"localpulse/internal/core/keywords"
	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/metrics"
	"localpulse/internal/platform/store"
	bizdomain "localpulse/internal/services/businesses/domain"
	"localpulse/internal/services/insights/domain"
	revdomain "localpulse/internal/services/reviews/domain"
)

// trendingLockKey serializes trending regeneration across processes
const trendingLockKey int64 = 0x6c70_7472 // "lptr"

// Config for the insights service
type Config struct {
	// TrendingLimit caps how many keywords one snapshot keeps
	TrendingLimit int

	// TrendingWindowDays is the default lookback for a snapshot
	TrendingWindowDays int

	// CorpusLimit caps how many review texts feed the vectorizer
	CorpusLimit int

	// ScanLimit caps how many businesses one anomaly scan covers
	ScanLimit int

	// KeepDays is the default retention for Cleanup
	KeepDays int
}

func (c *Config) defaults() {
	if c.TrendingLimit <= 0 {
		c.TrendingLimit = keywords.DefaultCorpusLimit
	}
	if c.TrendingWindowDays <= 0 {
		c.TrendingWindowDays = 30
	}
	if c.CorpusLimit <= 0 {
		c.CorpusLimit = 5000
	}
	if c.ScanLimit <= 0 || c.ScanLimit > 100 {
		c.ScanLimit = 100
	}
	if c.KeepDays <= 0 {
		c.KeepDays = 90
	}
}

// Binder rebinds the insights repo onto a querier, so trending writes can
// share one transaction
type Binder func(q store.RowQuerier) domain.StoragePort

// Service implements the insight operations
type Service struct {
	txr        store.TxRunner
	bind       Binder
	storage    domain.StoragePort
	reviews    revdomain.ReaderPort
	businesses bizdomain.StoragePort
	vec        *keywords.Vectorizer

	cfg Config
	log *logger.Logger
}

// New constructs the insights service. bind is applied to txr for plain reads
// and to each transaction querier for the replace-all snapshot
func New(
	txr store.TxRunner,
	bind Binder,
	reviews revdomain.ReaderPort,
	businesses bizdomain.StoragePort,
	cfg Config,
) *Service {
	cfg.defaults()
	return &Service{
		txr:        txr,
		bind:       bind,
		storage:    bind(txr),
		reviews:    reviews,
		businesses: businesses,
		vec:        keywords.NewVectorizer(),
		cfg:        cfg,
		log:        logger.Named("insights"),
	}
}

// GenerateTrending ranks the recent corpus and replaces the stored snapshot
// in one transaction. Regeneration is single-flight: when another process
// holds the lease this returns a Busy error and writes nothing
func (s *Service) GenerateTrending(ctx context.Context, windowDays int) ([]domain.TrendingKeyword, error) {
	if windowDays <= 0 {
		windowDays = s.cfg.TrendingWindowDays
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -windowDays)

	texts, err := s.reviews.ListRecentTexts(ctx, since, s.cfg.CorpusLimit)
	if err != nil {
		return nil, err
	}

	terms := s.vec.TopTerms(texts, s.cfg.TrendingLimit)
	items := make([]domain.TrendingKeyword, 0, len(terms))
	if len(terms) > 0 {
		termTexts := make([]string, len(terms))
		for i, t := range terms {
			termTexts[i] = t.Text
		}
		cloud := keywords.Cloud(texts, termTexts)
		for i, t := range terms {
			items = append(items, domain.TrendingKeyword{
				Text:        t.Text,
				Weight:      t.Weight,
				Count:       cloud[i].Count,
				GeneratedAt: now,
				PeriodDays:  windowDays,
			})
		}
	}

	err = s.txr.Tx(ctx, func(q store.RowQuerier) error {
		r := s.bind(q)
		got, err := r.TryLock(ctx, trendingLockKey)
		if err != nil {
			return err
		}
		if !got {
			return perr.Busyf("trending generation already running")
		}
		if err := r.DeleteAllTrending(ctx); err != nil {
			return err
		}
		return r.InsertTrending(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	metrics.Get().TrendingGenerated.Inc()
	logger.C(ctx).Info().
		Int("texts", len(texts)).
		Int("keywords", len(items)).
		Int("window_days", windowDays).
		Msg("trending snapshot replaced")
	return items, nil
}

// Trending returns the current snapshot, capped at limit rows; a
// non-positive limit falls back to the configured snapshot size
func (s *Service) Trending(ctx context.Context, limit int) ([]domain.TrendingKeyword, error) {
	if limit <= 0 {
		limit = s.cfg.TrendingLimit
	}
	return s.storage.ListTrending(ctx, limit)
}

// DetectAnomalies recomputes the rating anomaly report for one business and
// overwrites its stored report. A thin review history yields an empty report
func (s *Service) DetectAnomalies(ctx context.Context, businessID string, threshold float64) (domain.AnomalyReport, error) {
	biz, ok, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return domain.AnomalyReport{}, err
	}
	if !ok {
		return domain.AnomalyReport{}, perr.NotFoundf("business %s", businessID)
	}

	revs, err := s.reviews.ListForBusiness(ctx, businessID, maxDetectReviews)
	if err != nil {
		return domain.AnomalyReport{}, err
	}

	// the floor counts every fetched review; unrated and undated rows still
	// contribute to it before the detector drops them
	var anomalies []domain.Anomaly
	if len(revs) >= minDetectReviews {
		rated := make([]RatedReview, 0, len(revs))
		for _, r := range revs {
			if r.Rating == nil || r.Date == nil {
				continue
			}
			rated = append(rated, RatedReview{Rating: *r.Rating, Date: *r.Date})
		}
		anomalies = DetectRatingAnomalies(rated, threshold)
	}

	report := domain.AnomalyReport{
		BusinessID:   businessID,
		BusinessName: biz.Name,
		Anomalies:    anomalies,
		DetectedAt:   time.Now().UTC(),
	}
	if err := s.storage.UpsertAnomalyReport(ctx, report); err != nil {
		return domain.AnomalyReport{}, err
	}
	if n := len(report.Anomalies); n > 0 {
		metrics.Get().AnomaliesFound.Add(float64(n))
	}
	return report, nil
}

// ScanAnomalies re-detects across stored businesses, soft-failing per business
func (s *Service) ScanAnomalies(ctx context.Context, limit int) (domain.ScanResult, error) {
	if limit <= 0 || limit > s.cfg.ScanLimit {
		limit = s.cfg.ScanLimit
	}
	ids, err := s.businesses.ListIDs(ctx, limit)
	if err != nil {
		return domain.ScanResult{}, err
	}

	res := domain.ScanResult{Scanned: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		report, err := s.DetectAnomalies(ctx, id, 0)
		if err != nil {
			res.Failed = append(res.Failed, id)
			logger.C(ctx).Warn().Str("business_id", id).Err(err).Msg("anomaly detection failed")
			continue
		}
		res.Reported++
		res.AnomaliesFound += len(report.Anomalies)
	}

	logger.C(ctx).Info().
		Int("scanned", res.Scanned).
		Int("reported", res.Reported).
		Int("anomalies", res.AnomaliesFound).
		Msg("anomaly scan done")
	return res, nil
}

// Cleanup prunes trending rows and anomaly reports older than keepDays
func (s *Service) Cleanup(ctx context.Context, keepDays int) (domain.CleanupResult, error) {
	if keepDays <= 0 {
		keepDays = s.cfg.KeepDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)

	var res domain.CleanupResult
	var err error
	if res.TrendingPruned, err = s.storage.PruneTrending(ctx, cutoff); err != nil {
		return res, err
	}
	if res.AnomaliesPruned, err = s.storage.PruneAnomalies(ctx, cutoff); err != nil {
		return res, err
	}

	logger.C(ctx).Info().
		Int64("trending_pruned", res.TrendingPruned).
		Int64("anomalies_pruned", res.AnomaliesPruned).
		Int("keep_days", keepDays).
		Msg("cleanup done")
	return res, nil
}
