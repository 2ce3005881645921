// Package service chains the processing stages into one pipeline run:
// enrichment, analytics refresh, trending regeneration, anomaly scan
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/metrics"
	insdomain "localpulse/internal/services/insights/domain"
	revdomain "localpulse/internal/services/reviews/domain"
)

// Stage names as they appear in logs and metrics
const (
	StageEnrich    = "enrich"
	StageAnalytics = "analytics"
	StageTrending  = "trending"
	StageAnomalies = "anomalies"
)

// Enricher is the slice of the reviews service a run needs
type Enricher interface {
	EnrichBatch(ctx context.Context, limit int) (revdomain.BatchResult, error)
}

// Refresher is the slice of the businesses service a run needs
type Refresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Insighter is the slice of the insights service a run needs
type Insighter interface {
	GenerateTrending(ctx context.Context, windowDays int) ([]insdomain.TrendingKeyword, error)
	ScanAnomalies(ctx context.Context, limit int) (insdomain.ScanResult, error)
}

// Config for a pipeline run
type Config struct {
	// EnrichLimit caps reviews per enrichment batch; 0 uses the reviews default
	EnrichLimit int

	// TrendingWindowDays is the snapshot lookback; 0 uses the insights default
	TrendingWindowDays int

	// ScanLimit caps businesses per anomaly scan; 0 uses the insights default
	ScanLimit int
}

// RunReport summarizes one full pipeline run
type RunReport struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`

	Enriched        int  `json:"enriched"`
	Skipped         int  `json:"skipped"`
	Refreshed       int  `json:"refreshed"`
	TrendingCount   int  `json:"trending_count"`
	TrendingSkipped bool `json:"trending_skipped"`
	Scanned         int  `json:"scanned"`
	AnomaliesFound  int  `json:"anomalies_found"`
}

// Service runs the stages in order
type Service struct {
	reviews    Enricher
	businesses Refresher
	insights   Insighter

	cfg Config
	log *logger.Logger
}

// New constructs the pipeline service
func New(reviews Enricher, businesses Refresher, insights Insighter, cfg Config) *Service {
	return &Service{
		reviews:    reviews,
		businesses: businesses,
		insights:   insights,
		cfg:        cfg,
		log:        logger.Named("pipeline"),
	}
}

// Run executes enrichment, analytics refresh, trending regeneration, and the
// anomaly scan in order. A stage failure aborts the run, except trending held
// by another process, which is skipped. Every log line of the run carries a
// fresh run id
func (s *Service) Run(ctx context.Context) (RunReport, error) {
	report := RunReport{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}
	ctx = logger.WithRun(ctx, report.RunID)
	log := logger.C(ctx)
	log.Info().Msg("pipeline run started")

	err := s.stage(ctx, StageEnrich, func() error {
		res, err := s.reviews.EnrichBatch(ctx, s.cfg.EnrichLimit)
		if err != nil {
			return err
		}
		report.Enriched = res.Enriched
		report.Skipped = len(res.Skips)
		return nil
	})
	if err != nil {
		return report, err
	}

	err = s.stage(ctx, StageAnalytics, func() error {
		n, err := s.businesses.RefreshAll(ctx)
		if err != nil {
			return err
		}
		report.Refreshed = n
		return nil
	})
	if err != nil {
		return report, err
	}

	err = s.stage(ctx, StageTrending, func() error {
		items, err := s.insights.GenerateTrending(ctx, s.cfg.TrendingWindowDays)
		if perr.IsCode(err, perr.ErrorCodeBusy) {
			report.TrendingSkipped = true
			log.Info().Msg("trending held elsewhere, skipping stage")
			return nil
		}
		if err != nil {
			return err
		}
		report.TrendingCount = len(items)
		return nil
	})
	if err != nil {
		return report, err
	}

	err = s.stage(ctx, StageAnomalies, func() error {
		res, err := s.insights.ScanAnomalies(ctx, s.cfg.ScanLimit)
		if err != nil {
			return err
		}
		report.Scanned = res.Scanned
		report.AnomaliesFound = res.AnomaliesFound
		return nil
	})
	if err != nil {
		return report, err
	}

	report.Duration = time.Since(report.Started)
	log.Info().
		Int("enriched", report.Enriched).
		Int("refreshed", report.Refreshed).
		Int("trending", report.TrendingCount).
		Bool("trending_skipped", report.TrendingSkipped).
		Int("anomalies", report.AnomaliesFound).
		Dur("duration", report.Duration).
		Msg("pipeline run done")
	return report, nil
}

// stage times one stage and wraps its failure with the stage name
func (s *Service) stage(ctx context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		logger.C(ctx).Error().Str("stage", name).Err(err).Msg("pipeline stage failed")
		return perr.Wrapf(err, perr.CodeOf(err), "pipeline stage %s", name)
	}
	logger.C(ctx).Debug().Str("stage", name).Dur("took", time.Since(start)).Msg("pipeline stage done")
	return nil
}
