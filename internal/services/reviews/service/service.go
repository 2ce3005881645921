// Package service orchestrates review ingestion and enrichment
package service

import (
	"context"
	"time"

	"localpulse/internal/core/keywords"
	"localpulse/internal/core/sentiment"
	"localpulse/internal/core/textnorm"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/metrics"
	"localpulse/internal/platform/store"
	"localpulse/internal/services/reviews/domain"
)

// Config for the reviews service
type Config struct {
	// BatchLimit caps how many unprocessed reviews one EnrichBatch selects
	BatchLimit int

	// UsePattern switches the alternate pattern-average text scorer on
	UsePattern bool
}

// Service implements ingestion and enrichment over the review repo
type Service struct {
	storage  domain.StoragePort
	analyzer *sentiment.Analyzer
	extract  *keywords.Extractor
	norm     *textnorm.Normalizer

	// events is the optional clickhouse sink; nil disables event appends
	events store.Clickhouse

	cfg Config
	log *logger.Logger
}

// New constructs the reviews service. events may be nil
func New(storage domain.StoragePort, analyzer *sentiment.Analyzer, events store.Clickhouse, cfg Config) *Service {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 500
	}
	return &Service{
		storage:  storage,
		analyzer: analyzer,
		extract:  keywords.NewExtractor(),
		norm:     textnorm.New(),
		events:   events,
		cfg:      cfg,
		log:      logger.Named("reviews"),
	}
}

// Ingest upserts raw reviews from acquisition code
func (s *Service) Ingest(ctx context.Context, xs []domain.ReviewWrite) (int, error) {
	n, err := s.storage.UpsertBatch(ctx, xs)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("received", len(xs)).Int("written", n).Msg("reviews ingested")
	return n, nil
}

// EnrichBatch selects unprocessed reviews, annotates each with sentiment,
// keywords, and phrases, and persists the results. Failures on individual
// reviews are recorded as skips; only collaborator failures are hard errors
func (s *Service) EnrichBatch(ctx context.Context, limit int) (domain.BatchResult, error) {
	if limit <= 0 || limit > s.cfg.BatchLimit {
		limit = s.cfg.BatchLimit
	}

	pending, err := s.storage.ListUnprocessed(ctx, limit)
	if err != nil {
		return domain.BatchResult{}, err
	}

	res := domain.BatchResult{Selected: len(pending)}
	if len(pending) == 0 {
		return res, nil
	}

	now := time.Now().UTC()
	events := make([][]any, 0, len(pending))
	m := metrics.Get()

	for _, r := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		e := s.BuildEnrichment(r.Text, r.Rating)
		if err := s.storage.SaveEnrichment(ctx, r.ID, e, now); err != nil {
			res.Skips = append(res.Skips, domain.Skip{ReviewID: r.ID, Reason: err.Error()})
			m.EnrichmentSkips.WithLabelValues("save_failed").Inc()
			logger.C(ctx).Warn().Int64("review_id", r.ID).Err(err).Msg("enrichment save failed")
			continue
		}
		res.Enriched++
		m.ReviewsEnriched.Inc()
		events = append(events, []any{
			r.BusinessID, r.ID, e.Score, e.Label, e.Method, now,
		})
	}

	s.appendEvents(ctx, events)

	logger.C(ctx).Info().
		Int("selected", res.Selected).
		Int("enriched", res.Enriched).
		Int("skipped", len(res.Skips)).
		Msg("enrichment batch done")
	return res, nil
}

// BuildEnrichment computes the annotation for one review. Text is scored with
// the lexicon (or pattern) scorer; reviews with no scorable text fall back to
// their star rating; reviews with neither score 0.0 neutral
func (s *Service) BuildEnrichment(text string, rating *int) domain.Enrichment {
	var sc sentiment.Score
	switch {
	case s.norm.Clean(text) != "":
		if s.cfg.UsePattern {
			sc = s.analyzer.PatternScore(text)
		} else {
			sc = s.analyzer.Score(text)
		}
	case rating != nil:
		sc = sentiment.FromRating(*rating)
	default:
		sc = sentiment.Score{Compound: 0, Label: sentiment.LabelNeutral, Method: sentiment.MethodText}
	}

	return domain.Enrichment{
		Score:    sc.Compound,
		Label:    string(sc.Label),
		Method:   string(sc.Method),
		Keywords: s.extract.Keywords(text, keywords.DefaultKeywordLimit),
		Phrases:  s.extract.Phrases(text, keywords.DefaultPhraseLimit),
	}
}

// appendEvents best-effort writes sentiment events to the columnar sink.
// A sink failure never fails the batch; enrichment state lives in Postgres
func (s *Service) appendEvents(ctx context.Context, rows [][]any) {
	if s.events == nil || len(rows) == 0 {
		return
	}
	if err := s.events.Insert(ctx, "review_sentiment", rows); err != nil {
		logger.C(ctx).Warn().Err(err).Int("events", len(rows)).Msg("sentiment event append failed")
	}
}
