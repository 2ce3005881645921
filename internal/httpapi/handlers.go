package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/logger"
	"localpulse/internal/platform/metrics"
	bizdomain "localpulse/internal/services/businesses/domain"
	insdomain "localpulse/internal/services/insights/domain"
	revdomain "localpulse/internal/services/reviews/domain"
)

// BusinessService is the slice of the businesses service the API serves
type BusinessService interface {
	Analytics(ctx context.Context, businessID string) (bizdomain.Summary, bool, error)
	CompetitorMetrics(ctx context.Context, ids []string) (bizdomain.CompetitorReport, error)
}

// InsightService is the slice of the insights service the API serves
type InsightService interface {
	Trending(ctx context.Context, limit int) ([]insdomain.TrendingKeyword, error)
	DetectAnomalies(ctx context.Context, businessID string, threshold float64) (insdomain.AnomalyReport, error)
	SentimentTrend(ctx context.Context, businessID, period string) ([]insdomain.TrendPoint, error)
	GenerateTrending(ctx context.Context, windowDays int) ([]insdomain.TrendingKeyword, error)
}

// ReviewService is the slice of the reviews service the API serves
type ReviewService interface {
	EnrichBatch(ctx context.Context, limit int) (revdomain.BatchResult, error)
}

// Health reports backend readiness
type Health interface {
	Guard(ctx context.Context) error
}

// API holds the handler set and its service dependencies
type API struct {
	Businesses BusinessService
	Insights   InsightService
	Reviews    ReviewService
	Health     Health
}

// Mount attaches every route to the router
func (a *API) Mount(r chi.Router) {
	r.Get("/healthz", a.healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/businesses/{id}/analytics", handle(a.businessAnalytics))
		r.Get("/businesses/{id}/anomalies", handle(a.businessAnomalies))
		r.Get("/businesses/{id}/sentiment-trend", handle(a.sentimentTrend))
		r.Post("/competitors", handleJSON(a.competitors))
		r.Get("/keywords/trending", handle(a.trending))
		r.Post("/pipeline/enrich", handleJSON(a.triggerEnrich))
		r.Post("/pipeline/trending", handleJSON(a.triggerTrending))
	})
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.Health.Guard(r.Context()); err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("health check failed")
		RespondError(w, r, perr.Unavailablef("backend not ready"))
		return
	}
	RespondOK(w, r, map[string]bool{"healthy": true})
}

func (a *API) businessAnalytics(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	ctx := logger.WithBusiness(r.Context(), id)

	sum, ok, err := a.Businesses.Analytics(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("no reviews for business %s", id)
	}
	return sum, nil
}

func (a *API) businessAnomalies(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	ctx := logger.WithBusiness(r.Context(), id)

	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return nil, perr.InvalidArgf("threshold must be a positive number")
		}
		threshold = v
	}
	return a.Insights.DetectAnomalies(ctx, id, threshold)
}

func (a *API) sentimentTrend(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	ctx := logger.WithBusiness(r.Context(), id)

	// period validation is the service's business
	return a.Insights.SentimentTrend(ctx, id, r.URL.Query().Get("period"))
}

// CompetitorsInput is the comparison request body
type CompetitorsInput struct {
	BusinessIDs []string `json:"business_ids" validate:"required,min=1,max=50,dive,required"`
}

func (a *API) competitors(r *http.Request, in CompetitorsInput) (any, error) {
	return a.Businesses.CompetitorMetrics(r.Context(), in.BusinessIDs)
}

func (a *API) trending(r *http.Request) (any, error) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, perr.InvalidArgf("limit must be a positive integer")
		}
		limit = v
	}
	return a.Insights.Trending(r.Context(), limit)
}

// EnrichInput is the admin enrichment trigger body
type EnrichInput struct {
	Limit int `json:"limit" validate:"gte=0,lte=5000"`
}

func (a *API) triggerEnrich(r *http.Request, in EnrichInput) (any, error) {
	return a.Reviews.EnrichBatch(r.Context(), in.Limit)
}

// TrendingInput is the admin trending trigger body
type TrendingInput struct {
	Days int `json:"days" validate:"gte=0,lte=365"`
}

func (a *API) triggerTrending(r *http.Request, in TrendingInput) (any, error) {
	items, err := a.Insights.GenerateTrending(r.Context(), in.Days)
	if err != nil {
		return nil, err
	}
	return map[string]any{"generated": len(items), "keywords": items}, nil
}
