// Package metrics registers the prometheus instruments shared by the API and
// pipeline binaries
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// M holds the instrument set; obtain it via Get
type M struct {
	ReviewsEnriched   prometheus.Counter
	EnrichmentSkips   *prometheus.CounterVec
	AnomaliesFound    prometheus.Counter
	TrendingGenerated prometheus.Counter
	StageDuration     *prometheus.HistogramVec
	HTTPRequests      *prometheus.CounterVec
}

var (
	once sync.Once
	m    *M
)

// Get returns the process-wide instrument set, registering on first use
func Get() *M {
	once.Do(func() {
		m = &M{
			ReviewsEnriched: promauto.NewCounter(prometheus.CounterOpts{
				Name: "localpulse_reviews_enriched_total",
				Help: "Reviews successfully enriched with sentiment and keywords",
			}),
			EnrichmentSkips: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "localpulse_enrichment_skips_total",
				Help: "Reviews skipped during enrichment by reason",
			}, []string{"reason"}),
			AnomaliesFound: promauto.NewCounter(prometheus.CounterOpts{
				Name: "localpulse_rating_anomalies_total",
				Help: "Rating anomalies detected across scans",
			}),
			TrendingGenerated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "localpulse_trending_generations_total",
				Help: "Completed trending keyword snapshot generations",
			}),
			StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "localpulse_pipeline_stage_duration_seconds",
				Help:    "Wall time of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			}, []string{"stage"}),
			HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "localpulse_http_requests_total",
				Help: "HTTP requests by route and status class",
			}, []string{"route", "status"}),
		}
	})
	return m
}

// ObserveStage records one stage execution
func ObserveStage(stage string, d time.Duration) {
	Get().StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Handler exposes the default prometheus registry
func Handler() http.Handler { return promhttp.Handler() }
