//go:build integration_pg
// +build integration_pg

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"localpulse/internal/platform/store"
	bizdomain "localpulse/internal/services/businesses/domain"
	bizrepo "localpulse/internal/services/businesses/repo"
	insdomain "localpulse/internal/services/insights/domain"
	insrepo "localpulse/internal/services/insights/repo"
	revdomain "localpulse/internal/services/reviews/domain"
	revrepo "localpulse/internal/services/reviews/repo"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openStore(t *testing.T, ctx context.Context, dsn string) *store.Store {
	t.Helper()
	if err := store.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2, ConnectRetries: 3},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func strPtr(s string) *string         { return &s }
func intPtr(v int) *int               { return &v }
func timePtr(ts time.Time) *time.Time { return &ts }

func TestReviewLifecycle_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStore(t, ctx, dsn)
	repo := revrepo.NewPG(st.PG)

	date := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	writes := []revdomain.ReviewWrite{
		{
			Source: "google", SourceReviewID: "g1", BusinessID: "b1",
			BusinessName: "Taco Town", ReviewerName: strPtr("Sam"),
			Rating: intPtr(5), Text: "amazing tacos", Date: timePtr(date),
		},
		{
			Source: "google", SourceReviewID: "g2", BusinessID: "b1",
			BusinessName: "Taco Town", Rating: intPtr(2), Text: "cold food",
			Date: timePtr(date.AddDate(0, 0, 1)),
		},
	}
	if n, err := repo.UpsertBatch(ctx, writes); err != nil || n != 2 {
		t.Fatalf("UpsertBatch = %d, %v", n, err)
	}

	// re-upsert updates source fields without creating duplicates
	writes[0].Text = "amazing tacos, great salsa"
	if _, err := repo.UpsertBatch(ctx, writes[:1]); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	pending, err := repo.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].Text != "amazing tacos, great salsa" {
		t.Fatalf("upsert did not update text: %q", pending[0].Text)
	}

	e := revdomain.Enrichment{
		Score: 0.82, Label: "positive", Method: "text",
		Keywords: []string{"tacos", "salsa"}, Phrases: []string{"great salsa"},
	}
	if err := repo.SaveEnrichment(ctx, pending[0].ID, e, time.Now().UTC()); err != nil {
		t.Fatalf("SaveEnrichment: %v", err)
	}

	pending, err = repo.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed after save: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending after save = %d, want 1", len(pending))
	}

	all, err := repo.ListForBusiness(ctx, "b1", 10)
	if err != nil {
		t.Fatalf("ListForBusiness: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("business reviews = %d, want 2", len(all))
	}
	for _, r := range all {
		if r.SentimentScore != nil {
			if *r.SentimentScore != 0.82 || len(r.Keywords) != 2 {
				t.Fatalf("stored enrichment = %+v", r)
			}
		}
	}

	texts, err := repo.ListRecentTexts(ctx, date.AddDate(0, 0, -1), 10)
	if err != nil {
		t.Fatalf("ListRecentTexts: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("texts = %v, want 2", texts)
	}
}

func TestBusinessAnalytics_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStore(t, ctx, dsn)
	bRepo := bizrepo.NewPG(st.PG)
	rRepo := revrepo.NewPG(st.PG)

	if _, err := bRepo.Upsert(ctx, []bizdomain.BusinessWrite{
		{Source: "google", SourceID: "b1", Name: "Taco Town", City: strPtr("Austin")},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// no reviews yet: absent, not zero
	if _, ok, err := bRepo.Aggregate(ctx, "b1"); err != nil || ok {
		t.Fatalf("Aggregate empty = ok=%v err=%v, want absent", ok, err)
	}

	date := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	if _, err := rRepo.UpsertBatch(ctx, []revdomain.ReviewWrite{
		{Source: "google", SourceReviewID: "g1", BusinessID: "b1", Rating: intPtr(5), Text: "great", Date: timePtr(date)},
		{Source: "google", SourceReviewID: "g2", BusinessID: "b1", Rating: intPtr(3), Text: "ok", Date: timePtr(date.AddDate(0, 0, 2))},
	}); err != nil {
		t.Fatalf("review upsert: %v", err)
	}

	sum, ok, err := bRepo.Aggregate(ctx, "b1")
	if err != nil || !ok {
		t.Fatalf("Aggregate = ok=%v err=%v", ok, err)
	}
	if sum.AvgRating != 4.0 || sum.TotalReviews != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.LatestReview == nil || !sum.LatestReview.Equal(date.AddDate(0, 0, 2)) {
		t.Fatalf("latest = %v", sum.LatestReview)
	}

	if err := bRepo.SaveAnalytics(ctx, "b1", sum, time.Now().UTC()); err != nil {
		t.Fatalf("SaveAnalytics: %v", err)
	}
	biz, ok, err := bRepo.Get(ctx, "b1")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if biz.Analytics == nil || biz.Analytics.TotalReviews != 2 {
		t.Fatalf("stored analytics = %+v", biz.Analytics)
	}
}

func TestTrendingSnapshot_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStore(t, ctx, dsn)
	now := time.Now().UTC().Truncate(time.Microsecond)

	// replace-all runs inside one tx guarded by the advisory lock
	err := st.PG.Tx(ctx, func(q store.RowQuerier) error {
		r := insrepo.NewPG(q)
		got, err := r.TryLock(ctx, 42)
		if err != nil {
			return err
		}
		if !got {
			t.Fatalf("lock should be free")
		}
		if err := r.DeleteAllTrending(ctx); err != nil {
			return err
		}
		return r.InsertTrending(ctx, []insdomain.TrendingKeyword{
			{Text: "tacos", Weight: 0.9, Count: 12, GeneratedAt: now, PeriodDays: 30},
			{Text: "patio", Weight: 0.4, Count: 5, GeneratedAt: now, PeriodDays: 30},
		})
	})
	if err != nil {
		t.Fatalf("snapshot tx: %v", err)
	}

	repo := insrepo.NewPG(st.PG)
	items, err := repo.ListTrending(ctx, 0)
	if err != nil {
		t.Fatalf("ListTrending: %v", err)
	}
	if len(items) != 2 || items[0].Text != "tacos" || items[1].Text != "patio" {
		t.Fatalf("items = %+v, want weight-descending order", items)
	}

	capped, err := repo.ListTrending(ctx, 1)
	if err != nil || len(capped) != 1 || capped[0].Text != "tacos" {
		t.Fatalf("ListTrending(1) = %+v, %v, want the heaviest row only", capped, err)
	}

	report := insdomain.AnomalyReport{
		BusinessID:   "b1",
		BusinessName: "Taco Town",
		Anomalies:    []insdomain.Anomaly{{Month: "2025-04", RatingChange: -1.2, Type: "decrease", Severity: "high"}},
		DetectedAt:   now,
	}
	if err := repo.UpsertAnomalyReport(ctx, report); err != nil {
		t.Fatalf("UpsertAnomalyReport: %v", err)
	}
	// second upsert overwrites, not duplicates
	report.Anomalies = nil
	if err := repo.UpsertAnomalyReport(ctx, report); err != nil {
		t.Fatalf("UpsertAnomalyReport again: %v", err)
	}
	got, ok, err := repo.GetAnomalyReport(ctx, "b1")
	if err != nil || !ok {
		t.Fatalf("GetAnomalyReport = ok=%v err=%v", ok, err)
	}
	if len(got.Anomalies) != 0 {
		t.Fatalf("report not overwritten: %+v", got)
	}

	pruned, err := repo.PruneTrending(ctx, now.Add(time.Minute))
	if err != nil || pruned != 2 {
		t.Fatalf("PruneTrending = %d, %v", pruned, err)
	}
}
