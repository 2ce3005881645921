package service

import (
	"context"
	"testing"
	"time"

	"localpulse/internal/services/businesses/domain"
)

type fakeStorage struct {
	summaries map[string]domain.Summary
	entries   map[string]domain.CompetitorEntry
	saved     map[string]domain.Summary
	ids       []string
	failAgg   map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		summaries: make(map[string]domain.Summary),
		entries:   make(map[string]domain.CompetitorEntry),
		saved:     make(map[string]domain.Summary),
		failAgg:   make(map[string]bool),
	}
}

func (f *fakeStorage) Upsert(_ context.Context, xs []domain.BusinessWrite) (int, error) {
	return len(xs), nil
}

func (f *fakeStorage) Get(_ context.Context, id string) (domain.Business, bool, error) {
	if _, ok := f.summaries[id]; !ok {
		return domain.Business{}, false, nil
	}
	return domain.Business{SourceID: id}, true, nil
}

func (f *fakeStorage) ListIDs(_ context.Context, limit int) ([]string, error) {
	if len(f.ids) > limit {
		return f.ids[:limit], nil
	}
	return f.ids, nil
}

func (f *fakeStorage) Aggregate(_ context.Context, id string) (domain.Summary, bool, error) {
	if f.failAgg[id] {
		return domain.Summary{}, false, context.DeadlineExceeded
	}
	s, ok := f.summaries[id]
	return s, ok, nil
}

func (f *fakeStorage) SaveAnalytics(_ context.Context, id string, s domain.Summary, _ time.Time) error {
	f.saved[id] = s
	return nil
}

func (f *fakeStorage) MetricsFor(_ context.Context, ids []string) ([]domain.CompetitorEntry, error) {
	var out []domain.CompetitorEntry
	for _, id := range ids {
		if e, ok := f.entries[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func TestAnalytics_AbsentVsZero(t *testing.T) {
	st := newFakeStorage()
	st.summaries["b1"] = domain.Summary{AvgRating: 4.2, TotalReviews: 12, AvgSentiment: 0.31}
	svc := New(st, Config{})

	sum, ok, err := svc.Analytics(context.Background(), "b1")
	if err != nil || !ok {
		t.Fatalf("Analytics(b1) = %v ok=%v err=%v", sum, ok, err)
	}
	if sum.TotalReviews != 12 {
		t.Fatalf("summary = %+v", sum)
	}

	// no reviews: absent, not a zero-filled summary
	_, ok, err = svc.Analytics(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Analytics(missing): %v", err)
	}
	if ok {
		t.Fatalf("Analytics(missing) ok=true, want false")
	}
}

func TestRefreshAll_SoftFails(t *testing.T) {
	st := newFakeStorage()
	st.ids = []string{"b1", "b2", "b3", "b4"}
	st.summaries["b1"] = domain.Summary{AvgRating: 4, TotalReviews: 3}
	st.summaries["b3"] = domain.Summary{AvgRating: 2, TotalReviews: 7}
	st.failAgg["b2"] = true
	// b4 has no reviews: skipped quietly

	svc := New(st, Config{})
	n, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("refreshed = %d, want 2", n)
	}
	if _, ok := st.saved["b1"]; !ok {
		t.Fatalf("b1 snapshot not saved")
	}
	if _, ok := st.saved["b4"]; ok {
		t.Fatalf("b4 snapshot saved despite no reviews")
	}
}

func TestRefreshAll_HonorsLimit(t *testing.T) {
	st := newFakeStorage()
	st.ids = []string{"b1", "b2", "b3"}
	st.summaries["b1"] = domain.Summary{TotalReviews: 1}
	st.summaries["b2"] = domain.Summary{TotalReviews: 1}
	st.summaries["b3"] = domain.Summary{TotalReviews: 1}

	svc := New(st, Config{RefreshLimit: 2})
	n, err := svc.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("refreshed = %d, want 2 (limit)", n)
	}
}

func TestCompetitorMetrics(t *testing.T) {
	st := newFakeStorage()
	st.entries["b1"] = domain.CompetitorEntry{
		BusinessID: "b1", Name: "One", Rating: f64(4.5), ReviewCount: i(100), AvgSentiment: f64(0.42),
	}
	st.entries["b2"] = domain.CompetitorEntry{
		BusinessID: "b2", Name: "Two", Rating: f64(3.0), ReviewCount: i(41), AvgSentiment: f64(-0.1111),
	}
	svc := New(st, Config{})

	// "ghost" does not exist and is silently skipped
	got, err := svc.CompetitorMetrics(context.Background(), []string{"b1", "ghost", "b2"})
	if err != nil {
		t.Fatalf("CompetitorMetrics: %v", err)
	}
	if got.Requested != 3 || got.Compared != 2 {
		t.Fatalf("report counts = %+v", got)
	}
	if got.AvgRating != 3.75 {
		t.Fatalf("avg rating = %v, want 3.75", got.AvgRating)
	}
	if got.AvgReviewCount != 70 {
		t.Fatalf("avg review count = %v, want 70", got.AvgReviewCount)
	}
	if got.AvgSentiment != 0.154 {
		t.Fatalf("avg sentiment = %v, want 0.154", got.AvgSentiment)
	}
}

func TestCompetitorMetrics_EmptyInput(t *testing.T) {
	svc := New(newFakeStorage(), Config{})

	got, err := svc.CompetitorMetrics(context.Background(), nil)
	if err != nil {
		t.Fatalf("CompetitorMetrics: %v", err)
	}
	if got.Requested != 0 || got.Compared != 0 || got.AvgRating != 0 {
		t.Fatalf("empty report = %+v", got)
	}

	got, err = svc.CompetitorMetrics(context.Background(), []string{"ghost"})
	if err != nil {
		t.Fatalf("CompetitorMetrics(ghost): %v", err)
	}
	if got.Requested != 1 || got.Compared != 0 {
		t.Fatalf("all-unknown report = %+v", got)
	}
}
