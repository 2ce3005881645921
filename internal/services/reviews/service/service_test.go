package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"localpulse/internal/core/sentiment"
	"localpulse/internal/platform/store"
	"localpulse/internal/services/reviews/domain"
)

// fakeStorage is an in-memory StoragePort
type fakeStorage struct {
	reviews  map[int64]*domain.Review
	failSave map[int64]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{reviews: make(map[int64]*domain.Review), failSave: make(map[int64]bool)}
}

func (f *fakeStorage) add(id int64, businessID, text string, rating *int) {
	f.reviews[id] = &domain.Review{
		ID: id, Source: "test", SourceReviewID: "sr", BusinessID: businessID,
		Text: text, Rating: rating,
	}
}

func (f *fakeStorage) UpsertBatch(_ context.Context, xs []domain.ReviewWrite) (int, error) {
	return len(xs), nil
}

func (f *fakeStorage) SaveEnrichment(_ context.Context, id int64, e domain.Enrichment, at time.Time) error {
	if f.failSave[id] {
		return context.DeadlineExceeded
	}
	r, ok := f.reviews[id]
	if !ok {
		return context.Canceled
	}
	r.SentimentScore = &e.Score
	r.SentimentLabel = &e.Label
	r.SentimentMethod = &e.Method
	r.Keywords = e.Keywords
	r.Phrases = e.Phrases
	r.ProcessedAt = &at
	return nil
}

func (f *fakeStorage) ListUnprocessed(_ context.Context, limit int) ([]domain.Review, error) {
	var out []domain.Review
	for id := int64(1); id <= int64(len(f.reviews))+100 && len(out) < limit; id++ {
		r, ok := f.reviews[id]
		if !ok || r.SentimentScore != nil {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStorage) ListForBusiness(_ context.Context, businessID string, limit int) ([]domain.Review, error) {
	var out []domain.Review
	for _, r := range f.reviews {
		if r.BusinessID == businessID && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStorage) ListRecentTexts(_ context.Context, _ time.Time, limit int) ([]string, error) {
	var out []string
	for _, r := range f.reviews {
		if r.Text != "" && len(out) < limit {
			out = append(out, r.Text)
		}
	}
	return out, nil
}

// fakeSink captures clickhouse appends
type fakeSink struct {
	inserts [][]any
	tables  []string
}

func (f *fakeSink) Insert(_ context.Context, table string, data any) error {
	f.tables = append(f.tables, table)
	f.inserts = append(f.inserts, data.([][]any)...)
	return nil
}

func (f *fakeSink) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeSink) Exec(context.Context, string, ...any) error                { return nil }
func (f *fakeSink) Close() error                                              { return nil }

func newService(t *testing.T, st domain.StoragePort, sink store.Clickhouse, cfg Config) *Service {
	t.Helper()
	a, err := sentiment.New()
	if err != nil {
		t.Fatalf("sentiment.New: %v", err)
	}
	return New(st, a, sink, cfg)
}

func intPtr(v int) *int { return &v }

func TestEnrichBatch(t *testing.T) {
	st := newFakeStorage()
	st.add(1, "b1", "The tacos were absolutely amazing, crispy and fresh!", nil)
	st.add(2, "b1", "Terrible service, the soup was cold and the waiter was rude.", nil)
	st.add(3, "b2", "", intPtr(5))

	sink := &fakeSink{}
	svc := newService(t, st, sink, Config{})

	res, err := svc.EnrichBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if res.Selected != 3 || res.Enriched != 3 || len(res.Skips) != 0 {
		t.Fatalf("result = %+v, want 3 selected, 3 enriched, 0 skips", res)
	}

	r1 := st.reviews[1]
	if r1.SentimentScore == nil || *r1.SentimentLabel != "positive" || *r1.SentimentMethod != "text" {
		t.Fatalf("review 1 enrichment = %+v", r1)
	}
	if len(r1.Keywords) == 0 {
		t.Fatalf("review 1 has no keywords")
	}
	r2 := st.reviews[2]
	if *r2.SentimentLabel != "negative" {
		t.Fatalf("review 2 label = %q, want negative", *r2.SentimentLabel)
	}
	r3 := st.reviews[3]
	if *r3.SentimentMethod != "rating" || *r3.SentimentScore != 0.75 {
		t.Fatalf("review 3 fallback = %+v", r3)
	}

	if len(sink.inserts) != 3 || sink.tables[0] != "review_sentiment" {
		t.Fatalf("sink got %d rows tables=%v, want 3 review_sentiment rows", len(sink.inserts), sink.tables)
	}

	// second run selects nothing: enrichment is idempotent over processed rows
	res2, err := svc.EnrichBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("EnrichBatch second run: %v", err)
	}
	if res2.Selected != 0 || res2.Enriched != 0 {
		t.Fatalf("second run = %+v, want empty", res2)
	}
}

func TestEnrichBatch_SoftFailSkips(t *testing.T) {
	st := newFakeStorage()
	st.add(1, "b1", "lovely experience, wonderful staff", nil)
	st.add(2, "b1", "awful, never again", nil)
	st.failSave[1] = true

	svc := newService(t, st, nil, Config{})

	res, err := svc.EnrichBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if res.Enriched != 1 || len(res.Skips) != 1 {
		t.Fatalf("result = %+v, want 1 enriched 1 skip", res)
	}
	if res.Skips[0].ReviewID != 1 || res.Skips[0].Reason == "" {
		t.Fatalf("skip = %+v", res.Skips[0])
	}
	if st.reviews[2].SentimentScore == nil {
		t.Fatalf("review 2 should still be enriched after review 1 failed")
	}
}

func TestEnrichBatch_NoSinkNoPending(t *testing.T) {
	svc := newService(t, newFakeStorage(), nil, Config{})
	res, err := svc.EnrichBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("EnrichBatch: %v", err)
	}
	if res.Selected != 0 {
		t.Fatalf("result = %+v, want empty", res)
	}
}

func TestBuildEnrichment(t *testing.T) {
	svc := newService(t, newFakeStorage(), nil, Config{})

	e := svc.BuildEnrichment("The pasta was excellent and the patio was cozy", nil)
	if e.Method != "text" || e.Label != "positive" {
		t.Fatalf("text enrichment = %+v", e)
	}
	for _, k := range e.Keywords {
		if strings.Contains(k, " ") {
			t.Fatalf("keyword %q contains space", k)
		}
	}

	e = svc.BuildEnrichment("", intPtr(2))
	if e.Method != "rating" || e.Label != "negative" || e.Score != -0.25 {
		t.Fatalf("rating enrichment = %+v", e)
	}
	if e.Keywords != nil || e.Phrases != nil {
		t.Fatalf("empty text should yield no keywords/phrases: %+v", e)
	}

	e = svc.BuildEnrichment("", nil)
	if e.Method != "text" || e.Label != "neutral" || e.Score != 0 {
		t.Fatalf("no-signal enrichment = %+v", e)
	}

	// punctuation-only text is unscorable and falls back to the rating
	e = svc.BuildEnrichment("!!!", intPtr(4))
	if e.Method != "rating" || e.Score != 0.5 {
		t.Fatalf("unscorable-text enrichment = %+v", e)
	}
}

func TestBuildEnrichment_PatternMode(t *testing.T) {
	svc := newService(t, newFakeStorage(), nil, Config{UsePattern: true})
	e := svc.BuildEnrichment("good", nil)
	if e.Method != "pattern" || e.Label != "positive" {
		t.Fatalf("pattern enrichment = %+v", e)
	}
}
