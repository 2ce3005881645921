package service

import (
	"context"
	"testing"
	"time"

	perr "localpulse/internal/platform/errors"
	revdomain "localpulse/internal/services/reviews/domain"
)

func enrichedAt(rating int, score float64, y int, m time.Month, d int) revdomain.Review {
	r := ratedAt(rating, y, m, d)
	r.SentimentScore = &score
	return r
}

func TestSentimentTrend_MonthlyBuckets(t *testing.T) {
	rv := &fakeReviews{byBiz: map[string][]revdomain.Review{"b1": {
		enrichedAt(5, 0.5, 2025, time.March, 3),
		enrichedAt(4, 0.25, 2025, time.March, 12),
		enrichedAt(4, 0.26, 2025, time.March, 20),
		enrichedAt(2, -0.4, 2025, time.April, 2),
		enrichedAt(1, -0.6, 2025, time.April, 9),
	}}}
	bz := &fakeBusinesses{names: map[string]string{"b1": "Taco Town"}}
	svc := newInsights(newFakeInsightsStore(), rv, bz, Config{})

	got, err := svc.SentimentTrend(context.Background(), "b1", "")
	if err != nil {
		t.Fatalf("SentimentTrend: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("points = %+v, want 2 months", got)
	}
	mar, apr := got[0], got[1]
	if mar.Period != "2025-03" || apr.Period != "2025-04" {
		t.Fatalf("periods = %q %q, want ascending months", mar.Period, apr.Period)
	}
	// 1.01/3 rounds to 0.337 at three places
	if mar.AvgSentiment != 0.337 || mar.AvgRating != 4.333 || mar.ReviewCount != 3 {
		t.Fatalf("march = %+v", mar)
	}
	if apr.AvgSentiment != -0.5 || apr.AvgRating != 1.5 || apr.ReviewCount != 2 {
		t.Fatalf("april = %+v", apr)
	}
}

func TestSentimentTrend_SkipsUndatedRows(t *testing.T) {
	score := 0.8
	rv := &fakeReviews{byBiz: map[string][]revdomain.Review{"b1": {
		enrichedAt(5, 0.6, 2025, time.March, 3),
		// dated but unenriched rows still count toward the bucket
		ratedAt(3, 2025, time.March, 10),
		// undated rows never reach a bucket
		{Text: "no date", SentimentScore: &score},
	}}}
	bz := &fakeBusinesses{names: map[string]string{"b1": "Taco Town"}}
	svc := newInsights(newFakeInsightsStore(), rv, bz, Config{})

	got, err := svc.SentimentTrend(context.Background(), "b1", PeriodMonth)
	if err != nil {
		t.Fatalf("SentimentTrend: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("points = %+v, want 1", got)
	}
	p := got[0]
	if p.ReviewCount != 2 || p.AvgRating != 4.0 {
		t.Fatalf("point = %+v, want both dated rows counted", p)
	}
	if p.AvgSentiment != 0.6 {
		t.Fatalf("avg sentiment = %v, want the single scored row", p.AvgSentiment)
	}
}

func TestSentimentTrend_WeekAndDayBuckets(t *testing.T) {
	rv := &fakeReviews{byBiz: map[string][]revdomain.Review{"b1": {
		enrichedAt(5, 0.5, 2025, time.April, 2),  // ISO week 14
		enrichedAt(3, 0.1, 2025, time.April, 10), // ISO week 15
	}}}
	bz := &fakeBusinesses{names: map[string]string{"b1": "Taco Town"}}
	svc := newInsights(newFakeInsightsStore(), rv, bz, Config{})

	weekly, err := svc.SentimentTrend(context.Background(), "b1", PeriodWeek)
	if err != nil {
		t.Fatalf("SentimentTrend week: %v", err)
	}
	if len(weekly) != 2 || weekly[0].Period != "2025-W14" || weekly[1].Period != "2025-W15" {
		t.Fatalf("weekly = %+v, want ISO week labels", weekly)
	}

	daily, err := svc.SentimentTrend(context.Background(), "b1", PeriodDay)
	if err != nil {
		t.Fatalf("SentimentTrend day: %v", err)
	}
	if len(daily) != 2 || daily[0].Period != "2025-04-02" {
		t.Fatalf("daily = %+v, want date labels", daily)
	}
}

func TestSentimentTrend_InvalidPeriod(t *testing.T) {
	bz := &fakeBusinesses{names: map[string]string{"b1": "Taco Town"}}
	svc := newInsights(newFakeInsightsStore(), &fakeReviews{}, bz, Config{})

	_, err := svc.SentimentTrend(context.Background(), "b1", "quarter")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestSentimentTrend_UnknownBusiness(t *testing.T) {
	svc := newInsights(newFakeInsightsStore(), &fakeReviews{}, &fakeBusinesses{}, Config{})
	_, err := svc.SentimentTrend(context.Background(), "ghost", "")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}
