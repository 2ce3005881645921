package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/services/insights/domain"
	revdomain "localpulse/internal/services/reviews/domain"
)

// Trend bucket granularities
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// SentimentTrend buckets a business's reviews by period and averages
// sentiment and rating per bucket. An empty period means monthly
func (s *Service) SentimentTrend(ctx context.Context, businessID, period string) ([]domain.TrendPoint, error) {
	if period == "" {
		period = PeriodMonth
	}
	if period != PeriodDay && period != PeriodWeek && period != PeriodMonth {
		return nil, perr.InvalidArgf("period must be day, week, or month")
	}

	_, ok, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perr.NotFoundf("business %s", businessID)
	}

	revs, err := s.reviews.ListForBusiness(ctx, businessID, maxDetectReviews)
	if err != nil {
		return nil, err
	}
	return sentimentTrend(revs, period), nil
}

// trendBucket accumulates one period's sums. Sentiment and rating average
// over the rows that carry them; dated counts every dated review
type trendBucket struct {
	sentSum float64
	sentN   int
	rateSum float64
	rateN   int
	dated   int
}

// sentimentTrend groups dated reviews into period buckets, chronologically
// ascending. Undated reviews are dropped; averages round to three places
func sentimentTrend(revs []revdomain.Review, period string) []domain.TrendPoint {
	buckets := make(map[string]*trendBucket)
	for _, r := range revs {
		if r.Date == nil {
			continue
		}
		key := bucketKey(r.Date.UTC(), period)
		b := buckets[key]
		if b == nil {
			b = &trendBucket{}
			buckets[key] = b
		}
		b.dated++
		if r.SentimentScore != nil {
			b.sentSum += *r.SentimentScore
			b.sentN++
		}
		if r.Rating != nil {
			b.rateSum += float64(*r.Rating)
			b.rateN++
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.TrendPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		p := domain.TrendPoint{Period: k, ReviewCount: b.dated}
		if b.sentN > 0 {
			p.AvgSentiment = round3(b.sentSum / float64(b.sentN))
		}
		if b.rateN > 0 {
			p.AvgRating = round3(b.rateSum / float64(b.rateN))
		}
		out = append(out, p)
	}
	return out
}

// bucketKey renders a UTC timestamp as its period label. Weeks are ISO
// weeks so the label sorts chronologically as a string
func bucketKey(ts time.Time, period string) string {
	switch period {
	case PeriodDay:
		return ts.Format("2006-01-02")
	case PeriodWeek:
		y, w := ts.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	default:
		return ts.Format("2006-01")
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
