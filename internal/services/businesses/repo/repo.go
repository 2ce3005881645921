// Package repo provides the Postgres business repository
package repo

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"fmt"
	"strings"
	"time"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/store"
	"localpulse/internal/services/businesses/domain"

	"github.com/jackc/pgx/v5"
)

// PG is the Postgres-backed business store
type PG struct{ q store.RowQuerier }

// NewPG binds the repo to a querier (pool or tx)
func NewPG(q store.RowQuerier) *PG { return &PG{q: q} }

var _ domain.StoragePort = (*PG)(nil)

// Upsert inserts listings, refreshing mutable source fields on conflict.
// The analytics snapshot is never touched here; only the pipeline writes it
func (s *PG) Upsert(ctx context.Context, xs []domain.BusinessWrite) (int, error) {
	if len(xs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO businesses
		(source, source_id, name, category, city, price_range, rating, review_count, last_updated) VALUES `)

	args := make([]any, 0, len(xs)*8)
	for i, b := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			b.Source, b.SourceID, b.Name, b.Category, b.City,
			b.PriceRange, b.Rating, b.ReviewCount,
		)
	}
	sb.WriteString(` ON CONFLICT (source_id, source) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		city = EXCLUDED.city,
		price_range = EXCLUDED.price_range,
		rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count,
		last_updated = now()`)

	ct, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "upsert businesses")
	}
	return int(ct.RowsAffected()), nil
}

// Get fetches one business by its source id
func (s *PG) Get(ctx context.Context, businessID string) (domain.Business, bool, error) {
	var (
		b   domain.Business
		raw []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT id, source, source_id, name, category, city, price_range,
			rating, review_count, analytics, analytics_updated
		FROM businesses
		WHERE source_id = $1`, businessID).
		Scan(&b.ID, &b.Source, &b.SourceID, &b.Name, &b.Category, &b.City,
			&b.PriceRange, &b.Rating, &b.ReviewCount, &raw, &b.AnalyticsUpdated)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return domain.Business{}, false, nil
		}
		return domain.Business{}, false, perr.FromPostgresf(err, "get business %s", businessID)
	}
	if len(raw) > 0 {
		var sum domain.Summary
		if err := json.Unmarshal(raw, &sum); err != nil {
			return domain.Business{}, false, perr.Wrapf(err, perr.ErrorCodeDB, "decode analytics for %s", businessID)
		}
		b.Analytics = &sum
	}
	return b, true, nil
}

// ListIDs returns up to limit business source ids, oldest rows first
func (s *PG) ListIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT source_id FROM businesses ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list business ids")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, perr.FromPostgres(err, "scan business id")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Aggregate computes the live rollup from the reviews table
func (s *PG) Aggregate(ctx context.Context, businessID string) (domain.Summary, bool, error) {
	var (
		sum       domain.Summary
		avgRating *float64
		avgSent   *float64
	)
	err := s.q.QueryRow(ctx, `
		SELECT
			AVG(rating),
			COUNT(*),
			AVG(sentiment_score),
			MAX(review_date),
			MIN(review_date)
		FROM reviews
		WHERE business_id = $1`, businessID).
		Scan(&avgRating, &sum.TotalReviews, &avgSent, &sum.LatestReview, &sum.EarliestReview)
	if err != nil {
		return domain.Summary{}, false, perr.FromPostgresf(err, "aggregate reviews for %s", businessID)
	}
	if sum.TotalReviews == 0 {
		return domain.Summary{}, false, nil
	}
	if avgRating != nil {
		sum.AvgRating = *avgRating
	}
	if avgSent != nil {
		sum.AvgSentiment = *avgSent
	}
	return sum, true, nil
}

// SaveAnalytics overwrites the snapshot sub-document and bumps its timestamp
func (s *PG) SaveAnalytics(ctx context.Context, businessID string, sum domain.Summary, at time.Time) error {
	raw, err := json.Marshal(sum)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "encode analytics for %s", businessID)
	}
	ct, err := s.q.Exec(ctx, `
		UPDATE businesses SET analytics = $2::jsonb, analytics_updated = $3, last_updated = now()
		WHERE source_id = $1`, businessID, raw, at)
	if err != nil {
		return perr.FromPostgresf(err, "save analytics for %s", businessID)
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("business %s", businessID)
	}
	return nil
}

// MetricsFor returns comparison entries for the ids that exist
func (s *PG) MetricsFor(ctx context.Context, ids []string) ([]domain.CompetitorEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `
		SELECT b.source_id, b.name, b.rating, b.review_count,
			(SELECT AVG(r.sentiment_score) FROM reviews r WHERE r.business_id = b.source_id)
		FROM businesses b
		WHERE b.source_id = ANY($1)
		ORDER BY b.id`, ids)
	if err != nil {
		return nil, perr.FromPostgres(err, "competitor metrics")
	}
	defer rows.Close()

	var out []domain.CompetitorEntry
	for rows.Next() {
		var e domain.CompetitorEntry
		if err := rows.Scan(&e.BusinessID, &e.Name, &e.Rating, &e.ReviewCount, &e.AvgSentiment); err != nil {
			return nil, perr.FromPostgres(err, "scan competitor entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
