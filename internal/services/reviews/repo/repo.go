// Package repo provides the Postgres review repository
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	perr "localpulse/internal/platform/errors"
	"localpulse/internal/platform/store"
	"localpulse/internal/services/reviews/domain"
)

// PG is the Postgres-backed review store
type PG struct{ q store.RowQuerier }

// NewPG binds the repo to a querier (pool or tx)
func NewPG(q store.RowQuerier) *PG { return &PG{q: q} }

var _ domain.StoragePort = (*PG)(nil)

const reviewCols = `id, source, source_review_id, business_id, business_name,
	reviewer_name, rating, review_text, review_date,
	sentiment_score, sentiment_label, sentiment_method, keywords, phrases, processed_at`

// UpsertBatch inserts reviews, updating mutable source fields on conflict.
// Enrichment columns are untouched so reprocessing is driven by NULL scores only
func (s *PG) UpsertBatch(ctx context.Context, xs []domain.ReviewWrite) (int, error) {
	if len(xs) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO reviews
		(source, source_review_id, business_id, business_name, reviewer_name,
		rating, review_text, review_date, last_updated) VALUES `)

	args := make([]any, 0, len(xs)*8)
	for i, r := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*8 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,now())",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args,
			r.Source, r.SourceReviewID, r.BusinessID, r.BusinessName,
			r.ReviewerName, r.Rating, r.Text, r.Date,
		)
	}
	sb.WriteString(` ON CONFLICT (source_review_id, source) DO UPDATE SET
		business_name = EXCLUDED.business_name,
		reviewer_name = EXCLUDED.reviewer_name,
		rating = EXCLUDED.rating,
		review_text = EXCLUDED.review_text,
		review_date = EXCLUDED.review_date,
		last_updated = now()`)

	ct, err := s.q.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, perr.FromPostgres(err, "upsert reviews")
	}
	return int(ct.RowsAffected()), nil
}

// SaveEnrichment writes the computed annotation onto one review
func (s *PG) SaveEnrichment(ctx context.Context, reviewID int64, e domain.Enrichment, processedAt time.Time) error {
	ct, err := s.q.Exec(ctx, `
		UPDATE reviews SET
			sentiment_score = $2,
			sentiment_label = $3,
			sentiment_method = $4,
			keywords = $5,
			phrases = $6,
			processed_at = $7,
			last_updated = now()
		WHERE id = $1`,
		reviewID, e.Score, e.Label, e.Method, e.Keywords, e.Phrases, processedAt,
	)
	if err != nil {
		return perr.FromPostgresf(err, "save enrichment for review %d", reviewID)
	}
	if ct.RowsAffected() == 0 {
		return perr.NotFoundf("review %d", reviewID)
	}
	return nil
}

// ListUnprocessed returns reviews with no sentiment yet, oldest first
func (s *PG) ListUnprocessed(ctx context.Context, limit int) ([]domain.Review, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+reviewCols+`
		FROM reviews
		WHERE sentiment_score IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list unprocessed reviews")
	}
	defer rows.Close()
	return scanReviews(rows)
}

// ListForBusiness returns a business's reviews, newest first by id
func (s *PG) ListForBusiness(ctx context.Context, businessID string, limit int) ([]domain.Review, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+reviewCols+`
		FROM reviews
		WHERE business_id = $1
		ORDER BY id DESC
		LIMIT $2`, businessID, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list reviews for business %s", businessID)
	}
	defer rows.Close()
	return scanReviews(rows)
}

// ListRecentTexts returns non-empty review texts dated at or after since
func (s *PG) ListRecentTexts(ctx context.Context, since time.Time, limit int) ([]string, error) {
	rows, err := s.q.Query(ctx, `
		SELECT review_text
		FROM reviews
		WHERE review_text <> '' AND review_date >= $1
		ORDER BY review_date DESC
		LIMIT $2`, since, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list recent review texts")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, perr.FromPostgres(err, "scan review text")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanReviews(rows store.Rows) ([]domain.Review, error) {
	var out []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(
			&r.ID, &r.Source, &r.SourceReviewID, &r.BusinessID, &r.BusinessName,
			&r.ReviewerName, &r.Rating, &r.Text, &r.Date,
			&r.SentimentScore, &r.SentimentLabel, &r.SentimentMethod,
			&r.Keywords, &r.Phrases, &r.ProcessedAt,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan review")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
