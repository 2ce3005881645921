// Package repo provides the Postgres insights repository
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
	"localpulse/internal/services/insights/domain"

	"github.com/jackc/pgx/v5"
)

// PG is the Postgres-backed insights store
type PG struct{ q store.RowQuerier }

// NewPG binds the repo to a querier (pool or tx)
func NewPG(q store.RowQuerier) *PG { return &PG{q: q} }

var _ domain.StoragePort = (*PG)(nil)

// TryLock takes a transaction-scoped advisory lock; false means another
// session holds it. Must run inside a transaction
func (s *PG) TryLock(ctx context.Context, key int64) (bool, error) {
	var got bool
	if err := s.q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, key).Scan(&got); err != nil {
		return false, perr.FromPostgres(err, "advisory lock")
	}
	return got, nil
}

// DeleteAllTrending clears the snapshot ahead of a replace
func (s *PG) DeleteAllTrending(ctx context.Context) error {
	_, err := s.q.Exec(ctx, `DELETE FROM trending_keywords`)
	return perr.WrapIf(err, perr.ErrorCodeDB, "delete trending keywords")
}

// InsertTrending writes the new snapshot rows
func (s *PG) InsertTrending(ctx context.Context, xs []domain.TrendingKeyword) error {
	if len(xs) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO trending_keywords (text, weight, count, generated_at, period_days) VALUES `)
	args := make([]any, 0, len(xs)*5)
	for i, k := range xs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*5 + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d)", base, base+1, base+2, base+3, base+4)
		args = append(args, k.Text, k.Weight, k.Count, k.GeneratedAt, k.PeriodDays)
	}

	_, err := s.q.Exec(ctx, sb.String(), args...)
	return perr.FromPostgres(err, "insert trending keywords")
}

// ListTrending returns the current snapshot, heaviest first. A positive
// limit caps the rows returned
func (s *PG) ListTrending(ctx context.Context, limit int) ([]domain.TrendingKeyword, error) {
	q := `
		SELECT text, weight, count, generated_at, period_days
		FROM trending_keywords
		ORDER BY weight DESC, text`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.q.Query(ctx, q, args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list trending keywords")
	}
	defer rows.Close()

	var out []domain.TrendingKeyword
	for rows.Next() {
		var k domain.TrendingKeyword
		if err := rows.Scan(&k.Text, &k.Weight, &k.Count, &k.GeneratedAt, &k.PeriodDays); err != nil {
			return nil, perr.FromPostgres(err, "scan trending keyword")
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// UpsertAnomalyReport overwrites the business's current report
func (s *PG) UpsertAnomalyReport(ctx context.Context, r domain.AnomalyReport) error {
	raw, err := json.Marshal(r.Anomalies)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "encode anomalies for %s", r.BusinessID)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO rating_anomalies (business_id, business_name, anomalies, detected_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (business_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			anomalies = EXCLUDED.anomalies,
			detected_at = EXCLUDED.detected_at`,
		r.BusinessID, r.BusinessName, raw, r.DetectedAt)
	return perr.FromPostgresf(err, "upsert anomaly report for %s", r.BusinessID)
}

// GetAnomalyReport fetches the current report for one business
func (s *PG) GetAnomalyReport(ctx context.Context, businessID string) (domain.AnomalyReport, bool, error) {
	var (
		r   domain.AnomalyReport
		raw []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT business_id, business_name, anomalies, detected_at
		FROM rating_anomalies
		WHERE business_id = $1`, businessID).
		Scan(&r.BusinessID, &r.BusinessName, &raw, &r.DetectedAt)
	if err != nil {
		if stderrs.Is(err, pgx.ErrNoRows) {
			return domain.AnomalyReport{}, false, nil
		}
		return domain.AnomalyReport{}, false, perr.FromPostgresf(err, "get anomaly report for %s", businessID)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.Anomalies); err != nil {
			return domain.AnomalyReport{}, false, perr.Wrapf(err, perr.ErrorCodeDB, "decode anomalies for %s", businessID)
		}
	}
	return r, true, nil
}

// PruneTrending deletes snapshot rows generated before cutoff
func (s *PG) PruneTrending(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := s.q.Exec(ctx, `DELETE FROM trending_keywords WHERE generated_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "prune trending keywords")
	}
	return ct.RowsAffected(), nil
}

// PruneAnomalies deletes reports detected before cutoff
func (s *PG) PruneAnomalies(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := s.q.Exec(ctx, `DELETE FROM rating_anomalies WHERE detected_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "prune anomaly reports")
	}
	return ct.RowsAffected(), nil
}
