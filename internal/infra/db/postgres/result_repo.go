package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	domain "github.com/jawadbiag8/PDA/internal/domain/results"
)

// ResultRepository mirrors the result store onto PostgreSQL for
// deployments that keep reporting replicas there.
type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) UpsertLatest(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, verdict domain.Verdict, value, details string) (domain.ResultID, error) {
	const q = `
INSERT INTO kpis_results (asset_id, kpi_id, target, result, details, created_at)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (asset_id, kpi_id) DO UPDATE SET
  target=EXCLUDED.target, result=EXCLUDED.result, details=EXCLUDED.details,
  updated_at=NOW()
RETURNING id;
`
	var id int64
	err := r.db.QueryRowContext(ctx, q, assetID, kpiID, string(verdict), value, details).Scan(&id)
	if err != nil {
		return 0, err
	}
	return domain.ResultID(id), nil
}

func (r *ResultRepository) AppendHistory(ctx context.Context, assetID assets.AssetID, resultID domain.ResultID, kpiID kpis.KpiID, verdict domain.Verdict, value, details string) error {
	const q = `
INSERT INTO kpis_result_histories (asset_id, result_id, kpi_id, target, result, details, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW());
`
	_, err := r.db.ExecContext(ctx, q, assetID, resultID, kpiID, string(verdict), value, details)
	return err
}

func (r *ResultRepository) RecentVerdicts(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, limit int) ([]domain.Verdict, error) {
	const q = `
SELECT target FROM kpis_result_histories
WHERE asset_id = $1 AND kpi_id = $2
ORDER BY created_at DESC, id DESC
LIMIT $3;
`
	rows, err := r.db.QueryContext(ctx, q, assetID, kpiID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Verdict
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, domain.Verdict(v))
	}
	return out, rows.Err()
}

func (r *ResultRepository) HistorySince(ctx context.Context, assetID assets.AssetID, since time.Time) ([]domain.HistoryRow, error) {
	const q = `
SELECT kpi_id, target FROM kpis_result_histories
WHERE asset_id = $1 AND created_at >= $2 AND target IN ('hit','miss');
`
	rows, err := r.db.QueryContext(ctx, q, assetID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.HistoryRow
	for rows.Next() {
		var h domain.HistoryRow
		var v string
		if err := rows.Scan(&h.KpiID, &v); err != nil {
			return nil, err
		}
		h.Verdict = domain.Verdict(v)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *ResultRepository) LatestByAsset(ctx context.Context, assetID assets.AssetID) ([]*domain.Latest, error) {
	const q = `
SELECT id, kpi_id, '', target, COALESCE(result,''), COALESCE(details,''), created_at, updated_at
FROM kpis_results
WHERE asset_id = $1
ORDER BY kpi_id;
`
	rows, err := r.db.QueryContext(ctx, q, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Latest
	for rows.Next() {
		var l domain.Latest
		var verdict string
		var updated sql.NullTime
		if err := rows.Scan(&l.ID, &l.KpiID, &l.KpiName, &verdict, &l.Value, &l.Details, &l.CreatedAt, &updated); err != nil {
			return nil, err
		}
		l.Verdict = domain.Verdict(verdict)
		if updated.Valid {
			t := updated.Time
			l.UpdatedAt = &t
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
