package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	domain "github.com/jawadbiag8/PDA/internal/domain/results"
)

type ResultRepository struct {
	db DBTX
}

func NewResultRepository(db DBTX) *ResultRepository {
	return &ResultRepository{db: db}
}

// UpsertLatest keeps one row per (asset, KPI) pair. The LAST_INSERT_ID
// trick makes the update path return the existing row id.
func (r *ResultRepository) UpsertLatest(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, verdict domain.Verdict, value, details string) (domain.ResultID, error) {
	const q = `
INSERT INTO kpisResults (AssetId, KpiId, Target, Result, Details, CreatedAt)
VALUES (?,?,?,?,?,NOW())
ON DUPLICATE KEY UPDATE
  Target=VALUES(Target), Result=VALUES(Result), Details=VALUES(Details),
  UpdatedAt=NOW(), Id=LAST_INSERT_ID(Id);
`
	res, err := r.db.ExecContext(ctx, q, assetID, kpiID, string(verdict), value, details)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return domain.ResultID(id), nil
}

func (r *ResultRepository) AppendHistory(ctx context.Context, assetID assets.AssetID, resultID domain.ResultID, kpiID kpis.KpiID, verdict domain.Verdict, value, details string) error {
	const q = `
INSERT INTO KPIsResultHistories (AssetId, KPIsResultId, KpiId, Target, Result, Details, CreatedAt)
VALUES (?,?,?,?,?,?,NOW());
`
	_, err := r.db.ExecContext(ctx, q, assetID, resultID, kpiID, string(verdict), value, details)
	return err
}

// RecentVerdicts reads the pair's newest history rows without filtering,
// so a skipped evaluation inside the window breaks a streak.
func (r *ResultRepository) RecentVerdicts(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, limit int) ([]domain.Verdict, error) {
	const q = `
SELECT Target FROM KPIsResultHistories
WHERE AssetId = ? AND KpiId = ?
ORDER BY CreatedAt DESC, Id DESC
LIMIT ?;
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

// HistorySince feeds the metrics window. Skipped rows carry no rate
// signal and are excluded here.
func (r *ResultRepository) HistorySince(ctx context.Context, assetID assets.AssetID, since time.Time) ([]domain.HistoryRow, error) {
	const q = `
SELECT KpiId, Target FROM KPIsResultHistories
WHERE AssetId = ? AND CreatedAt >= ? AND Target IN ('hit','miss');
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
SELECT r.Id, r.KpiId, k.KpiName, r.Target, COALESCE(r.Result,''), COALESCE(r.Details,''), r.CreatedAt, r.UpdatedAt
FROM kpisResults r
JOIN KpisLov k ON k.Id = r.KpiId
WHERE r.AssetId = ?
ORDER BY k.KpiGroup, k.Id;
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
