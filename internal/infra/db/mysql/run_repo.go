package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	domain "github.com/jawadbiag8/PDA/internal/domain/runs"
)

type RunRepository struct {
	db DBTX
}

func NewRunRepository(db DBTX) *RunRepository {
	return &RunRepository{db: db}
}

// Save upserts the batch run record. The orchestrator writes the same
// row twice: once at start, once with the final tallies.
func (r *RunRepository) Save(ctx context.Context, run *domain.BatchRun) error {
	const q = `
INSERT INTO BatchRuns
  (Id, Frequency, StartedAt, FinishedAt, Assets, Checks, Hits, Misses, Skipped, Status, ReportUrl)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  FinishedAt=VALUES(FinishedAt), Assets=VALUES(Assets), Checks=VALUES(Checks),
  Hits=VALUES(Hits), Misses=VALUES(Misses), Skipped=VALUES(Skipped),
  Status=VALUES(Status), ReportUrl=VALUES(ReportUrl);
`
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		string(run.ID), string(run.Frequency), started, nullTime(run.FinishedAt),
		run.Assets, run.Checks, run.Hits, run.Misses, run.Skipped,
		string(run.Status), run.ReportURL)
	return err
}

func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.BatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT Id, Frequency, StartedAt, FinishedAt, Assets, Checks, Hits, Misses, Skipped, Status, COALESCE(ReportUrl,'')
FROM BatchRuns
ORDER BY StartedAt DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.BatchRun
	for rows.Next() {
		var run domain.BatchRun
		var id, freq, status string
		var finished sql.NullTime
		if err := rows.Scan(&id, &freq, &run.StartedAt, &finished,
			&run.Assets, &run.Checks, &run.Hits, &run.Misses, &run.Skipped,
			&status, &run.ReportURL); err != nil {
			return nil, err
		}
		run.ID = domain.RunID(id)
		run.Frequency = kpis.Frequency(freq)
		run.Status = domain.Status(status)
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		out = append(out, &run)
	}
	return out, rows.Err()
}
