package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/jawadbiag8/PDA/internal/domain/analyses"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
)

type AnalysisRepository struct {
	db DBTX
}

func NewAnalysisRepository(db DBTX) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO IncidentAnalyses (Id, IncidentId, ResultJson, CreatedAt)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE
  IncidentId=VALUES(IncidentId), ResultJson=VALUES(ResultJson);
`
	result := a.Result
	if strings.TrimSpace(result) == "" {
		// ResultJson column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, string(a.ID), a.IncidentID, result, createdAt)
	return err
}

// LatestByIncident returns the newest analysis for one incident, or nil.
func (r *AnalysisRepository) LatestByIncident(ctx context.Context, incidentID incidents.IncidentID) (*domain.Analysis, error) {
	const q = `
SELECT Id, IncidentId, ResultJson, CreatedAt
FROM IncidentAnalyses
WHERE IncidentId = ?
ORDER BY CreatedAt DESC, Id DESC
LIMIT 1;
`
	a, err := scanAnalysis(r.db.QueryRowContext(ctx, q, incidentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Analysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT Id, IncidentId, ResultJson, CreatedAt
FROM IncidentAnalyses
ORDER BY CreatedAt DESC, Id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnalysis(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var id string
	if err := row.Scan(&id, &a.IncidentID, &a.Result, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.ID = domain.AnalysisID(id)
	return &a, nil
}
