package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	domain "github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

type IncidentRepository struct {
	db *sql.DB
}

func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = `
id, asset_id, kpi_id, incident_title, COALESCE(description,''), COALESCE(type,''),
COALESCE(severity_id,0), status, COALESCE(assigned_to,''), COALESCE(created_by,''),
created_at, COALESCE(updated_by,''), updated_at
`

func (r *IncidentRepository) FindOpen(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (*domain.Incident, error) {
	const q = `
SELECT ` + incidentColumns + `
FROM incidents
WHERE asset_id = $1 AND kpi_id = $2 AND status = $3 AND deleted_at IS NULL
ORDER BY id DESC
LIMIT 1;
`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, assetID, kpiID, domain.StatusOpen))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

func (r *IncidentRepository) Create(ctx context.Context, inc *domain.Incident) (domain.IncidentID, error) {
	const q = `
INSERT INTO incidents
  (asset_id, kpi_id, incident_title, description, type, severity_id, status, assigned_to, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id;
`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		inc.AssetID, inc.KpiID, inc.Title, inc.Description, string(inc.Type),
		inc.SeverityID, string(inc.Status), inc.AssignedTo, inc.CreatedBy, inc.CreatedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := r.appendHistory(ctx, domain.IncidentID(id), inc, string(inc.Status), inc.CreatedBy); err != nil {
		return 0, err
	}
	return domain.IncidentID(id), nil
}

func (r *IncidentRepository) CloseAuto(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, closedBy string) (int, error) {
	const sel = `
SELECT ` + incidentColumns + `
FROM incidents
WHERE asset_id = $1 AND kpi_id = $2 AND status = $3 AND type = $4 AND deleted_at IS NULL;
`
	rows, err := r.db.QueryContext(ctx, sel, assetID, kpiID, domain.StatusOpen, domain.TypeAuto)
	if err != nil {
		return 0, err
	}
	open, err := collectIncidents(rows)
	if err != nil {
		return 0, err
	}

	const upd = `
UPDATE incidents SET status = $1, updated_by = $2, updated_at = NOW()
WHERE id = $3;
`
	closed := 0
	for _, inc := range open {
		if _, err := r.db.ExecContext(ctx, upd, domain.StatusResolved, closedBy, inc.ID); err != nil {
			return closed, err
		}
		inc.Status = domain.StatusResolved
		if err := r.appendHistory(ctx, inc.ID, inc, string(domain.StatusResolved), closedBy); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (r *IncidentRepository) CountBySeverity(ctx context.Context, assetID assets.AssetID) ([]domain.SeverityStatusCount, error) {
	const q = `
SELECT COALESCE(severity_id,0), status, COUNT(*)
FROM incidents
WHERE asset_id = $1 AND deleted_at IS NULL
GROUP BY severity_id, status;
`
	rows, err := r.db.QueryContext(ctx, q, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SeverityStatusCount
	for rows.Next() {
		var c domain.SeverityStatusCount
		var status string
		if err := rows.Scan(&c.SeverityID, &status, &c.Count); err != nil {
			return nil, err
		}
		c.Status = domain.Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *IncidentRepository) Get(ctx context.Context, id domain.IncidentID) (*domain.Incident, error) {
	const q = `
SELECT ` + incidentColumns + `
FROM incidents
WHERE id = $1 AND deleted_at IS NULL;
`
	return scanIncident(r.db.QueryRowContext(ctx, q, id))
}

func (r *IncidentRepository) ListOpen(ctx context.Context, limit int) ([]*domain.Incident, error) {
	const q = `
SELECT ` + incidentColumns + `
FROM incidents
WHERE status = $1 AND deleted_at IS NULL
ORDER BY created_at DESC, id DESC
LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, domain.StatusOpen, limit)
	if err != nil {
		return nil, err
	}
	return collectIncidents(rows)
}

func (r *IncidentRepository) appendHistory(ctx context.Context, id domain.IncidentID, inc *domain.Incident, status, actor string) error {
	const q = `
INSERT INTO incident_histories
  (incident_id, asset_id, kpi_id, incident_title, description, type, severity_id, status, assigned_to, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW());
`
	_, err := r.db.ExecContext(ctx, q,
		id, inc.AssetID, inc.KpiID, inc.Title, inc.Description, string(inc.Type),
		inc.SeverityID, status, inc.AssignedTo, actor)
	return err
}

func scanIncident(row interface{ Scan(dest ...any) error }) (*domain.Incident, error) {
	var inc domain.Incident
	var typ, status string
	var updated sql.NullTime
	err := row.Scan(&inc.ID, &inc.AssetID, &inc.KpiID, &inc.Title, &inc.Description, &typ,
		&inc.SeverityID, &status, &inc.AssignedTo, &inc.CreatedBy,
		&inc.CreatedAt, &inc.UpdatedBy, &updated)
	if err != nil {
		return nil, err
	}
	inc.Type = domain.Type(typ)
	inc.Status = domain.Status(status)
	if updated.Valid {
		t := updated.Time
		inc.UpdatedAt = &t
	}
	return &inc, nil
}

func collectIncidents(rows *sql.Rows) ([]*domain.Incident, error) {
	defer rows.Close()
	var out []*domain.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}
