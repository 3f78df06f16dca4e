package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	domain "github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

type IncidentRepository struct {
	db DBTX
}

func NewIncidentRepository(db DBTX) *IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = `
Id, AssetId, KpiId, IncidentTitle, COALESCE(Description,''), COALESCE(Type,''),
COALESCE(SeverityId,0), Status, COALESCE(AssignedTo,''), COALESCE(CreatedBy,''),
CreatedAt, COALESCE(UpdatedBy,''), UpdatedAt
`

func (r *IncidentRepository) FindOpen(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (*domain.Incident, error) {
	const q = `
SELECT ` + incidentColumns + `
FROM Incidents
WHERE AssetId = ? AND KpiId = ? AND Status = ? AND DeletedAt IS NULL
ORDER BY Id DESC
LIMIT 1;
`
	inc, err := scanIncident(r.db.QueryRowContext(ctx, q, assetID, kpiID, domain.StatusOpen))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

// Create inserts the incident and mirrors it into IncidentHistories so
// every lifecycle step leaves an audit row.
func (r *IncidentRepository) Create(ctx context.Context, inc *domain.Incident) (domain.IncidentID, error) {
	const q = `
INSERT INTO Incidents
  (AssetId, KpiId, IncidentTitle, Description, Type, SeverityId, Status, AssignedTo, CreatedBy, CreatedAt)
VALUES (?,?,?,?,?,?,?,?,?,?);
`
	res, err := r.db.ExecContext(ctx, q,
		inc.AssetID, inc.KpiID, inc.Title, inc.Description, string(inc.Type),
		inc.SeverityID, string(inc.Status), inc.AssignedTo, inc.CreatedBy, inc.CreatedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := r.appendHistory(ctx, domain.IncidentID(id), inc, string(inc.Status), inc.CreatedBy); err != nil {
		return 0, err
	}
	return domain.IncidentID(id), nil
}

// CloseAuto resolves the pair's open auto-type incidents. Manual
// incidents stay open until an operator resolves them.
func (r *IncidentRepository) CloseAuto(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, closedBy string) (int, error) {
	const sel = `
SELECT ` + incidentColumns + `
FROM Incidents
WHERE AssetId = ? AND KpiId = ? AND Status = ? AND Type = ? AND DeletedAt IS NULL;
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
UPDATE Incidents SET Status = ?, UpdatedBy = ?, UpdatedAt = NOW()
WHERE Id = ?;
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
SELECT COALESCE(SeverityId,0), Status, COUNT(*)
FROM Incidents
WHERE AssetId = ? AND DeletedAt IS NULL
GROUP BY SeverityId, Status;
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
FROM Incidents
WHERE Id = ? AND DeletedAt IS NULL;
`
	return scanIncident(r.db.QueryRowContext(ctx, q, id))
}

func (r *IncidentRepository) ListOpen(ctx context.Context, limit int) ([]*domain.Incident, error) {
	const q = `
SELECT ` + incidentColumns + `
FROM Incidents
WHERE Status = ? AND DeletedAt IS NULL
ORDER BY CreatedAt DESC, Id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, domain.StatusOpen, limit)
	if err != nil {
		return nil, err
	}
	return collectIncidents(rows)
}

func (r *IncidentRepository) appendHistory(ctx context.Context, id domain.IncidentID, inc *domain.Incident, status, actor string) error {
	const q = `
INSERT INTO IncidentHistories
  (IncidentId, AssetId, KpiId, IncidentTitle, Description, Type, SeverityId, Status, AssignedTo, CreatedBy, CreatedAt)
VALUES (?,?,?,?,?,?,?,?,?,?,NOW());
`
	_, err := r.db.ExecContext(ctx, q,
		id, inc.AssetID, inc.KpiID, inc.Title, inc.Description, string(inc.Type),
		inc.SeverityID, status, inc.AssignedTo, actor)
	return err
}

func scanIncident(row rowScanner) (*domain.Incident, error) {
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
