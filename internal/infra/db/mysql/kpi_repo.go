package mysql

import (
	"context"

	domain "github.com/jawadbiag8/PDA/internal/domain/kpis"
)

type KpiRepository struct {
	db DBTX
}

func NewKpiRepository(db DBTX) *KpiRepository {
	return &KpiRepository{db: db}
}

const kpiColumns = `
Id, KpiName, COALESCE(KpiGroup,''), COALESCE(KpiType,''), COALESCE(Outcome,''),
COALESCE(TargetHigh,''), COALESCE(TargetMedium,''), COALESCE(TargetLow,''),
COALESCE(Weight,0), COALESCE(SeverityId,0), COALESCE(Frequency,''), COALESCE(` + "`Manual`" + `,'')
`

// ListAutomated returns the automated KPI catalog, optionally limited to
// one schedule frequency. Order is stable: group first, then Id.
func (r *KpiRepository) ListAutomated(ctx context.Context, freq domain.Frequency) ([]*domain.Kpi, error) {
	q := `SELECT ` + kpiColumns + `
FROM KpisLov
WHERE KpiType IS NOT NULL AND ` + "`Manual`" + ` = ? AND DeletedAt IS NULL`
	args := []any{domain.AutomationAuto}
	if freq != "" {
		q += ` AND Frequency = ?`
		args = append(args, string(freq))
	}
	q += ` ORDER BY KpiGroup, Id;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Kpi
	for rows.Next() {
		k, err := scanKpi(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *KpiRepository) Get(ctx context.Context, id domain.KpiID) (*domain.Kpi, error) {
	const q = `SELECT ` + kpiColumns + `
FROM KpisLov
WHERE Id = ? AND DeletedAt IS NULL;`
	return scanKpi(r.db.QueryRowContext(ctx, q, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKpi(row rowScanner) (*domain.Kpi, error) {
	var k domain.Kpi
	var group, valueType, freq, manual string
	err := row.Scan(&k.ID, &k.Name, &group, &k.ProbeType, &valueType,
		&k.TargetHigh, &k.TargetMedium, &k.TargetLow,
		&k.Weight, &k.SeverityID, &freq, &manual)
	if err != nil {
		return nil, err
	}
	k.Group = domain.Group(group)
	k.ValueType = domain.ValueType(valueType)
	k.Frequency = domain.Frequency(freq)
	k.Automation = manual
	return &k, nil
}
