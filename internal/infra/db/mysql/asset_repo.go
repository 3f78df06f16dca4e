package mysql

import (
	"context"

	domain "github.com/jawadbiag8/PDA/internal/domain/assets"
)

type AssetRepository struct {
	db DBTX
}

func NewAssetRepository(db DBTX) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `
a.Id, a.AssetName, COALESCE(a.AssetUrl,''),
COALESCE(cl.Name,''), COALESCE(m.MinistryName,''), COALESCE(d.DepartmentName,'')
`

const assetJoins = `
FROM Assets a
LEFT JOIN CommonLookup cl ON cl.Id = a.CitizenImpactLevelId
LEFT JOIN Ministries m ON m.Id = a.MinistryId
LEFT JOIN Departments d ON d.Id = a.DepartmentId
`

// ListActive returns all assets that have not been soft-deleted,
// in a stable Id order.
func (r *AssetRepository) ListActive(ctx context.Context) ([]*domain.Asset, error) {
	const q = `SELECT ` + assetColumns + assetJoins + `
WHERE a.DeletedAt IS NULL
ORDER BY a.Id;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.URL,
			&a.CitizenImpactLevel, &a.Ministry, &a.Department); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AssetRepository) Get(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	const q = `SELECT ` + assetColumns + assetJoins + `
WHERE a.Id = ? AND a.DeletedAt IS NULL;`

	var a domain.Asset
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.URL,
		&a.CitizenImpactLevel, &a.Ministry, &a.Department)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
