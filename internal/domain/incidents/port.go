package incidents

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// SeverityStatusCount buckets an asset's incidents for risk scoring.
type SeverityStatusCount struct {
	SeverityID int64
	Status     Status
	Count      int
}

// Repository port (interface for incident persistence). Create and CloseAuto
// also mirror the change into the append-only incident history table.
type Repository interface {
	// FindOpen returns the Open incident for a pair, or nil when none exists.
	FindOpen(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (*Incident, error)

	// Create inserts a new incident plus its audit-history row.
	Create(ctx context.Context, inc *Incident) (IncidentID, error)

	// CloseAuto resolves every Open auto-type incident for the pair, stamping
	// the closer identity, and appends an audit-history row per incident.
	// Returns how many incidents were closed. Manual incidents are untouched.
	CloseAuto(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, closedBy string) (int, error)

	// CountBySeverity buckets the asset's non-deleted incidents, all time.
	CountBySeverity(ctx context.Context, assetID assets.AssetID) ([]SeverityStatusCount, error)

	Get(ctx context.Context, id IncidentID) (*Incident, error)
	ListOpen(ctx context.Context, limit int) ([]*Incident, error)
}
