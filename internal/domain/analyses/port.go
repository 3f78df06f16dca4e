package analyses

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/incidents"
)

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	LatestByIncident(ctx context.Context, incidentID incidents.IncidentID) (*Analysis, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Analysis, error)
}
