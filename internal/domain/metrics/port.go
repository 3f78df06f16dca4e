package metrics

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
)

// Repository port (interface for snapshot persistence)
type Repository interface {
	UpsertSnapshot(ctx context.Context, s *Snapshot) error
	Get(ctx context.Context, assetID assets.AssetID) (*Snapshot, error)
}

// WeightSource reads one named weight set from configuration.
type WeightSource interface {
	Weights(ctx context.Context, category string) (map[string]float64, error)
}
