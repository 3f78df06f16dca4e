package assets

import "context"

// Repository port (interface for asset persistence)
type Repository interface {
	ListActive(ctx context.Context) ([]*Asset, error)
	Get(ctx context.Context, id AssetID) (*Asset, error)
}
