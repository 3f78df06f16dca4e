package runs

import "context"

// Repository port (interface for batch run persistence)
type Repository interface {
	Save(ctx context.Context, r *BatchRun) error
	Latest(ctx context.Context, limit int) ([]*BatchRun, error)
}

// ArtifactStore port (interface for report archival)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
