package results

import (
	"context"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// Repository port (interface for result persistence)
type Repository interface {
	// UpsertLatest writes the one-row-per-pair snapshot and returns the row
	// id the history append references.
	UpsertLatest(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, verdict Verdict, value, details string) (ResultID, error)

	// AppendHistory adds an append-only history record for one evaluation.
	AppendHistory(ctx context.Context, assetID assets.AssetID, resultID ResultID, kpiID kpis.KpiID, verdict Verdict, value, details string) error

	// RecentVerdicts returns up to limit verdicts for a pair, newest first,
	// unfiltered — skipped rows stay in the window so they defeat streaks.
	RecentVerdicts(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, limit int) ([]Verdict, error)

	// HistorySince returns the hit/miss history rows for an asset since the
	// given time. Skipped rows are excluded; they carry no rate signal.
	HistorySince(ctx context.Context, assetID assets.AssetID, since time.Time) ([]HistoryRow, error)

	// LatestByAsset returns the current snapshot rows for an asset.
	LatestByAsset(ctx context.Context, assetID assets.AssetID) ([]*Latest, error)
}
