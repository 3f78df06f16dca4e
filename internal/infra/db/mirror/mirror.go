// Package mirror fans result and incident writes out to a secondary
// reporting database. The primary store stays authoritative: every read
// and every returned id comes from it, and a failed mirror write is
// logged, never surfaced.
package mirror

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// Factory wraps a primary session factory and duplicates writes onto the
// mirror repositories. Mirror writes happen outside the primary
// transaction, so the mirror is eventually consistent at best.
type Factory struct {
	Primary   monitor.SessionFactory
	Results   results.Repository
	Incidents incidents.Repository
	Log       *zap.SugaredLogger
}

func (f *Factory) Begin(ctx context.Context) (monitor.Session, error) {
	sess, err := f.Primary.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &session{inner: sess, f: f}, nil
}

type session struct {
	inner monitor.Session
	f     *Factory
}

func (s *session) Results() results.Repository {
	return &resultMirror{inner: s.inner.Results(), mirror: s.f.Results, log: s.f.Log}
}

func (s *session) Incidents() incidents.Repository {
	return &incidentMirror{inner: s.inner.Incidents(), mirror: s.f.Incidents, log: s.f.Log}
}

func (s *session) Commit() error   { return s.inner.Commit() }
func (s *session) Rollback() error { return s.inner.Rollback() }

type resultMirror struct {
	inner  results.Repository
	mirror results.Repository
	log    *zap.SugaredLogger
}

func (r *resultMirror) UpsertLatest(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, verdict results.Verdict, value, details string) (results.ResultID, error) {
	id, err := r.inner.UpsertLatest(ctx, assetID, kpiID, verdict, value, details)
	if err != nil {
		return id, err
	}
	if _, merr := r.mirror.UpsertLatest(ctx, assetID, kpiID, verdict, value, details); merr != nil {
		r.log.Warnf("mirror upsert asset=%d kpi=%d: %v", assetID, kpiID, merr)
	}
	return id, nil
}

func (r *resultMirror) AppendHistory(ctx context.Context, assetID assets.AssetID, resultID results.ResultID, kpiID kpis.KpiID, verdict results.Verdict, value, details string) error {
	if err := r.inner.AppendHistory(ctx, assetID, resultID, kpiID, verdict, value, details); err != nil {
		return err
	}
	if merr := r.mirror.AppendHistory(ctx, assetID, resultID, kpiID, verdict, value, details); merr != nil {
		r.log.Warnf("mirror history asset=%d kpi=%d: %v", assetID, kpiID, merr)
	}
	return nil
}

func (r *resultMirror) RecentVerdicts(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, limit int) ([]results.Verdict, error) {
	return r.inner.RecentVerdicts(ctx, assetID, kpiID, limit)
}

func (r *resultMirror) HistorySince(ctx context.Context, assetID assets.AssetID, since time.Time) ([]results.HistoryRow, error) {
	return r.inner.HistorySince(ctx, assetID, since)
}

func (r *resultMirror) LatestByAsset(ctx context.Context, assetID assets.AssetID) ([]*results.Latest, error) {
	return r.inner.LatestByAsset(ctx, assetID)
}

type incidentMirror struct {
	inner  incidents.Repository
	mirror incidents.Repository
	log    *zap.SugaredLogger
}

func (r *incidentMirror) FindOpen(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (*incidents.Incident, error) {
	return r.inner.FindOpen(ctx, assetID, kpiID)
}

func (r *incidentMirror) Create(ctx context.Context, inc *incidents.Incident) (incidents.IncidentID, error) {
	id, err := r.inner.Create(ctx, inc)
	if err != nil {
		return id, err
	}
	if _, merr := r.mirror.Create(ctx, inc); merr != nil {
		r.log.Warnf("mirror incident create asset=%d kpi=%d: %v", inc.AssetID, inc.KpiID, merr)
	}
	return id, nil
}

func (r *incidentMirror) CloseAuto(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID, closedBy string) (int, error) {
	n, err := r.inner.CloseAuto(ctx, assetID, kpiID, closedBy)
	if err != nil {
		return n, err
	}
	if _, merr := r.mirror.CloseAuto(ctx, assetID, kpiID, closedBy); merr != nil {
		r.log.Warnf("mirror incident close asset=%d kpi=%d: %v", assetID, kpiID, merr)
	}
	return n, nil
}

func (r *incidentMirror) CountBySeverity(ctx context.Context, assetID assets.AssetID) ([]incidents.SeverityStatusCount, error) {
	return r.inner.CountBySeverity(ctx, assetID)
}

func (r *incidentMirror) Get(ctx context.Context, id incidents.IncidentID) (*incidents.Incident, error) {
	return r.inner.Get(ctx, id)
}

func (r *incidentMirror) ListOpen(ctx context.Context, limit int) ([]*incidents.Incident, error) {
	return r.inner.ListOpen(ctx, limit)
}
