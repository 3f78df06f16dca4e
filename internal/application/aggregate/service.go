package aggregate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/application"
	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/lookups"
	"github.com/jawadbiag8/PDA/internal/domain/metrics"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// WindowDays is the trailing history window the composite scores roll up.
const WindowDays = 30

// Service recalculates one asset's metrics snapshot. It runs after the
// asset's KPI loop has committed, so the window already contains this
// cycle's results.
type Service struct {
	Kpis      kpis.Repository
	Results   results.Repository
	Incidents incidents.Repository
	Lookups   lookups.Source
	Weights   metrics.WeightSource
	Metrics   metrics.Repository
	Clock     application.Clock
	Log       *zap.SugaredLogger
}

// Recalculate gathers the aggregation inputs, computes the snapshot and
// upserts it.
func (s *Service) Recalculate(ctx context.Context, asset *assets.Asset) (*metrics.Snapshot, error) {
	periodEnd := s.Clock.Now()
	periodStart := periodEnd.AddDate(0, 0, -WindowDays)

	weights := s.loadWeights(ctx)

	catalog, err := s.Kpis.ListAutomated(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading kpi catalog: %w", err)
	}
	history, err := s.Results.HistorySince(ctx, asset.ID, periodStart)
	if err != nil {
		return nil, fmt.Errorf("loading history window: %w", err)
	}
	counts, err := s.Incidents.CountBySeverity(ctx, asset.ID)
	if err != nil {
		return nil, fmt.Errorf("counting incidents: %w", err)
	}
	severityNames, err := s.Lookups.SeverityNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading severity names: %w", err)
	}

	snap := metrics.Compute(metrics.Inputs{
		AssetID:       asset.ID,
		ImpactLevel:   asset.CitizenImpactLevel,
		Kpis:          catalog,
		History:       history,
		Incidents:     counts,
		SeverityNames: severityNames,
		Weights:       weights,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		CalculatedAt:  periodEnd,
	})

	if err := s.Metrics.UpsertSnapshot(ctx, &snap); err != nil {
		return nil, fmt.Errorf("upserting snapshot: %w", err)
	}

	s.Log.Infof("metrics asset=%d health=%.1f chm=%.1f ocm=%.1f drei=%.1f",
		asset.ID, snap.CurrentHealth, snap.CitizenHappiness, snap.OverallCompliance, snap.RiskExposure)
	return &snap, nil
}

// loadWeights reads the four weight sets fresh each run. A failed or empty
// read falls back to the hard-coded defaults for that set instead of
// aborting the run.
func (s *Service) loadWeights(ctx context.Context) metrics.Weights {
	return metrics.Weights{
		CHM:         s.loadSet(ctx, metrics.CategoryCHM, defaultGroupWeights()),
		OCM:         s.loadSet(ctx, metrics.CategoryOCM, defaultGroupWeights()),
		DREI:        s.loadSet(ctx, metrics.CategoryDREI, defaultDreiWeights()),
		Criticality: s.loadSet(ctx, metrics.CategoryCriticality, defaultCriticalityWeights()),
	}
}

func (s *Service) loadSet(ctx context.Context, category string, fallback map[string]float64) map[string]float64 {
	w, err := s.Weights.Weights(ctx, category)
	if err != nil {
		s.Log.Warnf("weight set %s unavailable, using defaults: %v", category, err)
		return fallback
	}
	if len(w) == 0 {
		return fallback
	}
	return w
}

func defaultGroupWeights() map[string]float64 {
	return map[string]float64{
		string(kpis.GroupAccessibility): 1,
		string(kpis.GroupAvailability):  1,
		string(kpis.GroupNavigation):    1,
		string(kpis.GroupPerformance):   1,
		string(kpis.GroupSecurity):      1,
		string(kpis.GroupUserExp):       1,
	}
}

func defaultDreiWeights() map[string]float64 {
	return map[string]float64{
		metrics.KeyOpenCritical: 25,
		metrics.KeyOpenHigh:     20,
		metrics.KeyOpenMedium:   15,
		metrics.KeyOpenLow:      10,
		metrics.KeySLABreach:    30,
	}
}

func defaultCriticalityWeights() map[string]float64 {
	return map[string]float64{
		"High":   100,
		"Medium": 60,
		"Low":    30,
	}
}
