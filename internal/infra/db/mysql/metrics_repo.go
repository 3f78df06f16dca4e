package mysql

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	domain "github.com/jawadbiag8/PDA/internal/domain/metrics"
)

type MetricsRepository struct {
	db DBTX
}

func NewMetricsRepository(db DBTX) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// UpsertSnapshot keeps one AssetMetrics row per asset, overwritten on
// every aggregation run.
func (r *MetricsRepository) UpsertSnapshot(ctx context.Context, s *domain.Snapshot) error {
	const q = `
INSERT INTO AssetMetrics
  (AssetId, AccessibilityIndex, AvailabilityIndex, NavigationIndex,
   PerformanceIndex, SecurityIndex, UserExperienceIndex,
   CitizenHappinessMetric, OverallComplianceMetric, DigitalRiskExposureIndex,
   CurrentHealth, PeriodStart, PeriodEnd, CalculatedAt)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  AccessibilityIndex=VALUES(AccessibilityIndex),
  AvailabilityIndex=VALUES(AvailabilityIndex),
  NavigationIndex=VALUES(NavigationIndex),
  PerformanceIndex=VALUES(PerformanceIndex),
  SecurityIndex=VALUES(SecurityIndex),
  UserExperienceIndex=VALUES(UserExperienceIndex),
  CitizenHappinessMetric=VALUES(CitizenHappinessMetric),
  OverallComplianceMetric=VALUES(OverallComplianceMetric),
  DigitalRiskExposureIndex=VALUES(DigitalRiskExposureIndex),
  CurrentHealth=VALUES(CurrentHealth),
  PeriodStart=VALUES(PeriodStart),
  PeriodEnd=VALUES(PeriodEnd),
  CalculatedAt=VALUES(CalculatedAt);
`
	_, err := r.db.ExecContext(ctx, q,
		s.AssetID, s.AccessibilityIndex, s.AvailabilityIndex, s.NavigationIndex,
		s.PerformanceIndex, s.SecurityIndex, s.UserExperienceIndex,
		s.CitizenHappiness, s.OverallCompliance, s.RiskExposure,
		s.CurrentHealth, s.PeriodStart, s.PeriodEnd, s.CalculatedAt)
	return err
}

func (r *MetricsRepository) Get(ctx context.Context, assetID assets.AssetID) (*domain.Snapshot, error) {
	const q = `
SELECT AssetId, AccessibilityIndex, AvailabilityIndex, NavigationIndex,
       PerformanceIndex, SecurityIndex, UserExperienceIndex,
       CitizenHappinessMetric, OverallComplianceMetric, DigitalRiskExposureIndex,
       CurrentHealth, PeriodStart, PeriodEnd, CalculatedAt
FROM AssetMetrics
WHERE AssetId = ?;
`
	var s domain.Snapshot
	err := r.db.QueryRowContext(ctx, q, assetID).Scan(
		&s.AssetID, &s.AccessibilityIndex, &s.AvailabilityIndex, &s.NavigationIndex,
		&s.PerformanceIndex, &s.SecurityIndex, &s.UserExperienceIndex,
		&s.CitizenHappiness, &s.OverallCompliance, &s.RiskExposure,
		&s.CurrentHealth, &s.PeriodStart, &s.PeriodEnd, &s.CalculatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
