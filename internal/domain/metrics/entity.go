package metrics

import (
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
)

// Weight set category names as stored in the MetricWeights configuration.
const (
	CategoryCHM         = "CHM"
	CategoryOCM         = "OCM"
	CategoryDREI        = "DREI"
	CategoryCriticality = "AssetCriticality"
)

// DREI component keys. The four severity tiers map onto the Open* keys;
// KeySLABreach weighs the 30-day miss percentage.
const (
	KeyOpenCritical = "OpenCritical"
	KeyOpenHigh     = "OpenHigh"
	KeyOpenMedium   = "OpenMedium"
	KeyOpenLow      = "OpenLow"
	KeySLABreach    = "SLABreach"
)

// DefaultCriticalityPct applies when the asset's impact level matches no
// configured criticality tier ("Low" behaviour).
const DefaultCriticalityPct = 30

// Weights holds the four weight sets, loaded fresh each aggregation run.
// The engine never mutates them.
type Weights struct {
	CHM         map[string]float64
	OCM         map[string]float64
	DREI        map[string]float64
	Criticality map[string]float64
}

// Snapshot is the one-row-per-asset metrics result, upserted each run.
type Snapshot struct {
	AssetID             assets.AssetID `json:"asset_id"`
	AccessibilityIndex  float64        `json:"accessibility_index"`
	AvailabilityIndex   float64        `json:"availability_index"`
	NavigationIndex     float64        `json:"navigation_index"`
	PerformanceIndex    float64        `json:"performance_index"`
	SecurityIndex       float64        `json:"security_index"`
	UserExperienceIndex float64        `json:"user_experience_index"`
	CitizenHappiness    float64        `json:"citizen_happiness_metric"`
	OverallCompliance   float64        `json:"overall_compliance_metric"`
	RiskExposure        float64        `json:"digital_risk_exposure_index"`
	CurrentHealth       float64        `json:"current_health"`
	PeriodStart         time.Time      `json:"period_start"`
	PeriodEnd           time.Time      `json:"period_end"`
	CalculatedAt        time.Time      `json:"calculated_at"`
}
