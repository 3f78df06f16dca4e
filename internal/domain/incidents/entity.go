package incidents

import (
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// IncidentID identifier type
type IncidentID int64

// Status enum
type Status string

const (
	StatusOpen     Status = "Open"
	StatusResolved Status = "Resolved"
)

// Type distinguishes engine-created incidents from operator-created ones.
// Only auto incidents are ever auto-closed.
type Type string

const (
	TypeAuto   Type = "auto"
	TypeManual Type = "manual"
)

// SystemActor is the identity stamped on automatic transitions.
const SystemActor = "system"

// DefaultAssignee receives auto-created incidents.
const DefaultAssignee = "pda@dams.com"

// Incident: at most one Open incident exists per (asset, KPI) pair.
// Incidents are status-transitioned, never deleted.
type Incident struct {
	ID          IncidentID     `json:"id"`
	AssetID     assets.AssetID `json:"asset_id"`
	KpiID       kpis.KpiID     `json:"kpi_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        Type           `json:"type"`
	SeverityID  int64          `json:"severity_id"`
	Status      Status         `json:"status"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedBy   string         `json:"updated_by,omitempty"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

// NewAuto builds the incident the lifecycle manager opens after a
// consecutive-miss streak.
func NewAuto(assetID assets.AssetID, kpiID kpis.KpiID, kpiName string, severityID int64, now time.Time) *Incident {
	return &Incident{
		AssetID:     assetID,
		KpiID:       kpiID,
		Title:       kpiName + " - Breach",
		Description: kpiName + " - Auto Created Incident",
		Type:        TypeAuto,
		SeverityID:  severityID,
		Status:      StatusOpen,
		AssignedTo:  DefaultAssignee,
		CreatedBy:   SystemActor,
		CreatedAt:   now,
	}
}
