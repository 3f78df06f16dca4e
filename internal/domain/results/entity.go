package results

import (
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// Verdict classifies one evaluation.
type Verdict string

const (
	VerdictHit     Verdict = "hit"
	VerdictMiss    Verdict = "miss"
	VerdictSkipped Verdict = "skipped"
)

// ResultID identifies the upserted latest-value row for an (asset, KPI) pair.
type ResultID int64

// Outcome is the normalized record a probe produces. Flag=true always
// means "problem detected", independent of the KPI's value type.
type Outcome struct {
	Flag    bool   `json:"flag"`
	Value   any    `json:"value,omitempty"`
	Details string `json:"details"`
}

// Latest is the upserted snapshot row for an (asset, KPI) pair.
type Latest struct {
	ID        ResultID    `json:"id"`
	KpiID     kpis.KpiID  `json:"kpi_id"`
	KpiName   string      `json:"kpi_name,omitempty"`
	Verdict   Verdict     `json:"verdict"`
	Value     string      `json:"value"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}

// HistoryRow is the slice of an append-only history record the metrics
// window needs: which KPI, and whether it hit.
type HistoryRow struct {
	KpiID   kpis.KpiID
	Verdict Verdict
}
