package runs

import (
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/kpis"
)

// RunID identifier type
type RunID string

// Status enum
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// BatchRun records one orchestrator pass for a cadence: what ran, the
// verdict tallies, and where the JSON report artifact was archived.
type BatchRun struct {
	ID         RunID          `json:"id"`
	Frequency  kpis.Frequency `json:"frequency"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at,omitempty"`
	Assets     int            `json:"assets"`
	Checks     int            `json:"checks"`
	Hits       int            `json:"hits"`
	Misses     int            `json:"misses"`
	Skipped    int            `json:"skipped"`
	Status     Status         `json:"status"`
	ReportURL  string         `json:"report_url,omitempty"`
}
