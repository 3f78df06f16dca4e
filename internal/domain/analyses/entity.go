package analyses

import (
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/incidents"
)

// AnalysisID identifier type
type AnalysisID string

// Analysis represents an AI incident analysis stored for auditing and retrieval
type Analysis struct {
	ID         AnalysisID           `json:"id"`
	IncidentID incidents.IncidentID `json:"incident_id"`
	Result     string               `json:"result"` // JSON string from AI
	CreatedAt  time.Time            `json:"created_at"`
}
