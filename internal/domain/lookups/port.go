package lookups

import "context"

// Source reads global lookup configuration. Callers fall back to hard-coded
// defaults on error rather than aborting a run.
type Source interface {
	// IncidentCreationFrequency is the consecutive-verdict streak length K.
	IncidentCreationFrequency(ctx context.Context) (int, error)

	// SeverityNames maps severity ids to tier names (P1..P4).
	SeverityNames(ctx context.Context) (map[int64]string, error)
}
