package probes

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// Prober port (interface for one probe kind). Implementations map their own
// expected failure modes into Outcome.Flag=true; only unexpected failures
// surface as errors, which the orchestrator converts to skipped verdicts.
type Prober interface {
	Probe(ctx context.Context, asset *assets.Asset, kpi *kpis.Kpi) (results.Outcome, error)
}

// Registry resolves a prober by the KPI's probe type tag. The set of kinds
// is closed at startup; unknown tags report !ok.
type Registry interface {
	Lookup(probeType string) (Prober, bool)
}
