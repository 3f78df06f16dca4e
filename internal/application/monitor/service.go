package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/application"
	"github.com/jawadbiag8/PDA/internal/application/aggregate"
	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/lookups"
	"github.com/jawadbiag8/PDA/internal/domain/probes"
	"github.com/jawadbiag8/PDA/internal/domain/results"
	"github.com/jawadbiag8/PDA/internal/domain/runs"
)

// SiteDownDetails is persisted on every check short-circuited by a site-down
// signal earlier in the asset's KPI list.
const SiteDownDetails = "Skipped - site is down"

const defaultProbeTimeout = 30 * time.Second

// Service is the batch orchestrator. It walks assets and their applicable
// KPIs, turns probe outcomes into verdicts, drives the incident lifecycle
// and hands each finished asset to the metrics aggregator. The same
// per-pair path backs the scheduled batches and the manual trigger.
type Service struct {
	Assets       assets.Repository
	Kpis         kpis.Repository
	Lookups      lookups.Source
	Probes       probes.Registry
	Sessions     SessionFactory
	Aggregator   *aggregate.Service
	Runs         runs.Repository
	Artifacts    runs.ArtifactStore // optional; nil disables report archival
	Clock        application.Clock
	Log          *zap.SugaredLogger
	ProbeTimeout time.Duration

	lc *lifecycle
}

type tally struct {
	checks  int
	hits    int
	misses  int
	skipped int
}

func (t *tally) add(v results.Verdict) {
	switch v {
	case results.VerdictHit:
		t.hits++
	case results.VerdictMiss:
		t.misses++
	case results.VerdictSkipped:
		t.skipped++
	}
}

func (t *tally) merge(o tally) {
	t.checks += o.checks
	t.hits += o.hits
	t.misses += o.misses
	t.skipped += o.skipped
}

func (s *Service) lifecycle() *lifecycle {
	if s.lc == nil {
		s.lc = newLifecycle(s.Log)
	}
	return s.lc
}

// RunFrequency evaluates every automated KPI on the given cadence against
// every active asset. One asset at a time, one KPI at a time; each asset
// commits as a unit and no per-pair error stops the rest of the batch.
// Cancellation is coarse: an in-flight asset finishes before the loop stops.
func (s *Service) RunFrequency(ctx context.Context, freq kpis.Frequency) (*runs.BatchRun, error) {
	started := s.Clock.Now()
	run := &runs.BatchRun{
		ID:        runs.RunID(fmt.Sprintf("%s-%s", uuid.New().String(), freqSlug(freq))),
		Frequency: freq,
		StartedAt: started,
		Status:    runs.StatusRunning,
	}
	if err := s.Runs.Save(ctx, run); err != nil {
		s.Log.Warnf("saving initial run row: %v", err)
	}

	s.Log.Infof("running KPIs with frequency %q", freq)

	frequency := s.incidentFrequency(ctx)

	kpiList, err := s.Kpis.ListAutomated(ctx, freq)
	if err != nil {
		return s.finishRun(ctx, run, tally{}, nil, err)
	}
	if len(kpiList) == 0 {
		s.Log.Warnf("no KPIs found with frequency %q", freq)
		return s.finishRun(ctx, run, tally{}, nil, nil)
	}

	assetList, err := s.Assets.ListActive(ctx)
	if err != nil {
		return s.finishRun(ctx, run, tally{}, nil, err)
	}
	run.Assets = len(assetList)
	s.Log.Infof("assets: %d | KPIs: %d", len(assetList), len(kpiList))

	var total tally
	var report []assetReport
	for _, asset := range assetList {
		if ctx.Err() != nil {
			s.Log.Warnf("batch cancelled after %d checks", total.checks)
			break
		}
		t, entries := s.runAsset(ctx, asset, kpiList, frequency)
		total.merge(t)
		report = append(report, assetReport{
			AssetID: asset.ID,
			Name:    asset.Name,
			Checks:  entries,
		})
	}

	s.Log.Infof("summary: %d checks | %d hits | %d misses | %d skipped",
		total.checks, total.hits, total.misses, total.skipped)
	return s.finishRun(ctx, run, total, report, nil)
}

// RunAll runs every cadence once, in scheduling order.
func (s *Service) RunAll(ctx context.Context) error {
	for _, freq := range kpis.Frequencies {
		if _, err := s.RunFrequency(ctx, freq); err != nil {
			s.Log.Errorf("frequency %q: %v", freq, err)
		}
	}
	return ctx.Err()
}

// CheckPair runs the full per-pair path (probe, evaluate, persist,
// lifecycle) for one (asset, KPI) pair, then recalculates the asset's
// metrics. This is the manual-trigger entry point; it is safe to call while
// a scheduled batch runs.
func (s *Service) CheckPair(ctx context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (results.Verdict, error) {
	asset, err := s.Assets.Get(ctx, assetID)
	if err != nil {
		return "", err
	}
	kpi, err := s.Kpis.Get(ctx, kpiID)
	if err != nil {
		return "", err
	}

	frequency := s.incidentFrequency(ctx)

	sess, err := s.Sessions.Begin(ctx)
	if err != nil {
		return "", err
	}
	verdict, _ := s.evaluatePair(ctx, sess, asset, kpi, frequency)
	if err := sess.Commit(); err != nil {
		s.Log.Errorf("committing manual check asset=%d kpi=%d: %v", assetID, kpiID, err)
	}

	if _, err := s.Aggregator.Recalculate(ctx, asset); err != nil {
		s.Log.Errorf("recalculating metrics for asset %d: %v", asset.ID, err)
	}
	return verdict, nil
}

// CheckAsset runs every automated KPI for one asset, with the same
// site-down short-circuit the batch applies.
func (s *Service) CheckAsset(ctx context.Context, assetID assets.AssetID) error {
	asset, err := s.Assets.Get(ctx, assetID)
	if err != nil {
		return err
	}
	kpiList, err := s.Kpis.ListAutomated(ctx, "")
	if err != nil {
		return err
	}
	frequency := s.incidentFrequency(ctx)
	s.runAsset(ctx, asset, kpiList, frequency)
	return nil
}

// runAsset processes one asset's KPI list inside a single session, commits,
// then recalculates metrics. Persistence failures are logged and the loop
// keeps going.
func (s *Service) runAsset(ctx context.Context, asset *assets.Asset, kpiList []*kpis.Kpi, frequency int) (tally, []checkEntry) {
	s.Log.Infof("asset: %s (%s) | url: %s", asset.Name, orNA(asset.CitizenImpactLevel), asset.URL)

	sess, err := s.Sessions.Begin(ctx)
	if err != nil {
		s.Log.Errorf("opening session for asset %d: %v", asset.ID, err)
		return tally{}, nil
	}
	committed := false
	defer func() {
		if !committed {
			_ = sess.Rollback()
		}
	}()

	var t tally
	var entries []checkEntry
	siteDown := false
	for _, kpi := range kpiList {
		if siteDown {
			t.checks++
			t.skipped++
			outcome := results.Outcome{Flag: true, Details: SiteDownDetails}
			s.persist(ctx, sess, asset, kpi, outcome, results.VerdictSkipped)
			entries = append(entries, checkEntry{KpiID: kpi.ID, Kpi: kpi.Name, Verdict: results.VerdictSkipped})
			s.Log.Infof("  [SKIP] %s (site is down)", kpi.Name)
			continue
		}

		t.checks++
		verdict, details := s.evaluatePair(ctx, sess, asset, kpi, frequency)
		t.add(verdict)
		entries = append(entries, checkEntry{KpiID: kpi.ID, Kpi: kpi.Name, Verdict: verdict, Details: details})
		s.Log.Infof("  [%s] %s", strings.ToUpper(string(verdict)), kpi.Name)

		if kpi.IsSiteDownSignal() && verdict == results.VerdictMiss {
			siteDown = true
			s.Log.Warnf("  site is DOWN - skipping remaining KPIs for %s", asset.Name)
		}
	}

	if err := sess.Commit(); err != nil {
		s.Log.Errorf("committing asset %d: %v", asset.ID, err)
	} else {
		committed = true
	}

	if _, err := s.Aggregator.Recalculate(ctx, asset); err != nil {
		s.Log.Errorf("recalculating metrics for asset %d: %v", asset.ID, err)
	}
	return t, entries
}

// evaluatePair probes once, classifies the outcome and applies the incident
// lifecycle. Probe failures of any kind become skipped verdicts with the
// error captured in details; they are never misses.
func (s *Service) evaluatePair(ctx context.Context, sess Session, asset *assets.Asset, kpi *kpis.Kpi, frequency int) (results.Verdict, string) {
	outcome, err := s.probe(ctx, asset, kpi)
	if err != nil {
		outcome = results.Outcome{Flag: true, Details: "Error: " + truncate(err.Error(), 200)}
		s.persist(ctx, sess, asset, kpi, outcome, results.VerdictSkipped)
		return results.VerdictSkipped, outcome.Details
	}

	verdict := results.Evaluate(outcome, kpi.TargetFor(asset.CitizenImpactLevel), kpi.ValueType)
	s.persist(ctx, sess, asset, kpi, outcome, verdict)

	if err := s.lifecycle().apply(ctx, sess, asset, kpi, verdict, frequency, s.Clock.Now()); err != nil {
		s.Log.Errorf("incident lifecycle asset=%d kpi=%d: %v", asset.ID, kpi.ID, err)
	}
	return verdict, outcome.Details
}

func (s *Service) probe(ctx context.Context, asset *assets.Asset, kpi *kpis.Kpi) (o results.Outcome, err error) {
	p, ok := s.Probes.Lookup(kpi.ProbeType)
	if !ok {
		return results.Outcome{}, fmt.Errorf("no prober registered for type %q", kpi.ProbeType)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panic: %v", r)
		}
	}()

	timeout := s.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Probe(pctx, asset, kpi)
}

// persist writes the latest-value snapshot and the history append. A failed
// history append must not block the remainder of the loop.
func (s *Service) persist(ctx context.Context, sess Session, asset *assets.Asset, kpi *kpis.Kpi, outcome results.Outcome, verdict results.Verdict) {
	value := results.FormatValue(outcome, kpi.ValueType)

	resultID, err := sess.Results().UpsertLatest(ctx, asset.ID, kpi.ID, verdict, value, outcome.Details)
	if err != nil {
		s.Log.Errorf("storing result asset=%d kpi=%d: %v", asset.ID, kpi.ID, err)
		return
	}
	if err := sess.Results().AppendHistory(ctx, asset.ID, resultID, kpi.ID, verdict, value, outcome.Details); err != nil {
		s.Log.Errorf("storing history asset=%d kpi=%d: %v", asset.ID, kpi.ID, err)
	}
}

func (s *Service) incidentFrequency(ctx context.Context) int {
	frequency, err := s.Lookups.IncidentCreationFrequency(ctx)
	if err != nil || frequency <= 0 {
		if err != nil {
			s.Log.Warnf("incident creation frequency unavailable, using default %d: %v",
				incidents.DefaultCreationFrequency, err)
		}
		return incidents.DefaultCreationFrequency
	}
	return frequency
}

func freqSlug(f kpis.Frequency) string {
	return strings.ToLower(strings.ReplaceAll(string(f), " ", ""))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
