package monitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/application/aggregate"
	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/metrics"
	domprobes "github.com/jawadbiag8/PDA/internal/domain/probes"
	"github.com/jawadbiag8/PDA/internal/domain/results"
	"github.com/jawadbiag8/PDA/internal/domain/runs"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ---- in-memory fakes ----

type fakeAssets struct{ list []*assets.Asset }

func (f *fakeAssets) ListActive(context.Context) ([]*assets.Asset, error) { return f.list, nil }
func (f *fakeAssets) Get(_ context.Context, id assets.AssetID) (*assets.Asset, error) {
	for _, a := range f.list {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.New("asset not found")
}

type fakeKpis struct{ list []*kpis.Kpi }

func (f *fakeKpis) ListAutomated(_ context.Context, freq kpis.Frequency) ([]*kpis.Kpi, error) {
	if freq == "" {
		return f.list, nil
	}
	var out []*kpis.Kpi
	for _, k := range f.list {
		if k.Frequency == freq {
			out = append(out, k)
		}
	}
	return out, nil
}
func (f *fakeKpis) Get(_ context.Context, id kpis.KpiID) (*kpis.Kpi, error) {
	for _, k := range f.list {
		if k.ID == id {
			return k, nil
		}
	}
	return nil, errors.New("kpi not found")
}

type fakeLookups struct{ frequency int }

func (f *fakeLookups) IncidentCreationFrequency(context.Context) (int, error) {
	if f.frequency == 0 {
		return 0, errors.New("lookup unavailable")
	}
	return f.frequency, nil
}
func (f *fakeLookups) SeverityNames(context.Context) (map[int64]string, error) {
	return map[int64]string{1: "P1", 2: "P2", 3: "P3", 4: "P4"}, nil
}

type historyRec struct {
	asset   assets.AssetID
	kpi     kpis.KpiID
	verdict results.Verdict
	value   string
	details string
}

type fakeResults struct {
	history []historyRec // append order, oldest first
	latest  map[pairKey]*results.Latest
	nextID  results.ResultID
}

func newFakeResults() *fakeResults {
	return &fakeResults{latest: make(map[pairKey]*results.Latest)}
}

func (f *fakeResults) UpsertLatest(_ context.Context, assetID assets.AssetID, kpiID kpis.KpiID, verdict results.Verdict, value, details string) (results.ResultID, error) {
	key := pairKey{asset: assetID, kpi: kpiID}
	l := f.latest[key]
	if l == nil {
		f.nextID++
		l = &results.Latest{ID: f.nextID, KpiID: kpiID}
		f.latest[key] = l
	}
	l.Verdict = verdict
	l.Value = value
	l.Details = details
	return l.ID, nil
}

func (f *fakeResults) AppendHistory(_ context.Context, assetID assets.AssetID, _ results.ResultID, kpiID kpis.KpiID, verdict results.Verdict, value, details string) error {
	f.history = append(f.history, historyRec{asset: assetID, kpi: kpiID, verdict: verdict, value: value, details: details})
	return nil
}

func (f *fakeResults) RecentVerdicts(_ context.Context, assetID assets.AssetID, kpiID kpis.KpiID, limit int) ([]results.Verdict, error) {
	var out []results.Verdict
	for i := len(f.history) - 1; i >= 0 && len(out) < limit; i-- {
		r := f.history[i]
		if r.asset == assetID && r.kpi == kpiID {
			out = append(out, r.verdict)
		}
	}
	return out, nil
}

func (f *fakeResults) HistorySince(_ context.Context, assetID assets.AssetID, _ time.Time) ([]results.HistoryRow, error) {
	var out []results.HistoryRow
	for _, r := range f.history {
		if r.asset == assetID && r.verdict != results.VerdictSkipped {
			out = append(out, results.HistoryRow{KpiID: r.kpi, Verdict: r.verdict})
		}
	}
	return out, nil
}

func (f *fakeResults) LatestByAsset(_ context.Context, assetID assets.AssetID) ([]*results.Latest, error) {
	var out []*results.Latest
	for key, l := range f.latest {
		if key.asset == assetID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeIncidents struct {
	incidents []*incidents.Incident
	nextID    incidents.IncidentID
	created   int
}

func (f *fakeIncidents) FindOpen(_ context.Context, assetID assets.AssetID, kpiID kpis.KpiID) (*incidents.Incident, error) {
	for _, inc := range f.incidents {
		if inc.AssetID == assetID && inc.KpiID == kpiID && inc.Status == incidents.StatusOpen {
			return inc, nil
		}
	}
	return nil, nil
}

func (f *fakeIncidents) Create(_ context.Context, inc *incidents.Incident) (incidents.IncidentID, error) {
	f.nextID++
	f.created++
	inc.ID = f.nextID
	f.incidents = append(f.incidents, inc)
	return inc.ID, nil
}

func (f *fakeIncidents) CloseAuto(_ context.Context, assetID assets.AssetID, kpiID kpis.KpiID, closedBy string) (int, error) {
	closed := 0
	for _, inc := range f.incidents {
		if inc.AssetID == assetID && inc.KpiID == kpiID &&
			inc.Status == incidents.StatusOpen && inc.Type == incidents.TypeAuto {
			inc.Status = incidents.StatusResolved
			inc.UpdatedBy = closedBy
			closed++
		}
	}
	return closed, nil
}

func (f *fakeIncidents) CountBySeverity(context.Context, assets.AssetID) ([]incidents.SeverityStatusCount, error) {
	return nil, nil
}

func (f *fakeIncidents) Get(_ context.Context, id incidents.IncidentID) (*incidents.Incident, error) {
	for _, inc := range f.incidents {
		if inc.ID == id {
			return inc, nil
		}
	}
	return nil, errors.New("incident not found")
}

func (f *fakeIncidents) ListOpen(context.Context, int) ([]*incidents.Incident, error) {
	var out []*incidents.Incident
	for _, inc := range f.incidents {
		if inc.Status == incidents.StatusOpen {
			out = append(out, inc)
		}
	}
	return out, nil
}

type fakeSession struct {
	results   *fakeResults
	incidents *fakeIncidents
	commits   *int
}

func (s *fakeSession) Results() results.Repository     { return s.results }
func (s *fakeSession) Incidents() incidents.Repository { return s.incidents }
func (s *fakeSession) Commit() error                   { *s.commits++; return nil }
func (s *fakeSession) Rollback() error                 { return nil }

type fakeSessionFactory struct {
	results   *fakeResults
	incidents *fakeIncidents
	commits   int
}

func (f *fakeSessionFactory) Begin(context.Context) (Session, error) {
	return &fakeSession{results: f.results, incidents: f.incidents, commits: &f.commits}, nil
}

type fakeProber struct {
	outcome results.Outcome
	err     error
	calls   map[kpis.KpiID]int
}

func (p *fakeProber) Probe(_ context.Context, _ *assets.Asset, kpi *kpis.Kpi) (results.Outcome, error) {
	if p.calls == nil {
		p.calls = make(map[kpis.KpiID]int)
	}
	p.calls[kpi.ID]++
	return p.outcome, p.err
}

type fakeRegistry struct{ probers map[string]domprobes.Prober }

func (f *fakeRegistry) Lookup(probeType string) (domprobes.Prober, bool) {
	p, ok := f.probers[probeType]
	return p, ok
}

type fakeRuns struct{ saved []*runs.BatchRun }

func (f *fakeRuns) Save(_ context.Context, r *runs.BatchRun) error {
	f.saved = append(f.saved, r)
	return nil
}
func (f *fakeRuns) Latest(context.Context, int) ([]*runs.BatchRun, error) { return f.saved, nil }

type fakeWeights struct{}

func (fakeWeights) Weights(context.Context, string) (map[string]float64, error) {
	return nil, errors.New("no weight table")
}

type fakeMetrics struct{ snapshots int }

func (f *fakeMetrics) UpsertSnapshot(context.Context, *metrics.Snapshot) error {
	f.snapshots++
	return nil
}
func (f *fakeMetrics) Get(context.Context, assets.AssetID) (*metrics.Snapshot, error) {
	return nil, errors.New("no snapshot")
}

// ---- fixture ----

type fixture struct {
	svc       *Service
	results   *fakeResults
	incidents *fakeIncidents
	sessions  *fakeSessionFactory
	metrics   *fakeMetrics
	runs      *fakeRuns
}

func newFixture(t *testing.T, assetList []*assets.Asset, kpiList []*kpis.Kpi, probers map[string]domprobes.Prober) *fixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	clock := fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	res := newFakeResults()
	inc := &fakeIncidents{}
	sessions := &fakeSessionFactory{results: res, incidents: inc}
	met := &fakeMetrics{}
	runRepo := &fakeRuns{}
	kpiRepo := &fakeKpis{list: kpiList}
	lookups := &fakeLookups{frequency: 3}

	agg := &aggregate.Service{
		Kpis:      kpiRepo,
		Results:   res,
		Incidents: inc,
		Lookups:   lookups,
		Weights:   fakeWeights{},
		Metrics:   met,
		Clock:     clock,
		Log:       log,
	}

	svc := &Service{
		Assets:     &fakeAssets{list: assetList},
		Kpis:       kpiRepo,
		Lookups:    lookups,
		Probes:     &fakeRegistry{probers: probers},
		Sessions:   sessions,
		Aggregator: agg,
		Runs:       runRepo,
		Clock:      clock,
		Log:        log,
	}
	return &fixture{svc: svc, results: res, incidents: inc, sessions: sessions, metrics: met, runs: runRepo}
}

func testAsset() *assets.Asset {
	return &assets.Asset{ID: 1, Name: "Portal", URL: "https://portal.example.gov", CitizenImpactLevel: "High"}
}

// ---- tests ----

func TestSiteDownShortCircuitsRemainingKpis(t *testing.T) {
	downKpi := &kpis.Kpi{ID: 1, Name: "Website Completely Down", ProbeType: "http", ValueType: kpis.ValueFlag, Frequency: kpis.FreqOneMinute, SeverityID: 1}
	afterKpi := &kpis.Kpi{ID: 2, Name: "Backend Response Time", ProbeType: "http", ValueType: kpis.ValueSeconds, TargetHigh: "3", Frequency: kpis.FreqOneMinute, SeverityID: 3}

	prober := &fakeProber{outcome: results.Outcome{Flag: true, Details: "Connection error - site may be down"}}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{downKpi, afterKpi}, map[string]domprobes.Prober{"http": prober})

	run, err := f.svc.RunFrequency(context.Background(), kpis.FreqOneMinute)
	if err != nil {
		t.Fatalf("RunFrequency: %v", err)
	}

	if run.Checks != 2 || run.Misses != 1 || run.Skipped != 1 {
		t.Errorf("tally: checks=%d misses=%d skipped=%d, want 2/1/1", run.Checks, run.Misses, run.Skipped)
	}
	if prober.calls[afterKpi.ID] != 0 {
		t.Errorf("probe invoked %d times for short-circuited KPI, want 0", prober.calls[afterKpi.ID])
	}

	var skippedRec *historyRec
	for i := range f.results.history {
		if f.results.history[i].kpi == afterKpi.ID {
			skippedRec = &f.results.history[i]
		}
	}
	if skippedRec == nil {
		t.Fatal("no history row persisted for short-circuited KPI")
	}
	if skippedRec.verdict != results.VerdictSkipped {
		t.Errorf("verdict: got %s, want skipped", skippedRec.verdict)
	}
	if skippedRec.details != SiteDownDetails {
		t.Errorf("details: got %q, want %q", skippedRec.details, SiteDownDetails)
	}
}

func TestProbeErrorBecomesSkipped(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "DNS Resolution", ProbeType: "dns", ValueType: kpis.ValueFlag, Frequency: kpis.FreqFiveMinutes, SeverityID: 2}
	prober := &fakeProber{err: errors.New("resolver unavailable")}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"dns": prober})

	run, err := f.svc.RunFrequency(context.Background(), kpis.FreqFiveMinutes)
	if err != nil {
		t.Fatalf("RunFrequency: %v", err)
	}
	if run.Skipped != 1 || run.Misses != 0 {
		t.Errorf("tally: skipped=%d misses=%d, want 1/0", run.Skipped, run.Misses)
	}

	rec := f.results.history[len(f.results.history)-1]
	if rec.verdict != results.VerdictSkipped {
		t.Errorf("verdict: got %s, want skipped", rec.verdict)
	}
	if !strings.HasPrefix(rec.details, "Error: ") {
		t.Errorf("details: got %q, want Error: prefix", rec.details)
	}
	if f.incidents.created != 0 {
		t.Errorf("probe error opened %d incidents, want 0", f.incidents.created)
	}
}

func TestUnknownProbeTypeBecomesSkipped(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Browser Journey", ProbeType: "browser", ValueType: kpis.ValueFlag, Frequency: kpis.FreqDaily}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, nil)

	run, err := f.svc.RunFrequency(context.Background(), kpis.FreqDaily)
	if err != nil {
		t.Fatalf("RunFrequency: %v", err)
	}
	if run.Skipped != 1 {
		t.Errorf("skipped=%d, want 1", run.Skipped)
	}
}

func TestIncidentOpensAfterConsecutiveMisses(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Uptime SLA", ProbeType: "http", ValueType: kpis.ValueFlag, Frequency: kpis.FreqOneMinute, SeverityID: 1}
	prober := &fakeProber{outcome: results.Outcome{Flag: true, Details: "down"}}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"http": prober})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := f.svc.RunFrequency(ctx, kpis.FreqOneMinute); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if f.incidents.created != 0 {
		t.Fatalf("incident opened after 2 misses, want none before 3")
	}

	if _, err := f.svc.RunFrequency(ctx, kpis.FreqOneMinute); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if f.incidents.created != 1 {
		t.Fatalf("created=%d after 3 misses, want 1", f.incidents.created)
	}

	inc := f.incidents.incidents[0]
	if inc.Title != "Uptime SLA - Breach" {
		t.Errorf("title: got %q", inc.Title)
	}
	if inc.Description != "Uptime SLA - Auto Created Incident" {
		t.Errorf("description: got %q", inc.Description)
	}
	if inc.Type != incidents.TypeAuto || inc.CreatedBy != incidents.SystemActor || inc.AssignedTo != incidents.DefaultAssignee {
		t.Errorf("incident identity fields: %+v", inc)
	}

	// A fourth miss must not open a second incident.
	if _, err := f.svc.RunFrequency(ctx, kpis.FreqOneMinute); err != nil {
		t.Fatalf("fourth run: %v", err)
	}
	if f.incidents.created != 1 {
		t.Errorf("created=%d after 4th miss, want still 1", f.incidents.created)
	}
}

func TestSkippedBreaksMissStreak(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Uptime SLA", ProbeType: "http", ValueType: kpis.ValueFlag, Frequency: kpis.FreqOneMinute}
	prober := &fakeProber{outcome: results.Outcome{Flag: true}}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"http": prober})

	ctx := context.Background()
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute) // miss
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute) // miss

	prober.err = errors.New("timeout")
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute) // skipped

	prober.err = nil
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute) // miss, but streak is broken

	if f.incidents.created != 0 {
		t.Errorf("created=%d, want 0: a skipped check interrupts the streak", f.incidents.created)
	}
}

func TestAutoCloseAfterConsecutiveHits(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Uptime SLA", ProbeType: "http", ValueType: kpis.ValueFlag, Frequency: kpis.FreqOneMinute, SeverityID: 1}
	prober := &fakeProber{outcome: results.Outcome{Flag: false, Details: "up"}}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"http": prober})

	auto := incidents.NewAuto(1, 1, kpi.Name, 1, time.Now())
	manual := &incidents.Incident{AssetID: 1, KpiID: 1, Title: "raised by operator", Type: incidents.TypeManual, Status: incidents.StatusOpen}
	f.incidents.Create(context.Background(), auto)
	f.incidents.Create(context.Background(), manual)
	f.incidents.created = 0

	ctx := context.Background()
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute)
	f.svc.RunFrequency(ctx, kpis.FreqOneMinute)
	if auto.Status != incidents.StatusOpen {
		t.Fatal("auto incident closed before 3 consecutive hits")
	}

	f.svc.RunFrequency(ctx, kpis.FreqOneMinute)
	if auto.Status != incidents.StatusResolved {
		t.Error("auto incident not closed after 3 consecutive hits")
	}
	if auto.UpdatedBy != incidents.SystemActor {
		t.Errorf("closer: got %q, want %q", auto.UpdatedBy, incidents.SystemActor)
	}
	if manual.Status != incidents.StatusOpen {
		t.Error("manual incident must never be auto-closed")
	}
}

func TestRunFrequencyCommitsPerAssetAndRecalculates(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Uptime SLA", ProbeType: "http", ValueType: kpis.ValueFlag, Frequency: kpis.FreqOneMinute}
	prober := &fakeProber{outcome: results.Outcome{Flag: false}}
	assetList := []*assets.Asset{
		testAsset(),
		{ID: 2, Name: "Ministry Site", URL: "https://ministry.example.gov", CitizenImpactLevel: "Medium"},
	}
	f := newFixture(t, assetList, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"http": prober})

	run, err := f.svc.RunFrequency(context.Background(), kpis.FreqOneMinute)
	if err != nil {
		t.Fatalf("RunFrequency: %v", err)
	}
	if run.Assets != 2 || run.Checks != 2 || run.Hits != 2 {
		t.Errorf("tally: assets=%d checks=%d hits=%d, want 2/2/2", run.Assets, run.Checks, run.Hits)
	}
	if f.sessions.commits != 2 {
		t.Errorf("commits=%d, want one per asset", f.sessions.commits)
	}
	if f.metrics.snapshots != 2 {
		t.Errorf("snapshots=%d, want one per asset", f.metrics.snapshots)
	}
	if run.Status != runs.StatusCompleted {
		t.Errorf("status: got %s, want completed", run.Status)
	}
	if len(f.runs.saved) < 2 {
		t.Errorf("run row saved %d times, want start and finish", len(f.runs.saved))
	}
}

func TestCheckPairManualTrigger(t *testing.T) {
	kpi := &kpis.Kpi{ID: 1, Name: "Backend Response Time", ProbeType: "http", ValueType: kpis.ValueSeconds, TargetHigh: "3", TargetMedium: "5", Frequency: kpis.FreqFiveMinutes}
	prober := &fakeProber{outcome: results.Outcome{Value: 2.1, Details: "Response time: 2.10s (OK)"}}
	f := newFixture(t, []*assets.Asset{testAsset()}, []*kpis.Kpi{kpi}, map[string]domprobes.Prober{"http": prober})

	verdict, err := f.svc.CheckPair(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("CheckPair: %v", err)
	}
	if verdict != results.VerdictHit {
		t.Errorf("verdict: got %s, want hit (2.1s against high-impact target 3)", verdict)
	}
	if f.sessions.commits != 1 {
		t.Errorf("commits=%d, want 1", f.sessions.commits)
	}
	if f.metrics.snapshots != 1 {
		t.Errorf("snapshots=%d, want 1", f.metrics.snapshots)
	}
}
