package metrics

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func kpi(id int64, group kpis.Group, weight float64) *kpis.Kpi {
	return &kpis.Kpi{ID: kpis.KpiID(id), Name: "k", Group: group, Weight: weight}
}

func rows(kpiID int64, hits, misses int) []results.HistoryRow {
	var out []results.HistoryRow
	for i := 0; i < hits; i++ {
		out = append(out, results.HistoryRow{KpiID: kpis.KpiID(kpiID), Verdict: results.VerdictHit})
	}
	for i := 0; i < misses; i++ {
		out = append(out, results.HistoryRow{KpiID: kpis.KpiID(kpiID), Verdict: results.VerdictMiss})
	}
	return out
}

func TestGroupIndexWeightsKpiRates(t *testing.T) {
	// Two availability KPIs: 90% at weight 2 and 60% at weight 1.
	in := Inputs{
		Kpis: []*kpis.Kpi{
			kpi(1, kpis.GroupAvailability, 2),
			kpi(2, kpis.GroupAvailability, 1),
		},
		History: append(rows(1, 9, 1), rows(2, 6, 4)...),
		Weights: Weights{},
	}
	snap := Compute(in)
	want := (90.0*2 + 60.0*1) / 3
	if !almostEqual(snap.AvailabilityIndex, want) {
		t.Errorf("availability index: got %v, want %v", snap.AvailabilityIndex, want)
	}
}

func TestCompositeWeightedAverage(t *testing.T) {
	in := Inputs{
		Kpis: []*kpis.Kpi{
			kpi(1, kpis.GroupAvailability, 1),
			kpi(2, kpis.GroupSecurity, 1),
		},
		History: append(rows(1, 9, 1), rows(2, 6, 4)...), // 90 and 60
		Weights: Weights{
			OCM: map[string]float64{
				string(kpis.GroupAvailability): 2,
				string(kpis.GroupSecurity):     1,
			},
		},
	}
	snap := Compute(in)
	want := (90.0*2 + 60.0*1) / 3 // 80
	if !almostEqual(snap.OverallCompliance, want) {
		t.Errorf("OCM: got %v, want %v", snap.OverallCompliance, want)
	}
	if !almostEqual(snap.CitizenHappiness, 0) {
		t.Errorf("CHM with empty weight set: got %v, want 0", snap.CitizenHappiness)
	}
}

func TestNoHistoryScoresZero(t *testing.T) {
	in := Inputs{
		Kpis:    []*kpis.Kpi{kpi(1, kpis.GroupPerformance, 1)},
		Weights: Weights{OCM: map[string]float64{string(kpis.GroupPerformance): 1}},
	}
	snap := Compute(in)
	if snap.PerformanceIndex != 0 {
		t.Errorf("performance index without data: got %v, want 0", snap.PerformanceIndex)
	}
	if snap.OverallCompliance != 0 {
		t.Errorf("OCM without data: got %v, want 0", snap.OverallCompliance)
	}
}

func TestZeroWeightGroupScoresZero(t *testing.T) {
	in := Inputs{
		Kpis:    []*kpis.Kpi{kpi(1, kpis.GroupNavigation, 0)},
		History: rows(1, 10, 0),
	}
	snap := Compute(in)
	if snap.NavigationIndex != 0 {
		t.Errorf("zero total weight: got %v, want 0", snap.NavigationIndex)
	}
}

func TestRiskExposure(t *testing.T) {
	dreiWeights := map[string]float64{
		KeyOpenCritical: 25,
		KeyOpenHigh:     20,
		KeyOpenMedium:   15,
		KeyOpenLow:      10,
		KeySLABreach:    30,
	}
	in := Inputs{
		ImpactLevel: "High",
		Kpis:        []*kpis.Kpi{kpi(1, kpis.GroupAvailability, 1)},
		History:     rows(1, 8, 2), // 20% breach
		Incidents: []incidents.SeverityStatusCount{
			{SeverityID: 1, Status: incidents.StatusOpen, Count: 1},
			{SeverityID: 1, Status: incidents.StatusResolved, Count: 1},
		},
		SeverityNames: map[int64]string{1: "P1"},
		Weights: Weights{
			DREI:        dreiWeights,
			Criticality: map[string]float64{"High": 100, "Medium": 60, "Low": 30},
		},
	}
	snap := Compute(in)
	// P1 open ratio 50% at weight 25, SLA breach 20% at weight 30,
	// normalized by 100 total weight and scaled by 100% criticality.
	want := (50.0*25 + 20.0*30) / 100
	if !almostEqual(snap.RiskExposure, want) {
		t.Errorf("DREI: got %v, want %v", snap.RiskExposure, want)
	}

	in.ImpactLevel = "Low"
	snap = Compute(in)
	if !almostEqual(snap.RiskExposure, want*0.3) {
		t.Errorf("DREI at low criticality: got %v, want %v", snap.RiskExposure, want*0.3)
	}
}

func TestUnknownImpactLevelUsesDefaultCriticality(t *testing.T) {
	got := criticalityPct("Catastrophic", map[string]float64{"High": 100, "Medium": 60, "Low": 30})
	if got != DefaultCriticalityPct {
		t.Errorf("got %v, want %v", got, DefaultCriticalityPct)
	}
	if got := criticalityPct("medium impact", map[string]float64{"Medium": 60}); got != 60 {
		t.Errorf("prefix match: got %v, want 60", got)
	}
}

func TestCurrentHealth(t *testing.T) {
	in := Inputs{
		Kpis:    []*kpis.Kpi{kpi(1, kpis.GroupAvailability, 1)},
		History: rows(1, 10, 0),
		Weights: Weights{
			OCM: map[string]float64{string(kpis.GroupAvailability): 1},
		},
	}
	snap := Compute(in)
	// OCM 100, DREI 0 -> health (100 + 100) / 2
	if !almostEqual(snap.CurrentHealth, 100) {
		t.Errorf("health: got %v, want 100", snap.CurrentHealth)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Inputs{
		AssetID:     7,
		ImpactLevel: "High",
		Kpis: []*kpis.Kpi{
			kpi(1, kpis.GroupAvailability, 2),
			kpi(2, kpis.GroupSecurity, 1),
			kpi(3, kpis.GroupPerformance, 3),
		},
		History: append(append(rows(1, 5, 5), rows(2, 3, 1)...), rows(3, 0, 4)...),
		Incidents: []incidents.SeverityStatusCount{
			{SeverityID: 1, Status: incidents.StatusOpen, Count: 2},
			{SeverityID: 2, Status: incidents.StatusResolved, Count: 3},
		},
		SeverityNames: map[int64]string{1: "P1", 2: "P2"},
		Weights: Weights{
			CHM:         map[string]float64{string(kpis.GroupAvailability): 1, string(kpis.GroupSecurity): 1},
			OCM:         map[string]float64{string(kpis.GroupAvailability): 2, string(kpis.GroupPerformance): 1},
			DREI:        map[string]float64{KeyOpenCritical: 25, KeySLABreach: 30},
			Criticality: map[string]float64{"High": 100},
		},
		PeriodStart:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		CalculatedAt: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	first := Compute(in)
	for i := 0; i < 10; i++ {
		if got := Compute(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: got %+v, want %+v", i, got, first)
		}
	}
}
