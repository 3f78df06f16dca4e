package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// dreiKeyBySeverity maps severity tier names to DREI component keys.
var dreiKeyBySeverity = map[string]string{
	"P1": KeyOpenCritical,
	"P2": KeyOpenHigh,
	"P3": KeyOpenMedium,
	"P4": KeyOpenLow,
}

// severityTiers in fixed order so accumulation is deterministic.
var severityTiers = []string{"P1", "P2", "P3", "P4"}

// Inputs is everything one asset's aggregation run needs, gathered up front
// so Compute itself stays pure and deterministic.
type Inputs struct {
	AssetID       assets.AssetID
	ImpactLevel   string
	Kpis          []*kpis.Kpi                    // automated KPI catalog
	History       []results.HistoryRow           // hit/miss rows in the window
	Incidents     []incidents.SeverityStatusCount // all-time, non-deleted
	SeverityNames map[int64]string               // severity id -> tier name
	Weights       Weights
	PeriodStart   time.Time
	PeriodEnd     time.Time
	CalculatedAt  time.Time
}

type kpiStat struct {
	hits  int
	total int
}

// Compute rolls a window of history plus incident counts into the six group
// indices, the three composite scores and the derived health score.
// Running it twice over identical inputs yields an identical snapshot.
func Compute(in Inputs) Snapshot {
	stats := make(map[kpis.KpiID]*kpiStat, len(in.Kpis))
	for _, row := range in.History {
		st := stats[row.KpiID]
		if st == nil {
			st = &kpiStat{}
			stats[row.KpiID] = st
		}
		st.total++
		if row.Verdict == results.VerdictHit {
			st.hits++
		}
	}

	groupScores := groupIndices(in.Kpis, stats)

	chm := weightedAverage(groupScores, in.Weights.CHM)
	ocm := weightedAverage(groupScores, in.Weights.OCM)
	drei := riskExposure(in, stats)
	health := (ocm + (100 - drei)) / 2

	return Snapshot{
		AssetID:             in.AssetID,
		AccessibilityIndex:  groupScores[string(kpis.GroupAccessibility)],
		AvailabilityIndex:   groupScores[string(kpis.GroupAvailability)],
		NavigationIndex:     groupScores[string(kpis.GroupNavigation)],
		PerformanceIndex:    groupScores[string(kpis.GroupPerformance)],
		SecurityIndex:       groupScores[string(kpis.GroupSecurity)],
		UserExperienceIndex: groupScores[string(kpis.GroupUserExp)],
		CitizenHappiness:    chm,
		OverallCompliance:   ocm,
		RiskExposure:        drei,
		CurrentHealth:       health,
		PeriodStart:         in.PeriodStart,
		PeriodEnd:           in.PeriodEnd,
		CalculatedAt:        in.CalculatedAt,
	}
}

// groupIndices computes each group's index as the weight-weighted average of
// member KPI hit rates (0-100). A KPI with no qualifying history contributes
// a hit rate of 0: absence of data is a risk, not neutral.
func groupIndices(catalog []*kpis.Kpi, stats map[kpis.KpiID]*kpiStat) map[string]float64 {
	type acc struct {
		weightedSum float64
		totalWeight float64
	}
	groups := make(map[string]*acc)

	for _, k := range catalog {
		g := groups[string(k.Group)]
		if g == nil {
			g = &acc{}
			groups[string(k.Group)] = g
		}

		hitRate := 0.0
		if st := stats[k.ID]; st != nil && st.total > 0 {
			hitRate = float64(st.hits) / float64(st.total) * 100
		}
		g.weightedSum += hitRate * k.Weight
		g.totalWeight += k.Weight
	}

	scores := make(map[string]float64, len(groups))
	for name, g := range groups {
		if g.totalWeight > 0 {
			scores[name] = g.weightedSum / g.totalWeight
		} else {
			scores[name] = 0
		}
	}
	return scores
}

// weightedAverage combines group scores with a weight set; a group absent
// from scores contributes 0. Returns 0 when the weight set is empty.
func weightedAverage(scores map[string]float64, weights map[string]float64) float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := 0.0
	for _, name := range names {
		sum += scores[name] * weights[name]
	}
	return sum / total
}

// riskExposure computes DREI: per-tier open-incident ratios plus the SLA
// breach percentage, normalized by total DREI weight and scaled by the
// asset's criticality percentage.
func riskExposure(in Inputs, stats map[kpis.KpiID]*kpiStat) float64 {
	type bucket struct {
		open  int
		total int
	}
	byTier := make(map[string]*bucket)
	for _, c := range in.Incidents {
		tier := in.SeverityNames[c.SeverityID]
		if tier == "" {
			continue
		}
		b := byTier[tier]
		if b == nil {
			b = &bucket{}
			byTier[tier] = b
		}
		b.total += c.Count
		if c.Status == incidents.StatusOpen {
			b.open += c.Count
		}
	}

	component := 0.0
	for _, tier := range severityTiers {
		b := byTier[tier]
		ratio := 0.0
		if b != nil && b.total > 0 {
			ratio = float64(b.open) / float64(b.total) * 100
		}
		component += ratio * in.Weights.DREI[dreiKeyBySeverity[tier]]
	}

	totalChecks, totalHits := 0, 0
	for _, st := range stats {
		totalChecks += st.total
		totalHits += st.hits
	}
	slaBreachPct := 0.0
	if totalChecks > 0 {
		slaBreachPct = float64(totalChecks-totalHits) / float64(totalChecks) * 100
	}
	component += slaBreachPct * in.Weights.DREI[KeySLABreach]

	totalWeight := 0.0
	for _, w := range in.Weights.DREI {
		totalWeight += w
	}
	raw := 0.0
	if totalWeight > 0 {
		raw = component / totalWeight
	}

	return raw * (criticalityPct(in.ImpactLevel, in.Weights.Criticality) / 100)
}

// criticalityPct resolves the asset's criticality percentage by
// case-insensitive prefix match of its impact level against the configured
// tiers, defaulting to DefaultCriticalityPct.
func criticalityPct(impactLevel string, tiers map[string]float64) float64 {
	level := strings.ToUpper(strings.TrimSpace(impactLevel))

	names := make([]string, 0, len(tiers))
	for name := range tiers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.HasPrefix(level, strings.ToUpper(name)) {
			return tiers[name]
		}
	}
	return DefaultCriticalityPct
}
