package kpis

import "strings"

// KpiID identifier type
type KpiID int64

// ValueType tags how a probe outcome's value is interpreted.
type ValueType string

const (
	ValueFlag      ValueType = "Flag"
	ValueSeconds   ValueType = "Sec"
	ValueMegabytes ValueType = "MB"
	ValuePercent   ValueType = "%"
)

// Group is the fixed KPI group taxonomy.
type Group string

const (
	GroupAccessibility Group = "Accessibility & Inclusivity"
	GroupAvailability  Group = "Availability & Reliability"
	GroupNavigation    Group = "Navigation & Discoverability"
	GroupPerformance   Group = "Performance & Efficiency"
	GroupSecurity      Group = "Security, Trust & Privacy"
	GroupUserExp       Group = "User Experience & Journey Quality"
)

// Frequency is the execution cadence tag.
type Frequency string

const (
	FreqOneMinute     Frequency = "1 min"
	FreqFiveMinutes   Frequency = "5 min"
	FreqFifteenMinute Frequency = "15 min"
	FreqDaily         Frequency = "Daily"
)

// Frequencies lists all cadences in scheduling order.
var Frequencies = []Frequency{FreqOneMinute, FreqFiveMinutes, FreqFifteenMinute, FreqDaily}

// Automation values; only "Auto" KPIs are scheduled.
const (
	AutomationAuto   = "Auto"
	AutomationManual = "Manual"
)

// Kpi is a catalog entry: a named, typed check with per-impact-tier targets.
type Kpi struct {
	ID           KpiID     `json:"id"`
	Name         string    `json:"name"`
	Group        Group     `json:"group"`
	ProbeType    string    `json:"probe_type"`
	ValueType    ValueType `json:"value_type"`
	TargetHigh   string    `json:"target_high,omitempty"`
	TargetMedium string    `json:"target_medium,omitempty"`
	TargetLow    string    `json:"target_low,omitempty"`
	Weight       float64   `json:"weight"`
	SeverityID   int64     `json:"severity_id"`
	Frequency    Frequency `json:"frequency"`
	Automation   string    `json:"automation"`
}

// TargetFor selects the threshold for an asset's citizen impact level.
// Lookup values are matched by case-insensitive prefix against HIGH/LOW;
// anything else (including unset) falls back to the Medium target.
func (k *Kpi) TargetFor(impactLevel string) string {
	level := strings.ToUpper(strings.TrimSpace(impactLevel))
	switch {
	case strings.HasPrefix(level, "HIGH"):
		return k.TargetHigh
	case strings.HasPrefix(level, "LOW"):
		return k.TargetLow
	default:
		return k.TargetMedium
	}
}

// IsSiteDownSignal reports whether a miss on this KPI means the whole
// site is unreachable, so remaining checks for the asset are pointless.
func (k *Kpi) IsSiteDownSignal() bool {
	return strings.Contains(strings.ToLower(k.Name), "completely down")
}
