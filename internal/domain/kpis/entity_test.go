package kpis

import "testing"

func TestTargetFor(t *testing.T) {
	k := Kpi{TargetHigh: "99", TargetMedium: "95", TargetLow: "90"}

	tests := []struct {
		impact string
		want   string
	}{
		{"High", "99"},
		{"HIGH", "99"},
		{"Highly Critical", "99"},
		{"Low", "90"},
		{"low impact", "90"},
		{"Medium", "95"},
		{"", "95"},
		{"Unknown", "95"},
	}
	for _, tc := range tests {
		if got := k.TargetFor(tc.impact); got != tc.want {
			t.Errorf("TargetFor(%q): got %q, want %q", tc.impact, got, tc.want)
		}
	}
}

func TestIsSiteDownSignal(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Website Completely Down", true},
		{"website completely down (unreachable)", true},
		{"Backend Response Time", false},
		{"Site Down", false},
	}
	for _, tc := range tests {
		k := Kpi{Name: tc.name}
		if got := k.IsSiteDownSignal(); got != tc.want {
			t.Errorf("IsSiteDownSignal(%q): got %v, want %v", tc.name, got, tc.want)
		}
	}
}
