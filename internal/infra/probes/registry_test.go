package probes

import (
	"context"
	"testing"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(5 * time.Second)

	tests := []struct {
		probeType string
		ok        bool
	}{
		{"http", true},
		{"HTTP", true},
		{" dns ", true},
		{"ssl", true},
		{"browser", false},
		{"", false},
	}
	for _, tc := range tests {
		if _, ok := r.Lookup(tc.probeType); ok != tc.ok {
			t.Errorf("Lookup(%q): got ok=%v, want %v", tc.probeType, ok, tc.ok)
		}
	}
}

type stubProber struct{}

func (stubProber) Probe(context.Context, *assets.Asset, *kpis.Kpi) (results.Outcome, error) {
	return results.Outcome{}, nil
}

func TestRegistryRegisterNormalizesName(t *testing.T) {
	r := NewRegistry(time.Second)
	r.Register(" Lighthouse ", stubProber{})
	if _, ok := r.Lookup("lighthouse"); !ok {
		t.Error("custom prober not found under normalized name")
	}
}

func TestHostnameOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://portal.example.gov", "portal.example.gov"},
		{"https://portal.example.gov/services/login", "portal.example.gov"},
		{"http://portal.example.gov:8443/x", "portal.example.gov"},
		{"portal.example.gov", "portal.example.gov"},
		{"  portal.example.gov/path  ", "portal.example.gov"},
	}
	for _, tc := range tests {
		if got := hostnameOf(tc.in); got != tc.want {
			t.Errorf("hostnameOf(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
