package probes

import (
	"strings"
	"time"

	domain "github.com/jawadbiag8/PDA/internal/domain/probes"
)

// Registry maps KPI probe-type names to their prober implementations.
// Lookup is case-insensitive; unknown types simply miss, which the
// orchestrator records as skipped.
type Registry struct {
	probers map[string]domain.Prober
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		probers: map[string]domain.Prober{
			"http": NewHTTPProber(timeout),
			"dns":  NewDNSProber(),
			"ssl":  NewSSLProber(timeout),
		},
	}
}

func (r *Registry) Register(name string, p domain.Prober) {
	r.probers[strings.ToLower(strings.TrimSpace(name))] = p
}

func (r *Registry) Lookup(probeType string) (domain.Prober, bool) {
	p, ok := r.probers[strings.ToLower(strings.TrimSpace(probeType))]
	return p, ok
}

// hostnameOf extracts the bare host from an asset URL, tolerating
// values stored without a scheme.
func hostnameOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return s
}
