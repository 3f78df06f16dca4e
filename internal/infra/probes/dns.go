package probes

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// DNSProber resolves the asset's hostname and reports the addresses.
// Resolution failure is the flagged condition.
type DNSProber struct {
	resolver *net.Resolver
}

func NewDNSProber() *DNSProber {
	return &DNSProber{resolver: net.DefaultResolver}
}

func (p *DNSProber) Probe(ctx context.Context, asset *assets.Asset, _ *kpis.Kpi) (results.Outcome, error) {
	hostname := hostnameOf(asset.URL)
	if hostname == "" {
		return results.Outcome{Flag: true, Details: "DNS resolution failed: empty hostname"}, nil
	}

	start := time.Now()
	addrs, err := p.resolver.LookupHost(ctx, hostname)
	if err != nil {
		return results.Outcome{
			Flag:    true,
			Details: "DNS resolution failed: " + err.Error(),
		}, nil
	}
	elapsed := time.Since(start)

	detail := fmt.Sprintf("Hostname: %s, Primary IP: %s", hostname, addrs[0])
	if len(addrs) > 1 {
		detail += fmt.Sprintf(", Total IPs: %d (%s)", len(addrs), strings.Join(addrs, ", "))
	}
	detail += fmt.Sprintf(", Resolution time: %dms", elapsed.Milliseconds())

	return results.Outcome{
		Flag:    false,
		Value:   addrs[0],
		Details: detail,
	}, nil
}
