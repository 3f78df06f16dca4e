package probes

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// SSLProber inspects the served certificate chain without verifying it,
// so certificates from local issuers can still be examined. Expiry is
// the flagged condition; near-expiry is surfaced in the details only.
type SSLProber struct {
	timeout time.Duration
}

func NewSSLProber(timeout time.Duration) *SSLProber {
	return &SSLProber{timeout: timeout}
}

const expiryWarningWindow = 30 * 24 * time.Hour

func (p *SSLProber) Probe(ctx context.Context, asset *assets.Asset, _ *kpis.Kpi) (results.Outcome, error) {
	hostname := hostnameOf(asset.URL)
	if hostname == "" {
		return results.Outcome{Flag: true, Details: "SSL connection failed: empty hostname"}, nil
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.timeout},
		Config: &tls.Config{
			ServerName:         hostname,
			InsecureSkipVerify: true,
		},
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(hostname, "443"))
	if err != nil {
		return results.Outcome{
			Flag:    true,
			Details: "SSL connection failed: " + err.Error(),
		}, nil
	}
	defer conn.Close()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return results.Outcome{Flag: true, Details: "No certificate found"}, nil
	}
	cert := certs[0]

	now := time.Now().UTC()
	daysLeft := int(cert.NotAfter.Sub(now).Hours() / 24)
	expired := cert.NotAfter.Before(now)
	state := "OK"
	switch {
	case expired:
		state = "EXPIRED"
	case cert.NotAfter.Sub(now) <= expiryWarningWindow:
		state = "WARNING"
	}

	return results.Outcome{
		Flag:  expired,
		Value: cert.NotAfter.Format("2006-01-02"),
		Details: fmt.Sprintf("CN: %s, Issuer: %s, Expires in %d days (%s)",
			commonName(cert.Subject.CommonName), commonName(cert.Issuer.CommonName), daysLeft, state),
	}, nil
}

func commonName(cn string) string {
	if cn == "" {
		return "Unknown"
	}
	return cn
}
