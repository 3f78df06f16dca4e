package probes

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// Many monitored sites run certificates from local government issuers,
// so verification stays off: the TLS KPI inspects certificates
// separately.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const (
	flappingAttempts = 3
	flappingTimeout  = 10 * time.Second
	slowThreshold    = 3 * time.Second
)

// HTTPProber covers the availability and reachability KPI family. The
// KPI name selects the check variant, mirroring how the KPI catalog is
// curated.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, asset *assets.Asset, kpi *kpis.Kpi) (results.Outcome, error) {
	name := strings.ToLower(kpi.Name)

	if strings.Contains(name, "intermittent") || strings.Contains(name, "flapping") {
		return p.probeFlapping(ctx, asset.URL), nil
	}

	start := time.Now()
	resp, err := p.get(ctx, asset.URL)
	if err != nil {
		return results.Outcome{Flag: true, Details: requestFailure(err)}, nil
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	switch {
	case strings.Contains(name, "completely down"):
		return results.Outcome{
			Flag:  false,
			Value: resp.StatusCode,
			Details: fmt.Sprintf("Site is UP - Status: %d, Response time: %.2fs, Server: %s",
				resp.StatusCode, elapsed.Seconds(), serverHeader(resp)),
		}, nil

	case strings.Contains(name, "hosting") || strings.Contains(name, "network outage"):
		size, _ := io.Copy(io.Discard, resp.Body)
		return results.Outcome{
			Flag:  false,
			Value: resp.StatusCode,
			Details: fmt.Sprintf("Site accessible - Status: %d, Response time: %.2fs, Content size: %d bytes",
				resp.StatusCode, elapsed.Seconds(), size),
		}, nil

	case strings.Contains(name, "backend response") || strings.Contains(name, "response time"):
		slow := elapsed > slowThreshold
		state := "OK"
		if slow {
			state = "SLOW"
		}
		return results.Outcome{
			Flag:    slow,
			Value:   roundSeconds(elapsed),
			Details: fmt.Sprintf("Response time: %.2fs (%s)", elapsed.Seconds(), state),
		}, nil

	case strings.Contains(name, "https"):
		isHTTPS := strings.HasPrefix(strings.ToLower(asset.URL), "https://")
		proto := "HTTP"
		if isHTTPS {
			proto = "HTTPS"
		}
		return results.Outcome{
			Flag:    !isHTTPS,
			Value:   proto,
			Details: "Protocol: " + proto,
		}, nil

	default:
		return results.Outcome{
			Flag:    resp.StatusCode >= 400,
			Value:   resp.StatusCode,
			Details: fmt.Sprintf("Status: %d, Time: %.2fs", resp.StatusCode, elapsed.Seconds()),
		}, nil
	}
}

// probeFlapping repeats the request to catch intermittent availability;
// any failed attempt raises the flag.
func (p *HTTPProber) probeFlapping(ctx context.Context, url string) results.Outcome {
	failures := 0
	var successTotal time.Duration
	var successes int
	var reasons []string

	for i := 0; i < flappingAttempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, flappingTimeout)
		start := time.Now()
		resp, err := p.get(attemptCtx, url)
		cancel()
		if err != nil {
			failures++
			reasons = append(reasons, fmt.Sprintf("attempt %d: %s", i+1, requestFailure(err)))
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		successTotal += time.Since(start)
		successes++
	}

	detail := fmt.Sprintf("Tested %d times: %d successful", flappingAttempts, successes)
	if successes > 0 {
		avg := successTotal / time.Duration(successes)
		detail += fmt.Sprintf(" (avg %.2fs)", avg.Seconds())
	}
	if failures > 0 {
		detail += fmt.Sprintf(", %d failed", failures)
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
		detail += " - [" + strings.Join(reasons, ", ") + "]"
	}

	return results.Outcome{
		Flag:    failures > 0,
		Value:   fmt.Sprintf("%d/%d", failures, flappingAttempts),
		Details: detail,
	}
}

func (p *HTTPProber) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return p.client.Do(req)
}

func requestFailure(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded") || strings.Contains(msg, "Client.Timeout"):
		return "Request timeout"
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return "Connection error - site may be down"
	default:
		return msg
	}
}

func serverHeader(resp *http.Response) string {
	if s := resp.Header.Get("Server"); s != "" {
		return s
	}
	return "Unknown"
}

func roundSeconds(d time.Duration) float64 {
	return float64(int(d.Seconds()*100)) / 100
}
