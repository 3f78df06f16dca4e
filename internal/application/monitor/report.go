package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
	"github.com/jawadbiag8/PDA/internal/domain/runs"
)

type checkEntry struct {
	KpiID   kpis.KpiID      `json:"kpi_id"`
	Kpi     string          `json:"kpi"`
	Verdict results.Verdict `json:"verdict"`
	Details string          `json:"details,omitempty"`
}

type assetReport struct {
	AssetID assets.AssetID `json:"asset_id"`
	Name    string         `json:"name"`
	Checks  []checkEntry   `json:"checks"`
}

type runReport struct {
	RunID      runs.RunID     `json:"run_id"`
	Frequency  kpis.Frequency `json:"frequency"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Checks     int            `json:"checks"`
	Hits       int            `json:"hits"`
	Misses     int            `json:"misses"`
	Skipped    int            `json:"skipped"`
	Assets     []assetReport  `json:"assets"`
}

// finishRun stamps the run row, archives the JSON report when an artifact
// store is configured, and saves. Archival is best-effort: a failed upload
// never fails the batch.
func (s *Service) finishRun(ctx context.Context, run *runs.BatchRun, total tally, report []assetReport, runErr error) (*runs.BatchRun, error) {
	run.FinishedAt = s.Clock.Now()
	run.Checks = total.checks
	run.Hits = total.hits
	run.Misses = total.misses
	run.Skipped = total.skipped
	if runErr != nil {
		run.Status = runs.StatusFailed
	} else {
		run.Status = runs.StatusCompleted
	}

	if runErr == nil && s.Artifacts != nil && len(report) > 0 {
		url, err := s.uploadReport(ctx, run, report)
		if err != nil {
			s.Log.Warnf("archiving run report: %v", err)
		} else {
			run.ReportURL = url
		}
	}

	if err := s.Runs.Save(ctx, run); err != nil {
		s.Log.Warnf("saving run row: %v", err)
	}
	return run, runErr
}

func (s *Service) uploadReport(ctx context.Context, run *runs.BatchRun, report []assetReport) (string, error) {
	f, err := os.CreateTemp("", "kpi-run-*.json")
	if err != nil {
		return "", err
	}

	doc := runReport{
		RunID:      run.ID,
		Frequency:  run.Frequency,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Checks:     run.Checks,
		Hits:       run.Hits,
		Misses:     run.Misses,
		Skipped:    run.Skipped,
		Assets:     report,
	}
	if err := json.NewEncoder(f).Encode(doc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}

	key := fmt.Sprintf("runs/%s/%s.json", freqSlug(run.Frequency), run.ID)
	return s.Artifacts.UploadAndCleanup(ctx, f.Name(), key)
}
