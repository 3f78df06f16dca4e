package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/middleware"
)

// Scheduler drives the batch cadences: the minute-based frequencies run
// on tickers, the daily frequency at a configured wall-clock time. At
// most one run per frequency is in flight; a tick that lands while the
// previous run is still going is skipped, not queued.
type Scheduler struct {
	Monitor *monitor.Service
	Log     *zap.SugaredLogger

	mu          sync.Mutex
	dailyHour   int
	dailyMinute int

	inFlight map[kpis.Frequency]*int32
	wg       sync.WaitGroup
}

func New(m *monitor.Service, log *zap.SugaredLogger, dailyHour, dailyMinute int) *Scheduler {
	inFlight := make(map[kpis.Frequency]*int32, len(kpis.Frequencies))
	for _, f := range kpis.Frequencies {
		inFlight[f] = new(int32)
	}
	return &Scheduler{
		Monitor:     m,
		Log:         log,
		dailyHour:   dailyHour,
		dailyMinute: dailyMinute,
		inFlight:    inFlight,
	}
}

// SetDailyTime updates the daily run time; it takes effect when the
// next occurrence is computed.
func (s *Scheduler) SetDailyTime(hour, minute int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dailyHour, s.dailyMinute = hour, minute
}

// Run blocks until ctx is cancelled, then drains in-flight runs.
func (s *Scheduler) Run(ctx context.Context) {
	intervals := map[kpis.Frequency]time.Duration{
		kpis.FreqOneMinute:     time.Minute,
		kpis.FreqFiveMinutes:   5 * time.Minute,
		kpis.FreqFifteenMinute: 15 * time.Minute,
	}

	var loops sync.WaitGroup
	for freq, interval := range intervals {
		loops.Add(1)
		go func(freq kpis.Frequency, interval time.Duration) {
			defer loops.Done()
			s.tickLoop(ctx, freq, interval)
		}(freq, interval)
	}

	loops.Add(1)
	go func() {
		defer loops.Done()
		s.dailyLoop(ctx)
	}()

	<-ctx.Done()
	loops.Wait()
	s.Log.Info("scheduler stopping, waiting for in-flight runs")
	s.wg.Wait()
}

func (s *Scheduler) tickLoop(ctx context.Context, freq kpis.Frequency, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx, freq)
		}
	}
}

func (s *Scheduler) dailyLoop(ctx context.Context) {
	for {
		timer := time.NewTimer(time.Until(s.nextDaily(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.trigger(ctx, kpis.FreqDaily)
		}
	}
}

func (s *Scheduler) nextDaily(now time.Time) time.Time {
	s.mu.Lock()
	hour, minute := s.dailyHour, s.dailyMinute
	s.mu.Unlock()

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// trigger starts a batch run unless one for the same frequency is
// still in flight.
func (s *Scheduler) trigger(ctx context.Context, freq kpis.Frequency) {
	flag := s.inFlight[freq]
	if !atomic.CompareAndSwapInt32(flag, 0, 1) {
		s.Log.Warnw("previous batch still running, skipping tick", "frequency", freq)
		return
	}

	s.wg.Add(1)
	middleware.IncrementBatchRuns()
	middleware.IncrementBatchRunsRunning()
	go func() {
		defer s.wg.Done()
		defer atomic.StoreInt32(flag, 0)
		defer middleware.DecrementBatchRunsRunning()

		run, err := s.Monitor.RunFrequency(ctx, freq)
		if err != nil {
			middleware.IncrementBatchRunsFailed()
			s.Log.Errorw("batch run failed", "frequency", freq, "err", err)
			return
		}
		s.Log.Infow("batch run finished",
			"frequency", freq, "run", run.ID,
			"assets", run.Assets, "checks", run.Checks,
			"hits", run.Hits, "misses", run.Misses, "skipped", run.Skipped)
	}()
}
