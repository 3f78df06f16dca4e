package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jawadbiag8/PDA/internal/domain/assets"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

type pairKey struct {
	asset assets.AssetID
	kpi   kpis.KpiID
}

// pairLocks serializes incident mutations per (asset, KPI) pair so the
// scheduled batch and a concurrent manual trigger cannot race the
// find-open-then-create sequence into a duplicate incident.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*sync.Mutex
}

func newPairLocks() *pairLocks {
	return &pairLocks{locks: make(map[pairKey]*sync.Mutex)}
}

func (p *pairLocks) get(key pairKey) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.locks[key]
	if m == nil {
		m = &sync.Mutex{}
		p.locks[key] = m
	}
	return m
}

// lifecycle applies the hysteresis rules for one verdict. Incident state is
// derived, not stored: each call re-reads the last K history rows through
// the same session that just appended the new row, so the fresh verdict
// counts toward its own streak.
type lifecycle struct {
	locks *pairLocks
	log   *zap.SugaredLogger
}

func newLifecycle(log *zap.SugaredLogger) *lifecycle {
	return &lifecycle{locks: newPairLocks(), log: log}
}

func (l *lifecycle) apply(ctx context.Context, sess Session, asset *assets.Asset, kpi *kpis.Kpi, verdict results.Verdict, frequency int, now time.Time) error {
	if frequency <= 0 {
		frequency = incidents.DefaultCreationFrequency
	}

	switch verdict {
	case results.VerdictMiss:
		recent, err := sess.Results().RecentVerdicts(ctx, asset.ID, kpi.ID, frequency)
		if err != nil {
			return err
		}
		if !incidents.ConsecutiveMisses(recent, frequency) {
			l.log.Debugf("pair asset=%d kpi=%d waiting for %d consecutive misses", asset.ID, kpi.ID, frequency)
			return nil
		}
		return l.ensureOpen(ctx, sess, asset, kpi, frequency, now)

	case results.VerdictHit:
		recent, err := sess.Results().RecentVerdicts(ctx, asset.ID, kpi.ID, frequency)
		if err != nil {
			return err
		}
		if !incidents.ConsecutiveHits(recent, frequency) {
			return nil
		}
		return l.autoClose(ctx, sess, asset, kpi)
	}

	// skipped verdicts never move incident state
	return nil
}

func (l *lifecycle) ensureOpen(ctx context.Context, sess Session, asset *assets.Asset, kpi *kpis.Kpi, frequency int, now time.Time) error {
	lock := l.locks.get(pairKey{asset: asset.ID, kpi: kpi.ID})
	lock.Lock()
	defer lock.Unlock()

	existing, err := sess.Incidents().FindOpen(ctx, asset.ID, kpi.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		l.log.Infof("incident #%d already open for asset=%d kpi=%d", existing.ID, asset.ID, kpi.ID)
		return nil
	}

	inc := incidents.NewAuto(asset.ID, kpi.ID, kpi.Name, kpi.SeverityID, now)
	id, err := sess.Incidents().Create(ctx, inc)
	if err != nil {
		return err
	}
	l.log.Infof("incident #%d created for asset=%d kpi=%q after %d consecutive misses", id, asset.ID, kpi.Name, frequency)
	return nil
}

func (l *lifecycle) autoClose(ctx context.Context, sess Session, asset *assets.Asset, kpi *kpis.Kpi) error {
	lock := l.locks.get(pairKey{asset: asset.ID, kpi: kpi.ID})
	lock.Lock()
	defer lock.Unlock()

	closed, err := sess.Incidents().CloseAuto(ctx, asset.ID, kpi.ID, incidents.SystemActor)
	if err != nil {
		return err
	}
	if closed > 0 {
		l.log.Infof("auto-closed %d incident(s) for asset=%d kpi=%q", closed, asset.ID, kpi.Name)
	}
	return nil
}
