package monitor

import (
	"context"

	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// Session is an explicit request-scoped persistence scope. All writes for
// one asset's KPI loop go through a single session and commit as a unit, so
// a failure mid-asset never rolls back other assets.
type Session interface {
	Results() results.Repository
	Incidents() incidents.Repository
	Commit() error
	Rollback() error
}

// SessionFactory opens sessions; one per asset per batch pass.
type SessionFactory interface {
	Begin(ctx context.Context) (Session, error)
}
