package mysql

import (
	"context"
	"database/sql"

	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/results"
)

// DBTX is the subset of database/sql satisfied by both *sql.DB and
// *sql.Tx, so the repositories work in and out of a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store hands out transactional sessions scoped to one monitoring pass.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Begin(ctx context.Context) (monitor.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Session{
		tx:        tx,
		results:   NewResultRepository(tx),
		incidents: NewIncidentRepository(tx),
	}, nil
}

type Session struct {
	tx        *sql.Tx
	results   *ResultRepository
	incidents *IncidentRepository
}

func (s *Session) Results() results.Repository       { return s.results }
func (s *Session) Incidents() incidents.Repository   { return s.incidents }
func (s *Session) Commit() error                     { return s.tx.Commit() }
func (s *Session) Rollback() error                   { return s.tx.Rollback() }
