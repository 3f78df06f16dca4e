package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jawadbiag8/PDA/internal/domain/incidents"
)

// LookupRepository reads the CommonLookup and MetricWeights reference
// tables. It backs both the lookup source and the metric weight source.
type LookupRepository struct {
	db DBTX
}

func NewLookupRepository(db DBTX) *LookupRepository {
	return &LookupRepository{db: db}
}

// IncidentCreationFrequency returns the configured consecutive-result
// count for incident transitions, or the built-in default when the
// lookup row is absent.
func (r *LookupRepository) IncidentCreationFrequency(ctx context.Context) (int, error) {
	const q = `
SELECT Name FROM CommonLookup
WHERE Type = 'IncidentCreationFrequency' AND DeletedAt IS NULL
LIMIT 1;
`
	var raw string
	err := r.db.QueryRowContext(ctx, q).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return incidents.DefaultCreationFrequency, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return incidents.DefaultCreationFrequency, nil
	}
	return n, nil
}

func (r *LookupRepository) SeverityNames(ctx context.Context) (map[int64]string, error) {
	const q = `
SELECT Id, Name FROM CommonLookup
WHERE Type = 'SeverityLevel' AND DeletedAt IS NULL;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

// Weights returns the named weight set for one metric category.
func (r *LookupRepository) Weights(ctx context.Context, category string) (map[string]float64, error) {
	const q = `
SELECT Name, Weight FROM MetricWeights
WHERE Category = ? AND DeletedAt IS NULL;
`
	rows, err := r.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var w float64
		if err := rows.Scan(&name, &w); err != nil {
			return nil, err
		}
		out[name] = w
	}
	return out, rows.Err()
}
