package ai

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jawadbiag8/PDA/internal/application"
	"github.com/jawadbiag8/PDA/internal/domain/ai"
	"github.com/jawadbiag8/PDA/internal/domain/analyses"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
)

// Service runs AI analysis over an incident and stores the result for
// auditing and retrieval.
type Service struct {
	Client    ai.Client
	Incidents incidents.Repository
	Analyses  analyses.Repository
	Clock     application.Clock
}

func NewService(client ai.Client, incidentRepo incidents.Repository, analysisRepo analyses.Repository, clock application.Clock) *Service {
	return &Service{Client: client, Incidents: incidentRepo, Analyses: analysisRepo, Clock: clock}
}

// AnalyzeAndStore fetches the incident, runs the analysis and persists it.
func (s *Service) AnalyzeAndStore(ctx context.Context, id incidents.IncidentID) (*analyses.Analysis, error) {
	inc, err := s.Incidents.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err := json.Marshal(inc)
	if err != nil {
		return nil, err
	}
	result, err := s.Client.Analyze(ctx, string(input))
	if err != nil {
		return nil, err
	}

	a := &analyses.Analysis{
		ID:         analyses.AnalysisID(uuid.New().String()),
		IncidentID: id,
		Result:     result,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Analyses.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAnalyses pages through stored analyses, newest first.
func (s *Service) ListAnalyses(ctx context.Context, page, pageSize int) ([]*analyses.Analysis, error) {
	return s.Analyses.Paginate(ctx, page, pageSize)
}

// LatestFor returns the most recent analysis for an incident, or nil.
func (s *Service) LatestFor(ctx context.Context, id incidents.IncidentID) (*analyses.Analysis, error) {
	return s.Analyses.LatestByIncident(ctx, id)
}
