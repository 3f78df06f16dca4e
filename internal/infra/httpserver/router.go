package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/jawadbiag8/PDA/internal/application/ai"
	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/domain/assets"
	domai "github.com/jawadbiag8/PDA/internal/domain/ai"
	"github.com/jawadbiag8/PDA/internal/domain/incidents"
	"github.com/jawadbiag8/PDA/internal/domain/kpis"
	"github.com/jawadbiag8/PDA/internal/domain/metrics"
	"github.com/jawadbiag8/PDA/internal/domain/results"
	"github.com/jawadbiag8/PDA/internal/domain/runs"
	"github.com/jawadbiag8/PDA/internal/middleware"
)

// Rough per-probe durations quoted back to operators triggering a
// manual check.
var estimatedTimes = map[string]string{
	"http": "5-10 seconds",
	"dns":  "5-10 seconds",
	"ssl":  "10-15 seconds",
}

const defaultEstimatedTime = "10-20 seconds"

type Router struct {
	monitorSvc *monitor.Service
	aiSvc      *appai.Service
	assetRepo  assets.Repository
	kpiRepo    kpis.Repository
	resultRepo results.Repository
	metricRepo metrics.Repository
	incRepo    incidents.Repository
	runRepo    runs.Repository
	log        *zap.SugaredLogger
}

type Deps struct {
	Monitor   *monitor.Service
	AI        *appai.Service
	Assets    assets.Repository
	Kpis      kpis.Repository
	Results   results.Repository
	Metrics   metrics.Repository
	Incidents incidents.Repository
	Runs      runs.Repository
	Log       *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		monitorSvc: d.Monitor,
		aiSvc:      d.AI,
		assetRepo:  d.Assets,
		kpiRepo:    d.Kpis,
		resultRepo: d.Results,
		metricRepo: d.Metrics,
		incRepo:    d.Incidents,
		runRepo:    d.Runs,
		log:        d.Log,
	}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/checks", r.wrap(r.handleManualCheck))
		rt.Get("/assets/{id}/results", r.wrap(r.handleAssetResults))
		rt.Get("/assets/{id}/metrics", r.wrap(r.handleAssetMetrics))
		rt.Get("/incidents/open", r.wrap(r.handleOpenIncidents))
		rt.Get("/incidents/{id}", r.wrap(r.handleGetIncident))
		rt.Post("/ai/analyze", r.wrap(r.handleAIAnalyze))
		rt.Get("/ai/analyze", r.wrap(r.handleAIAnalyzeList))
		rt.Get("/runs/latest", r.wrap(r.handleLatestRuns))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/checks
// Body: {"kpiId": <id>, "assetId": <id>}
// kpiId of 0 re-checks every automated KPI for the asset. The check runs
// in the background; the response only acknowledges the trigger.
func (r *Router) handleManualCheck(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		KpiID   int64 `json:"kpiId"`
		AssetID int64 `json:"assetId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateID(body.AssetID); err != nil {
		return fmt.Errorf("assetId: %w", err)
	}

	asset, err := r.assetRepo.Get(req.Context(), assets.AssetID(body.AssetID))
	if err != nil {
		return err
	}
	if err := middleware.ValidateAssetURL(asset.URL); err != nil {
		return fmt.Errorf("asset %d is not probeable: %w", asset.ID, err)
	}

	if body.KpiID == 0 {
		go r.runBackground(fmt.Sprintf("asset %d", asset.ID), func(ctx context.Context) error {
			return r.monitorSvc.CheckAsset(ctx, asset.ID)
		})
		return writeJSON(w, manualCheckResponse(asset, nil, ""))
	}

	kpi, err := r.kpiRepo.Get(req.Context(), kpis.KpiID(body.KpiID))
	if err != nil {
		return err
	}
	if kpi.ProbeType == "" {
		return fmt.Errorf("KPI %q has no probe type configured", kpi.Name)
	}

	estimated := estimatedTimes[kpi.ProbeType]
	if estimated == "" {
		estimated = defaultEstimatedTime
	}

	go r.runBackground(fmt.Sprintf("kpi %d asset %d", kpi.ID, asset.ID), func(ctx context.Context) error {
		_, err := r.monitorSvc.CheckPair(ctx, asset.ID, kpi.ID)
		return err
	})

	return writeJSON(w, manualCheckResponse(asset, kpi, estimated))
}

func (r *Router) runBackground(what string, fn func(context.Context) error) {
	middleware.IncrementChecks()
	// Detached from the request context so the check survives the response.
	if err := fn(context.Background()); err != nil {
		r.log.Errorw("manual check failed", "target", what, "err", err)
		return
	}
	r.log.Infow("manual check finished", "target", what)
}

func manualCheckResponse(asset *assets.Asset, kpi *kpis.Kpi, estimated string) map[string]any {
	data := map[string]any{
		"assetId":   asset.ID,
		"assetName": asset.Name,
		"assetUrl":  asset.URL,
	}
	message := "Check started. Please check the results shortly."
	if kpi != nil {
		data["kpiId"] = kpi.ID
		data["kpiName"] = kpi.Name
		data["estimatedTime"] = estimated
		message = fmt.Sprintf("It will take approximately %s to complete. Please check the results shortly.", estimated)
	}
	return map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	}
}

// GET /v1/assets/{id}/results
func (r *Router) handleAssetResults(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	list, err := r.resultRepo.LatestByAsset(req.Context(), assets.AssetID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/assets/{id}/metrics
func (r *Router) handleAssetMetrics(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	snap, err := r.metricRepo.Get(req.Context(), assets.AssetID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, snap)
}

// GET /v1/incidents/open?limit=20
func (r *Router) handleOpenIncidents(w http.ResponseWriter, req *http.Request) error {
	limit := middleware.ValidateLimit(queryInt(req, "limit"))
	list, err := r.incRepo.ListOpen(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/incidents/{id}
func (r *Router) handleGetIncident(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	inc, err := r.incRepo.Get(req.Context(), incidents.IncidentID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, inc)
}

// POST /v1/ai/analyze
// Body: {"incident_id": <id>}
func (r *Router) handleAIAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.aiSvc == nil {
		return fmt.Errorf("ai analysis is not configured")
	}
	var body struct {
		IncidentID int64 `json:"incident_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return err
	}
	if err := middleware.ValidateID(body.IncidentID); err != nil {
		return fmt.Errorf("incident_id: %w", err)
	}

	a, err := r.aiSvc.AnalyzeAndStore(req.Context(), incidents.IncidentID(body.IncidentID))
	if err != nil {
		return err
	}
	return writeJSON(w, a)
}

// GET /v1/ai/analyze?page=&page_size=
func (r *Router) handleAIAnalyzeList(w http.ResponseWriter, req *http.Request) error {
	if r.aiSvc == nil {
		return fmt.Errorf("ai analysis is not configured")
	}
	list, err := r.aiSvc.ListAnalyses(req.Context(), queryInt(req, "page"), queryInt(req, "page_size"))
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

// GET /v1/runs/latest?limit=20
func (r *Router) handleLatestRuns(w http.ResponseWriter, req *http.Request) error {
	limit := middleware.ValidateLimit(queryInt(req, "limit"))
	list, err := r.runRepo.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, list)
}

func pathID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %w", err)
	}
	if err := middleware.ValidateID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func queryInt(req *http.Request, key string) int {
	n, _ := strconv.Atoi(req.URL.Query().Get(key))
	return n
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}
