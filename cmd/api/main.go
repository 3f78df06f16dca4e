package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jawadbiag8/PDA/internal/application"
	appai "github.com/jawadbiag8/PDA/internal/application/ai"
	"github.com/jawadbiag8/PDA/internal/application/aggregate"
	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/config"
	"github.com/jawadbiag8/PDA/internal/infra/ai/openai"
	"github.com/jawadbiag8/PDA/internal/infra/db/mirror"
	mysqlp "github.com/jawadbiag8/PDA/internal/infra/db/mysql"
	"github.com/jawadbiag8/PDA/internal/infra/db/postgres"
	"github.com/jawadbiag8/PDA/internal/infra/httpserver"
	"github.com/jawadbiag8/PDA/internal/infra/probes"
	minioStore "github.com/jawadbiag8/PDA/internal/infra/storage"
	"github.com/jawadbiag8/PDA/internal/logging"
	"github.com/jawadbiag8/PDA/internal/middleware"
)

func main() {
	log := logging.InitLogger()
	defer log.Sync()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql connect error: %v", err)
	}
	defer db.Close()

	assetRepo := mysqlp.NewAssetRepository(db)
	kpiRepo := mysqlp.NewKpiRepository(db)
	resultRepo := mysqlp.NewResultRepository(db)
	incidentRepo := mysqlp.NewIncidentRepository(db)
	lookupRepo := mysqlp.NewLookupRepository(db)
	metricsRepo := mysqlp.NewMetricsRepository(db)
	runRepo := mysqlp.NewRunRepository(db)
	analysisRepo := mysqlp.NewAnalysisRepository(db)
	store := mysqlp.NewStore(db)

	// Writes optionally fan out to a postgres reporting mirror.
	var sessions monitor.SessionFactory = store
	if cfg.Postgres.DSN != "" {
		pgdb, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer pgdb.Close()
		sessions = &mirror.Factory{
			Primary:   store,
			Results:   postgres.NewResultRepository(pgdb),
			Incidents: postgres.NewIncidentRepository(pgdb),
			Log:       log,
		}
		log.Info("postgres reporting mirror enabled")
	}

	aggSvc := &aggregate.Service{
		Kpis:      kpiRepo,
		Results:   resultRepo,
		Incidents: incidentRepo,
		Lookups:   lookupRepo,
		Weights:   lookupRepo,
		Metrics:   metricsRepo,
		Clock:     application.SystemClock{},
		Log:       log,
	}

	monitorSvc := &monitor.Service{
		Assets:       assetRepo,
		Kpis:         kpiRepo,
		Lookups:      lookupRepo,
		Probes:       probes.NewRegistry(cfg.ProbeTimeout()),
		Sessions:     sessions,
		Aggregator:   aggSvc,
		Runs:         runRepo,
		Clock:        application.SystemClock{},
		Log:          log,
		ProbeTimeout: cfg.ProbeTimeout(),
	}

	// Report archival is optional; the monitor runs without it.
	if cfg.Minio.Endpoint != "" {
		artifacts, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		monitorSvc.Artifacts = artifacts
	}

	var aiSvc *appai.Service
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		aiSvc = appai.NewService(client, incidentRepo, analysisRepo, application.SystemClock{})
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware(log))
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Server.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(100, 10))
	mux.Get("/healthz", middleware.HealthHandler(map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}))
	mux.Mount("/", httpserver.NewRouter(httpserver.Deps{
		Monitor:   monitorSvc,
		AI:        aiSvc,
		Assets:    assetRepo,
		Kpis:      kpiRepo,
		Results:   resultRepo,
		Metrics:   metricsRepo,
		Incidents: incidentRepo,
		Runs:      runRepo,
		Log:       log,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Errorf("shutdown error: %v", err)
	}
}
