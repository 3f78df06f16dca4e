package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jawadbiag8/PDA/internal/application"
	"github.com/jawadbiag8/PDA/internal/application/aggregate"
	"github.com/jawadbiag8/PDA/internal/application/monitor"
	"github.com/jawadbiag8/PDA/internal/config"
	"github.com/jawadbiag8/PDA/internal/infra/db/mirror"
	mysqlp "github.com/jawadbiag8/PDA/internal/infra/db/mysql"
	"github.com/jawadbiag8/PDA/internal/infra/db/postgres"
	"github.com/jawadbiag8/PDA/internal/infra/probes"
	"github.com/jawadbiag8/PDA/internal/infra/scheduler"
	minioStore "github.com/jawadbiag8/PDA/internal/infra/storage"
	"github.com/jawadbiag8/PDA/internal/logging"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	store := mysqlp.NewStore(db)

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

	hour, minute := cfg.DailyRunAt()
	sched := scheduler.New(monitorSvc, log, hour, minute)

	// The daily batch time follows config edits without a restart.
	stopWatch, err := config.Watch(path, func(fresh *config.Config) {
		h, m := fresh.DailyRunAt()
		sched.SetDailyTime(h, m)
		log.Infow("config reloaded", "dailyAt", fresh.Scheduler.DailyAt)
	})
	if err != nil {
		log.Warnf("config watch disabled: %v", err)
	} else {
		defer stopWatch()
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Info("shutting down scheduler...")
		cancel()
	}()

	log.Infow("scheduler started", "dailyAt", cfg.Scheduler.DailyAt)
	sched.Run(ctx)
}
