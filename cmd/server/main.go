package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"skyline/opsboard/internal/api"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/db"
	"skyline/opsboard/internal/jobs"
	"skyline/opsboard/internal/logging"
	"skyline/opsboard/internal/metrics"
	"skyline/opsboard/internal/routes"
	"skyline/opsboard/internal/workers"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := cfg.Require("JWT_SECRET", cfg.JWTSecret); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Opsboard starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	orm, err := db.InitORM(&cfg)
	if err != nil {
		logging.Fatal("Failed to connect to database (GORM)", "error", err.Error())
	}
	if err := db.Migrate(orm); err != nil {
		logging.Fatal("Failed to migrate schema", "error", err.Error())
	}

	sqlDB, err := db.InitSQLX(&cfg, orm)
	if err != nil {
		logging.Fatal("Failed to connect to database (sqlx)", "error", err.Error())
	}
	logging.Info("Connected to database (sqlx)")

	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)
	deps := api.InitDependencies(&cfg, orm, sqlDB, metricsReg)
	defer deps.Services.Cache.Close()

	seedRules(deps)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	workers.InitWorkers(bgCtx, deps.Services.Rules, cfg.RuleCacheTTL)
	jobs.InitializeJobs(bgCtx, deps.Services.Rules, cfg.BackfillInterval)

	upSince := time.Now()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           routes.RegisterRoutes(deps, prometheus.DefaultGatherer, upSince),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.ServerPort, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server stopped", "error", err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err.Error())
	}
	logging.Info("Server stopped")
}

// seedRules loads the bundled mapping rules into an empty rule table.
func seedRules(deps *api.Dependencies) {
	ctx := context.Background()
	existing, err := deps.Services.Rules.List(ctx)
	if err != nil {
		logging.Warn("Could not read mapping rules", "error", err.Error())
		return
	}
	if len(existing) > 0 {
		return
	}
	n, err := deps.Services.Rules.ResetToDefaults(ctx)
	if err != nil {
		logging.Warn("Could not seed default mapping rules", "error", err.Error())
		return
	}
	logging.Info("Seeded default mapping rules", "rules", n)
}
