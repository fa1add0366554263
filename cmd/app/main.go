// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"meal-subscriptions/internal/config"
	"meal-subscriptions/internal/infra/api"
	"meal-subscriptions/internal/infra/api/apiv1"
	pg "meal-subscriptions/internal/infra/db/postgres"
	"meal-subscriptions/internal/infra/logging"
	"meal-subscriptions/internal/infra/metrics"
	red "meal-subscriptions/internal/infra/redis"
	"meal-subscriptions/internal/infra/sched"
	"meal-subscriptions/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := pg.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPostgresPlanRepo(pool), redisClient, cfg.Redis.TTL, logger)
	mealRepo := pg.NewPostgresMealRepo(pool)
	subRepo := pg.NewPostgresSubscriptionRepo(pool)
	itemRepo := pg.NewPostgresDeliveryItemRepo(pool)

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(planRepo, txManager, logger)
	subUC := usecase.NewSubscriptionUseCase(planUC, mealRepo, subRepo, itemRepo, txManager, logger)
	statsUC := usecase.NewStatsUseCase(subRepo, logger)

	// ---- Stats worker ----
	worker := sched.NewStatsWorker(cfg.Scheduler.StatsInterval, statsUC, sched.FromPool(pool), logger)
	go func() { _ = worker.Run(ctx) }()

	// ---- HTTP server ----
	handler := api.NewRouter(
		apiv1.NewServer(subUC, planUC, statsUC, logger),
		logger,
		cfg.HTTP,
		api.WriteGuards{Limiter: red.NewRateLimiter(redisClient), Locker: red.NewLocker(redisClient)},
		map[string]api.Pinger{"postgres": pool, "redis": redisClient},
	)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.HTTP.Port), Handler: handler}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
