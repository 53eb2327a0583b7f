package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/studygroups-backend/internal/cache"
	"github.com/stemsi/studygroups-backend/internal/config"
	"github.com/stemsi/studygroups-backend/internal/database"
	"github.com/stemsi/studygroups-backend/internal/handler"
	"github.com/stemsi/studygroups-backend/internal/logger"
	"github.com/stemsi/studygroups-backend/internal/metrics"
	"github.com/stemsi/studygroups-backend/internal/repository"
	"github.com/stemsi/studygroups-backend/internal/router"
	"github.com/stemsi/studygroups-backend/internal/service"
	"github.com/stemsi/studygroups-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("cache", cfg.CacheEnabled()).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Starting Study Groups Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	if err := validator.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize validator")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	groupRepo := repository.NewStudyGroupRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	var (
		opts []service.Option
		m    *metrics.Metrics
	)
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, service.WithRecorder(m))
	}
	checks := []handler.HealthCheck{{Name: "database", Critical: true, Ping: pool.Ping}}
	if rdb != nil {
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewStudyGroupCache(rdb, cfg.CacheTTL)))
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: database.RedisPing(rdb)})
	}

	studyGroupService := service.NewStudyGroupService(groupRepo, userRepo, log, opts...)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		StudyGroup: handler.NewStudyGroupHandler(studyGroupService, log),
		Health:     handler.NewHealthHandler(log, checks...),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, m, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().
		Str("signal", sig.String()).
		Dur("timeout", cfg.ShutdownTimeout).
		Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
