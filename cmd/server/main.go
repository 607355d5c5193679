package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/database"
	"github.com/titulhq/titul-gateway/internal/handler"
	"github.com/titulhq/titul-gateway/internal/logger"
	"github.com/titulhq/titul-gateway/internal/router"
	"github.com/titulhq/titul-gateway/internal/service"
	"github.com/titulhq/titul-gateway/internal/upstream"
	"github.com/titulhq/titul-gateway/internal/validator"
	"github.com/titulhq/titul-gateway/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.UpstreamBaseURL).
		Msg("Starting Titul Gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Upstream API Client ───────────────────────────────────────────
	api := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, api)
	draftService := service.NewDraftService(cfg, rdb, api, log)
	attemptService := service.NewAttemptService(cfg, rdb, api, log)
	testService := service.NewTestService(api, log)
	broadcastService := service.NewBroadcastService(cfg, rdb, api, log)
	adminService := service.NewAdminService(api, log)
	publicService := service.NewPublicService(api, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Public:    handler.NewPublicHandler(publicService),
		Draft:     handler.NewDraftHandler(draftService),
		Attempt:   handler.NewAttemptHandler(attemptService),
		Test:      handler.NewTestHandler(testService),
		Broadcast: handler.NewBroadcastHandler(broadcastService),
		Admin:     handler.NewAdminHandler(adminService),
		WS:        handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	historyWorker := worker.NewHistoryWorker(broadcastService, cfg.HistoryPollInterval, log)
	expiryWorker := worker.NewExpiryWorker(rdb, attemptService, log)

	go historyWorker.Start(workerCtx)
	go expiryWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and let in-flight auto-submits finish.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
