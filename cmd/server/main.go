package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/skillcheck-backend/internal/cache"
	"github.com/stemsi/skillcheck-backend/internal/config"
	"github.com/stemsi/skillcheck-backend/internal/database"
	"github.com/stemsi/skillcheck-backend/internal/handler"
	"github.com/stemsi/skillcheck-backend/internal/logger"
	"github.com/stemsi/skillcheck-backend/internal/repository"
	"github.com/stemsi/skillcheck-backend/internal/router"
	"github.com/stemsi/skillcheck-backend/internal/scoring"
	"github.com/stemsi/skillcheck-backend/internal/service"
	"github.com/stemsi/skillcheck-backend/internal/validator"
	"github.com/stemsi/skillcheck-backend/internal/worker"
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
		Msg("Starting SkillCheck Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	platformRepo := repository.NewPlatformRepository(pool)
	bankRepo := repository.NewQuestionBankRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	assessmentRepo := repository.NewAssessmentRepository(pool)
	examineeRepo := repository.NewExamineeRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	jobRepo := repository.NewAutoSubmitJobRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	blueprintCache := cache.NewBlueprintCache(rdb, cfg.BlueprintTTL)
	blueprintService := service.NewBlueprintService(bankRepo, blueprintCache)
	monitorService := service.NewMonitorService(rdb)
	authService := service.NewAuthService(cfg, userRepo)
	platformService := service.NewPlatformService(platformRepo)
	questionService := service.NewQuestionService(bankRepo, questionRepo, platformRepo, blueprintService)
	assessmentService := service.NewAssessmentService(assessmentRepo, bankRepo)
	resultService := service.NewResultService(assessmentRepo, sessionRepo)

	autoSubmit := worker.NewAutoSubmitWorker(jobRepo, sessionRepo, monitorService, cfg.SchedulerWorkers, cfg.SweepInterval, log)

	sessionService := service.NewSessionService(
		assessmentRepo, examineeRepo, sessionRepo, questionRepo,
		blueprintService, scoring.NewEngine(nil), autoSubmit, monitorService,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Client:     handler.NewClientHandler(sessionService),
		Platform:   handler.NewPlatformHandler(platformService),
		Question:   handler.NewQuestionHandler(questionService),
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Result:     handler.NewResultHandler(resultService),
		Monitor:    handler.NewMonitorHandler(monitorService, resultService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	go autoSubmit.Start(workerCtx)

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

	// 2. Stop the scheduler and wait for in-flight forced finishes.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
