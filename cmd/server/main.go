package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/database"
	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/genai"
	"github.com/roadready/permitprep-backend/internal/handler"
	"github.com/roadready/permitprep-backend/internal/logger"
	"github.com/roadready/permitprep-backend/internal/model"
	"github.com/roadready/permitprep-backend/internal/repository"
	"github.com/roadready/permitprep-backend/internal/router"
	"github.com/roadready/permitprep-backend/internal/service"
	"github.com/roadready/permitprep-backend/internal/store"
	"github.com/roadready/permitprep-backend/internal/validator"
)

// questionSource abstracts where the standard pool comes from: a JSON file
// or the questions table.
type questionSource interface {
	Load(ctx context.Context) ([]model.Question, error)
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("pool_source", cfg.PoolSource).
		Msg("Starting PermitPrep Backend")

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

	// ─── Load the Standard Question Pool ───────────────────────────────
	var source questionSource
	switch cfg.PoolSource {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		source = repository.NewQuestionRepository(pool)
	default:
		source = repository.NewFileQuestionSource(cfg.QuestionsFile)
	}

	questions, err := source.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question pool")
	}
	standardPool, err := exam.NewPool(questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Question pool failed validation")
	}
	log.Info().Int("questions", standardPool.Size()).Msg("Question pool loaded")

	// ─── Initialize Stores ─────────────────────────────────────────────
	sessions := store.NewRedisSessionStore(rdb, cfg.SessionTTL)
	pools := store.NewRedisPoolStore(rdb, cfg.PoolTTL)

	// ─── Initialize Services ───────────────────────────────────────────
	examService := service.NewExamService(standardPool, exam.DefaultBlueprint(), sessions, pools, log)

	// ─── Start the Generation Worker ───────────────────────────────────
	// The generation path needs a model API key; without one the worker
	// never starts and the endpoints answer 503.
	generationEnabled := cfg.GeminiAPIKey != ""
	workerCtx, workerCancel := context.WithCancel(context.Background())
	if generationEnabled {
		client := genai.NewClient(cfg, log)
		generator := genai.NewService(client, log, cfg.GenTargetCount, cfg.GenBatchSize)
		go genai.NewWorker(rdb, generator, pools, log, cfg.PoolTTL).Start(workerCtx)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set; question generation disabled")
	}

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:       handler.NewExamHandler(examService, cfg, log),
		Generation: handler.NewGenerationHandler(rdb, cfg, generationEnabled, log),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

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
	<-quit

	log.Info().Msg("Shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}

	log.Info().Msg("Server exited")
}
