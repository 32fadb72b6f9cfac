package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/roadready/permitprep-backend/internal/config"
	"github.com/roadready/permitprep-backend/internal/database"
	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/logger"
	"github.com/roadready/permitprep-backend/internal/repository"
)

// Loads the question JSON file, validates it as an exam pool, and replaces
// the questions table with its contents.
func main() {
	var file string
	flag.StringVar(&file, "file", "question_pool/questions.json", "Path to the question JSON file")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questions, err := repository.NewFileQuestionSource(file).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to load questions")
	}

	// Refuse to seed a pool the server would refuse to serve.
	if _, err := exam.NewPool(questions); err != nil {
		log.Fatal().Err(err).Msg("Question file failed pool validation")
	}

	if err := repository.NewQuestionRepository(pool).ReplaceAll(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed questions")
	}

	fmt.Printf("Seeded %d questions from %s\n", len(questions), file)
}
