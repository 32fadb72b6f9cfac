package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/model"
	"github.com/roadready/permitprep-backend/internal/validator"
)

// textGenerator abstracts the LLM call so the batching pipeline can be
// tested without a network.
type textGenerator interface {
	GenerateJSON(ctx context.Context, prompt, document string) ([]byte, error)
}

// Service runs the generation pipeline: batch the LLM calls, validate the
// shape of what comes back, drop duplicates, and assign identifiers. A run
// either yields a complete pool or nothing — no partial pool is ever
// handed out.
type Service struct {
	client      textGenerator
	log         zerolog.Logger
	targetCount int
	batchSize   int
}

// NewService creates a generation Service targeting targetCount questions
// in batches of batchSize.
func NewService(client textGenerator, log zerolog.Logger, targetCount, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = 50
	}
	if targetCount < batchSize {
		targetCount = batchSize
	}
	return &Service{
		client:      client,
		log:         log.With().Str("component", "genai_service").Logger(),
		targetCount: targetCount,
		batchSize:   batchSize,
	}
}

type quizBatch struct {
	Questions []model.GeneratedQuestion `json:"questions"`
}

// GeneratePool synthesizes a question pool from document text. The
// progress callback, if set, is invoked after each completed batch.
func (s *Service) GeneratePool(ctx context.Context, text string, progress func(done, total int)) ([]model.Question, error) {
	batches := s.targetCount / s.batchSize

	var raw []model.GeneratedQuestion
	for i := 0; i < batches; i++ {
		prompt := fmt.Sprintf(
			"You are an expert exam creator. Based on the following text, create %d UNIQUE multiple-choice questions. "+
				"This is batch %d of %d. Ensure these questions cover different parts of the text if possible. "+
				"The questions should be challenging but fair, directly derivable from the text provided.",
			s.batchSize, i+1, batches,
		)

		data, err := s.client.GenerateJSON(ctx, prompt, text)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d/%d: %v", ErrGeneration, i+1, batches, err)
		}

		var batch quizBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("%w: batch %d/%d: malformed payload: %v", ErrGeneration, i+1, batches, err)
		}
		if len(batch.Questions) == 0 {
			return nil, fmt.Errorf("%w: batch %d/%d: empty batch", ErrGeneration, i+1, batches)
		}

		raw = append(raw, batch.Questions...)
		s.log.Debug().Int("batch", i+1).Int("of", batches).Int("received", len(batch.Questions)).Msg("Batch generated")

		if progress != nil {
			progress(i+1, batches)
		}
	}

	return s.admit(raw)
}

// admit filters the raw batch output down to the records admitted to the
// pool: structurally valid, correct answer among the options, and unique
// by normalized question text. Admitted questions get sequential 1-based
// IDs.
func (s *Service) admit(raw []model.GeneratedQuestion) ([]model.Question, error) {
	seen := make(map[string]struct{}, len(raw))
	var out []model.Question

	for _, g := range raw {
		if err := validator.Struct(g); err != nil {
			s.log.Debug().Err(err).Str("question", g.Question).Msg("Dropping malformed record")
			continue
		}
		if !slices.Contains(g.Options, g.CorrectAnswer) {
			s.log.Debug().Str("question", g.Question).Msg("Dropping record with detached correct answer")
			continue
		}

		key := strings.ToLower(strings.TrimSpace(g.Question))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, model.Question{
			ID:            len(out) + 1,
			Category:      model.Category(g.Category),
			Question:      g.Question,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Explanation:   g.Explanation,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable questions after validation", ErrGeneration)
	}

	s.log.Info().Int("admitted", len(out)).Int("raw", len(raw)).Msg("Pool generated")
	return out, nil
}
