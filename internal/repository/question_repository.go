package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

// QuestionRepository handles question data access against Postgres.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Load retrieves the entire question catalog, ordered by ID. An empty
// table fails with exam.ErrPoolLoad like a missing file would.
func (r *QuestionRepository) Load(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, question, options, correct_answer, explanation, image
		 FROM questions
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", exam.ErrPoolLoad, err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Category, &q.Question, &q.Options, &q.CorrectAnswer, &q.Explanation, &q.Image); err != nil {
			return nil, fmt.Errorf("%w: scan question: %v", exam.ErrPoolLoad, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", exam.ErrPoolLoad, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: questions table is empty", exam.ErrPoolLoad)
	}
	return questions, nil
}

// ReplaceAll wipes the questions table and bulk-loads the given catalog in
// one transaction. Used by the seeder.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"questions"},
		[]string{"id", "category", "question", "options", "correct_answer", "explanation", "image"},
		pgx.CopyFromSlice(len(questions), func(i int) ([]any, error) {
			q := questions[i]
			return []any{q.ID, string(q.Category), q.Question, q.Options, q.CorrectAnswer, q.Explanation, q.Image}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}

	return tx.Commit(ctx)
}
