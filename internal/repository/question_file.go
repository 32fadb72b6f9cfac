package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

// FileQuestionSource loads the standard question pool from a flat JSON
// file: a single array of question records.
type FileQuestionSource struct {
	path string
}

// NewFileQuestionSource creates a file-backed question source.
func NewFileQuestionSource(path string) *FileQuestionSource {
	return &FileQuestionSource{path: path}
}

// Load reads and parses the question file. Missing or malformed files fail
// with exam.ErrPoolLoad: without a pool no exam can be composed.
func (s *FileQuestionSource) Load(_ context.Context) ([]model.Question, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", exam.ErrPoolLoad, s.path, err)
	}

	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", exam.ErrPoolLoad, s.path, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: %s contains no questions", exam.ErrPoolLoad, s.path)
	}
	return questions, nil
}
