package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestFileQuestionSource_Load(t *testing.T) {
	path := writeTemp(t, `[
		{
			"id": 1,
			"category": "Traffic Laws",
			"question": "What is the speed limit in a residential area unless otherwise posted?",
			"options": ["25 mph", "35 mph", "45 mph"],
			"correct_answer": "25 mph",
			"explanation": "Residential areas default to 25 mph."
		},
		{
			"id": 2,
			"category": "Road Signs & Signals",
			"question": "What does an octagonal sign always mean?",
			"options": ["Yield", "Stop"],
			"correct_answer": "Stop",
			"explanation": "The octagon shape is reserved for stop signs.",
			"image": "signs/stop.png"
		}
	]`)

	questions, err := NewFileQuestionSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Category != model.CategoryTrafficLaws {
		t.Errorf("unexpected category %q", questions[0].Category)
	}
	if questions[1].Image != "signs/stop.png" {
		t.Errorf("image reference lost: %q", questions[1].Image)
	}

	// The loaded list satisfies the pool invariants end to end.
	if _, err := exam.NewPool(questions); err != nil {
		t.Errorf("loaded questions do not form a valid pool: %v", err)
	}
}

func TestFileQuestionSource_LoadFailures(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"malformed json", writeTemp(t, `{"not": "an array"`)},
		{"empty list", writeTemp(t, `[]`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFileQuestionSource(tc.path).Load(context.Background()); !errors.Is(err, exam.ErrPoolLoad) {
				t.Errorf("expected ErrPoolLoad, got %v", err)
			}
		})
	}
}
