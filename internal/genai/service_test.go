package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
)

// fakeGenerator replays canned batch payloads, or fails at a given batch.
type fakeGenerator struct {
	batches []string
	failAt  int // 1-based batch index to fail at, 0 = never
	calls   int
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt, document string) ([]byte, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("boom")
	}
	if f.calls > len(f.batches) {
		return nil, fmt.Errorf("unexpected call %d", f.calls)
	}
	return []byte(f.batches[f.calls-1]), nil
}

func batchJSON(t *testing.T, questions ...model.GeneratedQuestion) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"questions": questions})
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	return string(raw)
}

func genQuestion(text string) model.GeneratedQuestion {
	return model.GeneratedQuestion{
		Category:      "Traffic Laws",
		Question:      text,
		Options:       []string{"Yes", "No"},
		CorrectAnswer: "Yes",
		Explanation:   "Because the handbook says so.",
	}
}

func TestGeneratePool_AdmitsAcrossBatches(t *testing.T) {
	fake := &fakeGenerator{batches: []string{
		batchJSON(t, genQuestion("Q one?"), genQuestion("Q two?")),
		batchJSON(t, genQuestion("Q three?")),
	}}
	svc := NewService(fake, zerolog.Nop(), 4, 2)

	var progress []int
	questions, err := svc.GeneratePool(context.Background(), "doc", func(done, total int) {
		progress = append(progress, done)
		if total != 2 {
			t.Errorf("expected 2 total batches, got %d", total)
		}
	})
	if err != nil {
		t.Fatalf("GeneratePool: %v", err)
	}

	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.ID != i+1 {
			t.Errorf("expected sequential 1-based IDs, got %d at %d", q.ID, i)
		}
	}
	if len(progress) != 2 || progress[0] != 1 || progress[1] != 2 {
		t.Errorf("unexpected progress reports %v", progress)
	}

	// The generated pool satisfies the exam core's invariants directly.
	if _, err := exam.NewPool(questions); err != nil {
		t.Errorf("generated pool invalid: %v", err)
	}
}

func TestGeneratePool_DeduplicatesByNormalizedText(t *testing.T) {
	fake := &fakeGenerator{batches: []string{batchJSON(t,
		genQuestion("What is a yield sign?"),
		genQuestion("  what is a YIELD sign?  "),
		genQuestion("What is a stop sign?"),
	)}}
	svc := NewService(fake, zerolog.Nop(), 1, 1)

	questions, err := svc.GeneratePool(context.Background(), "doc", nil)
	if err != nil {
		t.Fatalf("GeneratePool: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("expected duplicate question dropped, got %d questions", len(questions))
	}
}

func TestGeneratePool_DropsMalformedRecords(t *testing.T) {
	missingExplanation := genQuestion("No why?")
	missingExplanation.Explanation = ""

	detachedAnswer := genQuestion("Detached?")
	detachedAnswer.CorrectAnswer = "Maybe"

	oneOption := genQuestion("One option?")
	oneOption.Options = []string{"Only"}

	fake := &fakeGenerator{batches: []string{batchJSON(t,
		missingExplanation, detachedAnswer, oneOption, genQuestion("Fine?"),
	)}}
	svc := NewService(fake, zerolog.Nop(), 1, 1)

	questions, err := svc.GeneratePool(context.Background(), "doc", nil)
	if err != nil {
		t.Fatalf("GeneratePool: %v", err)
	}
	if len(questions) != 1 || questions[0].Question != "Fine?" {
		t.Errorf("expected only the well-formed record, got %+v", questions)
	}
}

func TestGeneratePool_NothingUsableFails(t *testing.T) {
	bad := genQuestion("Bad?")
	bad.Options = nil

	fake := &fakeGenerator{batches: []string{batchJSON(t, bad)}}
	svc := NewService(fake, zerolog.Nop(), 1, 1)

	if _, err := svc.GeneratePool(context.Background(), "doc", nil); !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestGeneratePool_BatchFailureAbortsWholeRun(t *testing.T) {
	fake := &fakeGenerator{
		batches: []string{batchJSON(t, genQuestion("Q?")), ""},
		failAt:  2,
	}
	svc := NewService(fake, zerolog.Nop(), 2, 1)

	if _, err := svc.GeneratePool(context.Background(), "doc", nil); !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestGeneratePool_EmptyBatchFails(t *testing.T) {
	fake := &fakeGenerator{batches: []string{`{"questions": []}`}}
	svc := NewService(fake, zerolog.Nop(), 1, 1)

	if _, err := svc.GeneratePool(context.Background(), "doc", nil); !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}
