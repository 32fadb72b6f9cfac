package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
	"github.com/roadready/permitprep-backend/internal/store"
)

func testService(t *testing.T) (*ExamService, store.PoolStore) {
	t.Helper()

	var questions []model.Question
	id := 0
	add := func(cat model.Category, n int) {
		for i := 0; i < n; i++ {
			id++
			questions = append(questions, model.Question{
				ID:            id,
				Category:      cat,
				Question:      fmt.Sprintf("Question %d?", id),
				Options:       []string{"Right", "Wrong", "Also wrong"},
				CorrectAnswer: "Right",
				Explanation:   "Handbook chapter 3.",
			})
		}
	}
	add(model.CategoryRoadSigns, 10)
	add(model.CategoryTrafficLaws, 14)
	add(model.CategorySafeDriving, 14)

	pool, err := exam.NewPool(questions)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	pools := store.NewMemoryPoolStore(time.Minute)
	svc := NewExamService(
		pool,
		exam.DefaultBlueprint(),
		store.NewMemorySessionStore(time.Minute),
		pools,
		zerolog.Nop(),
	)
	return svc, pools
}

func TestStandardExam_FullPassRun(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	sessionID, total, err := svc.StartStandard(ctx)
	if err != nil {
		t.Fatalf("StartStandard: %v", err)
	}
	if total != 30 {
		t.Fatalf("expected 30-question exam, got %d", total)
	}

	for i := 0; i < total; i++ {
		view, err := svc.CurrentQuestion(ctx, sessionID)
		if err != nil {
			t.Fatalf("CurrentQuestion %d: %v", i, err)
		}
		if view.Number != i+1 || view.Total != total {
			t.Fatalf("question %d: got number %d/%d", i, view.Number, view.Total)
		}

		outcome, err := svc.SubmitAnswer(ctx, sessionID, "Right")
		if err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i, err)
		}
		if i < total-1 && outcome.Status != exam.StatusInProgress {
			t.Fatalf("submit %d: expected IN_PROGRESS, got %s", i, outcome.Status)
		}
	}

	if _, err := svc.CurrentQuestion(ctx, sessionID); !errors.Is(err, ErrExamFinished) {
		t.Errorf("expected ErrExamFinished after completion, got %v", err)
	}

	res, err := svc.Result(ctx, sessionID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !res.Passed || res.Score != total {
		t.Errorf("expected perfect pass, got %d/%d passed=%t", res.Score, res.Total, res.Passed)
	}
	if len(res.Review) != 0 {
		t.Errorf("perfect run must have empty review, got %d entries", len(res.Review))
	}
}

func TestStandardExam_EarlyFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	sessionID, _, err := svc.StartStandard(ctx)
	if err != nil {
		t.Fatalf("StartStandard: %v", err)
	}

	var outcome exam.Outcome
	for i := 0; i < 7; i++ {
		outcome, err = svc.SubmitAnswer(ctx, sessionID, "Wrong")
		if err != nil {
			t.Fatalf("SubmitAnswer %d: %v", i, err)
		}
	}
	if outcome.Status != exam.StatusFailed {
		t.Fatalf("expected FAILED after 7 wrong answers, got %s", outcome.Status)
	}

	if _, err := svc.CurrentQuestion(ctx, sessionID); !errors.Is(err, ErrExamFinished) {
		t.Errorf("expected ErrExamFinished, got %v", err)
	}

	res, err := svc.Result(ctx, sessionID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Passed {
		t.Error("early-terminated session cannot pass")
	}
	if len(res.Review) != 7 {
		t.Errorf("expected 7 review entries, got %d", len(res.Review))
	}
	for _, entry := range res.Review {
		if entry.Submitted != "Wrong" || entry.Correct != "Right" {
			t.Errorf("unexpected review entry %+v", entry)
		}
	}
}

func TestResult_BeforeTermination(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	sessionID, _, _ := svc.StartStandard(ctx)
	if _, err := svc.Result(ctx, sessionID); !errors.Is(err, exam.ErrNotTerminated) {
		t.Errorf("expected ErrNotTerminated, got %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	if _, err := svc.CurrentQuestion(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, "nope", "Right"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestCustomExam_RunsGeneratedPool(t *testing.T) {
	ctx := context.Background()
	svc, pools := testService(t)

	generated := []model.Question{
		{ID: 1, Category: "Chapter 1", Question: "Gen one?", Options: []string{"A", "B"}, CorrectAnswer: "A", Explanation: "x"},
		{ID: 2, Category: "Chapter 2", Question: "Gen two?", Options: []string{"A", "B"}, CorrectAnswer: "B", Explanation: "y"},
	}
	if err := pools.Put(ctx, "pool-1", generated); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	sessionID, total, err := svc.StartCustom(ctx, "pool-1")
	if err != nil {
		t.Fatalf("StartCustom: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 questions, got %d", total)
	}

	// Generated exams keep their generated order.
	view, err := svc.CurrentQuestion(ctx, sessionID)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if view.Question != "Gen one?" {
		t.Errorf("expected first generated question, got %q", view.Question)
	}

	if _, err := svc.SubmitAnswer(ctx, sessionID, "A"); err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	outcome, err := svc.SubmitAnswer(ctx, sessionID, "B")
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}
	if outcome.Status != exam.StatusPassed {
		t.Errorf("expected PASSED on 2/2, got %s", outcome.Status)
	}
}

func TestCustomExam_UnknownPool(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	if _, _, err := svc.StartCustom(ctx, "expired"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected store.ErrNotFound, got %v", err)
	}
}

func TestQuestionView_NeverLeaksAnswer(t *testing.T) {
	ctx := context.Background()
	svc, _ := testService(t)

	sessionID, _, _ := svc.StartStandard(ctx)
	view, err := svc.CurrentQuestion(ctx, sessionID)
	if err != nil {
		t.Fatalf("CurrentQuestion: %v", err)
	}
	if len(view.Options) != 3 || view.Question == "" {
		t.Errorf("view missing question content: %+v", view)
	}

	// Guard against someone widening the struct later: the serialized view
	// must not carry the answer key or the explanation.
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	for _, leak := range []string{"correct", "explanation", "handbook chapter"} {
		if strings.Contains(strings.ToLower(string(raw)), leak) {
			t.Errorf("question view leaks %q: %s", leak, raw)
		}
	}
}
