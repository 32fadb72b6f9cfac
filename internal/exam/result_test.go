package exam

import (
	"errors"
	"testing"
)

func TestCompileResult_RequiresTermination(t *testing.T) {
	pool, sess := uniformPool(t, 10)
	if _, err := CompileResult(sess, pool); !errors.Is(err, ErrNotTerminated) {
		t.Errorf("expected ErrNotTerminated, got %v", err)
	}
}

func TestCompileResult_ExpandsWrongAnswers(t *testing.T) {
	pool, sess := uniformPool(t, 10)

	// 2 wrong, 8 correct: score 8 == Passmark(10).
	answers := []string{"Option B", "Option C", "Option A", "Option A", "Option A",
		"Option A", "Option A", "Option A", "Option A", "Option A"}
	for i, a := range answers {
		if _, err := sess.Submit(pool, a); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	res, err := CompileResult(sess, pool)
	if err != nil {
		t.Fatalf("CompileResult: %v", err)
	}

	if !res.Passed {
		t.Error("expected pass at 8/10")
	}
	if res.Score != 8 || res.Total != 10 {
		t.Errorf("expected 8/10, got %d/%d", res.Score, res.Total)
	}
	if len(res.Review) != 2 {
		t.Fatalf("expected 2 review entries, got %d", len(res.Review))
	}

	for i, entry := range res.Review {
		if entry.Submitted == entry.Correct {
			t.Errorf("entry %d: only wrong answers are reviewable", i)
		}
		if entry.Explanation == "" {
			t.Errorf("entry %d: missing explanation", i)
		}
		if entry.Question == "" {
			t.Errorf("entry %d: missing question text", i)
		}
	}
	if res.Review[0].Submitted != "Option B" || res.Review[1].Submitted != "Option C" {
		t.Error("review entries not in answer order")
	}
}

func TestCompileResult_SkipsUnresolvableQuestions(t *testing.T) {
	pool, sess := uniformPool(t, 10)

	for i := 0; i < 10; i++ {
		if _, err := sess.Submit(pool, "Option B"); err != nil && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("submit %d: %v", i, err)
		}
		if sess.Terminated {
			break
		}
	}

	// Simulate a pool mismatch for one logged answer.
	sess.Wrong[0].QuestionID = 9999

	res, err := CompileResult(sess, pool)
	if err != nil {
		t.Fatalf("CompileResult: %v", err)
	}
	if len(res.Review) != len(sess.Wrong)-1 {
		t.Errorf("expected %d review entries after skipping one, got %d", len(sess.Wrong)-1, len(res.Review))
	}
	if res.Passed {
		t.Error("all-wrong session cannot pass")
	}
}
