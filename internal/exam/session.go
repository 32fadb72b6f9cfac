package exam

import (
	"fmt"

	"github.com/roadready/permitprep-backend/internal/model"
)

// Status is the observable state of a session after a submission.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusPassed     Status = "PASSED"
	StatusFailed     Status = "FAILED"
)

// Outcome is returned by Submit and snapshots the session after the
// transition.
type Outcome struct {
	Status   Status `json:"status"`
	Position int    `json:"position"`
	Score    int    `json:"score"`
	Total    int    `json:"total"`
}

// WrongAnswer records one incorrect submission, in answer order.
type WrongAnswer struct {
	QuestionID int    `json:"question_id"`
	Submitted  string `json:"submitted"`
}

// Session is the mutable progress state of one attempt at an exam. It is
// JSON-serializable so it can live in an external session store between
// requests. All mutation goes through Submit.
type Session struct {
	Exam       []int          `json:"exam"`
	Position   int            `json:"position"`
	Score      int            `json:"score"`
	Answers    map[int]string `json:"answers"`
	Wrong      []WrongAnswer  `json:"wrong,omitempty"`
	Terminated bool           `json:"terminated"`
}

// StartSession begins a fresh attempt at the given exam sequence.
func StartSession(examIDs []int) *Session {
	return &Session{
		Exam:    examIDs,
		Answers: make(map[int]string),
	}
}

// Passmark is the minimum correct-answer count required to pass: 80% of
// the total, truncated. The truncating rule is applied everywhere — both
// the early-failure bound and the final verdict — see DESIGN.md for the
// rounding decision.
func Passmark(total int) int {
	return total * 8 / 10
}

// Current resolves the question at the session's position against the pool.
// Returns false once the session is terminated or exhausted. Calling
// Current any number of times changes no state.
func (s *Session) Current(pool *Pool) (model.Question, bool) {
	if s.Terminated || s.Position >= len(s.Exam) {
		return model.Question{}, false
	}
	return pool.ByID(s.Exam[s.Position])
}

// Submit records an answer for the current question and advances the
// session. The comparison against the correct answer is exact string
// equality: options are server-issued and echoed back verbatim, so any
// mismatch is a wrong answer, not a formatting accident.
//
// Once the wrong-answer count exceeds total - Passmark(total), the session
// terminates as Failed immediately: the pass mark is already unreachable
// and the remaining questions are never presented.
func (s *Session) Submit(pool *Pool, option string) (Outcome, error) {
	total := len(s.Exam)

	switch {
	case s.Terminated:
		return Outcome{}, fmt.Errorf("%w: session already terminated", ErrInvalidState)
	case total == 0:
		return Outcome{}, fmt.Errorf("%w: session has no exam", ErrInvalidState)
	case option == "":
		return Outcome{}, fmt.Errorf("%w: empty option", ErrInvalidState)
	case s.Position >= total:
		return Outcome{}, fmt.Errorf("%w: position %d out of range", ErrInvalidState, s.Position)
	}

	q, ok := pool.ByID(s.Exam[s.Position])
	if !ok {
		return Outcome{}, fmt.Errorf("%w: question %d not in pool", ErrInvalidState, s.Exam[s.Position])
	}

	if option == q.CorrectAnswer {
		s.Score++
	} else {
		s.Wrong = append(s.Wrong, WrongAnswer{QuestionID: q.ID, Submitted: option})
	}
	if s.Answers == nil {
		s.Answers = make(map[int]string)
	}
	s.Answers[q.ID] = option

	passmark := Passmark(total)
	if maxWrong := total - passmark; len(s.Wrong) > maxWrong {
		s.Terminated = true
		return s.outcome(StatusFailed), nil
	}

	s.Position++
	if s.Position == total {
		s.Terminated = true
		if s.Score >= passmark {
			return s.outcome(StatusPassed), nil
		}
		return s.outcome(StatusFailed), nil
	}
	return s.outcome(StatusInProgress), nil
}

func (s *Session) outcome(st Status) Outcome {
	return Outcome{
		Status:   st,
		Position: s.Position,
		Score:    s.Score,
		Total:    len(s.Exam),
	}
}
