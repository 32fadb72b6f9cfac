package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadready/permitprep-backend/internal/exam"
	"github.com/roadready/permitprep-backend/internal/model"
	"github.com/roadready/permitprep-backend/internal/store"
)

// ErrExamFinished is returned when a question is requested from a session
// that has already terminated.
var ErrExamFinished = errors.New("exam already finished")

// ExamService drives exams over HTTP sessions: it composes exams from the
// standard pool or a generated one, and funnels every answer through the
// session state machine, persisting the session after each transition.
type ExamService struct {
	standard  *exam.Pool
	blueprint exam.Blueprint
	sessions  store.SessionStore
	pools     store.PoolStore
	log       zerolog.Logger
}

// NewExamService creates an ExamService over the given standard pool and
// stores.
func NewExamService(
	standard *exam.Pool,
	blueprint exam.Blueprint,
	sessions store.SessionStore,
	pools store.PoolStore,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		standard:  standard,
		blueprint: blueprint,
		sessions:  sessions,
		pools:     pools,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// QuestionView is the client-facing projection of a question. The correct
// answer and the explanation never leave the server mid-exam.
type QuestionView struct {
	ID       int            `json:"id"`
	Category model.Category `json:"category"`
	Question string         `json:"question"`
	Options  []string       `json:"options"`
	Image    string         `json:"image,omitempty"`
	Number   int            `json:"number"`
	Total    int            `json:"total"`
}

// StartStandard composes a fresh exam from the standard pool and opens a
// session for it. Any prior session under a new ID is simply abandoned to
// its TTL.
func (s *ExamService) StartStandard(ctx context.Context) (string, int, error) {
	ids, err := exam.NewComposer(nil).Compose(s.standard, s.blueprint)
	if err != nil {
		return "", 0, fmt.Errorf("compose exam: %w", err)
	}
	return s.open(ctx, "", ids)
}

// StartCustom opens a session over a generated pool. The exam is the whole
// pool in generated order.
func (s *ExamService) StartCustom(ctx context.Context, poolID string) (string, int, error) {
	questions, err := s.pools.Get(ctx, poolID)
	if err != nil {
		return "", 0, fmt.Errorf("claim pool %s: %w", poolID, err)
	}
	// Rebuild the pool to re-check invariants before trusting it.
	if _, err := exam.NewPool(questions); err != nil {
		return "", 0, fmt.Errorf("claim pool %s: %w", poolID, err)
	}

	ids := make([]int, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return s.open(ctx, poolID, ids)
}

func (s *ExamService) open(ctx context.Context, poolID string, ids []int) (string, int, error) {
	sessionID := uuid.NewString()
	state := &store.SessionState{
		PoolID:  poolID,
		Session: *exam.StartSession(ids),
	}
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return "", 0, fmt.Errorf("store session: %w", err)
	}

	s.log.Info().
		Str("session_id", sessionID).
		Str("pool_id", poolID).
		Int("questions", len(ids)).
		Msg("Exam started")
	return sessionID, len(ids), nil
}

// CurrentQuestion resolves the session's pending question. Safe to call
// repeatedly; it never changes state.
func (s *ExamService) CurrentQuestion(ctx context.Context, sessionID string) (*QuestionView, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	pool, err := s.resolvePool(ctx, state)
	if err != nil {
		return nil, err
	}

	q, ok := state.Session.Current(pool)
	if !ok {
		return nil, ErrExamFinished
	}

	return &QuestionView{
		ID:       q.ID,
		Category: q.Category,
		Question: q.Question,
		Options:  q.Options,
		Image:    q.Image,
		Number:   state.Session.Position + 1,
		Total:    len(state.Session.Exam),
	}, nil
}

// SubmitAnswer runs one submit transition and persists the session.
func (s *ExamService) SubmitAnswer(ctx context.Context, sessionID, option string) (exam.Outcome, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return exam.Outcome{}, err
	}
	pool, err := s.resolvePool(ctx, state)
	if err != nil {
		return exam.Outcome{}, err
	}

	outcome, err := state.Session.Submit(pool, option)
	if err != nil {
		return exam.Outcome{}, err
	}
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return exam.Outcome{}, fmt.Errorf("store session: %w", err)
	}

	if outcome.Status != exam.StatusInProgress {
		s.log.Info().
			Str("session_id", sessionID).
			Str("status", string(outcome.Status)).
			Int("score", outcome.Score).
			Int("total", outcome.Total).
			Msg("Exam terminated")
	}
	return outcome, nil
}

// Result compiles the final report for a terminated session.
func (s *ExamService) Result(ctx context.Context, sessionID string) (exam.Result, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return exam.Result{}, err
	}
	pool, err := s.resolvePool(ctx, state)
	if err != nil {
		return exam.Result{}, err
	}
	return exam.CompileResult(&state.Session, pool)
}

// resolvePool returns the pool a session runs against: the shared standard
// pool, or its generated pool rebuilt from the pool store.
func (s *ExamService) resolvePool(ctx context.Context, state *store.SessionState) (*exam.Pool, error) {
	if state.PoolID == "" {
		return s.standard, nil
	}
	questions, err := s.pools.Get(ctx, state.PoolID)
	if err != nil {
		return nil, fmt.Errorf("resolve pool %s: %w", state.PoolID, err)
	}
	return exam.NewPool(questions)
}
