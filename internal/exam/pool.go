package exam

import (
	"fmt"
	"slices"

	"github.com/roadready/permitprep-backend/internal/model"
)

// Pool is the immutable catalog of questions an exam draws from, grouped by
// category with an ID index for O(1) resolution. A Pool is read-only after
// construction and safe to share across concurrent sessions.
type Pool struct {
	byCategory map[model.Category][]model.Question
	byID       map[int]model.Question
}

// NewPool builds a Pool from a flat question list. It fails with ErrPoolLoad
// if the list is empty or any question violates a pool invariant: unique ID,
// at least two distinct options, and a correct answer that is one of them.
func NewPool(questions []model.Question) (*Pool, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrPoolLoad)
	}

	p := &Pool{
		byCategory: make(map[model.Category][]model.Question),
		byID:       make(map[int]model.Question, len(questions)),
	}

	for _, q := range questions {
		if _, dup := p.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrPoolLoad, q.ID)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d has %d options, need at least 2", ErrPoolLoad, q.ID, len(q.Options))
		}
		for i, opt := range q.Options {
			if slices.Contains(q.Options[:i], opt) {
				return nil, fmt.Errorf("%w: question %d has duplicate option %q", ErrPoolLoad, q.ID, opt)
			}
		}
		if !slices.Contains(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("%w: question %d correct answer is not among its options", ErrPoolLoad, q.ID)
		}

		p.byID[q.ID] = q
		p.byCategory[q.Category] = append(p.byCategory[q.Category], q)
	}

	return p, nil
}

// ByCategory returns all questions in a category, nil if the category is
// absent. The returned slice must not be mutated.
func (p *Pool) ByCategory(c model.Category) []model.Question {
	return p.byCategory[c]
}

// ByID looks up a question by its identifier.
func (p *Pool) ByID(id int) (model.Question, bool) {
	q, ok := p.byID[id]
	return q, ok
}

// Size reports the total number of questions in the pool.
func (p *Pool) Size() int {
	return len(p.byID)
}
