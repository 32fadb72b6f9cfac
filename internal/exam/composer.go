package exam

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/roadready/permitprep-backend/internal/model"
)

// Quota bounds how many questions of one category an exam may contain.
type Quota struct {
	Category model.Category
	Min      int
	Max      int
}

// Blueprint describes the shape of an exam: ordered category quotas and the
// target total. The last quota absorbs the remainder during composition.
type Blueprint struct {
	Quotas []Quota
	Total  int
}

// DefaultBlueprint is the canonical 30-question permit exam split.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		Quotas: []Quota{
			{Category: model.CategoryRoadSigns, Min: 5, Max: 8},
			{Category: model.CategoryTrafficLaws, Min: 10, Max: 12},
			{Category: model.CategorySafeDriving, Min: 10, Max: 12},
		},
		Total: 30,
	}
}

// maxComposeAttempts bounds the rejection-sampling loop so an inconsistent
// blueprint fails instead of spinning forever.
const maxComposeAttempts = 1000

// Composer samples exams from a pool. Not safe for concurrent use; each
// caller owns its Composer.
type Composer struct {
	rng *rand.Rand
}

// NewComposer creates a Composer. Pass a seeded rng for deterministic
// composition in tests; nil uses a time-seeded source.
func NewComposer(rng *rand.Rand) *Composer {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>16))
	}
	return &Composer{rng: rng}
}

// Compose builds one exam: per-category counts are rejection-sampled from
// the blueprint quotas, then that many questions are drawn without
// replacement from each category and the combined sequence is shuffled so
// position reveals nothing about category. A category with fewer questions
// than requested contributes everything it has rather than aborting.
// Returns the ordered question ID sequence.
func (c *Composer) Compose(pool *Pool, bp Blueprint) ([]int, error) {
	counts, err := c.drawCounts(bp)
	if err != nil {
		return nil, err
	}

	var picked []model.Question
	for i, quota := range bp.Quotas {
		available := pool.ByCategory(quota.Category)
		n := counts[i]
		if n > len(available) {
			n = len(available)
		}
		picked = append(picked, c.sample(available, n)...)
	}

	c.rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	ids := make([]int, len(picked))
	for i, q := range picked {
		ids[i] = q.ID
	}
	return ids, nil
}

// drawCounts rejection-samples a per-quota split that sums to the target:
// every quota but the last draws uniformly from its range, the last takes
// the remainder, and the split is accepted iff the remainder lies in the
// last quota's range.
func (c *Composer) drawCounts(bp Blueprint) ([]int, error) {
	if len(bp.Quotas) == 0 {
		return nil, fmt.Errorf("%w: blueprint has no quotas", ErrComposition)
	}
	for _, q := range bp.Quotas {
		if q.Min < 0 || q.Max < q.Min {
			return nil, fmt.Errorf("%w: quota for %q has invalid range [%d,%d]", ErrComposition, q.Category, q.Min, q.Max)
		}
	}

	last := len(bp.Quotas) - 1
	for attempt := 0; attempt < maxComposeAttempts; attempt++ {
		counts := make([]int, len(bp.Quotas))
		sum := 0
		for i, q := range bp.Quotas[:last] {
			counts[i] = q.Min + c.rng.IntN(q.Max-q.Min+1)
			sum += counts[i]
		}
		rest := bp.Total - sum
		if rest >= bp.Quotas[last].Min && rest <= bp.Quotas[last].Max {
			counts[last] = rest
			return counts, nil
		}
	}
	return nil, fmt.Errorf("%w: no quota split sums to %d after %d attempts", ErrComposition, bp.Total, maxComposeAttempts)
}

// sample draws n questions without replacement.
func (c *Composer) sample(qs []model.Question, n int) []model.Question {
	out := make([]model.Question, 0, n)
	for _, i := range c.rng.Perm(len(qs))[:n] {
		out = append(out, qs[i])
	}
	return out
}
