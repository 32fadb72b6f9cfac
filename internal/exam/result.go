package exam

import "fmt"

// ReviewEntry is one wrong answer expanded for the final report.
type ReviewEntry struct {
	Question    string `json:"question"`
	Submitted   string `json:"submitted"`
	Correct     string `json:"correct"`
	Explanation string `json:"explanation"`
}

// Result is the read-only report of a finished session. Computed on demand,
// never persisted.
type Result struct {
	Score  int           `json:"score"`
	Total  int           `json:"total"`
	Passed bool          `json:"passed"`
	Review []ReviewEntry `json:"review"`
}

// CompileResult derives the final report from a terminated session. Each
// wrong-answer record is expanded against the pool; records whose question
// no longer resolves are skipped, since a partial review beats no review.
// Fails with ErrNotTerminated if the session is still in progress.
func CompileResult(s *Session, pool *Pool) (Result, error) {
	if !s.Terminated {
		return Result{}, fmt.Errorf("%w: result requested mid-exam", ErrNotTerminated)
	}

	total := len(s.Exam)
	res := Result{
		Score:  s.Score,
		Total:  total,
		Passed: s.Score >= Passmark(total),
		Review: make([]ReviewEntry, 0, len(s.Wrong)),
	}

	for _, w := range s.Wrong {
		q, ok := pool.ByID(w.QuestionID)
		if !ok {
			continue
		}
		res.Review = append(res.Review, ReviewEntry{
			Question:    q.Question,
			Submitted:   w.Submitted,
			Correct:     q.CorrectAnswer,
			Explanation: q.Explanation,
		})
	}
	return res, nil
}
