package flow

import "github.com/youcodecowboy/disco-grid-sub000/internal/model"

// NextVisibleIndex returns the first index after current whose question is
// visible, or len(questions) when none is.
func NextVisibleIndex(questions []model.Question, current int, c model.Contract) int {
	s := newState(questions, c)
	start := current + 1
	if start < 0 {
		start = 0
	}
	for i := start; i < len(questions); i++ {
		if s.evaluate(questions[i]).Visible {
			return i
		}
	}
	return len(questions)
}

// PreviousVisibleIndex returns the last index before current whose question
// is visible, or 0 when none is.
func PreviousVisibleIndex(questions []model.Question, current int, c model.Contract) int {
	s := newState(questions, c)
	start := current - 1
	if start >= len(questions) {
		start = len(questions) - 1
	}
	for i := start; i >= 0; i-- {
		if s.evaluate(questions[i]).Visible {
			return i
		}
	}
	return 0
}

// FirstVisibleIndex is NextVisibleIndex from before the start.
func FirstVisibleIndex(questions []model.Question, c model.Contract) int {
	return NextVisibleIndex(questions, -1, c)
}

// Trace evaluates every question against one contract snapshot.
func Trace(questions []model.Question, c model.Contract) []Step {
	s := newState(questions, c)
	out := make([]Step, len(questions))
	for i, q := range questions {
		out[i] = Step{Index: i, ID: q.ID, Decision: s.evaluate(q)}
	}
	return out
}
