// Package milestone decides when goals cross their targets.
//
// Evaluate is a pure function: the caller carries State from one call to the
// next and owns any persistence or delivery of the returned Events.
package milestone

import (
	"sort"

	"tabungan/internal/core"
)

// State is what one evaluation hands to the next.
type State struct {
	LastIncome  int64
	LastExpense int64
	LastBalance int64
	achieved    map[string]struct{}
}

// NewState returns a state with the given goal ids marked achieved. It is
// mostly useful in tests; real sessions start from the zero State.
func NewState(income, expense int64, achieved ...string) State {
	s := State{LastIncome: income, LastExpense: expense, LastBalance: income - expense}
	for _, id := range achieved {
		if s.achieved == nil {
			s.achieved = make(map[string]struct{}, len(achieved))
		}
		s.achieved[id] = struct{}{}
	}
	return s
}

// IsAchieved reports whether goalID was at or above target at the last
// evaluation.
func (s State) IsAchieved(goalID string) bool {
	_, ok := s.achieved[goalID]
	return ok
}

// Achieved returns the achieved goal ids in sorted order.
func (s State) Achieved() []string {
	ids := make([]string, 0, len(s.achieved))
	for id := range s.achieved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s State) clone() State {
	out := s
	out.achieved = make(map[string]struct{}, len(s.achieved))
	for id := range s.achieved {
		out.achieved[id] = struct{}{}
	}
	return out
}

type Input struct {
	Income  []core.MoneyEntry
	Expense []core.MoneyEntry
	Goals   []core.Goal
	// Notify is false for silent reloads, e.g. the first load after login.
	Notify bool
}

// Toast is the single aggregate message shown for one evaluation.
type Toast struct {
	Count int    `json:"count"`
	Title string `json:"title"` // title of the first reached goal
}

// Highlight points the goals screen at the first reached goal.
type Highlight struct {
	GoalID string              `json:"goal_id"`
	Source core.ProgressSource `json:"source_type"`
}

// Events is empty unless Input.Notify was set and some goal just crossed.
type Events struct {
	Toast     *Toast      `json:"toast,omitempty"`
	Reached   []core.Goal `json:"reached,omitempty"`
	Highlight *Highlight  `json:"highlight,omitempty"`
}

func (e Events) Empty() bool {
	return len(e.Reached) == 0
}

type Result struct {
	State  State
	Events Events
}

type totals struct {
	income, expense, balance int64
}

func (t totals) of(src core.ProgressSource) int64 {
	switch src {
	case core.SourceBalance:
		return t.balance
	case core.SourceExpense:
		return t.expense
	default:
		return t.income
	}
}

// Evaluate recomputes totals from the full ledger and compares every goal
// against the totals of the previous call. A goal is reported at most once
// per continuous at-or-above streak; it is reported again only after it
// falls below target and re-crosses.
func Evaluate(prev State, in Input) Result {
	income := core.Sum(in.Income)
	expense := core.Sum(in.Expense)
	current := totals{income: income, expense: expense, balance: income - expense}
	previous := totals{income: prev.LastIncome, expense: prev.LastExpense, balance: prev.LastBalance}

	next := prev.clone()
	next.LastIncome = current.income
	next.LastExpense = current.expense
	next.LastBalance = current.balance

	existing := make(map[string]struct{}, len(in.Goals))
	for _, g := range in.Goals {
		existing[g.ID] = struct{}{}
	}
	for id := range next.achieved {
		if _, ok := existing[id]; !ok {
			delete(next.achieved, id)
		}
	}

	var reached []core.Goal
	for _, g := range in.Goals {
		src := g.Source.Normalize()
		progress := current.of(src)
		before := previous.of(src)

		isReached := g.Active() && progress >= g.Target
		justReached := before < g.Target && progress >= g.Target
		_, wasReached := next.achieved[g.ID]

		switch {
		case isReached && !wasReached:
			next.achieved[g.ID] = struct{}{}
			if in.Notify && justReached {
				reached = append(reached, g)
			}
		case !isReached && wasReached:
			delete(next.achieved, g.ID)
		}
	}

	res := Result{State: next}
	if in.Notify && len(reached) > 0 {
		first := reached[0]
		res.Events = Events{
			Toast:     &Toast{Count: len(reached), Title: first.Title},
			Reached:   reached,
			Highlight: &Highlight{GoalID: first.ID, Source: first.Source.Normalize()},
		}
	}
	return res
}
