package milestone

import (
	"reflect"
	"testing"

	"tabungan/internal/core"
)

func income(amounts ...int64) []core.MoneyEntry {
	out := make([]core.MoneyEntry, len(amounts))
	for i, a := range amounts {
		out[i] = core.MoneyEntry{Type: core.Income, Amount: a}
	}
	return out
}

func expense(amounts ...int64) []core.MoneyEntry {
	out := make([]core.MoneyEntry, len(amounts))
	for i, a := range amounts {
		out[i] = core.MoneyEntry{Type: core.Expense, Amount: a}
	}
	return out
}

func goal(id string, target int64, src core.ProgressSource) core.Goal {
	return core.Goal{ID: id, Title: "goal " + id, Target: target, Source: src}
}

func TestEvaluateComputesTotals(t *testing.T) {
	res := Evaluate(State{}, Input{Income: income(700, 300), Expense: expense(250)})
	if res.State.LastIncome != 1000 || res.State.LastExpense != 250 || res.State.LastBalance != 750 {
		t.Fatalf("unexpected totals: %+v", res.State)
	}
}

func TestAtMostOnceCrossing(t *testing.T) {
	goals := []core.Goal{goal("g1", 1000, core.SourceIncome)}
	state := State{}
	var fired []int

	for step, total := range []int64{800, 1000, 1000, 1500} {
		res := Evaluate(state, Input{Income: income(total), Goals: goals, Notify: true})
		if !res.Events.Empty() {
			fired = append(fired, step)
		}
		state = res.State
	}

	if !reflect.DeepEqual(fired, []int{1}) {
		t.Fatalf("expected a single event at step 1, got %v", fired)
	}
}

func TestReCrossingFiresAgain(t *testing.T) {
	goals := []core.Goal{goal("g1", 1000, core.SourceIncome)}
	state := State{}
	var fired []int

	for step, total := range []int64{1000, 500, 1200} {
		res := Evaluate(state, Input{Income: income(total), Goals: goals, Notify: true})
		if !res.Events.Empty() {
			fired = append(fired, step)
		}
		if step == 1 && res.State.IsAchieved("g1") {
			t.Fatalf("goal must be un-achieved after dropping below target")
		}
		state = res.State
	}

	if !reflect.DeepEqual(fired, []int{0, 2}) {
		t.Fatalf("expected events at steps 0 and 2, got %v", fired)
	}
}

func TestSilentReloadIsIdempotent(t *testing.T) {
	in := Input{
		Income: income(1500),
		Goals: []core.Goal{
			goal("a", 1000, core.SourceIncome),
			goal("b", 2000, core.SourceIncome),
		},
	}

	first := Evaluate(State{}, in)
	if !first.Events.Empty() {
		t.Fatalf("silent evaluation must not emit events")
	}
	want := first.State.Achieved()
	if !reflect.DeepEqual(want, []string{"a"}) {
		t.Fatalf("unexpected achieved set %v", want)
	}

	state := first.State
	for i := 0; i < 5; i++ {
		res := Evaluate(state, in)
		if !res.Events.Empty() {
			t.Fatalf("reload %d emitted events", i)
		}
		if got := res.State.Achieved(); !reflect.DeepEqual(got, want) {
			t.Fatalf("reload %d changed achieved set: %v", i, got)
		}
		state = res.State
	}

	// the next notify-enabled call with unchanged data must not re-fire
	in.Notify = true
	if res := Evaluate(state, in); !res.Events.Empty() {
		t.Fatalf("already achieved goal re-fired after silent reload: %+v", res.Events)
	}
}

func TestInvalidTargetsAreIgnored(t *testing.T) {
	goals := []core.Goal{
		goal("zero", 0, core.SourceIncome),
		goal("negative", -100, core.SourceBalance),
	}
	state := State{}
	for _, total := range []int64{0, 50, 5000, -10} {
		res := Evaluate(state, Input{Income: income(total), Goals: goals, Notify: true})
		if !res.Events.Empty() {
			t.Fatalf("invalid goal fired at total %d", total)
		}
		if len(res.State.Achieved()) != 0 {
			t.Fatalf("invalid goal achieved at total %d: %v", total, res.State.Achieved())
		}
		state = res.State
	}
}

func TestTargetEditedToZeroUnachieves(t *testing.T) {
	state := NewState(5000, 0, "g1")
	res := Evaluate(state, Input{Income: income(5000), Goals: []core.Goal{goal("g1", 0, core.SourceIncome)}, Notify: true})
	if res.State.IsAchieved("g1") {
		t.Fatalf("goal with non-positive target must leave the achieved set")
	}
}

func TestDeletedGoalIsPruned(t *testing.T) {
	for _, notify := range []bool{false, true} {
		state := NewState(1000, 0, "gone", "kept")
		res := Evaluate(state, Input{
			Income: income(1000),
			Goals:  []core.Goal{goal("kept", 500, core.SourceIncome)},
			Notify: notify,
		})
		if res.State.IsAchieved("gone") {
			t.Fatalf("notify=%v: deleted goal still achieved", notify)
		}
		if !res.State.IsAchieved("kept") {
			t.Fatalf("notify=%v: existing goal dropped", notify)
		}
		if !res.Events.Empty() {
			t.Fatalf("notify=%v: pruning emitted events", notify)
		}
	}
}

func TestBalanceSource(t *testing.T) {
	goals := []core.Goal{goal("b", 500, core.SourceBalance)}

	step1 := Evaluate(State{}, Input{Income: income(1000), Expense: expense(600), Goals: goals, Notify: true})
	if !step1.Events.Empty() {
		t.Fatalf("balance 400 must not reach 500")
	}

	step2 := Evaluate(step1.State, Input{Income: income(1000), Expense: expense(400), Goals: goals, Notify: true})
	if len(step2.Events.Reached) != 1 || step2.Events.Reached[0].ID != "b" {
		t.Fatalf("balance 600 must reach 500, got %+v", step2.Events)
	}
}

func TestExpenseSource(t *testing.T) {
	goals := []core.Goal{goal("e", 300, core.SourceExpense)}
	res := Evaluate(State{}, Input{Income: income(10), Expense: expense(100, 250), Goals: goals, Notify: true})
	if len(res.Events.Reached) != 1 {
		t.Fatalf("expense total 350 must reach 300")
	}
	if res.Events.Highlight.Source != core.SourceExpense {
		t.Fatalf("highlight source = %q", res.Events.Highlight.Source)
	}
}

func TestBlankSourceCountsIncome(t *testing.T) {
	goals := []core.Goal{goal("x", 100, "")}
	res := Evaluate(State{}, Input{Income: income(100), Expense: expense(100), Goals: goals, Notify: true})
	if len(res.Events.Reached) != 1 {
		t.Fatalf("blank source must measure income")
	}
	if res.Events.Highlight.Source != core.SourceIncome {
		t.Fatalf("blank source highlight must report income, got %q", res.Events.Highlight.Source)
	}
}

func TestAggregateEvents(t *testing.T) {
	goals := []core.Goal{
		goal("first", 100, core.SourceIncome),
		goal("second", 200, core.SourceIncome),
		goal("far", 9000, core.SourceIncome),
	}
	res := Evaluate(State{}, Input{Income: income(250), Goals: goals, Notify: true})

	if res.Events.Toast == nil || res.Events.Toast.Count != 2 || res.Events.Toast.Title != "goal first" {
		t.Fatalf("unexpected toast %+v", res.Events.Toast)
	}
	if len(res.Events.Reached) != 2 || res.Events.Reached[1].ID != "second" {
		t.Fatalf("unexpected reached list %+v", res.Events.Reached)
	}
	if res.Events.Highlight == nil || res.Events.Highlight.GoalID != "first" {
		t.Fatalf("highlight must point at the first reached goal, got %+v", res.Events.Highlight)
	}
}

func TestAlreadyAboveTargetIsMarkedSilently(t *testing.T) {
	// a goal created while progress is already above target never "crosses"
	state := Evaluate(State{}, Input{Income: income(1000)}).State
	res := Evaluate(state, Input{Income: income(1000), Goals: []core.Goal{goal("new", 500, core.SourceIncome)}, Notify: true})
	if !res.Events.Empty() {
		t.Fatalf("goal without a transition must not fire")
	}
	if !res.State.IsAchieved("new") {
		t.Fatalf("goal must still be recorded as achieved")
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	prev := NewState(0, 0, "old")
	_ = Evaluate(prev, Input{Income: income(100), Goals: []core.Goal{goal("new", 50, core.SourceIncome)}, Notify: true})
	if !reflect.DeepEqual(prev.Achieved(), []string{"old"}) || prev.LastIncome != 0 {
		t.Fatalf("previous state was mutated: %+v %v", prev, prev.Achieved())
	}
}
