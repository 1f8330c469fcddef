package lrtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lookahead"
)

// buildSimple is the augmented grammar for S -> a | b.
func buildSimple() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "b", "$start", "S"},
		NumTerminals: 3,
		Productions: []grammar.Production{
			{Code: 0, LHS: 3, RHS: []grammar.Symbol{4, 0}},
			{Code: 1, LHS: 4, RHS: []grammar.Symbol{1}},
			{Code: 2, LHS: 4, RHS: []grammar.Symbol{2}},
		},
		FirstProductionForNonterminal: []int{0, 1, 3},
	}
}

func Test_Emit_ShiftAndUnconditionalReduce(t *testing.T) {
	g := buildSimple()
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)
	la := lookahead.Compute(g, a, reports, false)

	table := Emit(g, a, reports, la)

	// state 0 shifts on a, b, and goto on S.
	assert.Equal(t, ActionShift, table.Action[0][1].Kind)
	assert.Equal(t, ActionShift, table.Action[0][2].Kind)

	sIdx := g.NonterminalIndex(4)
	assert.NotEqual(t, NoGoto, table.Goto[0][sIdx])

	// the state reached on a has a single final item (S -> a .): reduce on
	// every terminal unconditionally.
	destOnA := table.Action[0][1].Arg
	for term := 0; term < g.NumTerminals; term++ {
		assert.Equal(t, ActionReduce, table.Action[destOnA][term].Kind)
		assert.Equal(t, 1, table.Action[destOnA][term].Arg)
	}
}

func Test_Emit_AcceptStateShiftsOnEnd(t *testing.T) {
	g := buildSimple()
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)
	la := lookahead.Compute(g, a, reports, false)

	table := Emit(g, a, reports, la)

	// The state reached from state 0 on S holds $start -> S . $end, which is
	// not a final item and so not a reduce candidate (the production's RHS
	// still has $end left); it should only shift on $end.
	sIdx := g.NonterminalIndex(4)
	destOnS := table.Goto[0][sIdx]
	assert.Equal(t, ActionShift, table.Action[destOnS][0].Kind)
}

func Test_Emit_ShiftWinsOverReduce(t *testing.T) {
	// $start -> S $end ; S -> a S ; S -> a
	g := &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "$start", "S"},
		NumTerminals: 2,
		Productions: []grammar.Production{
			{Code: 0, LHS: 2, RHS: []grammar.Symbol{3, 0}},
			{Code: 1, LHS: 3, RHS: []grammar.Symbol{1, 3}},
			{Code: 2, LHS: 3, RHS: []grammar.Symbol{1}},
		},
		FirstProductionForNonterminal: []int{0, 1, 3},
	}
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)
	la := lookahead.Compute(g, a, reports, false)

	table := Emit(g, a, reports, la)

	// The conflict state shifts on 'a' (to continue S -> a . S) and holds the
	// final item S -> a ., an LR(0) reduce candidate on every terminal
	// including 'a'; the cell on 'a' must end up a shift.
	for _, r := range reports {
		if r.Class.String() == "needs-lookahead" {
			assert.Equal(t, ActionShift, table.Action[r.State][1].Kind)
		}
	}
}
