package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// buildSimple returns the augmented grammar for:
//
//	S -> a
//	S -> b
//
// symbol-coded as: 0=$end, 1=a, 2=b, 3=$start, 4=S
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

// buildRecursive returns an augmented grammar with left recursion:
//
//	E -> E + a
//	E -> a
func buildRecursive() *grammar.Definition {
	// 0=$end, 1=a, 2=+, 3=$start, 4=E
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "+", "$start", "E"},
		NumTerminals: 3,
		Productions: []grammar.Production{
			{Code: 0, LHS: 3, RHS: []grammar.Symbol{4, 0}},
			{Code: 1, LHS: 4, RHS: []grammar.Symbol{4, 2, 1}},
			{Code: 2, LHS: 4, RHS: []grammar.Symbol{1}},
		},
		FirstProductionForNonterminal: []int{0, 1, 3},
	}
}

func Test_Build_StateZero_IsClosureOfStart(t *testing.T) {
	g := buildSimple()
	a := Build(g)

	s0 := a.States[0]
	assert.True(t, s0.Items.Has(Item{Production: 0, Dot: 0}))
	assert.True(t, s0.Items.Has(Item{Production: 1, Dot: 0}))
	assert.True(t, s0.Items.Has(Item{Production: 2, Dot: 0}))
}

func Test_Build_DiscoversAllStates(t *testing.T) {
	g := buildSimple()
	a := Build(g)

	// state 0 (initial), on a -> state 1 (final), on b -> state 2 (final),
	// on S -> state 3 ($start -> S . $end), and from state 3 on $end ->
	// state 4 ($start -> S $end .)
	assert.Len(t, a.States, 5)
}

func Test_Build_TransitionsAreDeterministic(t *testing.T) {
	g := buildSimple()
	a1 := Build(g)
	a2 := Build(g)

	assert.Equal(t, len(a1.States), len(a2.States))
	for i := range a1.States {
		assert.Equal(t, a1.States[i].Items.Key(), a2.States[i].Items.Key())
	}
}

func Test_Build_NonterminalTransitionsIndexed(t *testing.T) {
	g := buildSimple()
	a := Build(g)

	// S is nonterminal index 1 (index 0 is $start)
	sIdx := g.NonterminalIndex(4)
	assert.Len(t, a.TransitionsByNonterminal[sIdx], 1)
	assert.Equal(t, 0, a.TransitionsByNonterminal[sIdx][0].Source)
}

func Test_Build_IncomingPopulated(t *testing.T) {
	g := buildSimple()
	a := Build(g)

	for _, st := range a.States[1:] {
		assert.NotEmpty(t, st.Incoming, "state %d should have at least one incoming transition", st.Number)
	}
}

func Test_Build_LeftRecursion_TerminatesAndIndexesNonterminal(t *testing.T) {
	g := buildRecursive()
	a := Build(g)

	eIdx := g.NonterminalIndex(4)
	found := false
	for _, tr := range a.TransitionsByNonterminal[eIdx] {
		if tr.Dest == tr.Source {
			found = true
		}
	}
	// For E -> E + a the only transition on E leaves state 0 for a different
	// state, so found stays false; what matters here is that building the
	// automaton terminates on a left-recursive grammar and the nonterminal
	// index is populated.
	_ = found
	assert.NotEmpty(t, a.TransitionsByNonterminal[eIdx])
}
