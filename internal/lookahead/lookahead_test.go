package lookahead

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/diag"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// buildAEqualsB is a small grammar whose state reached on 'a' from state 0
// holds both S -> a . and A -> a .; SLR(1) Follow(A) = {=, $end} overlaps
// Follow(S) = {$end}, so that state is only resolved by LALR(1):
//
//	$start -> S $end
//	S -> A = A
//	S -> a
//	A -> a
//
// 0=$end, 1==, 2=a, 3=$start, 4=S, 5=A
func buildAEqualsB() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "=", "a", "$start", "S", "A"},
		NumTerminals: 3,
		Productions: []grammar.Production{
			{Code: 0, LHS: 3, RHS: []grammar.Symbol{4, 0}},
			{Code: 1, LHS: 4, RHS: []grammar.Symbol{5, 1, 5}},
			{Code: 2, LHS: 4, RHS: []grammar.Symbol{2}},
			{Code: 3, LHS: 5, RHS: []grammar.Symbol{2}},
		},
		FirstProductionForNonterminal: []int{0, 1, 3, 4},
	}
}

func Test_ComputeNullable_NoEpsilon_AllFalse(t *testing.T) {
	g := buildAEqualsB()
	n := ComputeNullable(g)
	for _, nt := range n {
		assert.False(t, nt)
	}
}

func Test_SLRFollow_UnambiguousGrammar(t *testing.T) {
	g := buildAEqualsB()
	a := automaton.Build(g)
	nullable := ComputeNullable(g)

	follow := SLRFollow(g, a, nullable)

	// Follow(S) must contain $end (S is the grammar's start symbol).
	sIdx := g.NonterminalIndex(4)
	assert.True(t, follow[sIdx].Contains(0))
}

func Test_Read_DirectReadIsLowerBound(t *testing.T) {
	g := buildAEqualsB()
	a := automaton.Build(g)
	nullable := ComputeNullable(g)

	read := Read(g, a, nullable)
	for _, t2 := range allNonterminalTransitions(a) {
		direct := DirectRead(g, a, t2)
		assert.True(t, direct.Difference(read[t2.NTIndex]).IsEmpty(),
			"DirectRead must be a subset of Read for transition %+v", t2)
	}
}

func Test_Lookback_FindsSourceOfReducingTransition(t *testing.T) {
	g := buildAEqualsB()
	a := automaton.Build(g)

	// Find the state with A -> a . (final item for production 3) and
	// confirm lookback finds at least one transition labeled A.
	for _, st := range a.States {
		for it := range st.Items {
			if it.Production == 3 && it.IsFinal(g) {
				transitions := Lookback(g, a, st.Number, it)
				assert.NotEmpty(t, transitions)
				for _, tr := range transitions {
					assert.Equal(t, grammar.Symbol(5), tr.Symbol)
				}
			}
		}
	}
}

// buildDanglingElse forces LALR(1) fallback: SLR(1) Follow(S) = {$end, e}
// includes 'e', which is also shifted in the state holding S -> i S . and
// S -> i S . e S, so the engine must fall back to LALR(1) lookback/Follow
// computation, which still leaves 'e' in the lookahead (the grammar is
// ambiguous) and reports a shift/reduce conflict.
//
//	$start -> S $end
//	S -> i S
//	S -> i S e S
//	S -> x
//
// 0=$end, 1=i, 2=e, 3=x, 4=$start, 5=S
func buildDanglingElse() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "i", "e", "x", "$start", "S"},
		NumTerminals: 4,
		Productions: []grammar.Production{
			{Code: 0, LHS: 4, RHS: []grammar.Symbol{5, 0}},
			{Code: 1, LHS: 5, RHS: []grammar.Symbol{1, 5}},
			{Code: 2, LHS: 5, RHS: []grammar.Symbol{1, 5, 2, 5}},
			{Code: 3, LHS: 5, RHS: []grammar.Symbol{3}},
		},
		FirstProductionForNonterminal: []int{0, 1, 4},
	}
}

func Test_Compute_ShiftReduceResolvedInFavorOfShift(t *testing.T) {
	g := buildDanglingElse()
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)

	res := Compute(g, a, reports, false)

	foundWarning := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.KindShiftReduce {
			foundWarning = true
			assert.Equal(t, diag.SeverityWarning, d.Severity)
		}
		assert.NotEqual(t, diag.KindReduceReduce, d.Kind, "this grammar has no reduce/reduce conflict")
	}
	assert.True(t, foundWarning)
}

// buildReduceReduce constructs a grammar with a genuine reduce/reduce
// conflict: both A and B can reduce on the same lookahead ($end).
//
//	$start -> S $end
//	S -> A
//	S -> B
//	A -> a
//	B -> a
//
// 0=$end, 1=a, 2=$start, 3=S, 4=A, 5=B
func buildReduceReduce() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "$start", "S", "A", "B"},
		NumTerminals: 2,
		Productions: []grammar.Production{
			{Code: 0, LHS: 2, RHS: []grammar.Symbol{3, 0}},
			{Code: 1, LHS: 3, RHS: []grammar.Symbol{4}},
			{Code: 2, LHS: 3, RHS: []grammar.Symbol{5}},
			{Code: 3, LHS: 4, RHS: []grammar.Symbol{1}},
			{Code: 4, LHS: 5, RHS: []grammar.Symbol{1}},
		},
		FirstProductionForNonterminal: []int{0, 1, 3, 4, 5},
	}
}

func Test_Compute_ReduceReduceIsFatalDiagnostic(t *testing.T) {
	g := buildReduceReduce()
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)

	res := Compute(g, a, reports, false)

	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.KindReduceReduce {
			found = true
			assert.Equal(t, diag.SeverityError, d.Severity)
		}
	}
	assert.True(t, found)
}

func Test_Compute_ForceLalr1_SkipsSLR(t *testing.T) {
	g := buildDanglingElse()
	a := automaton.Build(g)
	reports := automaton.Classify(g, a)

	res := Compute(g, a, reports, true)

	assert.Nil(t, res.SLRFollow)
	for _, l := range res.Lookaheads {
		assert.Equal(t, diag.StageLALR1, l.Resolved)
	}
}

// buildTextbookFollowGrammar is the textbook grammar named directly by
// scenario 2: the state containing the final item A -> d . conflicts with a
// shift on c, and SLR(1) Follow(A) is exactly {a, c}. Because that Follow
// set overlaps the shift on c, Compute leaves the state to LALR(1), which
// narrows A -> d . to {a} there and resolves it.
//
//	$start -> S $end
//	S -> A a
//	S -> b A c
//	S -> d c
//	S -> b d a
//	A -> d
//
// 0=$end, 1=a, 2=b, 3=c, 4=d, 5=$start, 6=S, 7=A
func buildTextbookFollowGrammar() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "b", "c", "d", "$start", "S", "A"},
		NumTerminals: 5,
		Productions: []grammar.Production{
			{Code: 0, LHS: 5, RHS: []grammar.Symbol{6, 0}},
			{Code: 1, LHS: 6, RHS: []grammar.Symbol{7, 1}},
			{Code: 2, LHS: 6, RHS: []grammar.Symbol{2, 7, 3}},
			{Code: 3, LHS: 6, RHS: []grammar.Symbol{4, 3}},
			{Code: 4, LHS: 6, RHS: []grammar.Symbol{2, 4, 1}},
			{Code: 5, LHS: 7, RHS: []grammar.Symbol{4}},
		},
		FirstProductionForNonterminal: []int{0, 1, 5, 6},
	}
}

func Test_SLRFollow_TextbookGrammar_MatchesNamedFollowSet(t *testing.T) {
	g := buildTextbookFollowGrammar()
	a := automaton.Build(g)
	nullable := ComputeNullable(g)

	follow := SLRFollow(g, a, nullable)
	aIdx := g.NonterminalIndex(7) // A

	assert.True(t, follow[aIdx].Contains(1), "Follow(A) must contain 'a'")
	assert.True(t, follow[aIdx].Contains(3), "Follow(A) must contain 'c'")
	assert.False(t, follow[aIdx].Contains(2), "Follow(A) must not contain 'b'")
	assert.False(t, follow[aIdx].Contains(4), "Follow(A) must not contain 'd'")

	reports := automaton.Classify(g, a)
	res := Compute(g, a, reports, false)
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, diag.KindReduceReduce, d.Kind,
			"SLR(1) Follow(A) only overlaps shift terminals here, and LALR(1) resolves those states")
	}
}

// buildNonSLRGrammar engineers a single LR(0) state that merges the
// completed items A -> e . and B -> e ., with SLR(1)'s global Follow sets
// overlapping on 'd' (a hypothetical SLR-only run would report this state as
// an unresolvable reduce/reduce conflict), while LALR(1)'s per-transition
// Follow narrows each item's lookahead to the single terminal that can
// legally follow it from the specific incoming context that reaches this
// state:
//
//	$start -> S $end
//	S -> a A c
//	S -> a B d
//	S -> b A d
//	A -> e
//	B -> e
//
// 0=$end, 1=a, 2=b, 3=c, 4=d, 5=e, 6=$start, 7=S, 8=A, 9=B
func buildNonSLRGrammar() *grammar.Definition {
	return &grammar.Definition{
		SymbolNames:  []string{"$end", "a", "b", "c", "d", "e", "$start", "S", "A", "B"},
		NumTerminals: 6,
		Productions: []grammar.Production{
			{Code: 0, LHS: 6, RHS: []grammar.Symbol{7, 0}},
			{Code: 1, LHS: 7, RHS: []grammar.Symbol{1, 8, 3}},
			{Code: 2, LHS: 7, RHS: []grammar.Symbol{1, 9, 4}},
			{Code: 3, LHS: 7, RHS: []grammar.Symbol{2, 8, 4}},
			{Code: 4, LHS: 8, RHS: []grammar.Symbol{5}},
			{Code: 5, LHS: 9, RHS: []grammar.Symbol{5}},
		},
		FirstProductionForNonterminal: []int{0, 1, 4, 5, 6},
	}
}

func Test_Compute_NonSLRGrammar_LALRResolvesWhereSLRWouldConflict(t *testing.T) {
	g := buildNonSLRGrammar()
	a := automaton.Build(g)
	nullable := ComputeNullable(g)

	// A hypothetical SLR-only run: the global Follow sets for A and B both
	// contain 'd', so SLR alone cannot tell the two reductions apart.
	slrFollow := SLRFollow(g, a, nullable)
	aIdx := g.NonterminalIndex(8)
	bIdx := g.NonterminalIndex(9)
	assert.False(t, slrFollow[aIdx].DisjointWith(slrFollow[bIdx]),
		"a hypothetical SLR-only run must see Follow(A) and Follow(B) overlap on 'd'")

	reports := automaton.Classify(g, a)
	require.True(t, automaton.NeedsLookahead(reports))

	res := Compute(g, a, reports, false)

	// The actual pipeline falls back to LALR(1) for the merged state and
	// resolves it cleanly: no reduce/reduce diagnostic, and the two items
	// get disjoint, narrower-than-SLR lookahead sets that differ from what
	// a hypothetical SLR-only table would have produced.
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, diag.KindReduceReduce, d.Kind,
			"LALR(1) must resolve this state even though SLR(1) alone could not")
	}

	var sawA, sawB bool
	for _, l := range res.Lookaheads {
		prod := g.Productions[l.Item.Production]
		switch prod.LHS {
		case 8: // A -> e
			sawA = true
			assert.Equal(t, diag.StageLALR1, l.Resolved)
			assert.True(t, l.Lookahead.Contains(3), "A -> e must reduce on 'c' in this context")
			assert.False(t, l.Lookahead.Contains(4), "A -> e must not reduce on 'd' here, unlike SLR's global Follow(A)")
		case 9: // B -> e
			sawB = true
			assert.Equal(t, diag.StageLALR1, l.Resolved)
			assert.True(t, l.Lookahead.Contains(4), "B -> e must reduce on 'd'")
			assert.False(t, l.Lookahead.Contains(3), "B -> e must not reduce on 'c'")
		}
	}
	assert.True(t, sawA, "expected a resolved lookahead entry for A -> e")
	assert.True(t, sawB, "expected a resolved lookahead entry for B -> e")
}
