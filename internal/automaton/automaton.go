// Package automaton builds the LR(0) characteristic finite automaton over
// item sets (S1) and classifies its states by conflict potential (S2). It is
// the first load-bearing stage of the grammar processor: every later stage
// (nullability, lookahead, table emission) is expressed in terms of the
// states and transitions this package produces.
package automaton

import (
	"sort"

	"github.com/dekarrin/lrgen/internal/grammar"
)

// Transition is a tagged edge leaving a state. The tag is carried by
// IsTerminal rather than modeled as a type hierarchy: callers branch on the
// bool, and only nonterminal transitions carry a meaningful NTIndex.
type Transition struct {
	Source      int
	Dest        int
	Symbol      grammar.Symbol
	IsTerminal  bool
	NTIndex     int // dense ordinal among nonterminal transitions; -1 if IsTerminal
}

// State is one node of the automaton: a closed item set plus the edges
// leading in and out of it. States are referred to everywhere else by their
// dense Number, never by pointer, so that the graph can have cycles (left
// recursion produces self-loops in the nonterminal-transition subgraph)
// without any ownership cycle in the Go values themselves.
type State struct {
	Number   int
	Items    ItemSet
	Outgoing []Transition
	// Incoming holds the state numbers of every state with an outgoing
	// transition into this one. Used by the lookahead engine's backward
	// walks (the lookback and includes relations).
	Incoming []int
}

// Automaton is the complete LR(0) characteristic finite automaton for a
// grammar, plus the bookkeeping the lookahead engine needs: a dense
// numbering of nonterminal transitions and, per nonterminal, every
// transition anywhere in the automaton labeled by that nonterminal.
type Automaton struct {
	States []State

	// NumNonterminalTransitions is the total count of transitions tagged
	// nonterminal across all states; NTIndex values range over
	// [0, NumNonterminalTransitions).
	NumNonterminalTransitions int

	// TransitionsByNonterminal maps a nonterminal's index (symbol code minus
	// NumTerminals) to every transition in the automaton labeled by that
	// nonterminal, regardless of source state. This is what the SLR Follow
	// computation unions DirectRead/Read over (§4.5).
	TransitionsByNonterminal [][]Transition
}

// Build runs S1: constructing the LR(0) automaton for g. g must already be
// augmented (production 0 is the synthetic $start -> S $end); see
// grammar.Definition's invariants.
func Build(g *grammar.Definition) *Automaton {
	start := Item{Production: 0, Dot: 0}
	startSet := Closure(g, NewItemSet(start))

	a := &Automaton{
		TransitionsByNonterminal: make([][]Transition, g.NumNonterminals()),
	}

	byKey := map[string]int{startSet.Key(): 0}
	a.States = append(a.States, State{Number: 0, Items: startSet})

	// Worklist of state numbers still to be processed; states discovered
	// while processing one state are appended and handled in later
	// iterations, giving a deterministic breadth-first discovery order that
	// callers can rely on for state numbering (§4.2's "Ordering and
	// tie-breaks").
	for i := 0; i < len(a.States); i++ {
		src := a.States[i]

		for _, sym := range distinctDotSymbols(g, src.Items) {
			successorKernel := advanceOver(g, src.Items, sym)
			successorSet := Closure(g, successorKernel)
			key := successorSet.Key()

			destNum, exists := byKey[key]
			if !exists {
				destNum = len(a.States)
				byKey[key] = destNum
				a.States = append(a.States, State{Number: destNum, Items: successorSet})
			}

			t := Transition{
				Source:     src.Number,
				Dest:       destNum,
				Symbol:     sym,
				IsTerminal: g.IsTerminal(sym),
				NTIndex:    -1,
			}
			if !t.IsTerminal {
				t.NTIndex = a.NumNonterminalTransitions
				a.NumNonterminalTransitions++
				ntIdx := g.NonterminalIndex(sym)
				a.TransitionsByNonterminal[ntIdx] = append(a.TransitionsByNonterminal[ntIdx], t)
			}

			a.States[i].Outgoing = append(a.States[i].Outgoing, t)
			a.States[destNum].Incoming = append(a.States[destNum].Incoming, src.Number)
		}
	}

	return a
}

// distinctDotSymbols returns, in ascending symbol-code order, every symbol
// that appears immediately after the dot in some non-final item of the set.
func distinctDotSymbols(g *grammar.Definition, items ItemSet) []grammar.Symbol {
	seen := make(map[grammar.Symbol]struct{})
	for _, it := range items.Sorted() {
		if sym, ok := it.DotSymbol(g); ok {
			seen[sym] = struct{}{}
		}
	}

	syms := make([]grammar.Symbol, 0, len(seen))
	for sym := range seen {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// advanceOver returns the kernel of the successor state reached from items
// on symbol x: every item with the dot immediately before x, with the dot
// advanced one position.
func advanceOver(g *grammar.Definition, items ItemSet, x grammar.Symbol) ItemSet {
	kernel := make(ItemSet)
	for _, it := range items.Sorted() {
		sym, ok := it.DotSymbol(g)
		if ok && sym == x {
			kernel.Add(it.Advance())
		}
	}
	return kernel
}
