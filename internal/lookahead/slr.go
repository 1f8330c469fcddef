package lookahead

import (
	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/bitset"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// DirectRead returns the terminals labeling terminal transitions out of t's
// destination state: the symbols the parser could shift immediately after
// taking t.
func DirectRead(g *grammar.Definition, a *automaton.Automaton, t automaton.Transition) bitset.Set {
	s := bitset.New(g.NumTerminals)
	for _, out := range a.States[t.Dest].Outgoing {
		if out.IsTerminal {
			s.Add(int(out.Symbol))
		}
	}
	return s
}

// directReadForNonterminal unions DirectRead over every transition anywhere
// in the automaton labeled by nt. This is the initial set for SLR Follow.
func directReadForNonterminal(g *grammar.Definition, a *automaton.Automaton, nt grammar.Symbol) bitset.Set {
	s := bitset.New(g.NumTerminals)
	idx := g.NonterminalIndex(nt)
	for _, t := range a.TransitionsByNonterminal[idx] {
		s.UnionAssign(DirectRead(g, a, t))
	}
	return s
}

// slrFollowsEdges is the SLR-follows oracle: for nonterminal B, scan every
// production containing B on its RHS; if the span after B's RIGHTMOST
// occurrence derives ε, the production's LHS is an out-edge ("B slr-follows
// LHS" in the relation's naming, meaning SLR-Follow(B) incorporates
// SLR-Follow(LHS)).
func slrFollowsEdges(g *grammar.Definition, nullable Nullable, b grammar.Symbol) []grammar.Symbol {
	var out []grammar.Symbol
	for _, p := range g.Productions {
		rightmost := -1
		for i, sym := range p.RHS {
			if sym == b {
				rightmost = i
			}
		}
		if rightmost == -1 {
			continue
		}
		suffix := p.RHS[rightmost+1:]
		if nullable.SpanNullable(g, suffix) {
			out = append(out, p.LHS)
		}
	}
	return out
}

// SLRFollow computes the SLR(1) Follow set for every nonterminal, via a
// single digraph run over the nonterminal vertex set using slr-follows as
// the edge relation and directReadForNonterminal as the initial set. The
// result is indexed by nonterminal index.
func SLRFollow(g *grammar.Definition, a *automaton.Automaton, nullable Nullable) []bitset.Set {
	numNT := g.NumNonterminals()
	vertices := make([]grammar.Symbol, numNT)
	for i := 0; i < numNT; i++ {
		vertices[i] = grammar.Symbol(i + g.NumTerminals)
	}

	return Digraph[grammar.Symbol](
		vertices,
		numNT,
		g.NonterminalIndex,
		func(nt grammar.Symbol) []grammar.Symbol { return slrFollowsEdges(g, nullable, nt) },
		func(nt grammar.Symbol) bitset.Set { return directReadForNonterminal(g, a, nt) },
	)
}
