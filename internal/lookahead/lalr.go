package lookahead

import (
	"sort"

	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/bitset"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// transitionIndex projects a nonterminal transition to its dense NTIndex,
// assigned by automaton.Build. Digraph's vertex type here is
// automaton.Transition itself; indexOf projects through NTIndex.
func transitionIndex(t automaton.Transition) int {
	return t.NTIndex
}

// allNonterminalTransitions flattens a.TransitionsByNonterminal into a
// single slice ordered by NTIndex, suitable as the Digraph vertex list.
func allNonterminalTransitions(a *automaton.Automaton) []automaton.Transition {
	out := make([]automaton.Transition, a.NumNonterminalTransitions)
	for _, byNT := range a.TransitionsByNonterminal {
		for _, t := range byNT {
			out[t.NTIndex] = t
		}
	}
	return out
}

// readsEdges is the Reads oracle: for t = (p, X, q), emit every nonterminal
// transition out of q whose label is nullable.
func readsEdges(g *grammar.Definition, nullable Nullable, a *automaton.Automaton, t automaton.Transition) []automaton.Transition {
	var out []automaton.Transition
	for _, out2 := range a.States[t.Dest].Outgoing {
		if !out2.IsTerminal && nullable.IsNullable(g, out2.Symbol) {
			out = append(out, out2)
		}
	}
	return out
}

// Read computes, for every nonterminal transition, Read(t) = DirectRead(t) ∪
// ⋃{Read(t') : t reads t'}, via one digraph run over the transition vertex
// set.
func Read(g *grammar.Definition, a *automaton.Automaton, nullable Nullable) []bitset.Set {
	vertices := allNonterminalTransitions(a)

	return Digraph[automaton.Transition](
		vertices,
		a.NumNonterminalTransitions,
		transitionIndex,
		func(t automaton.Transition) []automaton.Transition { return readsEdges(g, nullable, a, t) },
		func(t automaton.Transition) bitset.Set { return DirectRead(g, a, t) },
	)
}

// stepBackward advances a frontier of state numbers one step along incoming
// edges (i.e. backward through the automaton), returning the set of
// predecessor states.
func stepBackward(a *automaton.Automaton, frontier map[int]struct{}) map[int]struct{} {
	next := make(map[int]struct{})
	for s := range frontier {
		for _, pred := range a.States[s].Incoming {
			next[pred] = struct{}{}
		}
	}
	return next
}

// includesEdges is the Includes oracle. For t = (p, X, q): every kernel item
// of q has the form A -> gamma X . delta (the dot immediately after X, since
// q's kernel was built by shifting every item with dot-symbol X). For each
// such item with delta nullable-derives-ε, walk len(gamma) steps backward
// from p and, at every state reached, emit the outgoing transition labeled A
// (if present). Walks are batched by distance:
// collect (distance, lhs) pairs, sort by distance, and expand the backward
// frontier once per distinct distance instead of once per item.
func includesEdges(g *grammar.Definition, nullable Nullable, a *automaton.Automaton, t automaton.Transition) []automaton.Transition {
	type pending struct {
		distance int
		lhs      grammar.Symbol
	}

	q := a.States[t.Dest]
	var pendings []pending

	for _, it := range q.Items.Sorted() {
		if it.Dot == 0 {
			continue
		}
		prod := g.Productions[it.Production]
		if prod.RHS[it.Dot-1] != t.Symbol {
			continue
		}
		delta := prod.RHS[it.Dot:]
		if !nullable.SpanNullable(g, delta) {
			continue
		}
		pendings = append(pendings, pending{distance: it.Dot - 1, lhs: prod.LHS})
	}

	sort.Slice(pendings, func(i, j int) bool { return pendings[i].distance < pendings[j].distance })

	var out []automaton.Transition
	frontier := map[int]struct{}{t.Source: {}}
	currentDist := 0
	for _, pend := range pendings {
		for currentDist < pend.distance {
			frontier = stepBackward(a, frontier)
			currentDist++
		}
		for s := range frontier {
			for _, tr := range a.States[s].Outgoing {
				if !tr.IsTerminal && tr.Symbol == pend.lhs {
					out = append(out, tr)
				}
			}
		}
	}

	return out
}

// Follow computes, for every nonterminal transition, Follow(t) = Read(t) ∪
// ⋃{Follow(t') : t includes t'}, via one digraph run over the transition
// vertex set seeded with the already-computed Read sets.
func Follow(g *grammar.Definition, a *automaton.Automaton, nullable Nullable, read []bitset.Set) []bitset.Set {
	vertices := allNonterminalTransitions(a)

	return Digraph[automaton.Transition](
		vertices,
		a.NumNonterminalTransitions,
		transitionIndex,
		func(t automaton.Transition) []automaton.Transition { return includesEdges(g, nullable, a, t) },
		func(t automaton.Transition) bitset.Set { return read[t.NTIndex].Copy() },
	)
}

// Lookback returns every nonterminal transition t such that t lookback
// (state, item): walking len(item's production RHS) steps backward from
// state reaches t.Source, and t is labeled with the production's LHS.
func Lookback(g *grammar.Definition, a *automaton.Automaton, state int, item automaton.Item) []automaton.Transition {
	prod := g.Productions[item.Production]

	frontier := map[int]struct{}{state: {}}
	for i := 0; i < len(prod.RHS); i++ {
		frontier = stepBackward(a, frontier)
	}

	var out []automaton.Transition
	for s := range frontier {
		for _, tr := range a.States[s].Outgoing {
			if !tr.IsTerminal && tr.Symbol == prod.LHS {
				out = append(out, tr)
			}
		}
	}
	return out
}

// LALRLookahead computes the LALR(1) lookahead set for a single final item
// in a conflict-bearing state: the union of Follow(t) over every transition
// t in the item's lookback set.
func LALRLookahead(g *grammar.Definition, a *automaton.Automaton, follow []bitset.Set, state int, item automaton.Item) bitset.Set {
	s := bitset.New(g.NumTerminals)
	for _, t := range Lookback(g, a, state, item) {
		s.UnionAssign(follow[t.NTIndex])
	}
	return s
}
