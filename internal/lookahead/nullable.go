// Package lookahead implements S3 (nullability) and S4 (the DeRemer–Pennello
// lookahead engine): SLR(1) Follow computed first, LALR(1) Read/Follow
// computed only where SLR(1) leaves a state's actions ambiguous or the
// caller forces it.
package lookahead

import "github.com/dekarrin/lrgen/internal/grammar"

// Nullable is indexed by nonterminal INDEX (symbol code minus NumTerminals),
// matching grammar.Definition.NonterminalIndex.
type Nullable []bool

// IsNullable reports whether sym derives the empty string. Terminals are
// never nullable.
func (n Nullable) IsNullable(g *grammar.Definition, sym grammar.Symbol) bool {
	if g.IsTerminal(sym) {
		return false
	}
	return n[g.NonterminalIndex(sym)]
}

// SpanNullable reports whether every symbol in syms is nullable; the empty
// span is vacuously nullable.
func (n Nullable) SpanNullable(g *grammar.Definition, syms []grammar.Symbol) bool {
	for _, sym := range syms {
		if !n.IsNullable(g, sym) {
			return false
		}
	}
	return true
}

// ComputeNullable runs S3: a worklist algorithm over per-production counters
// of "remaining non-nullable RHS symbols". A production's counter starts at
// len(RHS) (0 for an ε production, which is therefore nullable immediately).
// When a nonterminal becomes nullable, every production referencing it on
// the RHS has its counter decremented once per occurrence; a production
// whose counter reaches zero makes its LHS nullable in turn. This runs in
// O(total grammar size): each RHS occurrence is visited at most once.
func ComputeNullable(g *grammar.Definition) Nullable {
	nullable := make(Nullable, g.NumNonterminals())

	remaining := make([]int, len(g.Productions))
	occursIn := make(map[grammar.Symbol][]int)
	for i, p := range g.Productions {
		remaining[i] = len(p.RHS)
		for _, sym := range p.RHS {
			occursIn[sym] = append(occursIn[sym], i)
		}
	}

	var queue []grammar.Symbol
	markNullable := func(nt grammar.Symbol) {
		idx := g.NonterminalIndex(nt)
		if !nullable[idx] {
			nullable[idx] = true
			queue = append(queue, nt)
		}
	}

	for i, p := range g.Productions {
		if remaining[i] == 0 {
			markNullable(p.LHS)
		}
	}

	for len(queue) > 0 {
		sym := queue[0]
		queue = queue[1:]

		for _, prodIdx := range occursIn[sym] {
			remaining[prodIdx]--
			if remaining[prodIdx] == 0 {
				markNullable(g.Productions[prodIdx].LHS)
			}
		}
	}

	return nullable
}
