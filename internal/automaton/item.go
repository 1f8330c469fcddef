package automaton

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrgen/internal/grammar"
)

// Item is an LR(0) item: a production together with a dot position marking
// how much of its right-hand side has been recognized so far. Items are
// value-like; two items with the same Production and Dot are the same item,
// which is why Item is a plain comparable struct rather than a pointer-typed
// one (it needs to key maps directly and be copied freely).
type Item struct {
	Production int
	Dot        int
}

// IsFinal reports whether the dot has reached the end of the production's
// right-hand side.
func (it Item) IsFinal(g *grammar.Definition) bool {
	return it.Dot >= len(g.Productions[it.Production].RHS)
}

// DotSymbol returns the symbol immediately following the dot, and whether
// such a symbol exists (false for a final item).
func (it Item) DotSymbol(g *grammar.Definition) (grammar.Symbol, bool) {
	rhs := g.Productions[it.Production].RHS
	if it.Dot >= len(rhs) {
		return 0, false
	}
	return rhs[it.Dot], true
}

// Advance returns the item with the dot moved one position to the right.
// Callers must ensure the item is not already final.
func (it Item) Advance() Item {
	return Item{Production: it.Production, Dot: it.Dot + 1}
}

func (it Item) String(g *grammar.Definition) string {
	p := g.Productions[it.Production]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ->", g.Name(p.LHS))
	for i, sym := range p.RHS {
		if i == it.Dot {
			sb.WriteString(" .")
		}
		fmt.Fprintf(&sb, " %s", g.Name(sym))
	}
	if it.Dot == len(p.RHS) {
		sb.WriteString(" .")
	}
	return sb.String()
}

// ItemSet is an unordered set of items. Two ItemSets are equal iff they
// contain the same items, regardless of how they were built up; Key below
// is how construction turns that semantic equality into a comparable Go
// value.
type ItemSet map[Item]struct{}

// NewItemSet builds an ItemSet from a slice of items.
func NewItemSet(items ...Item) ItemSet {
	s := make(ItemSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Add inserts it into the set.
func (s ItemSet) Add(it Item) {
	s[it] = struct{}{}
}

// Has reports whether it is a member of the set.
func (s ItemSet) Has(it Item) bool {
	_, ok := s[it]
	return ok
}

// Sorted returns the set's items in a deterministic order (by production
// code, then dot position). This is what makes closure construction and
// state discovery order reproducible despite Go's randomized map iteration.
func (s ItemSet) Sorted() []Item {
	items := make([]Item, 0, len(s))
	for it := range s {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Production != items[j].Production {
			return items[i].Production < items[j].Production
		}
		return items[i].Dot < items[j].Dot
	})
	return items
}

// Key returns a canonical string encoding of the set's members, suitable for
// use as a map key when testing ItemSets for equality. Two ItemSets are
// equal iff their Key()s are equal.
func (s ItemSet) Key() string {
	var sb strings.Builder
	for _, it := range s.Sorted() {
		fmt.Fprintf(&sb, "%d.%d|", it.Production, it.Dot)
	}
	return sb.String()
}

// Closure repeatedly adds, for every non-final item whose dot-symbol is a
// nonterminal n, the items (p, 0) for every production p with LHS = n, until
// no further items can be added. Closure is idempotent: calling it again on
// its own output returns an equal set.
func Closure(g *grammar.Definition, kernel ItemSet) ItemSet {
	result := make(ItemSet, len(kernel))
	for it := range kernel {
		result.Add(it)
	}

	added := true
	for added {
		added = false
		for _, it := range result.Sorted() {
			sym, ok := it.DotSymbol(g)
			if !ok || g.IsTerminal(sym) {
				continue
			}
			for _, p := range g.ProductionsFor(sym) {
				candidate := Item{Production: p.Code, Dot: 0}
				if !result.Has(candidate) {
					result.Add(candidate)
					added = true
				}
			}
		}
	}

	return result
}
