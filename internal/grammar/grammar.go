// Package grammar holds the read-only grammar-definition contract that the
// processor core consumes. Building a Definition from source text (parsing a
// grammar file, resolving symbol names to codes, assigning token classes) is
// the job of an external front end (internal/frontend in this module); this
// package only describes the shape that front end must produce and the
// invariants the core is allowed to assume hold of it.
package grammar

import "fmt"

// Symbol is a dense, non-negative code identifying a grammar symbol. Codes
// [0, numTerminals) are terminals; 0 is reserved for the end-of-input marker
// $end. Codes [numTerminals, numSymbols) are nonterminals, with the code at
// index numTerminals reserved for the synthetic start nonterminal $start.
type Symbol int

// EndOfInput is the symbol code reserved for the $end marker.
const EndOfInput Symbol = 0

// Production is a single grammar rule LHS -> RHS. Code is the production's
// position in Definition.Productions and doubles as its identity everywhere
// else in the core (lookahead stores and ACTION cells refer to productions
// by this code, not by value).
type Production struct {
	Code int
	LHS  Symbol
	RHS  []Symbol
}

// IsEmpty reports whether the production has an empty right-hand side (an ε
// production).
func (p Production) IsEmpty() bool {
	return len(p.RHS) == 0
}

func (p Production) String() string {
	return fmt.Sprintf("%d: %d -> %v", p.Code, p.LHS, p.RHS)
}

// Definition is the read-only grammar a processor run operates on. It is
// produced once by an external front end and never mutated by the core.
//
// Invariants the core may assume hold (front ends are responsible for
// establishing them; Validate checks them explicitly so a fault surfaces
// close to its cause instead of as a confusing panic deep in S1):
//
//   - $end has code 0; $start has code NumTerminals.
//   - Productions are ordered by LHS, and production 0 is the synthetic
//     $start -> S $end production, where S is the user's declared start
//     symbol.
//   - FirstProductionForNonterminal[n] gives the offset into Productions at
//     which the productions for nonterminal (n+NumTerminals) begin; the
//     slice has NumNonterminals()+1 entries, the last being len(Productions),
//     so that productions for n span
//     [FirstProductionForNonterminal[n], FirstProductionForNonterminal[n+1]).
//   - Every RHS symbol code lies in [0, NumSymbols()).
type Definition struct {
	// SymbolNames maps every symbol code to a display name, for diagnostics.
	SymbolNames []string

	NumTerminals int

	Productions []Production

	// FirstProductionForNonterminal is keyed by nonterminal INDEX (symbol
	// code minus NumTerminals), not by symbol code.
	FirstProductionForNonterminal []int
}

// NumSymbols returns the total number of terminal and nonterminal codes.
func (d *Definition) NumSymbols() int {
	return len(d.SymbolNames)
}

// NumNonterminals returns the number of nonterminal codes.
func (d *Definition) NumNonterminals() int {
	return d.NumSymbols() - d.NumTerminals
}

// StartNonterminal returns the code of the synthetic $start nonterminal.
func (d *Definition) StartNonterminal() Symbol {
	return Symbol(d.NumTerminals)
}

// IsTerminal reports whether sym is a terminal code.
func (d *Definition) IsTerminal(sym Symbol) bool {
	return int(sym) < d.NumTerminals
}

// NonterminalIndex converts a nonterminal symbol code into a dense index
// usable against FirstProductionForNonterminal and GOTO columns.
func (d *Definition) NonterminalIndex(sym Symbol) int {
	return int(sym) - d.NumTerminals
}

// Name returns the display name for a symbol code, or a placeholder if the
// code is out of range.
func (d *Definition) Name(sym Symbol) string {
	if int(sym) < 0 || int(sym) >= len(d.SymbolNames) {
		return fmt.Sprintf("<symbol %d>", sym)
	}
	return d.SymbolNames[sym]
}

// ProductionsFor returns the productions whose LHS is the given nonterminal
// symbol code.
func (d *Definition) ProductionsFor(nt Symbol) []Production {
	idx := d.NonterminalIndex(nt)
	if idx < 0 || idx+1 >= len(d.FirstProductionForNonterminal) {
		return nil
	}
	lo := d.FirstProductionForNonterminal[idx]
	hi := d.FirstProductionForNonterminal[idx+1]
	return d.Productions[lo:hi]
}

// Validate checks the structural invariants documented on Definition and
// returns a descriptive error for the first one it finds broken. Front ends
// should call this before handing a Definition to the processor; the core
// itself does not re-validate on every call, since doing so would turn an
// O(states) pipeline into one with an extra O(grammar) pass per stage for no
// benefit once a grammar is known good.
func (d *Definition) Validate() error {
	if d.NumTerminals <= 0 {
		return fmt.Errorf("grammar: NumTerminals must be positive (got %d)", d.NumTerminals)
	}
	if d.NumSymbols() <= d.NumTerminals {
		return fmt.Errorf("grammar: no nonterminals defined (NumSymbols=%d, NumTerminals=%d)", d.NumSymbols(), d.NumTerminals)
	}
	if len(d.Productions) == 0 {
		return fmt.Errorf("grammar: no productions defined")
	}
	if len(d.FirstProductionForNonterminal) != d.NumNonterminals()+1 {
		return fmt.Errorf("grammar: FirstProductionForNonterminal has %d entries, want %d",
			len(d.FirstProductionForNonterminal), d.NumNonterminals()+1)
	}
	for i := 1; i < len(d.FirstProductionForNonterminal); i++ {
		if d.FirstProductionForNonterminal[i] < d.FirstProductionForNonterminal[i-1] {
			return fmt.Errorf("grammar: FirstProductionForNonterminal is not non-decreasing at index %d", i)
		}
	}
	if d.FirstProductionForNonterminal[len(d.FirstProductionForNonterminal)-1] != len(d.Productions) {
		return fmt.Errorf("grammar: FirstProductionForNonterminal must end at len(Productions)=%d, got %d",
			len(d.Productions), d.FirstProductionForNonterminal[len(d.FirstProductionForNonterminal)-1])
	}

	p0 := d.Productions[0]
	if p0.Code != 0 || p0.LHS != d.StartNonterminal() || len(p0.RHS) != 2 || p0.RHS[1] != EndOfInput {
		return fmt.Errorf("grammar: production 0 must be the synthetic $start -> S $end, got %s", p0)
	}

	for i, p := range d.Productions {
		if p.Code != i {
			return fmt.Errorf("grammar: production at index %d has Code %d", i, p.Code)
		}
		if int(p.LHS) < d.NumTerminals || int(p.LHS) >= d.NumSymbols() {
			return fmt.Errorf("grammar: production %d has non-nonterminal LHS %d", i, p.LHS)
		}
		for _, sym := range p.RHS {
			if int(sym) < 0 || int(sym) >= d.NumSymbols() {
				return fmt.Errorf("grammar: production %d references out-of-range symbol %d", i, sym)
			}
		}
	}

	return nil
}
