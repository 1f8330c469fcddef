// Package lrtable implements S5: materializing the dense ACTION and GOTO
// tables from a built automaton, its conflict classification, and its
// resolved lookahead sets.
package lrtable

import (
	"fmt"

	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lookahead"
)

// ActionKind tags a cell of the ACTION table.
type ActionKind int

const (
	ActionFail ActionKind = iota
	ActionShift
	ActionReduce
)

// Action is one cell of the ACTION table.
type Action struct {
	Kind ActionKind
	// Arg is the next state for ActionShift, or the production code for
	// ActionReduce. Meaningless for ActionFail.
	Arg int
}

func (a Action) String() string {
	switch a.Kind {
	case ActionShift:
		return fmt.Sprintf("shift %d", a.Arg)
	case ActionReduce:
		return fmt.Sprintf("reduce %d", a.Arg)
	default:
		return "fail"
	}
}

// NoGoto is the GOTO table's sentinel for "no transition".
const NoGoto = -1

// Table is the emitted parser table: dense 2-D ACTION and GOTO arrays
// indexed as described on the fields below.
type Table struct {
	NumStates       int
	NumTerminals    int
	NumNonterminals int

	// Action is indexed [state][terminal].
	Action [][]Action
	// Goto is indexed [state][nonterminalIndex]; NoGoto if absent.
	Goto [][]int
}

// Emit runs S5 over a built automaton, its S2 classification, and the S4
// lookahead engine's result.
func Emit(g *grammar.Definition, a *automaton.Automaton, reports []automaton.StateReport, la lookahead.Result) *Table {
	t := &Table{
		NumStates:       len(a.States),
		NumTerminals:    g.NumTerminals,
		NumNonterminals: g.NumNonterminals(),
	}

	t.Action = make([][]Action, t.NumStates)
	t.Goto = make([][]int, t.NumStates)
	for s := 0; s < t.NumStates; s++ {
		t.Action[s] = make([]Action, t.NumTerminals)
		t.Goto[s] = make([]int, t.NumNonterminals)
		for n := range t.Goto[s] {
			t.Goto[s][n] = NoGoto
		}
	}

	lookaheadsByState := make(map[int][]lookahead.ItemLookahead)
	for _, l := range la.Lookaheads {
		lookaheadsByState[l.State] = append(lookaheadsByState[l.State], l)
	}

	for _, r := range reports {
		switch r.Class {
		case automaton.ClassNeedsLookahead:
			for _, l := range lookaheadsByState[r.State] {
				code := g.Productions[l.Item.Production].Code
				for _, term := range l.Lookahead.Elements() {
					t.Action[r.State][term] = Action{Kind: ActionReduce, Arg: code}
				}
			}
		case automaton.ClassSingleReduce:
			code := g.Productions[r.FinalItems[0].Production].Code
			for term := 0; term < t.NumTerminals; term++ {
				t.Action[r.State][term] = Action{Kind: ActionReduce, Arg: code}
			}
		}
	}

	for _, st := range a.States {
		for _, tr := range st.Outgoing {
			if tr.IsTerminal {
				// Shift wins: overwrite any reduce cell unconditionally.
				t.Action[tr.Source][tr.Symbol] = Action{Kind: ActionShift, Arg: tr.Dest}
			} else {
				t.Goto[tr.Source][g.NonterminalIndex(tr.Symbol)] = tr.Dest
			}
		}
	}

	return t
}
