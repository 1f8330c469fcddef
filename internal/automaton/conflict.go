package automaton

import (
	"github.com/dekarrin/lrgen/internal/grammar"
)

// StateClass categorizes a state by how much lookahead work it demands when
// the table emitter lays down its reduce actions.
type StateClass int

const (
	// ClassShiftOnly means the state has no final items at all: every
	// action in it is a shift or a goto, so no lookahead is needed.
	ClassShiftOnly StateClass = iota

	// ClassSingleReduce means the state has exactly one final item and no
	// competing shift on a terminal. Its reduce action is taken
	// unconditionally: the lookahead engine computes no lookahead set for
	// it, and the table emitter writes the reduce on every terminal.
	ClassSingleReduce

	// ClassNeedsLookahead means the state has either more than one final
	// item (reduce/reduce potential) or a final item alongside a shift on
	// some terminal (shift/reduce potential). Disambiguating its actions
	// requires a computed lookahead set, not just the LR(0) skeleton.
	ClassNeedsLookahead
)

func (c StateClass) String() string {
	switch c {
	case ClassShiftOnly:
		return "shift-only"
	case ClassSingleReduce:
		return "single-reduce"
	case ClassNeedsLookahead:
		return "needs-lookahead"
	default:
		return "unknown"
	}
}

// StateReport is the S2 classification of a single state: its final items
// (candidates for a reduce action), the terminals it shifts on, and the
// resulting StateClass.
type StateReport struct {
	State          int
	FinalItems     []Item
	ShiftTerminals []grammar.Symbol
	Class          StateClass
}

// Classify runs S2 over every state of a, returning one StateReport per
// state in state-number order.
func Classify(g *grammar.Definition, a *Automaton) []StateReport {
	reports := make([]StateReport, len(a.States))

	for _, st := range a.States {
		var finals []Item
		for _, it := range st.Items.Sorted() {
			if it.IsFinal(g) {
				finals = append(finals, it)
			}
		}

		var shifts []grammar.Symbol
		for _, tr := range st.Outgoing {
			if tr.IsTerminal {
				shifts = append(shifts, tr.Symbol)
			}
		}

		class := ClassShiftOnly
		switch {
		case len(finals) > 1:
			class = ClassNeedsLookahead
		case len(finals) == 1 && len(shifts) > 0:
			class = ClassNeedsLookahead
		case len(finals) == 1:
			class = ClassSingleReduce
		}

		reports[st.Number] = StateReport{
			State:          st.Number,
			FinalItems:     finals,
			ShiftTerminals: shifts,
			Class:          class,
		}
	}

	return reports
}

// NeedsLookahead reports whether any state in reports requires a computed
// lookahead set to resolve its reduce actions. The processor uses this to
// skip S3/S4 entirely for grammars whose automaton is already LR(0)-clean.
func NeedsLookahead(reports []StateReport) bool {
	for _, r := range reports {
		if r.Class == ClassNeedsLookahead {
			return true
		}
	}
	return false
}
