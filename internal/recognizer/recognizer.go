// Package recognizer is a thin LR driver: given an emitted ACTION/GOTO
// table and a token stream, it runs the standard shift-reduce loop and
// reports whether the input is in the grammar's language, along with the
// sequence of productions reduced (a rightmost derivation in reverse, the
// same shape a parser's semantic-action phase would consume upstream of
// this module's scope).
package recognizer

import (
	"fmt"

	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lexspec"
	"github.com/dekarrin/lrgen/internal/lrtable"
)

// Result is the outcome of recognizing one input string.
type Result struct {
	Accepted   bool
	Reductions []int // production codes, in the order they were reduced
}

// SyntaxError reports that the parser could not continue: no ACTION cell
// was defined for the state/lookahead pair encountered.
type SyntaxError struct {
	State    int
	Terminal grammar.Symbol
	Offset   int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("recognizer: unexpected token %d at offset %d (state %d)", e.Terminal, e.Offset, e.State)
}

// Run tokenizes input with spec and drives table over the resulting token
// stream, implicitly appending the $end marker.
func Run(g *grammar.Definition, table *lrtable.Table, spec lexspec.Spec, input string) (Result, error) {
	tokens, err := spec.Scan(input)
	if err != nil {
		return Result{}, fmt.Errorf("recognizer: %w", err)
	}

	var states []int
	states = append(states, 0)
	var result Result

	pos := 0
	nextTerminal := func() (grammar.Symbol, int) {
		if pos >= len(tokens) {
			return grammar.EndOfInput, len(input)
		}
		return tokens[pos].Terminal, tokens[pos].Offset
	}

	for {
		state := states[len(states)-1]
		term, offset := nextTerminal()

		action := table.Action[state][term]
		switch action.Kind {
		case lrtable.ActionShift:
			states = append(states, action.Arg)
			pos++

		case lrtable.ActionReduce:
			prod := g.Productions[action.Arg]
			result.Reductions = append(result.Reductions, prod.Code)

			if prod.Code == 0 {
				// Reducing the synthetic $start -> S $end production means
				// the whole input has been recognized; there is no GOTO
				// entry for $start itself since nothing ever shifts it.
				result.Accepted = true
				return result, nil
			}

			if len(prod.RHS) > 0 {
				states = states[:len(states)-len(prod.RHS)]
			}
			from := states[len(states)-1]
			dest := table.Goto[from][g.NonterminalIndex(prod.LHS)]
			if dest == lrtable.NoGoto {
				return result, fmt.Errorf("recognizer: no goto from state %d on %s", from, g.Name(prod.LHS))
			}
			states = append(states, dest)

		default:
			return result, &SyntaxError{State: state, Terminal: term, Offset: offset}
		}
	}
}
