// Package process hosts the processor context: the single entry point that
// orchestrates S1 through S5 over a grammar.Definition and returns either a
// complete table plus any warnings, or a fatal error. It owns every piece of
// mutable state for one invocation; concurrent grammars are processed by
// constructing separate Options/Run calls, never by sharing a context.
package process

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/diag"
	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lookahead"
	"github.com/dekarrin/lrgen/internal/lrtable"
)

// Options controls a single processor run.
type Options struct {
	// ForceLalr1 skips the SLR(1) pass entirely and computes LALR(1)
	// lookaheads for every conflict-bearing state. Slower, but gives every
	// state the most precise lookahead the engine can produce, which is
	// occasionally worth it purely for diagnostic quality.
	ForceLalr1 bool
}

// fatalConflictsError reports that the grammar has at least one
// reduce/reduce conflict and table emission was aborted. It follows the
// same shape as tunaq's interpreterError: a technical message plus the
// diagnostics that caused it, with room to wrap an underlying cause even
// though nothing currently produces one.
type fatalConflictsError struct {
	diagnostics []diag.Diagnostic
	wrap        error
}

func (e *fatalConflictsError) Error() string {
	return fmt.Sprintf("grammar has %d fatal reduce/reduce conflict(s), table emission aborted", len(e.diagnostics))
}

func (e *fatalConflictsError) Unwrap() error {
	return e.wrap
}

// Diagnostics returns the fatal diagnostics that caused the run to abort.
func (e *fatalConflictsError) Diagnostics() []diag.Diagnostic {
	return e.diagnostics
}

// Outcome is a successful run's complete result: the emitted table, plus the
// inspection surface external reporters read (§6) — the state graph, the
// lookahead engine's DirectRead/Read/Follow sets and per-item lookaheads,
// and any warnings. The lookback relation is not stored;
// lookahead.Lookback recomputes it on demand.
type Outcome struct {
	RunID uuid.UUID

	Automaton *automaton.Automaton
	Reports   []automaton.StateReport
	Lookahead lookahead.Result
	Table     *lrtable.Table

	// Diagnostics holds only warnings on a successful Outcome; fatal
	// diagnostics are returned as an error instead (§7's "never both").
	Diagnostics []diag.Diagnostic
}

// Run executes S1 through S5 over g. On success it returns a complete
// Outcome and a nil error. On a fatal reduce/reduce conflict it returns a
// nil Outcome and an error satisfying the diagnostics-carrying interface
// above; no partial table is ever returned alongside an error.
func Run(g *grammar.Definition, opts Options) (*Outcome, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("process: invalid grammar: %w", err)
	}

	a := automaton.Build(g)
	reports := automaton.Classify(g, a)
	la := lookahead.Compute(g, a, reports, opts.ForceLalr1)

	var fatal []diag.Diagnostic
	var warnings []diag.Diagnostic
	for _, d := range la.Diagnostics {
		if d.Severity == diag.SeverityError {
			fatal = append(fatal, d)
		} else {
			warnings = append(warnings, d)
		}
	}

	if len(fatal) > 0 {
		return nil, &fatalConflictsError{diagnostics: fatal}
	}

	table := lrtable.Emit(g, a, reports, la)

	return &Outcome{
		RunID:       uuid.New(),
		Automaton:   a,
		Reports:     reports,
		Lookahead:   la,
		Table:       table,
		Diagnostics: warnings,
	}, nil
}
