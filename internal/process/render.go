package process

import (
	"fmt"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/lrgen/internal/diag"
	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lrtable"
)

// RenderTable produces a human-readable dump of the ACTION/GOTO table using
// rosed's table editor, in the same style tunaq's own lalr1Table.String used
// for its embedded parser generator.
func RenderTable(g *grammar.Definition, t *lrtable.Table) string {
	data := [][]string{}

	headers := []string{"S", "|"}
	for term := 0; term < t.NumTerminals; term++ {
		headers = append(headers, fmt.Sprintf("A:%s", g.Name(grammar.Symbol(term))))
	}
	headers = append(headers, "|")
	for nt := 0; nt < t.NumNonterminals; nt++ {
		sym := grammar.Symbol(nt + g.NumTerminals)
		headers = append(headers, fmt.Sprintf("G:%s", g.Name(sym)))
	}
	data = append(data, headers)

	for state := 0; state < t.NumStates; state++ {
		row := []string{fmt.Sprintf("%d", state), "|"}

		for term := 0; term < t.NumTerminals; term++ {
			row = append(row, cellFor(t.Action[state][term]))
		}

		row = append(row, "|")

		for nt := 0; nt < t.NumNonterminals; nt++ {
			cell := ""
			if dest := t.Goto[state][nt]; dest != lrtable.NoGoto {
				cell = fmt.Sprintf("%d", dest)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func cellFor(a lrtable.Action) string {
	switch a.Kind {
	case lrtable.ActionShift:
		return fmt.Sprintf("s%d", a.Arg)
	case lrtable.ActionReduce:
		return fmt.Sprintf("r%d", a.Arg)
	default:
		return ""
	}
}

// RenderDiagnostics produces a human-readable listing of a run's
// diagnostics, one row per entry, again via rosed's table editor.
func RenderDiagnostics(diags []diag.Diagnostic) string {
	data := [][]string{{"severity", "kind", "state", "message"}}
	for _, d := range diags {
		data = append(data, []string{d.Severity.String(), d.Kind.String(), fmt.Sprintf("%d", d.State), d.Message})
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
