// Package report renders an HTML conflict report from a completed
// processor outcome, for pasting into a build log or opening in a browser
// after a grammar fails to resolve cleanly. It depends only on the
// inspection surface internal/process.Outcome exposes (§6) and never
// reruns any analysis.
package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/google/uuid"

	"github.com/dekarrin/lrgen/internal/diag"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// StateRow is one row of the report's per-state conflict table.
type StateRow struct {
	State   int
	Stage   string
	Entries []EntryRow
}

// EntryRow is one diagnostic entry attached to a state.
type EntryRow struct {
	Severity string
	Kind     string
	Message  string
}

// Data is everything the report template needs.
type Data struct {
	RunID       string
	GrammarName string
	States      []StateRow
}

const tmplSource = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>lrgen conflict report: {{.GrammarName}}</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.severity-error { color: #b00020; font-weight: bold; }
.severity-warning { color: #a06000; }
</style>
</head>
<body>
<h1>Conflict report</h1>
<p>Run: {{.RunID}}</p>
<table>
<tr><th>State</th><th>Resolution stage</th><th>Diagnostics</th></tr>
{{range .States}}
<tr>
<td>{{.State}}</td>
<td>{{.Stage}}</td>
<td>
{{range .Entries}}
<div class="severity-{{.Severity}}">[{{.Kind}}] {{.Message}}</div>
{{end}}
</td>
</tr>
{{end}}
</table>
</body>
</html>
`

var tmpl = template.Must(template.New("report").Parse(tmplSource))

// Build assembles report Data from raw diagnostics and a resolution
// profile, tagging the report with a fresh run ID unless runID is already
// set (a caller that already minted one for process.Run can pass it
// through so the report correlates with that run).
func Build(grammarName string, g *grammar.Definition, profile []diag.Stage, diagnostics []diag.Diagnostic, runID uuid.UUID) Data {
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	byState := make(map[int][]diag.Diagnostic)
	for _, d := range diagnostics {
		byState[d.State] = append(byState[d.State], d)
	}

	var states []StateRow
	for state, stage := range profile {
		entries := byState[state]
		if stage == diag.StageLR0 && len(entries) == 0 {
			continue
		}
		row := StateRow{State: state, Stage: stage.String()}
		for _, e := range entries {
			row.Entries = append(row.Entries, EntryRow{
				Severity: e.Severity.String(),
				Kind:     e.Kind.String(),
				Message:  e.Message,
			})
		}
		states = append(states, row)
	}

	return Data{
		RunID:       runID.String(),
		GrammarName: grammarName,
		States:      states,
	}
}

// Render writes the HTML report to w.
func Render(w io.Writer, data Data) error {
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("report: rendering: %w", err)
	}
	return nil
}
