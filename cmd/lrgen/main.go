/*
Lrgen builds an LALR(1) parser table from a grammar specification file.

It reads a grammar file describing a lexer (regex terminal rules) and a
context-free grammar, runs it through the grammar processor, and writes the
resulting ACTION/GOTO table to disk, along with an HTML conflict report. The
report is written on every successful run, including for a grammar with no
conflicts.

Usage:

	lrgen [flags]

The flags are:

	-g, --grammar FILE
		The grammar specification file to process. Defaults to "grammar.txt".

	-o, --output FILE
		Where to write the binary parser table. Defaults to "parser.tab".

	-r, --report FILE
		Where to write the HTML conflict report. Defaults to "report.html".

	-c, --config FILE
		A TOML config file supplying defaults for the above, plus processor
		options. Defaults to "lrgen.toml"; a missing file is not an error.

	--force-lalr1
		Skip the SLR(1) pass and compute LALR(1) lookaheads for every
		conflict-bearing state.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/lrgen/internal/config"
	"github.com/dekarrin/lrgen/internal/frontend"
	"github.com/dekarrin/lrgen/internal/process"
	"github.com/dekarrin/lrgen/internal/report"
	"github.com/dekarrin/lrgen/internal/tableio"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue reading the grammar file or its configuration.
	ExitInitError

	// ExitFatalConflict indicates the grammar had an unresolvable
	// reduce/reduce conflict and no table was emitted.
	ExitFatalConflict
)

var (
	returnCode  int
	configFile  = pflag.StringP("config", "c", "lrgen.toml", "TOML config file supplying defaults")
	grammarFile = pflag.StringP("grammar", "g", "", "Grammar specification file to process")
	outputFile  = pflag.StringP("output", "o", "", "Where to write the binary parser table")
	reportFile  = pflag.StringP("report", "r", "", "Where to write the HTML conflict report")
	forceLalr1  = pflag.Bool("force-lalr1", false, "Skip the SLR(1) pass and always compute LALR(1)")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	applyFlagOverrides(&cfg)

	source, err := os.ReadFile(cfg.GrammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: reading grammar file: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	def, spec, err := frontend.Parse(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	_ = spec // retained for the recognizer; not exercised by table emission itself

	outcome, err := process.Run(def, process.Options{ForceLalr1: cfg.ForceLalr1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitFatalConflict
		return
	}

	for _, d := range outcome.Diagnostics {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", d.Message)
	}

	data, err := tableio.Encode(outcome.Table)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	if err := os.WriteFile(cfg.TablePath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing table: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	reportData := report.Build(cfg.GrammarPath, def, outcome.Lookahead.ResolutionProfile, outcome.Diagnostics, outcome.RunID)
	f, err := os.Create(cfg.ReportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: creating report file: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer f.Close()
	if err := report.Render(f, reportData); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	fmt.Printf("wrote %d states to %s (run %s)\n", len(outcome.Automaton.States), cfg.TablePath, outcome.RunID)
	returnCode = ExitSuccess
}

func applyFlagOverrides(cfg *config.Config) {
	if *grammarFile != "" {
		cfg.GrammarPath = *grammarFile
	}
	if *outputFile != "" {
		cfg.TablePath = *outputFile
	}
	if *reportFile != "" {
		cfg.ReportPath = *reportFile
	}
	if *forceLalr1 {
		cfg.ForceLalr1 = true
	}
}
