// Package frontend parses the human-written grammar specification format
// this module's CLI accepts and turns it into the two inputs the core and
// the recognizer need: a grammar.Definition and a lexspec.Spec. It is
// intentionally much smaller than tunaq's own "fishi" markdown-section
// front end, since this format only needs three sections instead of a full
// literate-programming document.
package frontend

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dekarrin/lrgen/internal/grammar"
	"github.com/dekarrin/lrgen/internal/lexspec"
)

var fold = cases.Fold()

// foldEqual compares two strings for case-insensitive equality the way the
// scanner recognizes section headers regardless of how an author capitalizes
// them ("Terminals:", "TERMINALS:", "terminals:" are all the same header).
func foldEqual(a, b string) bool {
	return fold.String(a) == fold.String(b)
}

type section int

const (
	sectionNone section = iota
	sectionTerminals
	sectionStart
	sectionProductions
)

// rawProduction is one parsed "LHS -> RHS1 RHS2 ..." line before symbol
// names have been resolved to codes.
type rawProduction struct {
	lhs string
	rhs []string
}

// Parse reads a grammar specification document and produces the grammar
// definition and lexer spec the rest of the pipeline consumes.
func Parse(source string) (*grammar.Definition, *lexspec.Spec, error) {
	var (
		cur         section
		startSymbol string
		termOrder   []string
		termPattern = map[string]string{}
		rawProds    []rawProduction
		lastLHS     string
	)

	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if header, inline, ok := sectionHeader(line); ok {
			cur = header
			if header == sectionStart && inline != "" {
				startSymbol = inline
			}
			continue
		}

		switch cur {
		case sectionTerminals:
			name, pattern, err := parseTerminalLine(line)
			if err != nil {
				return nil, nil, fmt.Errorf("frontend: line %d: %w", lineNum, err)
			}
			if _, exists := termPattern[name]; exists {
				return nil, nil, fmt.Errorf("frontend: line %d: terminal %q declared twice", lineNum, name)
			}
			termOrder = append(termOrder, name)
			termPattern[name] = pattern

		case sectionStart:
			startSymbol = line

		case sectionProductions:
			prod, continued, err := parseProductionLine(line, lastLHS)
			if err != nil {
				return nil, nil, fmt.Errorf("frontend: line %d: %w", lineNum, err)
			}
			rawProds = append(rawProds, prod)
			if !continued {
				lastLHS = prod.lhs
			}

		default:
			return nil, nil, fmt.Errorf("frontend: line %d: content before any section header", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("frontend: %w", err)
	}

	if startSymbol == "" {
		return nil, nil, fmt.Errorf("frontend: no start section given")
	}
	if len(rawProds) == 0 {
		return nil, nil, fmt.Errorf("frontend: no productions given")
	}

	return build(startSymbol, termOrder, termPattern, rawProds)
}

// sectionHeader recognizes a line as a section header, case-insensitively.
// "start:" may carry its value inline on the same line ("start: Expr");
// "terminals:" and "productions:" always introduce a following block.
func sectionHeader(line string) (sec section, inline string, ok bool) {
	for _, h := range []struct {
		prefix string
		sec    section
	}{
		{"terminals:", sectionTerminals},
		{"start:", sectionStart},
		{"productions:", sectionProductions},
	} {
		if len(line) < len(h.prefix) {
			continue
		}
		if foldEqual(line[:len(h.prefix)], h.prefix) {
			return h.sec, strings.TrimSpace(line[len(h.prefix):]), true
		}
	}
	return sectionNone, "", false
}

// parseTerminalLine parses `NAME = "pattern"`.
func parseTerminalLine(line string) (name, pattern string, err error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed terminal declaration %q, want NAME = \"pattern\"", line)
	}
	name = strings.TrimSpace(parts[0])
	raw := strings.TrimSpace(parts[1])
	pattern, err = strconv.Unquote(raw)
	if err != nil {
		return "", "", fmt.Errorf("terminal %q: pattern must be a quoted string: %w", name, err)
	}
	return name, pattern, nil
}

// parseProductionLine parses either "LHS -> RHS1 RHS2 ..." or a continuation
// line "| RHS1 RHS2 ..." referring to the previous LHS. An RHS of exactly
// "ε" or an empty RHS list denotes an empty production.
func parseProductionLine(line, lastLHS string) (rawProduction, bool, error) {
	if strings.HasPrefix(line, "|") {
		if lastLHS == "" {
			return rawProduction{}, false, fmt.Errorf("continuation line %q has no preceding LHS", line)
		}
		rhs := parseRHS(strings.TrimPrefix(line, "|"))
		return rawProduction{lhs: lastLHS, rhs: rhs}, true, nil
	}

	parts := strings.SplitN(line, "->", 2)
	if len(parts) != 2 {
		return rawProduction{}, false, fmt.Errorf("malformed production %q, want LHS -> RHS", line)
	}
	lhs := strings.TrimSpace(parts[0])
	rhs := parseRHS(parts[1])
	return rawProduction{lhs: lhs, rhs: rhs}, false, nil
}

func parseRHS(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 1 && fields[0] == "ε" {
		return nil
	}
	return fields
}

// build resolves symbol names to dense codes, augments the grammar with the
// synthetic $start production, and compiles the lexer spec.
func build(startSymbol string, termOrder []string, termPattern map[string]string, rawProds []rawProduction) (*grammar.Definition, *lexspec.Spec, error) {
	code := map[string]grammar.Symbol{"$end": grammar.EndOfInput}
	names := []string{"$end"}

	for _, name := range termOrder {
		code[name] = grammar.Symbol(len(names))
		names = append(names, name)
	}
	numTerminals := len(names)

	code["$start"] = grammar.Symbol(len(names))
	names = append(names, "$start")

	nonterminalOf := func(name string) grammar.Symbol {
		if sym, ok := code[name]; ok {
			return sym
		}
		sym := grammar.Symbol(len(names))
		code[name] = sym
		names = append(names, name)
		return sym
	}
	nonterminalOf(startSymbol)
	for _, rp := range rawProds {
		nonterminalOf(rp.lhs)
	}

	// Resolve RHS symbols, treating any unseen bare identifier as a
	// nonterminal (a front end has no separate "declare nonterminal"
	// section; anything not a declared terminal is one).
	resolveSymbol := func(name string) (grammar.Symbol, error) {
		if sym, ok := code[name]; ok {
			return sym, nil
		}
		return nonterminalOf(name), nil
	}

	startIsLHS := false
	for _, rp := range rawProds {
		if rp.lhs == startSymbol {
			startIsLHS = true
			break
		}
	}
	if !startIsLHS {
		return nil, nil, fmt.Errorf("frontend: start symbol %q never appears as a production LHS", startSymbol)
	}
	startSym := code[startSymbol]

	type builtProd struct {
		lhs grammar.Symbol
		rhs []grammar.Symbol
	}
	built := []builtProd{{lhs: code["$start"], rhs: []grammar.Symbol{startSym, grammar.EndOfInput}}}

	for _, rp := range rawProds {
		lhs := nonterminalOf(rp.lhs)
		rhs := make([]grammar.Symbol, len(rp.rhs))
		for i, name := range rp.rhs {
			sym, err := resolveSymbol(name)
			if err != nil {
				return nil, nil, err
			}
			rhs[i] = sym
		}
		built = append(built, builtProd{lhs: lhs, rhs: rhs})
	}

	// Sort productions by LHS nonterminal index, production 0 pinned first.
	numNonterminals := len(names) - numTerminals
	byLHS := make([][]builtProd, numNonterminals)
	for _, p := range built[1:] {
		idx := int(p.lhs) - numTerminals
		byLHS[idx] = append(byLHS[idx], p)
	}

	def := &grammar.Definition{
		SymbolNames:                   names,
		NumTerminals:                  numTerminals,
		FirstProductionForNonterminal: make([]int, numNonterminals+1),
	}
	def.Productions = append(def.Productions, grammar.Production{
		Code: 0,
		LHS:  built[0].lhs,
		RHS:  built[0].rhs,
	})

	startIdx := int(code["$start"]) - numTerminals
	def.FirstProductionForNonterminal[startIdx] = 0
	def.FirstProductionForNonterminal[startIdx+1] = 1

	offset := 1
	for idx := 0; idx < numNonterminals; idx++ {
		if idx == startIdx {
			continue
		}
		def.FirstProductionForNonterminal[idx] = offset
		for _, p := range byLHS[idx] {
			def.Productions = append(def.Productions, grammar.Production{
				Code: len(def.Productions),
				LHS:  p.lhs,
				RHS:  p.rhs,
			})
			offset++
		}
		def.FirstProductionForNonterminal[idx+1] = offset
	}

	if err := def.Validate(); err != nil {
		return nil, nil, fmt.Errorf("frontend: built an invalid grammar: %w", err)
	}

	spec := &lexspec.Spec{}
	ws, err := lexspec.Compile("_ws", 0, `[ \t\r\n]+`, true)
	if err != nil {
		return nil, nil, err
	}
	spec.Rules = append(spec.Rules, ws)
	for _, name := range termOrder {
		rule, err := lexspec.Compile(name, code[name], termPattern[name], false)
		if err != nil {
			return nil, nil, err
		}
		spec.Rules = append(spec.Rules, rule)
	}

	return def, spec, nil
}
