// Package lexspec describes the regex-based lexer a generated parser runs
// ahead of its ACTION/GOTO table. It is deliberately much smaller than
// tunaq's embedded ictiobus/lex package (no lexer states, no swap-state
// actions): this module's grammar files describe a single flat set of
// terminal patterns, tried in declaration order, which is all an LALR(1)
// generator's own recognizer needs.
package lexspec

import (
	"fmt"
	"regexp"

	"github.com/dekarrin/lrgen/internal/grammar"
)

// Rule is one lexer rule: match Pattern against the front of the remaining
// input; on a match, the recognized text is a token of class Terminal. A
// Rule with Discard set produces no token (used for whitespace and
// comments).
type Rule struct {
	Terminal grammar.Symbol
	Name     string
	Pattern  *regexp.Regexp
	Discard  bool
}

// Spec is an ordered set of lexer rules. Rules are tried in order; the
// first whose pattern matches a non-empty prefix of the remaining input
// wins, mirroring tunaq's lex package "first matching class in declared
// order" semantics (ictiobus/lex/lazy.go's selectMatch), simplified since
// this module has no lexer-state machine to factor the choice through.
type Spec struct {
	Rules []Rule
}

// Compile turns a rule's source regex text into a Rule, anchoring it to the
// start of the input the way a token scanner requires.
func Compile(name string, sym grammar.Symbol, pattern string, discard bool) (Rule, error) {
	anchored := "^(?:" + pattern + ")"
	re, err := regexp.Compile(anchored)
	if err != nil {
		return Rule{}, fmt.Errorf("lexspec: rule %q: %w", name, err)
	}
	return Rule{Terminal: sym, Name: name, Pattern: re, Discard: discard}, nil
}

// Token is one lexical unit produced by scanning: a terminal's symbol code
// alongside the exact text matched and its byte offset in the source.
type Token struct {
	Terminal grammar.Symbol
	Lexeme   string
	Offset   int
}

// ScanError reports that no rule in a Spec matched at a given offset.
type ScanError struct {
	Offset int
	Near   string
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("lexspec: no rule matches input at offset %d (near %q)", e.Offset, e.Near)
}

// Scan tokenizes input completely, discarding Discard-rule matches (e.g.
// whitespace), and returns every token found in order. It stops and returns
// a *ScanError the first time no rule matches the remaining input.
func (s Spec) Scan(input string) ([]Token, error) {
	var tokens []Token
	offset := 0

	for offset < len(input) {
		rest := input[offset:]

		matched := false
		for _, r := range s.Rules {
			loc := r.Pattern.FindStringIndex(rest)
			if loc == nil || loc[0] != 0 || loc[1] == 0 {
				continue
			}
			lexeme := rest[:loc[1]]
			if !r.Discard {
				tokens = append(tokens, Token{Terminal: r.Terminal, Lexeme: lexeme, Offset: offset})
			}
			offset += loc[1]
			matched = true
			break
		}

		if !matched {
			near := rest
			if len(near) > 20 {
				near = near[:20]
			}
			return tokens, &ScanError{Offset: offset, Near: near}
		}
	}

	return tokens, nil
}
