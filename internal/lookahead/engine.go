package lookahead

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lrgen/internal/automaton"
	"github.com/dekarrin/lrgen/internal/bitset"
	"github.com/dekarrin/lrgen/internal/diag"
	"github.com/dekarrin/lrgen/internal/grammar"
)

// ItemLookahead pairs a conflict state's final item with its resolved
// lookahead set and the stage at which resolution happened.
type ItemLookahead struct {
	State     int
	Item      automaton.Item
	Lookahead bitset.Set
	Resolved  diag.Stage
}

// Result is everything S4 produces, plus the sets external reporters read
// to explain a conflict without rerunning analysis (§6). The lookback
// relation is not stored here; Lookback recomputes it on demand.
type Result struct {
	Nullable Nullable

	// DirectRead, Read, Follow are indexed by nonterminal transition NTIndex.
	DirectRead []bitset.Set
	Read       []bitset.Set
	Follow     []bitset.Set

	// SLRFollow is indexed by nonterminal index; nil if SLR(1) was skipped
	// because the caller forced LALR(1).
	SLRFollow []bitset.Set

	// Lookaheads holds one entry per (state, final item) pair considered,
	// in state-number then item order, for every conflict-bearing state.
	Lookaheads []ItemLookahead

	// ResolutionProfile records, per state, the stage at which it was
	// resolved. LR(0)-clean and single-reduce states are StageLR0.
	ResolutionProfile []diag.Stage

	Diagnostics []diag.Diagnostic
}

// Compute runs S3 and S4: nullability, then SLR(1) Follow (unless
// forceLalr1), then LALR(1) Read/Follow for any state SLR(1) left
// unresolved or if forced, then final conflict classification. A grammar
// with zero conflict-bearing states never enters S3/S4 at all: every state
// is already LR(0)-clean or a single unconditional reduce, so there is no
// lookahead to compute.
func Compute(g *grammar.Definition, a *automaton.Automaton, reports []automaton.StateReport, forceLalr1 bool) Result {
	res := Result{
		ResolutionProfile: make([]diag.Stage, len(a.States)),
	}

	for _, r := range reports {
		if r.Class != automaton.ClassNeedsLookahead {
			res.ResolutionProfile[r.State] = diag.StageLR0
		}
	}

	if !automaton.NeedsLookahead(reports) {
		return res
	}

	nullable := ComputeNullable(g)

	directRead := make([]bitset.Set, a.NumNonterminalTransitions)
	for _, t := range allNonterminalTransitions(a) {
		directRead[t.NTIndex] = DirectRead(g, a, t)
	}

	res.Nullable = nullable
	res.DirectRead = directRead

	unresolved := make(map[int]automaton.StateReport)
	for _, r := range reports {
		if r.Class == automaton.ClassNeedsLookahead {
			unresolved[r.State] = r
		}
	}

	if !forceLalr1 {
		res.SLRFollow = SLRFollow(g, a, nullable)

		for state, r := range unresolved {
			candidates := make([]bitset.Set, len(r.FinalItems))
			for i, it := range r.FinalItems {
				lhs := g.Productions[it.Production].LHS
				candidates[i] = res.SLRFollow[g.NonterminalIndex(lhs)]
			}

			if slrActionsDisjoint(candidates, r.ShiftTerminals) {
				for i, it := range r.FinalItems {
					res.Lookaheads = append(res.Lookaheads, ItemLookahead{
						State:     state,
						Item:      it,
						Lookahead: candidates[i],
						Resolved:  diag.StageSLR1,
					})
				}
				res.ResolutionProfile[state] = diag.StageSLR1
				delete(unresolved, state)
			}
		}
	}

	if len(unresolved) > 0 || forceLalr1 {
		res.Read = Read(g, a, nullable)
		res.Follow = Follow(g, a, nullable, res.Read)

		// forceLalr1 recomputes every conflict-bearing state's lookahead
		// via LALR(1), discarding any SLR(1) candidates already accepted
		// above (there are none when forced, since the SLR branch is
		// skipped entirely in that case).
		targets := unresolved
		if forceLalr1 {
			targets = make(map[int]automaton.StateReport)
			for _, r := range reports {
				if r.Class == automaton.ClassNeedsLookahead {
					targets[r.State] = r
				}
			}
		}

		for state, r := range targets {
			lookaheads := make([]bitset.Set, len(r.FinalItems))
			for i, it := range r.FinalItems {
				lookaheads[i] = LALRLookahead(g, a, res.Follow, state, it)
			}

			for i, it := range r.FinalItems {
				res.Lookaheads = append(res.Lookaheads, ItemLookahead{
					State:     state,
					Item:      it,
					Lookahead: lookaheads[i],
					Resolved:  diag.StageLALR1,
				})
			}
			res.ResolutionProfile[state] = diag.StageLALR1
		}
	}

	res.Diagnostics = classifyFinal(g, a, reports, res.Lookaheads)

	// Any state still flagged needs-lookahead but with no Lookaheads entry
	// recorded (should not happen given the above, but keep the profile
	// honest) is marked Unresolved.
	hasEntries := make(map[int]bool)
	for _, l := range res.Lookaheads {
		hasEntries[l.State] = true
	}
	for _, r := range reports {
		if r.Class == automaton.ClassNeedsLookahead && !hasEntries[r.State] {
			res.ResolutionProfile[r.State] = diag.StageUnresolved
		}
	}

	sort.Slice(res.Lookaheads, func(i, j int) bool {
		if res.Lookaheads[i].State != res.Lookaheads[j].State {
			return res.Lookaheads[i].State < res.Lookaheads[j].State
		}
		if res.Lookaheads[i].Item.Production != res.Lookaheads[j].Item.Production {
			return res.Lookaheads[i].Item.Production < res.Lookaheads[j].Item.Production
		}
		return res.Lookaheads[i].Item.Dot < res.Lookaheads[j].Item.Dot
	})

	return res
}

// slrActionsDisjoint reports whether every candidate lookahead set is
// pairwise disjoint from every other, and disjoint from the state's shift
// terminals — the condition under which SLR(1) resolves a state without
// needing LALR(1) fallback.
func slrActionsDisjoint(candidates []bitset.Set, shiftTerminals []grammar.Symbol) bool {
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			if !candidates[i].DisjointWith(candidates[j]) {
				return false
			}
		}
	}
	if len(candidates) == 0 {
		return true
	}
	shifts := bitset.New(candidates[0].Capacity())
	for _, sym := range shiftTerminals {
		shifts.Add(int(sym))
	}
	for _, c := range candidates {
		if !c.DisjointWith(shifts) {
			return false
		}
	}
	return true
}

// classifyFinal runs the final conflict pass: reduce/reduce
// overlaps are fatal, shift/reduce overlaps are warnings (shift wins and the
// overlapping reduce is simply not written to the table in S5).
func classifyFinal(g *grammar.Definition, a *automaton.Automaton, reports []automaton.StateReport, lookaheads []ItemLookahead) []diag.Diagnostic {
	byState := make(map[int][]ItemLookahead)
	for _, l := range lookaheads {
		byState[l.State] = append(byState[l.State], l)
	}

	var diags []diag.Diagnostic
	for _, r := range reports {
		if r.Class != automaton.ClassNeedsLookahead {
			continue
		}
		entries := byState[r.State]

		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if entries[i].Lookahead.DisjointWith(entries[j].Lookahead) {
					continue
				}
				diags = append(diags, diag.Diagnostic{
					Severity: diag.SeverityError,
					Kind:     diag.KindReduceReduce,
					State:    r.State,
					Message: fmt.Sprintf("reduce/reduce conflict between productions %d and %d",
						entries[i].Item.Production, entries[j].Item.Production),
					InvolvedItems: []int{entries[i].Item.Production, entries[j].Item.Production},
				})
			}
		}

		shifts := bitset.New(g.NumTerminals)
		for _, sym := range r.ShiftTerminals {
			shifts.Add(int(sym))
		}
		for _, e := range entries {
			if e.Lookahead.DisjointWith(shifts) {
				continue
			}
			for _, term := range e.Lookahead.Elements() {
				if shifts.Contains(term) {
					diags = append(diags, diag.Diagnostic{
						Severity:      diag.SeverityWarning,
						Kind:          diag.KindShiftReduce,
						State:         r.State,
						Terminal:      term,
						Message:       fmt.Sprintf("shift/reduce conflict on %s, resolved in favor of shift", g.Name(grammar.Symbol(term))),
						InvolvedItems: []int{e.Item.Production},
					})
				}
			}
		}
	}

	return diags
}
