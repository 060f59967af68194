package analysis

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/symtab"
)

// tracer traces with key 'llgen.analysis'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.analysis")
}

// FirstSets holds the per-rule FIRST worklist state (§4.5): a set for
// every RuleId, plus whether that set has reached its final value.
type FirstSets struct {
	res      *desugar.Result
	sets     map[llgen.RuleId]*treeset.Set
	complete map[llgen.RuleId]bool
}

// BuildFirst runs the FIRST worklist fixpoint (§4.5) to completion. It
// reports AnalysisDivergence and returns ok=false if some rule's FIRST
// never stabilizes — a structurally broken grammar (e.g. a
// nonterminal whose every production is left-recursive with no
// terminal-starting alternative).
func BuildFirst(res *desugar.Result, syms *symtab.Table, sink *diag.Sink) (*FirstSets, bool) {
	fs := &FirstSets{
		res:      res,
		sets:     map[llgen.RuleId]*treeset.Set{},
		complete: map[llgen.RuleId]bool{},
	}
	for _, r := range res.Rules {
		fs.sets[r.ID] = newSymSet()
	}

	for {
		changed := false
		for _, r := range res.Rules {
			if fs.complete[r.ID] {
				continue
			}
			additions, provisional := fs.computeOne(r)
			added := false
			for sym := range additions {
				if !fs.sets[r.ID].Contains(sym) {
					fs.sets[r.ID].Add(sym)
					added = true
				}
			}
			if added {
				changed = true
			}
			if !provisional && !added {
				fs.complete[r.ID] = true
				changed = true // rules citing r can now use its FIRST set
			}
		}
		if !changed {
			break
		}
	}

	// The fixpoint itself always terminates (finite monotone lattice);
	// "complete" legitimately stays false forever for a left-recursive
	// rule that cites itself among a nonterminal's productions (§8
	// scenario 4), so completeness alone cannot signal divergence.
	// A nonterminal whose aggregate FIRST is empty, though, can never
	// start any derivation at all — every one of its alternatives loops
	// back into incompleteness with nothing else to contribute. That is
	// the structural defect §4.5 calls a build failure.
	ok := true
	for a := range res.N {
		if len(fs.OfNonTerminal(a)) == 0 {
			ok = false
			sink.Report(diag.Diagnostic{
				Kind:    diag.AnalysisDivergence,
				Message: fmt.Sprintf("FIRST(%s) never converges to a non-empty set", syms.Name(a)),
			})
		}
	}
	tracer().Infof("FIRST converged for %d/%d rules", len(fs.complete), len(res.Rules))
	return fs, ok
}

// Of returns the finalized FIRST set for rule r, as a plain slice
// (Epsilon included when nullable).
func (fs *FirstSets) Of(r llgen.RuleId) []llgen.SymId {
	return symSlice(fs.sets[r])
}

// Contains reports whether sym is in FIRST(r).
func (fs *FirstSets) Contains(r llgen.RuleId, sym llgen.SymId) bool {
	return fs.sets[r].Contains(sym)
}

// OfNonTerminal is FIRST(A) for a nonterminal: the union of FIRST over
// every one of A's productions.
func (fs *FirstSets) OfNonTerminal(a llgen.SymId) []llgen.SymId {
	seen := map[llgen.SymId]bool{}
	for _, rid := range fs.res.RulesOfNT[a] {
		for _, sym := range fs.Of(rid) {
			seen[sym] = true
		}
	}
	out := make([]llgen.SymId, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	return out
}

// OfSequence computes FIRST(X1...Xn) for an arbitrary symbol sequence
// (used by the FOLLOW builder for a production's suffix β, §4.6), using
// the same left-to-right nullable-prefix traversal as a rule body.
func (fs *FirstSets) OfSequence(body []llgen.SymId) (set map[llgen.SymId]bool, nullable bool) {
	set = map[llgen.SymId]bool{}
	nullable = true
	for _, x := range body {
		if fs.res.T[x] {
			set[x] = true
			nullable = false
			break
		}
		rules := fs.res.RulesOfNT[x]
		nullableHere := false
		for _, rid := range rules {
			for _, sym := range fs.Of(rid) {
				if sym == Epsilon {
					nullableHere = true
					continue
				}
				set[sym] = true
			}
		}
		if !nullableHere {
			nullable = false
			break
		}
	}
	return set, nullable
}

// computeOne is one worklist step for rule r: §4.5's left-to-right
// traversal, stopping at the first terminal or the first nonterminal
// position whose productions are not all complete yet.
func (fs *FirstSets) computeOne(r desugar.Rule) (additions map[llgen.SymId]bool, provisional bool) {
	additions = map[llgen.SymId]bool{}
	reachedEnd := true

	for _, x := range r.Body {
		if fs.res.T[x] {
			additions[x] = true
			reachedEnd = false
			break
		}
		rules := fs.res.RulesOfNT[x]
		if len(rules) == 0 {
			provisional = true
			reachedEnd = false
			break
		}
		nullableHere := false
		incomplete := false
		for _, rid := range rules {
			if !fs.complete[rid] {
				incomplete = true
				continue
			}
			for _, sym := range fs.Of(rid) {
				if sym == Epsilon {
					nullableHere = true
					continue
				}
				additions[sym] = true
			}
		}
		if incomplete {
			provisional = true
			reachedEnd = false
			break
		}
		if !nullableHere {
			reachedEnd = false
			break
		}
	}
	if reachedEnd {
		additions[Epsilon] = true
	}
	return additions, provisional
}
