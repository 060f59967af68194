package analysis

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/desugar"
)

// FollowSets holds the per-nonterminal FOLLOW worklist state (§4.6).
type FollowSets struct {
	sets map[llgen.SymId]*treeset.Set
}

// BuildFollow runs the FOLLOW worklist fixpoint (§4.6) to completion,
// given an already-converged FirstSets. endOfInput is the reserved `$`
// symbol; FOLLOW(^) is seeded with it.
func BuildFollow(res *desugar.Result, first *FirstSets, endOfInput llgen.SymId) *FollowSets {
	fl := &FollowSets{sets: map[llgen.SymId]*treeset.Set{}}
	for a := range res.N {
		fl.sets[a] = newSymSet()
	}
	fl.sets[res.Start].Add(endOfInput)

	for {
		changed := false
		for _, r := range res.Rules {
			for i, x := range r.Body {
				if !res.N[x] {
					continue
				}
				beta := r.Body[i+1:]
				firstBeta, nullable := first.OfSequence(beta)
				for sym := range firstBeta {
					if sym == Epsilon {
						continue
					}
					if !fl.sets[x].Contains(sym) {
						fl.sets[x].Add(sym)
						changed = true
					}
				}
				if nullable {
					for _, sym := range symSlice(fl.sets[r.Head]) {
						if !fl.sets[x].Contains(sym) {
							fl.sets[x].Add(sym)
							changed = true
						}
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	tracer().Infof("FOLLOW converged for %d nonterminals", len(fl.sets))
	return fl
}

// Of returns the finalized FOLLOW set for nonterminal a.
func (fl *FollowSets) Of(a llgen.SymId) []llgen.SymId {
	return symSlice(fl.sets[a])
}

// Contains reports whether sym is in FOLLOW(a).
func (fl *FollowSets) Contains(a, sym llgen.SymId) bool {
	return fl.sets[a].Contains(sym)
}
