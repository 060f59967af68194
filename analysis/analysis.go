/*
Package analysis computes FIRST (§4.5) and FOLLOW (§4.6) over the flat
BNF grammar produced by package desugar, as two worklist fixpoints.

Per-rule and per-nonterminal sets are kept in gods treeset.Sets rather
than plain Go maps, following the style of
lr/tables.go's use of treeset/arraylist for CFSM states and edges: a
treeset keeps its elements in comparator order (numeric SymId order),
so iterating a set is deterministic (§5 "Ordering guarantees"). The
table builder sorts its columns by name separately.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package analysis

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/llgen/llgen"
)

// Epsilon is the distinguished marker used inside FIRST sets to record
// nullability (§3 "Symbol classification": "never appears as a real
// symbol"). It is chosen outside the range of valid SymIds so it can
// never collide with an interned symbol.
const Epsilon llgen.SymId = -2

// symComparator orders SymIds (and Epsilon) by their numeric value, so
// treeset.Set.Values() returns elements in a stable, reproducible
// order — mirrors lr/tables.go's stateComparator.
func symComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(llgen.SymId)), int(b.(llgen.SymId)))
}

func newSymSet(syms ...llgen.SymId) *treeset.Set {
	s := treeset.NewWith(symComparator)
	for _, sym := range syms {
		s.Add(sym)
	}
	return s
}

// symSlice extracts a *treeset.Set's members back into a []llgen.SymId,
// in comparator order.
func symSlice(s *treeset.Set) []llgen.SymId {
	vals := s.Values()
	out := make([]llgen.SymId, len(vals))
	for i, v := range vals {
		out[i] = v.(llgen.SymId)
	}
	return out
}
