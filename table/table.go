/*
Package table builds the LL(1) parse table (§4.7): a mapping from
(nonterminal, lookahead terminal) to the RuleId to apply.

Storage reuses lr/sparse.IntMatrix, the teacher's COO/triplet sparse
matrix — a parse table is overwhelmingly EMPTY, and IntMatrix was
already built for exactly this shape of data (it backs the teacher's
own GOTO/ACTION tables). Rows are nonterminals in the order their
first production was emitted; columns are terminals (plus the
end-of-input marker) in sorted-name order, per §5's ordering
guarantee.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package table

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/exp/slices"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/analysis"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/lr/sparse"
	"github.com/llgen/llgen/symtab"
)

// tracer traces with key 'llgen.table'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.table")
}

// ConflictRule marks a cell two productions compete for with no
// tiebreak resolving it (§4.7). Distinct from llgen.NoRule, which
// marks a cell nothing has ever booked.
const ConflictRule llgen.RuleId = -2

// Options configures table construction (§9 "Conflict-resolution
// toggle"). The zero value is the spec's default: tiebreak off.
type Options struct {
	// NullableTiebreak, when true, resolves a conflict between a
	// nullable and a non-nullable production by keeping the
	// non-nullable one, recording a soft "partial booking" warning
	// instead of a hard CONFLICT.
	NullableTiebreak bool
}

// Table is the finished LL(1) parse table, plus whether it qualifies
// as LL(1) (no CONFLICT cell).
type Table struct {
	m     *sparse.IntMatrix
	nt    []llgen.SymId
	ntRow map[llgen.SymId]int
	term  []llgen.SymId
	tCol  map[llgen.SymId]int
	IsLL1 bool
}

// Build constructs the parse table from a desugared grammar and its
// converged FIRST/FOLLOW sets (§4.7). endOfInput is the reserved `$`
// terminal, included as a column and sorted by name like the others.
func Build(res *desugar.Result, first *analysis.FirstSets, follow *analysis.FollowSets, syms *symtab.Table, endOfInput llgen.SymId, sink *diag.Sink, opts Options) *Table {
	nt := nonTerminalOrder(res)
	term := terminalOrder(res, syms, endOfInput)

	t := &Table{
		m:     sparse.NewIntMatrix(len(nt), len(term), int32(llgen.NoRule)),
		nt:    nt,
		ntRow: indexOf(nt),
		term:  term,
		tCol:  indexOf(term),
		IsLL1: true,
	}

	for _, r := range res.Rules {
		row, ok := t.ntRow[r.Head]
		if !ok {
			continue
		}
		rNullable := first.Contains(r.ID, analysis.Epsilon)
		for _, sym := range first.Of(r.ID) {
			if sym == analysis.Epsilon {
				continue
			}
			t.book(sink, opts, syms, row, sym, r, rNullable, first)
		}
		if rNullable {
			for _, sym := range follow.Of(r.Head) {
				t.book(sink, opts, syms, row, sym, r, rNullable, first)
			}
		}
	}

	tracer().Infof("table built: %d rows, %d columns, ll1=%v", len(nt), len(term), t.IsLL1)
	return t
}

// book applies §4.7's cell-assignment rule for production r claiming
// column sym in row's nonterminal.
func (t *Table) book(sink *diag.Sink, opts Options, syms *symtab.Table, row int, sym llgen.SymId, r desugar.Rule, rNullable bool, first *analysis.FirstSets) {
	col, ok := t.tCol[sym]
	if !ok {
		return
	}
	existing := llgen.RuleId(t.m.Value(row, col))
	switch existing {
	case llgen.NoRule:
		t.m.Set(row, col, int32(r.ID))
		return
	case ConflictRule:
		return
	case r.ID:
		return // same production booking the same cell twice (e.g. via FIRST and FOLLOW)
	}

	if opts.NullableTiebreak {
		existingNullable := first.Contains(existing, analysis.Epsilon)
		if rNullable != existingNullable {
			if !rNullable {
				t.m.Set(row, col, int32(r.ID))
			}
			sink.Warnf(0, "partial booking at Table[%s,%s]: rules %d and %d both apply; kept the non-nullable rule over the nullable one",
				syms.Name(t.nt[row]), syms.Name(sym), existing, r.ID)
			return
		}
	}

	t.m.Set(row, col, int32(ConflictRule))
	t.IsLL1 = false
	sink.Report(diag.Diagnostic{
		Kind: diag.LLConflict,
		Message: fmt.Sprintf("conflict at Table[%s,%s]: rules %d and %d both apply",
			syms.Name(t.nt[row]), syms.Name(sym), existing, r.ID),
	})
}

// Lookup returns the RuleId booked at (a, t), or llgen.NoRule /
// ConflictRule.
func (t *Table) Lookup(a, lookahead llgen.SymId) llgen.RuleId {
	row, ok := t.ntRow[a]
	if !ok {
		return llgen.NoRule
	}
	col, ok := t.tCol[lookahead]
	if !ok {
		return llgen.NoRule
	}
	return llgen.RuleId(t.m.Value(row, col))
}

// NonTerminals returns the table's row symbols, in row order.
func (t *Table) NonTerminals() []llgen.SymId {
	return t.nt
}

// Terminals returns the table's column symbols (including the
// end-of-input marker), in column order.
func (t *Table) Terminals() []llgen.SymId {
	return t.term
}

// nonTerminalOrder orders nonterminals (§5) by where their first rule
// appears in the rule list. This is not always creation order: a
// group helper's productions are queued and emitted after helpers
// created later in the same body, and '^' always comes last.
func nonTerminalOrder(res *desugar.Result) []llgen.SymId {
	seen := map[llgen.SymId]bool{}
	var out []llgen.SymId
	for _, r := range res.Rules {
		if !seen[r.Head] {
			seen[r.Head] = true
			out = append(out, r.Head)
		}
	}
	return out
}

// terminalOrder returns every terminal plus endOfInput, sorted by
// printable name (§5 "sorted-name order").
func terminalOrder(res *desugar.Result, syms *symtab.Table, endOfInput llgen.SymId) []llgen.SymId {
	out := make([]llgen.SymId, 0, len(res.T)+1)
	for t := range res.T {
		out = append(out, t)
	}
	out = append(out, endOfInput)
	slices.SortFunc(out, func(a, b llgen.SymId) int {
		return strings.Compare(syms.Name(a), syms.Name(b))
	})
	return out
}

func indexOf(syms []llgen.SymId) map[llgen.SymId]int {
	m := make(map[llgen.SymId]int, len(syms))
	for i, s := range syms {
		m[s] = i
	}
	return m
}
