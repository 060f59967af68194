/*
Package check glues every pipeline stage — lex, gparse, desugar,
analysis, table — into the single top-level operation external callers
use (§6): Check reads a grammar source and reports whether it is
LL(1), discarding the whole analysis context on any fatal stage
failure (§5 "on any stage failure, the context is discarded
wholesale... no partial output is emitted to the code generator on
failure").

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package check

import (
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen/analysis"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
	"github.com/llgen/llgen/table"
)

// gtrace traces cross-stage milestones, mirroring lr/doc.go's use of a
// package-wide tracer alongside per-file ones.
func gtrace() tracing.Trace {
	return tracing.Select("llgen.check")
}

// Options configures one Check run (§9 "Conflict-resolution toggle",
// §6 CLI flags). The zero value matches the spec's defaults:
// nullable tiebreak off, normal verbosity, no table-width limit.
type Options struct {
	NullableTiebreak bool
	Verbose          bool
	TableWidthLimit  int
}

// Result is everything a caller needs after a successful Check: the
// flattened grammar, its FIRST/FOLLOW sets, the parse table, and
// every diagnostic collected along the way (fatal or not — Check only
// returns a non-nil error for a stage that could not produce a stable
// result at all).
type Result struct {
	Syms        *symtab.Table
	Grammar     *desugar.Result
	First       *analysis.FirstSets
	Follow      *analysis.FollowSets
	Table       *table.Table
	Diagnostics []diag.Diagnostic
	IsLL1       bool
}

// Check runs the full pipeline over src. A non-nil error means a
// fatal diagnostic aborted the pipeline before a parse table could be
// built (lexical error, grammar syntax error, symbol conflict, or
// FIRST/FOLLOW non-convergence); the caller should report it and stop
// — there is no partial Result to recover. A grammar that parses and
// analyzes cleanly but is not LL(1) is NOT an error: it comes back as
// a Result with IsLL1 false and one or more diag.LLConflict entries in
// Diagnostics, by design (§7: "Analysis divergence and LL conflicts
// are surfaced through the return value of check").
func Check(src io.Reader, opts Options) (*Result, error) {
	syms := symtab.New()
	l := lex.New(src, syms)

	psink := diag.NewSink()
	root := gparse.New(l, psink).Parse()
	if f := psink.Fatal(); f != nil {
		gtrace().Errorf("check aborted in gparse: %v", f)
		return nil, *f
	}

	dsink := diag.NewSink()
	res := desugar.Lower(root, syms, dsink)
	if f := dsink.Fatal(); f != nil {
		gtrace().Errorf("check aborted in desugar: %v", f)
		return nil, *f
	}

	asink := diag.NewSink()
	first, ok := analysis.BuildFirst(res, syms, asink)
	if !ok {
		f := asink.Fatal()
		gtrace().Errorf("check aborted in analysis: %v", f)
		return nil, *f
	}
	endOfInput := syms.Intern("$")
	follow := analysis.BuildFollow(res, first, endOfInput)

	tsink := diag.NewSink()
	tbl := table.Build(res, first, follow, syms, endOfInput, tsink, table.Options{
		NullableTiebreak: opts.NullableTiebreak,
	})

	diags := make([]diag.Diagnostic, 0, len(psink.All())+len(dsink.All())+len(asink.All())+len(tsink.All()))
	diags = append(diags, psink.All()...)
	diags = append(diags, dsink.All()...)
	diags = append(diags, asink.All()...)
	diags = append(diags, tsink.All()...)

	gtrace().Infof("check complete: ll1=%v, %d diagnostics", tbl.IsLL1, len(diags))
	return &Result{
		Syms:        syms,
		Grammar:     res,
		First:       first,
		Follow:      follow,
		Table:       tbl,
		Diagnostics: diags,
		IsLL1:       tbl.IsLL1,
	}, nil
}
