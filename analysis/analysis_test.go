package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen/analysis"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
)

func build(t *testing.T, src string) (*desugar.Result, *symtab.Table, *analysis.FirstSets, bool) {
	t.Helper()
	syms := symtab.New()
	l := lex.New(strings.NewReader(src), syms)
	psink := diag.NewSink()
	root := gparse.New(l, psink).Parse()
	require.NotNil(t, root)
	require.Empty(t, psink.All())

	dsink := diag.NewSink()
	res := desugar.Lower(root, syms, dsink)
	require.Nil(t, dsink.Fatal())

	asink := diag.NewSink()
	first, ok := analysis.BuildFirst(res, syms, asink)
	return res, syms, first, ok
}

func TestTrivialGrammarFirstAndFollow(t *testing.T) {
	res, syms, first, ok := build(t, "S = 'a' ; % a ;")
	require.True(t, ok)

	sRule := res.RulesOfNT[res.UserStart][0]
	firstS := first.Of(sRule)
	require.Len(t, firstS, 1)
	assert.Equal(t, "'a'", syms.Name(firstS[0]))

	endOfInput := syms.Intern("$")
	follow := analysis.BuildFollow(res, first, endOfInput)
	assert.True(t, follow.Contains(res.UserStart, endOfInput))
}

func TestOptionalOperatorFirstIncludesEpsilon(t *testing.T) {
	res, syms, first, ok := build(t, "S = 'a' ? 'b' ;")
	require.True(t, ok)

	// S's single rule is H 'b'; H's alternatives are 'a' and ε.
	sRule := res.RulesOfNT[res.UserStart][0]
	head := res.Rules[sRule].Body[0]
	var sawEpsilon, sawA bool
	for _, rid := range res.RulesOfNT[head] {
		for _, sym := range first.Of(rid) {
			if sym == analysis.Epsilon {
				sawEpsilon = true
			} else if syms.Name(sym) == "'a'" {
				sawA = true
			}
		}
	}
	assert.True(t, sawEpsilon)
	assert.True(t, sawA)
}

func TestLeftRecursionStillConverges(t *testing.T) {
	res, syms, first, ok := build(t, "S = S 'a' | 'b' ;")
	require.True(t, ok)
	firstS := first.OfNonTerminal(res.UserStart)
	var names []string
	for _, s := range firstS {
		names = append(names, syms.Name(s))
	}
	assert.Contains(t, names, "'b'")
}

func TestPurelyLeftRecursiveGrammarDiverges(t *testing.T) {
	syms := symtab.New()
	l := lex.New(strings.NewReader("S = S 'a' ;"), syms)
	psink := diag.NewSink()
	root := gparse.New(l, psink).Parse()
	require.NotNil(t, root)

	dsink := diag.NewSink()
	res := desugar.Lower(root, syms, dsink)
	require.Nil(t, dsink.Fatal())

	asink := diag.NewSink()
	_, ok := analysis.BuildFirst(res, syms, asink)
	assert.False(t, ok)
	found := false
	for _, d := range asink.All() {
		if d.Kind == diag.AnalysisDivergence {
			found = true
		}
	}
	assert.True(t, found)
}
