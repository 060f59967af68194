package table_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/analysis"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
	"github.com/llgen/llgen/table"
)

func build(t *testing.T, src string, opts table.Options) (*desugar.Result, *symtab.Table, *table.Table, *diag.Sink) {
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
	require.True(t, ok)
	endOfInput := syms.Intern("$")
	follow := analysis.BuildFollow(res, first, endOfInput)

	tsink := diag.NewSink()
	tb := table.Build(res, first, follow, syms, endOfInput, tsink, opts)
	return res, syms, tb, tsink
}

func TestTrivialGrammarIsLL1(t *testing.T) {
	res, syms, tb, _ := build(t, "S = 'a' ; % a ;", table.Options{})
	assert.True(t, tb.IsLL1)

	sRule := res.RulesOfNT[res.UserStart][0]
	caretRule := res.RulesOfNT[res.Start][0]
	a := syms.Intern("'a'")
	assert.Equal(t, sRule, tb.Lookup(res.UserStart, a))
	assert.Equal(t, caretRule, tb.Lookup(res.Start, a))
}

func TestOptionalOperatorTableUsesFollowForEpsilon(t *testing.T) {
	res, syms, tb, _ := build(t, "S = 'a' ? 'b' ;", table.Options{})
	assert.True(t, tb.IsLL1)

	sRule := res.RulesOfNT[res.UserStart][0]
	helper := res.Rules[sRule].Body[0]
	a := syms.Intern("'a'")
	b := syms.Intern("'b'")

	var aRule, epsRule llgen.RuleId
	for _, rid := range res.RulesOfNT[helper] {
		if len(res.Rules[rid].Body) == 0 {
			epsRule = rid
		} else {
			aRule = rid
		}
	}
	assert.Equal(t, aRule, tb.Lookup(helper, a))
	assert.Equal(t, epsRule, tb.Lookup(helper, b))
}

func TestLeftFactoringNeededIsConflict(t *testing.T) {
	res, syms, tb, sink := build(t, "S = 'a' 'b' | 'a' 'c' ; % a b c ;", table.Options{})
	assert.False(t, tb.IsLL1)
	a := syms.Intern("'a'")
	assert.Equal(t, table.ConflictRule, tb.Lookup(res.UserStart, a))
	found := false
	for _, d := range sink.All() {
		if d.Kind == diag.LLConflict {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLeftRecursionProducesConflict(t *testing.T) {
	res, syms, tb, _ := build(t, "S = S 'a' | 'b' ; % a b ;", table.Options{})
	assert.False(t, tb.IsLL1)
	b := syms.Intern("'b'")
	assert.Equal(t, table.ConflictRule, tb.Lookup(res.UserStart, b))
}

func TestBoundedRepetitionTableAcceptsExactCounts(t *testing.T) {
	res, syms, tb, _ := build(t, "S = 'a' {2,3} ; % a ;", table.Options{})
	assert.True(t, tb.IsLL1)

	sRule := res.RulesOfNT[res.UserStart][0]
	chain := res.Rules[sRule].Body[0]
	a := syms.Intern("'a'")
	rid := tb.Lookup(chain, a)
	assert.NotEqual(t, llgen.NoRule, rid)
	assert.NotEqual(t, table.ConflictRule, rid)
}

func TestRegexCharClassTableAcceptsEachByte(t *testing.T) {
	res, syms, tb, _ := build(t, "S = /[a-c]/ ;", table.Options{})
	assert.True(t, tb.IsLL1)

	sRule := res.RulesOfNT[res.UserStart][0]
	regexSym := res.Rules[sRule].Body[0]
	bodies := res.RulesOfNT[regexSym]
	require.Len(t, bodies, 1)
	classSym := res.Rules[bodies[0]].Body[0]

	for _, lit := range []string{"'a'", "'b'", "'c'"} {
		sym := syms.Intern(lit)
		rid := tb.Lookup(classSym, sym)
		assert.NotEqual(t, llgen.NoRule, rid)
		assert.NotEqual(t, table.ConflictRule, rid)
	}
}

func TestWithoutNullableTiebreakNullableClashIsHardConflict(t *testing.T) {
	// "'a' ? 'a'" desugars to S -> H 'a', H -> 'a' | eps. FOLLOW(H) =
	// {'a'}, so H's eps-rule and 'a'-rule both claim Table[H,'a'];
	// without a tiebreak that is a hard conflict.
	res, syms, tb, sink := build(t, "S = 'a' ? 'a' ; % a ;", table.Options{})
	sRule := res.RulesOfNT[res.UserStart][0]
	helper := res.Rules[sRule].Body[0]
	a := syms.Intern("'a'")
	assert.False(t, tb.IsLL1)
	assert.Equal(t, table.ConflictRule, tb.Lookup(helper, a))
	foundConflict := false
	for _, d := range sink.All() {
		if d.Kind == diag.LLConflict {
			foundConflict = true
		}
	}
	assert.True(t, foundConflict)
}

func TestNullableTiebreakResolvesTheSameConflict(t *testing.T) {
	res, syms, tb, sink := build(t, "S = 'a' ? 'a' ; % a ;", table.Options{NullableTiebreak: true})
	sRule := res.RulesOfNT[res.UserStart][0]
	helper := res.Rules[sRule].Body[0]
	a := syms.Intern("'a'")

	assert.True(t, tb.IsLL1)
	rid := tb.Lookup(helper, a)
	require.NotEqual(t, table.ConflictRule, rid)
	assert.Greater(t, len(res.Rules[rid].Body), 0) // kept the non-nullable 'a' rule

	for _, d := range sink.All() {
		assert.NotEqual(t, diag.LLConflict, d.Kind)
	}
	assert.NotEmpty(t, sink.Warnings())
}
