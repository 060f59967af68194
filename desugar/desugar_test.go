package desugar_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
)

// lower parses src with the grammar meta-parser and runs Lower over
// the resulting CST, failing the test immediately if parsing itself
// reports a diagnostic.
func lower(t *testing.T, src string) (*desugar.Result, *symtab.Table, *diag.Sink) {
	t.Helper()
	syms := symtab.New()
	l := lex.New(strings.NewReader(src), syms)
	psink := diag.NewSink()
	p := gparse.New(l, psink)
	root := p.Parse()
	require.NotNil(t, root, "grammar source failed to parse")
	require.Empty(t, psink.All())

	sink := diag.NewSink()
	res := desugar.Lower(root, syms, sink)
	return res, syms, sink
}

// rulesOf returns every rule body headed by head, as space-joined
// symbol names, for easy assertion.
func rulesOf(res *desugar.Result, syms *symtab.Table, head llgen.SymId) []string {
	var out []string
	for _, id := range res.RulesOfNT[head] {
		r := res.Rules[id]
		var names []string
		for _, s := range r.Body {
			names = append(names, syms.Name(s))
		}
		out = append(out, strings.Join(names, " "))
	}
	return out
}

func TestTrivialGrammarProducesAugmentedStart(t *testing.T) {
	res, syms, sink := lower(t, "S = 'a' ; % a ;")
	assert.Nil(t, sink.Fatal())
	assert.True(t, res.N[res.Start])
	assert.Equal(t, syms.Name(res.UserStart), "S")
	assert.Equal(t, []string{"S"}, rulesOf(res, syms, res.Start))
	assert.Equal(t, []string{"'a'"}, rulesOf(res, syms, res.UserStart))
	assert.True(t, res.T[syms.Intern("'a'")])
}

func TestSecondDeclaredNonterminalIsNotMistakenForStart(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' T ; T = 'b' ; % a b ;")
	assert.Equal(t, "S", syms.Name(res.UserStart))
}

func TestAlternationProducesOneRulePerBranch(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' | 'b' ; % a b ;")
	got := rulesOf(res, syms, res.UserStart)
	assert.ElementsMatch(t, []string{"'a'", "'b'"}, got)
}

func TestCommaInsertsWhitespaceHelper(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' , 'b' ; % a b ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	assert.Equal(t, "'a' :ws*: 'b'", got[0])
	wsStar := syms.Intern(":ws*:")
	assert.True(t, res.N[wsStar])
	wsOne := syms.Intern(":ws:")
	assert.ElementsMatch(t, []string{"' '", "0x09", "0x0A", "0x0D"}, rulesOf(res, syms, wsOne))
}

func TestQuestionMarkProducesNullableHelper(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' ? ; % a ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	helper := syms.Intern(got[0])
	helperBodies := rulesOf(res, syms, helper)
	assert.ElementsMatch(t, []string{"'a'", ""}, helperBodies)
}

func TestStarProducesNullableRightRecursiveHelper(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' * ; % a ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	helper := syms.Intern(got[0])
	bodies := rulesOf(res, syms, helper)
	name := syms.Name(helper)
	assert.ElementsMatch(t, []string{"'a' " + name, ""}, bodies)
}

func TestPlusProducesTwoSymbolsWithRightRecursiveTail(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' + ; % a ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	fields := strings.Fields(got[0])
	require.Len(t, fields, 2)
	assert.Equal(t, "'a'", fields[0])
	tailBodies := rulesOf(res, syms, syms.Intern(fields[1]))
	assert.ElementsMatch(t, []string{"'a' " + fields[1], ""}, tailBodies)
}

func TestBoundedRepetitionExpandsExactCounts(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' {2,3} ; % a ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	chain := syms.Intern(got[0])
	bodies := rulesOf(res, syms, chain)
	assert.ElementsMatch(t, []string{"'a' 'a'", "'a' 'a' 'a'"}, bodies)
}

func TestGroupingGeneratesHelperNonterminal(t *testing.T) {
	res, syms, _ := lower(t, "S = ( 'a' | 'b' ) 'c' ; % a b c ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	fields := strings.Fields(got[0])
	require.Len(t, fields, 2)
	assert.Equal(t, "'c'", fields[1])
	groupBodies := rulesOf(res, syms, syms.Intern(fields[0]))
	assert.ElementsMatch(t, []string{"'a'", "'b'"}, groupBodies)
}

func TestAtMarkerDesugarsToEpsilonHelper(t *testing.T) {
	res, syms, _ := lower(t, "S = 'a' @ 'b' ; % a b ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	assert.Equal(t, "'a' :@: 'b'", got[0])
	assert.ElementsMatch(t, []string{""}, rulesOf(res, syms, syms.Intern(":@:")))
}

func TestRegexCharClassExpandsToOneRulePerByte(t *testing.T) {
	res, syms, _ := lower(t, "S = /[a-c]/ ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	regexSym := syms.Intern(got[0])
	bodies := rulesOf(res, syms, regexSym)
	require.Len(t, bodies, 1) // the class gets its own helper nonterminal
	classSym := syms.Intern(bodies[0])
	assert.ElementsMatch(t, []string{"'a'", "'b'", "'c'"}, rulesOf(res, syms, classSym))
}

func TestRegexAlternationProducesOneAltPerBranch(t *testing.T) {
	res, syms, _ := lower(t, "S = /a|b/ ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	regexSym := syms.Intern(got[0])
	bodies := rulesOf(res, syms, regexSym)
	assert.ElementsMatch(t, []string{"'a'", "'b'"}, bodies)
}

func TestRegexDotExpandsToAllByteValues(t *testing.T) {
	res, syms, _ := lower(t, "S = /./ ;")
	got := rulesOf(res, syms, res.UserStart)
	require.Len(t, got, 1)
	regexSym := syms.Intern(got[0])
	bodies := rulesOf(res, syms, regexSym)
	assert.Len(t, bodies, 1)
	any := syms.Intern(":any:")
	assert.True(t, res.N[any])
	assert.Len(t, rulesOf(res, syms, any), 256)
}

func TestRegexIsExpandedOnlyOnce(t *testing.T) {
	res, syms, _ := lower(t, "S = /[a-c]/ /[a-c]/ ;")
	// two occurrences of the same body intern to the same REGEXP
	// symbol; its productions must not be duplicated.
	regexSym := syms.Intern("/[a-c]/")
	assert.Len(t, rulesOf(res, syms, regexSym), 1)
}

func TestUndeclaredSymbolIsAssumedTerminalWithWarning(t *testing.T) {
	res, syms, sink := lower(t, "S = mystery ;")
	assert.True(t, res.T[syms.Intern("mystery")])
	assert.NotEmpty(t, sink.Warnings())
}

func TestSymbolDeclaredBothWaysIsConflict(t *testing.T) {
	_, syms, sink := lower(t, "S = 'a' ; % S a ;")
	_ = syms
	found := false
	for _, d := range sink.All() {
		if d.Kind == diag.SymbolConflict {
			found = true
		}
	}
	assert.True(t, found)
}
