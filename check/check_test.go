package check_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen/check"
	"github.com/llgen/llgen/diag"
)

func TestTrivialAcceptScenario(t *testing.T) {
	res, err := check.Check(strings.NewReader("S = 'a' ; % a ;"), check.Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.IsLL1)

	sRule := res.Grammar.RulesOfNT[res.Grammar.UserStart][0]
	a := res.Syms.Intern("'a'")
	require.Len(t, res.First.Of(sRule), 1)
	assert.Equal(t, a, res.First.Of(sRule)[0])

	endOfInput := res.Syms.Intern("$")
	assert.True(t, res.Follow.Contains(res.Grammar.UserStart, endOfInput))

	caretRule := res.Grammar.RulesOfNT[res.Grammar.Start][0]
	assert.Equal(t, sRule, res.Table.Lookup(res.Grammar.UserStart, a))
	assert.Equal(t, caretRule, res.Table.Lookup(res.Grammar.Start, a))
}

func TestLeftFactoringNeededScenarioExitsNonLL1(t *testing.T) {
	res, err := check.Check(strings.NewReader("S = 'a' 'b' | 'a' 'c' ; % a b c ;"), check.Options{})
	require.NoError(t, err)
	assert.False(t, res.IsLL1)
	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == diag.LLConflict {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSyntaxErrorAbortsWithNoResult(t *testing.T) {
	res, err := check.Check(strings.NewReader("S 'a' ;"), check.Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	d, ok := err.(diag.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diag.GrammarSyntaxError, d.Kind)
}

func TestSymbolConflictAbortsWithNoResult(t *testing.T) {
	res, err := check.Check(strings.NewReader("S = 'a' ; % S a ;"), check.Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	d, ok := err.(diag.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diag.SymbolConflict, d.Kind)
}

func TestPurelyLeftRecursiveGrammarAbortsWithAnalysisDivergence(t *testing.T) {
	res, err := check.Check(strings.NewReader("S = S 'a' ;"), check.Options{})
	require.Error(t, err)
	assert.Nil(t, res)
	d, ok := err.(diag.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, diag.AnalysisDivergence, d.Kind)
}

func TestNullableTiebreakOptionIsThreadedThrough(t *testing.T) {
	res, err := check.Check(strings.NewReader("S = 'a' ? 'a' ; % a ;"), check.Options{NullableTiebreak: true})
	require.NoError(t, err)
	assert.True(t, res.IsLL1)
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, diag.LLConflict, d.Kind)
	}
}
