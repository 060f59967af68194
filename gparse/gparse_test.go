package gparse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
)

func parse(t *testing.T, src string) (*gparse.Parser, *diag.Sink) {
	t.Helper()
	syms := symtab.New()
	l := lex.New(strings.NewReader(src), syms)
	sink := diag.NewSink()
	return gparse.New(l, sink), sink
}

func TestParsesTrivialGrammar(t *testing.T) {
	p, sink := parse(t, "S = 'a' ; % a ;")
	root := p.Parse()
	require.NotNil(t, root)
	assert.Empty(t, sink.All())
	assert.Equal(t, gparse.NTInput, root.Tag)
}

func TestParsesAlternationGroupingAndOperators(t *testing.T) {
	p, sink := parse(t, "S = ( 'a' | 'b' ) ? 'c' + /[a-c]/ * ;")
	root := p.Parse()
	require.NotNil(t, root)
	assert.Empty(t, sink.All())
}

func TestParsesBoundedRepetitionAndAtMarker(t *testing.T) {
	p, sink := parse(t, "S = 'a' {2,3} @ 1 ;")
	root := p.Parse()
	require.NotNil(t, root)
	assert.Empty(t, sink.All())
}

func TestParsesTerminalDeclarationList(t *testing.T) {
	p, sink := parse(t, "% a b c ;")
	root := p.Parse()
	require.NotNil(t, root)
	assert.Empty(t, sink.All())
}

func TestReturnsNilAndDiagnosticOnSyntaxError(t *testing.T) {
	p, sink := parse(t, "S 'a' ;") // missing '=' before the body
	root := p.Parse()
	assert.Nil(t, root)
	fatal := sink.Fatal()
	require.NotNil(t, fatal)
	assert.Equal(t, diag.GrammarSyntaxError, fatal.Kind)
	assert.NotEmpty(t, fatal.Stack)
	assert.NotEmpty(t, fatal.Lookahead)
}

func TestTrailingGarbageIsSyntaxError(t *testing.T) {
	p, sink := parse(t, "S = 'a' ; )")
	root := p.Parse()
	assert.Nil(t, root)
	require.NotNil(t, sink.Fatal())
}
