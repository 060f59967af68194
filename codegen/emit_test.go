package codegen_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llgen/llgen/analysis"
	"github.com/llgen/llgen/codegen"
	"github.com/llgen/llgen/desugar"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/gparse"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
	"github.com/llgen/llgen/table"
)

func pipeline(t *testing.T, src string) codegen.Input {
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
	tbl := table.Build(res, first, follow, syms, endOfInput, tsink, table.Options{})

	return codegen.Input{
		Syms:       syms,
		Res:        res,
		Table:      tbl,
		EndOfInput: endOfInput,
		AtMarker:   syms.Intern(desugar.AtMarker),
		EndOfBody:  syms.Intern(":end-of-body:"),
	}
}

func TestEmitHeaderDeclaresDimensionsAndChecksum(t *testing.T) {
	in := pipeline(t, "S = 'a' ; % a ;")
	var buf bytes.Buffer
	require.NoError(t, codegen.EmitHeader(&buf, in))
	out := buf.String()

	assert.Contains(t, out, "/* checksum: ")
	assert.Contains(t, out, "#define LLGEN_NUM_RULES 2") // ^ -> S, S -> 'a'
	assert.Contains(t, out, "int llgen_parse(")
}

func TestEmitSourceContainsTableAndRuleBodies(t *testing.T) {
	in := pipeline(t, "S = 'a' ? 'b' ;")
	var buf bytes.Buffer
	require.NoError(t, codegen.EmitSource(&buf, in))
	out := buf.String()

	assert.Contains(t, out, "llgen_rule_head")
	assert.Contains(t, out, "llgen_rule_body")
	assert.Contains(t, out, "llgen_rules_of_nt")
	assert.Contains(t, out, "llgen_table")
	assert.Contains(t, out, "LLGEN_CONFLICT_RULE")
}

func TestChecksumIsStableAcrossRuns(t *testing.T) {
	in1 := pipeline(t, "S = 'a' ; % a ;")
	in2 := pipeline(t, "S = 'a' ; % a ;")

	var buf1, buf2 bytes.Buffer
	require.NoError(t, codegen.EmitHeader(&buf1, in1))
	require.NoError(t, codegen.EmitHeader(&buf2, in2))

	firstLine := func(s string) string {
		i := strings.IndexByte(s, '\n')
		return s[:i]
	}
	assert.Equal(t, firstLine(buf1.String()), firstLine(buf2.String()))
}

func TestChecksumDiffersForDifferentGrammars(t *testing.T) {
	in1 := pipeline(t, "S = 'a' ; % a ;")
	in2 := pipeline(t, "S = 'a' 'b' ; % a b ;")

	var buf1, buf2 bytes.Buffer
	require.NoError(t, codegen.EmitHeader(&buf1, in1))
	require.NoError(t, codegen.EmitHeader(&buf2, in2))
	assert.NotEqual(t, buf1.String()[:40], buf2.String()[:40])
}
