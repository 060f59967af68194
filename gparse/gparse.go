/*
Package gparse implements the predictive-stack parser for the fixed
meta-grammar grammar sources are written in (§4.3):

	input         = syntax
	syntax        = syntax_ syntax | ε
	syntax_       = id comma_ '=' body_list ';'
	              | '%' id_rep ';'
	body_list     = body_internal body_list_rest
	body_list_rest= '|' body_internal body_list_rest | ε
	body_internal = comma_ body body_internal | ε
	body          = '(' body_list ')' body_opt
	              | id_or_regexp body_opt
	              | '@' number_
	body_opt      = body_opt_ body_opt | ε
	body_opt_     = '?' | '+' | '*' | '{' range '}'
	range         = NUM range_
	range_        = ',' NUM | ε
	id_rep        = id id_rep | ε
	comma_        = ',' | ε
	id_or_regexp  = ID | REGEXP
	number_       = NUM | ε

The parser is table-driven in the sense of §4.8: there is one explicit
state machine, the stack of pending grammar symbols, and every
transition is a deterministic function of (top-of-stack, lookahead).
The stack is represented directly (not via Go's call stack), so the
algorithm is the non-recursive traversal called for in §9.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package gparse

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen/cst"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/lex"
)

// tracer traces with key 'llgen.gparse'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.gparse")
}

// Meta-grammar nonterminal names, used as CST tags.
const (
	NTInput         = "input"
	NTSyntax        = "syntax"
	NTSyntaxStmt    = "syntax_"
	NTBodyList      = "body_list"
	NTBodyListRest  = "body_list_rest"
	NTBodyInternal  = "body_internal"
	NTBody          = "body"
	NTBodyOpt       = "body_opt"
	NTBodyOptOne    = "body_opt_"
	NTRange         = "range"
	NTRangeRest     = "range_"
	NTIdRep         = "id_rep"
	NTComma         = "comma_"
	NTIdOrRegexp    = "id_or_regexp"
	NTNumberOpt     = "number_"
)

type frameKind int

const (
	frameTerminal frameKind = iota
	frameNonterm
)

type stackFrame struct {
	kind  frameKind
	term  lex.Kind
	nt    string
	owner *cst.Node
}

// TokenSource is the minimal interface gparse needs from a lexer.
type TokenSource interface {
	Next() lex.Token
}

// Parser drives the explicit-stack predictive parse.
type Parser struct {
	toks TokenSource
	la   lex.Token
	sink *diag.Sink
}

// New creates a Parser reading tokens from toks, reporting to sink.
func New(toks TokenSource, sink *diag.Sink) *Parser {
	p := &Parser{toks: toks, sink: sink}
	p.la = p.toks.Next()
	return p
}

// Parse runs the predictive-stack algorithm to completion, returning
// the root CST node on success, or nil after reporting a
// GrammarSyntaxError diagnostic (or a LexicalError one for an INVALID
// token) (§4.3, §4.9: "It then returns a null CST.").
func (p *Parser) Parse() *cst.Node {
	root := cst.NewNonterm(NTInput)
	stack := []stackFrame{{kind: frameNonterm, nt: NTSyntax, owner: root}}

	for len(stack) > 0 {
		if p.la.Kind == lex.INVALID {
			p.reportInvalid()
			return nil
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.kind == frameTerminal {
			if p.la.Kind != top.term {
				p.reportMismatch(stack, top.term, true)
				return nil
			}
			top.owner.Append(cst.NewLeaf(p.la))
			p.advance()
			continue
		}

		body, ok := predict(top.nt, p.la.Kind)
		if !ok {
			p.reportMismatch(append(stack, top), 0, false)
			return nil
		}
		node := cst.NewNonterm(top.nt)
		top.owner.Append(node)
		for i := len(body) - 1; i >= 0; i-- {
			f := body[i]
			f.owner = node
			stack = append(stack, f)
		}
	}

	if p.la.Kind != lex.EOF {
		p.reportMismatch(nil, lex.EOF, true)
		return nil
	}
	return root
}

func (p *Parser) advance() {
	p.la = p.toks.Next()
}

// reportMismatch builds the diagnostic described in §4.3: up to ten
// remaining stack nonterminals, up to ten upcoming input tokens, and
// the current line number. hasExpected distinguishes "no single
// expected token" (predict() failure) from a genuine expectation of
// lex.EOF, whose Kind value is the zero value and so can't be used as
// its own "none" sentinel.
func (p *Parser) reportMismatch(stack []stackFrame, expected lex.Kind, hasExpected bool) {
	var names []string
	for i := len(stack) - 1; i >= 0 && len(names) < 10; i-- {
		if stack[i].kind == frameNonterm {
			names = append(names, stack[i].nt)
		}
	}
	lookahead := []string{p.la.String()}
	for len(lookahead) < 10 {
		t := p.toks.Next()
		lookahead = append(lookahead, t.String())
		if t.Kind == lex.EOF {
			break
		}
	}
	msg := "unexpected token " + p.la.String()
	if hasExpected {
		msg = "expected " + expected.String() + ", got " + p.la.String()
	}
	tracer().Errorf("grammar syntax error at line %d: %s", p.la.Line, msg)
	p.sink.Report(diag.Diagnostic{
		Kind:      diag.GrammarSyntaxError,
		Message:   msg,
		Line:      p.la.Line,
		Stack:     names,
		Lookahead: lookahead,
	})
}

// reportInvalid surfaces a lexer-level failure as a LexicalError,
// distinct from a grammar mismatch (§4.9: "Lexer | INVALID token
// (stops pipeline)").
func (p *Parser) reportInvalid() {
	tracer().Errorf("lexical error at line %d: %s", p.la.Line, p.la.Err)
	p.sink.Report(diag.Diagnostic{
		Kind:    diag.LexicalError,
		Message: p.la.Err,
		Line:    p.la.Line,
	})
}

// predict returns the body symbols for the single production of nt
// that the lookahead kind selects, per the hand-derived FIRST sets of
// the meta-grammar above (it is small and fixed, so the LL(1) table is
// written out directly rather than computed).
func predict(nt string, la lex.Kind) ([]stackFrame, bool) {
	nonterm := func(name string) stackFrame { return stackFrame{kind: frameNonterm, nt: name} }
	term := func(k lex.Kind) stackFrame { return stackFrame{kind: frameTerminal, term: k} }

	switch nt {
	case NTSyntax:
		switch la {
		case lex.ID, lex.Pct:
			return []stackFrame{nonterm(NTSyntaxStmt), nonterm(NTSyntax)}, true
		case lex.EOF:
			return nil, true // ε
		}
	case NTSyntaxStmt:
		switch la {
		case lex.ID:
			return []stackFrame{term(lex.ID), nonterm(NTComma), term(lex.Eq), nonterm(NTBodyList), term(lex.Semi)}, true
		case lex.Pct:
			return []stackFrame{term(lex.Pct), nonterm(NTIdRep), term(lex.Semi)}, true
		}
	case NTBodyList:
		// single production, always applicable once entered.
		return []stackFrame{nonterm(NTBodyInternal), nonterm(NTBodyListRest)}, true
	case NTBodyListRest:
		switch la {
		case lex.Pipe:
			return []stackFrame{term(lex.Pipe), nonterm(NTBodyInternal), nonterm(NTBodyListRest)}, true
		case lex.Semi, lex.RParen:
			return nil, true // ε
		}
	case NTBodyInternal:
		switch la {
		case lex.Comma, lex.LParen, lex.ID, lex.REGEXP, lex.At:
			return []stackFrame{nonterm(NTComma), nonterm(NTBody), nonterm(NTBodyInternal)}, true
		case lex.Pipe, lex.Semi, lex.RParen:
			return nil, true // ε
		}
	case NTBody:
		switch la {
		case lex.LParen:
			return []stackFrame{term(lex.LParen), nonterm(NTBodyList), term(lex.RParen), nonterm(NTBodyOpt)}, true
		case lex.ID, lex.REGEXP:
			return []stackFrame{nonterm(NTIdOrRegexp), nonterm(NTBodyOpt)}, true
		case lex.At:
			return []stackFrame{term(lex.At), nonterm(NTNumberOpt)}, true
		}
	case NTBodyOpt:
		switch la {
		case lex.Quest, lex.Plus, lex.Star, lex.LBrace:
			return []stackFrame{nonterm(NTBodyOptOne), nonterm(NTBodyOpt)}, true
		default:
			return nil, true // ε — anything else follows
		}
	case NTBodyOptOne:
		switch la {
		case lex.Quest:
			return []stackFrame{term(lex.Quest)}, true
		case lex.Plus:
			return []stackFrame{term(lex.Plus)}, true
		case lex.Star:
			return []stackFrame{term(lex.Star)}, true
		case lex.LBrace:
			return []stackFrame{term(lex.LBrace), nonterm(NTRange), term(lex.RBrace)}, true
		}
	case NTRange:
		if la == lex.NUM {
			return []stackFrame{term(lex.NUM), nonterm(NTRangeRest)}, true
		}
	case NTRangeRest:
		switch la {
		case lex.Comma:
			return []stackFrame{term(lex.Comma), term(lex.NUM)}, true
		default:
			return nil, true // ε
		}
	case NTIdRep:
		switch la {
		case lex.ID:
			return []stackFrame{term(lex.ID), nonterm(NTIdRep)}, true
		case lex.Semi:
			return nil, true // ε
		}
	case NTComma:
		switch la {
		case lex.Comma:
			return []stackFrame{term(lex.Comma)}, true
		default:
			return nil, true // ε
		}
	case NTIdOrRegexp:
		switch la {
		case lex.ID:
			return []stackFrame{term(lex.ID)}, true
		case lex.REGEXP:
			return []stackFrame{term(lex.REGEXP)}, true
		}
	case NTNumberOpt:
		switch la {
		case lex.NUM:
			return []stackFrame{term(lex.NUM)}, true
		default:
			return nil, true // ε
		}
	}
	return nil, false
}
