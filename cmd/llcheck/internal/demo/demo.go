/*
Package demo shows one way a consumer of a generated C parser's token
contract could tokenize input in Go, using timtadh/lexmachine the way
lr/scanner/lexmach adapts it for gorgo's own scanner interface. It is
not part of the checker pipeline itself — llgen never lexes the
*parsed* language, only the grammar source describing it — so this
lives behind internal/ as a worked example, not a reusable API.
*/
package demo

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// TokenKind mirrors the small set of token ids a generated llgen_parse
// driver would expect to receive from its caller (§6: "the emitter's
// output format... is not constrained further").
type TokenKind int

const (
	TokID TokenKind = iota
	TokNum
	TokPlus
	TokStar
	TokLParen
	TokRParen
)

// Token is one lexed unit of the toy "arithmetic expression" language
// used to exercise a generated parser by hand.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)", t.Kind, t.Text)
}

// NewLexer builds and compiles a lexmachine.Lexer for the toy
// language: identifiers, decimal numbers, '+', '*', '(', ')',
// whitespace skipped.
func NewLexer() (*lexmachine.Lexer, error) {
	lx := lexmachine.NewLexer()

	token := func(kind TokenKind) lexmachine.Action {
		return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
			return Token{Kind: kind, Text: string(m.Bytes)}, nil
		}
	}
	skip := func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return nil, nil
	}

	lx.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), token(TokID))
	lx.Add([]byte(`[0-9]+`), token(TokNum))
	lx.Add([]byte(`\+`), token(TokPlus))
	lx.Add([]byte(`\*`), token(TokStar))
	lx.Add([]byte(`\(`), token(TokLParen))
	lx.Add([]byte(`\)`), token(TokRParen))
	lx.Add([]byte(`( |\t|\n)+`), skip)

	if err := lx.Compile(); err != nil {
		return nil, fmt.Errorf("compiling demo lexer: %w", err)
	}
	return lx, nil
}

// Tokenize runs the lexer to completion, collecting every token. It is
// meant for small demo inputs, not production use — a real consumer
// would feed tokens to llgen_parse one at a time instead of buffering
// them all.
func Tokenize(lx *lexmachine.Lexer, input string) ([]Token, error) {
	scanner, err := lx.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	var toks []Token
	for {
		tok, err, eof := scanner.Next()
		if err != nil {
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				scanner.TC = ui.FailTC
				continue
			}
			return toks, err
		}
		if eof {
			return toks, nil
		}
		toks = append(toks, tok.(Token))
	}
}
