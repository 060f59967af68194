/*
Package lex turns a byte stream carrying a grammar source into a lazy
sequence of lexical tokens, per spec §4.2.

The lexer reads from a bufio.Reader, which gives the one-byte pushback
the source format requires for free (ReadByte/UnreadByte); there is no
need to hand-roll a pushback buffer. On malformed input the lexer
produces a single INVALID token and stops — it is not resumable past a
lexical error (§4.9).

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package lex

import (
	"bufio"
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/symtab"
)

// tracer traces with key 'llgen.lex'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.lex")
}

// Kind closes the set of lexical token categories from spec §3.
type Kind int

const (
	EOF Kind = iota
	INVALID
	ID
	NUM
	REGEXP
	Eq     // =
	Pipe   // |
	Semi   // ;
	Pct    // %
	LParen // (
	RParen // )
	LBrace // {
	RBrace // }
	Quest  // ?
	Plus   // +
	Star   // *
	Comma  // ,
	Dot    // .
	At     // @
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case INVALID:
		return "INVALID"
	case ID:
		return "ID"
	case NUM:
		return "NUM"
	case REGEXP:
		return "REGEXP"
	case Eq:
		return "'='"
	case Pipe:
		return "'|'"
	case Semi:
		return "';'"
	case Pct:
		return "'%'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case Quest:
		return "'?'"
	case Plus:
		return "'+'"
	case Star:
		return "'*'"
	case Comma:
		return "','"
	case Dot:
		return "'.'"
	case At:
		return "'@'"
	default:
		return "?"
	}
}

var singleCharKind = map[byte]Kind{
	'=': Eq, '|': Pipe, ';': Semi, '%': Pct,
	'(': LParen, ')': RParen, '{': LBrace, '}': RBrace,
	'?': Quest, '+': Plus, '*': Star, ',': Comma, '.': Dot, '@': At,
}

// Token is a (kind, payload) pair. Payload is only meaningful for
// ID/NUM/REGEXP, in which case it names the interned symbol.
type Token struct {
	Kind    Kind
	Payload llgen.SymId // valid only for ID, NUM, REGEXP
	Line    int
	Err     string // set only when Kind == INVALID
}

func (t Token) String() string {
	if t.Kind == ID || t.Kind == NUM || t.Kind == REGEXP {
		return fmt.Sprintf("%s(%d)", t.Kind, t.Payload)
	}
	return t.Kind.String()
}

// Lexer produces a finite token sequence ending with EOF, or one
// INVALID token on malformed input.
type Lexer struct {
	r       *bufio.Reader
	syms    *symtab.Table
	line    int
	done    bool    // true once EOF or INVALID has been produced
	pending []Token // tokens already materialized by a quote run
}

// New creates a Lexer reading from r, interning lexemes into syms.
func New(r io.Reader, syms *symtab.Table) *Lexer {
	return &Lexer{r: bufio.NewReader(r), syms: syms, line: 1}
}

func (l *Lexer) readByte() (byte, bool) {
	b, err := l.r.ReadByte()
	if err != nil {
		return 0, false
	}
	if b == '\n' {
		l.line++
	}
	return b, true
}

func (l *Lexer) unreadByte() {
	_ = l.r.UnreadByte()
	// Caller is responsible for not unreading a '\n' across a call
	// boundary that already advanced the line counter; in practice
	// every caller peeks at most one byte ahead of a decision point.
}

func (l *Lexer) peekByte() (byte, bool) {
	b, ok := l.readByte()
	if ok {
		l.unreadByte()
		if b == '\n' {
			l.line--
		}
	}
	return b, ok
}

func isWS(b byte) bool { return b == ' ' || b == '\t' || b == '\r' || b == '\n' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isBarewordByte(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || isDigit(b)
}

// skipWSAndComments consumes whitespace and '#'-to-end-of-line
// comments. It does not consume the first non-whitespace byte.
func (l *Lexer) skipWSAndComments() {
	for {
		b, ok := l.peekByte()
		if !ok {
			return
		}
		if isWS(b) {
			l.readByte()
			continue
		}
		if b == '#' {
			for {
				b2, ok2 := l.readByte()
				if !ok2 || b2 == '\n' {
					break
				}
			}
			continue
		}
		return
	}
}

func (l *Lexer) invalid(format string, args ...interface{}) Token {
	l.done = true
	msg := fmt.Sprintf(format, args...)
	tracer().Errorf("lex error at line %d: %s", l.line, msg)
	return Token{Kind: INVALID, Line: l.line, Err: msg}
}

// classifyBareword decides NUM vs ID for a bareword or ":…:" body per
// §4.2: all-digit and not a multi-digit number with a leading zero is
// NUM, else ID.
func classifyBareword(s string) Kind {
	allDigits := len(s) > 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			allDigits = false
			break
		}
	}
	if !allDigits {
		return ID
	}
	if len(s) > 1 && s[0] == '0' {
		return ID // multi-digit zero-prefixed number is treated as ID
	}
	return NUM
}

// classifyColonBody strips the surrounding colons to classify the
// ":body:" form, but the interned name keeps the colons (§4.2).
func classifyColonBody(body string) Kind {
	return classifyBareword(body)
}

// Next returns the next token. Once it has returned EOF or INVALID,
// every later call returns EOF.
func (l *Lexer) Next() Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}
	if l.done {
		return Token{Kind: EOF, Line: l.line}
	}
	l.skipWSAndComments()
	startLine := l.line
	b, ok := l.readByte()
	if !ok {
		l.done = true
		return Token{Kind: EOF, Line: startLine}
	}

	if kind, isPunct := singleCharKind[b]; isPunct {
		return Token{Kind: kind, Line: startLine}
	}

	switch {
	case b == ':':
		return l.lexColonForm(startLine)
	case b == '\'' || b == '"':
		return l.lexQuoteRun(b, startLine)
	case b == '/':
		return l.lexRegexOrWS(startLine)
	case isBarewordByte(b):
		return l.lexBareword(b, startLine)
	default:
		return l.invalid("unexpected byte 0x%02X", b)
	}
}

func (l *Lexer) lexBareword(first byte, startLine int) Token {
	buf := []byte{first}
	for {
		b, ok := l.peekByte()
		if !ok || !isBarewordByte(b) {
			break
		}
		l.readByte()
		buf = append(buf, b)
	}
	s := string(buf)
	kind := classifyBareword(s)
	id := l.syms.Intern(s)
	return Token{Kind: kind, Payload: id, Line: startLine}
}

func (l *Lexer) lexColonForm(startLine int) Token {
	buf := []byte{':'}
	for {
		b, ok := l.readByte()
		if !ok {
			return l.invalid("unterminated ':...:' form")
		}
		if b == ':' {
			buf = append(buf, ':')
			break
		}
		if !isBarewordByte(b) {
			return l.invalid("invalid byte 0x%02X inside ':...:' form", b)
		}
		buf = append(buf, b)
	}
	full := string(buf)
	body := full[1 : len(full)-1]
	kind := classifyColonBody(body)
	id := l.syms.Intern(full)
	return Token{Kind: kind, Payload: id, Line: startLine}
}

// escapeByte translates a single escape letter to its byte value, per
// §4.2: n→0x0A, r→0x0D, t→0x09, s→' '. Any other letter is an error.
func escapeByte(c byte) (byte, bool) {
	switch c {
	case 'n':
		return 0x0A, true
	case 'r':
		return 0x0D, true
	case 't':
		return 0x09, true
	case 's':
		return ' ', true
	default:
		return 0, false
	}
}

// ByteLiteralName names the symbol a single byte value interns to:
// its quoted printable form, or a "0xHH" hex form for non-printables.
// Shared by the quote-literal lexer and the regex byte-class expander
// in package desugar, so the two agree on spelling (§4.2, §4.4.1).
func ByteLiteralName(b byte) string {
	if b >= 0x20 && b <= 0x7E {
		return fmt.Sprintf("'%c'", b)
	}
	return fmt.Sprintf("0x%02X", b)
}

// lexQuoteRun handles a run of characters inside a single matching
// quote pair, per §4.2. Each non-quote character becomes its own ID
// token; since Next() returns a single token, the run is tokenized
// eagerly here and only the first token is returned, with the
// remainder queued on pending.
func (l *Lexer) lexQuoteRun(quote byte, startLine int) Token {
	var toks []Token
	for {
		b, ok := l.readByte()
		if !ok {
			return l.invalid("unterminated quote literal")
		}
		if b == quote {
			break
		}
		var lit byte
		if b == '\\' {
			e, ok2 := l.readByte()
			if !ok2 {
				return l.invalid("unterminated escape in quote literal")
			}
			v, known := escapeByte(e)
			if !known {
				return l.invalid("unknown escape '\\%c'", e)
			}
			lit = v
		} else {
			lit = b
		}
		name := ByteLiteralName(lit)
		id := l.syms.Intern(name)
		toks = append(toks, Token{Kind: ID, Payload: id, Line: l.line})
	}
	if len(toks) == 0 {
		// empty quote run: skip like whitespace, recurse for next token.
		return l.Next()
	}
	l.pending = append(l.pending, toks[1:]...)
	t := toks[0]
	t.Line = startLine
	return t
}

// lexRegexOrWS handles the '/…/' form. An empty regex '//' is treated
// as whitespace and skipped (§4.2).
func (l *Lexer) lexRegexOrWS(startLine int) Token {
	var buf []byte
	depthClass := false
	for {
		b, ok := l.readByte()
		if !ok {
			return l.invalid("unterminated regex literal")
		}
		if b == '\\' {
			e, ok2 := l.readByte()
			if !ok2 {
				return l.invalid("unterminated escape in regex literal")
			}
			buf = append(buf, '\\', e)
			continue
		}
		if b == '[' {
			depthClass = true
			buf = append(buf, b)
			continue
		}
		if b == ']' {
			depthClass = false
			buf = append(buf, b)
			continue
		}
		if b == '/' && !depthClass {
			break
		}
		buf = append(buf, b)
	}
	if len(buf) == 0 {
		return l.Next() // '//' is whitespace
	}
	id := l.syms.InternRegex(string(buf))
	return Token{Kind: REGEXP, Payload: id, Line: startLine}
}
