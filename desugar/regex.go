// Regex atom expansion (§4.4.1). A REGEXP leaf's interned symbol is
// used directly as a body element (see lowerBody in desugar.go); this
// file gives that same symbol its defining productions the first time
// it is encountered, so "regex bodies are desugared later" means
// exactly once, lazily, memoized per distinct body.
package desugar

import (
	"github.com/llgen/llgen"
	"github.com/llgen/llgen/lex"
)

// ensureRegexExpanded lowers the regex body interned under sym (the
// REGEXP leaf's own payload) into a set of byte-terminal productions
// headed by sym itself, unless that has already happened for this
// symbol.
func (lw *lowerer) ensureRegexExpanded(sym llgen.SymId) {
	if lw.regexDone == nil {
		lw.regexDone = map[llgen.SymId]bool{}
	}
	if lw.regexDone[sym] {
		return
	}
	lw.regexDone[sym] = true

	body, ok := lw.syms.RegexBody(sym)
	if !ok {
		return // not actually a regex symbol; nothing to expand
	}
	rp := &regexParser{src: body, lw: lw}
	rp.parseAltInto(sym)
}

// regexParser recursive-descends over the raw regex text (§4.4.1):
//
//	alt   = seq ('|' seq)*
//	seq   = atomOp*
//	atomOp = atom op*
//	atom  = '(' alt ')' | '[' class ']' | '.' | '\' escape | char
//	op    = '?' | '+' | '*' | '{' NUM (',' NUM)? '}'
//
// Each atom's postfix operators are applied by emitMultiplicity,
// re-using exactly the machinery the EBNF body path uses. A top-level
// alternative's symbol sequence becomes one production directly on its
// enclosing head, the same shape lowerBodyList builds for a grammar
// body_list.
type regexParser struct {
	src string
	pos int
	lw  *lowerer
}

func (p *regexParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *regexParser) next() (byte, bool) {
	b, ok := p.peek()
	if ok {
		p.pos++
	}
	return b, ok
}

// parseAltInto parses one alternation and adds one production directly
// onto head per top-level alternative — the same shape lowerBodyList
// builds for a grammar body_list, so a regex and a parenthesized
// EBNF group desugar the same way.
func (p *regexParser) parseAltInto(head llgen.SymId) {
	p.lw.res.addRule(head, p.parseSeq(head))
	for {
		b, ok := p.peek()
		if !ok || b != '|' {
			break
		}
		p.next()
		p.lw.res.addRule(head, p.parseSeq(head))
	}
}

func (p *regexParser) parseSeq(enclosing llgen.SymId) []llgen.SymId {
	var out []llgen.SymId
	for {
		b, ok := p.peek()
		if !ok || b == '|' || b == ')' {
			break
		}
		target := p.parseAtom(enclosing)
		ops := p.parseOps()
		out = append(out, p.lw.emitMultiplicity(enclosing, target, ops)...)
	}
	return out
}

// parseAtom consumes one atom and returns the symbol representing it
// (a byte-literal terminal, a generated group helper, or a generated
// character-class helper).
func (p *regexParser) parseAtom(enclosing llgen.SymId) llgen.SymId {
	b, ok := p.next()
	if !ok {
		return p.literalByte(0) // malformed tail; treated as empty
	}
	switch {
	case b == '(':
		h := p.lw.syms.Gen(p.lw.syms.Name(enclosing))
		p.lw.res.N[h] = true
		p.parseAltInto(h)
		if c, ok2 := p.peek(); ok2 && c == ')' {
			p.next()
		}
		return h
	case b == '[':
		return p.parseClass(enclosing)
	case b == '.':
		return p.anyByteClass(enclosing)
	case b == '\\':
		e, ok2 := p.next()
		if !ok2 {
			return p.literalByte('\\')
		}
		return p.literalByte(p.escapeByte(e))
	default:
		return p.literalByte(b)
	}
}

func (p *regexParser) parseOps() []opSpec {
	var out []opSpec
	for {
		b, ok := p.peek()
		if !ok {
			break
		}
		switch b {
		case '?':
			p.next()
			out = append(out, opSpec{kind: opQuest})
		case '+':
			p.next()
			out = append(out, opSpec{kind: opPlus})
		case '*':
			p.next()
			out = append(out, opSpec{kind: opStar})
		case '{':
			p.next()
			m := p.parseInt()
			n := m
			if c, ok2 := p.peek(); ok2 && c == ',' {
				p.next()
				n = p.parseInt()
			}
			if c, ok2 := p.peek(); ok2 && c == '}' {
				p.next()
			}
			out = append(out, opSpec{kind: opRange, m: m, n: n})
		default:
			return out
		}
	}
	return out
}

func (p *regexParser) parseInt() int {
	v := 0
	for {
		b, ok := p.peek()
		if !ok || b < '0' || b > '9' {
			break
		}
		p.next()
		v = v*10 + int(b-'0')
	}
	return v
}

// escapeByte resolves a '\x' escape inside a regex body; unlike quote
// literals (§4.2) an unknown escape letter is taken literally here
// rather than rejected, since a regex class commonly escapes its own
// metacharacters (e.g. '\.', '\[').
func (p *regexParser) escapeByte(c byte) byte {
	switch c {
	case 'n':
		return 0x0A
	case 'r':
		return 0x0D
	case 't':
		return 0x09
	case 's':
		return ' '
	default:
		return c
	}
}

func (p *regexParser) literalByte(b byte) llgen.SymId {
	name := lex.ByteLiteralName(b)
	id := p.lw.syms.Intern(name)
	p.lw.res.T[id] = true
	return id
}

// anyByteClass lazily builds the generated "any byte" helper for '.'
// (§4.4.1), memoized like the other built-in helpers.
func (p *regexParser) anyByteClass(enclosing llgen.SymId) llgen.SymId {
	if p.lw.anyByteDone {
		return p.lw.anyByteSym
	}
	p.lw.anyByteDone = true
	h := p.lw.syms.Intern(":any:")
	p.lw.res.N[h] = true
	for v := 0; v <= 0xFF; v++ {
		p.lw.res.addRule(h, []llgen.SymId{p.literalByte(byte(v))})
	}
	p.lw.anyByteSym = h
	return h
}

// parseClass parses a "[...]" character class body, expanding it into
// a generated helper nonterminal with one production per accepted
// byte (§4.4.1). A leading '^' complements the class against the full
// byte range. A '-' that is first, last, or adjacent to '^' is taken
// literally rather than as a range operator (the Open Question in
// §4.4.1 is resolved this way, matching common regex practice).
func (p *regexParser) parseClass(enclosing llgen.SymId) llgen.SymId {
	negate := false
	if b, ok := p.peek(); ok && b == '^' {
		negate = true
		p.next()
	}

	var runes []byte
	accept := map[byte]bool{}
	first := true
	for {
		b, ok := p.peek()
		if !ok || b == ']' {
			break
		}
		p.next()
		var lit byte
		if b == '\\' {
			e, ok2 := p.next()
			if !ok2 {
				break
			}
			lit = p.escapeByte(e)
		} else {
			lit = b
		}

		if lit == '-' && !first {
			if nb, ok2 := p.peek(); ok2 && nb != ']' {
				p.next()
				var hi byte
				if nb == '\\' {
					e, ok3 := p.next()
					if ok3 {
						hi = p.escapeByte(e)
					}
				} else {
					hi = nb
				}
				lo := runes[len(runes)-1]
				for v := int(lo); v <= int(hi); v++ {
					accept[byte(v)] = true
				}
				first = false
				continue
			}
		}

		runes = append(runes, lit)
		accept[lit] = true
		first = false
	}
	if b, ok := p.peek(); ok && b == ']' {
		p.next()
	}

	if negate {
		complemented := map[byte]bool{}
		for v := 0; v <= 0xFF; v++ {
			if !accept[byte(v)] {
				complemented[byte(v)] = true
			}
		}
		accept = complemented
	}

	h := p.lw.syms.Gen(p.lw.syms.Name(enclosing))
	p.lw.res.N[h] = true
	for v := 0; v <= 0xFF; v++ {
		if accept[byte(v)] {
			p.lw.res.addRule(h, []llgen.SymId{p.literalByte(byte(v))})
		}
	}
	return h
}
