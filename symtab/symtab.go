/*
Package symtab interns lexeme strings into dense, nonnegative integer
ids of type llgen.SymId.

Every other stage of the analysis pipeline (lexer, grammar parser,
desugarer, FIRST/FOLLOW/table builders) refers to symbols exclusively
by SymId; package symtab is the single source of truth mapping ids
back to their printable names, and — for regex literals — to their
inner pattern text.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package symtab

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen"
)

// tracer traces with key 'llgen.symtab'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.symtab")
}

// Table interns strings to SymIds and back. Distinct strings always
// map to distinct ids; interning the same string twice returns the
// same id. There is no deletion: ids are stable for the lifetime of a
// run (§3 "Symbol ids").
type Table struct {
	byName  map[string]llgen.SymId
	byId    []string
	regexes map[llgen.SymId]string
	gensym  map[string]int // per-base monotone counters for Gen
}

// New creates an empty, ready-to-use symbol table.
func New() *Table {
	return &Table{
		byName:  make(map[string]llgen.SymId),
		byId:    make([]string, 0, 64),
		regexes: make(map[llgen.SymId]string),
		gensym:  make(map[string]int),
	}
}

// Intern returns the SymId for s, assigning a fresh one on first sight.
func (t *Table) Intern(s string) llgen.SymId {
	if id, ok := t.byName[s]; ok {
		return id
	}
	id := llgen.SymId(len(t.byId))
	t.byId = append(t.byId, s)
	t.byName[s] = id
	tracer().Debugf("intern %q -> %d", s, id)
	return id
}

// InternRegex interns "/body/" (the full, slash-delimited spelling a
// reader would recognize) and separately records body, the text
// between the slashes, for later expansion by package desugar.
func (t *Table) InternRegex(body string) llgen.SymId {
	spelling := "/" + body + "/"
	id := t.Intern(spelling)
	t.regexes[id] = body
	return id
}

// RegexBody returns the inner text of a regex symbol and true, or
// ("", false) if id does not name a regex symbol.
func (t *Table) RegexBody(id llgen.SymId) (string, bool) {
	body, ok := t.regexes[id]
	return body, ok
}

// Gen returns a fresh SymId for a generated helper name of the form
// "base[k]", where k is a monotone counter unique to base within this
// table. Used by the desugarer to name grouping and operator-expansion
// helper nonterminals so they cannot collide with user-chosen names
// (§3 "Generated helper nonterminals").
func (t *Table) Gen(base string) llgen.SymId {
	k := t.gensym[base]
	t.gensym[base] = k + 1
	name := fmt.Sprintf("%s[%d]", base, k)
	return t.Intern(name)
}

// Name returns the interned string for id. Panics if id is out of
// range; callers only ever pass ids returned by this same table.
func (t *Table) Name(id llgen.SymId) string {
	return t.byId[id]
}

// Len returns the number of distinct interned strings.
func (t *Table) Len() int {
	return len(t.byId)
}

// Each calls f once for every interned (id, name) pair, in ascending
// id order (i.e. intern order).
func (t *Table) Each(f func(id llgen.SymId, name string)) {
	for id, name := range t.byId {
		f(llgen.SymId(id), name)
	}
}
