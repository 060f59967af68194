/*
Package desugar lowers the concrete syntax tree produced by package
gparse into a flat list of plain BNF productions, expanding EBNF
operators, grouping, and regex character classes (§4.4).

Traversal state is kept on an explicit slice-backed queue of
continuation records rather than the Go call stack, per the design
note in §9 ("Deeply nested work queues in desugaring"): each queued
item names the nonterminal a group of alternatives belongs to and the
CST subtree still to be lowered. This keeps stack depth bounded by
grammar nesting rather than by the traversal algorithm.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package desugar

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/cst"
	"github.com/llgen/llgen/diag"
	"github.com/llgen/llgen/lex"
	"github.com/llgen/llgen/symtab"
)

// tracer traces with key 'llgen.desugar'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.desugar")
}

// Reserved helper names (§4.4, "Built-in helpers always created on
// demand").
const (
	StartSym = "^"
	WSOne    = ":ws:"
	WSStar   = ":ws*:"
	AtMarker = ":@:"
)

// Rule is one (head, body) production with a stable id.
type Rule struct {
	ID   llgen.RuleId
	Head llgen.SymId
	Body []llgen.SymId
}

// Result is the flat BNF form produced by Lower: symbol
// classification, the rule list, and an index from nonterminal to its
// rules (§3 "Production", "Symbol classification").
type Result struct {
	Start     llgen.SymId // the augmented start symbol, '^'
	UserStart llgen.SymId // the grammar's own declared start nonterminal
	T         map[llgen.SymId]bool
	N         map[llgen.SymId]bool
	Rules     []Rule
	RulesOfNT map[llgen.SymId][]llgen.RuleId
}

func (r *Result) addRule(head llgen.SymId, body []llgen.SymId) llgen.RuleId {
	id := llgen.RuleId(len(r.Rules))
	r.Rules = append(r.Rules, Rule{ID: id, Head: head, Body: body})
	r.RulesOfNT[head] = append(r.RulesOfNT[head], id)
	return id
}

// lowerer carries the mutable state of one Lower call.
type lowerer struct {
	syms   *symtab.Table
	sink   *diag.Sink
	res    *Result
	wsOne  llgen.SymId
	wsStar llgen.SymId
	atSym  llgen.SymId
	wsDone bool
	atDone bool

	// regexDone memoizes which REGEXP symbols have already had their
	// byte-level productions emitted (§4.4.1).
	regexDone map[llgen.SymId]bool

	anyByteSym  llgen.SymId
	anyByteDone bool

	// work is the explicit queue of group/rule bodies still to be
	// lowered into productions; see the package doc comment.
	work []contRec
}

// contRec names a nonterminal and the body_list CST subtree whose
// alternatives become that nonterminal's productions.
type contRec struct {
	head     llgen.SymId
	bodyList *cst.Node
}

// Lower runs passes A and B of §4.4 over root (the CST produced by
// gparse.Parser.Parse) and returns the flattened BNF grammar.
func Lower(root *cst.Node, syms *symtab.Table, sink *diag.Sink) *Result {
	lw := &lowerer{
		syms: syms,
		sink: sink,
		res: &Result{
			T:         map[llgen.SymId]bool{},
			N:         map[llgen.SymId]bool{},
			RulesOfNT: map[llgen.SymId][]llgen.RuleId{},
		},
	}
	stmts := flattenSyntaxList(firstChildOrNil(root))
	lw.classify(stmts)
	if lw.sink.Fatal() != nil {
		return lw.res
	}
	lw.lowerRules(stmts)
	lw.finish()
	return lw.res
}

func firstChildOrNil(n *cst.Node) *cst.Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// flattenSyntaxList walks the right-recursive "syntax = syntax_ syntax
// | ε" chain, collecting each syntax_ node in source order.
func flattenSyntaxList(syntax *cst.Node) []*cst.Node {
	var out []*cst.Node
	for syntax != nil && len(syntax.Children) == 2 {
		out = append(out, syntax.Children[0])
		syntax = syntax.Children[1]
	}
	return out
}

func isRuleStmt(stmt *cst.Node) bool {
	return stmt.Children[0].IsLeaf && stmt.Children[0].Token.Kind == lex.ID
}

// classify runs Pass A (§4.4): every `id = …` statement introduces a
// nonterminal; every `% …` statement introduces terminals, unless
// already a nonterminal (error). Symbols seen only in bodies are
// classified in a second look once every declaration has been seen.
func (lw *lowerer) classify(stmts []*cst.Node) {
	unknown := map[llgen.SymId]bool{}
	var order []llgen.SymId

	for i, stmt := range stmts {
		if isRuleStmt(stmt) {
			head := stmt.Children[0].Token.Payload
			if !lw.res.N[head] {
				lw.res.N[head] = true
				order = append(order, head)
				if lw.res.UserStart == 0 && i == firstRuleIndex(stmts) {
					lw.res.UserStart = head
				}
			}
			lw.collectBodyListSymbols(stmt.Children[3], unknown)
		}
	}
	for i, stmt := range stmts {
		if !isRuleStmt(stmt) {
			_ = i
			for _, idLeaf := range flattenIdRep(stmt.Children[1]) {
				tid := idLeaf.Token.Payload
				name := lw.syms.Name(tid)
				if lw.res.N[tid] {
					lw.sink.Report(diag.Diagnostic{
						Kind:    diag.SymbolConflict,
						Message: fmt.Sprintf("symbol %q declared as both terminal and nonterminal", name),
						Line:    idLeaf.Token.Line,
					})
					continue
				}
				if lw.res.T[tid] {
					lw.sink.Warnf(idLeaf.Token.Line, "terminal %q redeclared", name)
					continue
				}
				lw.res.T[tid] = true
				delete(unknown, tid)
			}
		}
	}

	for id := range unknown {
		if lw.res.N[id] || lw.res.T[id] {
			continue
		}
		if _, isRegex := lw.syms.RegexBody(id); isRegex {
			// a regex symbol heads its own byte-level productions
			// (ensureRegexExpanded), so it is a nonterminal.
			lw.res.N[id] = true
			continue
		}
		name := lw.syms.Name(id)
		if len(name) > 0 && (name[0] == '\'' || name[0] == '0') {
			lw.res.T[id] = true
			continue
		}
		lw.res.T[id] = true
		lw.sink.Warnf(0, "symbol %q assumed terminal", name)
	}
}

func firstRuleIndex(stmts []*cst.Node) int {
	for i, stmt := range stmts {
		if isRuleStmt(stmt) {
			return i
		}
	}
	return -1
}

func flattenIdRep(idRep *cst.Node) []*cst.Node {
	var out []*cst.Node
	for idRep != nil && len(idRep.Children) == 2 {
		out = append(out, idRep.Children[0])
		idRep = idRep.Children[1]
	}
	return out
}

// collectBodyListSymbols walks a body_list subtree recording every
// ID/REGEXP leaf symbol encountered into unknown, unless it is already
// classified. This only discovers symbols; classification of the
// "unknown" remainder happens once every rule/terminal declaration has
// been seen (Pass A, second look).
func (lw *lowerer) collectBodyListSymbols(bodyList *cst.Node, unknown map[llgen.SymId]bool) {
	for _, alt := range flattenAlternatives(bodyList) {
		for _, elem := range flattenElements(alt) {
			lw.collectBodySymbols(elem.body, unknown)
		}
	}
}

func (lw *lowerer) collectBodySymbols(body *cst.Node, unknown map[llgen.SymId]bool) {
	switch {
	case body.Children[0].IsLeaf && body.Children[0].Token.Kind == lex.LParen:
		lw.collectBodyListSymbols(body.Children[1], unknown)
	case body.Children[0].IsLeaf && body.Children[0].Token.Kind == lex.At:
		// '@' desugars to the built-in :@: nonterminal; nothing to record.
	default:
		leaf := body.Children[0].Children[0]
		id := leaf.Token.Payload
		if !lw.res.N[id] {
			unknown[id] = true
		}
	}
}

// flattenAlternatives walks body_list = body_internal body_list_rest,
// collecting one CST node per alternative (each a body_internal chain
// head).
func flattenAlternatives(bodyList *cst.Node) []*cst.Node {
	out := []*cst.Node{bodyList.Children[0]}
	rest := bodyList.Children[1]
	for len(rest.Children) == 3 {
		out = append(out, rest.Children[1])
		rest = rest.Children[2]
	}
	return out
}

type elemNode struct {
	comma *cst.Node
	body  *cst.Node
}

// flattenElements walks body_internal = comma_ body body_internal | ε,
// collecting the ordered element list of one alternative.
func flattenElements(bodyInternal *cst.Node) []elemNode {
	var out []elemNode
	for len(bodyInternal.Children) == 3 {
		out = append(out, elemNode{comma: bodyInternal.Children[0], body: bodyInternal.Children[1]})
		bodyInternal = bodyInternal.Children[2]
	}
	return out
}

func hasComma(comma *cst.Node) bool {
	return len(comma.Children) == 1
}

// lowerRules runs Pass B (§4.4): for each user rule, schedule its
// body_list onto the work queue, then drain the queue — dequeued
// groups enqueue their own sub-productions the same way.
func (lw *lowerer) lowerRules(stmts []*cst.Node) {
	for _, stmt := range stmts {
		if !isRuleStmt(stmt) {
			continue
		}
		head := stmt.Children[0].Token.Payload
		lw.work = append(lw.work, contRec{head: head, bodyList: stmt.Children[3]})
	}
	for len(lw.work) > 0 {
		item := lw.work[0]
		lw.work = lw.work[1:]
		lw.lowerBodyList(item.head, item.bodyList)
	}
}

func (lw *lowerer) lowerBodyList(head llgen.SymId, bodyList *cst.Node) {
	for _, alt := range flattenAlternatives(bodyList) {
		var body []llgen.SymId
		for _, elem := range flattenElements(alt) {
			if hasComma(elem.comma) {
				body = append(body, lw.ensureWSStar())
			}
			body = append(body, lw.lowerBody(head, elem.body)...)
		}
		lw.res.addRule(head, body)
	}
}

// lowerBody computes the symbols (zero, one, or two) a body element
// contributes to its enclosing production.
func (lw *lowerer) lowerBody(enclosing llgen.SymId, body *cst.Node) []llgen.SymId {
	first := body.Children[0]
	var target llgen.SymId
	var opsNode *cst.Node

	switch {
	case first.IsLeaf && first.Token.Kind == lex.LParen:
		target = lw.syms.Gen(lw.syms.Name(enclosing))
		lw.res.N[target] = true
		lw.work = append(lw.work, contRec{head: target, bodyList: body.Children[1]})
		opsNode = body.Children[3]
	case first.IsLeaf && first.Token.Kind == lex.At:
		return []llgen.SymId{lw.ensureAtMarker()} // '@' never carries postfix operators
	default:
		leaf := first.Children[0]
		target = leaf.Token.Payload
		opsNode = body.Children[1]
		if leaf.Token.Kind == lex.REGEXP {
			lw.ensureRegexExpanded(target)
		}
	}

	ops := toOpSpecs(lw, flattenBodyOpt(opsNode))
	return lw.emitMultiplicity(enclosing, target, ops)
}

// flattenBodyOpt walks body_opt = body_opt_ body_opt | ε, collecting
// the postfix operator chain in source order.
func flattenBodyOpt(bodyOpt *cst.Node) []*cst.Node {
	var out []*cst.Node
	for len(bodyOpt.Children) == 2 {
		out = append(out, bodyOpt.Children[0])
		bodyOpt = bodyOpt.Children[1]
	}
	return out
}

// opKind names a postfix multiplicity operator, independent of whether
// it came from a grammar body_opt CST node or a regex atom (§4.4.1:
// "postfix operator handling is identical to EBNF's").
type opKind int

const (
	opQuest opKind = iota
	opPlus
	opStar
	opRange
)

// opSpec is one postfix operator in source order, already resolved to
// plain ints so that package desugar's grammar-body path and its
// regex-atom path can share emitMultiplicity.
type opSpec struct {
	kind opKind
	m, n int
}

// toOpSpecs converts a grammar body_opt_ chain to the shared opSpec
// form by reading the range bounds off the CST via the symbol table.
func toOpSpecs(lw *lowerer, ops []*cst.Node) []opSpec {
	out := make([]opSpec, 0, len(ops))
	for _, op := range ops {
		k := op.Children[0]
		switch {
		case k.IsLeaf && k.Token.Kind == lex.Quest:
			out = append(out, opSpec{kind: opQuest})
		case k.IsLeaf && k.Token.Kind == lex.Star:
			out = append(out, opSpec{kind: opStar})
		case k.IsLeaf && k.Token.Kind == lex.Plus:
			out = append(out, opSpec{kind: opPlus})
		case k.IsLeaf && k.Token.Kind == lex.LBrace:
			m, n := lw.parseRange(op)
			out = append(out, opSpec{kind: opRange, m: m, n: n})
		}
	}
	return out
}

// emitMultiplicity applies §4.4 step 3 (multiplicity set C, nullable,
// infinitable) and step 4 (emission) to one body element. Shared by
// the EBNF body path and the regex atom path (§4.4.1).
func (lw *lowerer) emitMultiplicity(enclosing, target llgen.SymId, ops []opSpec) []llgen.SymId {
	c := map[int]bool{1: true}
	nullable := false
	infinitable := false

	for _, op := range ops {
		switch op.kind {
		case opQuest:
			nullable = true
		case opStar:
			nullable = true
			infinitable = true
		case opPlus:
			infinitable = true
		case opRange:
			next := map[int]bool{}
			for cur := range c {
				for v := op.m; v <= op.n; v++ {
					next[cur*v] = true
				}
			}
			c = next
		}
	}
	if c[0] {
		nullable = true
		delete(c, 0)
	}
	if len(c) == 0 {
		return nil
	}

	base := target
	if !(len(c) == 1 && c[1]) {
		base = lw.emitMultiplicityChain(enclosing, target, sortedKeys(c))
	}

	switch {
	case nullable:
		h := lw.syms.Gen(lw.syms.Name(enclosing))
		lw.res.N[h] = true
		if infinitable {
			lw.res.addRule(h, []llgen.SymId{base, h})
		} else {
			lw.res.addRule(h, []llgen.SymId{base})
		}
		lw.res.addRule(h, nil)
		return []llgen.SymId{h}
	case infinitable:
		h := lw.syms.Gen(lw.syms.Name(enclosing))
		lw.res.N[h] = true
		lw.res.addRule(h, []llgen.SymId{base, h})
		lw.res.addRule(h, nil)
		return []llgen.SymId{base, h}
	default:
		return []llgen.SymId{base}
	}
}

// emitMultiplicityChain builds a helper M with one production per
// distinct k in ks, each producing exactly k copies of target, in
// ascending order (§4.4 "Determinism").
func (lw *lowerer) emitMultiplicityChain(enclosing, target llgen.SymId, ks []int) llgen.SymId {
	m := lw.syms.Gen(lw.syms.Name(enclosing))
	lw.res.N[m] = true
	for _, k := range ks {
		body := make([]llgen.SymId, k)
		for i := range body {
			body[i] = target
		}
		lw.res.addRule(m, body)
	}
	return m
}

func sortedKeys(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// parseRange reads the NUM token text (via the symbol table) to
// recover the integer bounds of a "{m}" or "{m,n}" operator.
func (lw *lowerer) parseRange(op *cst.Node) (m, n int) {
	rng := op.Children[1]
	m = lw.numValue(rng.Children[0])
	rest := rng.Children[1]
	if len(rest.Children) == 2 {
		return m, lw.numValue(rest.Children[1])
	}
	return m, m
}

func (lw *lowerer) numValue(leaf *cst.Node) int {
	s := lw.syms.Name(leaf.Token.Payload)
	v := 0
	for i := 0; i < len(s); i++ {
		v = v*10 + int(s[i]-'0')
	}
	return v
}

// ensureWSStar lazily creates :ws: and :ws*: the first time an inline
// whitespace marker is needed (§4.4).
func (lw *lowerer) ensureWSStar() llgen.SymId {
	if lw.wsDone {
		return lw.wsStar
	}
	lw.wsDone = true
	lw.wsOne = lw.syms.Intern(WSOne)
	lw.res.N[lw.wsOne] = true
	for _, lit := range []string{"' '", "0x09", "0x0A", "0x0D"} {
		t := lw.syms.Intern(lit)
		lw.res.T[t] = true
		lw.res.addRule(lw.wsOne, []llgen.SymId{t})
	}
	lw.wsStar = lw.syms.Intern(WSStar)
	lw.res.N[lw.wsStar] = true
	lw.res.addRule(lw.wsStar, []llgen.SymId{lw.wsOne, lw.wsStar})
	lw.res.addRule(lw.wsStar, nil)
	return lw.wsStar
}

// ensureAtMarker lazily creates the :@: nonterminal the first time an
// explicit '@' insertion point is lowered (§4.4).
func (lw *lowerer) ensureAtMarker() llgen.SymId {
	if lw.atDone {
		return lw.atSym
	}
	lw.atDone = true
	lw.atSym = lw.syms.Intern(AtMarker)
	lw.res.N[lw.atSym] = true
	lw.res.addRule(lw.atSym, nil)
	return lw.atSym
}

// finish adds the augmented start rule '^' → UserStart (§3, §4.4).
// Deviation from ryx.cc: the original hardcodes
// the start nonterminal's name as the literal string "input"; this
// implementation instead uses the grammar's first declared rule, per
// spec.md §8 scenario 1 ("rule list contains ^ → S").
func (lw *lowerer) finish() {
	start := lw.syms.Intern(StartSym)
	lw.res.Start = start
	lw.res.N[start] = true
	lw.res.addRule(start, []llgen.SymId{lw.res.UserStart})
	tracer().Infof("lowered %d rules, %d terminals, %d nonterminals",
		len(lw.res.Rules), len(lw.res.T), len(lw.res.N))
}
