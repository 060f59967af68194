/*
Package cst defines the concrete syntax tree produced by package
gparse and consumed exactly once by package desugar.

A Node carries either a grammar-nonterminal tag (Tag != "") or a
terminal token (Tag == "" and Token is set). Children are ordered; a
node holds a slice of its children and no parent pointer, so there are
no cycles to worry about (§9 "Cyclic graphs").
*/
package cst

import "github.com/llgen/llgen/lex"

// Node is one CST node: either an interior node tagged with a
// meta-grammar nonterminal name, or a leaf wrapping a lexical token.
type Node struct {
	Tag      string // meta-grammar nonterminal name; "" for leaves
	Token    lex.Token
	IsLeaf   bool
	Children []*Node
}

// NewNonterm creates an empty interior node for nonterminal tag.
func NewNonterm(tag string) *Node {
	return &Node{Tag: tag}
}

// NewLeaf creates a leaf node wrapping tok.
func NewLeaf(tok lex.Token) *Node {
	return &Node{IsLeaf: true, Token: tok}
}

// Append adds child as the next ordered child of n.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// Walk visits n and every descendant, depth-first, pre-order. Package
// desugar does not use it; it walks the tree through its own
// flatten helpers.
func (n *Node) Walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}
