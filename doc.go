/*
Package llgen is an LL(1) grammar checker and parser generator.

LLGen strives to be a small, embeddable tool for verifying that a
context-free grammar, written in an extended BNF dialect, belongs to
the LL(1) class, and — if so — for driving the construction of a
table-driven predictive parser. Package structure is as follows:

■ symtab: Package symtab interns lexeme strings into dense integer ids.

■ lex: Package lex turns a byte stream into a sequence of lexical tokens.

■ cst: Package cst defines the concrete syntax tree produced by gparse.

■ gparse: Package gparse implements the LL(1) predictive parser for the
fixed meta-grammar grammars are written in.

■ desugar: Package desugar lowers a concrete syntax tree into plain BNF
productions, expanding EBNF operators and regex character classes.

■ analysis: Package analysis computes FIRST and FOLLOW sets.

■ table: Package table builds the LL(1) parsing table and detects
conflicts.

■ codegen: Package codegen emits portable C source for the table-driven
parser described by a finished analysis.

■ check: Package check wires the stages above into a single pipeline.

The base package contains data types which are used throughout all the
other packages.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package llgen
