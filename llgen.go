package llgen

// SymId is a dense, nonnegative integer identifying an interned lexeme
// string (terminal literal, nonterminal name, regex body, or generated
// helper name). Ids are stable for the lifetime of a run; see package
// symtab.
type SymId int32

// RuleId identifies a single production (head, body) pair. RuleIds are
// assigned in the order productions are emitted by package desugar.
type RuleId int32

// NoSym is the sentinel for "no symbol" (it is not SymId's zero value;
// 0 is a valid id).
const NoSym SymId = -1

// NoRule is the sentinel RuleId meaning "no production", distinct from
// table.ConflictRule which marks an LL(1) violation.
const NoRule RuleId = -1
