/*
Package diag implements the diagnostic taxonomy of the analysis
pipeline: fatal errors that halt a stage, and warnings that are
collected and reported but never fail the run by themselves (§7).

A diagnostic sink is passed explicitly into every stage constructor
rather than kept in a package-level singleton, so the analyzer stays
embeddable and testable (§9 "Global diagnostic sink").
*/
package diag

import "fmt"

// Kind closes the set of diagnostic categories from spec §7.
type Kind int

const (
	_ Kind = iota
	LexicalError
	GrammarSyntaxError
	SymbolConflict
	AnalysisDivergence
	LLConflict
	WarningKind
)

func (k Kind) String() string {
	switch k {
	case LexicalError:
		return "LexicalError"
	case GrammarSyntaxError:
		return "GrammarSyntaxError"
	case SymbolConflict:
		return "SymbolConflict"
	case AnalysisDivergence:
		return "AnalysisDivergence"
	case LLConflict:
		return "LLConflict"
	case WarningKind:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Diagnostic is a single human-readable message with structured
// context. Fatal kinds halt their stage; WarningKind never does.
type Diagnostic struct {
	Kind    Kind
	Message string
	Line    int // 1-based source line, 0 if not applicable

	// Stack and Lookahead are populated only for GrammarSyntaxError,
	// per §4.3's diagnostic contract: up to ten stack nonterminal
	// names and up to ten upcoming input tokens.
	Stack     []string
	Lookahead []string
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", d.Kind, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Fatal reports whether the diagnostic's kind halts its stage.
func (d Diagnostic) Fatal() bool {
	return d.Kind != WarningKind
}

// Sink collects diagnostics emitted over the lifetime of one pipeline
// run. It is owned by the caller, not by the packages that write to
// it.
type Sink struct {
	items []Diagnostic
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.items = append(s.items, d)
}

// Warnf is a convenience for reporting a WarningKind diagnostic.
func (s *Sink) Warnf(line int, format string, args ...interface{}) {
	s.Report(Diagnostic{Kind: WarningKind, Message: fmt.Sprintf(format, args...), Line: line})
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.items
}

// Fatal returns the first fatal diagnostic reported, or nil if none.
func (s *Sink) Fatal() *Diagnostic {
	for i := range s.items {
		if s.items[i].Fatal() {
			return &s.items[i]
		}
	}
	return nil
}

// Warnings returns every WarningKind diagnostic reported so far.
func (s *Sink) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range s.items {
		if !d.Fatal() {
			out = append(out, d)
		}
	}
	return out
}
