/*
Command llcheck is the CLI surface of the LL(1) checker (§6): it reads
a grammar source (a file argument, or stdin if none is given), runs
the full analysis pipeline, optionally prints the resulting parse
table, and exits 0 if the grammar is LL(1), 1 otherwise or on any
fatal diagnostic.

License

Governed by a 3-Clause BSD license. License file may be found in the
root folder of this module.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/llgen/llgen/check"
	"github.com/llgen/llgen/diag"
)

// tracer traces with key 'llgen.cmd'.
func tracer() tracing.Trace {
	return tracing.Select("llgen.cmd")
}

// cliFlags is the parsed form of §6's "any combination in a single
// -xyz" short-flag syntax, which the stdlib flag package does not
// support (it would read "-vtpqw" as one long flag named "vtpqw").
type cliFlags struct {
	verbose          bool
	quiet            bool
	printTable       bool
	nullableTiebreak bool
	widthLimit       bool
}

// parseArgs splits os.Args into bundled short flags and (at most one)
// positional grammar path.
func parseArgs(args []string) (cliFlags, string, error) {
	var f cliFlags
	var path string
	for _, a := range args {
		if a == "" || a == "-" || a[0] != '-' {
			if path != "" {
				return f, "", fmt.Errorf("unexpected extra argument %q", a)
			}
			path = a
			continue
		}
		for _, r := range a[1:] {
			switch r {
			case 'v':
				f.verbose = true
			case 'q':
				f.quiet = true
			case 't':
				f.printTable = true
			case 'p':
				f.nullableTiebreak = true
			case 'w':
				f.widthLimit = true
			default:
				return f, "", fmt.Errorf("unknown flag -%c in %q", r, a)
			}
		}
	}
	return f, path, nil
}

func main() {
	gtrace.SyntaxTracer = gologadapter.New()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "repl" {
		return runREPL(args[1:])
	}

	flags, path, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	switch {
	case flags.verbose:
		tracer().SetTraceLevel(tracing.LevelInfo)
	case flags.quiet:
		tracer().SetTraceLevel(tracing.LevelError)
	}

	src := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer f.Close()
		src = f
	}

	result, err := check.Check(src, check.Options{NullableTiebreak: flags.nullableTiebreak})
	if err != nil {
		d := err.(diag.Diagnostic)
		pterm.Error.Println(d.Error())
		return 1
	}

	if !flags.quiet {
		printDiagnostics(result.Diagnostics)
	}
	if flags.printTable {
		printTable(result, flags.widthLimit)
	}

	if result.IsLL1 {
		pterm.Success.Println("grammar is LL(1)")
		return 0
	}
	pterm.Error.Println("grammar is not LL(1)")
	return 1
}

func printDiagnostics(diags []diag.Diagnostic) {
	for _, d := range diags {
		if d.Fatal() {
			pterm.Error.Println(d.Error())
		} else {
			pterm.Warning.Println(d.Error())
		}
	}
}
