package main

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/llgen/llgen/check"
	"github.com/llgen/llgen/diag"
)

// runREPL is the interactive counterpart to the one-shot file/stdin
// mode, grounded on terex/terexlang/trepl's readline loop: grammar
// text accumulates line by line, and a blank line runs the buffered
// text through check.Check, prints the verdict and clears the buffer.
func runREPL(args []string) int {
	flags, _, err := parseArgs(args)
	if err != nil {
		pterm.Error.Println(err)
		return 1
	}

	rl, err := readline.New("llcheck> ")
	if err != nil {
		pterm.Error.Printfln("could not start readline: %v", err)
		return 1
	}
	defer rl.Close()

	pterm.Info.Println("enter grammar rules, blank line to check, Ctrl-D to quit")
	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return 0
		}
		if err != nil {
			pterm.Error.Printfln("readline: %v", err)
			return 1
		}

		if strings.TrimSpace(line) == "" {
			if buf.Len() == 0 {
				continue
			}
			checkOne(buf.String(), flags)
			buf.Reset()
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
}

func checkOne(src string, flags cliFlags) {
	res, err := check.Check(strings.NewReader(src), check.Options{NullableTiebreak: flags.nullableTiebreak})
	if err != nil {
		d := err.(diag.Diagnostic)
		pterm.Error.Println(d.Error())
		return
	}
	printDiagnostics(res.Diagnostics)
	if flags.printTable {
		printTable(res, flags.widthLimit)
	}
	if res.IsLL1 {
		pterm.Success.Println("LL(1)")
	} else {
		pterm.Error.Println("not LL(1)")
	}
}
