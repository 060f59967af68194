package main

import (
	"strconv"

	"github.com/pterm/pterm"

	"github.com/llgen/llgen"
	"github.com/llgen/llgen/check"
	"github.com/llgen/llgen/table"
)

// maxTableColumns is the column cap applied when -w (width-limit) is
// given, so a grammar with hundreds of terminals (e.g. one built
// entirely of byte-class regexes) still prints on a normal terminal.
const maxTableColumns = 8

// printTable renders the finished parse table with pterm (§1 "prints
// the parse table for human inspection"), a presentation concern the
// core keeps out of package table.
func printTable(res *check.Result, widthLimit bool) {
	nts := res.Table.NonTerminals()
	terms := res.Table.Terminals()
	truncated := false
	if widthLimit && len(terms) > maxTableColumns {
		terms = terms[:maxTableColumns]
		truncated = true
	}

	header := make([]string, 0, len(terms)+1)
	header = append(header, "")
	for _, t := range terms {
		header = append(header, res.Syms.Name(t))
	}

	data := pterm.TableData{header}
	for _, a := range nts {
		row := make([]string, 0, len(terms)+1)
		row = append(row, res.Syms.Name(a))
		for _, t := range terms {
			row = append(row, cellText(res, a, t))
		}
		data = append(data, row)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Printfln("could not render table: %v", err)
	}
	if truncated {
		pterm.Info.Printfln("table truncated to %d of %d columns (-w)", maxTableColumns, len(res.Table.Terminals()))
	}
}

func cellText(res *check.Result, a, t llgen.SymId) string {
	r := res.Table.Lookup(a, t)
	switch r {
	case llgen.NoRule:
		return "·"
	case table.ConflictRule:
		return "CONFLICT"
	default:
		return strconv.Itoa(int(r))
	}
}
